package utils

import (
	"math/rand"
	"sort"
	"testing"
)

func TestCalculateMatchRating(t *testing.T) {
	tests := []struct {
		name                              string
		goals, assists, tackles, defenses int
		expected                          float64
	}{
		{"no contribution", 0, 0, 0, 0, 5.0},
		{"two goals one assist", 2, 1, 0, 0, 9.0},
		{"one tackle", 0, 0, 1, 0, 5.5},
		{"defenses only", 0, 0, 0, 3, 5.9},
		{"capped", 3, 2, 4, 1, 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateMatchRating(tt.goals, tt.assists, tt.tackles, tt.defenses)
			if got != tt.expected {
				t.Fatalf("expected %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}

func TestUpdateAverageRating(t *testing.T) {
	if got := UpdateAverageRating(8.0, 4, 9.0); got != 8.2 {
		t.Fatalf("expected 8.20, got %.2f", got)
	}
	if got := UpdateAverageRating(0, 0, 6.5); got != 6.5 {
		t.Fatalf("expected first match to set the average, got %.2f", got)
	}
	if got := UpdateAverageRating(7.0, 2, 5.0); got != 6.33 {
		t.Fatalf("expected 6.33, got %.2f", got)
	}
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := GenerateCode()
		if !IsValidCode(code) {
			t.Fatalf("generated invalid code %q", code)
		}
	}
	if IsValidCode("abc123") {
		t.Fatalf("expected lower case code to be rejected")
	}
	if IsValidCode("ABC12") {
		t.Fatalf("expected short code to be rejected")
	}
}

func TestSplitTeams(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 0; n <= 13; n++ {
		ids := make([]uint, n)
		for i := range ids {
			ids[i] = uint(i + 1)
		}

		teamA, teamB := SplitTeams(ids, rng.Shuffle)

		if len(teamA)-len(teamB) < 0 || len(teamA)-len(teamB) > 1 {
			t.Fatalf("n=%d: expected balanced teams, got %d and %d", n, len(teamA), len(teamB))
		}

		union := append(append([]uint{}, teamA...), teamB...)
		sort.Slice(union, func(i, j int) bool { return union[i] < union[j] })
		if len(union) != n {
			t.Fatalf("n=%d: expected %d assigned players, got %d", n, n, len(union))
		}
		for i, id := range union {
			if id != uint(i+1) {
				t.Fatalf("n=%d: expected player %d in union, got %d", n, i+1, id)
			}
		}
	}
}

func TestSplitTeamsWithoutShuffleKeepsOrder(t *testing.T) {
	teamA, teamB := SplitTeams([]uint{10, 20, 30, 40, 50}, nil)
	if len(teamA) != 3 || teamA[0] != 10 || teamA[1] != 30 || teamA[2] != 50 {
		t.Fatalf("unexpected team A %v", teamA)
	}
	if len(teamB) != 2 || teamB[0] != 20 || teamB[1] != 40 {
		t.Fatalf("unexpected team B %v", teamB)
	}
}
