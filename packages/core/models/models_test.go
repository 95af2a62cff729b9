package models

import "testing"

func TestRosterCapacity(t *testing.T) {
	tests := []struct {
		format  PlayersCount
		roster  int
		perTeam int
	}{
		{Format3v3, 6, 3},
		{Format5v5, 10, 5},
		{Format6v6, 12, 6},
		{PlayersCount("7vs7"), 0, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.RosterCapacity(); got != tt.roster {
				t.Fatalf("expected roster capacity %d, got %d", tt.roster, got)
			}
			if got := tt.format.PerTeamCapacity(); got != tt.perTeam {
				t.Fatalf("expected per team capacity %d, got %d", tt.perTeam, got)
			}
		})
	}
}

func TestMatchIsFull(t *testing.T) {
	for _, format := range []PlayersCount{Format3v3, Format5v5, Format6v6} {
		match := Match{PlayersCount: format}
		capacity := int64(match.RosterCapacity())

		if match.IsFull(capacity - 1) {
			t.Fatalf("%s: expected not full with %d participants", format, capacity-1)
		}
		if !match.IsFull(capacity) {
			t.Fatalf("%s: expected full with %d participants", format, capacity)
		}
	}

	unknown := Match{PlayersCount: "1vs1"}
	if !unknown.IsFull(0) {
		t.Fatalf("expected a match with an unknown format to always be full")
	}
}

func TestMatchLimits(t *testing.T) {
	goals, minutes := 3, 40

	match := Match{EndMode: EndModeGoals, GoalLimit: &goals, TimeLimit: &minutes, CurrentMinute: 45}
	if match.TimeLimitReached() {
		t.Fatalf("expected time limit to be ignored in goals mode")
	}
	if !match.GoalLimitReached(1, 3) {
		t.Fatalf("expected goal limit reached")
	}

	match.EndMode = EndModeTime
	if match.GoalLimitReached(5, 0) {
		t.Fatalf("expected goal limit to be ignored in time mode")
	}
	if !match.TimeLimitReached() {
		t.Fatalf("expected time limit reached")
	}

	match.EndMode = EndModeBoth
	match.CurrentMinute = 10
	if match.TimeLimitReached() || match.GoalLimitReached(2, 2) {
		t.Fatalf("expected no limit reached")
	}
}

func TestWinPercentage(t *testing.T) {
	player := Player{Wins: 1, Matches: 3}
	if got := player.CalculateWinPercentage(); got != 33.33 {
		t.Fatalf("expected 33.33, got %.2f", got)
	}

	rookie := Player{}
	if got := rookie.CalculateWinPercentage(); got != 0 {
		t.Fatalf("expected 0 without matches, got %.2f", got)
	}
}

func TestTeamColors(t *testing.T) {
	if TeamA.Color() != "#FF6B6B" || TeamB.Color() != "#4ECDC4" {
		t.Fatalf("unexpected team colors %s %s", TeamA.Color(), TeamB.Color())
	}
}

func TestEventCounterColumn(t *testing.T) {
	if EventGoal.CounterColumn() != "goals_scored" || EventDefense.CounterColumn() != "defenses_made" {
		t.Fatalf("unexpected counter columns")
	}
	if EventType("foul").IsValid() {
		t.Fatalf("expected unknown event type to be invalid")
	}
}
