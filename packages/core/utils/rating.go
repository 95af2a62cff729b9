package utils

import "math"

const (
	BaseMatchRating = 5.0
	MaxMatchRating  = 10.0

	goalWeight    = 1.5
	assistWeight  = 1.0
	tackleWeight  = 0.5
	defenseWeight = 0.3
)

// CalculateMatchRating scores one player's performance in a single match,
// capped at MaxMatchRating.
func CalculateMatchRating(goals, assists, tackles, defenses int) float64 {
	rating := BaseMatchRating +
		float64(goals)*goalWeight +
		float64(assists)*assistWeight +
		float64(tackles)*tackleWeight +
		float64(defenses)*defenseWeight
	return RoundTo2(math.Min(rating, MaxMatchRating))
}

// UpdateAverageRating folds a new match rating into a career average.
// matchesBefore is the number of matches already counted in oldAverage.
func UpdateAverageRating(oldAverage float64, matchesBefore int, rating float64) float64 {
	if matchesBefore < 0 {
		matchesBefore = 0
	}
	matchesAfter := matchesBefore + 1
	return RoundTo2((oldAverage*float64(matchesBefore) + rating) / float64(matchesAfter))
}

func RoundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}
