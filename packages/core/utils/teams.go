package utils

// ShuffleFunc matches the signature of rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// SplitTeams permutes ids with shuffle and deals them alternately, even
// positions to team A and odd positions to team B. The input is not modified.
func SplitTeams(ids []uint, shuffle ShuffleFunc) (teamA, teamB []uint) {
	order := make([]uint, len(ids))
	copy(order, ids)
	if shuffle != nil {
		shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	teamA = make([]uint, 0, (len(order)+1)/2)
	teamB = make([]uint, 0, len(order)/2)
	for i, id := range order {
		if i%2 == 0 {
			teamA = append(teamA, id)
		} else {
			teamB = append(teamB, id)
		}
	}
	return teamA, teamB
}
