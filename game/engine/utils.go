package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	return abs(from.X-to.X) + abs(from.Y-to.Y)
}

// CountPlaced counts tiles of one archetype on the board
func CountPlaced(state *GameState, archetype string) int {
	count := 0
	for _, t := range state.Tiles {
		if t.Archetype == archetype {
			count++
		}
	}
	return count
}

// ScoreLeaders returns the ids of the players tied for the top score
func ScoreLeaders(players []Player) []int {
	best := -1
	var out []int
	for _, p := range players {
		switch {
		case p.Score > best:
			best = p.Score
			out = []int{p.ID}
		case p.Score == best:
			out = append(out, p.ID)
		}
	}
	return out
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
