package main

import (
	"log"

	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
	"github.com/wricardo/mcp-training/tilekingdoms/game/service"
)

// Move is one candidate placement of the drawn tile
type Move struct {
	Rotation int
	Position engine.Position
	Score    int
}

// SystematicStrategy places tiles where they touch the most neighbors and
// continue cities, keeping the board compact so features close early.
type SystematicStrategy struct {
	// markerPriority ranks region types for claiming; absent types are skipped
	markerPriority map[engine.FeatureType]int
	// reserve is the number of markers kept back for cities and cloisters
	reserve int

	// State tracking
	moves     int
	bestScore int
}

func NewSystematicStrategy() *SystematicStrategy {
	return &SystematicStrategy{
		markerPriority: map[engine.FeatureType]int{
			engine.City:     3,
			engine.Cloister: 2,
			engine.Road:     1,
		},
		reserve: 1,
	}
}

// ChoosePlacement picks the best cell over every rotation's legal cells.
// Ties keep the lower rotation and the cell nearer the origin.
func (s *SystematicStrategy) ChoosePlacement(state *engine.GameState, options []*service.PlacementsResult) (Move, bool) {
	board := make(map[engine.Position][4]engine.Terrain, len(state.Tiles))
	for _, t := range state.Tiles {
		board[engine.Position{X: t.X, Y: t.Y}] = t.Edges
	}

	origin := engine.Position{}
	var best Move
	found := false
	for _, opt := range options {
		if opt == nil {
			continue
		}
		for _, cell := range opt.Cells {
			score := scoreCell(board, opt.Edges, cell)
			if !found || score > best.Score ||
				(score == best.Score && opt.Rotation == best.Rotation &&
					engine.ManhattanDistance(cell, origin) < engine.ManhattanDistance(best.Position, origin)) {
				best = Move{Rotation: opt.Rotation, Position: cell, Score: score}
				found = true
			}
		}
	}

	if found {
		s.moves++
		if best.Score > s.bestScore {
			s.bestScore = best.Score
			log.Printf("📈 New best placement score %d at (%d,%d) r%d", best.Score, best.Position.X, best.Position.Y, best.Rotation)
		}
	}
	return best, found
}

// scoreCell rewards occupied neighbors, city-to-city joins and nearness to
// the origin
func scoreCell(board map[engine.Position][4]engine.Terrain, edges [4]engine.Terrain, cell engine.Position) int {
	score := 0
	for edge := 0; edge < 4; edge++ {
		npos, opp := engine.NeighborOf(cell, edge)
		theirs, ok := board[npos]
		if !ok {
			continue
		}
		score += 4
		if edges[edge] == engine.TerrainCity && theirs[opp] == engine.TerrainCity {
			score += 3
		}
		if edges[edge] == engine.TerrainRoad && theirs[opp] == engine.TerrainRoad {
			score++
		}
	}
	return score - engine.ManhattanDistance(cell, engine.Position{})/4
}

// ChooseMarker picks the highest ranked offered feature. The reserved
// markers only go to cities and cloisters.
func (s *SystematicStrategy) ChooseMarker(state *engine.GameState) (engine.FollowerOption, bool) {
	if state.CurrentPlayer < 0 || state.CurrentPlayer >= len(state.Players) {
		return engine.FollowerOption{}, false
	}
	markers := state.Players[state.CurrentPlayer].Markers

	var best engine.FollowerOption
	bestRank := 0
	for _, opt := range state.FollowerOptions {
		rank := s.markerPriority[opt.RegionType]
		if rank == 0 {
			continue
		}
		if markers <= s.reserve && opt.RegionType == engine.Road {
			continue
		}
		if rank > bestRank {
			best, bestRank = opt, rank
		}
	}
	return best, bestRank > 0
}
