// Package ai implements the computer opponent: a one-ply heuristic that
// rates every legal placement of the drawn tile and then decides whether a
// marker is worth spending.
package ai

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
)

const (
	cityConnectBonus   = 3.0
	roadConnectBonus   = 1.0
	ownCityBonus       = 5.0
	rivalCityPenalty   = 1.0
	rivalNearPenalty   = 3.0
	openCityBonus      = 2.0
	nearCompletionOpen = 2
	cloisterPerTile    = 0.5
	giftPenaltyPerPt   = 2.0
)

// Candidate is one scored placement of the drawn tile
type Candidate struct {
	Rotation int             `json:"rotation"`
	Position engine.Position `json:"position"`
	Score    float64         `json:"score"`
}

// TurnReport describes what the evaluator did on its turn
type TurnReport struct {
	PlayerID     int                     `json:"player_id"`
	Placement    *engine.PlacementResult `json:"placement"`
	Marker       *engine.FollowerOption  `json:"marker,omitempty"`
	MarkerAwards []engine.ScoreAward     `json:"marker_awards,omitempty"`
	Score        float64                 `json:"score"`
}

// Evaluator scores placements and markers for the current player
type Evaluator struct {
	config engine.AIConfig
	rng    *rand.Rand
}

// NewEvaluator creates an evaluator. rng drives the jitter term; nil seeds
// from the default source.
func NewEvaluator(config engine.AIConfig, rng *rand.Rand) *Evaluator {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Evaluator{config: config, rng: rng}
}

// ChoosePlacement rates every (rotation, cell) for the archetype and returns
// the best one. False when the tile fits nowhere.
func (ev *Evaluator) ChoosePlacement(g *engine.GameEngine, playerID, archetype int) (Candidate, bool) {
	var best Candidate
	found := false
	for r := 0; r < 4; r++ {
		for _, pos := range g.LegalCells(archetype, r) {
			score := ev.ScorePlacement(g, playerID, archetype, r, pos)
			if !found || score > best.Score {
				best = Candidate{Rotation: r, Position: pos, Score: score}
				found = true
			}
		}
	}
	return best, found
}

// ScorePlacement rates one legal placement for playerID
func (ev *Evaluator) ScorePlacement(g *engine.GameEngine, playerID, archetype, rotation int, pos engine.Position) float64 {
	catalog := g.Catalog()
	edges := catalog.EffectiveEdges(archetype, rotation)
	score := 0.0

	for edge := 0; edge < 4; edge++ {
		switch edges[edge] {
		case engine.TerrainCity:
			region, ok := g.NeighborRegion(pos.X, pos.Y, edge)
			if !ok {
				continue
			}
			score += cityConnectBonus + ev.ownershipTerm(region, playerID)
		case engine.TerrainRoad:
			if _, ok := g.NeighborRegion(pos.X, pos.Y, edge); ok {
				score += roadConnectBonus
			}
		}
	}

	if catalog[archetype].HasCloister() {
		score += cloisterPerTile * float64(g.OccupiedAround(pos.X, pos.Y))
	}

	score -= ev.giftPenalty(g, playerID, archetype, rotation, pos)

	if g.TilesPlaced() < ev.config.EarlyGameTiles {
		score -= ev.config.CenterBias * float64(engine.ManhattanDistance(pos, engine.Position{}))
	}

	score += ev.rng.Float64() * ev.config.Jitter
	return score
}

// ownershipTerm rates joining a neighboring city by who holds it
func (ev *Evaluator) ownershipTerm(region engine.RegionView, playerID int) float64 {
	mine := region.Owners[playerID] > 0
	rivals := false
	for pid, n := range region.Owners {
		if pid != playerID && n > 0 {
			rivals = true
		}
	}

	switch {
	case mine && !rivals:
		return ownCityBonus
	case rivals && !mine:
		if region.OpenEdges <= nearCompletionOpen {
			return -rivalNearPenalty
		}
		return -rivalCityPenalty
	default:
		return openCityBonus
	}
}

// giftPenalty previews the placement on a clone and charges for every
// completed region that pays an opponent but not playerID.
func (ev *Evaluator) giftPenalty(g *engine.GameEngine, playerID, archetype, rotation int, pos engine.Position) float64 {
	preview := g.Clone()
	result, err := preview.Place(archetype, rotation, pos.X, pos.Y)
	if err != nil || len(result.TriggeredCompletions) == 0 {
		return 0
	}

	penalty := 0.0
	for _, id := range result.TriggeredCompletions {
		paysMe, paysRival, points := false, false, 0
		for _, a := range result.ScoredPoints {
			if a.RegionID != id {
				continue
			}
			points = a.Points
			if a.PlayerID == playerID {
				paysMe = true
			} else {
				paysRival = true
			}
		}
		if paysRival && !paysMe {
			penalty += giftPenaltyPerPt * float64(points)
		}
	}
	return penalty
}

// MarkerValue rates claiming one option
func (ev *Evaluator) MarkerValue(g *engine.GameEngine, option engine.FollowerOption) float64 {
	region, ok := g.Region(option.RegionID)
	if !ok {
		return 0
	}
	tiles := float64(region.TileCount)

	switch region.Type {
	case engine.City:
		v := tiles*2 + 3
		if region.TileCount >= 3 {
			v += 3
		}
		return v
	case engine.Road:
		return tiles + 1
	case engine.Cloister:
		if len(region.Members) == 0 {
			return 0
		}
		m := region.Members[0]
		neighbors := g.OccupiedAround(m.X, m.Y)
		v := float64(neighbors) + 2
		if neighbors >= 5 {
			v += 5
		}
		return v
	}
	return 0
}

// ChooseMarker picks the most valuable option worth a marker. Low-value
// options are ignored while the player is short on markers.
func (ev *Evaluator) ChooseMarker(g *engine.GameEngine, playerID int, options []engine.FollowerOption) (engine.FollowerOption, bool) {
	players := g.Players()
	if playerID < 0 || playerID >= len(players) || players[playerID].Markers <= 0 {
		return engine.FollowerOption{}, false
	}
	short := players[playerID].Markers <= ev.config.LowMarkerThreshold

	var best engine.FollowerOption
	bestValue := -1.0
	for _, opt := range options {
		v := ev.MarkerValue(g, opt)
		if short && v < ev.config.LowMarkerMinValue {
			continue
		}
		if v > bestValue {
			bestValue = v
			best = opt
		}
	}
	if bestValue < ev.config.MinMarkerValue {
		return engine.FollowerOption{}, false
	}
	return best, true
}

// PlayTurn plays the current player's whole turn: placement, then marker or skip
func (ev *Evaluator) PlayTurn(g *engine.GameEngine) (*TurnReport, error) {
	if g.IsGameOver() {
		return nil, engine.ErrGameOver
	}
	playerID := g.CurrentPlayer()
	if !g.Players()[playerID].AI {
		return nil, engine.ErrNotAITurn
	}

	report := &TurnReport{PlayerID: playerID}

	if g.Phase() == engine.PhasePlace {
		archetype, ok := g.CurrentTile()
		if !ok {
			return nil, fmt.Errorf("%w: no tile drawn", engine.ErrWrongPhase)
		}
		best, ok := ev.ChoosePlacement(g, playerID, archetype)
		if !ok {
			return nil, engine.ErrNoLegalPlacement
		}
		result, err := g.PlaceCurrent(best.Rotation, best.Position.X, best.Position.Y)
		if err != nil {
			return nil, fmt.Errorf("placing %s: %w", g.Catalog()[archetype].ID, err)
		}
		report.Placement = result
		report.Score = best.Score
	}

	if g.Phase() != engine.PhaseMarker || g.CurrentPlayer() != playerID {
		return report, nil
	}

	if opt, ok := ev.ChooseMarker(g, playerID, g.PendingOptions()); ok {
		awards, err := g.ClaimFeature(opt.FeatureIndex)
		if err != nil && !errors.Is(err, engine.ErrMarkerUnavailable) {
			return nil, err
		}
		if err == nil {
			report.Marker = &opt
			report.MarkerAwards = awards
			return report, nil
		}
	}

	if err := g.SkipMarker(); err != nil {
		return nil, err
	}
	return report, nil
}
