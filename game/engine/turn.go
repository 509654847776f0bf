package engine

import "fmt"

// CurrentPlayer returns the id of the player whose turn it is
func (e *GameEngine) CurrentPlayer() int {
	return e.current
}

// CurrentTile returns the archetype drawn for this turn, if any
func (e *GameEngine) CurrentTile() (int, bool) {
	if e.currentTile < 0 {
		return 0, false
	}
	return e.currentTile, true
}

// Phase returns the current turn phase
func (e *GameEngine) Phase() Phase {
	return e.phase
}

// LastPlacement returns the position of the most recently placed tile
func (e *GameEngine) LastPlacement() (Position, bool) {
	if e.lastPlacement == nil {
		return Position{}, false
	}
	return *e.lastPlacement, true
}

// PendingOptions returns the claimable features while in the marker phase
func (e *GameEngine) PendingOptions() []FollowerOption {
	return append([]FollowerOption(nil), e.options...)
}

// DrawForTurn draws the current player's tile if none is waiting. An empty
// pool finishes the match and yields ErrPoolExhausted.
func (e *GameEngine) DrawForTurn() error {
	if e.gameOver {
		return ErrGameOver
	}
	if e.phase != PhasePlace {
		return fmt.Errorf("%w: cannot draw during %s phase", ErrWrongPhase, e.phase)
	}
	if e.currentTile >= 0 {
		return nil
	}
	if !e.drawForTurn() {
		return ErrPoolExhausted
	}
	return nil
}

// drawForTurn draws until a placeable tile comes up. Unplaceable tiles are
// discarded for good. An empty pool ends the match and reports false.
func (e *GameEngine) drawForTurn() bool {
	for {
		idx, ok := e.pool.Draw()
		if !ok {
			e.Finish()
			return false
		}
		if e.board.HasAnyPlacement(idx) {
			e.currentTile = idx
			e.phase = PhasePlace
			if e.config.Messages.YourTurn != "" {
				e.message = fmt.Sprintf(e.config.Messages.YourTurn, e.players[e.current].Name, e.catalog[idx].ID)
			}
			return true
		}

		e.discarded++
		e.record(TurnHistoryEntry{
			Action:    "discard",
			PlayerID:  e.current,
			Archetype: e.catalog[idx].ID,
		})
		if e.config.Messages.Discarded != "" {
			e.message = fmt.Sprintf(e.config.Messages.Discarded, e.catalog[idx].ID)
		}
	}
}

// PlaceCurrent places the drawn tile for the current player. The turn moves
// to the marker phase when the player can claim something, otherwise it passes.
func (e *GameEngine) PlaceCurrent(rotation, x, y int) (*PlacementResult, error) {
	if e.gameOver {
		return nil, ErrGameOver
	}
	if e.phase != PhasePlace || e.currentTile < 0 {
		return nil, fmt.Errorf("%w: cannot place a tile during %s phase", ErrWrongPhase, e.phase)
	}

	result, err := e.Place(e.currentTile, rotation, x, y)
	if err != nil {
		return nil, err
	}

	e.record(TurnHistoryEntry{
		Action:    "place",
		PlayerID:  e.current,
		Archetype: result.Archetype,
		Rotation:  result.Rotation,
		Position:  &Position{X: x, Y: y},
		Points:    pointsFor(result.ScoredPoints, e.current),
	})
	e.announce(result.TriggeredCompletions, result.ScoredPoints)

	pos := result.PlacedAt
	e.lastPlacement = &pos
	e.currentTile = -1

	options := e.FollowerOptions(x, y)
	if e.players[e.current].Markers > 0 && len(options) > 0 {
		e.options = options
		e.phase = PhaseMarker
		return result, nil
	}

	e.advanceTurn()
	return result, nil
}

// ClaimFeature places the current player's marker on a feature of the tile
// just placed and passes the turn.
func (e *GameEngine) ClaimFeature(featureIndex int) ([]ScoreAward, error) {
	if e.gameOver {
		return nil, ErrGameOver
	}
	if e.phase != PhaseMarker || e.lastPlacement == nil {
		return nil, fmt.Errorf("%w: cannot place a marker during %s phase", ErrWrongPhase, e.phase)
	}

	offered := false
	for _, opt := range e.options {
		if opt.FeatureIndex == featureIndex {
			offered = true
			break
		}
	}
	pos := *e.lastPlacement
	if !offered || !e.PlaceMarker(pos.X, pos.Y, featureIndex, e.current) {
		return nil, fmt.Errorf("%w: feature %d at (%d, %d)", ErrMarkerUnavailable, featureIndex, pos.X, pos.Y)
	}

	// re-check in case the claimed region closed on this placement
	var awards []ScoreAward
	completed := e.checkCompletions(e.candidatesAround(pos))
	ids := make([]int, 0, len(completed))
	for _, r := range completed {
		ids = append(ids, r.ID)
		awards = append(awards, e.scoreRegion(r, false)...)
	}

	e.record(TurnHistoryEntry{
		Action:       "marker",
		PlayerID:     e.current,
		Position:     &pos,
		FeatureIndex: featureIndex,
		Points:       pointsFor(awards, e.current),
	})
	e.announce(ids, awards)

	e.advanceTurn()
	return awards, nil
}

// SkipMarker declines to place a marker and passes the turn
func (e *GameEngine) SkipMarker() error {
	if e.gameOver {
		return ErrGameOver
	}
	if e.phase != PhaseMarker {
		return fmt.Errorf("%w: nothing to skip during %s phase", ErrWrongPhase, e.phase)
	}
	e.record(TurnHistoryEntry{
		Action:   "skip",
		PlayerID: e.current,
		Position: e.lastPlacement,
	})
	e.advanceTurn()
	return nil
}

func (e *GameEngine) advanceTurn() {
	e.options = nil
	if e.pool.Len() == 0 {
		e.Finish()
		return
	}
	e.current = (e.current + 1) % len(e.players)
	e.turn++
	e.drawForTurn()
}

func (e *GameEngine) announce(regionIDs []int, awards []ScoreAward) {
	if e.config.Messages.Completed == "" || len(regionIDs) == 0 {
		return
	}
	for _, id := range regionIDs {
		r := e.regions.Get(id)
		if r == nil {
			continue
		}
		total := 0
		for _, a := range awards {
			if a.RegionID == id {
				total = a.Points
				break
			}
		}
		e.message = fmt.Sprintf(e.config.Messages.Completed, r.Type, total)
	}
}

func pointsFor(awards []ScoreAward, playerID int) int {
	total := 0
	for _, a := range awards {
		if a.PlayerID == playerID {
			total += a.Points
		}
	}
	return total
}
