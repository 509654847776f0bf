package websocket

import (
	"sort"

	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
)

// EventKind names an outgoing message
type EventKind string

const (
	// EventState carries a bare snapshot (reset, resync, late join)
	EventState EventKind = "state_update"
	// EventTurn carries the placements and payouts of one action
	EventTurn EventKind = "turn"
	// EventGameOver carries final standings once a match ends
	EventGameOver EventKind = "game_over"
)

// Message is one frame pushed to the watchers of a session
type Message struct {
	SessionID   string             `json:"session_id"`
	Seq         int64              `json:"seq"`
	Event       EventKind          `json:"event"`
	GameState   *engine.GameState  `json:"game_state,omitempty"`
	Placements  []PlacementNotice  `json:"placements,omitempty"`
	Completions []CompletionNotice `json:"completions,omitempty"`
	Payouts     []PayoutNotice     `json:"payouts,omitempty"`
	Standings   []Standing         `json:"standings,omitempty"`
	Winners     []int              `json:"winners,omitempty"`
}

// PlacementNotice is a tile laid during the turn
type PlacementNotice struct {
	PlayerID  int             `json:"player_id"`
	Archetype string          `json:"archetype"`
	Rotation  int             `json:"rotation"`
	Position  engine.Position `json:"position"`
}

// CompletionNotice is a region that closed during the turn
type CompletionNotice struct {
	RegionID int                `json:"region_id"`
	Type     engine.FeatureType `json:"type"`
	Tiles    int                `json:"tiles"`
	Points   int                `json:"points"`
}

// PayoutNotice is points paid to one player for one region
type PayoutNotice struct {
	PlayerID int  `json:"player_id"`
	RegionID int  `json:"region_id"`
	Points   int  `json:"points"`
	EndGame  bool `json:"end_game"`
}

// Standing is a seat's final line in the game_over frame
type Standing struct {
	PlayerID int    `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Winner   bool   `json:"winner"`
}

// TurnPlay is one seat's share of a broadcast turn. Placement is nil for
// marker-only actions; Awards holds every payout the seat's action caused.
type TurnPlay struct {
	PlayerID  int
	Placement *engine.PlacementResult
	Awards    []engine.ScoreAward
}

// NewTurnMessage builds the turn frame for plays applied to reach state.
// Completed regions are resolved against state so each notice carries the
// region type and size.
func NewTurnMessage(sessionID string, state *engine.GameState, plays []TurnPlay) *Message {
	msg := &Message{SessionID: sessionID, Event: EventTurn, GameState: state}

	regions := make(map[int]engine.RegionView)
	if state != nil {
		for _, r := range state.Regions {
			regions[r.ID] = r
		}
	}

	completed := make(map[int]int)
	addCompletion := func(id int) int {
		if idx, ok := completed[id]; ok {
			return idx
		}
		notice := CompletionNotice{RegionID: id}
		if r, ok := regions[id]; ok {
			notice.Type = r.Type
			notice.Tiles = r.TileCount
		}
		completed[id] = len(msg.Completions)
		msg.Completions = append(msg.Completions, notice)
		return completed[id]
	}

	for _, play := range plays {
		if play.Placement != nil {
			msg.Placements = append(msg.Placements, PlacementNotice{
				PlayerID:  play.PlayerID,
				Archetype: play.Placement.Archetype,
				Rotation:  play.Placement.Rotation,
				Position:  play.Placement.PlacedAt,
			})
			for _, id := range play.Placement.TriggeredCompletions {
				addCompletion(id)
			}
		}
		for _, a := range play.Awards {
			msg.Payouts = append(msg.Payouts, PayoutNotice{
				PlayerID: a.PlayerID,
				RegionID: a.RegionID,
				Points:   a.Points,
				EndGame:  a.EndGame,
			})
			// end-of-game payouts go to unfinished regions
			if a.EndGame {
				continue
			}
			idx := addCompletion(a.RegionID)
			msg.Completions[idx].Points += a.Points
		}
	}
	return msg
}

// NewGameOverMessage builds the final standings frame, highest score first
func NewGameOverMessage(sessionID string, state *engine.GameState) *Message {
	msg := &Message{SessionID: sessionID, Event: EventGameOver, GameState: state}
	if state == nil {
		return msg
	}
	msg.Winners = append([]int(nil), state.Winners...)

	won := make(map[int]bool, len(state.Winners))
	for _, id := range state.Winners {
		won[id] = true
	}
	for _, p := range state.Players {
		msg.Standings = append(msg.Standings, Standing{
			PlayerID: p.ID,
			Name:     p.Name,
			Score:    p.Score,
			Winner:   won[p.ID],
		})
	}
	sort.SliceStable(msg.Standings, func(i, j int) bool {
		return msg.Standings[i].Score > msg.Standings[j].Score
	})
	return msg
}
