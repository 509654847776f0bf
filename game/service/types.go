package service

import (
	"time"

	"github.com/wricardo/mcp-training/tilekingdoms/game/ai"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// ActionResult contains the result of a turn action and any AI turns it triggered
type ActionResult struct {
	Success   bool                    `json:"success"`
	PlayerID  int                     `json:"player_id"`
	GameState *engine.GameState       `json:"game_state"`
	Message   string                  `json:"message"`
	Events    []GameEvent             `json:"events,omitempty"`
	Placement *engine.PlacementResult `json:"placement,omitempty"`
	Awards    []engine.ScoreAward     `json:"awards,omitempty"`
	AITurns   []*ai.TurnReport        `json:"ai_turns,omitempty"`
}

// PlacementsResult lists the legal cells for the drawn tile at one rotation
type PlacementsResult struct {
	Archetype string            `json:"archetype"`
	Rotation  int               `json:"rotation"`
	Edges     [4]engine.Terrain `json:"edges"`
	Cells     []engine.Position `json:"cells"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"` // "tile_placed", "region_completed", "points_awarded", "marker_placed", "marker_skipped", "tile_discarded", "game_over", "reset"
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	PlayerID  int              `json:"player_id"`
	Points    int              `json:"points,omitempty"`
	Position  *engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Entries      []engine.TurnHistoryEntry `json:"entries"`
	TotalActions int                       `json:"total_actions"`
	Page         int                       `json:"page"`
	PageSize     int                       `json:"page_size"`
	TotalPages   int                       `json:"total_pages"`
	HasNext      bool                      `json:"has_next"`
	HasPrevious  bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename         string `json:"filename"`
	ConfigID         string `json:"config_id"` // The identifier to use for session creation
	Name             string `json:"name"`      // Display name
	Description      string `json:"description"`
	Players          int    `json:"players"`
	AIPlayers        int    `json:"ai_players"`
	MarkersPerPlayer int    `json:"markers_per_player"`
	TotalTiles       int    `json:"total_tiles"`
}
