package engine

import "errors"

// Terrain is the terrain painted on one side of a tile
type Terrain string

const (
	TerrainField Terrain = "F"
	TerrainCity  Terrain = "C"
	TerrainRoad  Terrain = "R"
)

// FeatureType identifies the kind of region a tile feature belongs to
type FeatureType string

const (
	City     FeatureType = "city"
	Road     FeatureType = "road"
	Cloister FeatureType = "cloister"
	Field    FeatureType = "field"
)

// Edge indices, clockwise from north
const (
	North = 0
	East  = 1
	South = 2
	West  = 3
)

// Game limits and defaults
const (
	MinPlayers              = 2
	MaxPlayers              = 5
	DefaultMarkers          = 7
	MaxMarkers              = 20
	DefaultStartTile        = "city_road"
	DefaultCityPoints       = 2
	DefaultRoadPoints       = 1
	DefaultEndGameCityDiv   = 2
	CloisterNeighborhoodLen = 8
)

// Phase is the turn phase of a match
type Phase string

const (
	PhasePlace  Phase = "place"
	PhaseMarker Phase = "marker"
	PhaseOver   Phase = "over"
)

var (
	ErrInvalidPlacement  = errors.New("invalid placement")
	ErrNoLegalPlacement  = errors.New("no legal placement for tile")
	ErrMarkerUnavailable = errors.New("marker unavailable")
	ErrPoolExhausted     = errors.New("tile pool exhausted")
	ErrGameOver          = errors.New("game is over")
	ErrWrongPhase        = errors.New("action not allowed in current phase")
	ErrNotAITurn         = errors.New("current player is not AI controlled")
	ErrUnknownTile       = errors.New("unknown tile archetype")
)

// Position represents x,y board coordinates. North is y-1.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Feature is one region-bearing part of a tile archetype
type Feature struct {
	Type  FeatureType `json:"type"`
	Edges []int       `json:"edges"`
}

// TileArchetype is an immutable catalog entry
type TileArchetype struct {
	ID       string     `json:"id"`
	Count    int        `json:"count"`
	Edges    [4]Terrain `json:"edges"`
	Features []Feature  `json:"features"`
}

// Marker is a player's token on one feature of a placed tile
type Marker struct {
	FeatureIndex int `json:"feature_index"`
	PlayerID     int `json:"player_id"`
}

// PlacedTile is a tile committed to the board
type PlacedTile struct {
	Archetype int      `json:"archetype"`
	Rotation  int      `json:"rotation"`
	RegionIDs []int    `json:"region_ids"`
	Markers   []Marker `json:"markers"`
}

// Member identifies one feature of one placed tile
type Member struct {
	X            int `json:"x"`
	Y            int `json:"y"`
	FeatureIndex int `json:"feature_index"`
}

// Pos returns the board position of the member's tile
func (m Member) Pos() Position {
	return Position{X: m.X, Y: m.Y}
}

// Region is a maximal connected set of same-type features
type Region struct {
	ID       int                 `json:"id"`
	Type     FeatureType         `json:"type"`
	Members  map[Member]struct{} `json:"-"`
	Owners   map[int]int         `json:"owners"`
	Complete bool                `json:"complete"`
	Scored   bool                `json:"scored"`
}

// Player holds per-player score and marker pool
type Player struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	AI      bool   `json:"ai"`
	Markers int    `json:"markers"`
	Score   int    `json:"score"`
}

// ScoreAward is points paid to one player for one region
type ScoreAward struct {
	PlayerID int  `json:"player_id"`
	RegionID int  `json:"region_id"`
	Points   int  `json:"points"`
	EndGame  bool `json:"end_game,omitempty"`
}

// PlacementResult reports what a committed placement caused
type PlacementResult struct {
	PlacedAt             Position     `json:"placed_at"`
	Archetype            string       `json:"archetype"`
	Rotation             int          `json:"rotation"`
	TriggeredCompletions []int        `json:"triggered_completions"`
	ScoredPoints         []ScoreAward `json:"scored_points"`
}

// FollowerOption is a feature on a placed tile that can still be claimed
type FollowerOption struct {
	FeatureIndex int         `json:"feature_index"`
	RegionType   FeatureType `json:"region_type"`
	RegionID     int         `json:"region_id"`
}

// TileView is a rendered view of a tile for clients
type TileView struct {
	X         int        `json:"x"`
	Y         int        `json:"y"`
	Archetype string     `json:"archetype"`
	Rotation  int        `json:"rotation"`
	Edges     [4]Terrain `json:"edges"`
	RegionIDs []int      `json:"region_ids"`
	Markers   []Marker   `json:"markers,omitempty"`
}

// RegionView is a read-only snapshot of a region
type RegionView struct {
	ID        int         `json:"id"`
	Type      FeatureType `json:"type"`
	Members   []Member    `json:"members"`
	TileCount int         `json:"tile_count"`
	Owners    map[int]int `json:"owners"`
	OpenEdges int         `json:"open_edges"`
	Complete  bool        `json:"complete"`
	Scored    bool        `json:"scored"`
}

// CurrentTile is the tile drawn for the active turn
type CurrentTile struct {
	Index     int        `json:"index"`
	Archetype string     `json:"archetype"`
	Edges     [4]Terrain `json:"edges"`
}

// GameState is the complete snapshot handed to presentation layers
type GameState struct {
	ConfigName      string             `json:"config_name"`
	Turn            int                `json:"turn"`
	Phase           Phase              `json:"phase"`
	CurrentPlayer   int                `json:"current_player"`
	CurrentTile     *CurrentTile       `json:"current_tile,omitempty"`
	LastPlacement   *Position          `json:"last_placement,omitempty"`
	FollowerOptions []FollowerOption   `json:"follower_options,omitempty"`
	Players         []Player           `json:"players"`
	PoolRemaining   int                `json:"pool_remaining"`
	Discarded       int                `json:"discarded"`
	Tiles           []TileView         `json:"tiles"`
	Regions         []RegionView       `json:"regions"`
	Message         string             `json:"message"`
	GameOver        bool               `json:"game_over"`
	Winners         []int              `json:"winners,omitempty"`
	History         []TurnHistoryEntry `json:"history"`
	TotalActions    int                `json:"total_actions"`
}

// TurnHistoryEntry records a single turn action
type TurnHistoryEntry struct {
	Action       string    `json:"action"`
	Turn         int       `json:"turn"`
	PlayerID     int       `json:"player_id"`
	Archetype    string    `json:"archetype,omitempty"`
	Rotation     int       `json:"rotation"`
	Position     *Position `json:"position,omitempty"`
	FeatureIndex int       `json:"feature_index,omitempty"`
	Points       int       `json:"points,omitempty"`
	Timestamp    int64     `json:"timestamp"`
	ActionNumber int       `json:"action_number"`
}
