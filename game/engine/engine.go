package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() (*GameState, error)
	IsGameOver() bool
	GetConfig() *GameConfig

	// Placement rules
	CanPlace(archetype, rotation, x, y int) bool
	LegalCells(archetype, rotation int) []Position
	Place(archetype, rotation, x, y int) (*PlacementResult, error)
	FollowerOptions(x, y int) []FollowerOption
	PlaceMarker(x, y, featureIndex, playerID int) bool

	// Turn flow
	CurrentPlayer() int
	CurrentTile() (int, bool)
	Phase() Phase
	DrawForTurn() error
	PlaceCurrent(rotation, x, y int) (*PlacementResult, error)
	ClaimFeature(featureIndex int) ([]ScoreAward, error)
	SkipMarker() error
	Finish() []ScoreAward

	// Queries
	Catalog() Catalog
	Players() []Player
	Regions() []RegionView
	PoolSize() int
	TilesPlaced() int
	GetTurnHistory() []TurnHistoryEntry
}

// GameEngine implements the Engine interface. It is not safe for concurrent
// use; the owning session serialises access.
type GameEngine struct {
	config  *GameConfig
	catalog Catalog
	rng     *rand.Rand

	board   *Board
	regions *RegionGraph
	pool    *Pool
	players []Player

	turn          int
	current       int
	phase         Phase
	currentTile   int
	lastPlacement *Position
	options       []FollowerOption
	discarded     int
	message       string
	gameOver      bool
	finalScored   bool
	winners       []int

	history      []TurnHistoryEntry
	totalActions int
}

// NewEngine creates a new match: the start tile is placed at the origin and
// the first player has drawn.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := newBareEngine(config)
	e.pool = NewPool(e.catalog, e.rng)
	if err := e.start(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new engine with the classic configuration
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultGameConfig())
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return e
}

// newBareEngine builds an engine with an empty board, an empty pool and
// fresh players. No tile is placed and no turn is started.
func newBareEngine(config *GameConfig) *GameEngine {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &GameEngine{
		config:      config,
		catalog:     DefaultCatalog().WithCounts(config.TileCounts),
		rng:         rand.New(rand.NewSource(seed)),
		pool:        NewPoolFromOrder(nil),
		phase:       PhasePlace,
		currentTile: -1,
		history:     []TurnHistoryEntry{},
	}
	e.board = NewBoard(e.catalog)
	e.regions = NewRegionGraph()
	e.players = make([]Player, len(config.Players))
	for i, p := range config.Players {
		e.players[i] = Player{
			ID:      i,
			Name:    p.Name,
			AI:      p.AI,
			Markers: config.MarkersPerPlayer,
		}
	}
	return e
}

// start places the start tile outside the pool and begins turn 1
func (e *GameEngine) start() error {
	idx := e.catalog.IndexOf(e.config.StartTile)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTile, e.config.StartTile)
	}
	if _, err := e.Place(idx, 0, 0, 0); err != nil {
		return fmt.Errorf("placing start tile: %w", err)
	}

	e.turn = 1
	e.current = 0
	e.message = e.config.Messages.Welcome
	e.drawForTurn()
	return nil
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Catalog returns the archetypes in play
func (e *GameEngine) Catalog() Catalog {
	return e.catalog
}

// CanPlace checks edge compatibility and adjacency for a candidate placement
func (e *GameEngine) CanPlace(archetype, rotation, x, y int) bool {
	return e.board.CanPlace(archetype, rotation, x, y)
}

// LegalCells returns every cell where the archetype fits at the rotation
func (e *GameEngine) LegalCells(archetype, rotation int) []Position {
	return e.board.LegalCells(archetype, rotation)
}

// Place commits a tile: regions are created and merged, completions are
// detected and scored. On error the engine is unchanged.
func (e *GameEngine) Place(archetype, rotation, x, y int) (*PlacementResult, error) {
	if !e.catalog.Valid(archetype) {
		return nil, fmt.Errorf("%w: index %d", ErrUnknownTile, archetype)
	}
	if !e.board.CanPlace(archetype, rotation, x, y) {
		return nil, fmt.Errorf("%w: %s rotation %d at (%d, %d)",
			ErrInvalidPlacement, e.catalog[archetype].ID, rotation, x, y)
	}

	rotation = normalizeRotation(rotation)
	pos := Position{X: x, Y: y}
	def := e.catalog[archetype]

	tile := &PlacedTile{
		Archetype: archetype,
		Rotation:  rotation,
		RegionIDs: make([]int, len(def.Features)),
	}
	e.board.put(pos, tile)
	for fi, f := range def.Features {
		tile.RegionIDs[fi] = e.regions.Create(f.Type, Member{X: x, Y: y, FeatureIndex: fi})
	}

	edges := e.catalog.EffectiveEdges(archetype, rotation)
	for edge := 0; edge < 4; edge++ {
		if edges[edge] == TerrainField {
			continue
		}
		npos, opp := NeighborOf(pos, edge)
		neighbor, ok := e.board.Tile(npos)
		if !ok {
			continue
		}
		mine := e.catalog.FeatureForEdge(archetype, rotation, edge)
		theirs := e.catalog.FeatureForEdge(neighbor.Archetype, neighbor.Rotation, opp)
		if mine < 0 || theirs < 0 {
			continue
		}
		a := e.regions.Get(neighbor.RegionIDs[theirs])
		b := e.regions.Get(tile.RegionIDs[mine])
		if a.Complete || a.Scored || b.Complete || b.Scored {
			continue
		}
		e.regions.Union(a.ID, b.ID)
	}

	result := &PlacementResult{
		PlacedAt:             pos,
		Archetype:            def.ID,
		Rotation:             rotation,
		TriggeredCompletions: []int{},
		ScoredPoints:         []ScoreAward{},
	}
	for _, r := range e.checkCompletions(e.candidatesAround(pos)) {
		result.TriggeredCompletions = append(result.TriggeredCompletions, r.ID)
		result.ScoredPoints = append(result.ScoredPoints, e.scoreRegion(r, false)...)
	}
	return result, nil
}

// FollowerOptions lists the features of the tile at (x, y) that can still be
// claimed: non-Field, unclaimed, neither complete nor scored.
func (e *GameEngine) FollowerOptions(x, y int) []FollowerOption {
	tile, ok := e.board.Tile(Position{X: x, Y: y})
	if !ok {
		return nil
	}
	var options []FollowerOption
	for fi, f := range e.catalog[tile.Archetype].Features {
		if f.Type == Field {
			continue
		}
		r := e.regions.Lookup(tile.RegionIDs[fi])
		if r == nil || r.Claimed() || r.Complete || r.Scored {
			continue
		}
		options = append(options, FollowerOption{
			FeatureIndex: fi,
			RegionType:   r.Type,
			RegionID:     r.ID,
		})
	}
	return options
}

// PlaceMarker claims one feature of a placed tile for a player.
// It reports false without any state change when the claim is not allowed.
func (e *GameEngine) PlaceMarker(x, y, featureIndex, playerID int) bool {
	if playerID < 0 || playerID >= len(e.players) || e.players[playerID].Markers <= 0 {
		return false
	}
	tile, ok := e.board.Tile(Position{X: x, Y: y})
	if !ok {
		return false
	}
	features := e.catalog[tile.Archetype].Features
	if featureIndex < 0 || featureIndex >= len(features) || features[featureIndex].Type == Field {
		return false
	}
	r := e.regions.Get(tile.RegionIDs[featureIndex])
	if r == nil || r.Claimed() || r.Complete || r.Scored {
		return false
	}

	e.players[playerID].Markers--
	tile.Markers = append(tile.Markers, Marker{FeatureIndex: featureIndex, PlayerID: playerID})
	r.Owners[playerID]++
	return true
}

// Finish runs end-game scoring once and ends the match
func (e *GameEngine) Finish() []ScoreAward {
	if e.finalScored {
		return nil
	}
	awards := e.scoreEndGame()
	e.finalScored = true
	e.gameOver = true
	e.phase = PhaseOver
	e.currentTile = -1
	e.options = nil

	for _, a := range awards {
		e.record(TurnHistoryEntry{
			Action:   "final_scoring",
			PlayerID: a.PlayerID,
			Points:   a.Points,
		})
	}

	e.winners = ScoreLeaders(e.players)
	names := make([]string, len(e.winners))
	best := 0
	for i, pid := range e.winners {
		names[i] = e.players[pid].Name
		best = e.players[pid].Score
	}
	e.message = fmt.Sprintf(e.config.Messages.GameOver, strings.Join(names, " & "), best)
	return awards
}

// Reset starts a fresh match with the same config, keeping cumulative history.
// On error the current match is left as it was.
func (e *GameEngine) Reset() (*GameState, error) {
	fresh := newBareEngine(e.config)
	fresh.pool = NewPool(fresh.catalog, fresh.rng)
	fresh.history = append([]TurnHistoryEntry{}, e.history...)
	fresh.totalActions = e.totalActions
	if err := fresh.start(); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	*e = *fresh

	return e.GetState(), nil
}

// Clone returns a deep copy sharing only the immutable config and catalog.
// The copy's random source is independent of the original's.
func (e *GameEngine) Clone() *GameEngine {
	cp := *e
	cp.rng = rand.New(rand.NewSource(e.rng.Int63()))
	cp.board = e.board.clone()
	cp.regions = e.regions.clone()
	cp.pool = e.pool.Clone()
	cp.players = append([]Player(nil), e.players...)
	cp.options = append([]FollowerOption(nil), e.options...)
	cp.winners = append([]int(nil), e.winners...)
	cp.history = append([]TurnHistoryEntry(nil), e.history...)
	if e.lastPlacement != nil {
		p := *e.lastPlacement
		cp.lastPlacement = &p
	}
	return &cp
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.gameOver
}

// Players returns a copy of the player table
func (e *GameEngine) Players() []Player {
	return append([]Player(nil), e.players...)
}

// PoolSize returns the number of tiles left to draw
func (e *GameEngine) PoolSize() int {
	return e.pool.Len()
}

// TilesPlaced returns the number of tiles on the board, start tile included
func (e *GameEngine) TilesPlaced() int {
	return e.board.Len()
}

// Region returns a snapshot of the region holding id
func (e *GameEngine) Region(id int) (RegionView, bool) {
	r := e.regions.Lookup(id)
	if r == nil {
		return RegionView{}, false
	}
	return e.regionView(r), true
}

// RegionAt returns the region of one feature of a placed tile
func (e *GameEngine) RegionAt(x, y, featureIndex int) (RegionView, bool) {
	tile, ok := e.board.Tile(Position{X: x, Y: y})
	if !ok || featureIndex < 0 || featureIndex >= len(tile.RegionIDs) {
		return RegionView{}, false
	}
	return e.Region(tile.RegionIDs[featureIndex])
}

// NeighborRegion returns the region of the neighboring feature that faces
// cell (x, y) across edge. False when the neighbor is empty or shows Field.
func (e *GameEngine) NeighborRegion(x, y, edge int) (RegionView, bool) {
	npos, opp := NeighborOf(Position{X: x, Y: y}, edge)
	neighbor, ok := e.board.Tile(npos)
	if !ok {
		return RegionView{}, false
	}
	fi := e.catalog.FeatureForEdge(neighbor.Archetype, neighbor.Rotation, opp)
	if fi < 0 || e.catalog[neighbor.Archetype].Features[fi].Type == Field {
		return RegionView{}, false
	}
	return e.Region(neighbor.RegionIDs[fi])
}

// OccupiedAround counts placed tiles in the 8 cells surrounding (x, y)
func (e *GameEngine) OccupiedAround(x, y int) int {
	return e.board.OccupiedAround(Position{X: x, Y: y})
}

// Regions returns snapshots of every live region in id order
func (e *GameEngine) Regions() []RegionView {
	roots := e.regions.Roots()
	out := make([]RegionView, 0, len(roots))
	for _, id := range roots {
		out = append(out, e.regionView(e.regions.Lookup(id)))
	}
	return out
}

func (e *GameEngine) regionView(r *Region) RegionView {
	owners := make(map[int]int, len(r.Owners))
	for k, v := range r.Owners {
		owners[k] = v
	}
	return RegionView{
		ID:        r.ID,
		Type:      r.Type,
		Members:   r.SortedMembers(),
		TileCount: r.TileCount(),
		Owners:    owners,
		OpenEdges: e.openEdges(r),
		Complete:  r.Complete,
		Scored:    r.Scored,
	}
}

// GetState returns a snapshot of the whole match
func (e *GameEngine) GetState() *GameState {
	state := &GameState{
		ConfigName:      e.config.Name,
		Turn:            e.turn,
		Phase:           e.phase,
		CurrentPlayer:   e.current,
		FollowerOptions: append([]FollowerOption(nil), e.options...),
		Players:         e.Players(),
		PoolRemaining:   e.pool.Len(),
		Discarded:       e.discarded,
		Tiles:           make([]TileView, 0, e.board.Len()),
		Regions:         e.Regions(),
		Message:         e.message,
		GameOver:        e.gameOver,
		Winners:         append([]int(nil), e.winners...),
		History:         e.GetTurnHistory(),
		TotalActions:    e.totalActions,
	}
	if e.currentTile >= 0 {
		state.CurrentTile = &CurrentTile{
			Index:     e.currentTile,
			Archetype: e.catalog[e.currentTile].ID,
			Edges:     e.catalog[e.currentTile].Edges,
		}
	}
	if e.lastPlacement != nil {
		p := *e.lastPlacement
		state.LastPlacement = &p
	}

	for _, pos := range e.board.Positions() {
		tile, _ := e.board.Tile(pos)
		ids := make([]int, len(tile.RegionIDs))
		for i, id := range tile.RegionIDs {
			ids[i] = e.regions.Resolve(id)
		}
		state.Tiles = append(state.Tiles, TileView{
			X:         pos.X,
			Y:         pos.Y,
			Archetype: e.catalog[tile.Archetype].ID,
			Rotation:  tile.Rotation,
			Edges:     e.catalog.EffectiveEdges(tile.Archetype, tile.Rotation),
			RegionIDs: ids,
			Markers:   append([]Marker(nil), tile.Markers...),
		})
	}
	return state
}

// GetTurnHistory returns the cumulative turn history
func (e *GameEngine) GetTurnHistory() []TurnHistoryEntry {
	return append([]TurnHistoryEntry{}, e.history...)
}

// GetLastAction returns the most recent history entry, or nil
func (e *GameEngine) GetLastAction() *TurnHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	entry := e.history[len(e.history)-1]
	return &entry
}

func (e *GameEngine) record(entry TurnHistoryEntry) {
	e.totalActions++
	entry.Turn = e.turn
	entry.Timestamp = time.Now().Unix()
	entry.ActionNumber = e.totalActions
	e.history = append(e.history, entry)
}
