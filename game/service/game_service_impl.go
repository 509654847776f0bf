package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/tilekingdoms/game/ai"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
)

// maxAITurns bounds one PlayAITurn call; a full pool is far smaller
const maxAITurns = 500

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session. When the first seats belong to
// the AI their turns are played before returning.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if !allAI(session.Engine) {
		if _, err := s.runAITurns(session); err != nil {
			return nil, err
		}
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccess(),
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccess(),
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccess(),
			GameState:      sess.Engine.GetState(),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return nil
}

// LegalPlacements lists where the drawn tile fits at the given rotation
func (s *gameServiceImpl) LegalPlacements(ctx context.Context, sessionID string, rotation int) (*PlacementsResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	idx, ok := sess.Engine.CurrentTile()
	if !ok {
		if sess.Engine.IsGameOver() {
			return nil, engine.ErrGameOver
		}
		return nil, fmt.Errorf("%w: no tile waiting to be placed", engine.ErrWrongPhase)
	}

	catalog := sess.Engine.Catalog()
	cells := sess.Engine.LegalCells(idx, rotation)
	if cells == nil {
		cells = []engine.Position{}
	}
	rotation = ((rotation % 4) + 4) % 4
	return &PlacementsResult{
		Archetype: catalog[idx].ID,
		Rotation:  rotation,
		Edges:     catalog.EffectiveEdges(idx, rotation),
		Cells:     cells,
	}, nil
}

// PlaceTile places the drawn tile for the human player to move
func (s *gameServiceImpl) PlaceTile(ctx context.Context, sessionID string, rotation, x, y int) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := humanToMove(sess.Engine); err != nil {
		return nil, err
	}

	mark := sess.Engine.GetState().TotalActions
	wasOver := sess.Engine.IsGameOver()

	player := sess.Engine.CurrentPlayer()
	placement, err := sess.Engine.PlaceCurrent(rotation, x, y)
	if err != nil {
		return nil, err
	}
	log.Printf("[PLACE] session=%s player=%d placed %s r%d at (%d,%d) completions=%d",
		sess.ID, player, placement.Archetype, placement.Rotation, x, y, len(placement.TriggeredCompletions))

	result := &ActionResult{
		Success:   true,
		PlayerID:  player,
		Placement: placement,
		Awards:    placement.ScoredPoints,
	}
	result.Events = append(result.Events, s.placementEvents(sess, placement)...)
	return s.finishAction(sess, result, mark, wasOver)
}

// PlaceMarker claims a feature of the tile just placed
func (s *gameServiceImpl) PlaceMarker(ctx context.Context, sessionID string, featureIndex int) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := humanToMove(sess.Engine); err != nil {
		return nil, err
	}

	mark := sess.Engine.GetState().TotalActions
	wasOver := sess.Engine.IsGameOver()

	player := sess.Engine.CurrentPlayer()
	awards, err := sess.Engine.ClaimFeature(featureIndex)
	if err != nil {
		return nil, err
	}
	log.Printf("[MARKER] session=%s player=%d feature=%d", sess.ID, player, featureIndex)

	result := &ActionResult{
		Success:  true,
		PlayerID: player,
		Awards:   awards,
	}
	return s.finishAction(sess, result, mark, wasOver)
}

// SkipMarker declines the marker phase
func (s *gameServiceImpl) SkipMarker(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if err := humanToMove(sess.Engine); err != nil {
		return nil, err
	}

	mark := sess.Engine.GetState().TotalActions
	wasOver := sess.Engine.IsGameOver()

	if err := sess.Engine.SkipMarker(); err != nil {
		return nil, err
	}
	return s.finishAction(sess, &ActionResult{Success: true}, mark, wasOver)
}

// PlayAITurn plays every consecutive AI turn starting with the current player
func (s *gameServiceImpl) PlayAITurn(ctx context.Context, sessionID string) (*ActionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Engine.IsGameOver() {
		return nil, engine.ErrGameOver
	}
	if !sess.Engine.Players()[sess.Engine.CurrentPlayer()].AI {
		return nil, engine.ErrNotAITurn
	}

	mark := sess.Engine.GetState().TotalActions
	return s.finishAction(sess, &ActionResult{Success: true}, mark, false)
}

// Reset resets a game session to its initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := sess.Engine.Reset(); err != nil {
		return nil, err
	}
	if !allAI(sess.Engine) {
		if _, err := s.runAITurns(sess); err != nil {
			return nil, err
		}
	}
	return sess.Engine.GetState(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetTurnHistory returns paginated turn history
func (s *gameServiceImpl) GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetTurnHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var entries []engine.TurnHistoryEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			entries = append(entries, history[i])
		}
	} else if start < total {
		entries = history[start:end]
	}

	if entries == nil {
		entries = []engine.TurnHistoryEntry{}
	}

	return &HistoryResponse{
		Entries:      entries,
		TotalActions: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// getSession looks up a session and touches its access time. Callers hold s.mu.
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// finishAction plays any AI turns that follow, then fills in the state,
// message and events recorded since mark.
func (s *gameServiceImpl) finishAction(sess *Session, result *ActionResult, mark int, wasOver bool) (*ActionResult, error) {
	reports, err := s.runAITurns(sess)
	if err != nil {
		return nil, err
	}
	result.AITurns = reports
	for _, r := range reports {
		if r.Placement != nil {
			result.Events = append(result.Events, s.placementEvents(sess, r.Placement)...)
		}
	}

	state := sess.Engine.GetState()
	result.Events = append(result.Events, historyEvents(sess.Engine, state.History, mark)...)
	if state.GameOver && !wasOver {
		result.Events = append(result.Events, newEvent("game_over", state.Message, -1))
	}
	result.GameState = state
	result.Message = state.Message
	return result, nil
}

// runAITurns plays while the current player is AI controlled
func (s *gameServiceImpl) runAITurns(sess *Session) ([]*ai.TurnReport, error) {
	if sess.Opponent == nil {
		sess.Opponent = ai.NewEvaluator(sess.Config.AI, rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	var reports []*ai.TurnReport
	for i := 0; i < maxAITurns; i++ {
		if sess.Engine.IsGameOver() || !sess.Engine.Players()[sess.Engine.CurrentPlayer()].AI {
			break
		}
		report, err := sess.Opponent.PlayTurn(sess.Engine)
		if err != nil {
			return reports, fmt.Errorf("ai turn: %w", err)
		}
		if report.Placement != nil {
			log.Printf("[AI] session=%s player=%d placed %s r%d at (%d,%d) score=%.2f",
				sess.ID, report.PlayerID, report.Placement.Archetype, report.Placement.Rotation,
				report.Placement.PlacedAt.X, report.Placement.PlacedAt.Y, report.Score)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// placementEvents describes completions and payouts caused by one placement
func (s *gameServiceImpl) placementEvents(sess *Session, placement *engine.PlacementResult) []GameEvent {
	var events []GameEvent
	for _, id := range placement.TriggeredCompletions {
		region, ok := sess.Engine.Region(id)
		if !ok {
			continue
		}
		e := newEvent("region_completed",
			fmt.Sprintf("%s of %d tiles completed", region.Type, region.TileCount), -1)
		pos := placement.PlacedAt
		e.Position = &pos
		events = append(events, e)
	}
	players := sess.Engine.Players()
	for _, a := range placement.ScoredPoints {
		e := newEvent("points_awarded",
			fmt.Sprintf("%s scores %d points", players[a.PlayerID].Name, a.Points), a.PlayerID)
		e.Points = a.Points
		events = append(events, e)
	}
	return events
}

// historyEvents converts history entries recorded after mark into events
func historyEvents(g *engine.GameEngine, history []engine.TurnHistoryEntry, mark int) []GameEvent {
	players := g.Players()
	name := func(pid int) string {
		if pid >= 0 && pid < len(players) {
			return players[pid].Name
		}
		return "unknown"
	}

	var events []GameEvent
	for _, h := range history {
		if h.ActionNumber <= mark {
			continue
		}
		var e GameEvent
		switch h.Action {
		case "place":
			e = newEvent("tile_placed", fmt.Sprintf("%s placed %s at (%d,%d) rotation %d",
				name(h.PlayerID), h.Archetype, h.Position.X, h.Position.Y, h.Rotation), h.PlayerID)
		case "marker":
			e = newEvent("marker_placed", fmt.Sprintf("%s placed a marker on feature %d at (%d,%d)",
				name(h.PlayerID), h.FeatureIndex, h.Position.X, h.Position.Y), h.PlayerID)
		case "skip":
			e = newEvent("marker_skipped", fmt.Sprintf("%s kept their markers", name(h.PlayerID)), h.PlayerID)
		case "discard":
			e = newEvent("tile_discarded", fmt.Sprintf("%s had no legal placement and was discarded", h.Archetype), h.PlayerID)
		case "final_scoring":
			e = newEvent("points_awarded", fmt.Sprintf("%s scores %d points at game end", name(h.PlayerID), h.Points), h.PlayerID)
		default:
			continue
		}
		e.Points = h.Points
		if h.Position != nil {
			pos := *h.Position
			e.Position = &pos
		}
		events = append(events, e)
	}
	return events
}

func newEvent(eventType, message string, playerID int) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
		PlayerID:  playerID,
	}
}

// humanToMove rejects actions when the game is over or an AI holds the turn
func humanToMove(g *engine.GameEngine) error {
	if g.IsGameOver() {
		return engine.ErrGameOver
	}
	if g.Players()[g.CurrentPlayer()].AI {
		return fmt.Errorf("%w: current player is AI controlled, use the ai-turn action", engine.ErrWrongPhase)
	}
	return nil
}

func allAI(g *engine.GameEngine) bool {
	for _, p := range g.Players() {
		if !p.AI {
			return false
		}
	}
	return true
}
