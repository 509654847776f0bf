package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/tilekingdoms/game/config"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
	"github.com/wricardo/mcp-training/tilekingdoms/game/service"
	"github.com/wricardo/mcp-training/tilekingdoms/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Unified sessions for multi-session view (must be before {id} pattern)
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Turn operations
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")
	api.HandleFunc("/sessions/{id}/placements", s.handleLegalPlacements).Methods("GET")
	api.HandleFunc("/sessions/{id}/place", s.handlePlaceTile).Methods("POST")
	api.HandleFunc("/sessions/{id}/marker", s.handlePlaceMarker).Methods("POST")
	api.HandleFunc("/sessions/{id}/skip-marker", s.handleSkipMarker).Methods("POST")
	api.HandleFunc("/sessions/{id}/ai-turn", s.handleAITurn).Methods("POST")
	api.HandleFunc("/sessions/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service and engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidPlacement),
		errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrMarkerUnavailable),
		errors.Is(err, engine.ErrNotAITurn),
		errors.Is(err, config.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	// Support both new and old parameter names, but prefer config_id
	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	session, err := s.service.CreateSession(r.Context(), configID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else { // "accessed"
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	total := len(sessions)
	limit := total
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	if s.hub != nil {
		s.hub.CloseSession(sessionID)
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Turn Handlers

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleLegalPlacements(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	rotation := 0
	if rotStr := r.URL.Query().Get("rotation"); rotStr != "" {
		rot, err := strconv.Atoi(rotStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "rotation must be an integer")
			return
		}
		rotation = rot
	}

	placements, err := s.service.LegalPlacements(r.Context(), sessionID, rotation)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, placements)
}

func (s *Server) handlePlaceTile(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Rotation int  `json:"rotation"`
		X        *int `json:"x"`
		Y        *int `json:"y"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.X == nil || req.Y == nil {
		respondError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	result, err := s.service.PlaceTile(r.Context(), sessionID, req.Rotation, *req.X, *req.Y)
	if err != nil {
		fmt.Printf("[PLACE] session=%s r%d (%d,%d) REJECTED %v\n", sessionID, req.Rotation, *req.X, *req.Y, err)
		respondServiceError(w, err)
		return
	}

	// Compact server log for observability
	p := result.Placement
	fmt.Printf("[PLACE] session=%s %s r%d (%d,%d) completed=%d awards=%d ai_turns=%d\n",
		sessionID, p.Archetype, p.Rotation, p.PlacedAt.X, p.PlacedAt.Y,
		len(p.TriggeredCompletions), len(result.Awards), len(result.AITurns))

	s.broadcastResult(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePlaceMarker(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		FeatureIndex *int `json:"feature_index"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.FeatureIndex == nil {
		respondError(w, http.StatusBadRequest, "feature_index is required")
		return
	}

	result, err := s.service.PlaceMarker(r.Context(), sessionID, *req.FeatureIndex)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	fmt.Printf("[MARKER] session=%s feature=%d awards=%d ai_turns=%d\n",
		sessionID, *req.FeatureIndex, len(result.Awards), len(result.AITurns))

	s.broadcastResult(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSkipMarker(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.SkipMarker(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	fmt.Printf("[MARKER] session=%s skipped ai_turns=%d\n", sessionID, len(result.AITurns))

	s.broadcastResult(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAITurn(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.PlayAITurn(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	fmt.Printf("[AI] session=%s turns=%d game_over=%v\n", sessionID, len(result.AITurns), result.GameState.GameOver)

	s.broadcastResult(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Broadcast to WebSocket clients
	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetTurnHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// broadcastResult pushes the post-action state and its payouts to watchers
func (s *Server) broadcastResult(sessionID string, result *service.ActionResult) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastTurn(sessionID, result.GameState, turnPlays(result))
}

// turnPlays splits an action result into the human play and each AI turn
func turnPlays(result *service.ActionResult) []websocket.TurnPlay {
	var plays []websocket.TurnPlay
	if result.Placement != nil || len(result.Awards) > 0 {
		plays = append(plays, websocket.TurnPlay{
			PlayerID:  result.PlayerID,
			Placement: result.Placement,
			Awards:    result.Awards,
		})
	}
	for _, t := range result.AITurns {
		play := websocket.TurnPlay{PlayerID: t.PlayerID, Placement: t.Placement}
		if t.Placement != nil {
			play.Awards = append(play.Awards, t.Placement.ScoredPoints...)
		}
		play.Awards = append(play.Awards, t.MarkerAwards...)
		plays = append(plays, play)
	}
	return plays
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := mux.Vars(r)["name"]

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var gameConfig engine.GameConfig

	if err := json.NewDecoder(r.Body).Decode(&gameConfig); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if gameConfig.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), gameConfig.Name, &gameConfig); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": gameConfig.Name,
	})
}

// Unified Sessions Handler

func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sessions []*service.SessionInfo

	if sessionIDs := query.Get("sessionIds"); sessionIDs != "" {
		ids := strings.Split(sessionIDs, ",")
		sessions = make([]*service.SessionInfo, 0, len(ids))
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id != "" {
				session, err := s.service.GetSession(r.Context(), id)
				if err == nil {
					sessions = append(sessions, session)
				}
			}
		}
	} else if configName := query.Get("configName"); configName != "" {
		allSessions, err := s.service.ListSessions(r.Context())
		if err == nil {
			sessions = make([]*service.SessionInfo, 0)
			for _, session := range allSessions {
				if session.ConfigName == configName {
					sessions = append(sessions, session)
				}
			}
		}
	} else {
		allSessions, err := s.service.ListSessions(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		sessions = allSessions
	}

	configName := ""
	totalTiles := 0
	if len(sessions) > 0 {
		configName = sessions[0].ConfigName
		if cfg := sessions[0].GameConfig; cfg != nil {
			totalTiles = engine.DefaultCatalog().WithCounts(cfg.TileCounts).TotalTiles()
		}
	}

	response := map[string]interface{}{
		"config_name": configName,
		"total_tiles": totalTiles,
		"sessions":    make([]map[string]interface{}, 0, len(sessions)),
	}

	for _, session := range sessions {
		sessionData := map[string]interface{}{
			"session_id":    session.ID,
			"config_name":   session.ConfigName,
			"game_state":    session.GameState,
			"leaders":       leaders(session.GameState),
			"created_at":    session.CreatedAt,
			"last_accessed": session.LastAccessedAt,
		}
		response["sessions"] = append(response["sessions"].([]map[string]interface{}), sessionData)
	}

	respondJSON(w, http.StatusOK, response)
}

// leaders names the players currently holding the top score
func leaders(state *engine.GameState) []string {
	if state == nil {
		return nil
	}
	var names []string
	for _, pid := range engine.ScoreLeaders(state.Players) {
		names = append(names, state.Players[pid].Name)
	}
	return names
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	_, err := s.service.GetSession(context.Background(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	if s.hub == nil {
		http.Error(w, "WebSocket not available", http.StatusServiceUnavailable)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
