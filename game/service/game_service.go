package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/tilekingdoms/game/ai"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Turn Operations
	LegalPlacements(ctx context.Context, sessionID string, rotation int) (*PlacementsResult, error)
	PlaceTile(ctx context.Context, sessionID string, rotation, x, y int) (*ActionResult, error)
	PlaceMarker(ctx context.Context, sessionID string, featureIndex int) (*ActionResult, error)
	SkipMarker(ctx context.Context, sessionID string) (*ActionResult, error)
	PlayAITurn(ctx context.Context, sessionID string) (*ActionResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Opponent       *ai.Evaluator
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	accessMu sync.Mutex
}

// Touch records an access. Safe to call while readers hold the service lock.
func (s *Session) Touch() {
	s.accessMu.Lock()
	s.LastAccessedAt = time.Now()
	s.accessMu.Unlock()
}

// LastAccess returns the time of the most recent access
func (s *Session) LastAccess() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.LastAccessedAt
}
