package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/tilekingdoms/game/ai"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
	"github.com/wricardo/mcp-training/tilekingdoms/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex

	// baseSeed, when set, seeds unseeded configs: the nth session gets baseSeed+n
	baseSeed int64
	created  int64
}

// Option configures a Manager
type Option func(*Manager)

// WithBaseSeed makes matches built from unseeded configs replayable. A
// config that carries its own seed keeps it.
func WithBaseSeed(seed int64) Option {
	return func(m *Manager) { m.baseSeed = seed }
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates a new session with the given ID and configuration
func (m *Manager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	if id == "" {
		id = m.generateSessionID()
	} else if strings.TrimSpace(id) != id {
		return nil, ErrInvalidSessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Check if session already exists (case-insensitive)
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	if m.baseSeed != 0 && config.Seed == 0 {
		seeded := *config
		seeded.Seed = m.baseSeed + m.created
		config = &seeded
	}
	m.created++

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Opponent:       ai.NewEvaluator(config.AI, opponentRand(config)),
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[strings.ToLower(id)] = session
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if session, exists := m.sessions[strings.ToLower(id)]; exists {
		return session, nil
	}
	return nil, ErrSessionNotFound
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.Touch()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for id, session := range m.sessions {
		if session.LastAccess().Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	for {
		// Generate 2 random bytes (4 hex characters)
		bytes := make([]byte, 2)
		rand.Read(bytes)
		id := hex.EncodeToString(bytes)

		m.mu.RLock()
		taken := m.sessionExists(id)
		m.mu.RUnlock()
		if !taken {
			return id
		}
	}
}

// sessionExists checks if a session exists (case-insensitive). Callers hold m.mu.
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

// opponentRand seeds the AI from the match seed so seeded matches replay identically
func opponentRand(config *engine.GameConfig) *mrand.Rand {
	if config.Seed != 0 {
		return mrand.New(mrand.NewSource(config.Seed + 1))
	}
	return mrand.New(mrand.NewSource(time.Now().UnixNano()))
}
