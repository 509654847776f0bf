// Package session provides session management for Tile Kingdoms.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session carries its own game engine, an AI evaluator for the AI seats,
// and metadata like creation time and last access time. Matches live in
// memory only.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new session
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//
//	// Drop sessions idle for more than an hour
//	removed := manager.CleanupExpiredSessions(time.Hour)
package session
