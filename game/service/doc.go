// Package service provides the business logic layer for Tile Kingdoms.
//
// The service package implements:
//   - Multi-session match management
//   - Configuration management and loading
//   - Turn processing for tile placement and marker claims
//   - Driving AI opponents between human turns
//   - Turn history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation, configuration management, and
// business logic orchestration. Each session owns its own engine and AI
// evaluator. After every human action the service plays AI seats until a
// human is to move again or the match ends.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	placements, _ := gameService.LegalPlacements(ctx, sessionInfo.ID, 0)
//	cell := placements.Cells[0]
//	result, err := gameService.PlaceTile(ctx, sessionInfo.ID, 0, cell.X, cell.Y)
//
// Session Management:
//
// Sessions are identified by unique 4-character IDs and maintain independent
// match state. Multiple sessions can run concurrently with different
// configurations.
package service
