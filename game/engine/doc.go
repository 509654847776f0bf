// Package engine provides the core rules for Tile Kingdoms.
//
// The engine package implements the game mechanics including:
//   - Tile catalog, rotation and the shuffled draw pool
//   - Edge-matched placement on an unbounded board
//   - Region aggregation of cities, roads, cloisters and fields
//   - Completion detection, scoring and marker return
//   - Turn flow, end-of-game scoring and configuration loading
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is a snapshot of a match, while
// GameConfig defines players, tile counts and scoring loaded from JSON or
// YAML files.
//
// Usage:
//
//	config, err := engine.LoadGameConfig("configs/classic.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Place the drawn tile, then decline to place a marker
//	if _, err := gameEngine.PlaceCurrent(0, 0, 1); err == nil {
//		_ = gameEngine.SkipMarker()
//	}
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Players take turns drawing a tile and placing it so that every touching
// edge matches. A player may then put a marker on an unclaimed feature of
// that tile. Completed cities, roads and cloisters score immediately for
// the players with the most markers on them; unfinished ones score when the
// pool runs out.
package engine
