// Package config provides configuration management for Tile Kingdoms.
//
// The config package handles:
//   - Loading match configurations from JSON or YAML files
//   - Schema validation against an embedded JSON Schema
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Configurations live in the configs directory as .json, .yaml or .yml
// files. Each one defines the seats at the table (name and whether the AI
// plays it), markers per player, the start tile, optional per-archetype tile
// counts, scoring multipliers, AI tuning and message templates.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("classic")
//	configs, err := manager.ListConfigs()
//
// Validation:
//
// A document is first checked against the schema, which catches unknown
// fields and wrong types, and then by engine.ValidateGameConfig, which checks
// tile ids and message templates.
package config
