package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlayerConfig describes one seat at the table
type PlayerConfig struct {
	Name string `json:"name" yaml:"name"`
	AI   bool   `json:"ai" yaml:"ai"`
}

// ScoringConfig holds the point multipliers
type ScoringConfig struct {
	CityPoints         int `json:"city_points" yaml:"city_points"`
	RoadPoints         int `json:"road_points" yaml:"road_points"`
	EndGameCityDivisor int `json:"end_game_city_divisor" yaml:"end_game_city_divisor"`
}

// AIConfig tunes the opponent evaluator
type AIConfig struct {
	Jitter             float64 `json:"jitter" yaml:"jitter"`
	CenterBias         float64 `json:"center_bias" yaml:"center_bias"`
	EarlyGameTiles     int     `json:"early_game_tiles" yaml:"early_game_tiles"`
	MinMarkerValue     float64 `json:"min_marker_value" yaml:"min_marker_value"`
	LowMarkerThreshold int     `json:"low_marker_threshold" yaml:"low_marker_threshold"`
	LowMarkerMinValue  float64 `json:"low_marker_min_value" yaml:"low_marker_min_value"`
}

// GameConfig represents a match configuration loaded from JSON or YAML
type GameConfig struct {
	Name             string         `json:"name" yaml:"name"`
	Description      string         `json:"description" yaml:"description"`
	Players          []PlayerConfig `json:"players" yaml:"players"`
	MarkersPerPlayer int            `json:"markers_per_player" yaml:"markers_per_player"`
	StartTile        string         `json:"start_tile" yaml:"start_tile"`
	Seed             int64          `json:"seed,omitempty" yaml:"seed,omitempty"`
	TileCounts       map[string]int `json:"tile_counts,omitempty" yaml:"tile_counts,omitempty"`
	Scoring          ScoringConfig  `json:"scoring" yaml:"scoring"`
	AI               AIConfig       `json:"ai" yaml:"ai"`
	Messages         struct {
		Welcome   string `json:"welcome" yaml:"welcome"`
		YourTurn  string `json:"your_turn" yaml:"your_turn"`
		Discarded string `json:"discarded" yaml:"discarded"`
		Completed string `json:"completed" yaml:"completed"`
		GameOver  string `json:"game_over" yaml:"game_over"`
	} `json:"messages" yaml:"messages"`
}

// DefaultGameConfig returns the classic human-vs-AI setup
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:        "classic",
		Description: "Classic two-player match against the AI with the base tile set",
		Players: []PlayerConfig{
			{Name: "Player"},
			{Name: "AI", AI: true},
		},
		MarkersPerPlayer: DefaultMarkers,
		StartTile:        DefaultStartTile,
		Scoring: ScoringConfig{
			CityPoints:         DefaultCityPoints,
			RoadPoints:         DefaultRoadPoints,
			EndGameCityDivisor: DefaultEndGameCityDiv,
		},
		AI: AIConfig{
			Jitter:             0.5,
			CenterBias:         0.1,
			EarlyGameTiles:     15,
			MinMarkerValue:     2,
			LowMarkerThreshold: 2,
			LowMarkerMinValue:  4,
		},
	}
	config.Messages.Welcome = "Welcome to Tile Kingdoms! Build cities, roads and monasteries."
	config.Messages.YourTurn = "%s to place %s"
	config.Messages.Discarded = "%s has no legal placement and was discarded"
	config.Messages.Completed = "%s completed for %d points"
	config.Messages.GameOver = "Game over! %s wins with %d points"
	return config
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if len(config.Players) < MinPlayers || len(config.Players) > MaxPlayers {
		return fmt.Errorf("config validation: players must be between %d and %d, got %d",
			MinPlayers, MaxPlayers, len(config.Players))
	}
	for i, p := range config.Players {
		if p.Name == "" {
			return fmt.Errorf("config validation: players[%d].name is required", i)
		}
	}

	if config.MarkersPerPlayer < 1 || config.MarkersPerPlayer > MaxMarkers {
		return fmt.Errorf("config validation: markers_per_player must be between 1 and %d, got %d",
			MaxMarkers, config.MarkersPerPlayer)
	}

	catalog := DefaultCatalog()
	if catalog.IndexOf(config.StartTile) < 0 {
		return fmt.Errorf("config validation: unknown start_tile '%s'", config.StartTile)
	}
	for id, n := range config.TileCounts {
		if catalog.IndexOf(id) < 0 {
			return fmt.Errorf("config validation: tile_counts references unknown tile '%s'", id)
		}
		if n < 0 {
			return fmt.Errorf("config validation: tile_counts['%s'] must not be negative, got %d", id, n)
		}
	}
	if catalog.WithCounts(config.TileCounts).TotalTiles() == 0 {
		return fmt.Errorf("config validation: tile pool is empty")
	}

	if config.Scoring.CityPoints < 1 || config.Scoring.RoadPoints < 1 {
		return fmt.Errorf("config validation: scoring points must be positive")
	}
	if config.Scoring.EndGameCityDivisor < 1 {
		return fmt.Errorf("config validation: scoring.end_game_city_divisor must be at least 1, got %d",
			config.Scoring.EndGameCityDivisor)
	}

	if config.AI.Jitter < 0 || config.AI.CenterBias < 0 {
		return fmt.Errorf("config validation: ai.jitter and ai.center_bias must not be negative")
	}
	if config.AI.EarlyGameTiles < 0 || config.AI.LowMarkerThreshold < 0 {
		return fmt.Errorf("config validation: ai thresholds must not be negative")
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("config validation: messages.game_over is required")
	}
	if !strings.Contains(config.Messages.GameOver, "%s") || !strings.Contains(config.Messages.GameOver, "%d") {
		return fmt.Errorf("config validation: messages.game_over must contain %%s for winners and %%d for score")
	}
	if config.Messages.YourTurn != "" && strings.Count(config.Messages.YourTurn, "%s") != 2 {
		return fmt.Errorf("config validation: messages.your_turn must contain %%s for player and %%s for tile")
	}
	if config.Messages.Discarded != "" && !strings.Contains(config.Messages.Discarded, "%s") {
		return fmt.Errorf("config validation: messages.discarded must contain %%s for tile")
	}
	if config.Messages.Completed != "" && (!strings.Contains(config.Messages.Completed, "%s") || !strings.Contains(config.Messages.Completed, "%d")) {
		return fmt.Errorf("config validation: messages.completed must contain %%s for region and %%d for points")
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	config, err := ParseGameConfig(data, filepath.Ext(configPath))
	if err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ParseGameConfig decodes a config document; ext selects YAML (".yaml", ".yml") or JSON
func ParseGameConfig(data []byte, ext string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}
