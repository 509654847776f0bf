package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "Test Config"
	config.Description = "Test configuration"
	return config
}

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	t.Helper()

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}

	var data []byte
	var err error
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		defaultConfig := createValidConfig()
		defaultConfig.Name = "Default"
		writeConfigFile(t, dir, "default", defaultConfig)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager == nil {
			t.Error("Expected manager to be non-nil")
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("missing default config", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		manager, err := NewManager(dir)
		if err != nil {
			t.Errorf("NewManager should succeed even without config files, got error: %v", err)
		}
		if manager == nil {
			t.Fatal("Expected manager to be created")
		}

		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if err := engine.ValidateGameConfig(defaultConfig); err != nil {
			t.Errorf("Built-in default should be valid: %v", err)
		}
	})

	t.Run("classic preferred as default", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		first := createValidConfig()
		first.Name = "Alpha"
		writeConfigFile(t, dir, "alpha", first)

		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic.yaml", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Classic" {
			t.Errorf("Expected classic as default, got %s", got)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	defaultConfig := createValidConfig()
	defaultConfig.Name = "Default"
	writeConfigFile(t, dir, "default", defaultConfig)

	easyConfig := createValidConfig()
	easyConfig.Name = "Easy"
	easyConfig.MarkersPerPlayer = 12
	writeConfigFile(t, dir, "easy", easyConfig)

	yamlConfig := createValidConfig()
	yamlConfig.Name = "Yaml"
	yamlConfig.Players = append(yamlConfig.Players, engine.PlayerConfig{Name: "Third", AI: true})
	writeConfigFile(t, dir, "three.yaml", yamlConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
		if config.MarkersPerPlayer != 12 {
			t.Errorf("Expected 12 markers, got %d", config.MarkersPerPlayer)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("easy.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
	})

	t.Run("load yaml without extension", func(t *testing.T) {
		config, err := manager.LoadConfig("three")
		if err != nil {
			t.Fatalf("Failed to load yaml config: %v", err)
		}
		if len(config.Players) != 3 || !config.Players[2].AI {
			t.Errorf("Expected 3 players with an AI third seat, got %+v", config.Players)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("easy")

		config2, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}

		// Should be the same pointer (cached)
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("load config failing schema", func(t *testing.T) {
		invalidData := []byte(`{"name": ""}`) // Missing required fields
		if err := os.WriteFile(filepath.Join(dir, "invalid.json"), invalidData, 0644); err != nil {
			t.Fatalf("Failed to write invalid config: %v", err)
		}

		_, err := manager.LoadConfig("invalid")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load config failing semantic validation", func(t *testing.T) {
		config := createValidConfig()
		config.StartTile = "dragon_lair"
		writeConfigFile(t, dir, "dragon", config)

		_, err := manager.LoadConfig("dragon")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed JSON", func(t *testing.T) {
		malformedData := []byte(`{"name": "Malformed", invalid json}`)
		if err := os.WriteFile(filepath.Join(dir, "malformed.json"), malformedData, 0644); err != nil {
			t.Fatalf("Failed to write malformed config: %v", err)
		}

		_, err := manager.LoadConfig("malformed")
		if err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

func TestValidateDocument(t *testing.T) {
	valid, err := json.Marshal(createValidConfig())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name    string
		data    string
		ext     string
		wantErr bool
	}{
		{name: "valid json", data: string(valid), ext: ".json"},
		{name: "unknown top-level field", data: `{"name":"x","description":"d","grid_size":5}`, ext: ".json", wantErr: true},
		{name: "too few players", data: `{"name":"x","description":"d","players":[{"name":"a"}],"markers_per_player":7,"start_tile":"city_road","scoring":{},"messages":{"welcome":"w","game_over":"%s %d"}}`, ext: ".json", wantErr: true},
		{name: "negative tile count", data: `{"name":"x","description":"d","players":[{"name":"a"},{"name":"b"}],"markers_per_player":7,"start_tile":"city_road","tile_counts":{"field":-1},"scoring":{},"messages":{"welcome":"w","game_over":"%s %d"}}`, ext: ".json", wantErr: true},
		{name: "valid yaml", data: "name: x\ndescription: d\nplayers:\n  - name: a\n  - name: b\n    ai: true\nmarkers_per_player: 7\nstart_tile: city_road\nscoring:\n  city_points: 2\nmessages:\n  welcome: hi\n  game_over: \"%s %d\"\n", ext: ".yaml"},
		{name: "yaml with wrong type", data: "name: x\ndescription: d\nplayers: many\n", ext: ".yml", wantErr: true},
		{name: "malformed yaml", data: "name: [unclosed", ext: ".yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument([]byte(tt.data), tt.ext)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocument() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManager_GetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	defaultConfig := createValidConfig()
	defaultConfig.Name = "Default Config"
	writeConfigFile(t, dir, "default", defaultConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	config := manager.GetDefault()
	if config == nil {
		t.Fatal("Expected default config to be non-nil")
	}
	if config.Name != "Default Config" {
		t.Errorf("Expected default config name 'Default Config', got '%s'", config.Name)
	}

	other := createValidConfig()
	other.Name = "Other"
	writeConfigFile(t, dir, "other", other)
	if err := manager.SetDefault("other"); err != nil {
		t.Fatalf("SetDefault() error = %v", err)
	}
	if manager.GetDefault().Name != "Other" {
		t.Errorf("Expected SetDefault to switch the default")
	}
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	configs := []struct {
		filename string
		name     string
	}{
		{"default", "Default"},
		{"easy", "Easy"},
		{"medium.yaml", "Medium"},
		{"hard.yml", "Hard"},
	}

	for _, cfg := range configs {
		config := createValidConfig()
		config.Name = cfg.name
		writeConfigFile(t, dir, cfg.filename, config)
	}

	// Non-config files are ignored
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("readme"), 0644)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configList, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configList) != 4 {
		t.Errorf("Expected 4 configs, got %d", len(configList))
	}

	foundConfigs := make(map[string]bool)
	for _, info := range configList {
		foundConfigs[info.Name] = true
		if info.Players != 2 || info.AIPlayers != 1 {
			t.Errorf("%s: expected 2 players with 1 AI, got %d/%d", info.Name, info.Players, info.AIPlayers)
		}
		if info.TotalTiles != engine.DefaultCatalog().TotalTiles() {
			t.Errorf("%s: expected %d tiles, got %d", info.Name, engine.DefaultCatalog().TotalTiles(), info.TotalTiles)
		}
	}

	for _, cfg := range configs {
		if !foundConfigs[cfg.name] {
			t.Errorf("Config '%s' not found in list", cfg.name)
		}
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name    string
		file    string
		config  *engine.GameConfig
		wantErr bool
	}{
		{name: "json", file: "saved", config: createValidConfig()},
		{name: "yaml", file: "saved_yaml.yaml", config: createValidConfig()},
		{name: "invalid config", file: "broken", config: &engine.GameConfig{Name: "broken"}, wantErr: true},
		{name: "path in name", file: "../escape", config: createValidConfig(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manager.SaveConfig(tt.file, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SaveConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			// Drop the cache so the load hits disk
			manager.RefreshCache()
			loaded, err := manager.LoadConfig(tt.file)
			if err != nil {
				t.Fatalf("LoadConfig() after save error = %v", err)
			}
			if loaded.Name != tt.config.Name {
				t.Errorf("Expected name %s, got %s", tt.config.Name, loaded.Name)
			}
		})
	}
}

func TestManager_ReloadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	config := createValidConfig()
	config.Name = "Changeable"
	writeConfigFile(t, dir, "default", config)
	writeConfigFile(t, dir, "changeable", config)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	loaded, _ := manager.LoadConfig("changeable")
	if loaded.MarkersPerPlayer != engine.DefaultMarkers {
		t.Errorf("Expected initial markers %d, got %d", engine.DefaultMarkers, loaded.MarkersPerPlayer)
	}

	config.MarkersPerPlayer = 3
	writeConfigFile(t, dir, "changeable", config)

	if err := manager.ReloadConfig("changeable"); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	reloaded, _ := manager.LoadConfig("changeable")
	if reloaded.MarkersPerPlayer != 3 {
		t.Errorf("Expected reloaded markers 3, got %d", reloaded.MarkersPerPlayer)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	defaultConfig := createValidConfig()
	writeConfigFile(t, dir, "default", defaultConfig)

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			configName := "config" + string(rune('0'+((id%5)+1)))
			if _, err := manager.LoadConfig(configName); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	if manager.Count() < 5 {
		t.Errorf("Expected at least 5 configs in cache, got %d", manager.Count())
	}
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	defaultConfig := createValidConfig()
	writeConfigFile(t, dir, "default", defaultConfig)

	testConfig := createValidConfig()
	testConfig.Name = "Test"
	writeConfigFile(t, dir, "test", testConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	for i := 0; i < 10; i++ {
		config, err := manager.LoadConfig("test")
		if err != nil {
			t.Fatalf("Failed to load config on iteration %d: %v", i, err)
		}
		if config.Name != "Test" {
			t.Errorf("Unexpected config name on iteration %d", i)
		}
	}

	// "default" (first available) and "test" are cached; "test.json" shares a slot
	if _, err := manager.LoadConfig("test.json"); err != nil {
		t.Fatalf("LoadConfig(test.json) error = %v", err)
	}
	if manager.Count() != 2 {
		t.Errorf("Expected 2 configs in cache, got %d", manager.Count())
	}
}

// Test-only helpers on Manager

func (m *Manager) ReloadConfig(name string) error {
	m.mu.Lock()
	delete(m.configs, configKey(name))
	m.mu.Unlock()

	_, err := m.LoadConfig(name)
	return err
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
