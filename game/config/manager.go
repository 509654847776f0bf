package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
	"github.com/wricardo/mcp-training/tilekingdoms/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// configExtensions are tried in order when resolving a config name
var configExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles game configuration loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	m.loadDefaultConfig()
	return m, nil
}

// LoadConfig loads a configuration by name. The name may carry a .json,
// .yaml or .yml extension; without one each is tried in that order.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	key := configKey(name)

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[key]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[key]; exists {
		return config, nil
	}

	configPath, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := filepath.Ext(configPath)
	if err := ValidateDocument(data, ext); err != nil {
		return nil, err
	}

	config, err := engine.ParseGameConfig(data, ext)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[key] = config
	return config, nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !isConfigFile(entry.Name()) {
			continue
		}

		name := configKey(entry.Name())
		if seen[name] {
			continue
		}

		// Try to load the config to get details
		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[name] = true

		ai := 0
		for _, p := range config.Players {
			if p.AI {
				ai++
			}
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:         entry.Name(),
			ConfigID:         name, // This is the identifier to use for session creation
			Name:             config.Name,
			Description:      config.Description,
			Players:          len(config.Players),
			AIPlayers:        ai,
			MarkersPerPlayer: config.MarkersPerPlayer,
			TotalTiles:       engine.DefaultCatalog().WithCounts(config.TileCounts).TotalTiles(),
		})
	}

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached configurations and re-resolves the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// loadDefaultConfig picks classic, then the first valid config on disk,
// then the built-in classic setup.
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig("classic")
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			config = m.createMinimalConfig()
		} else if config, err = m.LoadConfig(configs[0].Filename); err != nil {
			config = m.createMinimalConfig()
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig saves a configuration to disk. A .yaml or .yml name is written
// as YAML, anything else as indented JSON.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	// Validate config before saving
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	filename := name
	if !isConfigFile(filename) {
		filename = name + ".json"
	}
	if filepath.Base(filename) != filename {
		return fmt.Errorf("%w: config name must not contain a path: %s", ErrInvalidConfig, name)
	}

	var (
		data []byte
		err  error
	)
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, filename)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[configKey(name)] = config
	m.mu.Unlock()

	return nil
}

// resolve finds the file backing a config name
func (m *Manager) resolve(name string) (string, error) {
	if isConfigFile(name) {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		return path, nil
	}
	for _, ext := range configExtensions {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
}

// createMinimalConfig creates a minimal valid configuration
func (m *Manager) createMinimalConfig() *engine.GameConfig {
	config := engine.DefaultGameConfig()
	config.Name = "default"
	config.Description = "Built-in classic setup"
	return config
}

func isConfigFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range configExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// configKey strips a known extension so "easy" and "easy.yaml" share a cache slot
func configKey(name string) string {
	if isConfigFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
