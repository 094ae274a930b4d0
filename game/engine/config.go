package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// WithDefaults returns r with every zero field replaced by its default
func (r Rules) WithDefaults() Rules {
	if r.SpawnIntervalMs <= 0 {
		r.SpawnIntervalMs = DefaultSpawnIntervalMs
	}
	if r.FreezeDurationMs <= 0 {
		r.FreezeDurationMs = DefaultFreezeDurationMs
	}
	if r.FreezeSpeedFactor <= 0 {
		r.FreezeSpeedFactor = DefaultFreezeSpeedFactor
	}
	if r.ProjectileSpeed <= 0 {
		r.ProjectileSpeed = DefaultProjectileSpeed
	}
	return r
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}

	// Validate economy
	if config.InitialMoney < 0 {
		return fmt.Errorf("config validation: initial_money must not be negative, got %d", config.InitialMoney)
	}
	if config.InitialLives < 1 || config.InitialLives > MaxInitialLives {
		return fmt.Errorf("config validation: initial_lives must be between 1 and %d, got %d", MaxInitialLives, config.InitialLives)
	}

	if err := validatePath(config); err != nil {
		return err
	}

	// Validate tower catalog
	if len(config.Towers) == 0 {
		return fmt.Errorf("config validation: towers must contain at least one entry")
	}
	for key, tower := range config.Towers {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("config validation: tower key must not be empty")
		}
		if tower.Name == "" {
			return fmt.Errorf("config validation: tower '%s' needs a name", key)
		}
		if !tower.Type.Valid() {
			return fmt.Errorf("config validation: tower '%s' has unknown type '%s'", key, tower.Type)
		}
		if tower.Cost <= 0 {
			return fmt.Errorf("config validation: tower '%s' cost must be positive, got %d", key, tower.Cost)
		}
		if tower.Damage <= 0 || tower.Range <= 0 || tower.AttackSpeed <= 0 {
			return fmt.Errorf("config validation: tower '%s' damage, range and attack_speed must be positive", key)
		}
	}

	// Validate type chart
	for attacker, strong := range config.TypeChart {
		if !attacker.Valid() {
			return fmt.Errorf("config validation: type_chart has unknown type '%s'", attacker)
		}
		for _, defender := range strong {
			if !defender.Valid() {
				return fmt.Errorf("config validation: type_chart['%s'] lists unknown type '%s'", attacker, defender)
			}
		}
	}

	// Validate rules
	if config.Rules.SpawnIntervalMs < 0 || config.Rules.FreezeDurationMs < 0 || config.Rules.ProjectileSpeed < 0 {
		return fmt.Errorf("config validation: rules must not be negative")
	}
	if config.Rules.FreezeSpeedFactor < 0 || config.Rules.FreezeSpeedFactor > 1 {
		return fmt.Errorf("config validation: rules.freeze_speed_factor must be between 0 and 1, got %g", config.Rules.FreezeSpeedFactor)
	}

	return nil
}

// validatePath checks that the path is a chain of integral, in-bounds, unit-length steps
func validatePath(config *GameConfig) error {
	if len(config.Path) < MinPathLength {
		return fmt.Errorf("config validation: path must have at least %d nodes, got %d", MinPathLength, len(config.Path))
	}

	seen := make(map[Coordinate]bool, len(config.Path))
	for i, c := range config.Path {
		if c.X != math.Trunc(c.X) || c.Y != math.Trunc(c.Y) {
			return fmt.Errorf("config validation: path node %d (%g, %g) must be a whole cell", i, c.X, c.Y)
		}
		if c.X < 0 || c.Y < 0 || c.X >= float64(config.GridSize) || c.Y >= float64(config.GridSize) {
			return fmt.Errorf("config validation: path node %d (%g, %g) is outside the %dx%d grid", i, c.X, c.Y, config.GridSize, config.GridSize)
		}
		if seen[c] {
			return fmt.Errorf("config validation: path node %d (%g, %g) repeats an earlier node", i, c.X, c.Y)
		}
		seen[c] = true

		if i > 0 && Distance(config.Path[i-1], c) != 1 {
			return fmt.Errorf("config validation: path node %d (%g, %g) is not adjacent to node %d", i, c.X, c.Y, i-1)
		}
	}
	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
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

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		configPath = filepath.Join(configDir, configName)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %v", configName, err)
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %v", configName, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %v", configName, err)
	}

	return &config, nil
}

// InitGameStateFromConfig creates the opening economy for a map
func InitGameStateFromConfig(config *GameConfig) GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	return GameState{
		Money:      config.InitialMoney,
		Lives:      config.InitialLives,
		Wave:       0,
		IsPlaying:  false,
		IsGameOver: false,
		GameSpeed:  1,
	}
}
