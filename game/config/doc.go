// Package config provides configuration management for the tower defense game.
//
// The config package handles:
//   - Loading map configurations from JSON files
//   - Validation through engine.ValidateGameConfig
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Each JSON file in the configs directory describes one map:
//   - Grid size and the enemy path as a list of adjacent cells
//   - The tower catalog, keyed by tower id (cost, damage, range, cooldown, element)
//   - An optional type chart overriding the built-in element matchups
//   - Starting money and lives, and optional rule tuning (spawn interval, freeze)
//
// Available Configurations:
//   - classic: 12x12 meadow with the winding route and the full 36 tower roster
//   - gauntlet: 8x8 zigzag with six starters, faster spawns and longer freezes
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("gauntlet")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// When classic.json is missing the first valid file becomes the default, and an
// empty directory falls back to the built-in classic map.
package config
