// Package engine provides the core simulation for the elemental tower defense game.
//
// The engine package implements the game mechanics including:
//   - Wave building and staggered enemy release
//   - Enemy movement along a fixed path with freeze slowdown
//   - Tower targeting, cooldowns and type-effectiveness damage
//   - Economy (money and lives) and the one-way game-over latch
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState holds the economy, while GameConfig
// defines the map (grid, path, tower catalog, type chart) loaded from JSON files.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.PlaceTower(2, 2, "CHARMANDER")
//	gameEngine.StartNextWave()
//	result := gameEngine.Tick(16)
//
// Game Rules:
//
// Each tick releases at most one pending enemy, moves every live enemy, retires
// escaped and dead enemies, settles lives and money, then lets every tower whose
// cooldown has elapsed hit the first enemy in range. Towers never pick the nearest
// or weakest target, only the first one in list order. The game ends when lives
// reach zero.
package engine
