// Package service provides the business logic layer for the tower defense game.
//
// The service package implements:
//   - Multi-session game management
//   - Tower placement and wave starts with readable rejection reasons
//   - Real-time session loops and manual stepping for agents
//   - Snapshots for save and restore of a running game
//   - Advisor requests and push notifications to renderers
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages map configuration loading and validation.
// Notifier receives state updates and events for connected renderers.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each Session owns one engine behind a mutex; the session
// loop, REST handlers and MCP tools all go through that mutex, so intents land
// between ticks.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameServiceWithOptions(sessionMgr, configMgr, service.Options{
//		AutoRun:  true,
//		Notifier: hub,
//	})
//
//	sessionInfo, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.PlaceTower(ctx, sessionInfo.ID, 2, 2, "CHARMANDER")
//	gameService.StartWave(ctx, sessionInfo.ID)
//
// Without AutoRun sessions only advance through Step, which makes the game
// fully deterministic for tests and agents.
package service
