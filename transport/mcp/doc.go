// Package mcp provides a Model Context Protocol tool server for the tower defense game.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for game operations
//   - A thin proxy to the REST API, so agents and browsers share sessions
//   - Text rendering of the map, tower catalog and type chart
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session, get_session, list_sessions: Session management
//   - list_configs: List available maps
//   - game_state: Current state with an ASCII map, lives risk and path coverage
//   - list_towers: Tower catalog with type matchups
//   - type_chart: Element effectiveness table and counters
//   - place_tower: Buy and place a tower
//   - start_wave: Release the next wave
//   - step, pause, resume, set_speed: Simulation control
//   - get_advice: Latest tip from the advisor
//   - game_instructions: Rules and strategy notes
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// Agents that want deterministic play pause the session after creating it and
// drive it with step; otherwise the server loop plays in real time.
package mcp
