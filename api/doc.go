// Package api provides HTTP REST API handlers for the tower defense game.
//
// The api package implements:
//   - Session management endpoints
//   - Player intents (tower placement, wave start)
//   - Simulation control (manual stepping, pause, resume, speed)
//   - Snapshot save and restore
//   - Configuration listing, lookup and upload
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Stop the session loop and delete it
//
// Game:
//   - GET /api/sessions/{id}/state - State view with lives risk, coverage and affordable towers
//   - POST /api/sessions/{id}/towers - Place a tower ({"x": 3, "y": 0, "tower": "SQUIRTLE"})
//   - POST /api/sessions/{id}/waves - Start the next wave
//   - POST /api/sessions/{id}/step - Advance a paused session ({"delta_ms": 16, "ticks": 60})
//   - POST /api/sessions/{id}/pause, /resume - Control the real-time loop
//   - POST /api/sessions/{id}/speed - Set the game speed ({"speed": 2})
//   - GET, PUT /api/sessions/{id}/snapshot - Save and restore the simulation
//   - POST /api/sessions/{id}/advice - Ask the advisor; the answer arrives over WebSocket
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - POST /api/configs - Validate and save a configuration
//   - GET /api/configs/{name} - Get a configuration
//   - GET /api/configs/{name}/towers - Tower catalog with type matchups
//
// Other:
//   - GET /health - Liveness probe
//   - GET /ws?session={id} - WebSocket state push
//
// Rejected placements and wave starts are not HTTP errors: they return 200 with
// success=false and a reason code such as "insufficient_money" or "on_path".
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "session not found: ab12"}
//
// Unknown sessions and configs map to 404, invalid arguments, configs and
// snapshots to 400, stepping a running loop to 409, anything else to 500.
package api
