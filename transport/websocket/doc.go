// Package websocket pushes session updates to renderers.
//
// A renderer connects with ?session=<id> and receives JSON frames for that
// session only. The connection is push only:
//
//	{"session_id": "ab12", "event": "state_update", "state": {...}}
//	{"session_id": "ab12", "event": "advice", "data": {"advice": "..."}}
//	{"session_id": "ab12", "event": "game_over", "data": {...game state...}}
//
// Frames queued while a write is in flight go out together, separated by
// newlines.
//
// Hub implements service.Notifier:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	svc := service.NewGameServiceWithOptions(sessions, configs, service.Options{Notifier: hub})
//
// State updates are shed when the hub falls behind so a session loop never
// waits on a renderer. Advice and game-over events wait for the hub. A
// renderer that lags a full queue behind is disconnected.
package websocket
