// Package websocket provides WebSocket transport for Tile Kingdoms.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - Broadcasting state after every turn action
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine; all registration and broadcast bookkeeping happens on the
// hub's Run goroutine.
//
// Message Protocol:
//
// Every outgoing frame is one JSON Message with session_id, a per-session
// seq and an event:
//   - "turn": placements, completions (region id, type, tiles, points) and
//     payouts produced by one action, followed by the new game_state
//   - "game_over": final standings, highest score first, and winners
//   - "state_update": a bare snapshot after a reset or on resync
//
// A watcher that connects mid-match first receives the latest frame that
// carried a game state. Sending {"action":"resync"} replays it. A gap in
// seq means frames were missed and a resync is due.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
