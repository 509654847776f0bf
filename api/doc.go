// Package api provides the HTTP REST API for Tile Kingdoms sessions.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "classic"})
//   - GET /api/sessions - List sessions (sort=created|accessed, order, limit)
//   - GET /api/sessions/unified - Multi-session view (sessionIds, configName)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Turn Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/placements?rotation=N - Legal cells for the drawn tile
//   - POST /api/sessions/{id}/place - {"rotation": 1, "x": 0, "y": -1}
//   - POST /api/sessions/{id}/marker - {"feature_index": 0}
//   - POST /api/sessions/{id}/skip-marker - Decline the marker
//   - POST /api/sessions/{id}/ai-turn - Play one turn for an AI seat
//   - POST /api/sessions/{id}/reset - Restart the match
//   - GET /api/sessions/{id}/history - Paginated turn history
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Load a configuration
//   - POST /api/configs - Save a configuration
//
// Errors are returned as JSON with an HTTP status derived from the error:
// unknown sessions and configs map to 404, a finished game to 409, and
// rule violations (illegal placement, wrong phase, unavailable marker) to 400.
//
//	{"error": "invalid placement: city_one rotation 0 at (5, 5)"}
//
// Successful turn actions are broadcast to WebSocket clients of the session
// as a "turn" event carrying the new state and the generated events.
package api
