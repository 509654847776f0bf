// Package mcp exposes Tile Kingdoms to AI agents over the Model Context Protocol.
//
// The client is thin: every tool proxies to the REST API of a running server
// and renders the JSON response as text an agent can reason about.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - game_state: scores, drawn tile, marker options and an ASCII board
//   - legal_placements: cells where the drawn tile fits for a rotation
//   - place_tile, place_marker, skip_marker: the human turn
//   - ai_turn: advance an AI controlled seat
//   - reset_game, turn_history, list_configs, game_instructions
//
// The ASCII board draws each tile as a 3x3 block with the edge terrain
// (C city, R road, F field) on its sides. The centre shows M for a
// monastery, a player id when a marker stands on the tile, and + otherwise.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
