package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/tilekingdoms/game/ai"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
	"github.com/wricardo/mcp-training/tilekingdoms/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Kingdoms",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Kingdoms - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Draw and place square land tiles to grow cities, roads and monasteries. Claim
them with markers and score when they complete. Highest score when the pool
runs out wins.

TURN FLOW:
1. game_state shows the drawn tile and whose turn it is
2. legal_placements lists the cells where it fits for a rotation
3. place_tile puts it on the board
4. place_marker or skip_marker when the game offers marker options
AI seats move automatically after you act.

AVAILABLE TOOLS:
- create_session, list_sessions, get_session
- game_state, legal_placements, place_tile, place_marker, skip_marker
- ai_turn: advance a seat controlled by the AI
- reset_game, turn_history, list_configs
- game_instructions: full rules

NOTE: The 'intent' parameter on place_tile serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionSchema(extra map[string]interface{}, required ...string) mcp.ToolInputSchema {
	props := map[string]interface{}{
		"session_id": map[string]interface{}{
			"type":        "string",
			"description": "Session ID",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: props,
		Required:   append([]string{"session_id"}, required...),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the config to use, e.g. classic (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionSchema(nil),
	}, c.handleGetSession)

	// Turn operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state: board, drawn tile, scores and marker options",
		InputSchema: sessionSchema(nil),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "legal_placements",
		Description: "List the cells where the drawn tile can be placed with the given rotation",
		InputSchema: sessionSchema(map[string]interface{}{
			"rotation": map[string]interface{}{
				"type":        "integer",
				"description": "Clockwise quarter turns, 0-3 (default 0)",
			},
		}),
	}, c.handleLegalPlacements)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_tile",
		Description: "Place the drawn tile at (x, y) with the given rotation",
		InputSchema: sessionSchema(map[string]interface{}{
			"rotation": map[string]interface{}{
				"type":        "integer",
				"description": "Clockwise quarter turns, 0-3",
			},
			"x": map[string]interface{}{
				"type":        "integer",
				"description": "Column; east is positive",
			},
			"y": map[string]interface{}{
				"type":        "integer",
				"description": "Row; north is negative",
			},
			"intent": map[string]interface{}{
				"type":        "string",
				"description": "Brief explanation of the intent behind this placement (serves as a rubber duck to help explain your reasoning)",
			},
		}, "x", "y"),
	}, c.handlePlaceTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_marker",
		Description: "Claim a feature of the tile just placed with one of your markers",
		InputSchema: sessionSchema(map[string]interface{}{
			"feature_index": map[string]interface{}{
				"type":        "integer",
				"description": "Feature index from the offered marker options",
			},
		}, "feature_index"),
	}, c.handlePlaceMarker)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "skip_marker",
		Description: "Decline to place a marker and end the turn",
		InputSchema: sessionSchema(nil),
	}, c.handleSkipMarker)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "ai_turn",
		Description: "Play the turn of the AI seat that is to move",
		InputSchema: sessionSchema(nil),
	}, c.handleAITurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: sessionSchema(nil),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn_history",
		Description: "Get turn history for a session",
		InputSchema: sessionSchema(map[string]interface{}{
			"page": map[string]interface{}{
				"type":        "integer",
				"description": "Page number",
			},
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Items per page",
			},
			"order": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"asc", "desc"},
				"description": "Sort order (default desc)",
			},
		}),
	}, c.handleTurnHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls
func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// intArg reads a numeric argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.apiCall("POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s",
		session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil {
			status = fmt.Sprintf(", Turn: %d, Pool: %d", s.GameState.Turn, s.GameState.PoolRemaining)
			if s.GameState.GameOver {
				status += ", finished"
			}
		}
		result += fmt.Sprintf("- %s (Config: %s, Created: %s%s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleLegalPlacements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	rotation, _ := intArg(args, "rotation")

	var placements service.PlacementsResult
	path := sessionPath(sessionID, fmt.Sprintf("/placements?rotation=%d", rotation))
	if err := c.apiCall("GET", path, nil, &placements); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlacements(&placements)), nil
}

func (c *Client) handlePlaceTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	rotation, _ := intArg(args, "rotation")
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return mcp.NewToolResultError("x and y are required"), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	body := map[string]int{"rotation": rotation, "x": x, "y": y}

	var result service.ActionResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/place"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handlePlaceMarker(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	featureIndex, ok := intArg(args, "feature_index")
	if !ok {
		return mcp.NewToolResultError("feature_index is required"), nil
	}

	var result service.ActionResult
	body := map[string]int{"feature_index": featureIndex}
	if err := c.apiCall("POST", sessionPath(sessionID, "/marker"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleSkipMarker(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.postAction(request, "/skip-marker")
}

func (c *Client) handleAITurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.postAction(request, "/ai-turn")
}

func (c *Client) postAction(request mcp.CallToolRequest, suffix string) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var result service.ActionResult
	if err := c.apiCall("POST", sessionPath(sessionID, suffix), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActionResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall("POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTurnHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall("GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall("GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Players: %d (%d AI), Markers: %d, Tiles: %d\n\n",
			config.ConfigID, config.Name, config.Description,
			config.Players, config.AIPlayers, config.MarkersPerPlayer, config.TotalTiles)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(gameInstructions), nil
}

const gameInstructions = `Tile Kingdoms - Complete Instructions

GAME OBJECTIVE:
Grow a shared landscape one tile at a time. Claim cities, roads and
monasteries with your markers and score them when they complete. The player
with the most points when the tile pool is empty wins; ties share the win.

BOARD AND COORDINATES:
• The start tile sits at (0,0). X grows east, Y grows south (north is y-1).
• Every tile has four edges: N, E, S, W. Each edge is C (city), R (road) or F (field).
• Rotation is clockwise quarter turns: rotating once moves the north edge to east.

PLACEMENT RULES:
• The cell must be empty and touch at least one placed tile orthogonally.
• Every edge that touches a neighbour must show the same terrain as the
  neighbour's facing edge (city to city, road to road, field to field).
• Use legal_placements to list valid cells for a rotation before placing.
• A drawn tile that fits nowhere is discarded and a new one is drawn.

MARKERS:
• After placing you may put one marker on a feature of that tile, but only
  if the region it belongs to has no marker yet.
• Regions merge as tiles connect. A merged region can end up with markers
  from several players; the player with the most markers owns it, ties share.
• Markers return to their owner when the region scores.

SCORING WHEN A REGION COMPLETES:
• City (no open city edges): 2 points per tile.
• Road (both ends closed): 1 point per tile.
• Monastery (all 8 surrounding cells filled): 9 points.
• Fields never score.

END OF GAME:
• When the pool runs out, every unfinished region with markers scores once:
  cities 1 point per tile, roads 1 per tile, monasteries 1 plus filled neighbours.

TURN FLOW:
1. game_state: see the drawn tile, the board and whose turn it is
2. legal_placements with rotation 0-3 to find where it fits
3. place_tile with rotation, x and y
4. If marker options are listed, place_marker with a feature index or skip_marker
AI seats play automatically after you act; use ai_turn for sessions where
every seat is AI controlled.

STRATEGY TIPS:
• Close small cities quickly to get markers back.
• Monasteries placed among existing tiles complete fast.
• Joining a big city with your own marker can steal or share it.
• Keep a couple of markers in reserve late in the game.

Good luck building your kingdom!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func edgeString(edges [4]engine.Terrain) string {
	return fmt.Sprintf("N=%s E=%s S=%s W=%s", edges[engine.North], edges[engine.East], edges[engine.South], edges[engine.West])
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Turn: %d | Phase: %s | Pool: %d | Discarded: %d | Actions: %d\n",
		state.Turn, state.Phase, state.PoolRemaining, state.Discarded, state.TotalActions))

	result.WriteString("\nScores:\n")
	for _, p := range state.Players {
		marker := "  "
		if p.ID == state.CurrentPlayer && !state.GameOver {
			marker = "> "
		}
		kind := ""
		if p.AI {
			kind = " (AI)"
		}
		result.WriteString(fmt.Sprintf("%s%d %s%s: %d points, %d markers\n", marker, p.ID, p.Name, kind, p.Score, p.Markers))
	}

	if state.CurrentTile != nil {
		result.WriteString(fmt.Sprintf("\nDrawn tile: %s (%s)\n", state.CurrentTile.Archetype, edgeString(state.CurrentTile.Edges)))
	}

	if len(state.FollowerOptions) > 0 {
		result.WriteString("\nMarker options:\n")
		for _, opt := range state.FollowerOptions {
			result.WriteString(fmt.Sprintf("- feature %d: %s (region %d)\n", opt.FeatureIndex, opt.RegionType, opt.RegionID))
		}
	}

	if board := formatBoard(state.Tiles); board != "" {
		result.WriteString("\nBoard:\n")
		result.WriteString(board)
	}

	if open := formatOpenRegions(state.Regions); open != "" {
		result.WriteString("\nClaimed regions:\n")
		result.WriteString(open)
	}

	if state.GameOver {
		result.WriteString("\n🏁 GAME OVER")
		if len(state.Winners) > 0 {
			names := make([]string, 0, len(state.Winners))
			for _, id := range state.Winners {
				if id >= 0 && id < len(state.Players) {
					names = append(names, state.Players[id].Name)
				}
			}
			result.WriteString(" - winners: " + strings.Join(names, ", "))
		}
		result.WriteString("\n")
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

// formatBoard renders every tile as a 3x3 block: edge terrain on the sides,
// M in the centre for monasteries and digits for markers.
func formatBoard(tiles []engine.TileView) string {
	if len(tiles) == 0 {
		return ""
	}

	minX, maxX, minY, maxY := tiles[0].X, tiles[0].X, tiles[0].Y, tiles[0].Y
	byPos := make(map[engine.Position]engine.TileView, len(tiles))
	for _, t := range tiles {
		byPos[engine.Position{X: t.X, Y: t.Y}] = t
		minX, maxX = min(minX, t.X), max(maxX, t.X)
		minY, maxY = min(minY, t.Y), max(maxY, t.Y)
	}

	catalog := engine.DefaultCatalog()
	var b strings.Builder
	b.WriteString(fmt.Sprintf("x from %d to %d, y from %d to %d\n", minX, maxX, minY, maxY))

	for y := minY; y <= maxY; y++ {
		rows := [3]strings.Builder{}
		for x := minX; x <= maxX; x++ {
			t, ok := byPos[engine.Position{X: x, Y: y}]
			if !ok {
				for i := range rows {
					rows[i].WriteString(" . ")
				}
				continue
			}

			centre := "+"
			if idx := catalog.IndexOf(t.Archetype); idx >= 0 && catalog[idx].HasCloister() {
				centre = "M"
			}
			if len(t.Markers) > 0 {
				centre = fmt.Sprint(t.Markers[0].PlayerID)
			}
			rows[0].WriteString(" " + string(t.Edges[engine.North]) + " ")
			rows[1].WriteString(string(t.Edges[engine.West]) + centre + string(t.Edges[engine.East]))
			rows[2].WriteString(" " + string(t.Edges[engine.South]) + " ")
		}
		for i := range rows {
			b.WriteString(rows[i].String())
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatOpenRegions(regions []engine.RegionView) string {
	var b strings.Builder
	for _, r := range regions {
		if r.Scored || len(r.Owners) == 0 {
			continue
		}
		owners := make([]string, 0, len(r.Owners))
		for pid, n := range r.Owners {
			owners = append(owners, fmt.Sprintf("p%d×%d", pid, n))
		}
		b.WriteString(fmt.Sprintf("- region %d %s: %d tiles, %d open, owners %s\n",
			r.ID, r.Type, r.TileCount, r.OpenEdges, strings.Join(sortedStrings(owners), " ")))
	}
	return b.String()
}

func sortedStrings(s []string) []string {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	return s
}

func formatPlacements(p *service.PlacementsResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Tile %s rotation %d (%s)\n", p.Archetype, p.Rotation, edgeString(p.Edges)))
	if len(p.Cells) == 0 {
		b.WriteString("No legal cells for this rotation; try another one\n")
		return b.String()
	}
	cells := make([]string, 0, len(p.Cells))
	for _, c := range p.Cells {
		cells = append(cells, fmt.Sprintf("(%d,%d)", c.X, c.Y))
	}
	b.WriteString(fmt.Sprintf("Legal cells (%d): %s\n", len(cells), strings.Join(cells, " ")))
	return b.String()
}

func formatActionResult(result *service.ActionResult) string {
	var b strings.Builder

	if p := result.Placement; p != nil {
		b.WriteString(fmt.Sprintf("✓ Placed %s rotation %d at (%d,%d)\n", p.Archetype, p.Rotation, p.PlacedAt.X, p.PlacedAt.Y))
	} else if result.Success {
		b.WriteString("✓ Done\n")
	}

	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}

	for _, a := range result.Awards {
		b.WriteString(fmt.Sprintf("+%d points to player %d (region %d)\n", a.Points, a.PlayerID, a.RegionID))
	}

	if len(result.AITurns) > 0 {
		b.WriteString(fmt.Sprintf("\nAI played %d turn(s):\n", len(result.AITurns)))
		for _, turn := range result.AITurns {
			b.WriteString(formatAITurn(turn))
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatAITurn(turn *ai.TurnReport) string {
	if turn == nil || turn.Placement == nil {
		return ""
	}
	p := turn.Placement
	line := fmt.Sprintf("- player %d placed %s r%d at (%d,%d)", turn.PlayerID, p.Archetype, p.Rotation, p.PlacedAt.X, p.PlacedAt.Y)
	if turn.Marker != nil {
		line += fmt.Sprintf(", marker on %s (feature %d)", turn.Marker.RegionType, turn.Marker.FeatureIndex)
	}
	return line + "\n"
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Turn history (page %d/%d, %d actions):\n",
		history.Page, history.TotalPages, history.TotalActions))

	for _, e := range history.Entries {
		line := fmt.Sprintf("#%d turn %d player %d %s", e.ActionNumber, e.Turn, e.PlayerID, e.Action)
		if e.Archetype != "" {
			line += " " + e.Archetype
		}
		if e.Position != nil {
			line += fmt.Sprintf(" at (%d,%d)", e.Position.X, e.Position.Y)
		}
		if e.Action == "place" {
			line += fmt.Sprintf(" r%d", e.Rotation)
		}
		if e.Action == "marker" {
			line += fmt.Sprintf(" feature %d", e.FeatureIndex)
		}
		if e.Points > 0 {
			line += fmt.Sprintf(" +%d", e.Points)
		}
		b.WriteString(line + "\n")
	}

	if history.HasNext {
		b.WriteString("More entries available on the next page\n")
	}
	return b.String()
}
