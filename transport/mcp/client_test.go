package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/tilekingdoms/game/ai"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
	"github.com/wricardo/mcp-training/tilekingdoms/game/service"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func sampleState() *engine.GameState {
	return &engine.GameState{
		ConfigName:    "classic",
		Turn:          3,
		Phase:         engine.PhaseMarker,
		CurrentPlayer: 0,
		Players: []engine.Player{
			{ID: 0, Name: "Ann", Markers: 6, Score: 4},
			{ID: 1, Name: "Bot", AI: true, Markers: 7, Score: 2},
		},
		FollowerOptions: []engine.FollowerOption{
			{FeatureIndex: 0, RegionType: engine.City, RegionID: 5},
		},
		PoolRemaining: 44,
		Tiles: []engine.TileView{
			{X: 0, Y: 0, Archetype: "city_road", Edges: [4]engine.Terrain{"C", "R", "F", "R"}},
			{X: 1, Y: 0, Archetype: "monastery_road", Edges: [4]engine.Terrain{"F", "F", "F", "R"},
				Markers: []engine.Marker{{FeatureIndex: 0, PlayerID: 1}}},
			{X: 0, Y: 1, Archetype: "monastery", Edges: [4]engine.Terrain{"F", "F", "F", "F"}},
		},
		Regions: []engine.RegionView{
			{ID: 5, Type: engine.City, TileCount: 1, OpenEdges: 1},
			{ID: 7, Type: engine.Cloister, TileCount: 1, OpenEdges: 6, Owners: map[int]int{1: 1}},
		},
		Message: "Ann to place city_one",
	}
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "healthy"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall("GET", "/api/health", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["status"] != "healthy" {
		t.Errorf("Expected status healthy, got %v", response["status"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall("GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"plain body", http.StatusInternalServerError, "Internal Server Error", "API error: 500"},
		{"json error", http.StatusBadRequest, `{"error":"invalid placement: city_one"}`, "invalid placement: city_one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall("GET", "/api", nil, nil)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected %q in error, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["config_id"] != "duel" {
			t.Errorf("Expected config_id duel, got %q", body["config_id"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{
			ID:         "ab12",
			ConfigName: "duel",
			GameState:  sampleState(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(),
		callRequest("create_session", map[string]interface{}{"config_id": "duel"}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "ab12") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
}

func TestClient_placeTile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/ab12/place" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		if body["rotation"] != 2 || body["x"] != -1 || body["y"] != 0 {
			t.Errorf("Unexpected body %v", body)
		}

		marker := engine.FollowerOption{FeatureIndex: 1, RegionType: engine.Road, RegionID: 9}
		json.NewEncoder(w).Encode(service.ActionResult{
			Success:   true,
			GameState: sampleState(),
			Placement: &engine.PlacementResult{
				PlacedAt:  engine.Position{X: -1, Y: 0},
				Archetype: "road_turn",
				Rotation:  2,
			},
			Awards: []engine.ScoreAward{{PlayerID: 0, RegionID: 3, Points: 4}},
			AITurns: []*ai.TurnReport{{
				PlayerID: 1,
				Placement: &engine.PlacementResult{
					PlacedAt:  engine.Position{X: 2, Y: 0},
					Archetype: "road_straight",
					Rotation:  1,
				},
				Marker: &marker,
			}},
			Events: []service.GameEvent{{Type: "region_completed", Message: "city completed"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handlePlaceTile(context.Background(), callRequest("place_tile", map[string]interface{}{
		"session_id": "ab12",
		"rotation":   float64(2),
		"x":          float64(-1),
		"y":          float64(0),
		"intent":     "close the city to the west",
	}))
	if err != nil {
		t.Fatalf("placeTile failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{
		"Placed road_turn rotation 2 at (-1,0)",
		"+4 points to player 0",
		"player 1 placed road_straight r1 at (2,0), marker on road (feature 1)",
		"region_completed: city completed",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_placeTileRequiresCoordinates(t *testing.T) {
	client := NewClient("http://localhost:0")
	result, err := client.handlePlaceTile(context.Background(), callRequest("place_tile", map[string]interface{}{
		"session_id": "ab12",
		"rotation":   float64(0),
	}))
	if err != nil {
		t.Fatalf("handlePlaceTile returned error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error when x and y are missing")
	}
}

func TestClient_legalPlacements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("rotation"); got != "3" {
			t.Errorf("Expected rotation=3, got %q", got)
		}
		json.NewEncoder(w).Encode(service.PlacementsResult{
			Archetype: "city_one",
			Rotation:  3,
			Edges:     [4]engine.Terrain{"F", "F", "F", "C"},
			Cells:     []engine.Position{{X: 0, Y: -1}, {X: 1, Y: 0}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleLegalPlacements(context.Background(), callRequest("legal_placements", map[string]interface{}{
		"session_id": "ab12",
		"rotation":   float64(3),
	}))
	if err != nil {
		t.Fatalf("legalPlacements failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "Legal cells (2): (0,-1) (1,0)") {
		t.Errorf("Unexpected placements output: %s", text)
	}
}

func TestClient_turnHistory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("order") != "asc" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Entries: []engine.TurnHistoryEntry{
				{Action: "place", ActionNumber: 4, Turn: 2, PlayerID: 1, Archetype: "city_one", Rotation: 1, Position: &engine.Position{X: 0, Y: -1}, Points: 4},
				{Action: "discard", ActionNumber: 5, Turn: 3, PlayerID: 0, Archetype: "city_full"},
			},
			TotalActions: 5,
			Page:         2,
			PageSize:     2,
			TotalPages:   3,
			HasNext:      true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleTurnHistory(context.Background(), callRequest("turn_history", map[string]interface{}{
		"session_id": "ab12",
		"page":       float64(2),
		"order":      "asc",
	}))
	if err != nil {
		t.Fatalf("turnHistory failed: %v", err)
	}

	text := resultText(t, result)
	for _, want := range []string{
		"page 2/3, 5 actions",
		"#4 turn 2 player 1 place city_one at (0,-1) r1 +4",
		"#5 turn 3 player 0 discard city_full",
		"next page",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in history, got: %s", want, text)
		}
	}
}

func TestFormatGameState(t *testing.T) {
	result := formatGameState(sampleState())

	expectedFields := []string{
		"Turn: 3 | Phase: marker | Pool: 44",
		"> 0 Ann: 4 points, 6 markers",
		"1 Bot (AI): 2 points, 7 markers",
		"feature 0: city (region 5)",
		"x from 0 to 1, y from 0 to 1",
		"R+RR1F",
		"FMF . ",
		"region 7 cloister",
		"Ann to place city_one",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}

	if strings.Contains(result, "region 5 city") {
		t.Error("Unclaimed regions should not be listed")
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	state := sampleState()
	state.GameOver = true
	state.Phase = engine.PhaseOver
	state.Winners = []int{0, 1}

	result := formatGameState(state)

	if !strings.Contains(result, "GAME OVER - winners: Ann, Bot") {
		t.Errorf("Expected winners in result, got: %s", result)
	}
	if strings.Contains(result, "> 0 Ann") {
		t.Error("No player should be marked to move after game over")
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("Unexpected output for nil state: %s", got)
	}
}

func TestFormatPlacements_Empty(t *testing.T) {
	result := formatPlacements(&service.PlacementsResult{Archetype: "city_full", Rotation: 0})
	if !strings.Contains(result, "No legal cells") {
		t.Errorf("Expected hint for empty placements, got: %s", result)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Tile Kingdoms - Complete Instructions",
		"GAME OBJECTIVE:",
		"PLACEMENT RULES:",
		"MARKERS:",
		"SCORING WHEN A REGION COMPLETES:",
		"END OF GAME:",
		"TURN FLOW:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, text)
		}
	}
}
