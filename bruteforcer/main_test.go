package main

import (
	"net/http/httptest"
	"testing"

	"github.com/wricardo/mcp-training/tilekingdoms/api"
	"github.com/wricardo/mcp-training/tilekingdoms/game/config"
	"github.com/wricardo/mcp-training/tilekingdoms/game/engine"
	"github.com/wricardo/mcp-training/tilekingdoms/game/service"
	"github.com/wricardo/mcp-training/tilekingdoms/game/session"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	configs, err := config.NewManager("../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(), configs)
	ts := httptest.NewServer(api.NewServer(gameService, nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_CreateSessionAndState(t *testing.T) {
	ts := setupServer(t)
	client := NewClient(ts.URL)

	state, err := client.CreateSession("duel")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if client.sessionID == "" {
		t.Fatal("Expected session ID to be stored")
	}
	if state.CurrentTile == nil {
		t.Fatal("Expected a drawn tile")
	}

	fetched, err := client.GetState()
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if fetched.Turn != state.Turn || fetched.CurrentTile.Archetype != state.CurrentTile.Archetype {
		t.Errorf("GetState returned a different state: turn %d tile %s", fetched.Turn, fetched.CurrentTile.Archetype)
	}
}

func TestClient_UnknownConfig(t *testing.T) {
	ts := setupServer(t)
	client := NewClient(ts.URL)

	if _, err := client.CreateSession("nope"); err == nil {
		t.Error("Expected error for unknown config")
	}
}

func TestClient_PlaceOutsideLegalCells(t *testing.T) {
	ts := setupServer(t)
	client := NewClient(ts.URL)
	if _, err := client.CreateSession("duel"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	// the origin holds the start tile
	if _, err := client.Place(0, 0, 0); err == nil {
		t.Error("Expected placement on the start tile to fail")
	}
}

func TestPlayMatch_FinishesGame(t *testing.T) {
	ts := setupServer(t)
	client := NewClient(ts.URL)

	state, err := client.CreateSession("duel")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	final, actions, err := playMatch(client, NewSystematicStrategy(), state, 1000, false, 0)
	if err != nil {
		t.Fatalf("playMatch failed after %d actions: %v", actions, err)
	}
	if !final.GameOver {
		t.Fatalf("Expected game over, got phase %s after %d actions", final.Phase, actions)
	}
	if final.PoolRemaining != 0 {
		t.Errorf("Expected empty pool, got %d", final.PoolRemaining)
	}
	if len(final.Winners) == 0 {
		t.Error("Expected at least one winner")
	}
	if !humanWon(final) {
		t.Error("Expected a human winner when every seat is human")
	}
	// every marker comes back after final scoring
	for _, p := range final.Players {
		if p.Markers != 7 {
			t.Errorf("Player %d holds %d markers after the game", p.ID, p.Markers)
		}
	}

	state, err = client.Reset()
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.GameOver || state.Turn != 1 {
		t.Errorf("Expected a fresh game after reset, got turn %d over=%v", state.Turn, state.GameOver)
	}
}

func TestChoosePlacement(t *testing.T) {
	city := [4]engine.Terrain{engine.TerrainCity, engine.TerrainField, engine.TerrainField, engine.TerrainField}
	state := &engine.GameState{
		Tiles: []engine.TileView{
			{X: 0, Y: 0, Edges: [4]engine.Terrain{engine.TerrainCity, engine.TerrainRoad, engine.TerrainField, engine.TerrainRoad}},
		},
	}

	tests := []struct {
		name    string
		options []*service.PlacementsResult
		want    Move
		found   bool
	}{
		{
			name:  "no options",
			found: false,
		},
		{
			name: "city join beats a plain neighbor",
			options: []*service.PlacementsResult{
				{Rotation: 0, Edges: city, Cells: []engine.Position{{X: 0, Y: 1}}},
				{Rotation: 2, Edges: engine.RotateEdges(city, 2), Cells: []engine.Position{{X: 0, Y: -1}}},
			},
			want:  Move{Rotation: 2, Position: engine.Position{X: 0, Y: -1}, Score: 7},
			found: true,
		},
		{
			name: "nearer cell wins a tie",
			options: []*service.PlacementsResult{
				{Rotation: 1, Edges: engine.RotateEdges(city, 1), Cells: []engine.Position{{X: 0, Y: 5}, {X: 0, Y: 1}}},
			},
			want:  Move{Rotation: 1, Position: engine.Position{X: 0, Y: 1}, Score: 4},
			found: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NewSystematicStrategy().ChoosePlacement(state, tt.options)
			if ok != tt.found {
				t.Fatalf("found = %v, want %v", ok, tt.found)
			}
			if ok && got != tt.want {
				t.Errorf("ChoosePlacement = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChooseMarker(t *testing.T) {
	options := []engine.FollowerOption{
		{FeatureIndex: 0, RegionType: engine.Road, RegionID: 4},
		{FeatureIndex: 1, RegionType: engine.City, RegionID: 5},
	}

	tests := []struct {
		name    string
		markers int
		options []engine.FollowerOption
		want    int
		ok      bool
	}{
		{"city preferred", 5, options, 1, true},
		{"road when plenty", 5, options[:1], 0, true},
		{"road skipped on reserve", 1, options[:1], 0, false},
		{"city on reserve", 1, options, 1, true},
		{"nothing offered", 5, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &engine.GameState{
				Players:         []engine.Player{{ID: 0, Markers: tt.markers}},
				FollowerOptions: tt.options,
			}
			got, ok := NewSystematicStrategy().ChooseMarker(state)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.FeatureIndex != tt.want {
				t.Errorf("FeatureIndex = %d, want %d", got.FeatureIndex, tt.want)
			}
		})
	}
}
