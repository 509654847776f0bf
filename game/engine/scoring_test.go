package engine

import (
	"testing"
)

func TestScoring_CitySurrounded(t *testing.T) {
	e := newTestBoardEngine(t)
	mustPlace(t, e, "city_full", 0, 0, 0)
	if !e.PlaceMarker(0, 0, 0, 0) {
		t.Fatal("Expected marker on city_full")
	}

	steps := []struct {
		rotation int
		x, y     int
	}{
		{2, 0, -1},
		{3, 1, 0},
		{0, 0, 1},
	}
	for _, s := range steps {
		result := mustPlace(t, e, "city_one", s.rotation, s.x, s.y)
		if len(result.TriggeredCompletions) != 0 {
			t.Fatalf("Expected city to stay open after (%d,%d)", s.x, s.y)
		}
	}

	result := mustPlace(t, e, "city_one", 1, -1, 0)
	if len(result.TriggeredCompletions) != 1 {
		t.Fatalf("Expected one completion, got %v", result.TriggeredCompletions)
	}
	if len(result.ScoredPoints) != 1 || result.ScoredPoints[0].Points != 10 || result.ScoredPoints[0].PlayerID != 0 {
		t.Errorf("Expected 10 points to player 0, got %+v", result.ScoredPoints)
	}

	players := e.Players()
	if players[0].Score != 10 {
		t.Errorf("Expected score 10, got %d", players[0].Score)
	}
	if players[0].Markers != DefaultMarkers {
		t.Errorf("Expected marker returned, got %d markers", players[0].Markers)
	}
	city, _ := e.RegionAt(0, 0, 0)
	if !city.Complete || !city.Scored || city.TileCount != 5 {
		t.Errorf("Expected complete scored 5-tile city, got %+v", city)
	}
	tile, _ := e.board.Tile(Position{})
	if len(tile.Markers) != 0 {
		t.Errorf("Expected marker removed from tile, got %v", tile.Markers)
	}
}

func TestScoring_RoadTieJoinedByThirdTile(t *testing.T) {
	e := newTestBoardEngine(t)
	mustPlace(t, e, "road_t", 2, 0, 0)
	if !e.PlaceMarker(0, 0, 1, 0) {
		t.Fatal("Expected player 0 marker on west dead end")
	}
	mustPlace(t, e, "road_straight", 1, 0, -1)
	mustPlace(t, e, "field", 0, 1, -1)
	mustPlace(t, e, "field", 0, 2, -1)
	mustPlace(t, e, "road_t", 0, 2, 0)
	if !e.PlaceMarker(2, 0, 1, 1) {
		t.Fatal("Expected player 1 marker on east dead end")
	}

	a, _ := e.RegionAt(0, 0, 1)
	b, _ := e.RegionAt(2, 0, 1)
	if a.ID == b.ID {
		t.Fatal("Expected two separate roads before the joining tile")
	}

	result := mustPlace(t, e, "road_straight", 0, 1, 0)
	if len(result.TriggeredCompletions) != 1 {
		t.Fatalf("Expected joined road to complete, got %v", result.TriggeredCompletions)
	}
	if len(result.ScoredPoints) != 2 {
		t.Fatalf("Expected both tied owners paid, got %+v", result.ScoredPoints)
	}
	for _, award := range result.ScoredPoints {
		if award.Points != 3 {
			t.Errorf("Expected 3 points for a 3-tile road, got %d", award.Points)
		}
	}

	for _, p := range e.Players() {
		if p.Score != 3 {
			t.Errorf("Player %d: expected 3 points, got %d", p.ID, p.Score)
		}
		if p.Markers != DefaultMarkers {
			t.Errorf("Player %d: expected marker returned, got %d", p.ID, p.Markers)
		}
	}

	joined, _ := e.RegionAt(1, 0, 0)
	if joined.Owners[0] != 1 || joined.Owners[1] != 1 || joined.TileCount != 3 {
		t.Errorf("Expected 3-tile road owned once by each player, got %+v", joined)
	}
}

func TestScoring_MajorityTakesAll(t *testing.T) {
	e := newTestBoardEngine(t)
	mustPlace(t, e, "road_straight", 0, 0, 0)
	r, _ := e.RegionAt(0, 0, 0)
	road := e.regions.Get(r.ID)
	road.Owners[0] = 2
	road.Owners[1] = 1

	awards := e.scoreRegion(road, false)
	if len(awards) != 1 || awards[0].PlayerID != 0 || awards[0].Points != 1 {
		t.Errorf("Expected only the majority owner paid, got %+v", awards)
	}
	if e.players[1].Score != 0 {
		t.Errorf("Expected minority owner unpaid, got %d", e.players[1].Score)
	}
	if again := e.scoreRegion(road, false); again != nil {
		t.Errorf("Expected scored region to pay once, got %+v", again)
	}
}

func TestScoring_Cloister(t *testing.T) {
	e := newTestBoardEngine(t)
	mustPlace(t, e, "monastery", 0, 0, 0)
	if !e.PlaceMarker(0, 0, 0, 1) {
		t.Fatal("Expected marker on cloister")
	}

	ring := []Position{
		{X: 0, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 0}, {X: 1, Y: 1},
		{X: 0, Y: 1}, {X: -1, Y: 1}, {X: -1, Y: 0},
	}
	for _, p := range ring {
		result := mustPlace(t, e, "field", 0, p.X, p.Y)
		if len(result.TriggeredCompletions) != 0 {
			t.Fatalf("Expected cloister open after (%d,%d)", p.X, p.Y)
		}
	}

	cloister, _ := e.RegionAt(0, 0, 0)
	if cloister.Complete || cloister.OpenEdges != 1 {
		t.Errorf("Expected incomplete cloister with 1 open cell, got %+v", cloister)
	}

	result := mustPlace(t, e, "field", 0, -1, -1)
	if len(result.TriggeredCompletions) != 1 || result.TriggeredCompletions[0] != cloister.ID {
		t.Fatalf("Expected cloister %d to complete, got %v", cloister.ID, result.TriggeredCompletions)
	}
	if e.players[1].Score != 9 {
		t.Errorf("Expected 9 points, got %d", e.players[1].Score)
	}
	if e.players[1].Markers != DefaultMarkers {
		t.Errorf("Expected marker returned, got %d", e.players[1].Markers)
	}
}

func TestScoring_FieldsNeverScore(t *testing.T) {
	e := newTestBoardEngine(t)
	mustPlace(t, e, "field", 0, 0, 0)
	field := e.regions.Get(0)
	field.Owners[0] = 1

	e.Finish()
	if field.Scored || field.Complete {
		t.Error("Expected field region untouched by scoring")
	}
	if e.players[0].Score != 0 {
		t.Errorf("Expected no field points, got %d", e.players[0].Score)
	}
}

func TestScoring_EndGameIncompleteCity(t *testing.T) {
	e := newTestMatch(t, createTestConfig(), "city_full", "city_one")

	if _, err := e.PlaceCurrent(0, 0, -1); err != nil {
		t.Fatalf("Failed to place city_full: %v", err)
	}
	if e.Phase() != PhaseMarker {
		t.Fatalf("Expected marker phase, got %s", e.Phase())
	}
	if _, err := e.ClaimFeature(0); err != nil {
		t.Fatalf("Failed to claim city: %v", err)
	}

	if _, err := e.PlaceCurrent(2, 0, -2); err != nil {
		t.Fatalf("Failed to place city_one: %v", err)
	}

	// claimed city offers nothing, so the turn passed into an empty pool
	if !e.IsGameOver() {
		t.Fatal("Expected game over on pool exhaustion")
	}
	city, _ := e.RegionAt(0, -1, 0)
	if city.Complete || !city.Scored || city.TileCount != 3 {
		t.Errorf("Expected incomplete scored 3-tile city, got %+v", city)
	}
	players := e.Players()
	if players[0].Score != 3 {
		t.Errorf("Expected 3 end-game points, got %d", players[0].Score)
	}
	if players[0].Markers != DefaultMarkers {
		t.Errorf("Expected marker returned, got %d", players[0].Markers)
	}

	if awards := e.Finish(); awards != nil {
		t.Errorf("Expected second Finish to award nothing, got %+v", awards)
	}
	if e.Players()[0].Score != 3 {
		t.Error("Expected end-game scoring to run exactly once")
	}

	state := e.GetState()
	if len(state.Winners) != 1 || state.Winners[0] != 0 {
		t.Errorf("Expected player 0 to win, got %v", state.Winners)
	}
	if state.Phase != PhaseOver || state.CurrentTile != nil {
		t.Errorf("Expected over phase with no tile, got %s %v", state.Phase, state.CurrentTile)
	}
}

func TestScoring_EndGameCityDivisor(t *testing.T) {
	config := createTestConfig()
	config.Scoring.CityPoints = 3
	config.Scoring.EndGameCityDivisor = 2
	e := newBareEngine(config)
	mustPlace(t, e, "city_one", 0, 0, 0)
	e.PlaceMarker(0, 0, 0, 1)

	e.Finish()
	// 1 tile * 3 / 2 rounds down
	if e.players[1].Score != 1 {
		t.Errorf("Expected 1 point, got %d", e.players[1].Score)
	}
}

func TestScoring_ZeroPointCityReturnsMarker(t *testing.T) {
	config := createTestConfig()
	config.Scoring.CityPoints = 1
	config.Scoring.EndGameCityDivisor = 3
	if err := ValidateGameConfig(config); err != nil {
		t.Fatalf("Expected config to be valid: %v", err)
	}
	e := newBareEngine(config)
	mustPlace(t, e, "city_one", 0, 0, 0)
	if !e.PlaceMarker(0, 0, 0, 1) {
		t.Fatal("Expected marker on the city")
	}

	if awards := e.Finish(); len(awards) != 0 {
		t.Errorf("Expected no awards for a 0-point city, got %+v", awards)
	}
	if e.players[1].Markers != config.MarkersPerPlayer {
		t.Errorf("Expected marker returned, player holds %d", e.players[1].Markers)
	}
	tile, _ := e.board.Tile(Position{X: 0, Y: 0})
	if len(tile.Markers) != 0 {
		t.Errorf("Expected no marker left on the board, got %+v", tile.Markers)
	}
	city, _ := e.RegionAt(0, 0, 0)
	if !city.Scored {
		t.Error("Expected the city flagged scored")
	}
}

func TestScoring_EndGameSkipsScoredRegions(t *testing.T) {
	e := newTestBoardEngine(t)
	mustPlace(t, e, "monastery", 0, 0, 0)
	cloister := e.regions.Get(0)
	cloister.Owners[0] = 1
	cloister.Complete = true
	cloister.Scored = true

	if awards := e.scoreEndGame(); len(awards) != 0 {
		t.Errorf("Expected no end-game awards, got %+v", awards)
	}
	if e.players[0].Score != 0 {
		t.Error("Expected already scored region to pay nothing")
	}
}
