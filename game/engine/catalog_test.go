package engine

import (
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	if len(catalog) != 14 {
		t.Errorf("Expected 14 archetypes, got %d", len(catalog))
	}
	if catalog.TotalTiles() != 49 {
		t.Errorf("Expected 49 tiles in pool, got %d", catalog.TotalTiles())
	}
	if idx := catalog.IndexOf(DefaultStartTile); idx != 10 {
		t.Errorf("Expected start tile at index 10, got %d", idx)
	}
	if idx := catalog.IndexOf("nope"); idx != -1 {
		t.Errorf("Expected -1 for unknown archetype, got %d", idx)
	}

	// every side must be owned by exactly one feature
	for _, def := range catalog {
		seen := make(map[int]int)
		for _, f := range def.Features {
			for _, e := range f.Edges {
				seen[e]++
			}
		}
		for edge := 0; edge < 4; edge++ {
			if seen[edge] != 1 {
				t.Errorf("%s: edge %d owned by %d features", def.ID, edge, seen[edge])
			}
		}
	}
}

func TestRotateEdges(t *testing.T) {
	base := [4]Terrain{TerrainCity, TerrainRoad, TerrainField, TerrainRoad}

	tests := []struct {
		rotation int
		expected [4]Terrain
	}{
		{0, [4]Terrain{"C", "R", "F", "R"}},
		{1, [4]Terrain{"R", "C", "R", "F"}},
		{2, [4]Terrain{"F", "R", "C", "R"}},
		{3, [4]Terrain{"R", "F", "R", "C"}},
		{4, [4]Terrain{"C", "R", "F", "R"}},
		{-1, [4]Terrain{"R", "F", "R", "C"}},
	}

	for _, test := range tests {
		got := RotateEdges(base, test.rotation)
		if got != test.expected {
			t.Errorf("rotation %d: expected %v, got %v", test.rotation, test.expected, got)
		}
	}
}

func TestRotateFeatureEdges(t *testing.T) {
	got := RotateFeatureEdges([]int{2, 3}, 1)
	if got[0] != 3 || got[1] != 0 {
		t.Errorf("Expected [3 0], got %v", got)
	}

	got = RotateFeatureEdges([]int{}, 3)
	if len(got) != 0 {
		t.Errorf("Expected no edges, got %v", got)
	}
}

func TestFeatureForEdge(t *testing.T) {
	catalog := DefaultCatalog()
	roadT := catalog.IndexOf("road_t")

	tests := []struct {
		name     string
		rotation int
		edge     int
		expected int
	}{
		{"unrotated dead end faces west", 0, West, 1},
		{"unrotated through road east", 0, East, 0},
		{"unrotated field north", 0, North, 2},
		{"half turn dead end faces east", 2, East, 1},
		{"half turn through road north", 2, North, 0},
		{"half turn field south", 2, South, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := catalog.FeatureForEdge(roadT, test.rotation, test.edge)
			if got != test.expected {
				t.Errorf("Expected feature %d, got %d", test.expected, got)
			}
		})
	}

	monastery := catalog.IndexOf("monastery")
	if fi := catalog.FeatureForEdge(monastery, 0, North); fi != 1 {
		t.Errorf("Expected monastery north edge to belong to the field, got %d", fi)
	}
}

func TestCatalogWithCounts(t *testing.T) {
	catalog := DefaultCatalog()
	custom := catalog.WithCounts(map[string]int{"field": 0, "city_full": 3})

	if custom[catalog.IndexOf("field")].Count != 0 {
		t.Error("Expected field count override to 0")
	}
	if custom[catalog.IndexOf("city_full")].Count != 3 {
		t.Error("Expected city_full count override to 3")
	}
	if catalog[catalog.IndexOf("field")].Count != 4 {
		t.Error("Expected original catalog to be untouched")
	}
}

func TestPool(t *testing.T) {
	catalog := DefaultCatalog()
	pool := NewPool(catalog, newTestRand())

	if pool.Len() != catalog.TotalTiles() {
		t.Fatalf("Expected %d tiles, got %d", catalog.TotalTiles(), pool.Len())
	}

	counts := make(map[int]int)
	clone := pool.Clone()
	for {
		idx, ok := pool.Draw()
		if !ok {
			break
		}
		counts[idx]++
	}
	for i, def := range catalog {
		if counts[i] != def.Count {
			t.Errorf("%s: expected %d drawn, got %d", def.ID, def.Count, counts[i])
		}
	}
	if clone.Len() != catalog.TotalTiles() {
		t.Error("Expected clone to be independent of the drawn pool")
	}

	ordered := NewPoolFromOrder([]int{3, 1, 2})
	for _, want := range []int{3, 1, 2} {
		got, ok := ordered.Draw()
		if !ok || got != want {
			t.Errorf("Expected draw %d, got %d (ok=%v)", want, got, ok)
		}
	}
	if _, ok := ordered.Draw(); ok {
		t.Error("Expected exhausted pool")
	}
}
