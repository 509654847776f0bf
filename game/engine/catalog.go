package engine

// Catalog is the ordered list of tile archetypes used by a match
type Catalog []TileArchetype

// DefaultCatalog returns the classic set of 14 archetypes (49 tiles)
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: "field", Count: 4, Edges: [4]Terrain{"F", "F", "F", "F"}, Features: []Feature{
			{Type: Field, Edges: []int{0, 1, 2, 3}},
		}},
		{ID: "city_one", Count: 5, Edges: [4]Terrain{"C", "F", "F", "F"}, Features: []Feature{
			{Type: City, Edges: []int{0}},
			{Type: Field, Edges: []int{1, 2, 3}},
		}},
		{ID: "city_two_opp", Count: 3, Edges: [4]Terrain{"C", "F", "C", "F"}, Features: []Feature{
			{Type: City, Edges: []int{0}},
			{Type: City, Edges: []int{2}},
			{Type: Field, Edges: []int{1, 3}},
		}},
		{ID: "city_two_adj", Count: 3, Edges: [4]Terrain{"C", "C", "F", "F"}, Features: []Feature{
			{Type: City, Edges: []int{0, 1}},
			{Type: Field, Edges: []int{2, 3}},
		}},
		{ID: "city_three", Count: 3, Edges: [4]Terrain{"C", "C", "F", "C"}, Features: []Feature{
			{Type: City, Edges: []int{0, 1, 3}},
			{Type: Field, Edges: []int{2}},
		}},
		{ID: "city_full", Count: 1, Edges: [4]Terrain{"C", "C", "C", "C"}, Features: []Feature{
			{Type: City, Edges: []int{0, 1, 2, 3}},
		}},
		{ID: "road_straight", Count: 4, Edges: [4]Terrain{"F", "R", "F", "R"}, Features: []Feature{
			{Type: Road, Edges: []int{1, 3}},
			{Type: Field, Edges: []int{0, 2}},
		}},
		{ID: "road_turn", Count: 9, Edges: [4]Terrain{"F", "F", "R", "R"}, Features: []Feature{
			{Type: Road, Edges: []int{2, 3}},
			{Type: Field, Edges: []int{0, 1}},
		}},
		{ID: "road_t", Count: 4, Edges: [4]Terrain{"F", "R", "R", "R"}, Features: []Feature{
			{Type: Road, Edges: []int{1, 2}},
			{Type: Road, Edges: []int{3}},
			{Type: Field, Edges: []int{0}},
		}},
		{ID: "road_cross", Count: 1, Edges: [4]Terrain{"R", "R", "R", "R"}, Features: []Feature{
			{Type: Road, Edges: []int{0, 1}},
			{Type: Road, Edges: []int{2, 3}},
		}},
		{ID: "city_road", Count: 3, Edges: [4]Terrain{"C", "R", "F", "R"}, Features: []Feature{
			{Type: City, Edges: []int{0}},
			{Type: Road, Edges: []int{1, 3}},
			{Type: Field, Edges: []int{2}},
		}},
		{ID: "city_road_bend", Count: 3, Edges: [4]Terrain{"C", "F", "R", "R"}, Features: []Feature{
			{Type: City, Edges: []int{0}},
			{Type: Road, Edges: []int{2, 3}},
			{Type: Field, Edges: []int{1}},
		}},
		{ID: "monastery", Count: 4, Edges: [4]Terrain{"F", "F", "F", "F"}, Features: []Feature{
			{Type: Cloister, Edges: []int{}},
			{Type: Field, Edges: []int{0, 1, 2, 3}},
		}},
		{ID: "monastery_road", Count: 2, Edges: [4]Terrain{"F", "F", "R", "F"}, Features: []Feature{
			{Type: Cloister, Edges: []int{}},
			{Type: Road, Edges: []int{2}},
			{Type: Field, Edges: []int{0, 1, 3}},
		}},
	}
}

// IndexOf returns the catalog index for an archetype ID, or -1
func (c Catalog) IndexOf(id string) int {
	for i, def := range c {
		if def.ID == id {
			return i
		}
	}
	return -1
}

// Valid reports whether idx addresses a catalog entry
func (c Catalog) Valid(idx int) bool {
	return idx >= 0 && idx < len(c)
}

// TotalTiles returns the number of tiles the catalog puts in a pool
func (c Catalog) TotalTiles() int {
	total := 0
	for _, def := range c {
		total += def.Count
	}
	return total
}

// WithCounts returns a copy of the catalog with per-archetype counts overridden
func (c Catalog) WithCounts(counts map[string]int) Catalog {
	out := make(Catalog, len(c))
	copy(out, c)
	for i := range out {
		if n, ok := counts[out[i].ID]; ok {
			out[i].Count = n
		}
	}
	return out
}

// HasCloister reports whether the archetype carries a cloister feature
func (def TileArchetype) HasCloister() bool {
	for _, f := range def.Features {
		if f.Type == Cloister {
			return true
		}
	}
	return false
}

// RotateEdges rotates an edge array clockwise r quarter turns.
// Side i after rotation r is original side (i - r) mod 4.
func RotateEdges(edges [4]Terrain, r int) [4]Terrain {
	r = normalizeRotation(r)
	var out [4]Terrain
	for i := 0; i < 4; i++ {
		out[i] = edges[(i-r+4)%4]
	}
	return out
}

// RotateFeatureEdges maps local feature edges through a rotation
func RotateFeatureEdges(edges []int, r int) []int {
	r = normalizeRotation(r)
	out := make([]int, len(edges))
	for i, e := range edges {
		out[i] = (e + r) % 4
	}
	return out
}

// EffectiveEdges returns the rotated edges of a catalog entry
func (c Catalog) EffectiveEdges(idx, rotation int) [4]Terrain {
	return RotateEdges(c[idx].Edges, rotation)
}

// FeatureForEdge returns the feature index of a rotated tile that occupies
// the given board-facing edge, or -1.
func (c Catalog) FeatureForEdge(idx, rotation, edge int) int {
	for fi, f := range c[idx].Features {
		for _, e := range RotateFeatureEdges(f.Edges, rotation) {
			if e == edge {
				return fi
			}
		}
	}
	return -1
}

func normalizeRotation(r int) int {
	return ((r % 4) + 4) % 4
}
