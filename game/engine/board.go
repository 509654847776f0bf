package engine

import "sort"

// neighborOffsets is indexed by edge: N, E, S, W
var neighborOffsets = [4]Position{
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: -1, Y: 0},
}

// Board is the sparse store of placed tiles
type Board struct {
	catalog Catalog
	tiles   map[Position]*PlacedTile
}

// NewBoard creates an empty board over a catalog
func NewBoard(catalog Catalog) *Board {
	return &Board{
		catalog: catalog,
		tiles:   make(map[Position]*PlacedTile),
	}
}

// NeighborOf returns the cell across the given edge and the edge index that faces back
func NeighborOf(pos Position, edge int) (Position, int) {
	edge = normalizeRotation(edge)
	off := neighborOffsets[edge]
	return Position{X: pos.X + off.X, Y: pos.Y + off.Y}, (edge + 2) % 4
}

// Len returns the number of placed tiles
func (b *Board) Len() int {
	return len(b.tiles)
}

// Tile returns the tile at a position
func (b *Board) Tile(pos Position) (*PlacedTile, bool) {
	t, ok := b.tiles[pos]
	return t, ok
}

// Occupied reports whether a cell holds a tile
func (b *Board) Occupied(pos Position) bool {
	_, ok := b.tiles[pos]
	return ok
}

// EdgesAt returns the rotated edges of the tile at pos
func (b *Board) EdgesAt(pos Position) ([4]Terrain, bool) {
	t, ok := b.tiles[pos]
	if !ok {
		return [4]Terrain{}, false
	}
	return b.catalog.EffectiveEdges(t.Archetype, t.Rotation), true
}

// CanPlace checks whether an archetype at a rotation fits the cell
func (b *Board) CanPlace(idx, rotation, x, y int) bool {
	if !b.catalog.Valid(idx) {
		return false
	}
	pos := Position{X: x, Y: y}
	if b.Occupied(pos) {
		return false
	}

	edges := b.catalog.EffectiveEdges(idx, rotation)
	hasNeighbor := false
	for edge := 0; edge < 4; edge++ {
		npos, opp := NeighborOf(pos, edge)
		nbEdges, ok := b.EdgesAt(npos)
		if !ok {
			continue
		}
		hasNeighbor = true
		if edges[edge] != nbEdges[opp] {
			return false
		}
	}

	return hasNeighbor || b.Len() == 0
}

// frontier returns the empty cells adjacent to any placed tile
func (b *Board) frontier() []Position {
	if b.Len() == 0 {
		return []Position{{X: 0, Y: 0}}
	}
	seen := make(map[Position]bool)
	var cells []Position
	for pos := range b.tiles {
		for edge := 0; edge < 4; edge++ {
			npos, _ := NeighborOf(pos, edge)
			if b.Occupied(npos) || seen[npos] {
				continue
			}
			seen[npos] = true
			cells = append(cells, npos)
		}
	}
	sortPositions(cells)
	return cells
}

// LegalCells returns every empty cell where the tile fits at this rotation
func (b *Board) LegalCells(idx, rotation int) []Position {
	if !b.catalog.Valid(idx) {
		return nil
	}
	var legal []Position
	for _, pos := range b.frontier() {
		if b.CanPlace(idx, rotation, pos.X, pos.Y) {
			legal = append(legal, pos)
		}
	}
	return legal
}

// HasAnyPlacement reports whether the tile fits somewhere under any rotation
func (b *Board) HasAnyPlacement(idx int) bool {
	for r := 0; r < 4; r++ {
		if len(b.LegalCells(idx, r)) > 0 {
			return true
		}
	}
	return false
}

// OccupiedAround counts placed tiles in the 8 cells surrounding pos
func (b *Board) OccupiedAround(pos Position) int {
	count := 0
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if b.Occupied(Position{X: pos.X + dx, Y: pos.Y + dy}) {
				count++
			}
		}
	}
	return count
}

// Positions returns every occupied position in row-major order
func (b *Board) Positions() []Position {
	out := make([]Position, 0, len(b.tiles))
	for pos := range b.tiles {
		out = append(out, pos)
	}
	sortPositions(out)
	return out
}

func (b *Board) put(pos Position, tile *PlacedTile) {
	b.tiles[pos] = tile
}

func (b *Board) clone() *Board {
	out := NewBoard(b.catalog)
	for pos, t := range b.tiles {
		cp := &PlacedTile{
			Archetype: t.Archetype,
			Rotation:  t.Rotation,
			RegionIDs: append([]int(nil), t.RegionIDs...),
			Markers:   append([]Marker(nil), t.Markers...),
		}
		out.tiles[pos] = cp
	}
	return out
}

func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
}
