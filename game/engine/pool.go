package engine

import "math/rand"

// Pool is a shuffled multiset of catalog indices drawn without replacement
type Pool struct {
	tiles []int
}

// NewPool builds a pool holding Count copies of every archetype, shuffled with rng
func NewPool(catalog Catalog, rng *rand.Rand) *Pool {
	tiles := make([]int, 0, catalog.TotalTiles())
	for i, def := range catalog {
		for c := 0; c < def.Count; c++ {
			tiles = append(tiles, i)
		}
	}
	rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	return &Pool{tiles: tiles}
}

// NewPoolFromOrder builds a pool that draws the given indices first-to-last
func NewPoolFromOrder(order []int) *Pool {
	tiles := make([]int, len(order))
	for i, idx := range order {
		tiles[len(order)-1-i] = idx
	}
	return &Pool{tiles: tiles}
}

// Draw removes and returns one archetype index; false when exhausted
func (p *Pool) Draw() (int, bool) {
	if len(p.tiles) == 0 {
		return 0, false
	}
	last := p.tiles[len(p.tiles)-1]
	p.tiles = p.tiles[:len(p.tiles)-1]
	return last, true
}

// Len returns the number of tiles left
func (p *Pool) Len() int {
	return len(p.tiles)
}

// Clone returns an independent copy of the pool
func (p *Pool) Clone() *Pool {
	tiles := make([]int, len(p.tiles))
	copy(tiles, p.tiles)
	return &Pool{tiles: tiles}
}
