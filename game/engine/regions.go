package engine

import (
	"fmt"
	"sort"
)

// RegionGraph tracks regions as disjoint sets. Ids of absorbed regions stay
// valid as aliases: Find resolves any id ever issued to its surviving root.
type RegionGraph struct {
	nextID  int
	parent  map[int]int
	regions map[int]*Region
}

// NewRegionGraph creates an empty graph
func NewRegionGraph() *RegionGraph {
	return &RegionGraph{
		parent:  make(map[int]int),
		regions: make(map[int]*Region),
	}
}

// Create allocates a single-member region and returns its id
func (g *RegionGraph) Create(t FeatureType, m Member) int {
	id := g.nextID
	g.nextID++
	g.parent[id] = id
	g.regions[id] = &Region{
		ID:      id,
		Type:    t,
		Members: map[Member]struct{}{m: {}},
		Owners:  make(map[int]int),
	}
	return id
}

// Find returns the root id of the set containing id, compressing the path
func (g *RegionGraph) Find(id int) int {
	root := id
	for {
		p, ok := g.parent[root]
		if !ok || p == root {
			break
		}
		root = p
	}
	for id != root {
		next := g.parent[id]
		g.parent[id] = root
		id = next
	}
	return root
}

// Get returns the live region for any id ever issued, or nil
func (g *RegionGraph) Get(id int) *Region {
	return g.regions[g.Find(id)]
}

// Resolve returns the root id of the set containing id without compressing
// the path. Read-only queries use it so snapshots never write the graph.
func (g *RegionGraph) Resolve(id int) int {
	for {
		p, ok := g.parent[id]
		if !ok || p == id {
			return id
		}
		id = p
	}
}

// Lookup is Get without path compression
func (g *RegionGraph) Lookup(id int) *Region {
	return g.regions[g.Resolve(id)]
}

// Union merges the regions holding a and b and returns the surviving id.
// The region with more members survives; ties keep a.
func (g *RegionGraph) Union(a, b int) int {
	ra, rb := g.Find(a), g.Find(b)
	if ra == rb {
		return ra
	}
	keep, absorb := g.regions[ra], g.regions[rb]
	if keep == nil || absorb == nil {
		panic(fmt.Sprintf("region graph: union of unknown regions %d and %d", a, b))
	}
	if keep.Type != absorb.Type {
		panic(fmt.Sprintf("region graph: cannot merge %s region %d with %s region %d",
			keep.Type, keep.ID, absorb.Type, absorb.ID))
	}
	if len(absorb.Members) > len(keep.Members) {
		keep, absorb = absorb, keep
	}

	for m := range absorb.Members {
		keep.Members[m] = struct{}{}
	}
	for pid, count := range absorb.Owners {
		keep.Owners[pid] += count
	}

	g.parent[absorb.ID] = keep.ID
	delete(g.regions, absorb.ID)
	return keep.ID
}

// Roots returns the ids of all live regions in ascending order
func (g *RegionGraph) Roots() []int {
	ids := make([]int, 0, len(g.regions))
	for id := range g.regions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Len returns the number of live regions
func (g *RegionGraph) Len() int {
	return len(g.regions)
}

func (g *RegionGraph) clone() *RegionGraph {
	out := &RegionGraph{
		nextID:  g.nextID,
		parent:  make(map[int]int, len(g.parent)),
		regions: make(map[int]*Region, len(g.regions)),
	}
	for k, v := range g.parent {
		out.parent[k] = v
	}
	for id, r := range g.regions {
		cp := &Region{
			ID:       r.ID,
			Type:     r.Type,
			Members:  make(map[Member]struct{}, len(r.Members)),
			Owners:   make(map[int]int, len(r.Owners)),
			Complete: r.Complete,
			Scored:   r.Scored,
		}
		for m := range r.Members {
			cp.Members[m] = struct{}{}
		}
		for k, v := range r.Owners {
			cp.Owners[k] = v
		}
		out.regions[id] = cp
	}
	return out
}

// SortedMembers returns the members of r in row-major, feature order
func (r *Region) SortedMembers() []Member {
	out := make([]Member, 0, len(r.Members))
	for m := range r.Members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].FeatureIndex < out[j].FeatureIndex
	})
	return out
}

// TilePositions returns the unique tile positions covered by r
func (r *Region) TilePositions() []Position {
	seen := make(map[Position]bool, len(r.Members))
	var out []Position
	for _, m := range r.SortedMembers() {
		p := m.Pos()
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// TileCount returns the number of distinct tiles in r
func (r *Region) TileCount() int {
	return len(r.TilePositions())
}

// Claimed reports whether any player holds a marker on r
func (r *Region) Claimed() bool {
	return len(r.Owners) > 0
}

// OwnerCount returns the total number of markers on r
func (r *Region) OwnerCount() int {
	total := 0
	for _, c := range r.Owners {
		total += c
	}
	return total
}

// Leaders returns the players tied for the most markers on r, ascending
func (r *Region) Leaders() []int {
	best := 0
	for _, c := range r.Owners {
		if c > best {
			best = c
		}
	}
	if best == 0 {
		return nil
	}
	var out []int
	for pid, c := range r.Owners {
		if c == best {
			out = append(out, pid)
		}
	}
	sort.Ints(out)
	return out
}
