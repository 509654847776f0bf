package engine

// terrainFor maps a region type to the edge terrain that extends it
func terrainFor(t FeatureType) Terrain {
	switch t {
	case City:
		return TerrainCity
	case Road:
		return TerrainRoad
	default:
		return TerrainField
	}
}

// openEdges counts the sides through which r could still be extended.
// For a cloister it is the number of empty surrounding cells.
func (e *GameEngine) openEdges(r *Region) int {
	if r.Type == Cloister {
		for m := range r.Members {
			return CloisterNeighborhoodLen - e.board.OccupiedAround(m.Pos())
		}
		return CloisterNeighborhoodLen
	}

	terrain := terrainFor(r.Type)
	open := 0
	for m := range r.Members {
		pos := m.Pos()
		tile, ok := e.board.Tile(pos)
		if !ok {
			continue
		}
		feature := e.catalog[tile.Archetype].Features[m.FeatureIndex]
		if feature.Type != r.Type {
			continue
		}
		edges := e.catalog.EffectiveEdges(tile.Archetype, tile.Rotation)
		for _, edge := range RotateFeatureEdges(feature.Edges, tile.Rotation) {
			if edges[edge] != terrain {
				continue
			}
			npos, _ := NeighborOf(pos, edge)
			if !e.board.Occupied(npos) {
				open++
			}
		}
	}
	return open
}

// isComplete evaluates the type-specific completion predicate
func (e *GameEngine) isComplete(r *Region) bool {
	switch r.Type {
	case Cloister, City, Road:
		return len(r.Members) > 0 && e.openEdges(r) == 0
	default:
		return false
	}
}

// checkCompletions flips newly completed regions among candidates and
// returns them in ascending id order. Field regions are never checked.
func (e *GameEngine) checkCompletions(candidates []int) []*Region {
	seen := make(map[int]bool)
	var completed []*Region
	for _, id := range candidates {
		root := e.regions.Find(id)
		if seen[root] {
			continue
		}
		seen[root] = true
		r := e.regions.Get(root)
		if r == nil || r.Complete || r.Scored || r.Type == Field {
			continue
		}
		if e.isComplete(r) {
			r.Complete = true
			completed = append(completed, r)
		}
	}
	sortRegions(completed)
	return completed
}

// candidatesAround lists regions whose status a placement at pos can change:
// every feature of the placed tile plus cloisters in the 3x3 neighborhood.
func (e *GameEngine) candidatesAround(pos Position) []int {
	var ids []int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			p := Position{X: pos.X + dx, Y: pos.Y + dy}
			tile, ok := e.board.Tile(p)
			if !ok {
				continue
			}
			def := e.catalog[tile.Archetype]
			for fi, f := range def.Features {
				if p == pos || f.Type == Cloister {
					ids = append(ids, tile.RegionIDs[fi])
				}
			}
		}
	}
	return ids
}

// regionPoints computes the value of r. End-game cities are worth
// CityPoints/EndGameCityDivisor per tile, rounded down.
func (e *GameEngine) regionPoints(r *Region, endGame bool) int {
	s := e.config.Scoring
	switch r.Type {
	case City:
		tiles := r.TileCount()
		if endGame {
			return tiles * s.CityPoints / s.EndGameCityDivisor
		}
		return tiles * s.CityPoints
	case Road:
		return r.TileCount() * s.RoadPoints
	case Cloister:
		for m := range r.Members {
			return 1 + e.board.OccupiedAround(m.Pos())
		}
	}
	return 0
}

// scoreRegion pays every owner tied for the most markers, returns the
// markers and flags the region scored. A scored region never pays again.
func (e *GameEngine) scoreRegion(r *Region, endGame bool) []ScoreAward {
	if r.Scored {
		return nil
	}
	r.Scored = true

	points := e.regionPoints(r, endGame)
	if points == 0 {
		e.returnMarkers(r)
		return nil
	}

	var awards []ScoreAward
	for _, pid := range r.Leaders() {
		e.players[pid].Score += points
		awards = append(awards, ScoreAward{
			PlayerID: pid,
			RegionID: r.ID,
			Points:   points,
			EndGame:  endGame,
		})
	}
	e.returnMarkers(r)
	return awards
}

// returnMarkers removes every marker standing on r and refills owners' pools
func (e *GameEngine) returnMarkers(r *Region) {
	for m := range r.Members {
		tile, ok := e.board.Tile(m.Pos())
		if !ok || len(tile.Markers) == 0 {
			continue
		}
		kept := tile.Markers[:0]
		for _, mk := range tile.Markers {
			if mk.FeatureIndex == m.FeatureIndex {
				e.players[mk.PlayerID].Markers++
				continue
			}
			kept = append(kept, mk)
		}
		tile.Markers = kept
	}
}

// scoreEndGame force-scores every unscored non-Field region once
func (e *GameEngine) scoreEndGame() []ScoreAward {
	var awards []ScoreAward
	for _, id := range e.regions.Roots() {
		r := e.regions.Get(id)
		if r.Scored || r.Type == Field {
			continue
		}
		awards = append(awards, e.scoreRegion(r, true)...)
	}
	return awards
}

func sortRegions(rs []*Region) {
	for i := 1; i < len(rs); i++ {
		for j := i; j > 0 && rs[j].ID < rs[j-1].ID; j-- {
			rs[j], rs[j-1] = rs[j-1], rs[j]
		}
	}
}
