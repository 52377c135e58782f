package grid

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Map is the set of tiles a battle is fought on.
//
// Map is not safe for concurrent use; the turn controller owns it exclusively.
// Iteration order over tiles is fixed (row-major, Y then X) so every query is
// deterministic.
type Map struct {
	tiles   map[Coord]*Tile
	order   []Coord
	terrain TerrainTable
	logger  *zap.Logger
}

// NewMap builds a Map from tiles using terrain for feature constants.
//
// Precondition: tiles must not contain two tiles with the same coordinate.
// Postcondition: Returns a Map with no highlighted tiles, or an error on duplicates.
func NewMap(tiles []*Tile, terrain TerrainTable, logger *zap.Logger) (*Map, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if terrain == nil {
		terrain = DefaultTerrain()
	}
	m := &Map{
		tiles:   make(map[Coord]*Tile, len(tiles)),
		order:   make([]Coord, 0, len(tiles)),
		terrain: terrain,
		logger:  logger,
	}
	for _, t := range tiles {
		if _, dup := m.tiles[t.coord]; dup {
			return nil, fmt.Errorf("duplicate tile at %s", t.coord)
		}
		t.highlight = HighlightNone
		m.tiles[t.coord] = t
		m.order = append(m.order, t.coord)
	}
	sort.Slice(m.order, func(i, j int) bool {
		a, b := m.order[i], m.order[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return m, nil
}

// Tile returns the tile at (x,y).
//
// Postcondition: Returns (nil, false) when no tile is defined there.
func (m *Map) Tile(x, y int) (*Tile, bool) {
	return m.At(Coord{X: x, Y: y})
}

// At returns the tile at c.
func (m *Map) At(c Coord) (*Tile, bool) {
	t, ok := m.tiles[c]
	return t, ok
}

// Len returns the number of tiles on the map.
func (m *Map) Len() int { return len(m.order) }

// Tiles returns every tile in row-major order.
func (m *Map) Tiles() []*Tile {
	out := make([]*Tile, 0, len(m.order))
	for _, c := range m.order {
		out = append(out, m.tiles[c])
	}
	return out
}

// TilesWithHighlight returns all tiles currently carrying h, in row-major order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (m *Map) TilesWithHighlight(h Highlight) []*Tile {
	out := []*Tile{}
	for _, c := range m.order {
		if t := m.tiles[c]; t.highlight == h {
			out = append(out, t)
		}
	}
	return out
}

// ClearHighlights resets every tile to HighlightNone.
//
// Postcondition: len(TilesWithHighlight(HighlightMovable)) == 0 and likewise for attackable.
func (m *Map) ClearHighlights() {
	for _, t := range m.tiles {
		t.highlight = HighlightNone
	}
}

// Highlight clears the whole map and then marks exactly coords with h.
// Coordinates without a tile are skipped.
func (m *Map) Highlight(coords []Coord, h Highlight) {
	m.ClearHighlights()
	for _, c := range coords {
		if t, ok := m.tiles[c]; ok {
			t.highlight = h
		}
	}
}

// TilesWithinDistance returns tiles whose Manhattan distance from origin lies in [dMin, dMax].
//
// Postcondition: Returns a non-nil slice in row-major order; empty when dMin > dMax.
func (m *Map) TilesWithinDistance(origin Coord, dMin, dMax int) []*Tile {
	out := []*Tile{}
	if dMin > dMax {
		return out
	}
	for _, c := range m.order {
		d := origin.Distance(c)
		if d >= dMin && d <= dMax {
			out = append(out, m.tiles[c])
		}
	}
	return out
}

// Stats returns the terrain constants for the tile at c.
// An unknown feature degrades to zero stats and is logged.
//
// Postcondition: Returns zero stats when c has no tile.
func (m *Map) Stats(c Coord) TerrainStats {
	t, ok := m.tiles[c]
	if !ok {
		return TerrainStats{}
	}
	s, ok := m.terrain.Lookup(t.Feature)
	if !ok {
		m.logger.Warn("terrain feature has no table entry; using zero stats",
			zap.Stringer("feature", t.Feature),
			zap.Stringer("tile", c),
		)
	}
	return s
}

// MoveCost returns the movement cost of entering the tile at c.
func (m *Map) MoveCost(c Coord) int { return m.Stats(c).MoveCost }
