// Package grid owns the battle map: tiles, their terrain features and their
// highlight state.
package grid

import (
	"fmt"
	"strings"
)

// Coord is a local integer tile coordinate.
type Coord struct {
	X int
	Y int
}

// String renders the coordinate as "(x,y)".
func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.X, c.Y) }

// Add returns the coordinate offset by d.
func (c Coord) Add(d Coord) Coord { return Coord{X: c.X + d.X, Y: c.Y + d.Y} }

// Distance returns the Manhattan distance between c and o.
//
// Postcondition: Returns >= 0; Distance(a,b) == Distance(b,a).
func (c Coord) Distance(o Coord) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Steps are the 4-neighborhood offsets in the fixed examination order E, N, W, S.
var Steps = [4]Coord{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}}

// Neighbors returns the four orthogonal neighbors of c in Steps order.
func (c Coord) Neighbors() [4]Coord {
	var out [4]Coord
	for i, s := range Steps {
		out[i] = c.Add(s)
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Feature is the terrain category of a tile.
type Feature int

const (
	FeaturePlain Feature = iota
	FeatureForest
	FeatureRock
	FeatureUnmovable
)

// String returns the YAML name of the feature.
func (f Feature) String() string {
	switch f {
	case FeaturePlain:
		return "plain"
	case FeatureForest:
		return "forest"
	case FeatureRock:
		return "rock"
	case FeatureUnmovable:
		return "unmovable"
	default:
		return fmt.Sprintf("feature(%d)", int(f))
	}
}

// ParseFeature maps a terrain tag to a Feature. "grass" is accepted as plain.
//
// Postcondition: Returns an error for unknown tags.
func ParseFeature(s string) (Feature, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "plain", "grass":
		return FeaturePlain, nil
	case "forest":
		return FeatureForest, nil
	case "rock":
		return FeatureRock, nil
	case "unmovable", "wall":
		return FeatureUnmovable, nil
	default:
		return 0, fmt.Errorf("unknown terrain feature %q", s)
	}
}

// Highlight is the transient marking a tile carries during a phase.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightMovable
	HighlightAttackable
)

// String returns a human-readable highlight label.
func (h Highlight) String() string {
	switch h {
	case HighlightNone:
		return "none"
	case HighlightMovable:
		return "movable"
	case HighlightAttackable:
		return "attackable"
	default:
		return "unknown"
	}
}

// Tile is one grid cell. Its coordinate never changes; its feature and
// highlight do. The unit standing on a tile is resolved by coordinate lookup
// on the roster, never stored here.
type Tile struct {
	coord     Coord
	Feature   Feature
	highlight Highlight
}

// NewTile creates a tile at c with the given feature and no highlight.
func NewTile(c Coord, f Feature) *Tile {
	return &Tile{coord: c, Feature: f}
}

// Coord returns the tile's immutable coordinate.
func (t *Tile) Coord() Coord { return t.coord }

// Highlight returns the tile's current highlight.
func (t *Tile) Highlight() Highlight { return t.highlight }
