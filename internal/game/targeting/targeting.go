// Package targeting computes which tiles an attack can reach: the enemy
// tiles inside a single attack's distance band, or the projected tiles of an
// area attack's offset pattern at a given facing.
package targeting

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Rotation is a rotate command issued while aiming an area attack.
type Rotation int

const (
	// Clockwise advances the facing by +1.
	Clockwise Rotation = iota
	// CounterClockwise advances the facing by +3 mod 4.
	CounterClockwise
)

// Occupancy resolves which unit, if any, stands on a tile.
type Occupancy interface {
	UnitAt(c grid.Coord) (*unit.Unit, bool)
}

// InitialDirection is the facing every area attack starts at, whatever the caster's team.
const InitialDirection = grid.East

// Rotate returns the facing after applying r to d for attack a.
//
// Postcondition: Non-rotatable attacks return d unchanged and ok == false.
func Rotate(a *ruleset.Attack, d grid.Direction, r Rotation) (grid.Direction, bool) {
	if a == nil || a.Scale != ruleset.ScaleRange || !a.Rotatable {
		return d, false
	}
	if r == CounterClockwise {
		return d.Prev(), true
	}
	return d.Next(), true
}

// Project maps the relative pattern to absolute coordinates around origin at facing d.
//
// Postcondition: len(result) == len(pattern); result[i] = origin + d.Rotate(pattern[i]).
func Project(origin grid.Coord, pattern []grid.Coord, d grid.Direction) []grid.Coord {
	out := make([]grid.Coord, len(pattern))
	for i, p := range pattern {
		out[i] = origin.Add(d.Rotate(p))
	}
	return out
}

// Engine answers targeting queries over one map.
type Engine struct {
	m      *grid.Map
	occ    Occupancy
	logger *zap.Logger
}

// NewEngine creates a targeting Engine.
//
// Precondition: m and occ must be non-nil.
func NewEngine(m *grid.Map, occ Occupancy, logger *zap.Logger) *Engine {
	if m == nil || occ == nil {
		panic("targeting.NewEngine: map and occupancy must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{m: m, occ: occ, logger: logger}
}

func (e *Engine) enemyAt(c grid.Coord, team unit.Team) (*unit.Unit, bool) {
	u, ok := e.occ.UnitAt(c)
	if !ok || u.Team == team {
		return nil, false
	}
	return u, true
}

// SingleTargets returns the enemy-held tiles whose Manhattan distance from
// origin lies within a's range band, in row-major order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (e *Engine) SingleTargets(origin grid.Coord, team unit.Team, a *ruleset.Attack) []grid.Coord {
	out := []grid.Coord{}
	for _, t := range e.m.TilesWithinDistance(origin, a.RangeMin, a.RangeMax) {
		if _, ok := e.enemyAt(t.Coord(), team); ok {
			out = append(out, t.Coord())
		}
	}
	return out
}

// AreaTiles returns the on-map tiles covered by a's pattern from origin at facing d.
//
// Postcondition: Returns a non-nil slice; off-map offsets are dropped.
func (e *Engine) AreaTiles(origin grid.Coord, a *ruleset.Attack, d grid.Direction) []grid.Coord {
	out := []grid.Coord{}
	if len(a.Pattern) == 0 {
		e.logger.Warn("area attack has an empty pattern", zap.String("attack", a.Name))
		return out
	}
	for _, c := range Project(origin, a.Pattern, d) {
		if _, ok := e.m.At(c); ok {
			out = append(out, c)
		}
	}
	return out
}

// AreaEnemies returns the enemy units standing on a's pattern from origin at facing d.
func (e *Engine) AreaEnemies(origin grid.Coord, team unit.Team, a *ruleset.Attack, d grid.Direction) []*unit.Unit {
	var out []*unit.Unit
	for _, c := range e.AreaTiles(origin, a, d) {
		if u, ok := e.enemyAt(c, team); ok {
			out = append(out, u)
		}
	}
	return out
}

// Targets returns the tiles a would mark for a unit of team at origin: the
// enemy tiles in band for single attacks, the whole pattern for area attacks.
// hasTarget reports whether at least one enemy would be hit.
func (e *Engine) Targets(origin grid.Coord, team unit.Team, a *ruleset.Attack, d grid.Direction) (tiles []grid.Coord, hasTarget bool) {
	if a.Scale == ruleset.ScaleRange {
		return e.AreaTiles(origin, a, d), len(e.AreaEnemies(origin, team, a, d)) > 0
	}
	tiles = e.SingleTargets(origin, team, a)
	return tiles, len(tiles) > 0
}

// Highlight clears the map and marks the tiles a would affect as attackable.
//
// Postcondition: Returns whether at least one enemy is a valid target.
func (e *Engine) Highlight(origin grid.Coord, team unit.Team, a *ruleset.Attack, d grid.Direction) bool {
	tiles, ok := e.Targets(origin, team, a, d)
	e.m.Highlight(tiles, grid.HighlightAttackable)
	return ok
}

// HasTarget reports whether a has any valid target from origin, trying every
// facing a rotatable area attack can take.
func (e *Engine) HasTarget(origin grid.Coord, team unit.Team, a *ruleset.Attack) bool {
	if a.Scale != ruleset.ScaleRange || !a.Rotatable {
		_, ok := e.Targets(origin, team, a, InitialDirection)
		return ok
	}
	for d := grid.East; d <= grid.South; d++ {
		if _, ok := e.Targets(origin, team, a, d); ok {
			return true
		}
	}
	return false
}
