// Package movement computes where a unit can go: the reachable set under a
// budget, the capped cost to every tile, and the route to a chosen tile.
// All searches expand the 4-neighborhood in grid.Steps order.
package movement

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// ErrUnreachable is returned when a route is requested to a tile outside the reachable set.
var ErrUnreachable = errors.New("destination unreachable")

// DefaultCostCeiling caps CostToAll when no ceiling is configured.
const DefaultCostCeiling = 32

// Occupancy resolves which unit, if any, stands on a tile.
type Occupancy interface {
	UnitAt(c grid.Coord) (*unit.Unit, bool)
}

// Engine answers movement queries over one map.
type Engine struct {
	m       *grid.Map
	occ     Occupancy
	ceiling int
	logger  *zap.Logger
}

// NewEngine creates a movement Engine.
//
// Precondition: m and occ must be non-nil.
// Postcondition: A ceiling <= 0 is replaced by DefaultCostCeiling.
func NewEngine(m *grid.Map, occ Occupancy, ceiling int, logger *zap.Logger) *Engine {
	if m == nil || occ == nil {
		panic("movement.NewEngine: map and occupancy must not be nil")
	}
	if ceiling <= 0 {
		ceiling = DefaultCostCeiling
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{m: m, occ: occ, ceiling: ceiling, logger: logger}
}

// cost returns the non-negative cost of entering c.
func (e *Engine) cost(c grid.Coord) int {
	v := e.m.MoveCost(c)
	if v < 0 {
		return 0
	}
	return v
}

// passable reports whether a unit of team may enter c.
func (e *Engine) passable(c grid.Coord, team unit.Team) bool {
	if _, ok := e.m.At(c); !ok {
		return false
	}
	if u, ok := e.occ.UnitAt(c); ok && u.Team != team {
		return false
	}
	return true
}

// ReachableTiles returns every tile a unit of team standing on start can
// reach with budget, mapped to the budget left on arrival.
//
// Levels are processed from budget down to 0; a tile is recorded the first
// time it is touched, which is always from the highest remaining budget.
//
// Postcondition: result[start] == budget; every value is >= 0; tiles held by
// the other team are never present.
func (e *Engine) ReachableTiles(start grid.Coord, team unit.Team, budget int) map[grid.Coord]int {
	remaining := map[grid.Coord]int{}
	if _, ok := e.m.At(start); !ok || budget < 0 {
		return remaining
	}
	remaining[start] = budget
	levels := map[int][]grid.Coord{budget: {start}}
	for level := budget; level >= 0; level-- {
		// the bucket can grow while it is walked when a tile costs nothing
		for i := 0; i < len(levels[level]); i++ {
			cur := levels[level][i]
			for _, n := range cur.Neighbors() {
				if _, seen := remaining[n]; seen || !e.passable(n, team) {
					continue
				}
				left := level - e.cost(n)
				remaining[n] = left
				if left >= 0 {
					levels[left] = append(levels[left], n)
				}
			}
		}
	}
	for c, left := range remaining {
		if left < 0 {
			delete(remaining, c)
		}
	}
	return remaining
}

// CostToAll returns the accumulated movement cost from start to every tile
// cheaper than the engine's ceiling, ignoring any unit budget.
//
// Postcondition: result[start] == 0; every value is < the ceiling.
func (e *Engine) CostToAll(start grid.Coord, team unit.Team) map[grid.Coord]int {
	costs := map[grid.Coord]int{}
	if _, ok := e.m.At(start); !ok {
		return costs
	}
	costs[start] = 0
	levels := map[int][]grid.Coord{0: {start}}
	for level := 0; level < e.ceiling; level++ {
		for i := 0; i < len(levels[level]); i++ {
			cur := levels[level][i]
			for _, n := range cur.Neighbors() {
				if _, seen := costs[n]; seen || !e.passable(n, team) {
					continue
				}
				total := level + e.cost(n)
				costs[n] = total
				if total < e.ceiling {
					levels[total] = append(levels[total], n)
				}
			}
		}
	}
	for c, total := range costs {
		if total >= e.ceiling {
			delete(costs, c)
		}
	}
	return costs
}

// RouteTo returns the path from start to dest that a unit of team can walk with budget.
//
// The path is rebuilt backwards from dest: a predecessor is a neighbor whose
// remaining budget equals the current tile's remaining budget plus the cost of
// entering the current tile. Neighbors are tried in grid.Steps order and the
// first that leads back to start wins.
//
// Postcondition: On success the path starts at start, ends at dest, consecutive
// tiles are 4-adjacent and the entered tiles cost budget - remaining[dest].
// Returns an error wrapping ErrUnreachable if dest is not reachable.
func (e *Engine) RouteTo(start, dest grid.Coord, team unit.Team, budget int) ([]grid.Coord, error) {
	remaining := e.ReachableTiles(start, team, budget)
	if _, ok := remaining[dest]; !ok {
		return nil, fmt.Errorf("route %s -> %s with budget %d: %w", start, dest, budget, ErrUnreachable)
	}
	back := []grid.Coord{dest}
	visited := map[grid.Coord]bool{dest: true}
	if !e.walkBack(dest, start, remaining, visited, &back) {
		e.logger.Warn("route reconstruction found no chain back to start",
			zap.Stringer("start", start),
			zap.Stringer("dest", dest),
		)
		return nil, fmt.Errorf("route %s -> %s: no predecessor chain: %w", start, dest, ErrUnreachable)
	}
	path := make([]grid.Coord, len(back))
	for i, c := range back {
		path[len(back)-1-i] = c
	}
	return path, nil
}

// walkBack extends back from cur toward start, backtracking out of dead ends
// that only arise around zero-cost tiles.
func (e *Engine) walkBack(cur, start grid.Coord, remaining map[grid.Coord]int, visited map[grid.Coord]bool, back *[]grid.Coord) bool {
	if cur == start {
		return true
	}
	want := remaining[cur] + e.cost(cur)
	for _, n := range cur.Neighbors() {
		left, ok := remaining[n]
		if !ok || visited[n] || left != want {
			continue
		}
		visited[n] = true
		*back = append(*back, n)
		if e.walkBack(n, start, remaining, visited, back) {
			return true
		}
		*back = (*back)[:len(*back)-1]
	}
	return false
}

// PathCost sums the cost of entering every tile of path after the first.
func (e *Engine) PathCost(path []grid.Coord) int {
	total := 0
	for i := 1; i < len(path); i++ {
		total += e.cost(path[i])
	}
	return total
}
