package unit

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
)

// Roster tracks every unit still in play, by ID and by position.
// All methods are safe for concurrent use.
type Roster struct {
	mu    sync.RWMutex
	units []*Unit // insertion order
	byID  map[string]*Unit
}

// NewRoster builds a roster from units.
//
// Precondition: unit IDs and starting positions must be unique.
// Postcondition: Returns a populated Roster or an error naming the first conflict.
func NewRoster(units []*Unit) (*Roster, error) {
	r := &Roster{byID: make(map[string]*Unit, len(units))}
	pos := make(map[grid.Coord]string, len(units))
	for _, u := range units {
		if _, dup := r.byID[u.ID]; dup {
			return nil, fmt.Errorf("duplicate unit id %q", u.ID)
		}
		if other, taken := pos[u.Pos]; taken {
			return nil, fmt.Errorf("units %q and %q both start at %s", other, u.ID, u.Pos)
		}
		pos[u.Pos] = u.ID
		r.byID[u.ID] = u
		r.units = append(r.units, u)
	}
	return r, nil
}

// Get returns the unit with the given ID.
//
// Postcondition: Returns (unit, true) if found, or (nil, false) otherwise.
func (r *Roster) Get(id string) (*Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	return u, ok
}

// UnitAt returns the unit standing at c.
func (r *Roster) UnitAt(c grid.Coord) (*Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.units {
		if u.Pos == c {
			return u, true
		}
	}
	return nil, false
}

// All returns every unit in play in insertion order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (r *Roster) All() []*Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Unit, len(r.units))
	copy(out, r.units)
	return out
}

// Team returns the units of team t in insertion order.
//
// Postcondition: Returns a non-nil slice (may be empty).
func (r *Roster) Team(t Team) []*Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*Unit{}
	for _, u := range r.units {
		if u.Team == t {
			out = append(out, u)
		}
	}
	return out
}

// Count returns how many units of team t remain.
func (r *Roster) Count(t Team) int {
	return len(r.Team(t))
}

// ActingOrder returns team t's units ordered by role, then by row and column.
//
// Postcondition: The ordering is stable for equal keys.
func (r *Roster) ActingOrder(t Team) []*Unit {
	out := r.Team(t)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if a.Pos.Y != b.Pos.Y {
			return a.Pos.Y < b.Pos.Y
		}
		return a.Pos.X < b.Pos.X
	})
	return out
}

// Move relocates unit id to c.
//
// Precondition: c must not be occupied by another unit.
// Postcondition: Returns an error if the unit is unknown or c is taken.
func (r *Roster) Move(id string, c grid.Coord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("unit %q not found", id)
	}
	for _, other := range r.units {
		if other != u && other.Pos == c {
			return fmt.Errorf("tile %s is occupied by %q", c, other.ID)
		}
	}
	u.Pos = c
	return nil
}

// RemoveDefeated drops every unit with no life left.
//
// Postcondition: No remaining unit is defeated; returns the removed units in insertion order.
func (r *Roster) RemoveDefeated() []*Unit {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []*Unit
	kept := r.units[:0]
	for _, u := range r.units {
		if u.Defeated() {
			removed = append(removed, u)
			delete(r.byID, u.ID)
			continue
		}
		kept = append(kept, u)
	}
	for i := len(kept); i < len(r.units); i++ {
		r.units[i] = nil
	}
	r.units = kept
	return removed
}
