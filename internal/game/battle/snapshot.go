package battle

import (
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Snapshot is a read-only copy of everything a presentation or an AI may
// observe about the battle.
type Snapshot struct {
	Phase Phase
	Team  unit.Team
	Set   int
	Cycle int
	// Active is a copy of the acting unit; nil once the battle has ended.
	Active *unit.Unit
	// Selected is the ID chosen by the first click of the Check phase.
	Selected   string
	Movable    []grid.Coord
	Attackable []grid.Coord
	// Aiming is the attack being oriented, if any, and its facing.
	Aiming    string
	Direction grid.Direction
	Menu      []MenuEntry
	Units     []unit.Unit
	Ended     bool
	Winner    unit.Team
	Draw      bool
}

// Enemies returns the units in s that oppose team.
func (s Snapshot) Enemies(team unit.Team) []unit.Unit {
	var out []unit.Unit
	for _, u := range s.Units {
		if u.Team != team {
			out = append(out, u)
		}
	}
	return out
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Phase:      c.phase(),
		Team:       c.team,
		Set:        c.set,
		Cycle:      c.cycle,
		Selected:   c.selected,
		Movable:    tileCoords(c.m.TilesWithHighlight(grid.HighlightMovable)),
		Attackable: tileCoords(c.m.TilesWithHighlight(grid.HighlightAttackable)),
		Direction:  c.direction,
		Menu:       append([]MenuEntry(nil), c.menu...),
		Ended:      c.ended,
		Winner:     c.winner,
		Draw:       c.draw,
	}
	if c.aiming != nil {
		s.Aiming = c.aiming.Name
	}
	if u := c.active(); u != nil && !c.ended {
		cp := u.Clone()
		s.Active = &cp
	}
	for _, u := range c.roster.All() {
		s.Units = append(s.Units, u.Clone())
	}
	return s
}
