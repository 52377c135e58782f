package battle

import (
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/targeting"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Option is one concrete way the acting unit could attack right now.
type Option struct {
	Attack string
	Tier   ruleset.Tier
	// Direction is the facing an area attack must be turned to.
	Direction grid.Direction
	// Rotations is how many clockwise turns from the initial facing reach Direction.
	Rotations int
	// Target is the tile to confirm for a single attack.
	Target grid.Coord
	// Targets are the IDs of the enemies that would be hit.
	Targets []string
	// Expected is the summed expected damage over Targets.
	Expected float64
	// Lethal counts targets an average hit would defeat.
	Lethal int
}

// AttackOptions lists every enabled attack of the acting unit against every
// target or facing that would hit at least one enemy. It is empty outside the
// Attack phase.
func (c *Controller) AttackOptions() []Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := c.active()
	if u == nil || c.ended || c.phase() != PhaseAttack {
		return nil
	}
	var out []Option
	for _, a := range u.Attacks {
		if !u.State.Permits(a.Tier) {
			continue
		}
		if a.Scale == ruleset.ScaleSingle {
			for _, tile := range c.aim.SingleTargets(u.Pos, u.Team, a) {
				foe, _ := c.roster.UnitAt(tile)
				out = append(out, c.option(u, a, targeting.InitialDirection, 0, tile, []*unit.Unit{foe}))
			}
			continue
		}
		turns := 1
		if a.Rotatable {
			turns = 4
		}
		d := targeting.InitialDirection
		for i := 0; i < turns; i++ {
			if foes := c.aim.AreaEnemies(u.Pos, u.Team, a, d); len(foes) > 0 {
				out = append(out, c.option(u, a, d, i, u.Pos, foes))
			}
			d, _ = targeting.Rotate(a, d, targeting.Clockwise)
		}
	}
	return out
}

func (c *Controller) option(u *unit.Unit, a *ruleset.Attack, d grid.Direction, rotations int, target grid.Coord, foes []*unit.Unit) Option {
	o := Option{Attack: a.Name, Tier: a.Tier, Direction: d, Rotations: rotations, Target: target}
	for _, foe := range foes {
		exp := c.resolver.Expected(u, foe, a)
		o.Targets = append(o.Targets, foe.ID)
		o.Expected += exp.MeanDamage
		if exp.Lethal {
			o.Lethal++
		}
	}
	return o
}

// TravelCosts returns the capped cost from unit id's tile to every tile,
// ignoring its budget. Unknown units yield an empty map.
func (c *Controller) TravelCosts(id string) map[grid.Coord]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.roster.Get(id)
	if !ok {
		return map[grid.Coord]int{}
	}
	return c.moves.CostToAll(u.Pos, u.Team)
}
