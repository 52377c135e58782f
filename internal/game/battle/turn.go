package battle

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// CyclesPerSet is the number of cycles in one set.
const CyclesPerSet = 2

func (c *Controller) actingOrder(team unit.Team) []string {
	units := c.roster.ActingOrder(team)
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

// resetSet restores every unit's movement budget and, unless it is charging,
// its attack state.
func (c *Controller) resetSet() {
	for _, u := range c.roster.All() {
		u.MoveBudget = c.rules.MoveBudget(u.Role)
		if u.State != unit.Charging {
			u.State = unit.LittleAttack
			u.Planned = nil
		}
	}
	c.logger.Debug("set opened", zap.Int("set", c.set))
}

// moveBudget is what u may spend this phase; charging units are rooted.
func moveBudget(u *unit.Unit) int {
	if u.State == unit.Charging {
		return 0
	}
	return u.MoveBudget
}

func (c *Controller) enterCheck() {
	c.m.ClearHighlights()
	c.selected = ""
	c.reachable = nil
	c.aiming = nil
	c.direction = grid.East
	c.menu = nil
	if u := c.active(); u != nil {
		c.logger.Debug("unit up",
			zap.String("unit", u.ID),
			zap.Stringer("team", u.Team),
			zap.Int("set", c.set),
			zap.Int("cycle", c.cycle),
		)
	}
}

// enterMove fires a matured charge straight through Attack; otherwise the
// reachable tiles are already highlighted and the phase waits.
func (c *Controller) enterMove(ctx context.Context) {
	u := c.active()
	if u.Planned != nil && u.Planned.Attack.Tier == ruleset.TierHigh &&
		u.State == unit.Charging && c.cycle == CyclesPerSet {
		c.logger.Debug("charge released", zap.String("unit", u.ID), zap.String("attack", u.Planned.Attack.Name))
		c.m.ClearHighlights()
		c.fire(ctx, evMoveDone)
		planned := *u.Planned
		c.execute(ctx, u, planned.Attack, planned.Direction, planned.Target)
	}
}

func (c *Controller) enterAttack() {
	c.m.ClearHighlights()
	c.aiming = nil
	c.direction = grid.East
	u := c.active()
	c.menu = c.buildMenu(u)
	e := unitEvent(EventAttackMenu, u)
	e.Menu = append([]MenuEntry(nil), c.menu...)
	c.emit(e)
}

func (c *Controller) buildMenu(u *unit.Unit) []MenuEntry {
	menu := make([]MenuEntry, 0, len(u.Attacks))
	for _, a := range u.Attacks {
		enabled := u.State.Permits(a.Tier)
		menu = append(menu, MenuEntry{
			Attack:    a.Name,
			Tier:      a.Tier,
			Scale:     a.Scale,
			Enabled:   enabled,
			HasTarget: enabled && c.aim.HasTarget(u.Pos, u.Team, a),
		})
	}
	return menu
}

// enterLoad hands control to the next unit straight away.
func (c *Controller) enterLoad(ctx context.Context) {
	c.m.ClearHighlights()
	if c.ended {
		return
	}
	if !c.advance(ctx) {
		return
	}
	c.fire(ctx, evNext)
}

// advance moves the cursor to the next living unit, switching teams and
// rolling the cycle and set counters as rosters run out.
//
// Postcondition: Returns false if the battle ended while advancing.
func (c *Controller) advance(ctx context.Context) bool {
	for c.cursor++; c.cursor < len(c.order); c.cursor++ {
		if _, ok := c.roster.Get(c.order[c.cursor]); ok {
			return true
		}
	}
	for tries := 0; ; tries++ {
		if tries == 2 {
			c.finish(ctx, 0, true)
			return false
		}
		c.team = c.team.Opponent()
		if c.team == c.firstTeam {
			c.cycle++
			if c.cycle > CyclesPerSet {
				c.cycle = 1
				c.set++
				if c.maxSets > 0 && c.set > c.maxSets {
					c.finish(ctx, 0, true)
					return false
				}
				c.resetSet()
			}
		}
		c.order = c.actingOrder(c.team)
		c.cursor = 0
		c.emit(Event{Kind: EventTeamChanged, Team: c.team})
		c.logger.Debug("team up",
			zap.Stringer("team", c.team),
			zap.Int("set", c.set),
			zap.Int("cycle", c.cycle),
		)
		if len(c.order) > 0 {
			return true
		}
	}
}

// checkWin ends the battle when either side has no units left.
//
// Postcondition: Returns true iff the battle is over.
func (c *Controller) checkWin(ctx context.Context) bool {
	if c.ended {
		return true
	}
	players := c.roster.Count(unit.TeamPlayer)
	enemies := c.roster.Count(unit.TeamEnemy)
	switch {
	case players == 0 && enemies == 0:
		c.finish(ctx, 0, true)
	case enemies == 0:
		c.finish(ctx, unit.TeamPlayer, false)
	case players == 0:
		c.finish(ctx, unit.TeamEnemy, false)
	default:
		return false
	}
	return true
}

// finish moves the machine to Ended exactly once.
func (c *Controller) finish(ctx context.Context, winner unit.Team, draw bool) {
	if c.ended {
		return
	}
	c.ended = true
	c.winner = winner
	c.draw = draw
	c.m.ClearHighlights()
	if err := c.machine.Event(context.WithoutCancel(ctx), evEnd); err != nil {
		c.logger.Error("phase machine refused to end", zap.Error(err))
		c.machine.SetState(PhaseEnded.String())
	}
	c.emit(Event{Kind: EventBattleEnded, Team: winner, Winner: winner, Draw: draw})
	if draw {
		c.logger.Info("battle ended in a draw", zap.Int("set", c.set), zap.Int("cycle", c.cycle))
	} else {
		c.logger.Info("battle ended",
			zap.Stringer("winner", winner),
			zap.Int("set", c.set),
			zap.Int("cycle", c.cycle),
		)
	}
	close(c.done)
}
