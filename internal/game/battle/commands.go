package battle

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/targeting"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// selectUnit implements the two-click pattern of the Check phase: the first
// click on any unit shows its info; a second click on the already selected
// acting unit highlights where it can go and enters Move.
func (c *Controller) selectUnit(ctx context.Context, active *unit.Unit, id string) error {
	if c.phase() != PhaseCheck {
		return invalid("units can only be selected at the start of a turn")
	}
	target, ok := c.roster.Get(id)
	if !ok {
		return invalid("no unit %q on the field", id)
	}
	if c.selected != id || id != active.ID {
		c.selected = id
		c.emit(unitEvent(EventUnitInfo, target))
		return nil
	}

	c.reachable = c.moves.ReachableTiles(active.Pos, active.Team, moveBudget(active))
	tiles := c.movableTiles(active)
	c.m.Highlight(tiles, grid.HighlightMovable)
	e := unitEvent(EventMovableShown, active)
	e.Tiles = tiles
	c.emit(e)
	c.fire(ctx, evConfirm)
	return nil
}

// movableTiles are the reachable tiles u may stop on: its own tile and every
// reachable tile nobody else holds, in row-major order.
func (c *Controller) movableTiles(u *unit.Unit) []grid.Coord {
	out := make([]grid.Coord, 0, len(c.reachable))
	for tile := range c.reachable {
		if other, ok := c.roster.UnitAt(tile); ok && other != u {
			continue
		}
		out = append(out, tile)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func (c *Controller) confirmMove(ctx context.Context, u *unit.Unit, dest grid.Coord) error {
	if c.phase() != PhaseMove {
		return invalid("not in the move phase")
	}
	tile, ok := c.m.At(dest)
	if !ok || tile.Highlight() != grid.HighlightMovable {
		return invalid("%s is not a highlighted destination", dest)
	}
	path, err := c.moves.RouteTo(u.Pos, dest, u.Team, moveBudget(u))
	if err != nil {
		if errors.Is(err, movement.ErrUnreachable) {
			panic(fmt.Sprintf("battle: highlighted tile has no route: %v", err))
		}
		return err
	}
	from := u.Pos
	if err := c.roster.Move(u.ID, dest); err != nil {
		panic(fmt.Sprintf("battle: highlighted tile is occupied: %v", err))
	}
	u.MoveBudget = c.reachable[dest]
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("move.from", from.String()),
		attribute.String("move.to", dest.String()),
		attribute.Int("move.budget_left", u.MoveBudget),
	)
	c.logger.Debug("unit moved",
		zap.String("unit", u.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", dest),
		zap.Int("budget_left", u.MoveBudget),
	)
	e := unitEvent(EventMoved, u)
	e.From, e.To, e.Path = from, dest, path
	c.emit(e)
	c.fire(ctx, evMoveDone)
	return nil
}

func (c *Controller) skipMove(ctx context.Context, _ *unit.Unit) error {
	if c.phase() != PhaseMove {
		return invalid("not in the move phase")
	}
	c.fire(ctx, evMoveDone)
	return nil
}

func (c *Controller) selectAttack(_ context.Context, u *unit.Unit, name string) error {
	if c.phase() != PhaseAttack {
		return invalid("not in the attack phase")
	}
	a, ok := u.Attack(name)
	if !ok {
		return invalid("%s has no attack %q", u.Name, name)
	}
	if !u.State.Permits(a.Tier) {
		return invalid("%s cannot use a %s attack while %s", u.Name, a.Tier, u.State)
	}
	c.aiming = a
	c.direction = targeting.InitialDirection
	c.highlightAim(u, EventAttackSelected)
	return nil
}

func (c *Controller) highlightAim(u *unit.Unit, kind EventKind) {
	c.aim.Highlight(u.Pos, u.Team, c.aiming, c.direction)
	e := unitEvent(kind, u)
	e.Attack = c.aiming.Name
	e.Direction = c.direction
	e.Tiles = tileCoords(c.m.TilesWithHighlight(grid.HighlightAttackable))
	c.emit(e)
}

func (c *Controller) rotate(_ context.Context, u *unit.Unit, r targeting.Rotation) error {
	if c.phase() != PhaseAttack || c.aiming == nil {
		return invalid("no attack is being aimed")
	}
	d, ok := targeting.Rotate(c.aiming, c.direction, r)
	if !ok {
		return invalid("%s cannot be rotated", c.aiming.Name)
	}
	c.direction = d
	c.highlightAim(u, EventRotated)
	return nil
}

func (c *Controller) confirmAttack(ctx context.Context, u *unit.Unit, target grid.Coord) error {
	if c.phase() != PhaseAttack || c.aiming == nil {
		return invalid("no attack is selected")
	}
	a := c.aiming
	switch a.Scale {
	case ruleset.ScaleSingle:
		tile, ok := c.m.At(target)
		if !ok || tile.Highlight() != grid.HighlightAttackable {
			return invalid("%s is not a valid target for %s", target, a.Name)
		}
	case ruleset.ScaleRange:
		if len(c.aim.AreaEnemies(u.Pos, u.Team, a, c.direction)) == 0 {
			return invalid("no enemy inside %s facing %s", a.Name, c.direction)
		}
	}

	if a.Tier == ruleset.TierHigh && u.State == unit.LittleAttack {
		u.State = unit.Charging
		u.Planned = &unit.PlannedAttack{Attack: a, Direction: c.direction, Target: target}
		c.logger.Debug("charge started", zap.String("unit", u.ID), zap.String("attack", a.Name))
		e := unitEvent(EventCharging, u)
		e.Attack = a.Name
		e.Direction = c.direction
		e.To = target
		c.emit(e)
		c.enter(ctx, PhaseAttack)
		return nil
	}
	c.execute(ctx, u, a, c.direction, target)
	return nil
}

func (c *Controller) endUnitTurn(ctx context.Context, _ *unit.Unit) error {
	switch c.phase() {
	case PhaseMove, PhaseAttack:
		c.fire(ctx, evEndTurn)
		return nil
	default:
		return invalid("the turn can only be ended while moving or attacking")
	}
}

// execute resolves a against every enemy it covers, removes the defeated,
// checks for a winner and, if the battle goes on, moves to Load.
//
// Precondition: phase is Attack.
func (c *Controller) execute(ctx context.Context, u *unit.Unit, a *ruleset.Attack, d grid.Direction, target grid.Coord) {
	var defenders []*unit.Unit
	if a.Scale == ruleset.ScaleRange {
		defenders = c.aim.AreaEnemies(u.Pos, u.Team, a, d)
	} else if foe, ok := c.roster.UnitAt(target); ok && foe.Team != u.Team {
		// a charged shot lands only if an enemy still stands in the band
		if dist := u.Pos.Distance(target); dist >= a.RangeMin && dist <= a.RangeMax {
			defenders = []*unit.Unit{foe}
		}
	}

	results := make([]combat.Result, 0, len(defenders))
	for _, foe := range defenders {
		results = append(results, c.resolver.Strike(u, foe, a))
	}

	u.Planned = nil
	if a.Tier == ruleset.TierLow {
		u.State = unit.MiddleAttack
	} else {
		u.State = unit.Movable
	}

	dealt := 0
	for _, r := range results {
		dealt += r.Damage
	}
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("attack.name", a.Name),
		attribute.Int("attack.targets", len(results)),
		attribute.Int("attack.damage", dealt),
	)
	if len(defenders) == 0 {
		c.logger.Debug("attack found no target", zap.String("unit", u.ID), zap.String("attack", a.Name))
	}
	e := unitEvent(EventAttackResolved, u)
	e.Attack = a.Name
	e.Direction = d
	e.To = target
	e.Results = results
	c.emit(e)

	for _, gone := range c.roster.RemoveDefeated() {
		c.logger.Info("unit defeated", zap.String("unit", gone.ID), zap.Stringer("team", gone.Team))
		c.emit(unitEvent(EventUnitDefeated, gone))
	}
	if c.checkWin(ctx) {
		return
	}
	c.fire(ctx, evAttackDone)
}

func tileCoords(tiles []*grid.Tile) []grid.Coord {
	out := make([]grid.Coord, len(tiles))
	for i, t := range tiles {
		out[i] = t.Coord()
	}
	return out
}
