package battle

import (
	"context"

	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/targeting"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Input issues commands on behalf of one team. Humans and AI agents use the
// same handle; commands from the team that is not acting fail with ErrInputLocked.
//
// Every command returns once the resulting state change, including any
// automatic phase advances, is complete.
type Input struct {
	c    *Controller
	team unit.Team
}

// Team returns the team this handle speaks for.
func (in *Input) Team() unit.Team { return in.team }

// SelectUnit clicks the unit with the given ID.
func (in *Input) SelectUnit(ctx context.Context, id string) error {
	return in.c.command(ctx, in.team, "select_unit", func(ctx context.Context, u *unit.Unit) error {
		return in.c.selectUnit(ctx, u, id)
	})
}

// ConfirmMove walks the acting unit to dest, which must be highlighted movable.
func (in *Input) ConfirmMove(ctx context.Context, dest grid.Coord) error {
	return in.c.command(ctx, in.team, "confirm_move", func(ctx context.Context, u *unit.Unit) error {
		return in.c.confirmMove(ctx, u, dest)
	})
}

// SkipMove keeps the acting unit where it stands.
func (in *Input) SkipMove(ctx context.Context) error {
	return in.c.command(ctx, in.team, "skip_move", in.c.skipMove)
}

// SelectAttack picks the acting unit's attack by name and highlights its targets.
func (in *Input) SelectAttack(ctx context.Context, name string) error {
	return in.c.command(ctx, in.team, "select_attack", func(ctx context.Context, u *unit.Unit) error {
		return in.c.selectAttack(ctx, u, name)
	})
}

// Rotate turns the selected area attack.
func (in *Input) Rotate(ctx context.Context, r targeting.Rotation) error {
	return in.c.command(ctx, in.team, "rotate", func(ctx context.Context, u *unit.Unit) error {
		return in.c.rotate(ctx, u, r)
	})
}

// ConfirmAttack commits the selected attack. target is the clicked enemy
// tile for single attacks and is ignored for area attacks.
func (in *Input) ConfirmAttack(ctx context.Context, target grid.Coord) error {
	return in.c.command(ctx, in.team, "confirm_attack", func(ctx context.Context, u *unit.Unit) error {
		return in.c.confirmAttack(ctx, u, target)
	})
}

// EndUnitTurn finishes the acting unit's turn without attacking.
func (in *Input) EndUnitTurn(ctx context.Context) error {
	return in.c.command(ctx, in.team, "end_unit_turn", in.c.endUnitTurn)
}
