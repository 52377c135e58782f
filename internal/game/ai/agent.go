package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/targeting"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// lethalWeight makes defeating a target outrank any amount of raw damage.
const lethalWeight = 1000

// Config tunes an Agent.
type Config struct {
	// DelayMin and DelayMax bound the pause before each action. Both zero
	// disables pacing.
	DelayMin time.Duration
	DelayMax time.Duration
	// RandomTargetChance is the probability that a weighted choice picks a
	// uniformly random option instead of the best one.
	RandomTargetChance float64
}

// Agent plays one team through the same Input a human would use.
type Agent struct {
	ctl     *battle.Controller
	in      *battle.Input
	team    unit.Team
	planner *Planner
	src     dice.Source
	cfg     Config
	logger  *zap.Logger
}

// NewAgent builds an Agent for team. A nil planner always attacks with the
// weighted policy when it can.
//
// Precondition: ctl and src must be non-nil.
func NewAgent(ctl *battle.Controller, team unit.Team, planner *Planner, src dice.Source, cfg Config, logger *zap.Logger) *Agent {
	if ctl == nil {
		panic("ai.NewAgent: controller must not be nil")
	}
	if src == nil {
		panic("ai.NewAgent: source must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		ctl:     ctl,
		in:      ctl.Input(team),
		team:    team,
		planner: planner,
		src:     src,
		cfg:     cfg,
		logger:  logger.With(zap.Stringer("team", team)),
	}
}

// Team returns the side the agent plays.
func (a *Agent) Team() unit.Team { return a.team }

// Run acts whenever it is the agent's turn and sleeps on the controller's
// change channel otherwise.
//
// Postcondition: Returns nil once the battle ends, ctx.Err() on cancellation,
// or the first unexpected command error.
func (a *Agent) Run(ctx context.Context) error {
	for {
		changed := a.ctl.Changed()
		s := a.ctl.Snapshot()
		if s.Ended {
			return nil
		}
		if s.Team == a.team && s.Active != nil {
			if err := a.pace(ctx); err != nil {
				if errors.Is(err, battle.ErrBattleEnded) {
					return nil
				}
				return err
			}
			err := a.step(ctx, s)
			switch {
			case err == nil, errors.Is(err, battle.ErrInputLocked):
			case errors.Is(err, battle.ErrBattleEnded):
				return nil
			default:
				return fmt.Errorf("ai agent %s: %w", a.team, err)
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.ctl.Done():
			return nil
		case <-changed:
		}
	}
}

// step issues the commands for the phase shown in s.
func (a *Agent) step(ctx context.Context, s battle.Snapshot) error {
	u := s.Active
	switch s.Phase {
	case battle.PhaseCheck:
		if s.Selected != u.ID {
			if err := a.in.SelectUnit(ctx, u.ID); err != nil {
				return err
			}
		}
		return a.in.SelectUnit(ctx, u.ID)
	case battle.PhaseMove:
		dest := a.destination(s)
		if dest == u.Pos {
			return a.in.SkipMove(ctx)
		}
		a.logger.Debug("ai move", zap.String("unit", u.ID), zap.Stringer("to", dest))
		return a.in.ConfirmMove(ctx, dest)
	case battle.PhaseAttack:
		return a.attack(ctx, s)
	default:
		return nil
	}
}

// destination picks the movable tile closest to any enemy. Ties go to the
// cheaper tile, then to the first in row-major order.
func (a *Agent) destination(s battle.Snapshot) grid.Coord {
	u := s.Active
	enemies := s.Enemies(a.team)
	if len(enemies) == 0 || len(s.Movable) == 0 {
		return u.Pos
	}
	costs := a.ctl.TravelCosts(u.ID)
	nearest := func(c grid.Coord) int {
		best := -1
		for _, e := range enemies {
			if d := c.Distance(e.Pos); best < 0 || d < best {
				best = d
			}
		}
		return best
	}
	best := s.Movable[0]
	bestDist, bestCost := nearest(best), costs[best]
	for _, tile := range s.Movable[1:] {
		d, cost := nearest(tile), costs[tile]
		if d < bestDist || (d == bestDist && cost < bestCost) {
			best, bestDist, bestCost = tile, d, cost
		}
	}
	return best
}

// attack plans, picks an option and drives the attack commands, or ends the
// unit's turn when nothing can be hit.
func (a *Agent) attack(ctx context.Context, s battle.Snapshot) error {
	opts := a.ctl.AttackOptions()
	if len(opts) == 0 {
		a.logger.Debug("ai ends turn, no target", zap.String("unit", s.Active.ID))
		return a.in.EndUnitTurn(ctx)
	}
	action := a.decide(s, opts)
	if action.Action == ActionEndTurn {
		a.logger.Debug("ai holds", zap.String("unit", s.Active.ID))
		return a.in.EndUnitTurn(ctx)
	}
	o := a.choose(opts, action.Target)
	a.logger.Debug("ai attack",
		zap.String("unit", s.Active.ID),
		zap.String("attack", o.Attack),
		zap.Strings("targets", o.Targets),
		zap.Float64("expected", o.Expected),
	)
	if err := a.in.SelectAttack(ctx, o.Attack); err != nil {
		return err
	}
	for i := 0; i < o.Rotations; i++ {
		if err := a.in.Rotate(ctx, targeting.Clockwise); err != nil {
			return err
		}
	}
	return a.in.ConfirmAttack(ctx, o.Target)
}

// decide returns the first primitive action of the plan, defaulting to a
// weighted attack when there is no planner or the plan is empty.
func (a *Agent) decide(s battle.Snapshot, opts []battle.Option) PlannedAction {
	fallback := PlannedAction{Action: ActionAttack, Target: TargetWeighted}
	if a.planner == nil {
		return fallback
	}
	plan, err := a.planner.Plan(BuildWorldState(s, opts))
	if err != nil {
		a.logger.Warn("planning failed", zap.String("domain", a.planner.Domain()), zap.Error(err))
		return fallback
	}
	if len(plan) == 0 {
		return fallback
	}
	return plan[0]
}

// choose selects one option according to policy, which is a target policy
// or the UID of a preferred target.
//
// Precondition: len(opts) > 0.
func (a *Agent) choose(opts []battle.Option, policy string) battle.Option {
	switch policy {
	case TargetRandom:
		return opts[a.src.Intn(len(opts))]
	case TargetBest, "":
		return best(opts)
	case TargetWeighted:
		if a.cfg.RandomTargetChance > 0 && dice.Fraction(a.src, 0, 1) < a.cfg.RandomTargetChance {
			return opts[a.src.Intn(len(opts))]
		}
		return best(opts)
	}
	var hitting []battle.Option
	for _, o := range opts {
		for _, id := range o.Targets {
			if id == policy {
				hitting = append(hitting, o)
				break
			}
		}
	}
	if len(hitting) == 0 {
		return best(opts)
	}
	return best(hitting)
}

func score(o battle.Option) float64 {
	return o.Expected + lethalWeight*float64(o.Lethal)
}

// best returns the highest scoring option; the first wins ties.
func best(opts []battle.Option) battle.Option {
	top := opts[0]
	for _, o := range opts[1:] {
		if score(o) > score(top) {
			top = o
		}
	}
	return top
}

// pace waits a uniform delay in [DelayMin, DelayMax].
//
// Postcondition: Returns ctx.Err() on cancellation and battle.ErrBattleEnded
// if the battle ends while waiting.
func (a *Agent) pace(ctx context.Context) error {
	if a.cfg.DelayMax <= 0 {
		return nil
	}
	d := a.cfg.DelayMin
	if span := a.cfg.DelayMax - a.cfg.DelayMin; span > 0 {
		d += time.Duration(a.src.Intn(int(span) + 1))
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.ctl.Done():
		return battle.ErrBattleEnded
	case <-timer.C:
		return nil
	}
}
