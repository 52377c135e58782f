// Package battle implements the turn controller: the phase machine that
// decides whose unit acts, what it may do, and when the battle ends.
package battle

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/grid"
	"github.com/cory-johannsen/skirmish/internal/game/movement"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/targeting"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Deps are the collaborators a Controller is built from.
type Deps struct {
	Rules     *ruleset.Rules
	Map       *grid.Map
	Roster    *unit.Roster
	Movement  *movement.Engine
	Targeting *targeting.Engine
	Resolver  *combat.Resolver
	Logger    *zap.Logger
	Tracer    trace.Tracer
	Observer  Observer
	// FirstTeam acts first in every cycle.
	FirstTeam unit.Team
	// MaxSets stops the battle as a draw once exceeded; 0 means unlimited.
	MaxSets int
}

// Assemble builds Deps with the movement, targeting and combat engines wired
// to one map and roster.
//
// Precondition: rules, m, roster and src must be non-nil.
func Assemble(rules *ruleset.Rules, m *grid.Map, roster *unit.Roster, src dice.Source, costCeiling int, logger *zap.Logger) Deps {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Deps{
		Rules:     rules,
		Map:       m,
		Roster:    roster,
		Movement:  movement.NewEngine(m, roster, costCeiling, logger.Named("movement")),
		Targeting: targeting.NewEngine(m, roster, logger.Named("targeting")),
		Resolver:  combat.NewResolver(rules, m, src, logger.Named("combat")),
		Logger:    logger,
	}
}

// Controller runs one battle. All methods are safe for concurrent use; every
// command runs to completion, including any automatic phase advances, before
// the next command is accepted.
type Controller struct {
	mu sync.Mutex

	id        uuid.UUID
	rules     *ruleset.Rules
	m         *grid.Map
	roster    *unit.Roster
	moves     *movement.Engine
	aim       *targeting.Engine
	resolver  *combat.Resolver
	logger    *zap.Logger
	tracer    trace.Tracer
	observer  Observer
	machine   *fsm.FSM
	firstTeam unit.Team
	maxSets   int

	started bool
	team    unit.Team
	order   []string
	cursor  int
	set     int
	cycle   int

	// selected is the unit chosen by the first click of the Check phase.
	selected  string
	reachable map[grid.Coord]int
	// aiming is the attack being oriented in the Attack phase.
	aiming    *ruleset.Attack
	direction grid.Direction
	menu      []MenuEntry

	ended  bool
	winner unit.Team
	draw   bool

	pending []Event
	changed chan struct{}
	done    chan struct{}
}

// NewController builds a Controller that has not started yet.
//
// Precondition: Rules, Map, Roster, Movement, Targeting and Resolver must be non-nil.
// Postcondition: Returns a Controller in PhaseCheck, or an error naming the missing dependency.
func NewController(d Deps) (*Controller, error) {
	switch {
	case d.Rules == nil:
		return nil, fmt.Errorf("battle.NewController: rules must not be nil")
	case d.Map == nil:
		return nil, fmt.Errorf("battle.NewController: map must not be nil")
	case d.Roster == nil:
		return nil, fmt.Errorf("battle.NewController: roster must not be nil")
	case d.Movement == nil || d.Targeting == nil || d.Resolver == nil:
		return nil, fmt.Errorf("battle.NewController: movement, targeting and resolver must not be nil")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := d.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("battle")
	}
	observer := d.Observer
	if observer == nil {
		observer = func(Event) {}
	}
	id := uuid.New()
	logger = logger.With(zap.String("battle", id.String()))
	return &Controller{
		id:        id,
		rules:     d.Rules,
		m:         d.Map,
		roster:    d.Roster,
		moves:     d.Movement,
		aim:       d.Targeting,
		resolver:  d.Resolver,
		logger:    logger,
		tracer:    tracer,
		observer:  observer,
		machine:   newMachine(logger),
		firstTeam: d.FirstTeam,
		maxSets:   d.MaxSets,
		team:      d.FirstTeam,
		set:       1,
		cycle:     1,
		changed:   make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// ID returns the battle's identifier.
func (c *Controller) ID() uuid.UUID { return c.id }

// Start opens set 1, cycle 1 and enters Check for the first unit of the first team.
// Calling Start twice has no further effect.
func (c *Controller) Start(ctx context.Context) {
	c.locked(func() {
		if c.started {
			return
		}
		c.started = true
		c.logger.Info("battle started",
			zap.Stringer("first_team", c.firstTeam),
			zap.Int("players", c.roster.Count(unit.TeamPlayer)),
			zap.Int("enemies", c.roster.Count(unit.TeamEnemy)),
		)
		c.resetSet()
		if !c.checkWin(ctx) {
			c.order = c.actingOrder(c.team)
			c.cursor = 0
			c.enter(ctx, PhaseCheck)
		}
	})
}

// Done returns a channel closed when the battle ends.
func (c *Controller) Done() <-chan struct{} { return c.done }

// Changed returns a channel closed at the next state change.
func (c *Controller) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// Winner returns the winning team once the battle has ended.
//
// Postcondition: ok is false while the battle runs or when it ended in a draw.
func (c *Controller) Winner() (team unit.Team, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.winner, c.ended && !c.draw
}

// Input returns the command handle for team.
func (c *Controller) Input(team unit.Team) *Input {
	return &Input{c: c, team: team}
}

func (c *Controller) phase() Phase {
	return parsePhase(c.machine.Current())
}

// active returns the acting unit, or nil when none is in play.
func (c *Controller) active() *unit.Unit {
	if c.cursor < 0 || c.cursor >= len(c.order) {
		return nil
	}
	u, ok := c.roster.Get(c.order[c.cursor])
	if !ok {
		return nil
	}
	return u
}

func (c *Controller) emit(e Event) {
	e.Phase = c.phase()
	e.Set = c.set
	e.Cycle = c.cycle
	c.pending = append(c.pending, e)
}

func unitEvent(kind EventKind, u *unit.Unit) Event {
	cp := u.Clone()
	return Event{Kind: kind, UnitID: u.ID, Unit: &cp, Team: u.Team}
}

// locked runs fn under c.mu, then signals waiters and delivers the events fn
// emitted. The lock is released on every path, including a panic in fn.
func (c *Controller) locked(fn func()) {
	var events []Event
	func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		defer func() { events = c.drainLocked() }()
		fn()
	}()
	for _, e := range events {
		c.observer(e)
	}
}

// drainLocked takes the pending events and wakes Changed waiters if there are any.
func (c *Controller) drainLocked() []Event {
	events := c.pending
	c.pending = nil
	if len(events) > 0 {
		close(c.changed)
		c.changed = make(chan struct{})
	}
	return events
}

// fire sends ev to the phase machine and runs the entry action of the new phase.
// The machine ignores cancellation of ctx: once a command is accepted its
// transitions complete. An illegal transition is a controller bug and panics.
func (c *Controller) fire(ctx context.Context, ev string) {
	if err := c.machine.Event(context.WithoutCancel(ctx), ev); err != nil {
		panic(fmt.Sprintf("battle: event %q from phase %s: %v", ev, c.phase(), err))
	}
	c.enter(ctx, c.phase())
}

// enter runs the entry action of p.
func (c *Controller) enter(ctx context.Context, p Phase) {
	c.emit(Event{Kind: EventPhaseEntered, Team: c.team})
	switch p {
	case PhaseCheck:
		c.enterCheck()
	case PhaseMove:
		c.enterMove(ctx)
	case PhaseAttack:
		c.enterAttack()
	case PhaseLoad:
		c.enterLoad(ctx)
	case PhaseEnded:
	}
}

// command runs fn for team under the lock, inside a span, after the input gates.
// A command on an already cancelled ctx is refused with ctx.Err() and changes nothing.
func (c *Controller) command(ctx context.Context, team unit.Team, name string, fn func(ctx context.Context, u *unit.Unit) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := c.tracer.Start(ctx, "battle."+name, trace.WithAttributes(
		attribute.String("battle.id", c.id.String()),
		attribute.String("battle.team", team.String()),
	))
	defer span.End()

	var err error
	c.locked(func() {
		if err = c.gate(team); err != nil {
			return
		}
		u := c.active()
		if u == nil {
			err = invalid("no unit is acting")
			return
		}
		span.SetAttributes(attribute.String("battle.unit", u.ID))
		err = fn(ctx, u)
	})
	if err != nil {
		c.logger.Debug("command rejected",
			zap.String("command", name),
			zap.Stringer("team", team),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Controller) gate(team unit.Team) error {
	switch {
	case c.ended:
		return ErrBattleEnded
	case !c.started:
		return invalid("battle has not started")
	case team != c.team:
		return fmt.Errorf("%w: %s is not acting", ErrInputLocked, team)
	}
	return nil
}
