package server

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
)

// Result summarizes a finished battle.
type Result struct {
	Ended  bool
	Draw   bool
	Winner unit.Team
	Sets   int
	Cycles int
}

// BattleService runs one controller with its AI agents as a Service. Start
// returns when the battle ends; Stop cancels the agents outright.
type BattleService struct {
	ctl    *battle.Controller
	agents []*ai.Agent
	logger *zap.Logger
	tracer trace.Tracer

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
	result  Result
}

// NewBattleService builds a BattleService.
//
// Precondition: ctl must be non-nil.
func NewBattleService(ctl *battle.Controller, agents []*ai.Agent, logger *zap.Logger, tracer trace.Tracer) *BattleService {
	if ctl == nil {
		panic("server.NewBattleService: controller must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("server")
	}
	return &BattleService{ctl: ctl, agents: agents, logger: logger, tracer: tracer}
}

// Start runs the battle to its end or until Stop is called.
//
// Postcondition: every agent has returned. Returns the first agent failure;
// a stopped battle is not an error.
func (b *BattleService) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.cancel = cancel
	if b.stopped {
		cancel()
	}
	b.mu.Unlock()
	defer cancel()

	ctx, span := b.tracer.Start(ctx, "battle.run", trace.WithAttributes(
		attribute.String("battle.id", b.ctl.ID().String()),
		attribute.Int("battle.agents", len(b.agents)),
	))
	defer span.End()

	errs := make(chan error, len(b.agents))
	for _, a := range b.agents {
		go func(a *ai.Agent) { errs <- a.Run(ctx) }(a)
	}
	b.ctl.Start(ctx)

	var firstErr error
	for range b.agents {
		err := <-errs
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}
		if firstErr == nil {
			firstErr = err
			// one stalled side would leave the other waiting forever
			cancel()
		}
	}
	if len(b.agents) == 0 {
		select {
		case <-b.ctl.Done():
		case <-ctx.Done():
		}
	}

	r := b.summarize()
	span.SetAttributes(
		attribute.Bool("battle.ended", r.Ended),
		attribute.Bool("battle.draw", r.Draw),
		attribute.Int("battle.sets", r.Sets),
	)
	if firstErr != nil {
		span.RecordError(firstErr)
		span.SetStatus(codes.Error, firstErr.Error())
	}
	return firstErr
}

func (b *BattleService) summarize() Result {
	s := b.ctl.Snapshot()
	r := Result{Ended: s.Ended, Draw: s.Draw, Winner: s.Winner, Sets: s.Set, Cycles: s.Cycle}
	b.mu.Lock()
	b.result = r
	b.mu.Unlock()
	switch {
	case !r.Ended:
		b.logger.Info("battle stopped before its end", zap.Int("set", r.Sets), zap.Int("cycle", r.Cycles))
	case r.Draw:
		b.logger.Info("battle result: draw", zap.Int("sets", r.Sets), zap.Int("cycle", r.Cycles))
	default:
		b.logger.Info("battle result",
			zap.Stringer("winner", r.Winner),
			zap.Int("sets", r.Sets),
			zap.Int("cycle", r.Cycles),
		)
	}
	return r
}

// Stop cancels the agents. It is safe to call at any time.
func (b *BattleService) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	if b.cancel != nil {
		b.cancel()
	}
}

// Result returns the summary recorded when Start returned.
func (b *BattleService) Result() Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.result
}
