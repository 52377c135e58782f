package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/battle"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/ruleset"
	"github.com/cory-johannsen/skirmish/internal/game/scenario"
	"github.com/cory-johannsen/skirmish/internal/game/unit"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
	"github.com/cory-johannsen/skirmish/internal/server"
)

// App is everything main needs to run one headless battle.
type App struct {
	Lifecycle *server.Lifecycle
	Battle    *server.BattleService
	Engine    *battle.Engine
}

func newApp(lc *server.Lifecycle, svc *server.BattleService, engine *battle.Engine) *App {
	return &App{Lifecycle: lc, Battle: svc, Engine: engine}
}

func provideTracer(ctx context.Context, cfg config.Config, logger *zap.Logger) (trace.Tracer, func(), error) {
	shutdown, err := observability.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up tracing: %w", err)
	}
	cleanup := func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown", zap.Error(err))
		}
	}
	return observability.Tracer("battle"), cleanup, nil
}

func provideSource(cfg config.Config) dice.Source {
	return dice.NewSource(cfg.Battle.Seed)
}

// provideRoller wraps the battle's Source so combat, AI and script rolls are all logged.
func provideRoller(src dice.Source, logger *zap.Logger) *dice.Roller {
	return dice.NewLoggedRoller(src, observability.Component(logger, "dice"))
}

func provideRules(cfg config.Config, logger *zap.Logger) (*ruleset.Rules, error) {
	rules, err := ruleset.LoadFromFile(cfg.Content.RulesFile)
	if err != nil {
		return nil, err
	}
	logger.Info("rules loaded",
		zap.String("file", cfg.Content.RulesFile),
		zap.Int("attacks", len(rules.Attacks())),
	)
	return rules, nil
}

func provideScenario(cfg config.Config, logger *zap.Logger) (*scenario.Scenario, error) {
	sc, err := scenario.LoadFromFile(cfg.Content.ScenarioFile)
	if err != nil {
		return nil, err
	}
	logger.Info("scenario loaded",
		zap.String("scenario", sc.ID),
		zap.Int("width", sc.Width),
		zap.Int("height", sc.Height),
		zap.Int("units", len(sc.Units)),
	)
	return sc, nil
}

func provideEngine() *battle.Engine {
	return battle.NewEngine()
}

func provideController(cfg config.Config, engine *battle.Engine, rules *ruleset.Rules, sc *scenario.Scenario, roller *dice.Roller, logger *zap.Logger, tracer trace.Tracer) (*battle.Controller, error) {
	m, roster, err := sc.Build(rules, logger)
	if err != nil {
		return nil, err
	}
	d := battle.Assemble(rules, m, roster, roller, cfg.Battle.CostCeiling, observability.Component(logger, "battle"))
	d.Tracer = tracer
	d.FirstTeam = sc.FirstTeam
	d.MaxSets = cfg.Battle.MaxSets
	if sc.MaxSets > 0 {
		d.MaxSets = sc.MaxSets
	}
	return engine.Open(d)
}

func provideScripts(cfg config.Config, roller *dice.Roller, logger *zap.Logger, ctl *battle.Controller) (*scripting.Manager, func(), error) {
	mgr := scripting.NewManager(roller, observability.Component(logger, "scripting"))
	if dir := cfg.Content.AIScriptDir; dir != "" {
		if err := mgr.LoadGlobal(dir, 0); err != nil {
			mgr.Close()
			return nil, nil, err
		}
	}
	ai.BindScripts(mgr, ctl)
	return mgr, mgr.Close, nil
}

func provideRegistry(cfg config.Config, mgr *scripting.Manager) (*ai.Registry, error) {
	domains, err := ai.LoadDomains(cfg.Content.AIDir)
	if err != nil {
		return nil, err
	}
	return ai.NewRegistryFromDomains(domains, mgr, scripting.GlobalSet)
}

func provideAgents(cfg config.Config, ctl *battle.Controller, reg *ai.Registry, roller *dice.Roller, logger *zap.Logger) ([]*ai.Agent, error) {
	agentCfg := ai.Config{
		DelayMin:           cfg.Battle.AIDelayMin,
		DelayMax:           cfg.Battle.AIDelayMax,
		RandomTargetChance: cfg.Battle.RandomTargetChance,
	}
	var agents []*ai.Agent
	for _, side := range []struct {
		team   unit.Team
		domain string
	}{
		{unit.TeamPlayer, cfg.Content.PlayerDomain},
		{unit.TeamEnemy, cfg.Content.EnemyDomain},
	} {
		planner, ok := reg.PlannerFor(side.domain)
		if !ok {
			return nil, fmt.Errorf("no AI domain %q for team %s (have %v)", side.domain, side.team, reg.Domains())
		}
		agents = append(agents, ai.NewAgent(ctl, side.team, planner, roller, agentCfg, observability.Component(logger, "ai")))
	}
	return agents, nil
}

func provideBattleService(ctl *battle.Controller, agents []*ai.Agent, logger *zap.Logger, tracer trace.Tracer) *server.BattleService {
	return server.NewBattleService(ctl, agents, observability.Component(logger, "server"), tracer)
}

func provideLifecycle(logger *zap.Logger, svc *server.BattleService) *server.Lifecycle {
	lc := server.NewLifecycle(observability.Component(logger, "lifecycle"))
	lc.Add("battle", svc)
	return lc
}
