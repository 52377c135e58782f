// Package main runs a headless AI-versus-AI battle from a scenario file until
// one side wins, the set limit is reached or the process is interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	scenarioFile := flag.String("scenario", "", "scenario YAML file; overrides content.scenario_file")
	seed := flag.Int64("seed", 0, "randomness seed; overrides battle.seed when non-zero")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *scenarioFile != "" {
		cfg.Content.ScenarioFile = *scenarioFile
	}
	if *seed != 0 {
		cfg.Battle.Seed = *seed
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	app, cleanup, err := initializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("initializing battle", zap.Error(err))
	}
	defer cleanup()

	logger.Info("battle ready",
		zap.String("scenario", cfg.Content.ScenarioFile),
		zap.String("player_domain", cfg.Content.PlayerDomain),
		zap.String("enemy_domain", cfg.Content.EnemyDomain),
		zap.Int("live_battles", app.Engine.Len()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := app.Lifecycle.Run(ctx); err != nil {
		logger.Error("battle aborted", zap.Error(err))
		cleanup()
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}

	r := app.Battle.Result()
	if !r.Ended {
		logger.Info("battle interrupted", zap.Int("set", r.Sets), zap.Int("cycle", r.Cycles))
		return
	}
	if r.Draw {
		logger.Info("draw", zap.Int("sets", r.Sets))
		return
	}
	logger.Info("winner", zap.Stringer("team", r.Winner), zap.Int("sets", r.Sets), zap.Int("cycle", r.Cycles))
}
