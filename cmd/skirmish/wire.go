//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
)

var providerSet = wire.NewSet(
	provideTracer,
	provideSource,
	provideRoller,
	provideRules,
	provideScenario,
	provideEngine,
	provideController,
	provideScripts,
	provideRegistry,
	provideAgents,
	provideBattleService,
	provideLifecycle,
	newApp,
)

func initializeApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(providerSet)
	return nil, nil, nil
}
