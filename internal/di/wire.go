//go:build wireinject
// +build wireinject

package di

import (
	"AShareLab/pkg/config"
	"AShareLab/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Cache stack
		ProvideCache,
		ProvideKeeper,

		// Upstream clients
		ProvideMarketData,
		ProvideNewsSource,
		ProvideNarrator,
		ProvideQuotePipeline,

		// Use cases
		ProvideResolver,
		ProvideNarrativeUseCase,
		ProvideAnalyzeUseCase,
		ProvideHotspotUseCase,
		ProvideMarketUseCase,
		ProvideReportStore,
		ProvideQueue,
		ProvideReportUseCase,
		ProvideChatUseCase,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
