package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"AShareLab/internal/handler/api"
	mid "AShareLab/internal/middleware"
	"AShareLab/internal/scheduler"
	"AShareLab/internal/usecase"
	"AShareLab/pkg/config"
	xhttp "AShareLab/pkg/http"
	applogger "AShareLab/pkg/logger"
	"AShareLab/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg    *config.Config
	logger *applogger.Logger

	resolver *usecase.Resolver
	analyze  *usecase.AnalyzeUseCase
	hotspot  *usecase.HotspotUseCase
	market   *usecase.MarketUseCase
	reports  *usecase.ReportUseCase
	chat     *usecase.ChatUseCase

	pipe  *mid.QuotePipeline
	queue queue.Runner
	sched *scheduler.ReportScheduler

	httpServer *xhttp.Server
}

// New creates the App with all dependencies. pipe and sched may be nil when
// their features are disabled.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	resolver *usecase.Resolver,
	analyze *usecase.AnalyzeUseCase,
	hotspot *usecase.HotspotUseCase,
	market *usecase.MarketUseCase,
	reports *usecase.ReportUseCase,
	chat *usecase.ChatUseCase,
	pipe *mid.QuotePipeline,
	q queue.Runner,
	sched *scheduler.ReportScheduler,
) *App {
	return &App{
		cfg:      cfg,
		logger:   logger,
		resolver: resolver,
		analyze:  analyze,
		hotspot:  hotspot,
		market:   market,
		reports:  reports,
		chat:     chat,
		pipe:     pipe,
		queue:    q,
		sched:    sched,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := xhttp.CompositeHandler{
		api.NewAnalyzeHandler(a.logger, a.resolver, a.analyze),
		api.NewHotspotHandler(a.logger, a.hotspot),
		api.NewMarketHandler(a.logger, a.market),
		api.NewReportHandler(a.logger, a.reports),
		api.NewChatHandler(a.logger, a.chat),
		api.NewLogsHandler(a.logger),
	}

	a.httpServer = xhttp.NewServer(handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORSOrigins(a.cfg.Server.CORSOrigins),
	)

	if err := a.queue.Start(); err != nil {
		return err
	}
	if a.pipe != nil {
		a.pipe.Start(ctx)
		a.logger.Info("quote pipeline started", applogger.Strings("indices", a.cfg.Quotes.Indices))
	}
	if a.sched != nil {
		a.sched.Start()
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.pipe != nil {
		a.pipe.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.queue.Stop(shutdownCtx); err != nil {
		a.logger.Warn("queue stop error", applogger.Error(err))
	}

	if c := a.logger.Collector(); c != nil {
		c.Close()
	}

	a.logger.Info("shutdown complete")
	return nil
}
