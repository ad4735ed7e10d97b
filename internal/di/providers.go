package di

import (
	"fmt"
	"strconv"
	"strings"

	"AShareLab/internal/domain/repository"
	mid "AShareLab/internal/middleware"
	internalrepo "AShareLab/internal/repository"
	"AShareLab/internal/scheduler"
	"AShareLab/internal/service/datacache"
	"AShareLab/internal/service/eastmoney"
	"AShareLab/internal/service/forecast"
	"AShareLab/internal/service/ollama"
	"AShareLab/internal/service/quotes"
	"AShareLab/internal/service/tushare"
	"AShareLab/internal/usecase"
	"AShareLab/pkg/cache"
	"AShareLab/pkg/config"
	"AShareLab/pkg/logger"
	"AShareLab/pkg/metrics"
	"AShareLab/pkg/queue"
	"AShareLab/pkg/server"
)

// ProvideLogger creates the application logger with the in-memory collector
// attached so /api/logs/stream can replay recent entries.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	l.AttachCollector(logger.NewLogCollector(200))
	return l, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache builds the cache stack: L1 memory over Redis when configured,
// over the file store otherwise. With neither, memory alone.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Redis.Enabled {
		host, port := splitAddr(cfg.Cache.Redis.Addr)
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(host),
			cache.WithRedisPort(port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix("asharelab"),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MaxSize)), nil
	}
	if cfg.Cache.Dir != "" {
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("file cache: %w", err)
		}
		return cache.NewLayeredCache(fc, cache.WithLayeredMemorySize(cfg.Cache.MaxSize)), nil
	}
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MaxSize)), nil
}

func splitAddr(addr string) (string, int) {
	host, portStr, ok := strings.Cut(addr, ":")
	if !ok {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// ProvideKeeper creates the fetch cache with per-category TTLs.
func ProvideKeeper(store cache.Service, cfg *config.Config, m repository.Metrics) *datacache.Keeper {
	return datacache.New(store, cfg.CategoryTTL, m)
}

// ProvideMarketData creates the TuShare client with its per-minute quota.
func ProvideMarketData(cfg *config.Config, m repository.Metrics) repository.MarketData {
	return tushare.New(cfg.TuShare.Token, cfg.TuShare.BaseURL, cfg.TuShare.Timeout,
		tushare.WithQuota(cfg.TuShare.CallsPerMin, cfg.TuShare.QuotaWait),
		tushare.WithMetrics(m),
	)
}

// ProvideNewsSource creates the Eastmoney news scraper.
func ProvideNewsSource(cfg *config.Config) repository.NewsSource {
	opts := []eastmoney.Option{eastmoney.WithMaxItems(cfg.News.MaxItems)}
	if cfg.News.BaseURL != "" {
		opts = append(opts, eastmoney.WithBaseURL(cfg.News.BaseURL))
	}
	return eastmoney.New(cfg.News.Timeout, opts...)
}

// ProvideNarrator creates the Ollama client, or nil when no model is
// configured so narratives fall back to templates.
func ProvideNarrator(cfg *config.Config) repository.Narrator {
	if cfg.Ollama.Model == "" {
		return nil
	}
	return ollama.New(cfg.Ollama.URL, cfg.Ollama.Model, cfg.Ollama.Timeout,
		ollama.WithNumPredict(cfg.Ollama.NumPredict))
}

// ProvideResolver creates the symbol resolver.
func ProvideResolver(cfg *config.Config, l *logger.Logger) *usecase.Resolver {
	path := cfg.Resolver.SymbolMapPath
	if path == "" {
		path = "data/symbol_map.json"
	}
	return usecase.NewResolver(path, l)
}

// ProvideNarrativeUseCase wires narrative generation with fallback.
func ProvideNarrativeUseCase(n repository.Narrator, m repository.Metrics, l *logger.Logger) *usecase.NarrativeUseCase {
	return usecase.NewNarrativeUseCase(n, m, l)
}

// ProvideQuotePipeline builds the realtime index quote pipeline, or nil when
// the feed is disabled.
func ProvideQuotePipeline(cfg *config.Config, m repository.Metrics, l *logger.Logger) *mid.QuotePipeline {
	if !cfg.Quotes.Enabled || cfg.Quotes.WebSocketURL == "" {
		return nil
	}
	stream := quotes.New(cfg.Quotes.WebSocketURL, cfg.Quotes.Indices,
		cfg.Quotes.ReconnectDelay, cfg.Quotes.PingInterval)
	return mid.NewQuotePipeline(stream, m, l, mid.WithMaxRPS(5))
}

// ProvideAnalyzeUseCase wires the single-stock pipeline.
func ProvideAnalyzeUseCase(
	resolver *usecase.Resolver,
	market repository.MarketData,
	news repository.NewsSource,
	narr *usecase.NarrativeUseCase,
	keeper *datacache.Keeper,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.AnalyzeUseCase {
	var opts []usecase.AnalyzeOption
	if cfg.Forecast.Enabled && cfg.Forecast.URL != "" {
		fc := forecast.New(cfg.Forecast.URL, cfg.Forecast.Timeout)
		opts = append(opts, usecase.WithForecaster(fc, cfg.Forecast.Horizon))
	}
	return usecase.NewAnalyzeUseCase(resolver, market, news, narr, keeper, m, l, opts...)
}

// ProvideHotspotUseCase wires the hotspot pipeline.
func ProvideHotspotUseCase(
	market repository.MarketData,
	news repository.NewsSource,
	narr *usecase.NarrativeUseCase,
	keeper *datacache.Keeper,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.HotspotUseCase {
	return usecase.NewHotspotUseCase(market, news, narr, keeper, m, l)
}

// ProvideMarketUseCase wires the market overview pipeline.
func ProvideMarketUseCase(
	market repository.MarketData,
	news repository.NewsSource,
	pipe *mid.QuotePipeline,
	keeper *datacache.Keeper,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.MarketUseCase {
	return usecase.NewMarketUseCase(market, news, pipe, keeper, m, l, cfg.Quotes.Indices)
}

// ProvideReportStore creates the file-backed report store.
func ProvideReportStore(cfg *config.Config) (repository.ReportStore, error) {
	return internalrepo.NewFileReportStore(cfg.Reports.Dir)
}

// ProvideQueue creates the report task queue: Redis-backed when Redis is
// configured, in-process otherwise.
func ProvideQueue(cfg *config.Config, l *logger.Logger) (queue.Runner, error) {
	qcfg := &queue.QueueConfig{Workers: cfg.Reports.Workers, QueueSize: 50, RetryLimit: 1}
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisClient(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("redis queue: %w", err)
		}
		return queue.NewRedisQueue(l, qcfg, rc, queue.ModeProducerConsumer,
			queue.WithKeyPrefix("asharelab:queue")), nil
	}
	return queue.NewMemoryQueue(l, qcfg), nil
}

// ProvideReportUseCase wires report generation and registers its queue job.
func ProvideReportUseCase(
	market *usecase.MarketUseCase,
	narr *usecase.NarrativeUseCase,
	store repository.ReportStore,
	q queue.Runner,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.ReportUseCase {
	uc := usecase.NewReportUseCase(market, narr, store, q, m, l)
	q.RegisterJob(usecase.NewReportJob(uc))
	return uc
}

// ProvideChatUseCase wires the chat path.
func ProvideChatUseCase(n repository.Narrator, m repository.Metrics, l *logger.Logger) *usecase.ChatUseCase {
	return usecase.NewChatUseCase(n, m, l)
}

// ProvideScheduler builds the report cron scheduler (nil when disabled).
func ProvideScheduler(cfg *config.Config, reports *usecase.ReportUseCase, l *logger.Logger) (*scheduler.ReportScheduler, error) {
	return scheduler.New(cfg, reports, l)
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	resolver *usecase.Resolver,
	analyze *usecase.AnalyzeUseCase,
	hotspot *usecase.HotspotUseCase,
	market *usecase.MarketUseCase,
	reports *usecase.ReportUseCase,
	chat *usecase.ChatUseCase,
	pipe *mid.QuotePipeline,
	q queue.Runner,
	sched *scheduler.ReportScheduler,
) *server.App {
	return server.New(cfg, l, resolver, analyze, hotspot, market, reports, chat, pipe, q, sched)
}
