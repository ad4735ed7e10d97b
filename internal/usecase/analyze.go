package usecase

import (
	"context"
	"sync"
	"time"

	"AShareLab/internal/domain/models"
	domrepo "AShareLab/internal/domain/repository"
	"AShareLab/internal/service/datacache"
	"AShareLab/internal/service/stream"
	"AShareLab/internal/services/analytics"
	"AShareLab/pkg/logger"
	"AShareLab/pkg/util"
)

// AnalyzeUseCase runs the full single-stock pipeline: resolve, fetch all
// sources in parallel through the cache, compute indicators and scores, then
// attach a narrative. Partial source failure degrades the snapshot; only an
// unresolved entity or an empty price series aborts the run.
type AnalyzeUseCase struct {
	resolver *Resolver
	market   domrepo.MarketData
	news     domrepo.NewsSource
	fc       domrepo.Forecaster // nil when the sidecar is disabled
	narr     *NarrativeUseCase
	keeper   *datacache.Keeper
	metrics  domrepo.Metrics
	log      *logger.Logger

	timeout      time.Duration
	priceDays    int
	newsDays     int
	forecastHrzn string
}

// AnalyzeOption configures AnalyzeUseCase.
type AnalyzeOption func(*AnalyzeUseCase)

// WithTimeout bounds one pipeline run.
func WithTimeout(d time.Duration) AnalyzeOption {
	return func(uc *AnalyzeUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithForecaster enables the optional forecast stage.
func WithForecaster(fc domrepo.Forecaster, horizon string) AnalyzeOption {
	return func(uc *AnalyzeUseCase) {
		uc.fc = fc
		if horizon != "" {
			uc.forecastHrzn = horizon
		}
	}
}

// NewAnalyzeUseCase wires the pipeline dependencies.
func NewAnalyzeUseCase(
	resolver *Resolver,
	market domrepo.MarketData,
	news domrepo.NewsSource,
	narr *NarrativeUseCase,
	keeper *datacache.Keeper,
	metrics domrepo.Metrics,
	log *logger.Logger,
	opts ...AnalyzeOption,
) *AnalyzeUseCase {
	uc := &AnalyzeUseCase{
		resolver:     resolver,
		market:       market,
		news:         news,
		narr:         narr,
		keeper:       keeper,
		metrics:      metrics,
		log:          log,
		timeout:      60 * time.Second,
		priceDays:    400,
		newsDays:     7,
		forecastHrzn: "5d",
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Analyze runs the pipeline for one keyword. Progress goes to rep step by
// step; pass stream.Nop{} for plain request/response calls.
func (uc *AnalyzeUseCase) Analyze(ctx context.Context, keyword string, force bool, rep stream.Reporter) (*models.AggregatedSnapshot, error) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	rep.Step("resolve:start", map[string]any{"keyword": keyword})
	base, err := uc.resolver.Resolve(ctx, keyword)
	if err != nil {
		uc.metrics.RecordError("resolve")
		return nil, err
	}
	rep.Step("resolve:done", map[string]any{"ts_code": base.TSCode, "name": base.Name})

	snap := &models.AggregatedSnapshot{
		Base:        *base,
		GeneratedAt: time.Now(),
		Sources:     map[string]models.SourceResult{},
	}

	start := util.DateYYYYMMDD(uc.priceDays)
	end := util.DateYYYYMMDD(0)

	rep.Step("fetch:parallel:start", nil)

	type item struct {
		name string
		val  any
		err  error
	}
	ch := make(chan item, 6)
	var wg sync.WaitGroup

	run := func(name string, fn func(context.Context) (any, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := fn(ctx)
			ch <- item{name, v, err}
		}()
	}

	run("price", func(ctx context.Context) (any, error) {
		sig := datacache.Signature{Entity: base.TSCode, Category: "prices", Start: start, End: end}
		return datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) ([]models.Bar, error) {
			return uc.market.Daily(ctx, base.TSCode, start, end)
		})
	})
	run("fundamental", func(ctx context.Context) (any, error) {
		sig := datacache.Signature{Entity: base.TSCode, Category: "fundamental"}
		return datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) (*models.Fundamental, error) {
			return uc.fetchFundamental(ctx, base.TSCode)
		})
	})
	run("news", func(ctx context.Context) (any, error) {
		sig := datacache.Signature{Entity: base.Name, Category: "news"}
		return datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) ([]models.NewsItem, error) {
			return uc.news.StockNews(ctx, base.Name, uc.newsDays)
		})
	})
	run("capital_flow", func(ctx context.Context) (any, error) {
		sig := datacache.Signature{Entity: base.TSCode, Category: "capital_flow", Start: start, End: end}
		return datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) (*models.CapitalFlow, error) {
			return uc.market.MoneyFlow(ctx, base.TSCode, util.DateYYYYMMDD(10), end)
		})
	})
	run("macro", func(ctx context.Context) (any, error) {
		sig := datacache.Signature{Entity: "cn", Category: "macro"}
		return datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) (*models.Macro, error) {
			return uc.market.Macro(ctx)
		})
	})
	run("concepts", func(ctx context.Context) (any, error) {
		sig := datacache.Signature{Entity: base.TSCode, Category: "concepts"}
		return datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) ([]models.Concept, error) {
			return uc.market.Concepts(ctx, base.TSCode)
		})
	})

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			snap.Sources[it.name] = models.SourceResult{Source: it.name, Status: models.SourceFailed, Error: it.err.Error()}
			uc.metrics.RecordError("fetch:" + it.name)
			uc.log.Warn("source fetch failed", logger.String("source", it.name), logger.Error(it.err))
			rep.Step("fetch:error", map[string]any{"source": it.name, "error": it.err.Error()})
			continue
		}
		snap.Sources[it.name] = models.SourceResult{Source: it.name, Status: models.SourceOK}
		switch it.name {
		case "price":
			snap.Prices = it.val.([]models.Bar)
		case "fundamental":
			snap.Fundamental = it.val.(*models.Fundamental)
		case "news":
			items := it.val.([]models.NewsItem)
			snap.Sentiment = &models.Sentiment{Items: items}
		case "capital_flow":
			snap.CapitalFlow = it.val.(*models.CapitalFlow)
		case "macro":
			snap.Macro = it.val.(*models.Macro)
		case "concepts":
			snap.Concepts = it.val.([]models.Concept)
		}
	}
	rep.Step("fetch:parallel:done", map[string]any{"sources": len(snap.Sources)})

	if len(snap.Prices) == 0 {
		uc.metrics.RecordError("empty_price")
		return nil, &models.AggregationError{Kind: models.EmptyPrice, Name: base.Name}
	}

	rep.Step("compute:technical", nil)
	snap.Technical = analytics.ComputeTechnical(snap.Prices)

	rep.Step("compute:sentiment", nil)
	var newsItems []models.NewsItem
	if snap.Sentiment != nil {
		newsItems = snap.Sentiment.Items
	}
	snap.Sentiment = analytics.ScoreSentiment(newsItems)

	rep.Step("compute:scorecard", nil)
	snap.Score = analytics.ComputeScoreCard(snap.Technical, snap.Sentiment, snap.Fundamental, snap.Macro)

	if uc.fc != nil {
		if f, err := uc.fc.Predict(ctx, base.TSCode, snap.Prices, uc.forecastHrzn); err == nil {
			snap.Forecast = f
		} else {
			uc.log.Warn("forecast unavailable", logger.Error(err))
		}
	}

	rep.Step("llm:summary:start", nil)
	snap.Narrative, snap.LLMUsed = uc.narr.StockNarrative(ctx, snap, snap.Score)
	rep.Step("llm:summary:done", map[string]any{"llm_used": snap.LLMUsed})

	rep.Step("complete", map[string]any{"total_score": snap.Score.Total})
	uc.metrics.RecordPipeline("analyze", time.Since(started).Seconds())
	return snap, nil
}

// fetchFundamental merges the three slow financial endpoints into one
// Fundamental so they cache as a unit.
func (uc *AnalyzeUseCase) fetchFundamental(ctx context.Context, tsCode string) (*models.Fundamental, error) {
	f, err := uc.market.DailyBasic(ctx, tsCode)
	if err != nil {
		f = &models.Fundamental{}
	}
	if ind, err2 := uc.market.FinaIndicator(ctx, tsCode); err2 == nil {
		f.Latest = ind
	} else if err != nil {
		// both valuation and indicators failed, treat the category as down
		return nil, err2
	}
	if rows, err2 := uc.market.IncomeRecent(ctx, tsCode, 4); err2 == nil {
		f.IncomeRecent = rows
	}
	return f, nil
}
