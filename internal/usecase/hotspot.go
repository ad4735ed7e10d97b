package usecase

import (
	"context"
	"time"

	"AShareLab/internal/domain/models"
	domrepo "AShareLab/internal/domain/repository"
	"AShareLab/internal/service/datacache"
	"AShareLab/internal/service/stream"
	"AShareLab/internal/services/analytics"
	"AShareLab/pkg/logger"
	"AShareLab/pkg/util"
)

// HotspotUseCase analyzes a market theme: keyword news, tone, related
// concept stocks with a quick technical read, plus a summary.
type HotspotUseCase struct {
	market  domrepo.MarketData
	news    domrepo.NewsSource
	narr    *NarrativeUseCase
	keeper  *datacache.Keeper
	metrics domrepo.Metrics
	log     *logger.Logger

	newsDays  int
	maxStocks int
	timeout   time.Duration
}

// NewHotspotUseCase wires the hotspot pipeline.
func NewHotspotUseCase(
	market domrepo.MarketData,
	news domrepo.NewsSource,
	narr *NarrativeUseCase,
	keeper *datacache.Keeper,
	metrics domrepo.Metrics,
	log *logger.Logger,
) *HotspotUseCase {
	return &HotspotUseCase{
		market:    market,
		news:      news,
		narr:      narr,
		keeper:    keeper,
		metrics:   metrics,
		log:       log,
		newsDays:  7,
		maxStocks: 5,
		timeout:   60 * time.Second,
	}
}

// Analyze runs the hotspot pipeline for one keyword.
func (uc *HotspotUseCase) Analyze(ctx context.Context, keyword string, force bool, rep stream.Reporter) (*models.HotspotResult, error) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	result := &models.HotspotResult{Keyword: keyword, GeneratedAt: time.Now()}

	rep.Step("fetch:news", map[string]any{"keyword": keyword})
	sig := datacache.Signature{Entity: keyword, Category: "news"}
	items, err := datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) ([]models.NewsItem, error) {
		return uc.news.KeywordNews(ctx, keyword, uc.newsDays)
	})
	if err != nil {
		uc.log.Warn("hotspot news fetch failed", logger.String("keyword", keyword), logger.Error(err))
		uc.metrics.RecordError("fetch:news")
		rep.Step("fetch:error", map[string]any{"source": "news", "error": err.Error()})
	} else {
		result.News = items
	}

	rep.Step("compute:sentiment", nil)
	result.Sentiment = analytics.ScoreSentiment(result.News)

	rep.Step("fetch:concept_stocks", nil)
	result.Stocks = uc.relatedStocks(ctx, keyword, force, rep)

	rep.Step("llm:summary:start", nil)
	result.LLMSummary, result.LLMUsed = uc.narr.HotspotNarrative(ctx, result)
	rep.Step("llm:summary:done", map[string]any{"llm_used": result.LLMUsed})

	rep.Step("complete", map[string]any{"stocks": len(result.Stocks)})
	uc.metrics.RecordPipeline("hotspot", time.Since(started).Seconds())
	return result, nil
}

// relatedStocks finds concept members for the keyword and attaches a quick
// technical read to each. Failures degrade to an empty or shorter list.
func (uc *HotspotUseCase) relatedStocks(ctx context.Context, keyword string, force bool, rep stream.Reporter) []models.HotspotStock {
	sig := datacache.Signature{Entity: keyword, Category: "concepts"}
	members, err := datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) ([]models.StockBase, error) {
		return uc.market.ConceptMembers(ctx, keyword)
	})
	if err != nil {
		uc.log.Warn("concept members fetch failed", logger.String("keyword", keyword), logger.Error(err))
		uc.metrics.RecordError("fetch:concepts")
		rep.Step("fetch:error", map[string]any{"source": "concepts", "error": err.Error()})
		return nil
	}
	if len(members) > uc.maxStocks {
		members = members[:uc.maxStocks]
	}

	start := util.DateYYYYMMDD(60)
	end := util.DateYYYYMMDD(0)
	out := make([]models.HotspotStock, 0, len(members))
	for _, m := range members {
		hs := models.HotspotStock{Base: m}
		psig := datacache.Signature{Entity: m.TSCode, Category: "prices", Start: start, End: end}
		bars, err := datacache.GetOrFetch(ctx, uc.keeper, psig, force, func(ctx context.Context) ([]models.Bar, error) {
			return uc.market.Daily(ctx, m.TSCode, start, end)
		})
		if err == nil && len(bars) > 0 {
			t := analytics.ComputeTechnical(bars)
			hs.LastClose = t.LastClose
			hs.PctChg5D = t.Return5D
			hs.RSI14 = t.RSI14
		}
		out = append(out, hs)
	}
	return out
}
