package usecase

import (
	"context"
	"sync"
	"time"

	"AShareLab/internal/domain/models"
	domrepo "AShareLab/internal/domain/repository"
	"AShareLab/internal/middleware"
	"AShareLab/internal/service/datacache"
	"AShareLab/pkg/logger"
	"AShareLab/pkg/util"
)

// indexName maps the tracked index codes to display names.
var indexName = map[string]string{
	"000001.SH": "上证指数",
	"399001.SZ": "深证成指",
	"399006.SZ": "创业板指",
	"000688.SH": "科创50",
}

// MarketUseCase assembles the whole-market overview: index quotes (daily
// close overlaid with realtime readings when the feed is up), breadth,
// market-wide money flow and policy news.
type MarketUseCase struct {
	market  domrepo.MarketData
	news    domrepo.NewsSource
	quotes  *middleware.QuotePipeline // nil when the feed is disabled
	keeper  *datacache.Keeper
	metrics domrepo.Metrics
	log     *logger.Logger

	indices []string
	timeout time.Duration
}

// NewMarketUseCase wires the market overview pipeline. quotes may be nil.
func NewMarketUseCase(
	market domrepo.MarketData,
	news domrepo.NewsSource,
	quotes *middleware.QuotePipeline,
	keeper *datacache.Keeper,
	metrics domrepo.Metrics,
	log *logger.Logger,
	indices []string,
) *MarketUseCase {
	if len(indices) == 0 {
		indices = []string{"000001.SH", "399001.SZ", "399006.SZ"}
	}
	return &MarketUseCase{
		market:  market,
		news:    news,
		quotes:  quotes,
		keeper:  keeper,
		metrics: metrics,
		log:     log,
		indices: indices,
		timeout: 30 * time.Second,
	}
}

// Overview builds the current market snapshot. Sources fail independently;
// missing pieces leave their fields empty.
func (uc *MarketUseCase) Overview(ctx context.Context, force bool) (*models.MarketOverview, error) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	out := &models.MarketOverview{GeneratedAt: time.Now()}
	start := util.DateYYYYMMDD(10)
	end := util.DateYYYYMMDD(0)

	var wg sync.WaitGroup
	var mu sync.Mutex

	wg.Add(1)
	go func() {
		defer wg.Done()
		quotes := uc.indexQuotes(ctx, force, start, end)
		mu.Lock()
		out.Indices = quotes
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sig := datacache.Signature{Entity: "market", Category: "market_overview", Start: end}
		br, err := datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) (*models.MarketBreadth, error) {
			return uc.market.MarketBreadth(ctx, end)
		})
		if err != nil {
			uc.warn("breadth", err)
			return
		}
		mu.Lock()
		out.Breadth = br
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sig := datacache.Signature{Entity: "market", Category: "capital_flow", Start: end}
		cf, err := datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) (*models.MarketCapitalFlow, error) {
			return uc.market.MarketMoneyFlow(ctx, end)
		})
		if err != nil {
			uc.warn("market_moneyflow", err)
			return
		}
		mu.Lock()
		out.CapitalFlow = cf
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sig := datacache.Signature{Entity: "sectors", Category: "market_overview", Start: end}
		secs, err := datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) ([]models.SectorPerformance, error) {
			return uc.market.Sectors(ctx, end)
		})
		if err != nil {
			uc.warn("sectors", err)
			return
		}
		mu.Lock()
		out.Sectors = secs
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sig := datacache.Signature{Entity: "policy", Category: "news"}
		items, err := datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) ([]models.NewsItem, error) {
			return uc.news.KeywordNews(ctx, "政策", 3)
		})
		if err != nil {
			uc.warn("policy_news", err)
			return
		}
		mu.Lock()
		out.PolicyNews = items
		mu.Unlock()
	}()

	wg.Wait()
	uc.metrics.RecordPipeline("market", time.Since(started).Seconds())
	return out, nil
}

// indexQuotes fetches the latest daily close per index and overlays realtime
// readings from the quote pipeline when available.
func (uc *MarketUseCase) indexQuotes(ctx context.Context, force bool, start, end string) []models.IndexQuote {
	var realtime map[string]models.IndexQuote
	if uc.quotes != nil {
		realtime = uc.quotes.Latest()
	}

	out := make([]models.IndexQuote, 0, len(uc.indices))
	for _, code := range uc.indices {
		if q, ok := realtime[code]; ok {
			out = append(out, q)
			continue
		}
		sig := datacache.Signature{Entity: code, Category: "market_overview", Start: start, End: end}
		bars, err := datacache.GetOrFetch(ctx, uc.keeper, sig, force, func(ctx context.Context) ([]models.Bar, error) {
			return uc.market.IndexDaily(ctx, code, start, end)
		})
		if err != nil || len(bars) == 0 {
			uc.warn("index:"+code, err)
			continue
		}
		last := bars[len(bars)-1]
		out = append(out, models.IndexQuote{
			TSCode:    code,
			Name:      indexName[code],
			Close:     last.Close,
			PctChg:    last.PctChg,
			Volume:    last.Volume,
			Amount:    last.Amount,
			TradeDate: last.TradeDate,
		})
	}
	return out
}

func (uc *MarketUseCase) warn(source string, err error) {
	uc.metrics.RecordError("fetch:" + source)
	if err != nil {
		uc.log.Warn("market source failed", logger.String("source", source), logger.Error(err))
	}
}
