package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"AShareLab/internal/domain/models"
	"AShareLab/internal/service/datacache"
	"AShareLab/internal/service/stream"
	"AShareLab/pkg/cache"
)

type nopMetrics struct{}

func (nopMetrics) RecordUpstreamCall(string, string) {}
func (nopMetrics) RecordCache(string, string)        {}
func (nopMetrics) RecordPipeline(string, float64)    {}
func (nopMetrics) RecordLLMFallback(string)          {}
func (nopMetrics) RecordError(string)                {}

// fakeMarketData serves canned data and counts calls per endpoint.
type fakeMarketData struct {
	dailyCalls   int64
	dailyErr     error
	bars         []models.Bar
	fundErr      error
	conceptStock []models.StockBase
}

func testBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = models.Bar{TradeDate: "20240101", Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000}
	}
	return bars
}

func (f *fakeMarketData) Daily(context.Context, string, string, string) ([]models.Bar, error) {
	atomic.AddInt64(&f.dailyCalls, 1)
	if f.dailyErr != nil {
		return nil, f.dailyErr
	}
	return f.bars, nil
}

func (f *fakeMarketData) DailyBasic(context.Context, string) (*models.Fundamental, error) {
	if f.fundErr != nil {
		return nil, f.fundErr
	}
	pe := 25.0
	return &models.Fundamental{PE: &pe}, nil
}

func (f *fakeMarketData) FinaIndicator(context.Context, string) (*models.FinaIndicator, error) {
	if f.fundErr != nil {
		return nil, f.fundErr
	}
	roe := 18.0
	return &models.FinaIndicator{ROE: &roe}, nil
}

func (f *fakeMarketData) IncomeRecent(context.Context, string, int) ([]models.IncomeRow, error) {
	return nil, nil
}

func (f *fakeMarketData) MoneyFlow(context.Context, string, string, string) (*models.CapitalFlow, error) {
	return &models.CapitalFlow{TradeDate: "20240131"}, nil
}

func (f *fakeMarketData) Concepts(context.Context, string) ([]models.Concept, error) {
	return []models.Concept{{Code: "885520", Name: "白酒"}}, nil
}

func (f *fakeMarketData) ConceptMembers(context.Context, string) ([]models.StockBase, error) {
	return f.conceptStock, nil
}

func (f *fakeMarketData) IndexDaily(context.Context, string, string, string) ([]models.Bar, error) {
	return f.bars, nil
}

func (f *fakeMarketData) MarketBreadth(context.Context, string) (*models.MarketBreadth, error) {
	return &models.MarketBreadth{}, nil
}

func (f *fakeMarketData) Sectors(context.Context, string) ([]models.SectorPerformance, error) {
	return []models.SectorPerformance{{Code: "801080.SI", Name: "电子", PctChg: 1.2}}, nil
}

func (f *fakeMarketData) MarketMoneyFlow(context.Context, string) (*models.MarketCapitalFlow, error) {
	return &models.MarketCapitalFlow{}, nil
}

func (f *fakeMarketData) Macro(context.Context) (*models.Macro, error) {
	m2 := 8.5
	return &models.Macro{M2YoY: &m2}, nil
}

func (f *fakeMarketData) Announcements(context.Context, string, int) ([]models.NewsItem, error) {
	return nil, nil
}

type fakeNews struct {
	items []models.NewsItem
	err   error
}

func (f *fakeNews) StockNews(context.Context, string, int) ([]models.NewsItem, error) {
	return f.items, f.err
}

func (f *fakeNews) KeywordNews(context.Context, string, int) ([]models.NewsItem, error) {
	return f.items, f.err
}

func newAnalyzeFixture(t *testing.T, market *fakeMarketData, news *fakeNews) *AnalyzeUseCase {
	t.Helper()
	log := testLogger(t)
	keeper := datacache.New(cache.NewMemoryCache(), func(string) time.Duration { return time.Minute }, nil)
	narr := NewNarrativeUseCase(nil, nopMetrics{}, log)
	resolver := NewResolver(writeSymbolMap(t, sampleMap), log)
	return NewAnalyzeUseCase(resolver, market, news, narr, keeper, nopMetrics{}, log)
}

func TestAnalyzeFullPipeline(t *testing.T) {
	market := &fakeMarketData{bars: testBars(80)}
	news := &fakeNews{items: []models.NewsItem{{Title: "业绩增长 机构推荐买入", PublishedAt: time.Now()}}}
	uc := newAnalyzeFixture(t, market, news)

	rep := stream.NewChannel(128)
	snap, err := uc.Analyze(context.Background(), "贵州茅台", false, rep)
	rep.Close()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if snap.Base.TSCode != "600519.SH" {
		t.Fatalf("unexpected resolution: %s", snap.Base.TSCode)
	}
	if snap.Technical == nil || snap.Technical.DataRows != 80 {
		t.Fatalf("expected technical over 80 bars, got %+v", snap.Technical)
	}
	if snap.Sentiment == nil || snap.Sentiment.Overall != "positive" {
		t.Fatalf("expected positive sentiment, got %+v", snap.Sentiment)
	}
	if snap.Score == nil || snap.Score.Rating == "" {
		t.Fatalf("expected scorecard, got %+v", snap.Score)
	}
	if snap.Narrative == "" || snap.LLMUsed {
		t.Fatalf("expected templated narrative, got llm_used=%v", snap.LLMUsed)
	}
	for _, src := range []string{"price", "fundamental", "news", "capital_flow", "macro", "concepts"} {
		res, ok := snap.Sources[src]
		if !ok || res.Status != models.SourceOK {
			t.Fatalf("source %s not ok: %+v", src, res)
		}
	}

	var steps []string
	for ev := range rep.Events() {
		steps = append(steps, ev.Step)
	}
	if steps[0] != "resolve:start" || steps[len(steps)-1] != "complete" {
		t.Fatalf("unexpected step framing: %v", steps)
	}
}

func TestAnalyzeUnresolvableKeyword(t *testing.T) {
	market := &fakeMarketData{bars: testBars(80)}
	uc := newAnalyzeFixture(t, market, &fakeNews{})

	_, err := uc.Analyze(context.Background(), "不存在的公司", false, stream.Nop{})
	var aggErr *models.AggregationError
	if !errors.As(err, &aggErr) || aggErr.Kind != models.UnresolvableEntity {
		t.Fatalf("expected unresolvable_entity, got %v", err)
	}
	if atomic.LoadInt64(&market.dailyCalls) != 0 {
		t.Fatalf("no fetch should happen before resolution")
	}
}

func TestAnalyzeEmptyPriceAborts(t *testing.T) {
	market := &fakeMarketData{dailyErr: errors.New("tushare down")}
	uc := newAnalyzeFixture(t, market, &fakeNews{})

	_, err := uc.Analyze(context.Background(), "贵州茅台", false, stream.Nop{})
	var aggErr *models.AggregationError
	if !errors.As(err, &aggErr) || aggErr.Kind != models.EmptyPrice {
		t.Fatalf("expected empty_price, got %v", err)
	}
}

func TestAnalyzePartialFailureDegrades(t *testing.T) {
	market := &fakeMarketData{bars: testBars(80), fundErr: errors.New("quota exhausted")}
	uc := newAnalyzeFixture(t, market, &fakeNews{})

	snap, err := uc.Analyze(context.Background(), "贵州茅台", false, stream.Nop{})
	if err != nil {
		t.Fatalf("partial failure must not abort: %v", err)
	}
	if snap.Sources["fundamental"].Status != models.SourceFailed {
		t.Fatalf("expected failed fundamental source, got %+v", snap.Sources["fundamental"])
	}
	if snap.Score == nil {
		t.Fatalf("scorecard should fall back to neutral fundamental")
	}
}

func TestAnalyzeSecondCallServedFromCache(t *testing.T) {
	market := &fakeMarketData{bars: testBars(80)}
	uc := newAnalyzeFixture(t, market, &fakeNews{})

	ctx := context.Background()
	if _, err := uc.Analyze(ctx, "贵州茅台", false, stream.Nop{}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := uc.Analyze(ctx, "贵州茅台", false, stream.Nop{}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n := atomic.LoadInt64(&market.dailyCalls); n != 1 {
		t.Fatalf("second run within TTL should hit the cache, got %d daily calls", n)
	}

	if _, err := uc.Analyze(ctx, "贵州茅台", true, stream.Nop{}); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if n := atomic.LoadInt64(&market.dailyCalls); n != 2 {
		t.Fatalf("force must bypass the cache, got %d daily calls", n)
	}
}
