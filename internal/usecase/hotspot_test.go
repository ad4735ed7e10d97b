package usecase

import (
	"context"
	"testing"
	"time"

	"AShareLab/internal/domain/models"
	"AShareLab/internal/service/datacache"
	"AShareLab/internal/service/stream"
	"AShareLab/pkg/cache"
)

func newHotspotFixture(t *testing.T, market *fakeMarketData, news *fakeNews) *HotspotUseCase {
	t.Helper()
	log := testLogger(t)
	keeper := datacache.New(cache.NewMemoryCache(), func(string) time.Duration { return time.Minute }, nil)
	narr := NewNarrativeUseCase(nil, nopMetrics{}, log)
	return NewHotspotUseCase(market, news, narr, keeper, nopMetrics{}, log)
}

func TestHotspotAnalyze(t *testing.T) {
	market := &fakeMarketData{
		bars: testBars(70),
		conceptStock: []models.StockBase{
			{TSCode: "300750.SZ", Name: "宁德时代"},
			{TSCode: "002594.SZ", Name: "比亚迪"},
		},
	}
	news := &fakeNews{items: []models.NewsItem{
		{Title: "新能源板块大涨 政策利好持续", PublishedAt: time.Now()},
		{Title: "电池产业链业绩增长", PublishedAt: time.Now()},
	}}
	uc := newHotspotFixture(t, market, news)

	rep := stream.NewChannel(64)
	res, err := uc.Analyze(context.Background(), "新能源", false, rep)
	rep.Close()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Keyword != "新能源" {
		t.Fatalf("unexpected keyword: %s", res.Keyword)
	}
	if len(res.News) != 2 {
		t.Fatalf("expected 2 news items, got %d", len(res.News))
	}
	if res.Sentiment == nil || res.Sentiment.Overall != "positive" {
		t.Fatalf("expected positive sentiment, got %+v", res.Sentiment)
	}
	if len(res.Stocks) != 2 {
		t.Fatalf("expected 2 related stocks, got %d", len(res.Stocks))
	}
	for _, s := range res.Stocks {
		if s.LastClose == 0 {
			t.Fatalf("related stock %s missing last close", s.Base.TSCode)
		}
		if s.RSI14 == nil {
			t.Fatalf("related stock %s missing rsi", s.Base.TSCode)
		}
	}
	if res.LLMSummary == "" || res.LLMUsed {
		t.Fatalf("expected templated summary, llm_used=%v", res.LLMUsed)
	}
}

func TestHotspotNewsFailureDegrades(t *testing.T) {
	market := &fakeMarketData{bars: testBars(70)}
	news := &fakeNews{err: errTestDown}
	uc := newHotspotFixture(t, market, news)

	res, err := uc.Analyze(context.Background(), "人工智能", false, stream.Nop{})
	if err != nil {
		t.Fatalf("news failure must not abort: %v", err)
	}
	if res.Sentiment == nil || res.Sentiment.Overall != "neutral" || res.Sentiment.Score != 50 {
		t.Fatalf("expected neutral baseline, got %+v", res.Sentiment)
	}
}
