package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"AShareLab/internal/service/datacache"
	"AShareLab/pkg/cache"
)

var errTestDown = errors.New("upstream down")

func newMarketFixture(t *testing.T, market *fakeMarketData, news *fakeNews) *MarketUseCase {
	t.Helper()
	keeper := datacache.New(cache.NewMemoryCache(), func(string) time.Duration { return time.Minute }, nil)
	return NewMarketUseCase(market, news, nil, keeper, nopMetrics{}, testLogger(t), nil)
}

func TestMarketOverview(t *testing.T) {
	market := &fakeMarketData{bars: testBars(30)}
	news := &fakeNews{}
	uc := newMarketFixture(t, market, news)

	mkt, err := uc.Overview(context.Background(), false)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if len(mkt.Indices) != 3 {
		t.Fatalf("expected 3 index quotes, got %d", len(mkt.Indices))
	}
	for _, q := range mkt.Indices {
		if q.Close == 0 {
			t.Fatalf("index %s missing close", q.TSCode)
		}
		if q.Realtime {
			t.Fatalf("no pipeline configured, quote must be end-of-day")
		}
	}
	if mkt.Breadth == nil {
		t.Fatalf("expected breadth")
	}
	if mkt.CapitalFlow == nil {
		t.Fatalf("expected capital flow")
	}
	if len(mkt.Sectors) == 0 {
		t.Fatalf("expected sector performance")
	}
	if mkt.GeneratedAt.IsZero() {
		t.Fatalf("expected generated_at")
	}
}

func TestMarketOverviewPartialFailure(t *testing.T) {
	market := &fakeMarketData{dailyErr: errTestDown} // IndexDaily shares bars, keep them nil
	news := &fakeNews{err: errTestDown}
	uc := newMarketFixture(t, market, news)

	mkt, err := uc.Overview(context.Background(), false)
	if err != nil {
		t.Fatalf("partial failure must not abort: %v", err)
	}
	if len(mkt.PolicyNews) != 0 {
		t.Fatalf("expected no policy news, got %d", len(mkt.PolicyNews))
	}
}
