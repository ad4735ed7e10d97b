package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"AShareLab/internal/domain/models"
)

type fallbackCountingMetrics struct {
	nopMetrics
	fallbacks []string
}

func (m *fallbackCountingMetrics) RecordLLMFallback(kind string) {
	m.fallbacks = append(m.fallbacks, kind)
}

type failingNarrator struct{}

func (failingNarrator) SummarizeStock(context.Context, *models.AggregatedSnapshot, *models.ScoreCard) (string, error) {
	return "", errors.New("model offline")
}
func (failingNarrator) SummarizeHotspot(context.Context, *models.HotspotResult) (string, error) {
	return "", errors.New("model offline")
}
func (failingNarrator) SummarizeMarket(context.Context, *models.MarketOverview) (string, error) {
	return "", errors.New("model offline")
}
func (failingNarrator) Chat(context.Context, []models.ChatMessage) (models.ChatMessage, error) {
	return models.ChatMessage{}, errors.New("model offline")
}

func sampleSnapshot() *models.AggregatedSnapshot {
	return &models.AggregatedSnapshot{
		Base:        models.StockBase{TSCode: "600519.SH", Name: "贵州茅台", Industry: "白酒"},
		GeneratedAt: time.Now(),
		Technical:   &models.Technical{LastClose: 1700, DataRows: 120, Signal: "bullish"},
	}
}

func TestStockNarrativeWithoutNarrator(t *testing.T) {
	uc := NewNarrativeUseCase(nil, &fallbackCountingMetrics{}, testLogger(t))
	card := &models.ScoreCard{Total: 72, Rating: "推荐", Suggestion: "买入"}

	text, llmUsed := uc.StockNarrative(context.Background(), sampleSnapshot(), card)
	if llmUsed {
		t.Fatalf("no narrator configured, llmUsed must be false")
	}
	if text == "" {
		t.Fatalf("expected templated narrative")
	}
	if !strings.Contains(text, "贵州茅台") {
		t.Fatalf("narrative should mention the stock: %s", text)
	}
	if !strings.Contains(text, "仅供参考") {
		t.Fatalf("narrative should carry the disclaimer: %s", text)
	}
}

func TestStockNarrativeFallsBackOnError(t *testing.T) {
	metrics := &fallbackCountingMetrics{}
	uc := NewNarrativeUseCase(failingNarrator{}, metrics, testLogger(t))

	text, llmUsed := uc.StockNarrative(context.Background(), sampleSnapshot(), &models.ScoreCard{Total: 50, Rating: "中性", Suggestion: "观望"})
	if llmUsed || text == "" {
		t.Fatalf("expected templated fallback, llmUsed=%v text=%q", llmUsed, text)
	}
	if len(metrics.fallbacks) != 1 || metrics.fallbacks[0] != "stock" {
		t.Fatalf("expected one stock fallback, got %v", metrics.fallbacks)
	}
}

func TestHotspotNarrativeWithoutNarrator(t *testing.T) {
	uc := NewNarrativeUseCase(nil, &fallbackCountingMetrics{}, testLogger(t))
	hot := &models.HotspotResult{
		Keyword:   "人工智能",
		Sentiment: &models.Sentiment{Overall: "positive", Score: 75},
	}
	text, llmUsed := uc.HotspotNarrative(context.Background(), hot)
	if llmUsed || text == "" {
		t.Fatalf("expected templated hotspot narrative")
	}
	if !strings.Contains(text, "人工智能") {
		t.Fatalf("narrative should mention the keyword: %s", text)
	}
}
