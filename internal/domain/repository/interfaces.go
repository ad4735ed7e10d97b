package repository

import (
	"context"
	"time"

	"AShareLab/internal/domain/models"
)

// MarketData is the upstream financial data provider boundary. Implementations
// return typed results; untyped provider payloads never cross this interface.
type MarketData interface {
	Daily(ctx context.Context, tsCode, start, end string) ([]models.Bar, error)
	DailyBasic(ctx context.Context, tsCode string) (*models.Fundamental, error)
	FinaIndicator(ctx context.Context, tsCode string) (*models.FinaIndicator, error)
	IncomeRecent(ctx context.Context, tsCode string, quarters int) ([]models.IncomeRow, error)
	MoneyFlow(ctx context.Context, tsCode, start, end string) (*models.CapitalFlow, error)
	Concepts(ctx context.Context, tsCode string) ([]models.Concept, error)
	ConceptMembers(ctx context.Context, keyword string) ([]models.StockBase, error)
	IndexDaily(ctx context.Context, tsCode, start, end string) ([]models.Bar, error)
	MarketBreadth(ctx context.Context, tradeDate string) (*models.MarketBreadth, error)
	Sectors(ctx context.Context, tradeDate string) ([]models.SectorPerformance, error)
	MarketMoneyFlow(ctx context.Context, tradeDate string) (*models.MarketCapitalFlow, error)
	Macro(ctx context.Context) (*models.Macro, error)
	Announcements(ctx context.Context, tsCode string, limit int) ([]models.NewsItem, error)
}

// NewsSource fetches recent news for a stock or free-text keyword.
type NewsSource interface {
	StockNews(ctx context.Context, name string, days int) ([]models.NewsItem, error)
	KeywordNews(ctx context.Context, keyword string, days int) ([]models.NewsItem, error)
}

// QuoteStream delivers realtime index quotes over a long-lived connection.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.IndexQuote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Narrator produces human-readable commentary from structured data.
type Narrator interface {
	SummarizeStock(ctx context.Context, snap *models.AggregatedSnapshot, card *models.ScoreCard) (string, error)
	SummarizeHotspot(ctx context.Context, hot *models.HotspotResult) (string, error)
	SummarizeMarket(ctx context.Context, mkt *models.MarketOverview) (string, error)
	Chat(ctx context.Context, msgs []models.ChatMessage) (models.ChatMessage, error)
}

// Forecaster is the optional time-series forecasting service.
type Forecaster interface {
	Predict(ctx context.Context, tsCode string, bars []models.Bar, horizon string) (*models.Forecast, error)
}

// ReportStore persists generated reports as dated records.
type ReportStore interface {
	Save(ctx context.Context, r *models.Report) error
	Get(ctx context.Context, t models.ReportType, date string) (*models.Report, error)
	Latest(ctx context.Context, t models.ReportType) (*models.Report, error)
	List(ctx context.Context, since time.Time) ([]*models.Report, error)
	Delete(ctx context.Context, t models.ReportType, date string) error
}

// Metrics abstracts operational counters so use cases stay backend-agnostic.
type Metrics interface {
	RecordUpstreamCall(api, outcome string)
	RecordCache(category, outcome string) // outcome: hit | miss | refresh
	RecordPipeline(kind string, seconds float64)
	RecordLLMFallback(reason string)
	RecordError(kind string)
}
