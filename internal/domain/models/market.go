package models

import "time"

// IndexQuote is one market index reading. Realtime quotes (from the quote
// stream) overlay the daily close when the market is open.
type IndexQuote struct {
	TSCode    string  `json:"ts_code"`
	Name      string  `json:"name"`
	Close     float64 `json:"close"`
	PctChg    float64 `json:"pct_chg"`
	Volume    float64 `json:"vol"`
	Amount    float64 `json:"amount"`
	TradeDate string  `json:"trade_date"`
	Realtime  bool    `json:"realtime"`
}

// MarketBreadth counts advancing and declining stocks for the session.
type MarketBreadth struct {
	Up        int `json:"up"`
	Down      int `json:"down"`
	Flat      int `json:"flat"`
	LimitUp   int `json:"limit_up"`
	LimitDown int `json:"limit_down"`
}

// SectorPerformance is one sector index summary.
type SectorPerformance struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	PctChg float64 `json:"pct_chg"`
}

// MarketCapitalFlow is market-wide money flow.
type MarketCapitalFlow struct {
	TradeDate string   `json:"trade_date"`
	NorthNet  *float64 `json:"north_net,omitempty"` // northbound net, 亿元
	MainNet   *float64 `json:"main_net,omitempty"`
}

// MarketOverview is the current market snapshot served by GET /market.
type MarketOverview struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Indices     []IndexQuote        `json:"indices"`
	Breadth     *MarketBreadth      `json:"breadth,omitempty"`
	CapitalFlow *MarketCapitalFlow  `json:"capital_flow,omitempty"`
	Sectors     []SectorPerformance `json:"sectors,omitempty"`
	PolicyNews  []NewsItem          `json:"policy_news,omitempty"`
}
