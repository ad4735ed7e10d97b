package models

import "time"

// HotspotStock is one concept-related stock with a brief read on it.
type HotspotStock struct {
	Base      StockBase  `json:"base"`
	LastClose float64    `json:"last_close"`
	PctChg5D  *float64   `json:"pct_chg_5d,omitempty"`
	RSI14     *float64   `json:"rsi14,omitempty"`
	Score     *ScoreCard `json:"scorecard,omitempty"`
}

// HotspotResult is the outcome of one keyword/concept analysis.
type HotspotResult struct {
	Keyword     string         `json:"keyword"`
	GeneratedAt time.Time      `json:"generated_at"`
	News        []NewsItem     `json:"news,omitempty"`
	Sentiment   *Sentiment     `json:"sentiment,omitempty"`
	Stocks      []HotspotStock `json:"stocks,omitempty"`
	LLMSummary  string         `json:"llm_summary,omitempty"`
	LLMUsed     bool           `json:"llm_used"`
}
