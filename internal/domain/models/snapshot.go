package models

import "time"

// SourceStatus classifies the outcome of one upstream category fetch.
type SourceStatus string

const (
	SourceOK      SourceStatus = "ok"
	SourcePartial SourceStatus = "partial"
	SourceFailed  SourceStatus = "failed"
)

// SourceResult records how a single data category fared during aggregation.
// The aggregator never assumes all sources succeed.
type SourceResult struct {
	Source string       `json:"source"`
	Status SourceStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// StockBase is the resolved identity of an entity under analysis.
type StockBase struct {
	TSCode   string `json:"ts_code"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Area     string `json:"area,omitempty"`
}

// Bar is one daily OHLCV record, dates in YYYYMMDD.
type Bar struct {
	TradeDate string  `json:"trade_date"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"vol"`
	Amount    float64 `json:"amount"`
	PctChg    float64 `json:"pct_chg"`
}

// Technical holds indicator values derived from the price series.
type Technical struct {
	LastClose   float64  `json:"last_close"`
	LastHigh    float64  `json:"last_high"`
	LastLow     float64  `json:"last_low"`
	LastVolume  float64  `json:"last_vol"`
	DataDate    string   `json:"data_date"`
	DataRows    int      `json:"data_rows"`
	Return1D    *float64 `json:"return_1d,omitempty"`
	Return5D    *float64 `json:"return_5d,omitempty"`
	Return20D   *float64 `json:"return_20d,omitempty"`
	Return60D   *float64 `json:"return_60d,omitempty"`
	High52W     *float64 `json:"high_52w,omitempty"`
	Low52W      *float64 `json:"low_52w,omitempty"`
	RSI14       *float64 `json:"rsi14,omitempty"`
	MACD        *float64 `json:"macd,omitempty"`
	DIF         *float64 `json:"dif,omitempty"`
	DEA         *float64 `json:"dea,omitempty"`
	MA5         *float64 `json:"ma5,omitempty"`
	MA10        *float64 `json:"ma10,omitempty"`
	MA20        *float64 `json:"ma20,omitempty"`
	MA60        *float64 `json:"ma60,omitempty"`
	BollUpper   *float64 `json:"boll_upper,omitempty"`
	BollMid     *float64 `json:"boll_mid,omitempty"`
	BollLower   *float64 `json:"boll_lower,omitempty"`
	Signal      string   `json:"signal,omitempty"`
}

// FinaIndicator is the latest reported financial indicator row.
type FinaIndicator struct {
	EndDate         string   `json:"end_date"`
	ROE             *float64 `json:"roe,omitempty"`
	NetProfitMargin *float64 `json:"netprofit_margin,omitempty"`
	GrossMargin     *float64 `json:"grossprofit_margin,omitempty"`
	EPS             *float64 `json:"eps,omitempty"`
	DebtToAssets    *float64 `json:"debt_to_assets,omitempty"`
}

// IncomeRow is one quarterly income statement row.
type IncomeRow struct {
	EndDate   string   `json:"end_date"`
	Revenue   *float64 `json:"revenue,omitempty"`
	NetIncome *float64 `json:"n_income,omitempty"`
}

// Fundamental groups financial statement data for one stock.
type Fundamental struct {
	Latest       *FinaIndicator `json:"fina_indicator_latest,omitempty"`
	IncomeRecent []IncomeRow    `json:"income_recent,omitempty"`
	PE           *float64       `json:"pe,omitempty"`
	PB           *float64       `json:"pb,omitempty"`
	TotalMarketV *float64       `json:"total_mv,omitempty"`
}

// NewsItem is a single news article or announcement.
type NewsItem struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Summary     string    `json:"summary,omitempty"`
}

// Sentiment summarizes news tone for the entity.
type Sentiment struct {
	Overall     string             `json:"overall"` // positive | neutral | negative
	Score       float64            `json:"score"`   // 0..100
	Counts      map[string]int     `json:"counts,omitempty"`
	Percentages map[string]float64 `json:"percentages,omitempty"`
	Items       []NewsItem         `json:"items,omitempty"`
}

// CapitalFlow holds recent money flow figures for the stock.
type CapitalFlow struct {
	TradeDate    string   `json:"trade_date"`
	NetAmount    *float64 `json:"net_amount,omitempty"`     // 万元
	MainNet      *float64 `json:"main_net,omitempty"`       // large + extra-large orders
	SmallNet     *float64 `json:"small_net,omitempty"`
}

// Macro is a snapshot of macro indicators used for scoring.
type Macro struct {
	M2YoY        *float64 `json:"m2_yoy,omitempty"`
	ShiborON     *float64 `json:"shibor_on,omitempty"`
	CPIYoY       *float64 `json:"cpi_yoy,omitempty"`
}

// Concept is one concept board membership.
type Concept struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Forecast is the optional output of the time-series forecasting service.
type Forecast struct {
	Horizon    string  `json:"horizon"`
	PredClose  float64 `json:"pred_close"`
	Direction  string  `json:"direction"` // up | down | flat
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model"`
}

// AggregatedSnapshot is the merged multi-source view of one entity, built
// once per analysis request and immutable after construction.
type AggregatedSnapshot struct {
	Base        StockBase               `json:"base"`
	GeneratedAt time.Time               `json:"generated_at"`
	Prices      []Bar                   `json:"prices,omitempty"`
	Technical   *Technical              `json:"technical,omitempty"`
	Fundamental *Fundamental            `json:"fundamental,omitempty"`
	Sentiment   *Sentiment              `json:"sentiment,omitempty"`
	CapitalFlow *CapitalFlow            `json:"capital_flow,omitempty"`
	Macro       *Macro                  `json:"macro,omitempty"`
	Concepts    []Concept               `json:"concepts,omitempty"`
	Forecast    *Forecast               `json:"forecast,omitempty"`
	Score       *ScoreCard              `json:"scorecard,omitempty"`
	Narrative   string                  `json:"narrative,omitempty"`
	LLMUsed     bool                    `json:"llm_used"`
	Sources     map[string]SourceResult `json:"sources"`
}
