package tushare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"AShareLab/internal/domain/models"
	drepo "AShareLab/internal/domain/repository"
	"AShareLab/internal/service/ratelimit"
	xhttp "AShareLab/pkg/http"
)

// ErrRateLimited is returned when the per-minute quota left no room for the
// call. It is retriable.
var ErrRateLimited = errors.New("tushare: rate limited")

const limiterKey = "tushare"

// Client talks to a TuShare-style pro API: every dataset is a POST with an
// api_name and params, answered as a fields/items table. All responses are
// decoded into typed rows here; no raw tables leave this package.
type Client struct {
	token     string
	baseURL   string
	client    *xhttp.Client
	limiter   *ratelimit.Limiter
	perMin    float64
	quotaWait time.Duration
	metrics   drepo.Metrics
}

// Option configures Client.
type Option func(*Client)

// WithMetrics attaches a metrics recorder.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithQuota sets the per-minute call quota and the max wait for a slot.
func WithQuota(callsPerMin int, quotaWait time.Duration) Option {
	return func(c *Client) {
		if callsPerMin > 0 {
			c.perMin = float64(callsPerMin)
		}
		if quotaWait > 0 {
			c.quotaWait = quotaWait
		}
	}
}

// New creates a provider client.
func New(token, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		token:     token,
		baseURL:   baseURL,
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:   ratelimit.New(),
		perMin:    200,
		quotaWait: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

type apiResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Fields []string `json:"fields"`
		Items  [][]any  `json:"items"`
	} `json:"data"`
}

// table is one decoded provider response with column lookup.
type table struct {
	idx   map[string]int
	items [][]any
}

func (t *table) str(row []any, col string) string {
	i, ok := t.idx[col]
	if !ok || i >= len(row) || row[i] == nil {
		return ""
	}
	if s, ok := row[i].(string); ok {
		return s
	}
	return fmt.Sprintf("%v", row[i])
}

func (t *table) f64(row []any, col string) *float64 {
	i, ok := t.idx[col]
	if !ok || i >= len(row) || row[i] == nil {
		return nil
	}
	switch v := row[i].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func (t *table) f64v(row []any, col string) float64 {
	if p := t.f64(row, col); p != nil {
		return *p
	}
	return 0
}

func (c *Client) call(ctx context.Context, apiName string, params map[string]string) (*table, error) {
	// One bucket gates every dataset: the provider counts calls per token.
	if err := c.limiter.Wait(ctx, limiterKey, c.perMin, c.perMin/60.0, c.quotaWait); err != nil {
		if errors.Is(err, ratelimit.ErrQuotaExhausted) {
			c.record(apiName, "rate_limited")
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, apiName)
		}
		return nil, err
	}

	var resp apiResponse
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL,
		Body: apiRequest{
			APIName: apiName,
			Token:   c.token,
			Params:  params,
		},
	}, &resp)
	if err != nil {
		c.record(apiName, "error")
		return nil, fmt.Errorf("tushare %s: %w", apiName, err)
	}
	if resp.Code != 0 {
		c.record(apiName, "error")
		return nil, fmt.Errorf("tushare %s: code %d: %s", apiName, resp.Code, resp.Msg)
	}

	c.record(apiName, "ok")
	idx := make(map[string]int, len(resp.Data.Fields))
	for i, f := range resp.Data.Fields {
		idx[f] = i
	}
	return &table{idx: idx, items: resp.Data.Items}, nil
}

func (c *Client) record(api, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordUpstreamCall(api, outcome)
	}
}

// Daily returns daily bars oldest-first for the date range (YYYYMMDD).
func (c *Client) Daily(ctx context.Context, tsCode, start, end string) ([]models.Bar, error) {
	t, err := c.call(ctx, "daily", map[string]string{
		"ts_code": tsCode, "start_date": start, "end_date": end,
	})
	if err != nil {
		return nil, err
	}
	return barsFromTable(t), nil
}

// IndexDaily returns daily bars for an index.
func (c *Client) IndexDaily(ctx context.Context, tsCode, start, end string) ([]models.Bar, error) {
	t, err := c.call(ctx, "index_daily", map[string]string{
		"ts_code": tsCode, "start_date": start, "end_date": end,
	})
	if err != nil {
		return nil, err
	}
	return barsFromTable(t), nil
}

func barsFromTable(t *table) []models.Bar {
	bars := make([]models.Bar, 0, len(t.items))
	for _, row := range t.items {
		bars = append(bars, models.Bar{
			TradeDate: t.str(row, "trade_date"),
			Open:      t.f64v(row, "open"),
			High:      t.f64v(row, "high"),
			Low:       t.f64v(row, "low"),
			Close:     t.f64v(row, "close"),
			Volume:    t.f64v(row, "vol"),
			Amount:    t.f64v(row, "amount"),
			PctChg:    t.f64v(row, "pct_chg"),
		})
	}
	// Provider returns newest-first; the indicator math wants oldest-first.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars
}

// DailyBasic returns valuation figures for one stock.
func (c *Client) DailyBasic(ctx context.Context, tsCode string) (*models.Fundamental, error) {
	t, err := c.call(ctx, "daily_basic", map[string]string{"ts_code": tsCode})
	if err != nil {
		return nil, err
	}
	f := &models.Fundamental{}
	if len(t.items) > 0 {
		row := t.items[0]
		f.PE = t.f64(row, "pe")
		f.PB = t.f64(row, "pb")
		f.TotalMarketV = t.f64(row, "total_mv")
	}
	return f, nil
}

// FinaIndicator returns the latest reported financial indicator row.
func (c *Client) FinaIndicator(ctx context.Context, tsCode string) (*models.FinaIndicator, error) {
	t, err := c.call(ctx, "fina_indicator", map[string]string{"ts_code": tsCode})
	if err != nil {
		return nil, err
	}
	if len(t.items) == 0 {
		return nil, nil
	}
	row := t.items[0]
	return &models.FinaIndicator{
		EndDate:         t.str(row, "end_date"),
		ROE:             t.f64(row, "roe"),
		NetProfitMargin: t.f64(row, "netprofit_margin"),
		GrossMargin:     t.f64(row, "grossprofit_margin"),
		EPS:             t.f64(row, "eps"),
		DebtToAssets:    t.f64(row, "debt_to_assets"),
	}, nil
}

// IncomeRecent returns recent quarterly income rows, newest first.
func (c *Client) IncomeRecent(ctx context.Context, tsCode string, quarters int) ([]models.IncomeRow, error) {
	t, err := c.call(ctx, "income", map[string]string{"ts_code": tsCode})
	if err != nil {
		return nil, err
	}
	rows := make([]models.IncomeRow, 0, quarters)
	for _, row := range t.items {
		rows = append(rows, models.IncomeRow{
			EndDate:   t.str(row, "end_date"),
			Revenue:   t.f64(row, "revenue"),
			NetIncome: t.f64(row, "n_income"),
		})
		if len(rows) >= quarters {
			break
		}
	}
	return rows, nil
}

// MoneyFlow returns the most recent money flow row in the range.
func (c *Client) MoneyFlow(ctx context.Context, tsCode, start, end string) (*models.CapitalFlow, error) {
	t, err := c.call(ctx, "moneyflow", map[string]string{
		"ts_code": tsCode, "start_date": start, "end_date": end,
	})
	if err != nil {
		return nil, err
	}
	if len(t.items) == 0 {
		return nil, nil
	}
	row := t.items[0]
	cf := &models.CapitalFlow{TradeDate: t.str(row, "trade_date")}
	cf.NetAmount = t.f64(row, "net_mf_amount")
	if lg, xl := t.f64(row, "net_lg_amount"), t.f64(row, "net_elg_amount"); lg != nil || xl != nil {
		var main float64
		if lg != nil {
			main += *lg
		}
		if xl != nil {
			main += *xl
		}
		cf.MainNet = &main
	}
	cf.SmallNet = t.f64(row, "net_sm_amount")
	return cf, nil
}

// Concepts returns concept board memberships for one stock.
func (c *Client) Concepts(ctx context.Context, tsCode string) ([]models.Concept, error) {
	t, err := c.call(ctx, "concept_detail", map[string]string{"ts_code": tsCode})
	if err != nil {
		return nil, err
	}
	out := make([]models.Concept, 0, len(t.items))
	for _, row := range t.items {
		out = append(out, models.Concept{
			Code: t.str(row, "id"),
			Name: t.str(row, "concept_name"),
		})
	}
	return out, nil
}

// ConceptMembers returns stocks belonging to concepts matching keyword.
func (c *Client) ConceptMembers(ctx context.Context, keyword string) ([]models.StockBase, error) {
	boards, err := c.call(ctx, "concept", nil)
	if err != nil {
		return nil, err
	}
	var out []models.StockBase
	for _, row := range boards.items {
		name := boards.str(row, "name")
		if keyword == "" || !strings.Contains(name, keyword) {
			continue
		}
		members, err := c.call(ctx, "concept_detail", map[string]string{"id": boards.str(row, "code")})
		if err != nil {
			return nil, err
		}
		for _, m := range members.items {
			out = append(out, models.StockBase{
				TSCode: members.str(m, "ts_code"),
				Name:   members.str(m, "name"),
			})
		}
		// One matching board is enough for hotspot purposes.
		break
	}
	return out, nil
}

// MarketBreadth derives advance/decline counts for a trade date.
func (c *Client) MarketBreadth(ctx context.Context, tradeDate string) (*models.MarketBreadth, error) {
	t, err := c.call(ctx, "daily", map[string]string{"trade_date": tradeDate})
	if err != nil {
		return nil, err
	}
	b := &models.MarketBreadth{}
	for _, row := range t.items {
		pct := t.f64v(row, "pct_chg")
		switch {
		case pct > 9.9:
			b.LimitUp++
			b.Up++
		case pct < -9.9:
			b.LimitDown++
			b.Down++
		case pct > 0:
			b.Up++
		case pct < 0:
			b.Down++
		default:
			b.Flat++
		}
	}
	return b, nil
}

// Sectors returns industry index performance for a trade date, sorted as
// the provider returns them.
func (c *Client) Sectors(ctx context.Context, tradeDate string) ([]models.SectorPerformance, error) {
	t, err := c.call(ctx, "sw_daily", map[string]string{"trade_date": tradeDate})
	if err != nil {
		return nil, err
	}
	out := make([]models.SectorPerformance, 0, len(t.items))
	for _, row := range t.items {
		out = append(out, models.SectorPerformance{
			Code:   t.str(row, "ts_code"),
			Name:   t.str(row, "name"),
			PctChg: t.f64v(row, "pct_change"),
		})
	}
	return out, nil
}

// MarketMoneyFlow returns market-wide flows for a trade date.
func (c *Client) MarketMoneyFlow(ctx context.Context, tradeDate string) (*models.MarketCapitalFlow, error) {
	t, err := c.call(ctx, "moneyflow_hsgt", map[string]string{"trade_date": tradeDate})
	if err != nil {
		return nil, err
	}
	cf := &models.MarketCapitalFlow{TradeDate: tradeDate}
	if len(t.items) > 0 {
		cf.NorthNet = t.f64(t.items[0], "north_money")
	}
	return cf, nil
}

// Macro returns the macro indicator snapshot used for scoring.
func (c *Client) Macro(ctx context.Context) (*models.Macro, error) {
	m := &models.Macro{}

	if t, err := c.call(ctx, "cn_m", nil); err == nil && len(t.items) > 0 {
		m.M2YoY = t.f64(t.items[0], "m2_yoy")
	} else if err != nil {
		return nil, err
	}
	if t, err := c.call(ctx, "shibor", nil); err == nil && len(t.items) > 0 {
		m.ShiborON = t.f64(t.items[0], "on")
	}
	if t, err := c.call(ctx, "cn_cpi", nil); err == nil && len(t.items) > 0 {
		m.CPIYoY = t.f64(t.items[0], "nt_yoy")
	}
	return m, nil
}

// Announcements returns recent company announcements as news items.
func (c *Client) Announcements(ctx context.Context, tsCode string, limit int) ([]models.NewsItem, error) {
	t, err := c.call(ctx, "anns_d", map[string]string{"ts_code": tsCode})
	if err != nil {
		return nil, err
	}
	out := make([]models.NewsItem, 0, limit)
	for _, row := range t.items {
		item := models.NewsItem{
			Title:  t.str(row, "title"),
			Source: "announcement",
			URL:    t.str(row, "url"),
		}
		if d, ok := parseYYYYMMDD(t.str(row, "ann_date")); ok {
			item.PublishedAt = d
		}
		out = append(out, item)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func parseYYYYMMDD(s string) (time.Time, bool) {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var _ drepo.MarketData = (*Client)(nil)
