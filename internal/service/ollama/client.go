package ollama

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"AShareLab/internal/domain/models"
	drepo "AShareLab/internal/domain/repository"
)

// Client talks to a local Ollama server. All Summarize* methods return an
// error when the model is unreachable so callers can fall back to templated
// text instead of serving an empty narrative.
type Client struct {
	client     *resty.Client
	baseURL    string
	model      string
	numPredict int
}

// Option configures Client.
type Option func(*Client)

// WithNumPredict caps the number of generated tokens.
func WithNumPredict(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.numPredict = n
		}
	}
}

// New creates an Ollama client. baseURL is e.g. http://127.0.0.1:11434.
func New(baseURL, model string, timeout time.Duration, opts ...Option) *Client {
	rc := resty.New()
	rc.SetTimeout(timeout)

	c := &Client{
		client:     rc,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		numPredict: 512,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Error   string      `json:"error,omitempty"`
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// thinkRe strips reasoning blocks some models emit before the answer.
var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

func stripThink(s string) string {
	return strings.TrimSpace(thinkRe.ReplaceAllString(s, ""))
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"num_predict": c.numPredict},
	}
	var out generateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(c.baseURL + "/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("ollama generate: status %d", resp.StatusCode())
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama generate: %s", out.Error)
	}
	text := stripThink(out.Response)
	if text == "" {
		return "", fmt.Errorf("ollama generate: empty response")
	}
	return text, nil
}

// Chat sends a multi-turn conversation through /api/chat.
func (c *Client) Chat(ctx context.Context, msgs []models.ChatMessage) (models.ChatMessage, error) {
	req := chatRequest{
		Model:   c.model,
		Stream:  false,
		Options: map[string]any{"num_predict": c.numPredict},
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}

	var out chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(c.baseURL + "/api/chat")
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("ollama chat: %w", err)
	}
	if resp.StatusCode() != 200 {
		return models.ChatMessage{}, fmt.Errorf("ollama chat: status %d", resp.StatusCode())
	}
	if out.Error != "" {
		return models.ChatMessage{}, fmt.Errorf("ollama chat: %s", out.Error)
	}
	text := stripThink(out.Message.Content)
	if text == "" {
		return models.ChatMessage{}, fmt.Errorf("ollama chat: empty response")
	}
	return models.ChatMessage{Role: "assistant", Content: text}, nil
}

// SummarizeStock produces a short Chinese investment commentary for one stock.
func (c *Client) SummarizeStock(ctx context.Context, snap *models.AggregatedSnapshot, card *models.ScoreCard) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "你是一名A股市场分析师。请根据以下结构化数据，用中文写一段150字以内的投资点评，务必提示风险，不构成投资建议。\n\n")
	fmt.Fprintf(&b, "股票：%s（%s），行业：%s\n", snap.Base.Name, snap.Base.TSCode, snap.Base.Industry)
	if t := snap.Technical; t != nil {
		fmt.Fprintf(&b, "最新收盘价：%.2f（%s）\n", t.LastClose, t.DataDate)
		if t.RSI14 != nil {
			fmt.Fprintf(&b, "RSI14：%.1f\n", *t.RSI14)
		}
		if t.Return20D != nil {
			fmt.Fprintf(&b, "近20日涨跌幅：%.2f%%\n", *t.Return20D)
		}
	}
	if s := snap.Sentiment; s != nil {
		fmt.Fprintf(&b, "新闻情绪：%s\n", s.Overall)
	}
	if card != nil {
		fmt.Fprintf(&b, "综合评分：%.0f/100，评级：%s，建议：%s\n", card.Total, card.Rating, card.Suggestion)
	}
	return c.generate(ctx, b.String())
}

// SummarizeHotspot produces a Chinese summary of a hotspot/concept analysis.
func (c *Client) SummarizeHotspot(ctx context.Context, hot *models.HotspotResult) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "你是一名A股市场分析师。请用中文总结以下热点题材，150字以内，提示风险。\n\n题材关键词：%s\n", hot.Keyword)
	if hot.Sentiment != nil {
		fmt.Fprintf(&b, "整体新闻情绪：%s\n", hot.Sentiment.Overall)
	}
	for i, n := range hot.News {
		if i >= 8 {
			break
		}
		fmt.Fprintf(&b, "- %s\n", n.Title)
	}
	for _, st := range hot.Stocks {
		fmt.Fprintf(&b, "相关个股：%s（%s）收盘 %.2f\n", st.Base.Name, st.Base.TSCode, st.LastClose)
	}
	return c.generate(ctx, b.String())
}

// SummarizeMarket produces a Chinese summary of the whole-market snapshot.
func (c *Client) SummarizeMarket(ctx context.Context, mkt *models.MarketOverview) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "你是一名A股市场分析师。请根据以下大盘数据用中文写一段200字以内的市场综述。\n\n")
	for _, ix := range mkt.Indices {
		fmt.Fprintf(&b, "%s：%.2f（%+.2f%%）\n", ix.Name, ix.Close, ix.PctChg)
	}
	if br := mkt.Breadth; br != nil {
		fmt.Fprintf(&b, "涨跌家数：上涨%d 下跌%d 平盘%d，涨停%d 跌停%d\n", br.Up, br.Down, br.Flat, br.LimitUp, br.LimitDown)
	}
	if cf := mkt.CapitalFlow; cf != nil && cf.NorthNet != nil {
		fmt.Fprintf(&b, "北向资金净流入：%.2f亿元\n", *cf.NorthNet)
	}
	for i, n := range mkt.PolicyNews {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "要闻：%s\n", n.Title)
	}
	return c.generate(ctx, b.String())
}

var _ drepo.Narrator = (*Client)(nil)
