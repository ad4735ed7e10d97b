package eastmoney

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"AShareLab/internal/domain/models"
	drepo "AShareLab/internal/domain/repository"
)

const defaultBaseURL = "https://so.eastmoney.com"

// Client scrapes Eastmoney search result pages for recent news. Results are
// typed NewsItem lists; sentiment scoring happens downstream.
type Client struct {
	client   *resty.Client
	baseURL  string
	maxItems int
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the search endpoint (used by tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithMaxItems caps the number of items per query.
func WithMaxItems(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxItems = n
		}
	}
}

// New creates a news client.
func New(timeout time.Duration, opts ...Option) *Client {
	rc := resty.New()
	rc.SetTimeout(timeout)
	rc.SetHeader("User-Agent", "Mozilla/5.0 (compatible; AShareLab/1.0)")

	c := &Client{client: rc, baseURL: defaultBaseURL, maxItems: 15}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StockNews searches news mentioning the stock name.
func (c *Client) StockNews(ctx context.Context, name string, days int) ([]models.NewsItem, error) {
	return c.search(ctx, name, days)
}

// KeywordNews searches news for a free-text keyword.
func (c *Client) KeywordNews(ctx context.Context, keyword string, days int) ([]models.NewsItem, error) {
	return c.search(ctx, keyword, days)
}

func (c *Client) search(ctx context.Context, query string, days int) ([]models.NewsItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("eastmoney: empty query")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("keyword", query).
		Get(c.baseURL + "/news/s")
	if err != nil {
		return nil, fmt.Errorf("eastmoney search %q: %w", query, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("eastmoney search %q: status %d", query, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("eastmoney parse: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	items := make([]models.NewsItem, 0, c.maxItems)
	doc.Find("div.news_item, div.news-item").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find("a").First().Text())
		if title == "" {
			return true
		}
		href, _ := s.Find("a").First().Attr("href")
		summary := strings.TrimSpace(s.Find("div.news_item_c, p").First().Text())

		item := models.NewsItem{
			Title:       title,
			Source:      "eastmoney",
			URL:         href,
			Summary:     summary,
			PublishedAt: time.Now(),
		}
		if ts := strings.TrimSpace(s.Find("span.news_item_time, span.time").First().Text()); ts != "" {
			if t, err := time.Parse("2006-01-02 15:04:05", ts); err == nil {
				item.PublishedAt = t
			}
		}
		if days > 0 && item.PublishedAt.Before(cutoff) {
			return true
		}
		items = append(items, item)
		return len(items) < c.maxItems
	})

	return items, nil
}

var _ drepo.NewsSource = (*Client)(nil)
