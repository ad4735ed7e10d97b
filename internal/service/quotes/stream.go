package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"AShareLab/internal/domain/models"
	drepo "AShareLab/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a QuoteStream over a WebSocket quote feed pushing index
// ticks during trading hours. The feed uses a simple JSON frame protocol:
// {"type":"quote","data":[{"code":"000001.SH","name":"上证指数","price":...,"pct":...,"vol":...,"amt":...,"t":...}]}
type Client struct {
	websocketURL   string
	indices        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a quote stream client subscribed to the given index codes.
func New(websocketURL string, indices []string, reconnectDelay, pingInterval time.Duration) drepo.QuoteStream {
	return &Client{
		websocketURL:   websocketURL,
		indices:        indices,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("quotes connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("quotes: connected")
	return nil
}

// Subscribe subscribes to configured index codes.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("quotes not connected")
	}
	for _, code := range c.indices {
		msg := map[string]string{"type": "subscribe", "code": code}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", code, err)
		}
		log.Printf("quotes: subscribed %s", code)
	}
	return nil
}

type wsQuote struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Pct    float64 `json:"pct"`
	Volume float64 `json:"vol"`
	Amount float64 `json:"amt"`
	T      int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsQuote `json:"data"`
}

// Read streams quote events and errors until ctx ends or the socket fails.
func (c *Client) Read(ctx context.Context) (<-chan *models.IndexQuote, <-chan error) {
	quotes := make(chan *models.IndexQuote, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("quotes conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("quotes read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-quote frames
					continue
				}
				if m.Type != "quote" {
					continue
				}
				for _, d := range m.Data {
					q := &models.IndexQuote{
						TSCode:    d.Code,
						Name:      d.Name,
						Close:     d.Price,
						PctChg:    d.Pct,
						Volume:    d.Volume,
						Amount:    d.Amount,
						TradeDate: time.UnixMilli(d.T).Format("20060102"),
						Realtime:  true,
					}
					select {
					case quotes <- q:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return quotes, errs
}

// Reconnect closes and reconnects with a backoff delay.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
