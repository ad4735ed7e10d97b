package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"AShareLab/internal/domain/models"
	domrepo "AShareLab/internal/domain/repository"
	"AShareLab/pkg/logger"
)

// QuotePipeline sits between the WebSocket quote feed and the market
// overview. It validates and throttles incoming index quotes, keeps the
// latest reading per index, and reconnects the feed when it drops.
type QuotePipeline struct {
	stream  domrepo.QuoteStream
	metrics domrepo.Metrics
	log     *logger.Logger

	maxRPS   int
	mu       sync.RWMutex
	latest   map[string]models.IndexQuote
	lastSeen map[string]time.Time
	started  bool
	stopCh   chan struct{}
}

type PipelineOption func(*QuotePipeline)

// WithMaxRPS sets the max accepted quotes per second per index.
func WithMaxRPS(n int) PipelineOption {
	return func(p *QuotePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// NewQuotePipeline creates a pipeline over the given quote stream.
func NewQuotePipeline(stream domrepo.QuoteStream, metrics domrepo.Metrics, log *logger.Logger, opts ...PipelineOption) *QuotePipeline {
	p := &QuotePipeline{
		stream:   stream,
		metrics:  metrics,
		log:      log,
		maxRPS:   5,
		latest:   make(map[string]models.IndexQuote),
		lastSeen: make(map[string]time.Time),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start connects the feed and consumes it in the background, reconnecting
// with backoff on failure. Safe to call once.
func (p *QuotePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.run(ctx)
}

// Stop ends the background consumer.
func (p *QuotePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

func (p *QuotePipeline) run(ctx context.Context) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		default:
		}

		if !p.stream.IsConnected() {
			if err := p.stream.Connect(ctx); err != nil {
				p.metrics.RecordError("quotes_connect")
				p.log.Warn("quote feed connect failed", logger.Error(err))
				time.Sleep(backoff)
				if backoff < 30*time.Second {
					backoff *= 2
				}
				continue
			}
			if err := p.stream.Subscribe(ctx); err != nil {
				p.metrics.RecordError("quotes_subscribe")
				p.log.Warn("quote feed subscribe failed", logger.Error(err))
				_ = p.stream.Close()
				continue
			}
			backoff = time.Second
		}

		quotes, errs := p.stream.Read(ctx)
	consume:
		for {
			select {
			case <-ctx.Done():
				_ = p.stream.Close()
				return
			case <-p.stopCh:
				_ = p.stream.Close()
				return
			case q, ok := <-quotes:
				if !ok {
					break consume
				}
				if err := p.process(q); err != nil {
					p.metrics.RecordError("quotes_process")
				}
			case err, ok := <-errs:
				if ok && err != nil {
					p.log.Warn("quote feed error", logger.Error(err))
				}
				break consume
			}
		}
		_ = p.stream.Close()
	}
}

func (p *QuotePipeline) process(q *models.IndexQuote) error {
	if err := validateQuote(q); err != nil {
		return err
	}
	now := time.Now()
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.allow(q.TSCode, now) {
		return nil
	}
	p.latest[q.TSCode] = *q
	return nil
}

// Latest returns the most recent quote per index code.
func (p *QuotePipeline) Latest() map[string]models.IndexQuote {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]models.IndexQuote, len(p.latest))
	for k, v := range p.latest {
		out[k] = v
	}
	return out
}

func validateQuote(q *models.IndexQuote) error {
	if q == nil {
		return fmt.Errorf("quote nil")
	}
	if q.TSCode == "" {
		return fmt.Errorf("code empty")
	}
	if q.Close < 0 || q.Volume < 0 {
		return fmt.Errorf("negative price/volume")
	}
	return nil
}

// allow is a simple per-code throttle, at most maxRPS updates per second.
// Caller holds the lock.
func (p *QuotePipeline) allow(code string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	last := p.lastSeen[code]
	if !last.IsZero() && now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[code] = now
	return true
}
