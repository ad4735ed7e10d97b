package stream

import (
	"sync"
	"time"

	"AShareLab/internal/domain/models"
)

// Reporter receives progress steps from a long-running pipeline. Pipelines
// call Step for every stage; implementations must never block the caller.
type Reporter interface {
	Step(step string, payload map[string]any)
}

// Nop discards all progress. Used for non-streaming request paths.
type Nop struct{}

func (Nop) Step(string, map[string]any) {}

// Channel forwards progress events to a buffered channel. The consumer
// (usually an SSE writer) drains Events until Close.
type Channel struct {
	mu     sync.Mutex
	ch     chan models.ProgressEvent
	closed bool
}

// NewChannel creates a channel reporter with a bounded buffer. Events are
// dropped, not blocked on, when the consumer falls behind.
func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = 64
	}
	return &Channel{ch: make(chan models.ProgressEvent, buffer)}
}

// Step records one progress event.
func (c *Channel) Step(step string, payload map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	ev := models.ProgressEvent{Step: step, Timestamp: time.Now(), Payload: payload}
	select {
	case c.ch <- ev:
	default:
		// consumer is behind, drop rather than stall the pipeline
	}
}

// Events returns the consumer side of the stream.
func (c *Channel) Events() <-chan models.ProgressEvent { return c.ch }

// Close ends the stream. Safe to call more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}
