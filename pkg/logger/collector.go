package logger

import (
	"sync"
	"time"
)

// LogEntry is one captured log line held in the collector ring.
type LogEntry struct {
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
	Caller    string         `json:"caller"`
	Timestamp time.Time      `json:"timestamp"`
}

// LogCollector keeps a bounded ring of recent log entries and fans them out
// to live subscribers. It backs the /logs/stream endpoint: new connections
// replay the ring, then follow appended entries.
type LogCollector struct {
	mu       sync.Mutex
	ring     []LogEntry
	capacity int
	next     int
	full     bool
	subs     map[chan LogEntry]struct{}
}

// NewLogCollector creates a collector holding up to capacity recent entries.
func NewLogCollector(capacity int) *LogCollector {
	if capacity <= 0 {
		capacity = 200
	}
	return &LogCollector{
		ring:     make([]LogEntry, capacity),
		capacity: capacity,
		subs:     make(map[chan LogEntry]struct{}),
	}
}

// AddLog records one entry and notifies subscribers. Slow subscribers are
// skipped rather than blocking the logging path.
func (c *LogCollector) AddLog(level, message string, fields map[string]any, caller string) {
	e := LogEntry{
		Level:     level,
		Message:   message,
		Fields:    fields,
		Caller:    caller,
		Timestamp: time.Now(),
	}

	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % c.capacity
	if c.next == 0 {
		c.full = true
	}
	for ch := range c.subs {
		select {
		case ch <- e:
		default:
		}
	}
	c.mu.Unlock()
}

// Recent returns the ring contents in chronological order.
func (c *LogCollector) Recent() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []LogEntry
	if c.full {
		out = make([]LogEntry, 0, c.capacity)
		for i := 0; i < c.capacity; i++ {
			out = append(out, c.ring[(c.next+i)%c.capacity])
		}
	} else {
		out = make([]LogEntry, c.next)
		copy(out, c.ring[:c.next])
	}
	return out
}

// Subscribe registers a live feed. The returned cancel func must be called
// when the consumer goes away.
func (c *LogCollector) Subscribe() (<-chan LogEntry, func()) {
	ch := make(chan LogEntry, 64)

	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		delete(c.subs, ch)
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close removes all subscribers.
func (c *LogCollector) Close() {
	c.mu.Lock()
	for ch := range c.subs {
		delete(c.subs, ch)
	}
	c.mu.Unlock()
}
