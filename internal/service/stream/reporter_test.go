package stream

import (
	"testing"
)

func TestChannelOrdering(t *testing.T) {
	c := NewChannel(8)
	c.Step("resolve:start", nil)
	c.Step("resolve:done", map[string]any{"ts_code": "600519.SH"})
	c.Step("complete", nil)
	c.Close()

	want := []string{"resolve:start", "resolve:done", "complete"}
	i := 0
	for ev := range c.Events() {
		if i >= len(want) {
			t.Fatalf("unexpected extra event %s", ev.Step)
		}
		if ev.Step != want[i] {
			t.Fatalf("event %d: expected %s, got %s", i, want[i], ev.Step)
		}
		if ev.Timestamp.IsZero() {
			t.Fatalf("event %s has zero timestamp", ev.Step)
		}
		i++
	}
	if i != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), i)
	}
}

func TestChannelDropsWhenFull(t *testing.T) {
	c := NewChannel(2)
	for i := 0; i < 10; i++ {
		c.Step("fetch:parallel:start", nil) // must not block
	}
	c.Close()

	n := 0
	for range c.Events() {
		n++
	}
	if n != 2 {
		t.Fatalf("expected buffer-capped 2 events, got %d", n)
	}
}

func TestChannelCloseIdempotent(t *testing.T) {
	c := NewChannel(1)
	c.Close()
	c.Close()
	c.Step("complete", nil) // no panic after close

	if _, ok := <-c.Events(); ok {
		t.Fatalf("expected closed channel")
	}
}

func TestNopReporter(t *testing.T) {
	var r Reporter = Nop{}
	r.Step("resolve:start", nil)
}
