package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// sseWriter emits server-sent events over an echo response. The event
// vocabulary is fixed per stream: start, progress (repeated), then result or
// error, then end. Heartbeats go out as SSE comment lines so they never
// extend the event vocabulary.
type sseWriter struct {
	c       echo.Context
	flusher http.Flusher
}

func newSSEWriter(c echo.Context) (*sseWriter, error) {
	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported")
	}
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set(echo.HeaderCacheControl, "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()
	return &sseWriter{c: c, flusher: flusher}, nil
}

// Event writes one named event with a JSON payload.
func (w *sseWriter) Event(name string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse marshal %s: %w", name, err)
	}
	if _, err := fmt.Fprintf(w.c.Response(), "event: %s\ndata: %s\n\n", name, b); err != nil {
		return err
	}
	w.flusher.Flush()
	return nil
}

// Ping writes a comment-line heartbeat to keep proxies from closing the
// connection between events.
func (w *sseWriter) Ping() error {
	if _, err := fmt.Fprint(w.c.Response(), ": ping\n\n"); err != nil {
		return err
	}
	w.flusher.Flush()
	return nil
}

const sseHeartbeat = 15 * time.Second
