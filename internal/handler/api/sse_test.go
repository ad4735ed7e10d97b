package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	models "AShareLab/internal/domain/models"

	"github.com/labstack/echo/v4"
)

func newTestSSE(t *testing.T) (*sseWriter, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/analyze/stream", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	w, err := newSSEWriter(c)
	if err != nil {
		t.Fatalf("newSSEWriter: %v", err)
	}
	return w, rec
}

func TestSSEWriterHeaders(t *testing.T) {
	_, rec := newTestSSE(t)
	if got := rec.Header().Get(echo.HeaderContentType); got != "text/event-stream" {
		t.Fatalf("content type: %s", got)
	}
	if got := rec.Header().Get(echo.HeaderCacheControl); got != "no-cache" {
		t.Fatalf("cache control: %s", got)
	}
	if got := rec.Header().Get("X-Accel-Buffering"); got != "no" {
		t.Fatalf("accel buffering: %s", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
}

func TestSSEWriterEventFraming(t *testing.T) {
	w, rec := newTestSSE(t)

	if err := w.Event("start", map[string]any{"keyword": "茅台"}); err != nil {
		t.Fatalf("event: %v", err)
	}
	if err := w.Event("progress", map[string]any{"step": "resolve:start"}); err != nil {
		t.Fatalf("event: %v", err)
	}
	if err := w.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := w.Event("end", map[string]any{}); err != nil {
		t.Fatalf("event: %v", err)
	}

	body := rec.Body.String()
	frames := []string{
		"event: start\ndata: ",
		"event: progress\ndata: {\"step\":\"resolve:start\"}\n\n",
		": ping\n\n",
		"event: end\ndata: {}\n\n",
	}
	pos := 0
	for _, f := range frames {
		i := strings.Index(body[pos:], f)
		if i < 0 {
			t.Fatalf("frame %q missing or out of order in %q", f, body)
		}
		pos += i + len(f)
	}
	if !rec.Flushed {
		t.Fatalf("writer must flush after each frame")
	}
}

func TestAggErrorKind(t *testing.T) {
	err := &models.AggregationError{Kind: models.UnresolvableEntity, Name: "x"}
	if kind := aggErrorKind(err); kind != "unresolvable_entity" {
		t.Fatalf("expected unresolvable_entity, got %s", kind)
	}
	if kind := aggErrorKind(errors.New("boom")); kind != "internal" {
		t.Fatalf("expected internal, got %s", kind)
	}
}
