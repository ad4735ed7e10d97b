package api

import (
	"time"

	xhttp "AShareLab/pkg/http"
	xlogger "AShareLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

// LogsHandler streams recent and live application logs over SSE for the
// dashboard's diagnostics panel.
type LogsHandler struct {
	logger *xlogger.Logger
}

func NewLogsHandler(logger *xlogger.Logger) *LogsHandler {
	return &LogsHandler{logger: logger}
}

func (h *LogsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/logs/stream", h.Stream)
}

// Stream replays the ring buffer then follows new entries until the client
// disconnects.
func (h *LogsHandler) Stream(c echo.Context) error {
	collector := h.logger.Collector()
	if collector == nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("log collector not attached"))
	}
	w, err := newSSEWriter(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	if err := w.Event("start", map[string]any{"timestamp": time.Now()}); err != nil {
		return nil
	}
	recent := collector.Recent()
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), len(recent))
	if limit < len(recent) && limit >= 0 {
		recent = recent[len(recent)-limit:]
	}
	for _, entry := range recent {
		if err := w.Event("progress", entry); err != nil {
			return nil
		}
	}

	live, cancel := collector.Subscribe()
	defer cancel()

	ctx := c.Request().Context()
	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Ping(); err != nil {
				return nil
			}
		case entry, ok := <-live:
			if !ok {
				_ = w.Event("end", map[string]any{"timestamp": time.Now()})
				return nil
			}
			if err := w.Event("progress", entry); err != nil {
				return nil
			}
		}
	}
}
