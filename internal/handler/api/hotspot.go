package api

import (
	"time"

	models "AShareLab/internal/domain/models"
	"AShareLab/internal/service/stream"
	"AShareLab/internal/usecase"
	xhttp "AShareLab/pkg/http"
	xlogger "AShareLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HotspotHandler serves keyword/theme analysis.
type HotspotHandler struct {
	logger  *xlogger.Logger
	hotspot *usecase.HotspotUseCase
}

func NewHotspotHandler(logger *xlogger.Logger, hotspot *usecase.HotspotUseCase) *HotspotHandler {
	return &HotspotHandler{logger: logger, hotspot: hotspot}
}

func (h *HotspotHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/hotspot", h.Hotspot)
	g.POST("/hotspot", h.Hotspot)
	g.GET("/hotspot/stream", h.HotspotStream)
}

// Hotspot runs the hotspot pipeline and returns the result in one response.
func (h *HotspotHandler) Hotspot(c echo.Context) error {
	req := &models.HotspotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.hotspot.Analyze(c.Request().Context(), req.Keyword, req.Force, stream.Nop{})
	if err != nil {
		h.logger.Error("hotspot usecase error", xlogger.String("keyword", req.Keyword), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// HotspotStream runs the pipeline while streaming progress over SSE.
func (h *HotspotHandler) HotspotStream(c echo.Context) error {
	req := &models.HotspotRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	w, err := newSSEWriter(c)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	ctx := c.Request().Context()
	rep := stream.NewChannel(64)

	type outcome struct {
		res *models.HotspotResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer rep.Close()
		res, err := h.hotspot.Analyze(ctx, req.Keyword, req.Force, rep)
		done <- outcome{res, err}
	}()

	if err := w.Event("start", map[string]any{"keyword": req.Keyword, "timestamp": time.Now()}); err != nil {
		return nil
	}

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
		case ev, ok := <-rep.Events():
			if !ok {
				out := <-done
				if out.err != nil {
					_ = w.Event("error", map[string]any{"message": out.err.Error()})
				} else {
					_ = w.Event("result", out.res)
				}
				_ = w.Event("end", map[string]any{"timestamp": time.Now()})
				return nil
			}
			if err := w.Event("progress", ev); err != nil {
				return nil
			}
		}
	}
}
