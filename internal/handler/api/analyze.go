package api

import (
	"errors"
	"time"

	models "AShareLab/internal/domain/models"
	"AShareLab/internal/service/stream"
	"AShareLab/internal/usecase"
	xhttp "AShareLab/pkg/http"
	xlogger "AShareLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalyzeHandler serves entity resolution and the single-stock analysis
// pipeline, in both request/response and SSE streaming form.
type AnalyzeHandler struct {
	logger   *xlogger.Logger
	resolver *usecase.Resolver
	analyze  *usecase.AnalyzeUseCase
}

func NewAnalyzeHandler(logger *xlogger.Logger, resolver *usecase.Resolver, analyze *usecase.AnalyzeUseCase) *AnalyzeHandler {
	return &AnalyzeHandler{logger: logger, resolver: resolver, analyze: analyze}
}

func (h *AnalyzeHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/resolve", h.Resolve)
	g.GET("/analyze", h.Analyze)
	g.POST("/analyze", h.Analyze)
	g.GET("/analyze/stream", h.AnalyzeStream)
}

// Resolve maps a keyword to a stock identity without running the pipeline.
func (h *AnalyzeHandler) Resolve(c echo.Context) error {
	req := &models.ResolveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	base, err := h.resolver.Resolve(c.Request().Context(), req.Name)
	if err != nil {
		return h.aggError(c, err)
	}
	return xhttp.SuccessResponse(c, base)
}

// Analyze runs the full pipeline and returns the snapshot in one response.
func (h *AnalyzeHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	snap, err := h.analyze.Analyze(c.Request().Context(), req.Name, req.Force, stream.Nop{})
	if err != nil {
		h.logger.Error("analyze usecase error", xlogger.String("name", req.Name), xlogger.Error(err))
		return h.aggError(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

// AnalyzeStream runs the pipeline while streaming progress over SSE.
func (h *AnalyzeHandler) AnalyzeStream(c echo.Context) error {
	req := &models.AnalyzeRequest{}
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
		snap *models.AggregatedSnapshot
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer rep.Close()
		snap, err := h.analyze.Analyze(ctx, req.Name, req.Force, rep)
		done <- outcome{snap, err}
	}()

	if err := w.Event("start", map[string]any{"keyword": req.Name, "timestamp": time.Now()}); err != nil {
		return nil
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// client went away; pipeline is cancelled via the shared ctx
			return nil
		case <-ticker.C:
			if err := w.Ping(); err != nil {
				return nil
			}
		case ev, ok := <-rep.Events():
			if !ok {
				out := <-done
				if out.err != nil {
					_ = w.Event("error", map[string]any{"message": out.err.Error(), "kind": aggErrorKind(out.err)})
				} else {
					_ = w.Event("result", out.snap)
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

// aggError maps pipeline errors to HTTP status.
func (h *AnalyzeHandler) aggError(c echo.Context, err error) error {
	var aggErr *models.AggregationError
	if errors.As(err, &aggErr) {
		switch aggErr.Kind {
		case models.UnresolvableEntity:
			return xhttp.NotFoundResponse(c, map[string]any{"message": aggErr.Error(), "kind": string(aggErr.Kind)})
		case models.EmptyPrice:
			return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("no price data for %s", aggErr.Name))
		}
	}
	return xhttp.AppErrorResponse(c, err)
}

func aggErrorKind(err error) string {
	var aggErr *models.AggregationError
	if errors.As(err, &aggErr) {
		return string(aggErr.Kind)
	}
	return "internal"
}
