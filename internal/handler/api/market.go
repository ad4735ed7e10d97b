package api

import (
	"time"

	"AShareLab/internal/usecase"
	xhttp "AShareLab/pkg/http"
	xlogger "AShareLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

// MarketHandler serves the whole-market overview and the health probe.
type MarketHandler struct {
	logger *xlogger.Logger
	market *usecase.MarketUseCase
	start  time.Time
}

func NewMarketHandler(logger *xlogger.Logger, market *usecase.MarketUseCase) *MarketHandler {
	return &MarketHandler{logger: logger, market: market, start: time.Now()}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/health", h.Health)
	e.GET("/api/market", h.Market)
}

// Health reports liveness and uptime.
func (h *MarketHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]any{
		"status":    "ok",
		"uptime_s":  int(time.Since(h.start).Seconds()),
		"timestamp": time.Now(),
	})
}

// Market returns the current market overview.
func (h *MarketHandler) Market(c echo.Context) error {
	force := c.QueryParam("force") == "true"
	res, err := h.market.Overview(c.Request().Context(), force)
	if err != nil {
		h.logger.Error("market usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=30")
	return xhttp.SuccessResponse(c, res)
}
