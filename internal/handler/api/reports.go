package api

import (
	models "AShareLab/internal/domain/models"
	"AShareLab/internal/usecase"
	xhttp "AShareLab/pkg/http"
	xlogger "AShareLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ReportHandler serves the daily report endpoints. Generation is async:
// the generate endpoint returns a task id and the task endpoint is polled.
type ReportHandler struct {
	logger  *xlogger.Logger
	reports *usecase.ReportUseCase
}

func NewReportHandler(logger *xlogger.Logger, reports *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{logger: logger, reports: reports}
}

func (h *ReportHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/reports")
	g.POST("/:type/generate", h.Generate)
	g.GET("/task/:id", h.Task)
	g.GET("/history", h.History)
	g.GET("/:type/latest", h.Latest)
	g.GET("/:type/:date", h.Get)
	g.DELETE("/:type/:date", h.Delete)
}

// Generate enqueues report generation and returns the pending task.
func (h *ReportHandler) Generate(c echo.Context) error {
	t := c.Param("type")
	if !models.ValidReportType(t) {
		return xhttp.BadRequestResponse(c, map[string]string{"type": "must be morning, noon or evening"})
	}
	task, err := h.reports.Enqueue(c.Request().Context(), models.ReportType(t))
	if err != nil {
		h.logger.Error("report enqueue error", xlogger.String("type", t), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, task)
}

// Task returns the state of one generation task.
func (h *ReportHandler) Task(c echo.Context) error {
	task, ok := h.reports.Task(c.Param("id"))
	if !ok {
		return xhttp.NotFoundResponse(c, map[string]string{"message": "task not found"})
	}
	return xhttp.SuccessResponse(c, task)
}

// Latest returns the newest report for a slot.
func (h *ReportHandler) Latest(c echo.Context) error {
	t := c.Param("type")
	if !models.ValidReportType(t) {
		return xhttp.BadRequestResponse(c, map[string]string{"type": "must be morning, noon or evening"})
	}
	r, err := h.reports.Latest(c.Request().Context(), models.ReportType(t))
	if err != nil {
		return xhttp.NotFoundResponse(c, map[string]string{"message": err.Error()})
	}
	return xhttp.SuccessResponse(c, r)
}

// Get returns one report by slot and date (YYYY-MM-DD).
func (h *ReportHandler) Get(c echo.Context) error {
	t := c.Param("type")
	if !models.ValidReportType(t) {
		return xhttp.BadRequestResponse(c, map[string]string{"type": "must be morning, noon or evening"})
	}
	r, err := h.reports.Get(c.Request().Context(), models.ReportType(t), c.Param("date"))
	if err != nil {
		return xhttp.NotFoundResponse(c, map[string]string{"message": err.Error()})
	}
	return xhttp.SuccessResponse(c, r)
}

// Delete removes one report by slot and date.
func (h *ReportHandler) Delete(c echo.Context) error {
	t := c.Param("type")
	if !models.ValidReportType(t) {
		return xhttp.BadRequestResponse(c, map[string]string{"type": "must be morning, noon or evening"})
	}
	if err := h.reports.Delete(c.Request().Context(), models.ReportType(t), c.Param("date")); err != nil {
		return xhttp.NotFoundResponse(c, map[string]string{"message": err.Error()})
	}
	return xhttp.SuccessResponse(c, map[string]string{"deleted": c.Param("date")})
}

// History lists reports from the last N days.
func (h *ReportHandler) History(c echo.Context) error {
	req := &models.ReportHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rs, err := h.reports.History(c.Request().Context(), req.Days)
	if err != nil {
		h.logger.Error("report history error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rs, int64(len(rs)))
}
