package api

import (
	models "AShareLab/internal/domain/models"
	"AShareLab/internal/usecase"
	xhttp "AShareLab/pkg/http"
	xlogger "AShareLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ChatHandler serves the conversational endpoint.
type ChatHandler struct {
	logger *xlogger.Logger
	chat   *usecase.ChatUseCase
}

func NewChatHandler(logger *xlogger.Logger, chat *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{logger: logger, chat: chat}
}

func (h *ChatHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", h.Chat)
}

// Chat runs one conversation turn against the model.
func (h *ChatHandler) Chat(c echo.Context) error {
	req := &models.ChatRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	reply, err := h.chat.Chat(c.Request().Context(), req.Messages)
	if err != nil {
		h.logger.Error("chat usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, reply)
}
