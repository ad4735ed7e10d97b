package usecase

import (
	"context"
	"fmt"
	"time"

	"AShareLab/internal/domain/models"
	domrepo "AShareLab/internal/domain/repository"
	"AShareLab/pkg/logger"
)

const chatSystemPrompt = "你是一名A股市场分析助手。回答要简洁、客观，涉及个股时必须提示风险，并注明不构成投资建议。"

// ChatUseCase forwards conversations to the LLM with a fixed system prompt.
// Unlike narratives there is no templated fallback: without a model, chat is
// simply unavailable.
type ChatUseCase struct {
	narrator domrepo.Narrator
	metrics  domrepo.Metrics
	log      *logger.Logger
	timeout  time.Duration
}

// NewChatUseCase wires the chat path. narrator may be nil.
func NewChatUseCase(narrator domrepo.Narrator, metrics domrepo.Metrics, log *logger.Logger) *ChatUseCase {
	return &ChatUseCase{narrator: narrator, metrics: metrics, log: log, timeout: 120 * time.Second}
}

// Chat runs one conversation turn.
func (uc *ChatUseCase) Chat(ctx context.Context, msgs []models.ChatMessage) (models.ChatMessage, error) {
	if uc.narrator == nil {
		uc.metrics.RecordError("chat:unavailable")
		return models.ChatMessage{}, fmt.Errorf("chat model not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	full := make([]models.ChatMessage, 0, len(msgs)+1)
	if len(msgs) == 0 || msgs[0].Role != "system" {
		full = append(full, models.ChatMessage{Role: "system", Content: chatSystemPrompt})
	}
	full = append(full, msgs...)

	started := time.Now()
	reply, err := uc.narrator.Chat(ctx, full)
	if err != nil {
		uc.metrics.RecordError("chat")
		uc.log.Warn("chat failed", logger.Error(err))
		return models.ChatMessage{}, err
	}
	uc.metrics.RecordPipeline("chat", time.Since(started).Seconds())
	return reply, nil
}
