package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/vibecommerce/storefront/internal/assistant"
)

type AssistantHandler struct {
	assistant *assistant.Assistant
	timeout   time.Duration
}

func NewAssistantHandler(a *assistant.Assistant, timeout time.Duration) *AssistantHandler {
	return &AssistantHandler{
		assistant: a,
		timeout:   timeout,
	}
}

type ChatRequestDTO struct {
	Message             string              `json:"message"`
	ConversationHistory []assistant.Message `json:"conversationHistory"`
}

func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.assistant.Chat(ctx, req.Message, req.ConversationHistory)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrEmptyMessage):
			respondError(w, http.StatusBadRequest, "invalid_request", "message is required")
		case errors.Is(err, assistant.ErrNotConfigured):
			respondError(w, http.StatusServiceUnavailable, "not_configured", "AI assistant is not configured")
		case errors.Is(err, context.DeadlineExceeded):
			respondError(w, http.StatusGatewayTimeout, "timeout", "assistant request timed out")
		default:
			log.Printf("assistant chat error: %v", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "error generating response")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}
