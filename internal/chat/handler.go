package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cityclinic/desk-assistant/pkg/logging"
)

// TurnService runs one conversational turn. Implemented by Processor.
type TurnService interface {
	ProcessTurn(ctx context.Context, sessionID, userPrompt string) (*TurnReply, error)
}

// Handler wires HTTP requests to the turn processor.
type Handler struct {
	service TurnService
	logger  *logging.Logger
}

// NewHandler creates a chat handler.
func NewHandler(service TurnService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ChatRequest is the body of POST /chat. SessionID is optional; absent IDs
// share the default session.
type ChatRequest struct {
	UserPrompt string `json:"userPrompt"`
	SessionID  string `json:"sessionId"`
}

// Chat handles POST /chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid JSON body"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.UserPrompt) == "" {
		http.Error(w, `{"error": "userPrompt is required"}`, http.StatusBadRequest)
		return
	}

	reply, err := h.service.ProcessTurn(r.Context(), req.SessionID, req.UserPrompt)
	if err != nil {
		h.logger.Error("failed to process chat turn", "error", err)
		http.Error(w, `{"error": "error processing chat request"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]*TurnReply{"obj": reply}); err != nil {
		h.logger.Error("failed to write chat response", "error", err)
	}
}
