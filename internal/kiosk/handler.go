// Package kiosk is the WebSocket chat transport for the lobby kiosk. It
// speaks the same turn processor as POST /chat, keyed by the kiosk's session
// identifier.
package kiosk

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/cityclinic/desk-assistant/internal/chat"
	"github.com/cityclinic/desk-assistant/pkg/logging"
)

// Handler bridges WebSocket connections to the turn processor.
type Handler struct {
	service chat.TurnService
	logger  *logging.Logger
}

// InboundMessage is what the kiosk sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the kiosk.
type OutboundMessage struct {
	Type      string          `json:"type"` // "message", "session", "pong", "error"
	Reply     string          `json:"reply,omitempty"`
	Query     json.RawMessage `json:"query,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
}

// NewHandler creates a kiosk chat handler.
func NewHandler(service chat.TurnService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles chat turns.
// GET /chat/ws?session=<id>
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	h.logger.Info("kiosk: connection opened", "session_id", sessionID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("kiosk: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		_ = websocket.JSON.Send(conn, h.turn(r.Context(), sessionID, msg.Text))
	}
}

// turn runs one chat turn and shapes the outbound frame. Upstream failures
// degrade to a generic error frame, mirroring the HTTP boundary.
func (h *Handler) turn(ctx context.Context, sessionID, text string) OutboundMessage {
	reply, err := h.service.ProcessTurn(ctx, sessionID, text)
	if err != nil {
		h.logger.Error("kiosk: failed to process turn", "session_id", sessionID, "error", err)
		return OutboundMessage{
			Type:  "error",
			Reply: "Sorry, something went wrong. Please try again.",
		}
	}
	return OutboundMessage{
		Type:  "message",
		Reply: reply.Reply,
		Query: reply.Query,
	}
}
