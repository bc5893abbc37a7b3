package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/domain"
	"github.com/tradelink/backend/internal/middleware"
	"github.com/tradelink/backend/internal/realtime"
	"github.com/tradelink/backend/pkg/response"
)

type ChatHandler struct {
	messaging *domain.MessagingService
	wsManager *WebSocketManager
	logger    *zap.Logger
}

func NewChatHandler(messaging *domain.MessagingService, wsManager *WebSocketManager, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		messaging: messaging,
		wsManager: wsManager,
		logger:    logger,
	}
}

// HandleWebSocket upgrades GET /ws to the change-feed socket. All
// events addressed to the user flow over this single connection;
// closing the socket releases the session's deliveries.
func (h *ChatHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		ID:     uuid.New(),
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}

	h.wsManager.register <- client

	go client.WritePump()
	go client.ReadPump(h.wsManager)
}

// OpenConversation handles POST /conversations: the idempotent
// find-or-create for the pair (caller, other participant).
func (h *ChatHandler) OpenConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		ParticipantID string `json:"participant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	otherID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		response.BadRequest(w, "invalid participant id")
		return
	}

	conv, err := h.messaging.GetOrCreateConversation(r.Context(), userID, otherID)
	if err != nil {
		h.logger.Warn("conversation bootstrap failed", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	response.OK(w, conv)
}

// ListConversations handles GET /conversations
func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	views, err := h.messaging.ListConversations(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list conversations", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	if views == nil {
		views = []*domain.ConversationView{}
	}
	response.OK(w, views)
}

// GetMessages handles GET /conversations/{conversationId}/messages:
// the backlog fetch, oldest first, that precedes a live subscription.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	convID, err := uuid.Parse(chi.URLParam(r, "conversationId"))
	if err != nil {
		response.BadRequest(w, "invalid conversation id")
		return
	}

	msgs, err := h.messaging.GetMessages(r.Context(), userID, convID)
	if err != nil {
		h.logger.Error("failed to get messages", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	if msgs == nil {
		msgs = []*domain.Message{}
	}
	response.OK(w, msgs)
}

// StreamConversation handles GET /conversations/{conversationId}/stream.
// It upgrades to a websocket dedicated to one conversation and replays
// the full history before switching to live inserts. The subscription
// is opened before the backlog fetch so no insert can fall between the
// two; the merge drops rows present in both.
func (h *ChatHandler) StreamConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	convID, err := uuid.Parse(chi.URLParam(r, "conversationId"))
	if err != nil {
		response.BadRequest(w, "invalid conversation id")
		return
	}

	stream, err := h.messaging.StreamMessages(r.Context(), userID, convID)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	backlog, err := h.messaging.GetMessages(r.Context(), userID, convID)
	if err != nil {
		stream.Close()
		h.logger.Error("failed to fetch backlog", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		stream.Close()
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reads only detect the peer closing; cancel tears the feed down.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for msg := range realtime.MergeFeed(ctx, backlog, stream) {
		payload, err := json.Marshal(msg)
		if err != nil {
			h.logger.Error("failed to marshal message", zap.Error(err))
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// SendMessage handles POST /conversations/{conversationId}/messages.
// The realtime push to both participants happens inside the service's
// event publisher; failures here are surfaced for manual resend.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	convID, err := uuid.Parse(chi.URLParam(r, "conversationId"))
	if err != nil {
		response.BadRequest(w, "invalid conversation id")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	msg, err := h.messaging.SendMessage(r.Context(), userID, convID, req.Content)
	if err != nil {
		h.logger.Warn("failed to send message", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	response.Created(w, msg)
}
