package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/domain"
	"github.com/tradelink/backend/internal/middleware"
	"github.com/tradelink/backend/pkg/response"
)

type ConnectionHandler struct {
	connService *domain.ConnectionService
	logger      *zap.Logger
}

func NewConnectionHandler(connService *domain.ConnectionService, logger *zap.Logger) *ConnectionHandler {
	return &ConnectionHandler{connService: connService, logger: logger}
}

// RequestConnection handles POST /connections/request
func (h *ConnectionHandler) RequestConnection(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		ResponderID string `json:"responder_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	responderID, err := uuid.Parse(req.ResponderID)
	if err != nil {
		response.BadRequest(w, "invalid responder id")
		return
	}

	conn, err := h.connService.RequestConnection(r.Context(), userID, responderID)
	if err != nil {
		h.logger.Warn("connection request failed", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	response.Created(w, conn)
}

// RespondConnection handles POST /connections/respond
func (h *ConnectionHandler) RespondConnection(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		ConnectionID string `json:"connection_id"`
		Accept       bool   `json:"accept"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	connID, err := uuid.Parse(req.ConnectionID)
	if err != nil {
		response.BadRequest(w, "invalid connection id")
		return
	}

	conn, err := h.connService.RespondToConnection(r.Context(), userID, connID, req.Accept)
	if err != nil {
		h.logger.Warn("connection response failed", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	response.OK(w, conn)
}

// ListConnections handles GET /connections
func (h *ConnectionHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	views, err := h.connService.ListConnectionsForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list connections", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	if views == nil {
		views = []*domain.ConnectionView{}
	}
	response.OK(w, views)
}
