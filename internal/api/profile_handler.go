package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/domain"
	"github.com/tradelink/backend/internal/middleware"
	"github.com/tradelink/backend/pkg/response"
)

type ProfileHandler struct {
	profileService *domain.ProfileService
	logger         *zap.Logger
}

func NewProfileHandler(profileService *domain.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// UpdateProfile handles PUT /profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Name       *string  `json:"name"`
		Phone      *string  `json:"phone"`
		Address    *string  `json:"address"`
		GSTNumber  *string  `json:"gst_number"`
		Categories []string `json:"categories"`
		Lat        *float64 `json:"lat"`
		Lng        *float64 `json:"lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	profile, err := h.profileService.UpdateOwnProfile(r.Context(), userID, domain.UpdateProfileParams{
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		GSTNumber:  req.GSTNumber,
		Categories: req.Categories,
		Lat:        req.Lat,
		Lng:        req.Lng,
	})
	if err != nil {
		h.logger.Error("failed to update profile", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	response.OK(w, profile)
}

// Search handles GET /profiles/search?q=
func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	profiles, err := h.profileService.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("profile search failed", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	if profiles == nil {
		profiles = []*domain.Profile{}
	}
	response.OK(w, profiles)
}
