package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tradelink/backend/internal/domain"
	"github.com/tradelink/backend/internal/middleware"
	"github.com/tradelink/backend/pkg/response"
	"github.com/tradelink/backend/pkg/validator"
)

type AuthHandler struct {
	authService    *domain.AuthService
	profileService *domain.ProfileService
	logger         *zap.Logger
}

func NewAuthHandler(authService *domain.AuthService, profileService *domain.ProfileService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
		logger:         logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	var errs validator.ValidationErrors
	req.Email = validator.SanitizeEmail(req.Email)
	if !validator.ValidateEmail(req.Email) {
		errs.Add("email", "invalid email address")
	}
	if !validator.ValidateName(req.Name) {
		errs.Add("name", "must be between 2 and 100 characters")
	}
	if errs.HasErrors() {
		response.BadRequest(w, errs.Error())
		return
	}

	result, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name, domain.Role(req.Role))
	if err != nil {
		h.logger.Warn("registration failed", zap.Error(err))
		response.DomainError(w, err)
		return
	}

	response.Created(w, result)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request")
		return
	}

	result, err := h.authService.Login(r.Context(), validator.SanitizeEmail(req.Email), req.Password)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.OK(w, result)
}

// GoogleLogin handles POST /auth/google
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"id_token"`
		Role    string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IDToken == "" {
		response.BadRequest(w, "invalid request")
		return
	}

	result, err := h.authService.GoogleLogin(r.Context(), req.IDToken, domain.Role(req.Role))
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.OK(w, result)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		response.BadRequest(w, "invalid request")
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.OK(w, result)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		response.BadRequest(w, "invalid request")
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		response.DomainError(w, err)
		return
	}

	response.OK(w, map[string]string{"status": "logged out"})
}

// Me handles GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.OK(w, profile)
}
