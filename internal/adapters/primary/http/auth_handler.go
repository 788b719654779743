package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/auth"
	apperrors "github.com/VaughnVernon/SchemaMinder-sub003/internal/core/errors"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/ports"
)

// AuthHandler handles registration and login for registry editors.
type AuthHandler struct {
	authService     ports.AuthService
	tokenManager    *auth.TokenManager
	defaultTenantID uuid.UUID
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	authService ports.AuthService,
	tokenManager *auth.TokenManager,
	defaultTenantID uuid.UUID,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		tokenManager:    tokenManager,
		defaultTenantID: defaultTenantID,
		errorHandler:    errorHandler,
		logger:          logger,
	}
}

// RegisterRoutes mounts the auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
}

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenantId,omitempty"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the session token plus the identity the client needs
// for self-suppression of its own broadcast messages.
type TokenResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// HandleRegister creates a new editor account and returns a session token.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	tenantID := h.defaultTenantID
	if req.TenantID != "" {
		parsed, err := uuid.Parse(req.TenantID)
		if err != nil {
			h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid tenant ID"))
			return
		}
		tenantID = parsed
	}

	user, err := h.authService.Register(r.Context(), req.FullName, req.Email, req.Password, tenantID)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	token, err := h.tokenManager.GenerateToken(user.ID, user.TenantID)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewInternalError(err))
		return
	}

	WriteCreated(w, TokenResponse{
		Token:    token,
		UserID:   user.ID.String(),
		TenantID: user.TenantID.String(),
		FullName: user.FullName,
		Email:    user.Email,
	})
}

// HandleLogin verifies credentials and returns a session token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Invalid request body"))
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	token, err := h.tokenManager.GenerateToken(user.ID, user.TenantID)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewInternalError(err))
		return
	}

	WriteJSON(w, http.StatusOK, TokenResponse{
		Token:    token,
		UserID:   user.ID.String(),
		TenantID: user.TenantID.String(),
		FullName: user.FullName,
		Email:    user.Email,
	})
}
