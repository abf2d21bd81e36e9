// Package http exposes the auth service over HTTP.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Haarush2006/OpsBoard-BE/internal/domain"
	"github.com/Haarush2006/OpsBoard-BE/internal/service"
	apperrors "github.com/Haarush2006/OpsBoard-BE/pkg/errors"
	"github.com/Haarush2006/OpsBoard-BE/pkg/logger"
	"github.com/Haarush2006/OpsBoard-BE/pkg/middleware"
	"github.com/Haarush2006/OpsBoard-BE/pkg/validator"
)

const maxBodyBytes = 1 << 20

// AuthHandler serves the auth endpoints.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(svc *service.AuthService, log *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: log}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Role     string `json:"role" validate:"omitempty,oneof=admin operator auditor"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: authResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: authResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: authResponse{
		User:         res.User,
		AccessToken:  res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]string{"message": "logged out"}})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		h.writeError(w, r, apperrors.Unauthorized("missing authentication"))
		return
	}

	removed, err := h.svc.LogoutAll(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: map[string]any{
		"message":  "logged out everywhere",
		"sessions": removed,
	}})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		h.writeError(w, r, apperrors.Unauthorized("missing authentication"))
		return
	}

	user, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: user})
}

// decode reads, parses, and validates the request body. It writes the error
// response itself and reports whether the handler should continue.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeAppError(w, apperrors.InvalidInput("invalid request body"))
		return false
	}
	if err := validator.Validate(dst); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

func (h *AuthHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeAppError(w, apperrors.Internal(err))
		return
	}

	if appErr.Status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "request failed", "code", appErr.Code, "error", err)
	}
	writeAppError(w, appErr)
}
