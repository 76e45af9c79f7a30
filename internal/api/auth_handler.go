package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskpilot-api/internal/api/shared"
	"github.com/phrazzld/taskpilot-api/internal/domain"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/service/auth"
)

// AuthService is the subset of auth.Service used by the handlers.
type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	UpdateProfile(ctx context.Context, userID int64, fullName domain.Field[string]) (*domain.User, error)
}

var _ AuthService = (*auth.Service)(nil)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		auth:   authService,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.auth.Signup(r.Context(), auth.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		FullName: req.FullName,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Registration failed")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user signed up", logAttrsForCaller(session.User)...)
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Login failed")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("user logged in", logAttrsForCaller(session.User)...)
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := handleCaller(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(caller))
}

// UpdateMe handles PUT /auth/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := handleCaller(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), caller.ID, req.FullName)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}
