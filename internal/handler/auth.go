package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/transferdesk/platform/internal/auth"
	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/service"
)

// AuthHandler handles sign-up, sign-in, sign-out and password reset.
type AuthHandler struct {
	authSvc *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.SignUpInput
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}
	if input.Role == domain.RoleAdmin {
		RespondError(w, domain.ErrFieldValidation(map[string]string{
			"role": "Admin accounts are created by an administrator",
		}))
		return
	}

	session, err := h.authSvc.SignUp(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}

	session, err := h.authSvc.SignIn(r.Context(), input.Email, input.Password, ClientIP(r))
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, session)
}

// Logout handles POST /auth/logout. The session ends immediately; a failure
// to persist the revocation is logged and does not restore it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	gate := auth.GateFromContext(ctx)
	id := auth.IdentityFromContext(ctx)
	if gate == nil || id == nil {
		RespondJSON(w, http.StatusUnauthorized, errorBody{Code: "UNAUTHORIZED", Message: "not signed in", Redirect: auth.SignInPath})
		return
	}

	err := gate.Logout(ctx, func(ctx context.Context) error {
		return h.authSvc.SignOut(ctx, *id)
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sign-out confirmation failed", "user_id", id.UserID, "error", err)
	}

	RespondJSON(w, http.StatusNoContent, nil)
}

type resetRequest struct {
	Email string `json:"email"`
}

// RequestPasswordReset handles POST /auth/password-reset. It answers 202
// whether or not the account exists.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var input resetRequest
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}

	if err := h.authSvc.RequestPasswordReset(r.Context(), input.Email); err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

type resetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// ConfirmPasswordReset handles POST /auth/password-reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var input resetConfirmRequest
	if err := DecodeJSON(r, &input); err != nil {
		respondBadBody(w)
		return
	}

	if err := h.authSvc.ResetPassword(r.Context(), input.Token, input.Password); err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusNoContent, nil)
}
