package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/transferdesk/platform/internal/domain"
)

type contextKey string

const gateKey contextKey = "auth_gate"

// RoleSource looks up the current role of a user. It returns a NOT_FOUND
// AppError when no users record exists.
type RoleSource interface {
	RoleOf(ctx context.Context, userID string) (domain.Role, error)
}

// GateFromContext returns the request's gate, or nil outside Authenticate.
func GateFromContext(ctx context.Context) *Gate {
	g, _ := ctx.Value(gateKey).(*Gate)
	return g
}

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	if g := GateFromContext(ctx); g != nil {
		return g.Identity()
	}
	return nil
}

// WithGate stores g in ctx.
func WithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, gateKey, g)
}

// Authenticate resolves a per-request Gate from the bearer token and stores it
// in the request context. A missing, invalid or revoked token resolves the
// gate to anonymous; the decision to reject is left to RequireView.
func Authenticate(jwtMgr *JWTManager, revoked *RevocationList, roles RoleSource, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			gate := NewGate()

			id, err := identify(ctx, r, jwtMgr, revoked, roles)
			if err != nil {
				if appErr, ok := domain.AsAppError(err); ok && appErr.Code == domain.CodeBackend {
					logger.ErrorContext(ctx, "role lookup failed", "error", err)
					writeJSON(w, appErr.Status, map[string]string{"code": appErr.Code, "message": appErr.Message})
					return
				}
				logger.DebugContext(ctx, "anonymous request", "reason", err.Error())
			}
			_ = gate.Resolve(id)

			next.ServeHTTP(w, r.WithContext(WithGate(ctx, gate)))
		})
	}
}

// RequireView rejects requests whose gate does not admit v. Anonymous sessions
// get 401 with a redirect to the sign-in view; authenticated sessions whose
// role is not allowed get 403 with a redirect to the default view.
func RequireView(v View) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gate := GateFromContext(r.Context())
			if gate == nil {
				gate = NewGate()
				_ = gate.Resolve(nil)
			}

			d := gate.Admit(v)
			switch d.Outcome {
			case Allow:
				next.ServeHTTP(w, r)
			case RedirectDefault:
				writeJSON(w, http.StatusForbidden, map[string]string{
					"code":     domain.CodeForbidden,
					"message":  fmt.Sprintf("role not permitted for %s", v.Name),
					"redirect": d.Redirect,
				})
			default:
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"code":     domain.CodeUnauthorized,
					"message":  "authentication required",
					"redirect": SignInPath,
				})
			}
		})
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization format")
	}
	return parts[1], nil
}

func identify(ctx context.Context, r *http.Request, jwtMgr *JWTManager, revoked *RevocationList, roles RoleSource) (*Identity, error) {
	token, err := BearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := jwtMgr.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if revoked != nil && revoked.IsRevoked(claims.ID) {
		return nil, fmt.Errorf("token revoked")
	}

	id := &Identity{UserID: claims.Subject, Email: claims.Email, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}

	role, err := roles.RoleOf(ctx, claims.Subject)
	switch {
	case err == nil:
		id.Role = role
	case domain.IsNotFound(err):
		// No users record: authenticated without a role.
	default:
		return nil, err
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
