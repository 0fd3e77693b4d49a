package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferdesk/platform/internal/domain"
)

func TestGate_StartsUnresolved(t *testing.T) {
	g := NewGate()
	assert.Equal(t, StateUnresolved, g.State())
	assert.Equal(t, Pending, g.Admit(ViewDashboard).Outcome)
	assert.False(t, g.Admit(ViewDashboard).Allowed())
	_, ok := g.Role()
	assert.False(t, ok)
}

func TestGate_ResolvesExactlyOnce(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.Resolve(&Identity{UserID: "u1", Role: domain.RoleAdmin}))
	assert.Equal(t, StateAuthenticated, g.State())

	assert.ErrorIs(t, g.Resolve(nil), ErrAlreadyResolved)
	assert.Equal(t, StateAuthenticated, g.State())

	anon := NewGate()
	require.NoError(t, anon.Resolve(nil))
	assert.ErrorIs(t, anon.Resolve(&Identity{UserID: "u1"}), ErrAlreadyResolved)
	assert.Equal(t, StateAnonymous, anon.State())
}

func TestGate_Admit(t *testing.T) {
	tests := []struct {
		name     string
		identity *Identity
		view     View
		want     Outcome
		redirect string
	}{
		{"anonymous to open view", nil, ViewPlayers, RedirectSignIn, SignInPath},
		{"anonymous to admin view", nil, ViewUsers, RedirectSignIn, SignInPath},
		{"user to admin view", &Identity{Role: domain.RoleUser}, ViewUsers, RedirectDefault, DefaultPath},
		{"scout to admin view", &Identity{Role: domain.RoleScout}, ViewUsers, RedirectDefault, DefaultPath},
		{"no role to admin view", &Identity{}, ViewUsers, RedirectDefault, DefaultPath},
		{"admin to admin view", &Identity{Role: domain.RoleAdmin}, ViewUsers, Allow, ""},
		{"user to open view", &Identity{Role: domain.RoleUser}, ViewTransfers, Allow, ""},
		{"no role to open view", &Identity{}, ViewDashboard, Allow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate()
			require.NoError(t, g.Resolve(tt.identity))
			d := g.Admit(tt.view)
			assert.Equal(t, tt.want, d.Outcome)
			assert.Equal(t, tt.redirect, d.Redirect)
		})
	}
}

func TestGate_LogoutIsOptimistic(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.Resolve(&Identity{UserID: "u1", Role: domain.RoleAdmin}))

	var stateDuringConfirm State
	var roleDuringConfirm bool
	err := g.Logout(context.Background(), func(context.Context) error {
		stateDuringConfirm = g.State()
		_, roleDuringConfirm = g.Role()
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, stateDuringConfirm)
	assert.False(t, roleDuringConfirm)
	assert.Nil(t, g.Identity())
}

func TestGate_FailedLogoutConfirmationDoesNotRevert(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.Resolve(&Identity{UserID: "u1", Role: domain.RoleAdmin}))

	err := g.Logout(context.Background(), func(context.Context) error {
		return errors.New("identity provider unreachable")
	})

	require.Error(t, err)
	assert.Equal(t, StateAnonymous, g.State())
	assert.Equal(t, RedirectSignIn, g.Admit(ViewUsers).Outcome)
}

func TestGate_IdentityIsCopied(t *testing.T) {
	id := &Identity{UserID: "u1", Role: domain.RoleUser}
	g := NewGate()
	require.NoError(t, g.Resolve(id))

	id.Role = domain.RoleAdmin
	got := g.Identity()
	got.Role = domain.RoleAdmin

	role, _ := g.Role()
	assert.Equal(t, domain.RoleUser, role)
}

// --- Middleware ---

type stubRoles struct {
	roles map[string]domain.Role
	err   error
}

func (s stubRoles) RoleOf(_ context.Context, userID string) (domain.Role, error) {
	if s.err != nil {
		return "", s.err
	}
	role, ok := s.roles[userID]
	if !ok {
		return "", domain.ErrNotFound("user", userID)
	}
	return role, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func serve(t *testing.T, mw []func(http.Handler) http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("protected content"))
	})
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequireView_RoleUserRedirectedFromAdminView(t *testing.T) {
	mgr := newTestJWTManager()
	roles := stubRoles{roles: map[string]domain.Role{"u1": domain.RoleUser}}
	token, _, err := mgr.GenerateToken("u1", "u1@club.com")
	require.NoError(t, err)

	rec := serve(t, []func(http.Handler) http.Handler{
		Authenticate(mgr, NewRevocationList(), roles, discardLogger()),
		RequireView(ViewUsers),
	}, token)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "protected content")
	body := decode(t, rec)
	assert.Equal(t, "FORBIDDEN", body["code"])
	assert.Equal(t, "/", body["redirect"])
}

func TestRequireView_AdminAdmitted(t *testing.T) {
	mgr := newTestJWTManager()
	roles := stubRoles{roles: map[string]domain.Role{"a1": domain.RoleAdmin}}
	token, _, err := mgr.GenerateToken("a1", "")
	require.NoError(t, err)

	rec := serve(t, []func(http.Handler) http.Handler{
		Authenticate(mgr, NewRevocationList(), roles, discardLogger()),
		RequireView(ViewUsers),
	}, token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "protected content", rec.Body.String())
}

func TestRequireView_AnonymousRedirectedToSignIn(t *testing.T) {
	mgr := newTestJWTManager()
	mw := []func(http.Handler) http.Handler{
		Authenticate(mgr, NewRevocationList(), stubRoles{}, discardLogger()),
		RequireView(ViewPlayers),
	}

	for name, token := range map[string]string{"no token": "", "garbage token": "abc.def.ghi"} {
		t.Run(name, func(t *testing.T) {
			rec := serve(t, mw, token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, "UNAUTHORIZED", body["code"])
			assert.Equal(t, "/login", body["redirect"])
		})
	}
}

func TestRequireView_RevokedTokenIsAnonymous(t *testing.T) {
	mgr := newTestJWTManager()
	token, claims, err := mgr.GenerateToken("u1", "")
	require.NoError(t, err)

	revoked := NewRevocationList()
	revoked.Revoke(claims.ID, time.Now().Add(time.Hour))

	rec := serve(t, []func(http.Handler) http.Handler{
		Authenticate(mgr, revoked, stubRoles{roles: map[string]domain.Role{"u1": domain.RoleAdmin}}, discardLogger()),
		RequireView(ViewDashboard),
	}, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_MissingUserRecordHasNoRole(t *testing.T) {
	mgr := newTestJWTManager()
	token, _, err := mgr.GenerateToken("ghost", "")
	require.NoError(t, err)

	mw := Authenticate(mgr, NewRevocationList(), stubRoles{}, discardLogger())
	open := serve(t, []func(http.Handler) http.Handler{mw, RequireView(ViewDashboard)}, token)
	assert.Equal(t, http.StatusOK, open.Code)

	admin := serve(t, []func(http.Handler) http.Handler{mw, RequireView(ViewUsers)}, token)
	assert.Equal(t, http.StatusForbidden, admin.Code)
}

func TestAuthenticate_BackendFailure(t *testing.T) {
	mgr := newTestJWTManager()
	token, _, err := mgr.GenerateToken("u1", "")
	require.NoError(t, err)

	roles := stubRoles{err: domain.ErrBackend("lookup role", errors.New("connection refused"))}
	rec := serve(t, []func(http.Handler) http.Handler{
		Authenticate(mgr, NewRevocationList(), roles, discardLogger()),
		RequireView(ViewDashboard),
	}, token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "BACKEND_ERROR", decode(t, rec)["code"])
}

func TestAuthenticate_StoresGate(t *testing.T) {
	mgr := newTestJWTManager()
	token, _, err := mgr.GenerateToken("u1", "u1@club.com")
	require.NoError(t, err)

	var got *Identity
	h := Authenticate(mgr, nil, stubRoles{roles: map[string]domain.Role{"u1": domain.RoleScout}}, discardLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = IdentityFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, domain.RoleScout, got.Role)
	assert.Equal(t, "u1@club.com", got.Email)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer abc", "abc", false},
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer", "", true},
		{"Bearer ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := BearerToken(req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
