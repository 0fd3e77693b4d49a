//go:build integration

package integration

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/infra"
	"github.com/transferdesk/platform/test/integration/testutil"
)

func TestViews_AnonymousRedirectedToSignIn(t *testing.T) {
	env := testutil.NewTestEnv(t)
	for _, path := range []string{"/dashboard", "/players", "/teams", "/transfers", "/me", "/users"} {
		t.Run(path, func(t *testing.T) {
			resp := env.GET(path, "")
			testutil.AssertStatus(t, resp, http.StatusUnauthorized)
			body := testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
			assert.Equal(t, "/login", body.Redirect)
		})
	}
}

func TestUsersView_AdminOnly(t *testing.T) {
	env := testutil.NewTestEnv(t)
	userToken := env.Register("ana@club.com", "secret1", "Ana", "manager").Token

	resp := env.GET("/users", userToken)
	testutil.AssertStatus(t, resp, http.StatusForbidden)
	body := testutil.AssertErrorCode(t, resp, "FORBIDDEN")
	assert.Equal(t, "/", body.Redirect)

	adminToken := env.CreateAdmin("root@club.com", "secret1")
	resp = env.GET("/users", adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var users []domain.User
	testutil.DecodeJSON(t, resp, &users)
	assert.Len(t, users, 2)
}

func TestUsers_RoleChangeTakesEffectImmediately(t *testing.T) {
	env := testutil.NewTestEnv(t)
	s := env.Register("ana@club.com", "secret1", "Ana", "")
	adminToken := env.CreateAdmin("root@club.com", "secret1")

	resp := env.PATCH("/users/"+s.UserID+"/role", map[string]string{"role": "admin"}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// The role is read per request, so the old token now opens the admin view.
	resp = env.GET("/users", s.Token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	payload := testutil.OutboxPayload(t, env, s.UserID, string(domain.EventRoleChanged))
	assert.Equal(t, "admin", payload["role"])
}

func TestUsers_EmailIsWriteOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	s := env.Register("ana@club.com", "secret1", "Ana", "")
	adminToken := env.CreateAdmin("root@club.com", "secret1")

	resp := env.PUT("/users/"+s.UserID, map[string]string{
		"name": "Ana", "email": "other@club.com", "role": "user",
	}, adminToken)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	body := testutil.AssertErrorCode(t, resp, domain.CodeValidation)
	assert.Equal(t, "Email cannot be changed", body.Fields["email"])
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	env := testutil.NewTestEnv(t, func(c *infra.Config) {
		c.AuthRateLimit = 0.01
		c.AuthRateBurst = 2
	})

	var last *http.Response
	for range 3 {
		if last != nil {
			last.Body.Close()
		}
		last = env.POST("/auth/login", map[string]string{"email": "a@club.com", "password": "x"}, "")
	}
	testutil.AssertStatus(t, last, http.StatusTooManyRequests)
	last.Body.Close()
}

func TestExport_CSVDownload(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.Register("ana@club.com", "secret1", "Ana", "").Token
	createPlayer(t, env, token, "Zico", "Flamengo")

	resp := env.GET("/players/export", token)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "players.csv")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `"Zico",24,"Forward"`))
}

func TestHealth(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.GET("/health", "")
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()
}
