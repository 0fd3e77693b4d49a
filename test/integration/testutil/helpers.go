//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/service"
)

// Session is the sign-up / sign-in response.
type Session struct {
	Token  string       `json:"token"`
	UserID string       `json:"user_id"`
	Email  string       `json:"email"`
	User   *domain.User `json:"user"`
}

// Register signs up through the API and returns the session.
func (env *TestEnv) Register(email, password, name, role string) Session {
	env.t.Helper()
	body := map[string]string{"email": email, "password": password, "name": name}
	if role != "" {
		body["role"] = role
	}

	resp := env.Do(http.MethodPost, "/auth/register", body, "")
	if resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		env.t.Fatalf("Register: expected 201, got %d", resp.StatusCode)
	}
	var s Session
	DecodeJSON(env.t, resp, &s)
	return s
}

// Login signs in through the API and returns the token.
func (env *TestEnv) Login(email, password string) string {
	env.t.Helper()
	resp := env.Do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, "")
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		env.t.Fatalf("Login: expected 200, got %d", resp.StatusCode)
	}
	var s Session
	DecodeJSON(env.t, resp, &s)
	return s.Token
}

// CreateAdmin provisions an admin the way transferctl create-admin does and
// returns a token for it.
func (env *TestEnv) CreateAdmin(email, password string) string {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s, err := env.App.Auth.SignUp(ctx, service.SignUpInput{
		Email: email, Password: password, Name: "Admin", Role: domain.RoleAdmin,
	})
	if err != nil {
		env.t.Fatalf("CreateAdmin: %v", err)
	}
	return s.Token
}

// Do sends a JSON request with an optional bearer token.
func (env *TestEnv) Do(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.DoWithHeaders(method, path, body, token, nil)
}

// DoWithHeaders is Do with extra request headers.
func (env *TestEnv) DoWithHeaders(method, path string, body interface{}, token string, headers map[string]string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}

	req, err := http.NewRequest(method, env.URL(path), &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs a GET request with an optional token.
func (env *TestEnv) GET(path, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, token)
}

// POST performs a POST request with an optional token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPost, path, body, token)
}

// PUT performs a PUT request.
func (env *TestEnv) PUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPut, path, body, token)
}

// PATCH performs a PATCH request.
func (env *TestEnv) PATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPatch, path, body, token)
}

// DELETE performs a DELETE request.
func (env *TestEnv) DELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodDelete, path, nil, token)
}
