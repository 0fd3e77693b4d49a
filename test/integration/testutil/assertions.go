//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// ErrorBody is the API error shape.
type ErrorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields"`
	Redirect string            `json:"redirect"`
}

// AssertErrorCode checks that the response body carries the expected error
// code and returns the decoded body.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) ErrorBody {
	t.Helper()
	var body ErrorBody
	DecodeJSON(t, resp, &body)
	if body.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, body.Code, body.Message)
	}
	return body
}

// CountOutboxEvents returns the number of outbox events for an aggregate.
func CountOutboxEvents(t *testing.T, env *TestEnv, aggregateID string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_outbox WHERE "aggregateId" = $1`, aggregateID).Scan(&count)
	if err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}

// OutboxPayload returns the payload of the latest event of eventType for an aggregate.
func OutboxPayload(t *testing.T, env *TestEnv, aggregateID, eventType string) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var raw []byte
	err := env.Pool.QueryRow(ctx,
		`SELECT "payload" FROM event_outbox WHERE "aggregateId" = $1 AND "eventType" = $2 ORDER BY "id" DESC LIMIT 1`,
		aggregateID, eventType).Scan(&raw)
	if err != nil {
		t.Fatalf("OutboxPayload: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("OutboxPayload: decode: %v", err)
	}
	return out
}
