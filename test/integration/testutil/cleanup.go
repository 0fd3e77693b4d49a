//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates every application table.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		// Entities
		"transfers",
		"players",
		"teams",
		"users",

		// Auth
		"auth_users",
		"revoked_tokens",
		"password_resets",
		"login_attempts",

		// Events
		"event_outbox",
	}

	for _, table := range tables {
		_, _ = env.Pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
	}
}
