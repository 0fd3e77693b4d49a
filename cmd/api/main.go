package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/transferdesk/platform/internal/app"
	"github.com/transferdesk/platform/internal/export"
	"github.com/transferdesk/platform/internal/infra"
)

const housekeepingInterval = 10 * time.Minute

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	infra.LoadDotEnv(bootLogger)

	cfg, err := infra.LoadConfig()
	if err != nil {
		bootLogger.Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *infra.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Migrations
	if cfg.RunMigrations {
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Export archive
	var archive export.ObjectStore
	if cfg.ExportArchiveEnabled {
		s3Store, err := infra.NewS3Store(ctx, infra.S3ConfigFrom(cfg))
		if err != nil {
			return fmt.Errorf("export archive: %w", err)
		}
		archive = s3Store
		logger.Info("export archive enabled", "bucket", cfg.ExportS3Bucket)
	}

	a := app.New(app.Deps{DB: pool, Config: cfg, Logger: logger, Archive: archive})

	if err := a.Stores.LoadAll(ctx); err != nil {
		return fmt.Errorf("load stores: %w", err)
	}
	logger.Info("stores loaded",
		"players", a.Stores.Players.Len(),
		"teams", a.Stores.Teams.Len(),
		"transfers", a.Stores.Transfers.Len(),
		"users", a.Stores.Users.Len(),
	)

	n, err := a.Auth.LoadRevocations(ctx)
	if err != nil {
		return fmt.Errorf("load revocations: %w", err)
	}
	logger.Info("revocation list loaded", "entries", n)

	// Outbox relay
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	if cfg.KafkaEnabled && cfg.OutboxRelayInAPI {
		infra.NewOutboxPoller(pool, producer, cfg.KafkaTopicPrefix, logger).
			Configure(cfg.OutboxPollInterval, cfg.OutboxBatchSize).
			Start(ctx)
	}

	a.Stores.StartSync(ctx, cfg.StoreSyncInterval, logger)
	a.Limiter.StartSweeper(ctx, time.Minute)
	go housekeeping(ctx, a, logger)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}

// housekeeping purges expired auth and idempotency state every
// housekeepingInterval until ctx is cancelled.
func housekeeping(ctx context.Context, a *app.App, logger *slog.Logger) {
	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			attempts, err := a.Lockout.Purge(ctx)
			if err != nil {
				logger.Warn("purge login attempts failed", "error", err)
			}
			revoked, err := a.Auth.PruneRevocations(ctx)
			if err != nil {
				logger.Warn("prune revocations failed", "error", err)
			}
			keys := a.Idempotency.Sweep()
			logger.Debug("housekeeping complete",
				"login_attempts", attempts,
				"revoked_tokens", revoked,
				"idempotency_keys", keys,
			)
		}
	}
}
