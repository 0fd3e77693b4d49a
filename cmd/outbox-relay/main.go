package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/transferdesk/platform/internal/infra"
)

// outbox-relay publishes event_outbox rows to Kafka outside the API process.
// Run it with OUTBOX_RELAY_IN_API=false on the API so only one relay polls.
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
		logger.Error("outbox relay failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *infra.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.KafkaEnabled {
		return fmt.Errorf("KAFKA_ENABLED must be true for the outbox relay")
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-relay connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, true, logger)
	defer producer.Close()

	infra.NewOutboxPoller(pool, producer, cfg.KafkaTopicPrefix, logger).
		Configure(cfg.OutboxPollInterval, cfg.OutboxBatchSize).
		Start(ctx)

	<-ctx.Done()
	logger.Info("outbox-relay shutting down")
	return nil
}
