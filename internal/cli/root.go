// Package cli implements transferctl, the operator command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/transferdesk/platform/internal/app"
	"github.com/transferdesk/platform/internal/infra"
)

// Execute runs transferctl and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// env is the state shared by every subcommand.
type env struct {
	cfg    *infra.Config
	logger *slog.Logger
	out    io.Writer
}

func newRootCmd() *cobra.Command {
	e := &env{out: os.Stdout}
	var debug bool

	cmd := &cobra.Command{
		Use:          "transferctl",
		Short:        "Operator tool for the transfer desk",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if debug {
				level = slog.LevelDebug
			}
			e.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			e.out = cmd.OutOrStdout()

			infra.LoadDotEnv(e.logger)
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			e.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")

	cmd.AddCommand(
		migrateCmd(e),
		createAdminCmd(e),
		exportCmd(e),
		statsCmd(e),
		archiveCmd(e),
		eventsCmd(e),
	)
	return cmd
}

// connect opens the database and assembles the application without serving it.
func (e *env) connect(ctx context.Context) (*pgxpool.Pool, *app.App, error) {
	pool, err := infra.NewPostgresPool(ctx, e.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, app.New(app.Deps{DB: pool, Config: e.cfg, Logger: e.logger}), nil
}

// loaded is connect plus a full state store load.
func (e *env) loaded(ctx context.Context) (*pgxpool.Pool, *app.App, error) {
	pool, a, err := e.connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := a.Stores.LoadAll(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("load stores: %w", err)
	}
	return pool, a, nil
}
