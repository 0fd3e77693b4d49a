package cli

import (
	"github.com/spf13/cobra"

	"github.com/transferdesk/platform/internal/infra"
)

func migrateCmd(e *env) *cobra.Command {
	c := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert database migrations",
	}

	c.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			return infra.RunMigrations(e.cfg.DSN(), e.logger)
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			return infra.RollbackMigrations(e.cfg.DSN(), steps, e.logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert; 0 reverts all")
	c.AddCommand(down)

	return c
}
