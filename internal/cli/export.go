package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/transferdesk/platform/internal/export"
	"github.com/transferdesk/platform/internal/store"
)

var exportEntities = []string{"players", "teams", "transfers", "users"}

func exportCmd(e *env) *cobra.Command {
	var dir, query string

	c := &cobra.Command{
		Use:       "export <players|teams|transfers|users>",
		Short:     "Write a CSV export to a directory",
		ValidArgs: exportEntities,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return err
			}
			if !isExportEntity(args[0]) {
				return fmt.Errorf("unknown entity %q (want one of %s)", args[0], strings.Join(exportEntities, ", "))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, a, err := e.loaded(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := exportEntity(ctx, a.Stores, args[0], query, export.FileSink{Dir: dir}); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "wrote %s.csv to %s\n", args[0], dir)
			return nil
		},
	}

	c.Flags().StringVarP(&dir, "out", "o", ".", "output directory")
	c.Flags().StringVarP(&query, "query", "q", "", "only export rows matching this search")
	return c
}

// exportEntity delivers the CSV for entity, filtered by q, to sink.
func exportEntity(ctx context.Context, stores *store.Stores, entity, q string, sink export.Sink) error {
	switch strings.ToLower(entity) {
	case "players":
		return export.ExportPlayers(ctx, sink, stores.SearchPlayers(q))
	case "teams":
		return export.ExportTeams(ctx, sink, stores.SearchTeams(q))
	case "transfers":
		return export.ExportTransfers(ctx, sink, stores.SearchTransfers(q))
	case "users":
		return export.ExportUsers(ctx, sink, stores.SearchUsers(q))
	}
	return fmt.Errorf("unknown entity %q (want one of %s)", entity, strings.Join(exportEntities, ", "))
}

func isExportEntity(s string) bool {
	return slices.Contains(exportEntities, strings.ToLower(s))
}
