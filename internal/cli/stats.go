package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/transferdesk/platform/internal/dashboard"
	"github.com/transferdesk/platform/internal/domain"
	"github.com/transferdesk/platform/internal/store"
)

func statsCmd(e *env) *cobra.Command {
	var asJSON bool

	c := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard figures",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, a, err := e.loaded(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			return writeStats(e.out, computeStats(a.Stores, time.Now()), asJSON)
		},
	}

	c.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return c
}

func computeStats(stores *store.Stores, now time.Time) dashboard.Stats {
	return dashboard.Compute(stores.Players.List(), stores.Teams.List(), stores.Transfers.List(), now)
}

func writeStats(w io.Writer, s dashboard.Stats, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(w, "players:          %d\n", s.TotalPlayers)
	fmt.Fprintf(w, "teams:            %d\n", s.TotalTeams)
	fmt.Fprintf(w, "transfers:        %d\n", s.TotalTransfers)
	fmt.Fprintf(w, "recent transfers: %d\n", s.RecentTransfers)

	if len(s.LatestTransfers) > 0 {
		fmt.Fprintln(w, "\nlatest transfers:")
		for _, t := range s.LatestTransfers {
			fmt.Fprintf(w, "- %s: %s -> %s (%s)\n", t.PlayerName, t.FromTeam, t.ToTeam, t.FeeLabel)
		}
	}
	if len(s.RecentPlayers) > 0 {
		fmt.Fprintln(w, "\nplayers:")
		for _, p := range s.RecentPlayers {
			fmt.Fprintf(w, "- %s (%s)\n", p.Name, positionLabel(p.Position))
		}
	}
	return nil
}

func positionLabel(p domain.Position) string {
	if p == "" {
		return "-"
	}
	return string(p)
}
