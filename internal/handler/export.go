package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/transferdesk/platform/internal/dashboard"
	"github.com/transferdesk/platform/internal/export"
	"github.com/transferdesk/platform/internal/store"
)

// ExportHandler streams CSV exports of the current list view. When an
// archive sink is configured every export is also copied there, best effort.
type ExportHandler struct {
	stores  *store.Stores
	archive export.Sink
	logger  *slog.Logger
	now     func() time.Time
}

// NewExportHandler creates an ExportHandler. archive may be nil.
func NewExportHandler(stores *store.Stores, archive export.Sink, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{stores: stores, archive: archive, logger: logger, now: time.Now}
}

func (h *ExportHandler) sink(w http.ResponseWriter) export.Sink {
	sinks := export.MultiSink{export.HTTPSink{W: w}}
	if h.archive != nil {
		sinks = append(sinks, export.BestEffort(h.archive, h.logger))
	}
	return sinks
}

func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, sink export.Sink, q string) error) {
	if err := run(r.Context(), h.sink(w), r.URL.Query().Get("q")); err != nil {
		// Headers are already sent once the HTTP sink has started writing.
		h.logger.ErrorContext(r.Context(), "export failed", "path", r.URL.Path, "error", err)
	}
}

// Players handles GET /players/export.
func (h *ExportHandler) Players(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, sink export.Sink, q string) error {
		return export.ExportPlayers(ctx, sink, h.stores.SearchPlayers(q))
	})
}

// Teams handles GET /teams/export.
func (h *ExportHandler) Teams(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, sink export.Sink, q string) error {
		return export.ExportTeams(ctx, sink, h.stores.SearchTeams(q))
	})
}

// Transfers handles GET /transfers/export.
func (h *ExportHandler) Transfers(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, sink export.Sink, q string) error {
		return export.ExportTransfers(ctx, sink, h.stores.SearchTransfers(q))
	})
}

// Users handles GET /users/export.
func (h *ExportHandler) Users(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, sink export.Sink, q string) error {
		return export.ExportUsers(ctx, sink, h.stores.SearchUsers(q))
	})
}

// Columns of the dashboard's latest transfers export.
var latestTransferHeaders = []string{"Player Name", "From Team", "To Team", "Fee"}

// LatestTransfers handles GET /dashboard/export. It writes the dashboard's
// latest transfers table, or 204 when there is nothing to export.
func (h *ExportHandler) LatestTransfers(w http.ResponseWriter, r *http.Request) {
	stats := dashboard.Compute(
		h.stores.Players.List(),
		h.stores.Teams.List(),
		h.stores.Transfers.List(),
		h.now(),
	)

	rows := make([]map[string]any, 0, len(stats.LatestTransfers))
	for _, t := range stats.LatestTransfers {
		rows = append(rows, map[string]any{
			"Player Name": t.PlayerName,
			"From Team":   t.FromTeam,
			"To Team":     t.ToTeam,
			"Fee":         t.FeeLabel,
		})
	}

	h.serve(w, r, func(ctx context.Context, sink export.Sink, _ string) error {
		return export.ExportToCSV(ctx, h.logger, sink, rows, latestTransferHeaders, export.LatestTransfersFile)
	})
	if len(rows) == 0 {
		w.WriteHeader(http.StatusNoContent)
	}
}
