// Package export renders entity collections as CSV and delivers the result
// to a Sink.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/transferdesk/platform/internal/dates"
	"github.com/transferdesk/platform/internal/domain"
)

// Fixed output file names.
const (
	PlayersFile   = "players.csv"
	TeamsFile     = "teams.csv"
	TransfersFile = "transfers.csv"
	UsersFile     = "users.csv"

	LatestTransfersFile = "latest-transfers.csv"
)

// Column headers per entity.
var (
	PlayerHeaders   = []string{"Name", "Age", "Position", "Nationality", "Current Team", "Market Value", "Height", "Weight"}
	TeamHeaders     = []string{"Name", "League", "Country", "Founded", "Stadium", "Manager"}
	TransferHeaders = []string{"Player Name", "From Team", "To Team", "Transfer Fee", "Transfer Date", "Transfer Type", "Status", "Contract Length"}
	UserHeaders     = []string{"Name", "Email", "Role", "Department", "Created Date"}
)

// quoted wraps s in double quotes. Embedded quotes are not escaped, so a value
// containing '"' produces a malformed row.
func quoted(s string) string {
	return `"` + s + `"`
}

// number renders v in plain decimal notation. Unset, zero and NaN values
// render as an empty cell, as do unset and zero integers and absent dates.
func number(v *float64) string {
	if v == nil || *v == 0 || math.IsNaN(*v) {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func integer(v *int) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.Itoa(*v)
}

func shortDate(v any) string {
	t, p := dates.Normalize(v)
	if p != dates.Present {
		return ""
	}
	return t.Format(dates.ShortLayout)
}

func build(headers []string, rows [][]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(headers, ","))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

// PlayersCSV renders players in the given order.
func PlayersCSV(players []domain.Player) string {
	rows := make([][]string, 0, len(players))
	for _, p := range players {
		rows = append(rows, []string{
			quoted(p.Name),
			integer(&p.Age),
			quoted(string(p.Position)),
			quoted(p.Nationality),
			quoted(p.CurrentTeam),
			number(p.MarketValue),
			number(p.Height),
			number(p.Weight),
		})
	}
	return build(PlayerHeaders, rows)
}

// TeamsCSV renders teams in the given order.
func TeamsCSV(teams []domain.Team) string {
	rows := make([][]string, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, []string{
			quoted(t.Name),
			quoted(t.League),
			quoted(t.Country),
			integer(t.Founded),
			quoted(t.Stadium),
			quoted(t.Manager),
		})
	}
	return build(TeamHeaders, rows)
}

// TransfersCSV renders transfers in the given order.
func TransfersCSV(transfers []domain.Transfer) string {
	rows := make([][]string, 0, len(transfers))
	for _, t := range transfers {
		rows = append(rows, []string{
			quoted(t.PlayerName),
			quoted(t.FromTeam),
			quoted(t.ToTeam),
			number(t.TransferFee),
			shortDate(t.TransferDate),
			quoted(string(t.TransferType)),
			quoted(string(t.Status)),
			number(t.ContractLength),
		})
	}
	return build(TransferHeaders, rows)
}

// UsersCSV renders users in the given order.
func UsersCSV(users []domain.User) string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			quoted(u.Name),
			quoted(u.Email),
			quoted(string(u.Role)),
			quoted(string(u.Department)),
			shortDate(u.CreatedAt),
		})
	}
	return build(UserHeaders, rows)
}

// ExportPlayers delivers players.csv to sink.
func ExportPlayers(ctx context.Context, sink Sink, players []domain.Player) error {
	return Download(ctx, sink, PlayersFile, PlayersCSV(players))
}

// ExportTeams delivers teams.csv to sink.
func ExportTeams(ctx context.Context, sink Sink, teams []domain.Team) error {
	return Download(ctx, sink, TeamsFile, TeamsCSV(teams))
}

// ExportTransfers delivers transfers.csv to sink.
func ExportTransfers(ctx context.Context, sink Sink, transfers []domain.Transfer) error {
	return Download(ctx, sink, TransfersFile, TransfersCSV(transfers))
}

// ExportUsers delivers users.csv to sink.
func ExportUsers(ctx context.Context, sink Sink, users []domain.User) error {
	return Download(ctx, sink, UsersFile, UsersCSV(users))
}

// ExportToCSV renders arbitrary rows keyed by header and delivers them under
// filename. Every cell is quoted. Empty input logs a warning and delivers
// nothing.
func ExportToCSV(ctx context.Context, logger *slog.Logger, sink Sink, rows []map[string]any, headers []string, filename string) error {
	if len(rows) == 0 {
		logger.WarnContext(ctx, "no data to export", "filename", filename)
		return nil
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = quoted(cell(row[h]))
		}
		out = append(out, cells)
	}
	return Download(ctx, sink, filename, build(headers, out))
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time, *time.Time, dates.Timestamp:
		return shortDate(x)
	case float64:
		return number(&x)
	case *float64:
		return number(x)
	case int:
		return integer(&x)
	case *int:
		return integer(x)
	case fmt.Stringer:
		return x.String()
	default:
		if reflect.ValueOf(x).IsZero() {
			return ""
		}
		return fmt.Sprint(x)
	}
}
