// Package dashboard derives the summary figures shown on the landing view.
package dashboard

import (
	"strconv"
	"time"

	"github.com/transferdesk/platform/internal/domain"
)

// RecentWindow is the trailing window used for RecentTransfers.
const RecentWindow = 30 * 24 * time.Hour

const listSize = 5

// Stats is recomputed from the current snapshots on every request.
type Stats struct {
	TotalPlayers    int               `json:"totalPlayers"`
	TotalTeams      int               `json:"totalTeams"`
	TotalTransfers  int               `json:"totalTransfers"`
	RecentTransfers int               `json:"recentTransfers"`
	RecentPlayers   []PlayerSummary   `json:"recentPlayers"`
	LatestTransfers []TransferSummary `json:"latestTransfers"`
}

// PlayerSummary is one entry of the recent players list.
type PlayerSummary struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Position domain.Position `json:"position"`
}

// TransferSummary is one entry of the latest transfers list.
type TransferSummary struct {
	ID         string `json:"id"`
	PlayerName string `json:"playerName"`
	FromTeam   string `json:"fromTeam"`
	ToTeam     string `json:"toTeam"`
	FeeLabel   string `json:"feeLabel"`
}

// Compute derives Stats from snapshots already in repository order (players
// by name, transfers by date descending). A transfer is recent when its date
// is strictly after now minus RecentWindow.
func Compute(players []domain.Player, teams []domain.Team, transfers []domain.Transfer, now time.Time) Stats {
	cutoff := now.Add(-RecentWindow)

	s := Stats{
		TotalPlayers:    len(players),
		TotalTeams:      len(teams),
		TotalTransfers:  len(transfers),
		RecentPlayers:   make([]PlayerSummary, 0, listSize),
		LatestTransfers: make([]TransferSummary, 0, listSize),
	}

	for _, t := range transfers {
		if t.TransferDate.After(cutoff) {
			s.RecentTransfers++
		}
	}

	for _, p := range players[:min(listSize, len(players))] {
		s.RecentPlayers = append(s.RecentPlayers, PlayerSummary{ID: p.ID, Name: p.Name, Position: p.Position})
	}
	for _, t := range transfers[:min(listSize, len(transfers))] {
		s.LatestTransfers = append(s.LatestTransfers, TransferSummary{
			ID:         t.ID,
			PlayerName: playerLabel(t.PlayerName),
			FromTeam:   t.FromTeam,
			ToTeam:     t.ToTeam,
			FeeLabel:   FeeLabel(t),
		})
	}
	return s
}

// FeeLabel renders a transfer fee as "$<fee>", or "Free transfer" when none
// was paid.
func FeeLabel(t domain.Transfer) string {
	if t.IsFree() {
		return "Free transfer"
	}
	return "$" + strconv.FormatFloat(*t.TransferFee, 'f', -1, 64)
}

func playerLabel(name string) string {
	if name == "" {
		return "Player"
	}
	return name
}
