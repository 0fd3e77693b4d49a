package domain

import (
	"strings"
	"time"
)

// TransferType classifies how a player moves between clubs.
type TransferType string

const (
	TransferPermanent TransferType = "permanent"
	TransferLoan      TransferType = "loan"
	TransferFree      TransferType = "free"
)

// TransferStatus is the lifecycle state of a transfer record.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// Contract length bounds in years, inclusive.
const (
	MinContractYears = 0.5
	MaxContractYears = 10
)

// Transfer represents a transfers row.
//
// PlayerName is a snapshot of the player's name taken when the player was
// selected. It is deliberately not kept in sync with later renames.
type Transfer struct {
	ID             string         `json:"id"`
	PlayerID       string         `json:"playerId"`
	PlayerName     string         `json:"playerName"`
	FromTeam       string         `json:"fromTeam"`
	ToTeam         string         `json:"toTeam"`
	TransferFee    *float64       `json:"transferFee,omitempty"`
	TransferDate   time.Time      `json:"transferDate"`
	TransferType   TransferType   `json:"transferType"`
	Status         TransferStatus `json:"status"`
	ContractLength *float64       `json:"contractLength,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// IsFree reports whether no fee was paid. An absent fee means a free transfer.
func (t Transfer) IsFree() bool {
	return t.TransferFee == nil || *t.TransferFee == 0
}

// TransferInput is the candidate submitted by the transfers form.
type TransferInput struct {
	PlayerID       string         `json:"playerId"`
	PlayerName     string         `json:"playerName"`
	FromTeam       string         `json:"fromTeam"`
	ToTeam         string         `json:"toTeam"`
	TransferFee    *float64       `json:"transferFee"`
	TransferDate   time.Time      `json:"transferDate"`
	TransferType   TransferType   `json:"transferType"`
	Status         TransferStatus `json:"status"`
	ContractLength *float64       `json:"contractLength"`
	Notes          string         `json:"notes"`

	malformed fieldErrors
}

// Apply copies the (trimmed) input onto t, filling type and status defaults.
func (in TransferInput) Apply(t *Transfer) {
	t.PlayerID = strings.TrimSpace(in.PlayerID)
	t.PlayerName = strings.TrimSpace(in.PlayerName)
	t.FromTeam = strings.TrimSpace(in.FromTeam)
	t.ToTeam = strings.TrimSpace(in.ToTeam)
	t.TransferFee = in.TransferFee
	t.TransferDate = in.TransferDate
	t.TransferType = in.TransferType
	if t.TransferType == "" {
		t.TransferType = TransferPermanent
	}
	t.Status = in.Status
	if t.Status == "" {
		t.Status = TransferPending
	}
	t.ContractLength = in.ContractLength
	t.Notes = strings.TrimSpace(in.Notes)
}
