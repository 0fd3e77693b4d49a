package domain

import (
	"strings"
	"time"
)

// Position is the on-pitch role of a player.
type Position string

const (
	PositionGoalkeeper Position = "Goalkeeper"
	PositionDefender   Position = "Defender"
	PositionMidfielder Position = "Midfielder"
	PositionForward    Position = "Forward"
)

// Positions returns all valid positions in form order.
func Positions() []Position {
	return []Position{PositionGoalkeeper, PositionDefender, PositionMidfielder, PositionForward}
}

// Foot is a player's preferred foot.
type Foot string

const (
	FootRight Foot = "right"
	FootLeft  Foot = "left"
	FootBoth  Foot = "both"
)

// Player age bounds, inclusive.
const (
	MinPlayerAge = 16
	MaxPlayerAge = 45
)

// Player represents a players row.
type Player struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Position      Position  `json:"position"`
	Nationality   string    `json:"nationality"`
	CurrentTeam   string    `json:"currentTeam"`
	MarketValue   *float64  `json:"marketValue,omitempty"`
	Height        *float64  `json:"height,omitempty"`
	Weight        *float64  `json:"weight,omitempty"`
	Bio           string    `json:"bio,omitempty"`
	PreferredFoot Foot      `json:"preferredFoot,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PlayerInput is the candidate submitted by the players form. Optional numeric
// fields are nil when absent; optional strings are empty when absent.
type PlayerInput struct {
	Name          string   `json:"name"`
	Age           *int     `json:"age"`
	Position      Position `json:"position"`
	Nationality   string   `json:"nationality"`
	CurrentTeam   string   `json:"currentTeam"`
	MarketValue   *float64 `json:"marketValue"`
	Height        *float64 `json:"height"`
	Weight        *float64 `json:"weight"`
	Bio           string   `json:"bio"`
	PreferredFoot Foot     `json:"preferredFoot"`

	malformed fieldErrors
}

// Apply copies the (trimmed) input onto p. Identity and timestamps are untouched.
func (in PlayerInput) Apply(p *Player) {
	p.Name = strings.TrimSpace(in.Name)
	if in.Age != nil {
		p.Age = *in.Age
	}
	p.Position = in.Position
	p.Nationality = strings.TrimSpace(in.Nationality)
	p.CurrentTeam = strings.TrimSpace(in.CurrentTeam)
	p.MarketValue = in.MarketValue
	p.Height = in.Height
	p.Weight = in.Weight
	p.Bio = strings.TrimSpace(in.Bio)
	p.PreferredFoot = in.PreferredFoot
	if p.PreferredFoot == "" {
		p.PreferredFoot = FootRight
	}
}
