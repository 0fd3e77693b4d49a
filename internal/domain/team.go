package domain

import (
	"strings"
	"time"
)

// MinFoundedYear is the earliest accepted founding year.
const MinFoundedYear = 1800

// Team represents a teams row.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	League      string    `json:"league"`
	Country     string    `json:"country"`
	Founded     *int      `json:"founded,omitempty"`
	Stadium     string    `json:"stadium,omitempty"`
	Manager     string    `json:"manager,omitempty"`
	Website     string    `json:"website,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamInput is the candidate submitted by the teams form.
type TeamInput struct {
	Name        string `json:"name"`
	League      string `json:"league"`
	Country     string `json:"country"`
	Founded     *int   `json:"founded"`
	Stadium     string `json:"stadium"`
	Manager     string `json:"manager"`
	Website     string `json:"website"`
	Description string `json:"description"`

	malformed fieldErrors
}

// Apply copies the (trimmed) input onto t.
func (in TeamInput) Apply(t *Team) {
	t.Name = strings.TrimSpace(in.Name)
	t.League = strings.TrimSpace(in.League)
	t.Country = strings.TrimSpace(in.Country)
	t.Founded = in.Founded
	t.Stadium = strings.TrimSpace(in.Stadium)
	t.Manager = strings.TrimSpace(in.Manager)
	t.Website = strings.TrimSpace(in.Website)
	t.Description = strings.TrimSpace(in.Description)
}
