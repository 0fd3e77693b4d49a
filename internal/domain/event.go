package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventCreated             EventType = "created"
	EventUpdated             EventType = "updated"
	EventDeleted             EventType = "deleted"
	EventRoleChanged         EventType = "role_changed"
	EventSignedUp            EventType = "signed_up"
	EventSignedIn            EventType = "signed_in"
	EventSignedOut           EventType = "signed_out"
	EventPasswordResetIssued EventType = "password_reset_requested"
	EventPasswordResetDone   EventType = "password_reset_completed"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregatePlayer   AggregateType = "player"
	AggregateTeam     AggregateType = "team"
	AggregateTransfer AggregateType = "transfer"
	AggregateUser     AggregateType = "user"
	AggregateSession  AggregateType = "session"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	ID            int64           `json:"-"`
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// Topic returns the broker topic for the event under the given prefix.
func (d OutboxDraft) Topic(prefix string) string {
	return prefix + "." + string(d.AggregateType) + "." + string(d.EventType)
}
