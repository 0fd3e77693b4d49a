package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

func newDraft(aggregate AggregateType, aggregateID string, evt EventType, payload any) OutboxDraft {
	body, _ := json.Marshal(payload)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: aggregate,
		AggregateID:   aggregateID,
		EventType:     evt,
		PartitionKey:  aggregateID,
		Headers:       json.RawMessage(`{}`),
		Payload:       body,
		OccurredAt:    time.Now(),
	}
}

// NewPlayerEvent records a player lifecycle change. The full record is the payload.
func NewPlayerEvent(evt EventType, p Player) OutboxDraft {
	return newDraft(AggregatePlayer, p.ID, evt, p)
}

// NewTeamEvent records a team lifecycle change.
func NewTeamEvent(evt EventType, t Team) OutboxDraft {
	return newDraft(AggregateTeam, t.ID, evt, t)
}

// NewTransferEvent records a transfer lifecycle change. Transfers are
// partitioned by player so a player's moves are consumed in order.
func NewTransferEvent(evt EventType, t Transfer) OutboxDraft {
	d := newDraft(AggregateTransfer, t.ID, evt, t)
	if t.PlayerID != "" {
		d.PartitionKey = t.PlayerID
	}
	return d
}

// NewUserEvent records a user lifecycle change.
func NewUserEvent(evt EventType, u User) OutboxDraft {
	return newDraft(AggregateUser, u.ID, evt, u)
}

// NewDeletedEvent records the removal of any aggregate by id.
func NewDeletedEvent(aggregate AggregateType, id string) OutboxDraft {
	return newDraft(aggregate, id, EventDeleted, map[string]string{"id": id})
}

// NewSessionEvent records a sign-in, sign-up or sign-out.
func NewSessionEvent(evt EventType, userID, email string) OutboxDraft {
	return newDraft(AggregateSession, userID, evt, map[string]string{
		"user_id": userID,
		"email":   email,
	})
}

// NewPasswordResetEvent carries the plaintext reset token to the mail relay.
// The token is only ever stored hashed.
func NewPasswordResetEvent(userID, email, token string, expiresAt time.Time) OutboxDraft {
	return newDraft(AggregateUser, userID, EventPasswordResetIssued, map[string]any{
		"user_id":    userID,
		"email":      email,
		"token":      token,
		"expires_at": expiresAt,
	})
}

// NewPasswordResetDoneEvent records that a reset token was redeemed.
func NewPasswordResetDoneEvent(userID string) OutboxDraft {
	return newDraft(AggregateUser, userID, EventPasswordResetDone, map[string]string{"user_id": userID})
}
