package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/transferdesk/platform/internal/domain"
)

// Publisher sends one message to a broker topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OutboxDB is the subset of pgxpool.Pool used by the poller.
type OutboxDB interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// OutboxPoller relays event_outbox rows to the broker and stamps them published.
type OutboxPoller struct {
	db          OutboxDB
	publisher   Publisher
	logger      *slog.Logger
	topicPrefix string
	interval    time.Duration
	batchSize   int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(db OutboxDB, publisher Publisher, topicPrefix string, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		db:          db,
		publisher:   publisher,
		logger:      logger,
		topicPrefix: topicPrefix,
		interval:    500 * time.Millisecond,
		batchSize:   100,
	}
}

// Configure overrides the poll interval and batch size. Non-positive values
// keep the defaults.
func (p *OutboxPoller) Configure(interval time.Duration, batchSize int) *OutboxPoller {
	if interval > 0 {
		p.interval = interval
	}
	if batchSize > 0 {
		p.batchSize = batchSize
	}
	return p
}

// Start begins polling in a goroutine. Stops when ctx is cancelled.
func (p *OutboxPoller) Start(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("outbox poller stopped")
				return
			case <-ticker.C:
				if _, err := p.Poll(ctx); err != nil {
					p.logger.Error("outbox poll error", "error", err)
				}
			}
		}
	}()
}

// Poll relays one batch and returns how many events were published.
func (p *OutboxPoller) Poll(ctx context.Context) (int, error) {
	rows, err := p.db.Query(ctx, `
		SELECT "id", "eventId", "aggregateType", "aggregateId", "eventType",
		       "partitionKey", "headers", "payload", "occurredAt"
		FROM event_outbox
		WHERE "publishedAt" IS NULL
		ORDER BY "id" ASC
		LIMIT $1`, p.batchSize)
	if err != nil {
		return 0, err
	}

	var events []domain.OutboxDraft
	for rows.Next() {
		var d domain.OutboxDraft
		if err := rows.Scan(&d.ID, &d.EventID, &d.AggregateType, &d.AggregateID, &d.EventType,
			&d.PartitionKey, &d.Headers, &d.Payload, &d.OccurredAt); err != nil {
			rows.Close()
			return 0, err
		}
		events = append(events, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	published := 0
	for _, e := range events {
		if err := p.publisher.Publish(ctx, e.Topic(p.topicPrefix), []byte(e.PartitionKey), EncodeEvent(e)); err != nil {
			// Stop at the first failure so per-partition order is preserved.
			p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
			break
		}

		if _, err := p.db.Exec(ctx,
			`UPDATE event_outbox SET "publishedAt" = now() WHERE "id" = $1`, e.ID); err != nil {
			p.logger.Error("mark published failed", "event_id", e.EventID, "error", err)
			break
		}
		published++
	}

	if published > 0 {
		p.logger.Debug("outbox poll complete", "published", published)
	}
	return published, nil
}

// EncodeEvent renders the broker envelope for an outbox event.
func EncodeEvent(e domain.OutboxDraft) []byte {
	msg, _ := json.Marshal(map[string]interface{}{
		"eventId":       e.EventID,
		"aggregateType": e.AggregateType,
		"aggregateId":   e.AggregateID,
		"eventType":     e.EventType,
		"payload":       e.Payload,
		"occurredAt":    e.OccurredAt,
	})
	return msg
}
