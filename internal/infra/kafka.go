package infra

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/transferdesk/platform/internal/domain"
)

// KafkaProducer wraps a kafka-go writer for publishing domain events.
type KafkaProducer struct {
	writer  *kafka.Writer
	logger  *slog.Logger
	enabled bool
}

// NewKafkaProducer creates a Kafka producer. If brokers is empty or disabled, writes are no-ops.
// Messages are hash-partitioned on their key so events for one aggregate stay ordered.
func NewKafkaProducer(brokers string, enabled bool, logger *slog.Logger) *KafkaProducer {
	if !enabled || brokers == "" {
		logger.Info("kafka producer disabled")
		return &KafkaProducer{enabled: false, logger: logger}
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(splitBrokers(brokers)...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	logger.Info("kafka producer initialized", "brokers", brokers)
	return &KafkaProducer{writer: w, logger: logger, enabled: true}
}

// Publish sends a message to the given topic. No-op if disabled.
func (p *KafkaProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if !p.enabled {
		return nil
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
}

// Close shuts down the Kafka writer.
func (p *KafkaProducer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// KafkaConsumer wraps a kafka-go reader subscribed to a set of event topics.
type KafkaConsumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	enabled bool
}

// NewKafkaConsumer creates a consumer-group reader for topics.
func NewKafkaConsumer(brokers string, topics []string, groupID string, enabled bool, logger *slog.Logger) *KafkaConsumer {
	if !enabled || brokers == "" || len(topics) == 0 {
		return &KafkaConsumer{enabled: false, logger: logger}
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     splitBrokers(brokers),
		GroupID:     groupID,
		GroupTopics: topics,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})

	return &KafkaConsumer{reader: r, logger: logger, enabled: true}
}

// Enabled reports whether the consumer is connected to a broker.
func (c *KafkaConsumer) Enabled() bool { return c.enabled }

// ReadMessage reads the next message from the consumer. Blocks until a message is available.
func (c *KafkaConsumer) ReadMessage(ctx context.Context) (kafka.Message, error) {
	return c.reader.ReadMessage(ctx)
}

// Close shuts down the Kafka reader.
func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}

// EventTopics lists every topic the outbox relay can publish to under prefix.
func EventTopics(prefix string) []string {
	lifecycle := []domain.EventType{domain.EventCreated, domain.EventUpdated, domain.EventDeleted}
	var topics []string
	for _, agg := range []domain.AggregateType{domain.AggregatePlayer, domain.AggregateTeam, domain.AggregateTransfer, domain.AggregateUser} {
		for _, evt := range lifecycle {
			topics = append(topics, domain.OutboxDraft{AggregateType: agg, EventType: evt}.Topic(prefix))
		}
	}
	for _, evt := range []domain.EventType{domain.EventRoleChanged, domain.EventPasswordResetIssued, domain.EventPasswordResetDone} {
		topics = append(topics, domain.OutboxDraft{AggregateType: domain.AggregateUser, EventType: evt}.Topic(prefix))
	}
	for _, evt := range []domain.EventType{domain.EventSignedUp, domain.EventSignedIn, domain.EventSignedOut} {
		topics = append(topics, domain.OutboxDraft{AggregateType: domain.AggregateSession, EventType: evt}.Topic(prefix))
	}
	return topics
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
