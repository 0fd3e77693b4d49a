package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/transferdesk/platform/internal/infra"
)

func eventsCmd(e *env) *cobra.Command {
	c := &cobra.Command{
		Use:   "events",
		Short: "Inspect domain events on Kafka",
	}

	var group string
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print domain events as they are published",
		RunE: func(cmd *cobra.Command, _ []string) error {
			topics := infra.EventTopics(e.cfg.KafkaTopicPrefix)
			consumer := infra.NewKafkaConsumer(e.cfg.KafkaBrokers, topics, group, e.cfg.KafkaEnabled, e.logger)
			defer consumer.Close()
			if !consumer.Enabled() {
				return fmt.Errorf("kafka is disabled; set KAFKA_ENABLED=true and KAFKA_BROKERS")
			}
			return tailEvents(cmd.Context(), consumer, e.out)
		},
	}
	tail.Flags().StringVar(&group, "group", "transferctl-tail", "consumer group id")
	c.AddCommand(tail)

	return c
}

// messageReader is the part of infra.KafkaConsumer tailEvents needs.
type messageReader interface {
	ReadMessage(ctx context.Context) (message, error)
}

type message struct {
	Topic string
	Key   []byte
	Value []byte
}

type kafkaReader struct{ c *infra.KafkaConsumer }

func (r kafkaReader) ReadMessage(ctx context.Context) (message, error) {
	m, err := r.c.ReadMessage(ctx)
	if err != nil {
		return message{}, err
	}
	return message{Topic: m.Topic, Key: m.Key, Value: m.Value}, nil
}

func tailEvents(ctx context.Context, c *infra.KafkaConsumer, w io.Writer) error {
	return printMessages(ctx, kafkaReader{c}, w)
}

// printMessages writes one line per message until ctx ends.
func printMessages(ctx context.Context, r messageReader, w io.Writer) error {
	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		fmt.Fprintf(w, "%s key=%s %s\n", m.Topic, m.Key, m.Value)
	}
}
