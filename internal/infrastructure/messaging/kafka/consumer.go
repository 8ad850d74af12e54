package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/Credmatrix/portfolio-management-sub006/internal/config"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
)

// Handler processes one decoded event. Returning an error leaves the
// message uncommitted so it is redelivered.
type Handler func(ctx context.Context, env *EventEnvelope) error

// reader abstracts kafka.Reader for testing.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic inside a consumer group and dispatches events to
// a Handler. Offsets commit only after the handler succeeds, giving
// at-least-once delivery.
type Consumer struct {
	reader reader
	topic  string
	logger logging.Logger
}

// NewConsumer subscribes to topic within the configured consumer group.
func NewConsumer(cfg config.KafkaConfig, topic string, logger logging.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		Topic:          topic,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		CommitInterval: 0, // explicit commits only
	})
	return &Consumer{reader: r, topic: topic, logger: logger}
}

// Topic returns the subscribed topic.
func (c *Consumer) Topic() string { return c.topic }

// Run fetches and dispatches messages until ctx is cancelled. Undecodable
// messages are committed and skipped; handler failures leave the offset
// uncommitted for redelivery.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var env EventEnvelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			c.logger.Warn("skipping undecodable message",
				logging.String("topic", c.topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		if err := handle(ctx, &env); err != nil {
			c.logger.Error("event handler failed, message will be redelivered",
				logging.String("topic", c.topic),
				logging.String("event_id", env.EventID),
				logging.Err(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// Close shuts the underlying reader down.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
