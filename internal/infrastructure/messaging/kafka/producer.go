package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Credmatrix/portfolio-management-sub006/internal/config"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "producer closed")

// writer abstracts kafka.Writer for testing.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes lifecycle events. Messages are keyed by company id so
// every event for one record lands on the same partition, preserving order.
type Producer struct {
	writer writer
	source string
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer builds a producer over the configured brokers.
func NewProducer(cfg config.KafkaConfig, source string, logger logging.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.ProducerRetries,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{writer: w, source: source, logger: logger}
}

// Publish wraps payload in an envelope and writes it to topic, keyed by key.
func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	env, err := NewEnvelope(topic, p.source, payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding event payload")
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encoding event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: raw,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("event publish failed",
			logging.String("topic", topic),
			logging.String("key", key),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeExternalService, "publishing event")
	}

	p.logger.Debug("event published",
		logging.String("topic", topic),
		logging.String("event_id", env.EventID))
	return nil
}

// Close flushes and shuts down the writer. Further Publish calls fail with
// ErrProducerClosed.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
