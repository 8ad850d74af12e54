package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

type fakeWriter struct {
	messages []segkafka.Message
	writeErr error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...segkafka.Message) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestProducer(w writer) *Producer {
	return &Producer{writer: w, source: "apiserver", logger: logging.NewNopLogger()}
}

func TestProducerPublish(t *testing.T) {
	fw := &fakeWriter{}
	p := newTestProducer(fw)

	payload := DocumentSubmittedPayload{
		CompanyID:      "cmp-1",
		RequestID:      "req-1",
		OrganizationID: "org-1",
		ObjectKey:      "org-1/cmp-1/documents.zip",
		SubmittedAt:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
	err := p.Publish(context.Background(), TopicDocumentSubmitted, "cmp-1", payload)
	require.NoError(t, err)
	require.Len(t, fw.messages, 1)

	msg := fw.messages[0]
	assert.Equal(t, TopicDocumentSubmitted, msg.Topic)
	assert.Equal(t, "cmp-1", string(msg.Key))

	var env EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, TopicDocumentSubmitted, env.EventType)
	assert.Equal(t, "apiserver", env.Source)
	assert.Equal(t, "1.0", env.SchemaVersion)

	var got DocumentSubmittedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, payload, got)
}

func TestProducerPublishWriteError(t *testing.T) {
	fw := &fakeWriter{writeErr: errors.New(errors.ErrCodeExternalService, "broker down")}
	p := newTestProducer(fw)

	err := p.Publish(context.Background(), TopicDocumentFailed, "cmp-2", DocumentFailedPayload{CompanyID: "cmp-2"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeExternalService))
}

func TestProducerPublishUnserializablePayload(t *testing.T) {
	fw := &fakeWriter{}
	p := newTestProducer(fw)

	err := p.Publish(context.Background(), TopicDocumentCompleted, "cmp-3", func() {})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSerialization))
	assert.Empty(t, fw.messages)
}

func TestProducerClose(t *testing.T) {
	fw := &fakeWriter{}
	p := newTestProducer(fw)

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)

	// Close is idempotent.
	require.NoError(t, p.Close())

	err := p.Publish(context.Background(), TopicDocumentSubmitted, "cmp-4", DocumentSubmittedPayload{})
	assert.ErrorIs(t, err, ErrProducerClosed)
	assert.Empty(t, fw.messages)
}
