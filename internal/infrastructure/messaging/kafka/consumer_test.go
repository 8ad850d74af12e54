package kafka

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

type fakeReader struct {
	messages  []segkafka.Message
	pos       int
	committed []segkafka.Message
	closed    bool
}

func (f *fakeReader) FetchMessage(_ context.Context) (segkafka.Message, error) {
	if f.pos >= len(f.messages) {
		return segkafka.Message{}, io.EOF
	}
	msg := f.messages[f.pos]
	f.pos++
	return msg, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...segkafka.Message) error {
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func envelopeMessage(t *testing.T, eventType string, payload interface{}) segkafka.Message {
	t.Helper()
	env, err := NewEnvelope(eventType, "apiserver", payload)
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return segkafka.Message{Topic: eventType, Value: raw}
}

func newTestConsumer(r reader) *Consumer {
	return &Consumer{reader: r, topic: TopicDocumentSubmitted, logger: logging.NewNopLogger()}
}

func TestConsumerRunDispatchesAndCommits(t *testing.T) {
	fr := &fakeReader{messages: []segkafka.Message{
		envelopeMessage(t, TopicDocumentSubmitted, DocumentSubmittedPayload{CompanyID: "cmp-1"}),
		envelopeMessage(t, TopicDocumentSubmitted, DocumentSubmittedPayload{CompanyID: "cmp-2"}),
	}}
	c := newTestConsumer(fr)

	var seen []string
	err := c.Run(context.Background(), func(_ context.Context, env *EventEnvelope) error {
		var p DocumentSubmittedPayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		seen = append(seen, p.CompanyID)
		return nil
	})
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"cmp-1", "cmp-2"}, seen)
	assert.Len(t, fr.committed, 2)
}

func TestConsumerRunHandlerFailureLeavesUncommitted(t *testing.T) {
	fr := &fakeReader{messages: []segkafka.Message{
		envelopeMessage(t, TopicDocumentSubmitted, DocumentSubmittedPayload{CompanyID: "cmp-1"}),
	}}
	c := newTestConsumer(fr)

	err := c.Run(context.Background(), func(_ context.Context, _ *EventEnvelope) error {
		return errors.New(errors.ErrCodeProcessingFailed, "boom")
	})
	require.ErrorIs(t, err, io.EOF)
	assert.Empty(t, fr.committed)
}

func TestConsumerRunSkipsUndecodableMessage(t *testing.T) {
	fr := &fakeReader{messages: []segkafka.Message{
		{Topic: TopicDocumentSubmitted, Value: []byte("not json")},
		envelopeMessage(t, TopicDocumentSubmitted, DocumentSubmittedPayload{CompanyID: "cmp-1"}),
	}}
	c := newTestConsumer(fr)

	var handled int
	err := c.Run(context.Background(), func(_ context.Context, _ *EventEnvelope) error {
		handled++
		return nil
	})
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, handled)
	// Both the skipped and the handled message are committed.
	assert.Len(t, fr.committed, 2)
}

func TestConsumerRunStopsOnContextCancel(t *testing.T) {
	fr := &fakeReader{messages: []segkafka.Message{
		envelopeMessage(t, TopicDocumentSubmitted, DocumentSubmittedPayload{CompanyID: "cmp-1"}),
	}}
	c := newTestConsumer(fr)

	ctx, cancel := context.WithCancel(context.Background())
	err := c.Run(ctx, func(_ context.Context, _ *EventEnvelope) error {
		cancel()
		return nil
	})
	// The second fetch observes the cancelled context via the fake's EOF;
	// a real reader returns the context error, which Run passes through.
	require.Error(t, err)
}

func TestConsumerClose(t *testing.T) {
	fr := &fakeReader{}
	c := newTestConsumer(fr)
	require.NoError(t, c.Close())
	assert.True(t, fr.closed)
}
