package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	payload := DocumentCompletedPayload{
		CompanyID:   "cmp-1",
		RiskGrade:   "CM2",
		RiskScore:   72.5,
		CompletedAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}

	env, err := NewEnvelope(TopicDocumentCompleted, "worker", payload)
	require.NoError(t, err)

	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, TopicDocumentCompleted, env.EventType)
	assert.Equal(t, "worker", env.Source)
	assert.Equal(t, "1.0", env.SchemaVersion)
	assert.WithinDuration(t, time.Now().UTC(), env.Timestamp, time.Minute)

	var got DocumentCompletedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &got))
	assert.Equal(t, payload, got)
}

func TestNewEnvelopeUniqueEventIDs(t *testing.T) {
	a, err := NewEnvelope(TopicDocumentSubmitted, "apiserver", DocumentSubmittedPayload{})
	require.NoError(t, err)
	b, err := NewEnvelope(TopicDocumentSubmitted, "apiserver", DocumentSubmittedPayload{})
	require.NoError(t, err)
	assert.NotEqual(t, a.EventID, b.EventID)
}

func TestNewEnvelopeUnserializablePayload(t *testing.T) {
	_, err := NewEnvelope(TopicDocumentSubmitted, "apiserver", make(chan int))
	require.Error(t, err)
}
