// Package kafka carries document-lifecycle events between the API server
// and the processing workers.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topic constants. One topic per lifecycle transition plus a dead letter
// topic for events the worker gave up on.
const (
	TopicDocumentSubmitted  = "document.submitted"
	TopicDocumentProcessing = "document.processing"
	TopicDocumentCompleted  = "document.completed"
	TopicDocumentFailed     = "document.failed"
	TopicDeadLetter         = "dead_letter.document"
)

// EventEnvelope standardizes event messages on every topic.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope wraps a payload value into an envelope for topic eventType.
func NewEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
		Payload:       raw,
	}, nil
}

// DocumentSubmittedPayload announces that a submission's documents are in
// object storage and processing can begin.
type DocumentSubmittedPayload struct {
	CompanyID      string    `json:"company_id"`
	RequestID      string    `json:"request_id"`
	OrganizationID string    `json:"organization_id"`
	ObjectKey      string    `json:"object_key"`
	SubmittedAt    time.Time `json:"submitted_at"`
	RetryCount     int       `json:"retry_count"`
}

// DocumentProcessingPayload marks the start of processing on a worker.
type DocumentProcessingPayload struct {
	CompanyID string    `json:"company_id"`
	StartedAt time.Time `json:"started_at"`
}

// DocumentCompletedPayload carries the outcome of a successful run.
type DocumentCompletedPayload struct {
	CompanyID   string    `json:"company_id"`
	RiskGrade   string    `json:"risk_grade"`
	RiskScore   float64   `json:"risk_score"`
	CompletedAt time.Time `json:"completed_at"`
}

// DocumentFailedPayload carries the failure reason; the worker retries
// until RetryCount exceeds its configured maximum.
type DocumentFailedPayload struct {
	CompanyID  string    `json:"company_id"`
	Error      string    `json:"error"`
	RetryCount int       `json:"retry_count"`
	FailedAt   time.Time `json:"failed_at"`
}
