package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/messaging/kafka"
	"github.com/Credmatrix/portfolio-management-sub006/internal/testutil"
)

type fakeIndexer struct {
	indexed []*company.Company
	err     error
}

func (f *fakeIndexer) IndexCompany(_ context.Context, c *company.Company) error {
	if f.err != nil {
		return f.err
	}
	f.indexed = append(f.indexed, c)
	return nil
}

func envelope(t *testing.T, eventType string, payload interface{}) *kafka.EventEnvelope {
	t.Helper()
	env, err := kafka.NewEnvelope(eventType, "test", payload)
	require.NoError(t, err)
	return env
}

func submittedCompany(t *testing.T, repo *testutil.MemoryCompanyRepo) *company.Company {
	t.Helper()
	rec, err := company.NewSubmission("Alpha Industries", "user-1", "org-1")
	require.NoError(t, err)
	require.NoError(t, rec.MarkSubmitted(time.Now().UTC()))
	repo.Seed(rec)
	return rec
}

func TestProcessorHandleSubmitted(t *testing.T) {
	repo := testutil.NewMemoryCompanyRepo()
	pub := &fakePublisher{}
	proc := NewProcessor(repo, pub, nil, 3, nil)

	rec := submittedCompany(t, repo)
	env := envelope(t, kafka.TopicDocumentSubmitted, kafka.DocumentSubmittedPayload{
		CompanyID: string(rec.ID),
	})

	require.NoError(t, proc.HandleSubmitted(context.Background(), env))

	got, err := repo.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, company.StatusProcessing, got.Status)
	require.NotNil(t, got.ProcessingStartedAt)

	require.Len(t, pub.events, 1)
	assert.Equal(t, kafka.TopicDocumentProcessing, pub.events[0].topic)
}

func TestProcessorHandleSubmittedStaleEvent(t *testing.T) {
	repo := testutil.NewMemoryCompanyRepo()
	pub := &fakePublisher{}
	proc := NewProcessor(repo, pub, nil, 3, nil)

	rec := submittedCompany(t, repo)
	require.NoError(t, rec.MarkProcessing(time.Now().UTC()))
	require.NoError(t, rec.MarkCompleted(time.Now().UTC()))
	repo.Seed(rec)

	env := envelope(t, kafka.TopicDocumentSubmitted, kafka.DocumentSubmittedPayload{
		CompanyID: string(rec.ID),
	})

	// Stale events are swallowed so the offset commits.
	require.NoError(t, proc.HandleSubmitted(context.Background(), env))
	assert.Empty(t, pub.events)
}

func TestProcessorHandleCompleted(t *testing.T) {
	repo := testutil.NewMemoryCompanyRepo()
	indexer := &fakeIndexer{}
	proc := NewProcessor(repo, &fakePublisher{}, indexer, 3, nil)

	rec := submittedCompany(t, repo)
	require.NoError(t, rec.MarkProcessing(time.Now().UTC()))
	repo.Seed(rec)

	completedAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	env := envelope(t, kafka.TopicDocumentCompleted, kafka.DocumentCompletedPayload{
		CompanyID:   string(rec.ID),
		RiskGrade:   "cm2",
		RiskScore:   72.5,
		CompletedAt: completedAt,
	})

	require.NoError(t, proc.HandleCompleted(context.Background(), env))

	got, err := repo.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, company.StatusCompleted, got.Status)
	assert.Equal(t, company.GradeCM2, got.RiskGrade)
	require.NotNil(t, got.RiskScore)
	assert.Equal(t, 72.5, *got.RiskScore)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, completedAt, *got.CompletedAt)

	require.Len(t, indexer.indexed, 1)
	assert.Equal(t, rec.ID, indexer.indexed[0].ID)
}

func TestProcessorHandleCompletedIndexFailureIsTolerated(t *testing.T) {
	repo := testutil.NewMemoryCompanyRepo()
	indexer := &fakeIndexer{err: assert.AnError}
	proc := NewProcessor(repo, &fakePublisher{}, indexer, 3, nil)

	rec := submittedCompany(t, repo)
	require.NoError(t, rec.MarkProcessing(time.Now().UTC()))
	repo.Seed(rec)

	env := envelope(t, kafka.TopicDocumentCompleted, kafka.DocumentCompletedPayload{
		CompanyID: string(rec.ID),
		RiskGrade: "CM3",
		RiskScore: 55,
	})

	require.NoError(t, proc.HandleCompleted(context.Background(), env))

	got, err := repo.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, company.StatusCompleted, got.Status)
}

func TestProcessorHandleFailedRetries(t *testing.T) {
	repo := testutil.NewMemoryCompanyRepo()
	pub := &fakePublisher{}
	proc := NewProcessor(repo, pub, nil, 3, nil)

	rec := submittedCompany(t, repo)
	require.NoError(t, rec.MarkProcessing(time.Now().UTC()))
	repo.Seed(rec)

	env := envelope(t, kafka.TopicDocumentFailed, kafka.DocumentFailedPayload{
		CompanyID: string(rec.ID),
		Error:     "extraction failed",
	})

	require.NoError(t, proc.HandleFailed(context.Background(), env))

	// Re-enqueued: back to submitted with retry count bumped.
	got, err := repo.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, company.StatusSubmitted, got.Status)
	assert.Equal(t, 1, got.RetryCount)

	require.Len(t, pub.events, 1)
	assert.Equal(t, kafka.TopicDocumentSubmitted, pub.events[0].topic)
	payload := pub.events[0].payload.(kafka.DocumentSubmittedPayload)
	assert.Equal(t, 1, payload.RetryCount)
}

func TestProcessorHandleFailedDeadLetters(t *testing.T) {
	repo := testutil.NewMemoryCompanyRepo()
	pub := &fakePublisher{}
	proc := NewProcessor(repo, pub, nil, 2, nil)

	rec := submittedCompany(t, repo)
	require.NoError(t, rec.MarkProcessing(time.Now().UTC()))
	rec.RetryCount = 2
	repo.Seed(rec)

	env := envelope(t, kafka.TopicDocumentFailed, kafka.DocumentFailedPayload{
		CompanyID:  string(rec.ID),
		Error:      "extraction failed",
		RetryCount: 2,
	})

	require.NoError(t, proc.HandleFailed(context.Background(), env))

	// Stays failed, forwarded to the dead letter topic.
	got, err := repo.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, company.StatusFailed, got.Status)

	require.Len(t, pub.events, 1)
	assert.Equal(t, kafka.TopicDeadLetter, pub.events[0].topic)
}
