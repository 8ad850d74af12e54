package ingestion

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/messaging/kafka"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// SearchIndexer mirrors completed companies into the search index.
// *opensearch.Indexer satisfies it.
type SearchIndexer interface {
	IndexCompany(ctx context.Context, c *company.Company) error
}

// Processor applies lifecycle events to company records on the worker side.
// The analysis engine publishes completed/failed events; the processor's job
// is to keep the database and search index consistent with them.
type Processor struct {
	repo       company.Repository
	publisher  EventPublisher
	indexer    SearchIndexer
	maxRetries int
	logger     logging.Logger
	now        func() time.Time
}

// NewProcessor wires the worker-side event processor.
func NewProcessor(repo company.Repository, publisher EventPublisher, indexer SearchIndexer, maxRetries int, logger logging.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Processor{
		repo:       repo,
		publisher:  publisher,
		indexer:    indexer,
		maxRetries: maxRetries,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// HandleSubmitted moves a submitted record to processing and announces it.
func (p *Processor) HandleSubmitted(ctx context.Context, env *kafka.EventEnvelope) error {
	var payload kafka.DocumentSubmittedPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decoding submitted payload")
	}

	rec, err := p.repo.GetByID(ctx, common.ID(payload.CompanyID))
	if err != nil {
		return err
	}

	now := p.now()
	if err := rec.MarkProcessing(now); err != nil {
		// The record already moved on; the event is stale, not a failure.
		p.logger.Warn("skipping stale submitted event",
			logging.String("company_id", payload.CompanyID),
			logging.String("status", string(rec.Status)))
		return nil
	}
	if err := p.repo.Update(ctx, rec); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "persisting processing transition")
	}

	processing := kafka.DocumentProcessingPayload{
		CompanyID: payload.CompanyID,
		StartedAt: now,
	}
	if err := p.publisher.Publish(ctx, kafka.TopicDocumentProcessing, payload.CompanyID, processing); err != nil {
		p.logger.Warn("could not announce processing start",
			logging.String("company_id", payload.CompanyID),
			logging.Err(err))
	}
	return nil
}

// HandleCompleted applies the analysis outcome and mirrors the record into
// the search index.
func (p *Processor) HandleCompleted(ctx context.Context, env *kafka.EventEnvelope) error {
	var payload kafka.DocumentCompletedPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decoding completed payload")
	}

	rec, err := p.repo.GetByID(ctx, common.ID(payload.CompanyID))
	if err != nil {
		return err
	}

	rec.RiskGrade = company.ParseGrade(payload.RiskGrade)
	score := payload.RiskScore
	rec.RiskScore = &score

	at := payload.CompletedAt
	if at.IsZero() {
		at = p.now()
	}
	if err := rec.MarkCompleted(at); err != nil {
		p.logger.Warn("skipping stale completed event",
			logging.String("company_id", payload.CompanyID),
			logging.String("status", string(rec.Status)))
		return nil
	}
	if err := p.repo.Update(ctx, rec); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "persisting completed transition")
	}

	if p.indexer != nil {
		if err := p.indexer.IndexCompany(ctx, rec); err != nil {
			// The database is the source of truth; index lag is tolerable.
			p.logger.Error("could not index completed company",
				logging.String("company_id", payload.CompanyID),
				logging.Err(err))
		}
	}

	p.logger.Info("submission completed",
		logging.String("company_id", payload.CompanyID),
		logging.String("risk_grade", string(rec.RiskGrade)))
	return nil
}

// HandleFailed records the failure and either re-enqueues the submission or
// forwards it to the dead letter topic once retries are exhausted.
func (p *Processor) HandleFailed(ctx context.Context, env *kafka.EventEnvelope) error {
	var payload kafka.DocumentFailedPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decoding failed payload")
	}

	rec, err := p.repo.GetByID(ctx, common.ID(payload.CompanyID))
	if err != nil {
		return err
	}

	now := p.now()
	if err := rec.MarkFailed(now, payload.Error); err != nil {
		p.logger.Warn("skipping stale failed event",
			logging.String("company_id", payload.CompanyID),
			logging.String("status", string(rec.Status)))
		return nil
	}
	if err := p.repo.Update(ctx, rec); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "persisting failed transition")
	}

	if rec.RetryCount >= p.maxRetries {
		dead := kafka.DocumentFailedPayload{
			CompanyID:  payload.CompanyID,
			Error:      payload.Error,
			RetryCount: rec.RetryCount,
			FailedAt:   now,
		}
		if err := p.publisher.Publish(ctx, kafka.TopicDeadLetter, payload.CompanyID, dead); err != nil {
			p.logger.Error("could not forward to dead letter topic",
				logging.String("company_id", payload.CompanyID),
				logging.Err(err))
		}
		p.logger.Error("submission abandoned after retries",
			logging.String("company_id", payload.CompanyID),
			logging.Int("retry_count", rec.RetryCount))
		return nil
	}

	// Automatic retry: back to submitted and re-enqueue.
	if err := rec.MarkSubmitted(now); err != nil {
		return err
	}
	if err := p.repo.Update(ctx, rec); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "persisting retry transition")
	}

	resubmit := kafka.DocumentSubmittedPayload{
		CompanyID:      payload.CompanyID,
		RequestID:      string(rec.RequestID),
		OrganizationID: string(rec.OrganizationID),
		ObjectKey:      objectKeyFor(rec.OrganizationID, rec.ID),
		SubmittedAt:    now,
		RetryCount:     rec.RetryCount,
	}
	if err := p.publisher.Publish(ctx, kafka.TopicDocumentSubmitted, payload.CompanyID, resubmit); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "re-enqueuing submission")
	}

	p.logger.Info("submission re-enqueued after failure",
		logging.String("company_id", payload.CompanyID),
		logging.Int("retry_count", rec.RetryCount))
	return nil
}
