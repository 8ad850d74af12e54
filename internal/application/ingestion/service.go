// Package ingestion drives the document submission pipeline: a company
// record is created in upload_pending, its documents land in object storage,
// the record moves to submitted and a lifecycle event hands it to the
// processing workers. Status changes past submitted happen worker-side.
package ingestion

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/messaging/kafka"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/storage/minio"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// MaxUploadSize caps one document upload at 50 MiB.
const MaxUploadSize = 50 << 20

// allowedContentTypes lists the document formats the pipeline accepts.
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"application/zip": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/json": true,
}

// BlobStore is the slice of the object store the service uses.
type BlobStore interface {
	Upload(ctx context.Context, in minio.UploadInput) (*minio.UploadResult, error)
}

// EventPublisher emits lifecycle events. *kafka.Producer satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// SubmitInput carries one document submission.
type SubmitInput struct {
	OrganizationID common.OrgID
	UserID         common.UserID
	CompanyName    string
	Filename       string
	ContentType    string
	Size           int64
	Content        io.Reader
}

// Submission is the caller-visible receipt for a new submission.
type Submission struct {
	CompanyID   common.ID                `json:"company_id"`
	RequestID   common.ID                `json:"request_id"`
	Status      company.ProcessingStatus `json:"status"`
	ObjectKey   string                   `json:"object_key"`
	SubmittedAt time.Time                `json:"submitted_at"`
}

// StatusInfo is the polling view of a submission's lifecycle state.
type StatusInfo struct {
	CompanyID           common.ID                `json:"company_id"`
	RequestID           common.ID                `json:"request_id"`
	CompanyName         string                   `json:"company_name"`
	Status              company.ProcessingStatus `json:"status"`
	SubmittedAt         *time.Time               `json:"submitted_at,omitempty"`
	ProcessingStartedAt *time.Time               `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time               `json:"completed_at,omitempty"`
	ErrorMessage        *string                  `json:"error_message,omitempty"`
	RetryCount          int                      `json:"retry_count"`
}

// Service is the document ingestion application service.
type Service interface {
	// Submit creates the company record, stores the document and enqueues
	// processing.
	Submit(ctx context.Context, in SubmitInput) (*Submission, error)
	// Status returns the lifecycle state of one submission, scoped to the
	// caller's organization.
	Status(ctx context.Context, orgID common.OrgID, companyID common.ID) (*StatusInfo, error)
	// Retry re-enqueues a failed submission.
	Retry(ctx context.Context, orgID common.OrgID, companyID common.ID) (*StatusInfo, error)
}

type service struct {
	repo       company.Repository
	store      BlobStore
	bucket     string
	publisher  EventPublisher
	maxRetries int
	logger     logging.Logger
	now        func() time.Time
}

// NewService wires the ingestion service. bucket is the documents bucket;
// maxRetries bounds Retry on a failed record.
func NewService(repo company.Repository, store BlobStore, bucket string, publisher EventPublisher, maxRetries int, logger logging.Logger) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &service{
		repo:       repo,
		store:      store,
		bucket:     bucket,
		publisher:  publisher,
		maxRetries: maxRetries,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func validateSubmit(in SubmitInput) error {
	if in.OrganizationID == "" {
		return errors.New(errors.ErrCodeOrganizationRequired, "organization id is required")
	}
	if in.CompanyName == "" {
		return errors.NewValidation("company name is required")
	}
	if in.Filename == "" {
		return errors.NewValidation("filename is required")
	}
	if in.Size > MaxUploadSize {
		return errors.New(errors.ErrCodeDocumentTooLarge, "document exceeds the upload size limit")
	}
	if in.ContentType != "" && !allowedContentTypes[in.ContentType] {
		return errors.New(errors.ErrCodeUnsupportedFormat, "unsupported document format: "+in.ContentType)
	}
	return nil
}

// sanitizeFilename keeps only the base name so object keys cannot escape the
// company prefix.
func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return "document"
	}
	return base
}

// objectKeyFor is deterministic per company so a retry re-references the
// stored document without persisting the key. The original filename lives in
// object metadata.
func objectKeyFor(orgID common.OrgID, companyID common.ID) string {
	return minio.DocumentKey(string(orgID), string(companyID), "source")
}

func (s *service) Submit(ctx context.Context, in SubmitInput) (*Submission, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	rec, err := company.NewSubmission(in.CompanyName, in.UserID, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "creating submission record")
	}

	objectKey := objectKeyFor(in.OrganizationID, rec.ID)
	_, err = s.store.Upload(ctx, minio.UploadInput{
		Bucket:      s.bucket,
		ObjectKey:   objectKey,
		Reader:      in.Content,
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"filename":        sanitizeFilename(in.Filename),
			"request_id":      string(rec.RequestID),
			"organization_id": string(in.OrganizationID),
		},
	})
	if err != nil {
		s.failSubmission(ctx, rec, "document upload failed")
		return nil, errors.Wrap(err, errors.ErrCodeDocumentUploadFailed, "storing document")
	}

	now := s.now()
	if err := rec.MarkSubmitted(now); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "updating submission record")
	}

	if err := s.publishSubmitted(ctx, rec, objectKey, now); err != nil {
		s.failSubmission(ctx, rec, "event publish failed")
		return nil, err
	}

	return &Submission{
		CompanyID:   rec.ID,
		RequestID:   rec.RequestID,
		Status:      rec.Status,
		ObjectKey:   objectKey,
		SubmittedAt: now,
	}, nil
}

func (s *service) publishSubmitted(ctx context.Context, rec *company.Company, objectKey string, at time.Time) error {
	payload := kafka.DocumentSubmittedPayload{
		CompanyID:      string(rec.ID),
		RequestID:      string(rec.RequestID),
		OrganizationID: string(rec.OrganizationID),
		ObjectKey:      objectKey,
		SubmittedAt:    at,
		RetryCount:     rec.RetryCount,
	}
	if err := s.publisher.Publish(ctx, kafka.TopicDocumentSubmitted, string(rec.ID), payload); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "enqueuing document for processing")
	}
	return nil
}

// failSubmission is best effort: the original error is what the caller sees.
func (s *service) failSubmission(ctx context.Context, rec *company.Company, msg string) {
	if err := rec.MarkFailed(s.now(), msg); err != nil {
		s.logger.Warn("could not mark submission failed",
			logging.String("company_id", string(rec.ID)),
			logging.Err(err))
		return
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		s.logger.Warn("could not persist failed submission",
			logging.String("company_id", string(rec.ID)),
			logging.Err(err))
	}
}

func (s *service) load(ctx context.Context, orgID common.OrgID, companyID common.ID) (*company.Company, error) {
	if orgID == "" {
		return nil, errors.New(errors.ErrCodeOrganizationRequired, "organization id is required")
	}
	rec, err := s.repo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if rec.OrganizationID != orgID {
		return nil, errors.New(errors.ErrCodeCompanyNotFound, "company not found")
	}
	return rec, nil
}

func statusInfo(rec *company.Company) *StatusInfo {
	return &StatusInfo{
		CompanyID:           rec.ID,
		RequestID:           rec.RequestID,
		CompanyName:         rec.CompanyName,
		Status:              rec.Status,
		SubmittedAt:         rec.SubmittedAt,
		ProcessingStartedAt: rec.ProcessingStartedAt,
		CompletedAt:         rec.CompletedAt,
		ErrorMessage:        rec.ErrorMessage,
		RetryCount:          rec.RetryCount,
	}
}

func (s *service) Status(ctx context.Context, orgID common.OrgID, companyID common.ID) (*StatusInfo, error) {
	rec, err := s.load(ctx, orgID, companyID)
	if err != nil {
		return nil, err
	}
	return statusInfo(rec), nil
}

func (s *service) Retry(ctx context.Context, orgID common.OrgID, companyID common.ID) (*StatusInfo, error) {
	rec, err := s.load(ctx, orgID, companyID)
	if err != nil {
		return nil, err
	}
	if rec.Status != company.StatusFailed {
		return nil, errors.New(errors.ErrCodeInvalidStatusChange,
			"only failed submissions can be retried")
	}
	if rec.RetryCount >= s.maxRetries {
		return nil, errors.New(errors.ErrCodeRetryExhausted, "retry limit reached")
	}

	now := s.now()
	if err := rec.MarkSubmitted(now); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "updating submission record")
	}

	objectKey := objectKeyFor(rec.OrganizationID, rec.ID)
	if err := s.publishSubmitted(ctx, rec, objectKey, now); err != nil {
		s.failSubmission(ctx, rec, "event publish failed")
		return nil, err
	}

	s.logger.Info("submission re-enqueued",
		logging.String("company_id", string(rec.ID)),
		logging.Int("retry_count", rec.RetryCount))
	return statusInfo(rec), nil
}
