// Package reporting assembles portfolio summary reports from the analytics
// suite, renders them as JSON or CSV, and persists them to object storage
// behind presigned download URLs.
package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Credmatrix/portfolio-management-sub006/internal/application/portfolio"
	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/prometheus"
	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/storage/minio"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// Format selects the report rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat normalizes a raw format string; empty defaults to JSON.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", errors.New(errors.ErrCodeValidation, "unsupported report format: "+raw)
	}
}

// ContentType returns the MIME type for the rendered report.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// ReportStore is the slice of the object store the service uses.
type ReportStore interface {
	Upload(ctx context.Context, in minio.UploadInput) (*minio.UploadResult, error)
	Stat(ctx context.Context, bucket, objectKey string) (*minio.ObjectInfo, error)
	PresignedGetURL(ctx context.Context, bucket, objectKey string, expiry time.Duration) (string, error)
}

// GenerateInput describes one report request.
type GenerateInput struct {
	OrganizationID common.OrgID
	Criteria       company.FilterCriteria
	Format         Format
}

// Report is the caller-visible result of a generation run.
type Report struct {
	ID             string       `json:"id"`
	OrganizationID common.OrgID `json:"organization_id"`
	Format         Format       `json:"format"`
	ObjectKey      string       `json:"object_key"`
	SizeBytes      int64        `json:"size_bytes"`
	DownloadURL    string       `json:"download_url"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// Document is the JSON report payload: the dashboard plus generation
// metadata.
type Document struct {
	ReportID       string                 `json:"report_id"`
	OrganizationID common.OrgID           `json:"organization_id"`
	Criteria       company.FilterCriteria `json:"criteria"`
	GeneratedAt    time.Time              `json:"generated_at"`
	Dashboard      *portfolio.Dashboard   `json:"dashboard"`
}

// Service generates and serves portfolio reports.
type Service interface {
	// Generate computes the dashboard for the criteria, renders it in the
	// requested format and stores it. The returned report carries a
	// presigned download URL.
	Generate(ctx context.Context, in GenerateInput) (*Report, error)
	// DownloadURL returns a fresh presigned URL for a stored report.
	DownloadURL(ctx context.Context, orgID common.OrgID, reportID string, format Format) (string, error)
}

type service struct {
	dashboards portfolio.Service
	store      ReportStore
	bucket     string
	urlExpiry  time.Duration
	logger     logging.Logger
	metrics    *prometheus.Metrics
	now        func() time.Time
}

// ServiceOption customizes the reporting service.
type ServiceOption func(*service)

// WithMetrics enables instrument recording. A nil metrics set disables it.
func WithMetrics(m *prometheus.Metrics) ServiceOption {
	return func(s *service) {
		s.metrics = m
	}
}

// NewService wires the reporting service. bucket is the reports bucket.
func NewService(dashboards portfolio.Service, store ReportStore, bucket string, urlExpiry time.Duration, logger logging.Logger, opts ...ServiceOption) Service {
	if urlExpiry <= 0 {
		urlExpiry = time.Hour
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &service{
		dashboards: dashboards,
		store:      store,
		bucket:     bucket,
		urlExpiry:  urlExpiry,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Generate(ctx context.Context, in GenerateInput) (report *Report, err error) {
	if in.OrganizationID == "" {
		return nil, errors.New(errors.ErrCodeOrganizationRequired, "organization id is required")
	}
	format := in.Format
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatCSV {
		return nil, errors.New(errors.ErrCodeValidation, "unsupported report format: "+string(format))
	}

	started := time.Now()
	defer func() { s.recordBuild(format, started, err) }()

	dash, err := s.dashboards.Dashboard(ctx, &portfolio.DashboardInput{
		OrganizationID: in.OrganizationID,
		Criteria:       in.Criteria,
	})
	if err != nil {
		return nil, err
	}

	reportID := uuid.NewString()
	now := s.now()
	doc := &Document{
		ReportID:       reportID,
		OrganizationID: in.OrganizationID,
		Criteria:       in.Criteria,
		GeneratedAt:    now,
		Dashboard:      dash,
	}

	var rendered []byte
	switch format {
	case FormatCSV:
		rendered, err = renderCSV(doc)
	default:
		rendered, err = json.MarshalIndent(doc, "", "  ")
		if err != nil {
			err = errors.Wrap(err, errors.ErrCodeSerialization, "encoding report")
		}
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportBuildFailed, "rendering report")
	}

	objectKey := minio.ReportKey(string(in.OrganizationID), reportID, string(format))
	uploaded, err := s.store.Upload(ctx, minio.UploadInput{
		Bucket:      s.bucket,
		ObjectKey:   objectKey,
		Reader:      bytes.NewReader(rendered),
		Size:        int64(len(rendered)),
		ContentType: format.ContentType(),
		Metadata: map[string]string{
			"report_id":       reportID,
			"organization_id": string(in.OrganizationID),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReportBuildFailed, "storing report")
	}

	url, err := s.store.PresignedGetURL(ctx, s.bucket, objectKey, s.urlExpiry)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "presigning report download")
	}

	s.logger.Info("report generated",
		logging.String("report_id", reportID),
		logging.String("organization_id", string(in.OrganizationID)),
		logging.String("format", string(format)),
		logging.Int64("size_bytes", uploaded.Size))

	return &Report{
		ID:             reportID,
		OrganizationID: in.OrganizationID,
		Format:         format,
		ObjectKey:      objectKey,
		SizeBytes:      uploaded.Size,
		DownloadURL:    url,
		GeneratedAt:    now,
	}, nil
}

func (s *service) recordBuild(format Format, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	s.metrics.RecordReportGenerated(string(format), status, time.Since(started))
}

func (s *service) DownloadURL(ctx context.Context, orgID common.OrgID, reportID string, format Format) (string, error) {
	if orgID == "" {
		return "", errors.New(errors.ErrCodeOrganizationRequired, "organization id is required")
	}
	if reportID == "" {
		return "", errors.New(errors.ErrCodeValidation, "report id is required")
	}
	if format == "" {
		format = FormatJSON
	}

	objectKey := minio.ReportKey(string(orgID), reportID, string(format))
	if _, err := s.store.Stat(ctx, s.bucket, objectKey); err != nil {
		if errors.IsNotFound(err) {
			return "", errors.New(errors.ErrCodeReportNotFound, "report not found")
		}
		return "", err
	}
	return s.store.PresignedGetURL(ctx, s.bucket, objectKey, s.urlExpiry)
}

// renderCSV flattens the dashboard into sectioned rows. Each section starts
// with its own header row so the file stays readable in a spreadsheet.
func renderCSV(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := newCSVWriter(&buf)

	w.row("section", "key", "count", "percentage", "average_score", "total_exposure")

	dash := doc.Dashboard
	w.row("summary", "total_companies", itoa(dash.TotalCompanies), "", "", "")
	w.row("summary", "filtered_companies", itoa(dash.FilteredCompanies), "", "", "")

	for _, b := range dash.GradeDistribution.Buckets {
		w.row("grade_distribution", string(b.Grade), itoa(b.Count),
			ftoa(b.Percentage), ftoa(b.AverageScore), ftoa(b.TotalExposure))
	}

	rc := dash.RiskConcentration
	w.row("risk_concentration", "high", itoa(rc.HighCount), ftoa(rc.HighPercent), "", "")
	w.row("risk_concentration", "medium", itoa(rc.MediumCount), ftoa(rc.MediumPercent), "", "")
	w.row("risk_concentration", "low", itoa(rc.LowCount), ftoa(rc.LowPercent), "", "")
	w.row("risk_concentration", "ungraded", itoa(rc.UngradedCount), ftoa(rc.UngradedPercent), "", "")

	for _, ind := range dash.IndustryBreakdown.Industries {
		w.row("industry_breakdown", ind.Industry, itoa(ind.Count),
			ftoa(ind.Percentage), ftoa(ind.AverageScore), ftoa(ind.TotalExposure))
	}
	w.row("industry_breakdown", "count_hhi", "", ftoa(dash.IndustryBreakdown.CountHHI), "", "")
	w.row("industry_breakdown", "exposure_hhi", "", ftoa(dash.IndustryBreakdown.ExposureHHI), "", "")

	w.row("compliance", "overall_score", "", ftoa(dash.Compliance.OverallScore), "", "")

	for _, tr := range dash.Trends {
		w.row("monthly_trend", tr.Month, itoa(tr.Count), ftoa(tr.HighRiskPercent),
			ftoa(tr.AverageScore), ftoa(tr.TotalExposure))
	}

	if err := w.flush(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "writing csv")
	}
	return buf.Bytes(), nil
}

func itoa(v int) string { return fmt.Sprintf("%d", v) }

func ftoa(v float64) string { return fmt.Sprintf("%.2f", v) }
