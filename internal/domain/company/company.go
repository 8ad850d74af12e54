// Package company defines the portfolio-company domain model: one record per
// processed credit submission, together with the closed risk-grade and
// processing-status enumerations and the safe accessors over the
// semi-structured extracted-document and risk-analysis trees.
//
// Every nested path in those trees is optional at every level. Absence means
// "unknown", which is distinct from zero or an empty string; accessors return
// an (value, ok) pair or a nil-tolerant zero value and never panic on missing
// data.
package company

import (
	"strings"
	"time"

	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

// RiskGrade is the ordinal credit-risk band assigned by the scoring engine.
// CM1 is the best (lowest risk), CM5 the worst. GradeUngraded covers records
// that have no grade yet or carry an unrecognised value.
type RiskGrade string

const (
	GradeCM1      RiskGrade = "CM1"
	GradeCM2      RiskGrade = "CM2"
	GradeCM3      RiskGrade = "CM3"
	GradeCM4      RiskGrade = "CM4"
	GradeCM5      RiskGrade = "CM5"
	GradeUngraded RiskGrade = "UNGRADED"
)

// AllGrades returns the canonical ordered list of concrete grades, best first.
func AllGrades() []RiskGrade {
	return []RiskGrade{GradeCM1, GradeCM2, GradeCM3, GradeCM4, GradeCM5}
}

// ParseGrade normalizes a raw grade string into the closed enumeration.
// Source data is inconsistently cased ("cm2", "Cm2"), so parsing uppercases
// and trims before matching; anything unrecognised (including empty) maps to
// GradeUngraded.
func ParseGrade(raw string) RiskGrade {
	switch RiskGrade(strings.ToUpper(strings.TrimSpace(raw))) {
	case GradeCM1:
		return GradeCM1
	case GradeCM2:
		return GradeCM2
	case GradeCM3:
		return GradeCM3
	case GradeCM4:
		return GradeCM4
	case GradeCM5:
		return GradeCM5
	default:
		return GradeUngraded
	}
}

// IsGraded reports whether g is one of the five concrete bands.
func (g RiskGrade) IsGraded() bool {
	return g != GradeUngraded && g != ""
}

// RiskBand groups grades into the three concentration buckets used by the
// risk-concentration report.
type RiskBand string

const (
	BandHigh     RiskBand = "high"     // CM4, CM5
	BandMedium   RiskBand = "medium"   // CM3
	BandLow      RiskBand = "low"      // CM1, CM2
	BandUngraded RiskBand = "ungraded" // no grade or unrecognised
)

// Band returns the concentration bucket for g.
func (g RiskGrade) Band() RiskBand {
	switch g {
	case GradeCM4, GradeCM5:
		return BandHigh
	case GradeCM3:
		return BandMedium
	case GradeCM1, GradeCM2:
		return BandLow
	default:
		return BandUngraded
	}
}

// ProcessingStatus is the lifecycle state of a submission.
type ProcessingStatus string

const (
	StatusUploadPending ProcessingStatus = "upload_pending"
	StatusSubmitted     ProcessingStatus = "submitted"
	StatusProcessing    ProcessingStatus = "processing"
	StatusCompleted     ProcessingStatus = "completed"
	StatusFailed        ProcessingStatus = "failed"
)

// validTransitions encodes the ingestion pipeline's state machine.
var validTransitions = map[ProcessingStatus][]ProcessingStatus{
	StatusUploadPending: {StatusSubmitted, StatusFailed},
	StatusSubmitted:     {StatusProcessing, StatusFailed},
	StatusProcessing:    {StatusCompleted, StatusFailed},
	StatusFailed:        {StatusSubmitted}, // retry re-enqueues
}

// CanTransition reports whether moving from s to next is a legal step.
func (s ProcessingStatus) CanTransition(next ProcessingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Company is one processed submission / analysis record in the portfolio.
// Only completed companies reliably carry RiskAnalysis, ExtractedData,
// RiskScore, and RiskGrade; earlier lifecycle states leave them nil.
//
// The analytics core treats Company values as read-only: records are created
// and mutated by the ingestion pipeline only.
type Company struct {
	ID             common.ID     `json:"id"`
	RequestID      common.ID     `json:"request_id"`
	UserID         common.UserID `json:"user_id"`
	OrganizationID common.OrgID  `json:"organization_id"`

	CompanyName string    `json:"company_name"`
	Industry    string    `json:"industry"`
	RiskGrade   RiskGrade `json:"risk_grade,omitempty"`
	// RiskScore is in [0,100] when present. nil means "not yet scored",
	// which is never the same as zero.
	RiskScore        *float64 `json:"risk_score,omitempty"`
	RecommendedLimit *float64 `json:"recommended_limit,omitempty"`
	Currency         string   `json:"currency,omitempty"`

	Status              ProcessingStatus `json:"status"`
	SubmittedAt         *time.Time       `json:"submitted_at,omitempty"`
	ProcessingStartedAt *time.Time       `json:"processing_started_at,omitempty"`
	CompletedAt         *time.Time       `json:"completed_at,omitempty"`
	ErrorMessage        *string          `json:"error_message,omitempty"`
	RetryCount          int              `json:"retry_count"`

	ExtractedData *ExtractedData `json:"extracted_data,omitempty"`
	RiskAnalysis  *RiskAnalysis  `json:"risk_analysis,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubmission creates a company record at the start of the ingestion
// pipeline, in upload_pending status.
func NewSubmission(name string, userID common.UserID, orgID common.OrgID) (*Company, error) {
	if name == "" {
		return nil, errors.NewValidation("company name cannot be empty")
	}
	if orgID == "" {
		return nil, errors.New(errors.ErrCodeOrganizationRequired, "organization id cannot be empty")
	}
	now := time.Now().UTC()
	return &Company{
		ID:             common.NewID(),
		RequestID:      common.NewID(),
		UserID:         userID,
		OrganizationID: orgID,
		CompanyName:    name,
		Status:         StatusUploadPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Normalize canonicalizes a record at the data boundary: the risk grade is
// parsed into the closed enumeration and every risk-analysis parameter name
// is resolved to its ParameterKind, so downstream code never re-normalizes
// case or matches on raw strings. Repositories call this on every row they
// scan; it is idempotent.
func (c *Company) Normalize() {
	c.RiskGrade = ParseGrade(string(c.RiskGrade))
	if c.RiskAnalysis != nil {
		c.RiskAnalysis.resolveParameterKinds()
	}
}

// Validate checks structural invariants on the record itself.
func (c *Company) Validate() error {
	if c.ID == "" {
		return errors.NewValidation("id cannot be empty")
	}
	if c.OrganizationID == "" {
		return errors.New(errors.ErrCodeOrganizationRequired, "organization id cannot be empty")
	}
	if c.CompanyName == "" {
		return errors.NewValidation("company name cannot be empty")
	}
	switch c.Status {
	case StatusUploadPending, StatusSubmitted, StatusProcessing, StatusCompleted, StatusFailed:
	default:
		return errors.NewValidation("invalid status: " + string(c.Status))
	}
	if c.RiskScore != nil && (*c.RiskScore < 0 || *c.RiskScore > 100) {
		return errors.NewValidation("risk score must be in [0,100]")
	}
	if c.RetryCount < 0 {
		return errors.NewValidation("retry count cannot be negative")
	}
	return nil
}

// MarkSubmitted transitions the record to submitted once the document is
// stored, recording the submission time.
func (c *Company) MarkSubmitted(at time.Time) error {
	if !c.Status.CanTransition(StatusSubmitted) {
		return errors.New(errors.ErrCodeInvalidStatusChange,
			"cannot submit from status "+string(c.Status))
	}
	if c.Status == StatusFailed {
		c.RetryCount++
		c.ErrorMessage = nil
	}
	c.Status = StatusSubmitted
	c.SubmittedAt = &at
	c.UpdatedAt = at
	return nil
}

// MarkProcessing transitions the record to processing.
func (c *Company) MarkProcessing(at time.Time) error {
	if !c.Status.CanTransition(StatusProcessing) {
		return errors.New(errors.ErrCodeInvalidStatusChange,
			"cannot start processing from status "+string(c.Status))
	}
	c.Status = StatusProcessing
	c.ProcessingStartedAt = &at
	c.UpdatedAt = at
	return nil
}

// MarkCompleted transitions the record to completed.
func (c *Company) MarkCompleted(at time.Time) error {
	if !c.Status.CanTransition(StatusCompleted) {
		return errors.New(errors.ErrCodeInvalidStatusChange,
			"cannot complete from status "+string(c.Status))
	}
	c.Status = StatusCompleted
	c.CompletedAt = &at
	c.ErrorMessage = nil
	c.UpdatedAt = at
	return nil
}

// MarkFailed records a pipeline failure with its message.
func (c *Company) MarkFailed(at time.Time, msg string) error {
	if c.Status == StatusCompleted {
		return errors.New(errors.ErrCodeInvalidStatusChange, "completed records cannot fail")
	}
	c.Status = StatusFailed
	c.ErrorMessage = &msg
	c.UpdatedAt = at
	return nil
}

// Score returns the risk score and whether one is present.
func (c *Company) Score() (float64, bool) {
	if c.RiskScore == nil {
		return 0, false
	}
	return *c.RiskScore, true
}

// Exposure returns the recommended credit limit, used as the weighting basis
// in risk-overlay statistics, and whether one is present.
func (c *Company) Exposure() (float64, bool) {
	if c.RecommendedLimit == nil {
		return 0, false
	}
	return *c.RecommendedLimit, true
}
