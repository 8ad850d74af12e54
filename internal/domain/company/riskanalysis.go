package company

// RiskAnalysis is the computed risk result attached to a completed record:
// aggregate scores, the overall grade object, per-category results, the flat
// per-parameter score list, and the eligibility computation.
type RiskAnalysis struct {
	TotalScore    float64          `json:"total_score"`
	WeightedScore float64          `json:"weighted_score"`
	OverallGrade  *OverallGrade    `json:"overall_grade,omitempty"`
	Categories    []CategoryResult `json:"categories,omitempty"`
	AllScores     []ParameterScore `json:"all_scores,omitempty"`
	Eligibility   *Eligibility     `json:"eligibility,omitempty"`
}

// OverallGrade is the grade object produced by the scoring engine.
type OverallGrade struct {
	Grade       string `json:"grade,omitempty"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// CategoryResult is one scoring category (financial, business, hygiene,
// banking) with its aggregate.
type CategoryResult struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
}

// Eligibility carries the credit-eligibility computation.
type Eligibility struct {
	Turnover         *float64 `json:"turnover,omitempty"`
	NetWorth         *float64 `json:"net_worth,omitempty"`
	Multiplier       *float64 `json:"multiplier,omitempty"`
	FinalEligibility *float64 `json:"final_eligibility,omitempty"`
}

// ParameterKind is the closed enumeration of known scoring parameters.
// Raw parameter-name strings are resolved to a kind once, during
// Company.Normalize, so downstream code switches on the kind instead of
// repeating fragile string literals.
type ParameterKind string

const (
	ParamUnknown            ParameterKind = ""
	ParamGSTCompliance      ParameterKind = "gst_compliance"
	ParamEPFOCompliance     ParameterKind = "epfo_compliance"
	ParamAuditQualification ParameterKind = "audit_qualification"
	ParamBankingConduct     ParameterKind = "banking_conduct"
	ParamLeverage           ParameterKind = "leverage"
	ParamProfitability      ParameterKind = "profitability"
	ParamLiquidity          ParameterKind = "liquidity"
)

// parameterKindByName maps the scoring engine's exact parameter-name strings
// to their kinds. The names are fixed upstream; unknown names stay
// ParamUnknown and are simply skipped by consumers.
var parameterKindByName = map[string]ParameterKind{
	"Statutory Payments (GST)":  ParamGSTCompliance,
	"Statutory Payments (EPFO)": ParamEPFOCompliance,
	"Audit Qualifications":      ParamAuditQualification,
	"Banking Conduct":           ParamBankingConduct,
	"Leverage Ratio":            ParamLeverage,
	"Profitability Trend":       ParamProfitability,
	"Liquidity Position":        ParamLiquidity,
}

// ParameterKindFromName resolves a raw parameter name to its kind.
func ParameterKindFromName(name string) ParameterKind {
	return parameterKindByName[name]
}

// ParameterScore is one per-parameter score entry from allScores. Details'
// shape varies by parameter; only the fields a given kind populates are set.
type ParameterScore struct {
	Parameter string        `json:"parameter"`
	Kind      ParameterKind `json:"-"`
	Available bool          `json:"available"`
	Score     float64       `json:"score"`
	MaxScore  float64       `json:"max_score"`
	Details   *ScoreDetails `json:"details,omitempty"`
}

// ScoreDetails is the union of detail fields across parameter kinds.
type ScoreDetails struct {
	// ComplianceRate is populated by the GST parameter (0-100).
	ComplianceRate *float64 `json:"compliance_rate,omitempty"`
	// EffectiveComplianceRate is populated by the EPFO parameter (0-100).
	EffectiveComplianceRate *float64 `json:"effective_compliance_rate,omitempty"`
	// QualificationCount is populated by the audit parameter.
	QualificationCount *int `json:"qualification_count,omitempty"`
	// Remark is free-form explanatory text.
	Remark string `json:"remark,omitempty"`
}

// resolveParameterKinds assigns Kind on every score entry. Called from
// Company.Normalize.
func (ra *RiskAnalysis) resolveParameterKinds() {
	for i := range ra.AllScores {
		ra.AllScores[i].Kind = ParameterKindFromName(ra.AllScores[i].Parameter)
	}
}

// ScoreByKind returns the first score entry of the given kind and whether
// one exists.
func (ra *RiskAnalysis) ScoreByKind(kind ParameterKind) (ParameterScore, bool) {
	if ra == nil {
		return ParameterScore{}, false
	}
	for _, s := range ra.AllScores {
		if s.Kind == kind {
			return s, true
		}
	}
	return ParameterScore{}, false
}

// GSTComplianceRate returns the compliance rate reported by the GST
// statutory-payments parameter, and whether the parameter and its rate are
// present.
func (c *Company) GSTComplianceRate() (float64, bool) {
	if c == nil || c.RiskAnalysis == nil {
		return 0, false
	}
	s, ok := c.RiskAnalysis.ScoreByKind(ParamGSTCompliance)
	if !ok || s.Details == nil || s.Details.ComplianceRate == nil {
		return 0, false
	}
	return *s.Details.ComplianceRate, true
}

// EPFOComplianceRate returns the effective compliance rate reported by the
// EPFO statutory-payments parameter, and whether it is present.
func (c *Company) EPFOComplianceRate() (float64, bool) {
	if c == nil || c.RiskAnalysis == nil {
		return 0, false
	}
	s, ok := c.RiskAnalysis.ScoreByKind(ParamEPFOCompliance)
	if !ok || s.Details == nil || s.Details.EffectiveComplianceRate == nil {
		return 0, false
	}
	return *s.Details.EffectiveComplianceRate, true
}
