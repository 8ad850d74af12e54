package portfolio

import (
	"time"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/types/common"
)

func fp(v float64) *float64 { return &v }

// fixture builds a completed company with the common scalar fields set.
func fixture(name, industry string, grade company.RiskGrade, score, limit float64) *company.Company {
	completed := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	return &company.Company{
		ID:             common.NewID(),
		RequestID:      common.NewID(),
		UserID:         "user-1",
		OrganizationID: "org-1",
		CompanyName:      name,
		Industry:         industry,
		RiskGrade:        grade,
		RiskScore:        fp(score),
		RecommendedLimit: fp(limit),
		Currency:         "INR",
		Status:           company.StatusCompleted,
		CompletedAt:      &completed,
	}
}

func withState(c *company.Company, registered, business string) *company.Company {
	if c.ExtractedData == nil {
		c.ExtractedData = &company.ExtractedData{}
	}
	if c.ExtractedData.AboutCompany == nil {
		c.ExtractedData.AboutCompany = &company.AboutCompany{}
	}
	if registered != "" {
		c.ExtractedData.AboutCompany.RegisteredAddress = &company.Address{State: registered}
	}
	if business != "" {
		c.ExtractedData.AboutCompany.BusinessAddress = &company.Address{State: business}
	}
	return c
}

func withIdentity(c *company.Company, cin, pan string, directors ...string) *company.Company {
	if c.ExtractedData == nil {
		c.ExtractedData = &company.ExtractedData{}
	}
	if c.ExtractedData.AboutCompany == nil {
		c.ExtractedData.AboutCompany = &company.AboutCompany{}
	}
	about := c.ExtractedData.AboutCompany
	about.CIN = cin
	about.PAN = pan
	for _, d := range directors {
		about.Directors = append(about.Directors, company.Director{Name: d})
	}
	return c
}

func withGST(c *company.Company, entries ...company.GSTIN) *company.Company {
	if c.ExtractedData == nil {
		c.ExtractedData = &company.ExtractedData{}
	}
	c.ExtractedData.GST = &company.GSTData{GSTINs: entries}
	return c
}

func withEPFO(c *company.Company, statuses ...string) *company.Company {
	if c.ExtractedData == nil {
		c.ExtractedData = &company.ExtractedData{}
	}
	ests := make([]company.EPFOEstablishment, 0, len(statuses))
	for _, s := range statuses {
		ests = append(ests, company.EPFOEstablishment{ComplianceStatus: s})
	}
	c.ExtractedData.EPFO = &company.EPFOData{Establishments: ests}
	return c
}

func withAudit(c *company.Company, types ...string) *company.Company {
	if c.ExtractedData == nil {
		c.ExtractedData = &company.ExtractedData{}
	}
	quals := make([]company.AuditQualification, 0, len(types))
	for _, t := range types {
		quals = append(quals, company.AuditQualification{QualificationType: t})
	}
	c.ExtractedData.Audit = &company.AuditData{Qualifications: quals}
	return c
}

func withRatios(c *company.Company, year string, ratios company.FinancialRatios) *company.Company {
	if c.ExtractedData == nil {
		c.ExtractedData = &company.ExtractedData{}
	}
	if c.ExtractedData.Financials == nil {
		c.ExtractedData.Financials = &company.FinancialData{}
	}
	c.ExtractedData.Financials.Years = append(c.ExtractedData.Financials.Years,
		company.FinancialYear{Year: year, Ratios: &ratios})
	return c
}

func withComplianceScores(c *company.Company, gstRate, epfoRate *float64) *company.Company {
	if c.RiskAnalysis == nil {
		c.RiskAnalysis = &company.RiskAnalysis{}
	}
	if gstRate != nil {
		c.RiskAnalysis.AllScores = append(c.RiskAnalysis.AllScores, company.ParameterScore{
			Parameter: "Statutory Payments (GST)",
			Kind:      company.ParamGSTCompliance,
			Available: true,
			Details:   &company.ScoreDetails{ComplianceRate: gstRate},
		})
	}
	if epfoRate != nil {
		c.RiskAnalysis.AllScores = append(c.RiskAnalysis.AllScores, company.ParameterScore{
			Parameter: "Statutory Payments (EPFO)",
			Kind:      company.ParamEPFOCompliance,
			Available: true,
			Details:   &company.ScoreDetails{EffectiveComplianceRate: epfoRate},
		})
	}
	return c
}

func withCompletedAt(c *company.Company, t time.Time) *company.Company {
	c.CompletedAt = &t
	return c
}

func names(companies []*company.Company) []string {
	out := make([]string, 0, len(companies))
	for _, c := range companies {
		out = append(out, c.CompanyName)
	}
	return out
}
