package company

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractedData is the semi-structured tree of document sections produced by
// the extraction pipeline. Each section has its own shape and every section
// and field is optional; consumers treat a missing path as "unknown", never
// as an error.
type ExtractedData struct {
	AboutCompany *AboutCompany  `json:"about_company,omitempty"`
	GST          *GSTData       `json:"gst,omitempty"`
	EPFO         *EPFOData      `json:"epfo,omitempty"`
	Audit        *AuditData     `json:"audit,omitempty"`
	Financials   *FinancialData `json:"financials,omitempty"`
}

// AboutCompany carries registry identity and address details.
type AboutCompany struct {
	CIN               string     `json:"cin,omitempty"`
	PAN               string     `json:"pan,omitempty"`
	DateOfIncorp      string     `json:"date_of_incorporation,omitempty"`
	RegisteredAddress *Address   `json:"registered_address,omitempty"`
	BusinessAddress   *Address   `json:"business_address,omitempty"`
	Directors         []Director `json:"directors,omitempty"`
}

// Address is a postal address; only State and City participate in filtering.
type Address struct {
	Line  string `json:"line,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	PIN   string `json:"pin,omitempty"`
}

// Director is one board member as extracted from the registry section.
type Director struct {
	DIN  string `json:"din,omitempty"`
	Name string `json:"name,omitempty"`
}

// GSTData holds the GST registration records.
type GSTData struct {
	GSTINs []GSTIN `json:"gstins,omitempty"`
}

// GSTIN is one GST registration. Only active registrations participate in
// compliance filtering.
type GSTIN struct {
	GSTIN            string `json:"gstin,omitempty"`
	State            string `json:"state,omitempty"`
	Status           string `json:"status,omitempty"` // "active" | "cancelled" | ...
	ComplianceStatus string `json:"compliance_status,omitempty"`
}

// Active reports whether the registration is currently active.
func (g GSTIN) Active() bool {
	return strings.EqualFold(g.Status, "active")
}

// EPFOData holds provident-fund establishment records.
type EPFOData struct {
	Establishments []EPFOEstablishment `json:"establishments,omitempty"`
}

// EPFOEstablishment is one registered EPFO establishment.
type EPFOEstablishment struct {
	EstablishmentID  string `json:"establishment_id,omitempty"`
	Name             string `json:"name,omitempty"`
	ComplianceStatus string `json:"compliance_status,omitempty"`
}

// AuditData holds auditor-report findings.
type AuditData struct {
	Qualifications []AuditQualification `json:"qualifications,omitempty"`
}

// AuditQualification is one qualification raised in an audit report.
type AuditQualification struct {
	QualificationType string `json:"qualification_type,omitempty"`
	Remark            string `json:"remark,omitempty"`
	Year              string `json:"year,omitempty"`
}

// FinancialData holds per-year financial statements, most recent first is
// not guaranteed; LatestYear selects by the year key.
type FinancialData struct {
	Years []FinancialYear `json:"years,omitempty"`
}

// FinancialYear is one fiscal year's statement summary with derived ratios.
type FinancialYear struct {
	Year    string           `json:"year,omitempty"`
	Revenue json.Number      `json:"revenue,omitempty"`
	Ratios  *FinancialRatios `json:"ratios,omitempty"`
}

// FinancialRatios are the derived ratios used by the financial-metric
// filters. Pointer fields distinguish "not computed" from a genuine zero.
type FinancialRatios struct {
	EBITDAMargin  *float64 `json:"ebitda_margin,omitempty"`
	NetMargin     *float64 `json:"net_margin,omitempty"`
	DebtToEquity  *float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio  *float64 `json:"current_ratio,omitempty"`
	ROE           *float64 `json:"return_on_equity,omitempty"`
	InterestCover *float64 `json:"interest_coverage,omitempty"`
}

// ── Safe nested accessors ────────────────────────────────────────────────────
//
// Each accessor tolerates a nil receiver at every level so call sites never
// chain nil checks. The zero return is documented per accessor.

// RegisteredState returns the registered-address state, or "" when any link
// in the path is absent.
func (c *Company) RegisteredState() string {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.AboutCompany == nil ||
		c.ExtractedData.AboutCompany.RegisteredAddress == nil {
		return ""
	}
	return c.ExtractedData.AboutCompany.RegisteredAddress.State
}

// BusinessState returns the business-address state, or "" when absent.
func (c *Company) BusinessState() string {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.AboutCompany == nil ||
		c.ExtractedData.AboutCompany.BusinessAddress == nil {
		return ""
	}
	return c.ExtractedData.AboutCompany.BusinessAddress.State
}

// Cities returns the distinct cities across both addresses; empty when none
// are recorded.
func (c *Company) Cities() []string {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.AboutCompany == nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, addr := range []*Address{
		c.ExtractedData.AboutCompany.RegisteredAddress,
		c.ExtractedData.AboutCompany.BusinessAddress,
	} {
		if addr == nil || addr.City == "" || seen[addr.City] {
			continue
		}
		seen[addr.City] = true
		out = append(out, addr.City)
	}
	return out
}

// CIN returns the corporate identification number, or "" when absent.
func (c *Company) CIN() string {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.AboutCompany == nil {
		return ""
	}
	return c.ExtractedData.AboutCompany.CIN
}

// PAN returns the permanent account number, or "" when absent.
func (c *Company) PAN() string {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.AboutCompany == nil {
		return ""
	}
	return c.ExtractedData.AboutCompany.PAN
}

// DirectorNames returns the extracted director names; empty when none.
func (c *Company) DirectorNames() []string {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.AboutCompany == nil {
		return nil
	}
	names := make([]string, 0, len(c.ExtractedData.AboutCompany.Directors))
	for _, d := range c.ExtractedData.AboutCompany.Directors {
		if d.Name != "" {
			names = append(names, d.Name)
		}
	}
	return names
}

// ActiveGSTINs returns the active GST registrations; empty when the GST
// section is absent.
func (c *Company) ActiveGSTINs() []GSTIN {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.GST == nil {
		return nil
	}
	var out []GSTIN
	for _, g := range c.ExtractedData.GST.GSTINs {
		if g.Active() {
			out = append(out, g)
		}
	}
	return out
}

// EPFOEstablishments returns the EPFO establishments; empty when absent.
func (c *Company) EPFOEstablishments() []EPFOEstablishment {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.EPFO == nil {
		return nil
	}
	return c.ExtractedData.EPFO.Establishments
}

// AuditQualifications returns the audit qualifications; empty when absent.
func (c *Company) AuditQualifications() []AuditQualification {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.Audit == nil {
		return nil
	}
	return c.ExtractedData.Audit.Qualifications
}

// LatestFinancialYear returns the statement with the lexicographically
// greatest year key ("2023-24" style keys sort correctly) and whether one
// exists.
func (c *Company) LatestFinancialYear() (FinancialYear, bool) {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.Financials == nil ||
		len(c.ExtractedData.Financials.Years) == 0 {
		return FinancialYear{}, false
	}
	latest := c.ExtractedData.Financials.Years[0]
	for _, fy := range c.ExtractedData.Financials.Years[1:] {
		if fy.Year > latest.Year {
			latest = fy
		}
	}
	return latest, true
}

// LatestRatios returns the derived ratios of the latest financial year, or
// nil when no year or no ratios are present.
func (c *Company) LatestRatios() *FinancialRatios {
	fy, ok := c.LatestFinancialYear()
	if !ok {
		return nil
	}
	return fy.Ratios
}

// LatestRevenue returns the latest-year revenue and whether one is present.
// Malformed amounts parse per ParseAmount.
func (c *Company) LatestRevenue() (float64, bool) {
	fy, ok := c.LatestFinancialYear()
	if !ok || fy.Revenue == "" {
		return 0, false
	}
	return ParseAmount(string(fy.Revenue)), true
}

// ParseAmount converts a raw amount string into a float64. Source documents
// use "-" and other placeholders for missing amounts; those, and anything
// unparseable, deterministically yield 0. This is a documented lossy
// behavior: a genuine zero and a missing amount are indistinguishable after
// parsing, matching the upstream system.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
