package portfolio

import (
	"sort"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
)

// FilterOptions lists the distinct observed values per filterable dimension,
// used to populate the dashboard's selector widgets so the UI never offers
// an option with zero matches. Slices are sorted for stable presentation;
// order carries no other meaning.
type FilterOptions struct {
	Industries          []string `json:"industries"`
	Regions             []string `json:"regions"`
	Cities              []string `json:"cities"`
	RiskGrades          []string `json:"risk_grades"`
	Statuses            []string `json:"statuses"`
	Currencies          []string `json:"currencies"`
	GSTCompliance       []string `json:"gst_compliance_statuses"`
	EPFOCompliance      []string `json:"epfo_compliance_statuses"`
	AuditQualifications []string `json:"audit_qualification_types"`
}

// optionSet accumulates distinct non-empty values.
type optionSet map[string]bool

func (s optionSet) add(v string) {
	if v != "" {
		s[v] = true
	}
}

func (s optionSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ExtractFilterOptions scans the full (unfiltered) collection once and
// derives the distinct values for each filterable dimension. Pure and
// side-effect free; an empty input yields empty (non-nil) option lists.
func ExtractFilterOptions(companies []*company.Company) FilterOptions {
	industries := optionSet{}
	regions := optionSet{}
	cities := optionSet{}
	grades := optionSet{}
	statuses := optionSet{}
	currencies := optionSet{}
	gst := optionSet{}
	epfo := optionSet{}
	audit := optionSet{}

	for _, c := range companies {
		industries.add(c.Industry)
		regions.add(c.RegisteredState())
		regions.add(c.BusinessState())
		for _, city := range c.Cities() {
			cities.add(city)
		}
		if c.RiskGrade.IsGraded() {
			grades.add(string(c.RiskGrade))
		}
		statuses.add(string(c.Status))
		currencies.add(c.Currency)
		for _, g := range c.ActiveGSTINs() {
			gst.add(g.ComplianceStatus)
		}
		for _, e := range c.EPFOEstablishments() {
			epfo.add(e.ComplianceStatus)
		}
		for _, q := range c.AuditQualifications() {
			audit.add(q.QualificationType)
		}
	}

	return FilterOptions{
		Industries:          industries.sorted(),
		Regions:             regions.sorted(),
		Cities:              cities.sorted(),
		RiskGrades:          grades.sorted(),
		Statuses:            statuses.sorted(),
		Currencies:          currencies.sorted(),
		GSTCompliance:       gst.sorted(),
		EPFOCompliance:      epfo.sorted(),
		AuditQualifications: audit.sorted(),
	}
}
