// Package portfolio implements the portfolio dashboard's analytical core:
// multi-dimensional filtering of company records, filter-option extraction,
// and descriptive risk/industry/compliance statistics.
//
// Every function in this package is pure: it takes an in-memory company
// collection, returns fresh slices and plain data objects, never mutates its
// input, and performs no I/O. Identical inputs produce identical outputs, so
// concurrent callers may share (read-only) input slices freely.
package portfolio

import (
	"strings"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
)

// predicate reports whether a single company matches one filter dimension.
type predicate func(*company.Company) bool

// keep returns the companies satisfying p, preserving relative order.
// The result is always a new slice.
func keep(companies []*company.Company, p predicate) []*company.Company {
	out := make([]*company.Company, 0, len(companies))
	for _, c := range companies {
		if p(c) {
			out = append(out, c)
		}
	}
	return out
}

// inSet builds a membership test over the given values.
func inSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// FilterByRiskGrade keeps companies whose normalized grade is in grades.
// An empty grade list imposes no constraint and returns the input unchanged
// (a fresh slice). Companies with no grade never match a non-empty list.
func FilterByRiskGrade(companies []*company.Company, grades []company.RiskGrade) []*company.Company {
	if len(grades) == 0 {
		return append([]*company.Company(nil), companies...)
	}
	set := make(map[company.RiskGrade]bool, len(grades))
	for _, g := range grades {
		// criteria may arrive with inconsistent casing just like source data
		set[company.ParseGrade(string(g))] = true
	}
	return keep(companies, func(c *company.Company) bool {
		if !c.RiskGrade.IsGraded() {
			return false
		}
		return set[c.RiskGrade]
	})
}

// FilterByIndustry keeps companies whose industry is exactly one of
// industries. Empty list is the identity.
func FilterByIndustry(companies []*company.Company, industries []string) []*company.Company {
	if len(industries) == 0 {
		return append([]*company.Company(nil), companies...)
	}
	set := inSet(industries)
	return keep(companies, func(c *company.Company) bool {
		return set[c.Industry]
	})
}

// FilterByRegion keeps companies whose registered-address state OR
// business-address state is in regions. A company with neither address never
// matches a non-empty list.
func FilterByRegion(companies []*company.Company, regions []string) []*company.Company {
	if len(regions) == 0 {
		return append([]*company.Company(nil), companies...)
	}
	set := inSet(regions)
	return keep(companies, func(c *company.Company) bool {
		return set[c.RegisteredState()] || set[c.BusinessState()]
	})
}

// FilterByCity keeps companies with any address in one of cities.
func FilterByCity(companies []*company.Company, cities []string) []*company.Company {
	if len(cities) == 0 {
		return append([]*company.Company(nil), companies...)
	}
	set := inSet(cities)
	return keep(companies, func(c *company.Company) bool {
		for _, city := range c.Cities() {
			if set[city] {
				return true
			}
		}
		return false
	})
}

// FilterByStatus keeps companies in one of the given processing states.
func FilterByStatus(companies []*company.Company, statuses []company.ProcessingStatus) []*company.Company {
	if len(statuses) == 0 {
		return append([]*company.Company(nil), companies...)
	}
	set := make(map[company.ProcessingStatus]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return keep(companies, func(c *company.Company) bool {
		return set[c.Status]
	})
}

// FilterByCurrency keeps companies whose limit currency is in currencies.
func FilterByCurrency(companies []*company.Company, currencies []string) []*company.Company {
	if len(currencies) == 0 {
		return append([]*company.Company(nil), companies...)
	}
	set := inSet(currencies)
	return keep(companies, func(c *company.Company) bool {
		return set[c.Currency]
	})
}

// FilterByGSTCompliance keeps companies where ANY active GSTIN's compliance
// status is in statuses. Companies without GST data never match a non-empty
// list.
func FilterByGSTCompliance(companies []*company.Company, statuses []string) []*company.Company {
	if len(statuses) == 0 {
		return append([]*company.Company(nil), companies...)
	}
	set := inSet(statuses)
	return keep(companies, func(c *company.Company) bool {
		for _, g := range c.ActiveGSTINs() {
			if set[g.ComplianceStatus] {
				return true
			}
		}
		return false
	})
}

// FilterByEPFOCompliance keeps companies where ANY EPFO establishment's
// compliance status is in statuses.
func FilterByEPFOCompliance(companies []*company.Company, statuses []string) []*company.Company {
	if len(statuses) == 0 {
		return append([]*company.Company(nil), companies...)
	}
	set := inSet(statuses)
	return keep(companies, func(c *company.Company) bool {
		for _, e := range c.EPFOEstablishments() {
			if set[e.ComplianceStatus] {
				return true
			}
		}
		return false
	})
}

// FilterByAuditQualification keeps companies where ANY audit qualification's
// type is in types.
func FilterByAuditQualification(companies []*company.Company, types []string) []*company.Company {
	if len(types) == 0 {
		return append([]*company.Company(nil), companies...)
	}
	set := inSet(types)
	return keep(companies, func(c *company.Company) bool {
		for _, q := range c.AuditQualifications() {
			if set[q.QualificationType] {
				return true
			}
		}
		return false
	})
}

// Search keeps companies matching query as a case-insensitive substring of
// the company name, CIN, PAN, or any director's name. The query is trimmed;
// an empty or whitespace-only query returns all companies unchanged.
func Search(companies []*company.Company, query string) []*company.Company {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]*company.Company(nil), companies...)
	}
	return keep(companies, func(c *company.Company) bool {
		if strings.Contains(strings.ToLower(c.CompanyName), q) ||
			strings.Contains(strings.ToLower(c.CIN()), q) ||
			strings.Contains(strings.ToLower(c.PAN()), q) {
			return true
		}
		for _, name := range c.DirectorNames() {
			if strings.Contains(strings.ToLower(name), q) {
				return true
			}
		}
		return false
	})
}

// rangeMatch applies an optional inclusive range to an optional value:
// a nil range matches everything, a populated range never matches an absent
// value.
func rangeMatch(r *company.Range, value float64, present bool) bool {
	if r == nil {
		return true
	}
	return present && r.Contains(value)
}

// ratioValue extracts one optional ratio pointer as (value, present).
func ratioValue(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// FinancialMetricRanges carries the inclusive range filters applied to the
// latest-year derived ratios.
type FinancialMetricRanges struct {
	EBITDAMargin  *company.Range
	NetMargin     *company.Range
	DebtToEquity  *company.Range
	CurrentRatio  *company.Range
	ROE           *company.Range
	InterestCover *company.Range
	Revenue       *company.Range
}

// empty reports whether no range is populated.
func (m FinancialMetricRanges) empty() bool {
	return m.EBITDAMargin == nil && m.NetMargin == nil && m.DebtToEquity == nil &&
		m.CurrentRatio == nil && m.ROE == nil && m.InterestCover == nil && m.Revenue == nil
}

// FilterByFinancialMetrics keeps companies whose latest-year ratios satisfy
// every populated range. A company lacking a needed ratio never matches that
// range; ranges are inclusive on both ends.
func FilterByFinancialMetrics(companies []*company.Company, metrics FinancialMetricRanges) []*company.Company {
	if metrics.empty() {
		return append([]*company.Company(nil), companies...)
	}
	return keep(companies, func(c *company.Company) bool {
		ratios := c.LatestRatios()
		if ratios == nil {
			ratios = &company.FinancialRatios{}
		}
		v, ok := ratioValue(ratios.EBITDAMargin)
		if !rangeMatch(metrics.EBITDAMargin, v, ok) {
			return false
		}
		v, ok = ratioValue(ratios.NetMargin)
		if !rangeMatch(metrics.NetMargin, v, ok) {
			return false
		}
		v, ok = ratioValue(ratios.DebtToEquity)
		if !rangeMatch(metrics.DebtToEquity, v, ok) {
			return false
		}
		v, ok = ratioValue(ratios.CurrentRatio)
		if !rangeMatch(metrics.CurrentRatio, v, ok) {
			return false
		}
		v, ok = ratioValue(ratios.ROE)
		if !rangeMatch(metrics.ROE, v, ok) {
			return false
		}
		v, ok = ratioValue(ratios.InterestCover)
		if !rangeMatch(metrics.InterestCover, v, ok) {
			return false
		}
		rev, ok := c.LatestRevenue()
		return rangeMatch(metrics.Revenue, rev, ok)
	})
}

// FilterByRiskScore keeps companies whose score falls in r, inclusive.
// Unscored companies never match a populated range.
func FilterByRiskScore(companies []*company.Company, r *company.Range) []*company.Company {
	if r == nil {
		return append([]*company.Company(nil), companies...)
	}
	return keep(companies, func(c *company.Company) bool {
		v, ok := c.Score()
		return ok && r.Contains(v)
	})
}

// FilterByRecommendedLimit keeps companies whose exposure falls in r.
func FilterByRecommendedLimit(companies []*company.Company, r *company.Range) []*company.Company {
	if r == nil {
		return append([]*company.Company(nil), companies...)
	}
	return keep(companies, func(c *company.Company) bool {
		v, ok := c.Exposure()
		return ok && r.Contains(v)
	})
}

// FilterByRetryCount keeps companies whose retry count falls in r.
func FilterByRetryCount(companies []*company.Company, r *company.Range) []*company.Company {
	if r == nil {
		return append([]*company.Company(nil), companies...)
	}
	return keep(companies, func(c *company.Company) bool {
		return r.Contains(float64(c.RetryCount))
	})
}

// FilterByDateRange keeps companies whose completion time falls inside the
// inclusive range. Companies without a completion time never match.
func FilterByDateRange(companies []*company.Company, criteria *company.FilterCriteria) []*company.Company {
	if criteria == nil || criteria.DateRange == nil {
		return append([]*company.Company(nil), companies...)
	}
	r := *criteria.DateRange
	return keep(companies, func(c *company.Company) bool {
		return c.CompletedAt != nil && r.Contains(*c.CompletedAt)
	})
}

// Apply narrows companies by every populated criteria field, ANDing all
// predicates: a company must satisfy every populated dimension to remain.
// The result preserves the input's relative order (stable filter, not a
// sort). An empty criteria value returns all companies.
//
// Apply is idempotent and monotone: re-applying the same criteria yields the
// same result, and adding a constraint can only shrink the result.
func Apply(companies []*company.Company, criteria company.FilterCriteria) []*company.Company {
	out := append([]*company.Company(nil), companies...)
	if criteria.IsEmpty() {
		return out
	}
	out = FilterByRiskGrade(out, criteria.RiskGrades)
	out = FilterByIndustry(out, criteria.Industries)
	out = FilterByRegion(out, criteria.Regions)
	out = FilterByCity(out, criteria.Cities)
	out = FilterByStatus(out, criteria.Statuses)
	out = FilterByCurrency(out, criteria.Currencies)
	out = FilterByGSTCompliance(out, criteria.GSTCompliance)
	out = FilterByEPFOCompliance(out, criteria.EPFOCompliance)
	out = FilterByAuditQualification(out, criteria.AuditQualifications)
	out = FilterByRiskScore(out, criteria.RiskScoreRange)
	out = FilterByRecommendedLimit(out, criteria.RecommendedLimitRange)
	out = FilterByRetryCount(out, criteria.RetryCountRange)
	out = FilterByFinancialMetrics(out, FinancialMetricRanges{
		EBITDAMargin:  criteria.EBITDAMarginRange,
		NetMargin:     criteria.NetMarginRange,
		DebtToEquity:  criteria.DebtEquityRange,
		CurrentRatio:  criteria.CurrentRatioRange,
		ROE:           criteria.ROERange,
		InterestCover: criteria.InterestCoverRange,
		Revenue:       criteria.RevenueRange,
	})
	out = FilterByDateRange(out, &criteria)
	out = Search(out, criteria.SearchQuery)
	return out
}
