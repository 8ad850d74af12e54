package portfolio

import (
	"sort"

	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
)

// ComplianceStatus is a company's standing under one statutory regime.
type ComplianceStatus string

const (
	ComplianceCompliant    ComplianceStatus = "compliant"
	CompliancePartial      ComplianceStatus = "partial"
	ComplianceNonCompliant ComplianceStatus = "non_compliant"
	ComplianceUnknown      ComplianceStatus = "unknown"
)

// statusFromRate buckets a 0..100 compliance rate. Rates at or above 85
// are compliant, below 70 non-compliant, anything between partial.
func statusFromRate(rate float64) ComplianceStatus {
	switch {
	case rate >= 85:
		return ComplianceCompliant
	case rate < 70:
		return ComplianceNonCompliant
	default:
		return CompliancePartial
	}
}

// GSTStatus derives a company's GST standing from its scored compliance
// rate. Companies without GST scoring data are unknown.
func GSTStatus(c *company.Company) ComplianceStatus {
	rate, ok := c.GSTComplianceRate()
	if !ok {
		return ComplianceUnknown
	}
	return statusFromRate(rate)
}

// EPFOStatus derives a company's EPFO standing from its effective
// compliance rate.
func EPFOStatus(c *company.Company) ComplianceStatus {
	rate, ok := c.EPFOComplianceRate()
	if !ok {
		return ComplianceUnknown
	}
	return statusFromRate(rate)
}

// AuditStatus derives a company's audit standing from its reported
// qualifications. A clean report is compliant, one or two qualifications
// partial, three or more non-compliant. Companies without audit data are
// unknown.
func AuditStatus(c *company.Company) ComplianceStatus {
	if c == nil || c.ExtractedData == nil || c.ExtractedData.Audit == nil {
		return ComplianceUnknown
	}
	switch n := len(c.AuditQualifications()); {
	case n == 0:
		return ComplianceCompliant
	case n <= 2:
		return CompliancePartial
	default:
		return ComplianceNonCompliant
	}
}

// StatusCounts tallies companies per compliance status within one regime.
type StatusCounts struct {
	Compliant    int `json:"compliant"`
	Partial      int `json:"partial"`
	NonCompliant int `json:"non_compliant"`
	Unknown      int `json:"unknown"`
}

func (s *StatusCounts) add(st ComplianceStatus) {
	switch st {
	case ComplianceCompliant:
		s.Compliant++
	case CompliancePartial:
		s.Partial++
	case ComplianceNonCompliant:
		s.NonCompliant++
	default:
		s.Unknown++
	}
}

// Known is the number of companies with a determinate status.
func (s StatusCounts) Known() int {
	return s.Compliant + s.Partial + s.NonCompliant
}

// Total is the number of companies tallied, unknowns included.
func (s StatusCounts) Total() int {
	return s.Known() + s.Unknown
}

// Score maps the counts to 0..100 with full credit for compliant and half
// credit for partial, over the whole tallied population. Unknowns count
// against the score. Zero when nothing was tallied.
func (s StatusCounts) Score() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return round2(float64(s.Compliant*100+s.Partial*50) / float64(total))
}

// ComplianceHeatmapCell is one region's or industry's standing across the
// three regimes.
type ComplianceHeatmapCell struct {
	Key   string       `json:"key"`
	Count int          `json:"count"`
	GST   StatusCounts `json:"gst"`
	EPFO  StatusCounts `json:"epfo"`
	Audit StatusCounts `json:"audit"`
	Score float64      `json:"score"`
}

// ComplianceAnalysis is the portfolio-wide compliance view.
type ComplianceAnalysis struct {
	TotalCompanies int          `json:"total_companies"`
	GST            StatusCounts `json:"gst"`
	EPFO           StatusCounts `json:"epfo"`
	Audit          StatusCounts `json:"audit"`
	// OverallScore is the unweighted mean of the regime scores over
	// regimes with at least one determinate company.
	OverallScore    float64                 `json:"overall_score"`
	RegionHeatmap   []ComplianceHeatmapCell `json:"region_heatmap"`
	IndustryHeatmap []ComplianceHeatmapCell `json:"industry_heatmap"`
}

func cellScore(gst, epfo, audit StatusCounts) float64 {
	var sum float64
	var regimes int
	for _, s := range []StatusCounts{gst, epfo, audit} {
		if s.Known() > 0 {
			sum += s.Score()
			regimes++
		}
	}
	if regimes == 0 {
		return 0
	}
	return round2(sum / float64(regimes))
}

// ComputeComplianceAnalysis classifies every company under the GST, EPFO
// and audit regimes and rolls the results up overall, by registered state,
// and by industry. Empty input yields zero counts and a zero score.
func ComputeComplianceAnalysis(companies []*company.Company) ComplianceAnalysis {
	out := ComplianceAnalysis{TotalCompanies: len(companies)}
	regions := map[string]*ComplianceHeatmapCell{}
	industries := map[string]*ComplianceHeatmapCell{}

	cell := func(m map[string]*ComplianceHeatmapCell, key string) *ComplianceHeatmapCell {
		if key == "" {
			key = "Unclassified"
		}
		c := m[key]
		if c == nil {
			c = &ComplianceHeatmapCell{Key: key}
			m[key] = c
		}
		return c
	}

	for _, c := range companies {
		gst := GSTStatus(c)
		epfo := EPFOStatus(c)
		audit := AuditStatus(c)

		out.GST.add(gst)
		out.EPFO.add(epfo)
		out.Audit.add(audit)

		for _, h := range []*ComplianceHeatmapCell{
			cell(regions, c.RegisteredState()),
			cell(industries, c.Industry),
		} {
			h.Count++
			h.GST.add(gst)
			h.EPFO.add(epfo)
			h.Audit.add(audit)
		}
	}

	out.OverallScore = cellScore(out.GST, out.EPFO, out.Audit)

	flatten := func(m map[string]*ComplianceHeatmapCell) []ComplianceHeatmapCell {
		cells := make([]ComplianceHeatmapCell, 0, len(m))
		for _, c := range m {
			c.Score = cellScore(c.GST, c.EPFO, c.Audit)
			cells = append(cells, *c)
		}
		sort.Slice(cells, func(i, j int) bool {
			if cells[i].Count != cells[j].Count {
				return cells[i].Count > cells[j].Count
			}
			return cells[i].Key < cells[j].Key
		})
		return cells
	}
	out.RegionHeatmap = flatten(regions)
	out.IndustryHeatmap = flatten(industries)

	return out
}
