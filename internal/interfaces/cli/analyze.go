package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Credmatrix/portfolio-management-sub006/internal/application/portfolio"
	"github.com/Credmatrix/portfolio-management-sub006/internal/domain/company"
)

type analyzeOptions struct {
	companiesPath string
	criteriaPath  string
	orgID         string
	pretty        bool
}

// newAnalyzeCommand builds `portfolioctl analyze`, which runs the full
// analytics suite over a JSON export of company records without touching
// any backing service.
func newAnalyzeCommand() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute portfolio analytics from a JSON company export",
		Long: `Reads an array of company records from a JSON file, optionally applies
filter criteria, and prints the resulting dashboard to stdout.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.companiesPath, "input", "i", "", "path to the companies JSON file (required)")
	cmd.Flags().StringVarP(&opts.criteriaPath, "criteria", "f", "", "path to a filter criteria JSON file")
	cmd.Flags().StringVar(&opts.orgID, "org", "", "restrict the analysis to one organization")
	cmd.Flags().BoolVar(&opts.pretty, "pretty", true, "indent the JSON output")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	raw, err := os.ReadFile(opts.companiesPath)
	if err != nil {
		return fmt.Errorf("reading companies file: %w", err)
	}
	var companies []*company.Company
	if err := json.Unmarshal(raw, &companies); err != nil {
		return fmt.Errorf("parsing companies file: %w", err)
	}
	for _, c := range companies {
		c.Normalize()
	}

	var criteria company.FilterCriteria
	if opts.criteriaPath != "" {
		raw, err := os.ReadFile(opts.criteriaPath)
		if err != nil {
			return fmt.Errorf("reading criteria file: %w", err)
		}
		if err := json.Unmarshal(raw, &criteria); err != nil {
			return fmt.Errorf("parsing criteria file: %w", err)
		}
	}

	if opts.orgID != "" {
		scoped := companies[:0]
		for _, c := range companies {
			if string(c.OrganizationID) == opts.orgID {
				scoped = append(scoped, c)
			}
		}
		companies = scoped
	}

	filtered := portfolio.Apply(companies, criteria)
	dash := &portfolio.Dashboard{
		TotalCompanies:    len(companies),
		FilteredCompanies: len(filtered),
		GradeDistribution: portfolio.ComputeGradeDistribution(filtered),
		RiskConcentration: portfolio.ComputeRiskConcentration(filtered),
		IndustryBreakdown: portfolio.ComputeIndustryBreakdown(filtered),
		RiskOverlay:       portfolio.ComputeIndustryRiskOverlay(filtered),
		PeerComparisons:   portfolio.ComputePeerComparisons(filtered),
		Compliance:        portfolio.ComputeComplianceAnalysis(filtered),
		Trends:            portfolio.ComputeMonthlyTrends(filtered, criteria.DateRange),
		ComputedAt:        time.Now().UTC(),
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(dash)
}
