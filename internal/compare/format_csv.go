package compare

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/taxlab/ktax/internal/domain"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Category",
		"Gross",
		"Taxable",
		"Total Tax",
		"After Tax",
		"Marginal Rate",
		"Effective Rate",
		"Tax Diff from Base",
		"Tax % Change",
		"After Tax Diff from Base",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}
	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}
	for _, alt := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&alt, "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.ScenarioName,
		scenarioType,
		string(result.Category),
		formatWon(result.GrossAmount),
		formatWon(result.TaxableAmount),
		formatWon(result.TotalTax),
		formatWon(result.AfterTax),
		result.MarginalRate.String(),
		result.EffectiveRate.String(),
		formatWon(result.TaxDiffFromBase),
		result.TaxPctFromBase.StringFixed(2),
		formatWon(result.AfterTaxDiffFromBase),
	}
}

func formatWon(w domain.Won) string {
	return strconv.FormatInt(int64(w), 10)
}
