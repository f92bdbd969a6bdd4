package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a formatted table comparing scenarios
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString("TAX SCENARIO COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 96) + "\n")
	sb.WriteString(fmt.Sprintf("Base Scenario: %s\n", compSet.BaseScenarioName))
	if compSet.InputPath != "" {
		sb.WriteString(fmt.Sprintf("Input: %s\n", compSet.InputPath))
	}
	sb.WriteString("\n")

	nameWidth := 30
	numWidth := 15

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "Gross",
		numWidth, "Taxable",
		numWidth, "Total Tax",
		numWidth, "Effective"))
	sb.WriteString(strings.Repeat("-", 96) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}
	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, nameWidth, numWidth, false))
		}
	}
	sb.WriteString(strings.Repeat("=", 96) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))
			if alt.Description != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", alt.Description))
			}
			sb.WriteString(fmt.Sprintf("  Total Tax:       %s KRW (%s%%)\n",
				tf.signed(alt.TaxDiffFromBase), alt.TaxPctFromBase.StringFixed(2)))
			sb.WriteString(fmt.Sprintf("  After Tax:       %s KRW\n", tf.signed(alt.AfterTaxDiffFromBase)))
			if !alt.EffectiveRateDiff.IsZero() {
				sb.WriteString(fmt.Sprintf("  Effective Rate:  %s%s pts\n",
					tf.deltaSymbol(alt.EffectiveRateDiff), alt.EffectiveRateDiff.Shift(2).StringFixed(2)))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 96) + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("• %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}
	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, tf.formatWon(result.GrossAmount),
		numWidth, tf.formatWon(result.TaxableAmount),
		numWidth, tf.formatWon(result.TotalTax),
		numWidth, result.EffectiveRate.Shift(2).StringFixed(2)+"%")
}

// formatWon abbreviates large amounts in millions
func (tf *TableFormatter) formatWon(w domain.Won) string {
	d := w.Decimal()
	if d.Abs().GreaterThanOrEqual(decimal.NewFromInt(100_000_000)) {
		return d.Div(decimal.NewFromInt(1_000_000)).StringFixed(1) + "M"
	}
	return w.String()
}

func (tf *TableFormatter) signed(w domain.Won) string {
	if w > 0 {
		return "+" + w.String()
	}
	return w.String()
}

// deltaSymbol returns a + for increases; negatives carry their own sign
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	}
	return ""
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a single-line summary of the tax deltas
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Base: %s | ", compSet.BaseScenarioName))
	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		if alt.TaxDiffFromBase != 0 {
			change = tf.signed(alt.TaxDiffFromBase)
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.ScenarioName, change))
	}
	return sb.String()
}
