package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// BreakdownBuilder accumulates audit steps in the order a calculator performs
// them. Deductions and credits are recorded with negative amounts.
type BreakdownBuilder struct {
	steps   []domain.Step
	summary domain.BreakdownSummary
}

// NewBreakdownBuilder starts an empty breakdown
func NewBreakdownBuilder() *BreakdownBuilder {
	return &BreakdownBuilder{steps: []domain.Step{}}
}

// Add records a step with a positive or neutral amount
func (b *BreakdownBuilder) Add(label string, amount domain.Won, description string) *BreakdownBuilder {
	b.steps = append(b.steps, domain.Step{Label: label, Amount: amount, Description: description})
	return b
}

// AddFormula records a step together with the arithmetic that produced it
func (b *BreakdownBuilder) AddFormula(label string, amount domain.Won, description, formula string) *BreakdownBuilder {
	b.steps = append(b.steps, domain.Step{Label: label, Amount: amount, Description: description, Formula: formula})
	return b
}

// Subtract records a deduction or credit. Zero amounts are skipped.
func (b *BreakdownBuilder) Subtract(label string, amount domain.Won, description string) *BreakdownBuilder {
	if amount == 0 {
		return b
	}
	b.steps = append(b.steps, domain.Step{Label: label, Amount: -amount, Description: description})
	return b
}

// Summarize sets the headline figures
func (b *BreakdownBuilder) Summarize(s domain.BreakdownSummary) *BreakdownBuilder {
	b.summary = s
	return b
}

// Build returns the finished breakdown. The builder may not be reused.
func (b *BreakdownBuilder) Build() domain.CalculationBreakdown {
	return domain.CalculationBreakdown{Steps: b.steps, Summary: b.summary}
}

// percent renders a fractional rate as a percentage, e.g. 0.15 -> "15%"
func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}

// quickTaxFormula explains a progressive tax with the bracket's deduction form
func quickTaxFormula(taxable decimal.Decimal, brackets []domain.Bracket) string {
	b, ok := containingBracket(taxable, brackets)
	if !ok {
		return "no taxable income"
	}
	if b.ProgressiveDeduction == 0 {
		return fmt.Sprintf("%s × %s", domain.FloorWon(taxable), percent(b.Rate))
	}
	return fmt.Sprintf("%s × %s − %s", domain.FloorWon(taxable), percent(b.Rate), b.ProgressiveDeduction)
}

// formulaText explains which tier of a tiered formula produced a value
func formulaText(f domain.TieredFormula, tier int, x domain.Won) string {
	if tier < 0 || tier >= len(f.Tiers) {
		return ""
	}
	t := f.Tiers[tier]
	var s string
	if t.Base == 0 && t.Over == 0 {
		s = fmt.Sprintf("%s × %s", x, percent(t.Rate))
	} else {
		s = fmt.Sprintf("%s + (%s − %s) × %s", t.Base, x, t.Over, percent(t.Rate))
	}
	if f.Cap != nil {
		s += fmt.Sprintf(", capped at %s", *f.Cap)
	}
	return s
}
