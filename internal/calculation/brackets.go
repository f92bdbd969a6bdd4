package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// ProgressiveTax applies each bracket's marginal rate to the slice of income
// it covers and returns the floored total together with one AppliedRate per
// touched bracket. Contributions are the differences of the floored running
// totals, so they always add up to the returned tax.
func ProgressiveTax(income decimal.Decimal, brackets []domain.Bracket) (domain.Won, []domain.AppliedRate) {
	applied := []domain.AppliedRate{}
	if !income.IsPositive() {
		return 0, applied
	}

	cumulative := decimal.Zero
	var previous domain.Won
	for _, b := range brackets {
		lower := b.Min.Decimal()
		if income.LessThanOrEqual(lower) {
			break
		}
		upper := income
		if b.Max != nil && b.Max.Decimal().LessThan(income) {
			upper = b.Max.Decimal()
		}
		cumulative = cumulative.Add(upper.Sub(lower).Mul(b.Rate))
		floored := domain.FloorWon(cumulative)
		applied = append(applied, domain.AppliedRate{
			IncomeRange:    domain.IncomeRange{From: b.Min, To: domain.FloorWon(upper)},
			MarginalRate:   b.Rate,
			TaxContributed: floored - previous,
		})
		previous = floored
	}
	return previous, applied
}

// QuickTax computes income*rate - progressiveDeduction for the bracket that
// contains income. It agrees with ProgressiveTax for every income when the
// table passed ratetable.ValidateBrackets.
func QuickTax(income decimal.Decimal, brackets []domain.Bracket) domain.Won {
	b, ok := containingBracket(income, brackets)
	if !ok {
		return 0
	}
	tax := income.Mul(b.Rate).Sub(b.ProgressiveDeduction.Decimal())
	if tax.IsNegative() {
		return 0
	}
	return domain.FloorWon(tax)
}

// MarginalRate is the rate of the last bracket income reaches, or zero when
// there is no taxable income.
func MarginalRate(income decimal.Decimal, brackets []domain.Bracket) decimal.Decimal {
	b, ok := containingBracket(income, brackets)
	if !ok {
		return decimal.Zero
	}
	return b.Rate
}

func containingBracket(income decimal.Decimal, brackets []domain.Bracket) (domain.Bracket, bool) {
	if !income.IsPositive() || len(brackets) == 0 {
		return domain.Bracket{}, false
	}
	for _, b := range brackets {
		if b.Contains(income) {
			return b, true
		}
	}
	return brackets[len(brackets)-1], true
}

// localTax is the 10% surtax on national tax, floored
func localTax(rt *domain.RateTable, national domain.Won) domain.Won {
	if national <= 0 {
		return 0
	}
	return domain.FloorWon(national.Decimal().Mul(rt.IncomeTax.LocalTaxRate))
}
