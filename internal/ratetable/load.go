package ratetable

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/taxlab/ktax/internal/domain"
)

// Parse decodes a YAML rate table. Validation is left to NewStore / Validate.
func Parse(data []byte) (*domain.RateTable, error) {
	var rt domain.RateTable
	if err := yaml.Unmarshal(data, &rt); err != nil {
		return nil, fmt.Errorf("failed to parse rate table YAML: %w", err)
	}
	return &rt, nil
}

// LoadFile reads, parses and validates a rate table from disk
func LoadFile(filename string) (*domain.RateTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	rt, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(rt); err != nil {
		return nil, fmt.Errorf("rate table %s validation failed: %w", filename, err)
	}
	return rt, nil
}

// Validate checks the structural invariants every calculator relies on
func Validate(rt *domain.RateTable) error {
	if rt == nil {
		return fmt.Errorf("rate table is nil")
	}
	if rt.Metadata.TaxYear <= 0 {
		return fmt.Errorf("metadata.tax_year must be positive")
	}
	if err := ValidateBrackets(rt.IncomeTax.Brackets); err != nil {
		return fmt.Errorf("income_tax.brackets: %w", err)
	}
	if err := validateRate("income_tax.local_tax_rate", rt.IncomeTax.LocalTaxRate); err != nil {
		return err
	}
	if err := ValidateFormula(rt.EarnedIncome.Deduction); err != nil {
		return fmt.Errorf("earned_income.deduction: %w", err)
	}
	if err := ValidateFormula(rt.Comprehensive.PensionDeduction); err != nil {
		return fmt.Errorf("comprehensive.pension_deduction: %w", err)
	}
	if err := validateHoldingRates(rt.CapitalGains.LongTermHolding.General); err != nil {
		return fmt.Errorf("capital_gains.long_term_holding.general: %w", err)
	}
	if err := validateHoldingRates(rt.CapitalGains.LongTermHolding.Residential); err != nil {
		return fmt.Errorf("capital_gains.long_term_holding.residential: %w", err)
	}
	if err := validateWithholdingTable(rt.Withholding.Earned.Table); err != nil {
		return fmt.Errorf("withholding.earned.table: %w", err)
	}

	rates := map[string]decimal.Decimal{
		"itemized_deduction.medical_floor_rate":  rt.Itemized.MedicalFloorRate,
		"itemized_deduction.donation_limit_rate": rt.Itemized.DonationLimitRate,
		"itemized_deduction.card_floor_rate":     rt.Itemized.CardFloorRate,
		"itemized_deduction.card_deduction_rate": rt.Itemized.CardDeductionRate,
		"tax_credits.pension_savings.rate":       rt.Credits.PensionSavings.Rate,
		"tax_credits.housing_fund.rate":          rt.Credits.HousingFund.Rate,
		"tax_credits.earned_income.low_rate":     rt.Credits.EarnedIncome.LowRate,
		"tax_credits.earned_income.high_rate":    rt.Credits.EarnedIncome.HighRate,
		"comprehensive.other_expense_rate":       rt.Comprehensive.OtherExpenseRate,
		"capital_gains.non_resident_rate":        rt.CapitalGains.NonResidentRate,
		"capital_gains.surcharge_points":         rt.CapitalGains.SurchargePoints,
		"capital_gains.long_hold_one_house.rate": rt.CapitalGains.LongHoldOneHouse.Rate,
		"withholding.business_rate":              rt.Withholding.BusinessRate,
		"withholding.other_rate":                 rt.Withholding.OtherRate,
		"withholding.interest_rate":              rt.Withholding.InterestRate,
		"withholding.dividend_rate":              rt.Withholding.DividendRate,
		"withholding.earned.excess_rate":         rt.Withholding.Earned.ExcessRate,
	}
	for name, r := range rates {
		if err := validateRate(name, r); err != nil {
			return err
		}
	}

	amounts := map[string]domain.Won{
		"personal_deduction.basic":                       rt.Personal.Basic,
		"personal_deduction.disabled":                    rt.Personal.Disabled,
		"personal_deduction.elderly":                     rt.Personal.Elderly,
		"itemized_deduction.standard_deduction":          rt.Itemized.StandardDeduction,
		"itemized_deduction.education_cap_per_dependent": rt.Itemized.EducationCapPerDependent,
		"itemized_deduction.card_deduction_cap":          rt.Itemized.CardDeductionCap,
		"tax_credits.pension_savings.contribution_cap":   rt.Credits.PensionSavings.ContributionCap,
		"tax_credits.housing_fund.contribution_cap":      rt.Credits.HousingFund.ContributionCap,
		"tax_credits.per_child":                          rt.Credits.PerChild,
		"tax_credits.earned_income.threshold":            rt.Credits.EarnedIncome.Threshold,
		"tax_credits.earned_income.base":                 rt.Credits.EarnedIncome.Base,
		"comprehensive.other_basic_deduction":            rt.Comprehensive.OtherBasicDeduction,
		"comprehensive.other_expense_cap":                rt.Comprehensive.OtherExpenseCap,
		"capital_gains.basic_deduction":                  rt.CapitalGains.BasicDeduction,
		"capital_gains.one_house_exemption_threshold":    rt.CapitalGains.OneHouseExemptionThreshold,
		"capital_gains.long_hold_one_house.cap":          rt.CapitalGains.LongHoldOneHouse.Cap,
		"withholding.other_basic_deduction":              rt.Withholding.OtherBasicDeduction,
		"withholding.earned.dependent_credit":            rt.Withholding.Earned.DependentCredit,
		"withholding.earned.child_credit":                rt.Withholding.Earned.ChildCredit,
	}
	for name, a := range amounts {
		if a < 0 {
			return fmt.Errorf("%s cannot be negative", name)
		}
	}

	if rt.Limits.MaxDependents <= 0 || rt.Limits.MaxChildren <= 0 {
		return fmt.Errorf("input_limits.max_dependents and max_children must be positive")
	}
	if rt.Limits.MaxAnnualIncome <= 0 || rt.Limits.MaxPayment <= 0 || rt.Limits.MaxAssetPrice <= 0 {
		return fmt.Errorf("input_limits amounts must be positive")
	}
	return nil
}

// ValidateBrackets enforces that brackets partition [0, ∞) in ascending order
// and that each progressive deduction matches the slice-summation form.
func ValidateBrackets(brackets []domain.Bracket) error {
	if len(brackets) == 0 {
		return fmt.Errorf("at least one bracket is required")
	}
	if brackets[0].Min != 0 {
		return fmt.Errorf("first bracket must start at 0, got %d", brackets[0].Min)
	}
	if brackets[0].ProgressiveDeduction != 0 {
		return fmt.Errorf("first bracket progressive deduction must be 0")
	}
	for i, b := range brackets {
		if err := validateRate(fmt.Sprintf("bracket %d rate", i), b.Rate); err != nil {
			return err
		}
		last := i == len(brackets)-1
		if last && !b.Unbounded() {
			return fmt.Errorf("top bracket must be unbounded")
		}
		if !last {
			if b.Unbounded() {
				return fmt.Errorf("bracket %d is unbounded but is not the last bracket", i)
			}
			if *b.Max <= b.Min {
				return fmt.Errorf("bracket %d max %d must exceed min %d", i, *b.Max, b.Min)
			}
			next := brackets[i+1]
			if next.Min != *b.Max {
				return fmt.Errorf("bracket %d starts at %d but bracket %d ends at %d", i+1, next.Min, i, *b.Max)
			}
			if next.Rate.LessThan(b.Rate) {
				return fmt.Errorf("bracket %d rate %s is below the previous rate %s", i+1, next.Rate, b.Rate)
			}
			// deduction_{i+1} = deduction_i + min_{i+1} * (rate_{i+1} - rate_i)
			want := b.ProgressiveDeduction.Decimal().Add(next.Min.Decimal().Mul(next.Rate.Sub(b.Rate)))
			if !want.Equal(next.ProgressiveDeduction.Decimal()) {
				return fmt.Errorf("bracket %d progressive deduction %d does not match slice form %s", i+1, next.ProgressiveDeduction, want)
			}
		}
	}
	return nil
}

// ValidateFormula checks tier ordering and continuity at every boundary so
// that the formula never jumps as its input grows.
func ValidateFormula(f domain.TieredFormula) error {
	if len(f.Tiers) == 0 {
		return fmt.Errorf("at least one tier is required")
	}
	if f.Cap != nil && *f.Cap < 0 {
		return fmt.Errorf("cap cannot be negative")
	}
	for i, t := range f.Tiers {
		if err := validateRate(fmt.Sprintf("tier %d rate", i), t.Rate); err != nil {
			return err
		}
		last := i == len(f.Tiers)-1
		if last {
			if t.UpTo != nil {
				return fmt.Errorf("last tier must be open-ended")
			}
			continue
		}
		if t.UpTo == nil {
			return fmt.Errorf("tier %d is open-ended but is not the last tier", i)
		}
		if i > 0 && *t.UpTo <= *f.Tiers[i-1].UpTo {
			return fmt.Errorf("tier %d bound %d is not above the previous bound", i, *t.UpTo)
		}
		edge := t.UpTo.Decimal()
		if !t.At(edge).Equal(f.Tiers[i+1].At(edge)) {
			return fmt.Errorf("tiers %d and %d disagree at %d (%s vs %s)", i, i+1, *t.UpTo, t.At(edge), f.Tiers[i+1].At(edge))
		}
	}
	return nil
}

func validateHoldingRates(rates []domain.HoldingRate) error {
	if len(rates) == 0 {
		return fmt.Errorf("at least one entry is required")
	}
	for i, r := range rates {
		if err := validateRate(fmt.Sprintf("entry %d rate", i), r.Rate); err != nil {
			return err
		}
		if i == 0 {
			continue
		}
		prev := rates[i-1]
		if r.Years <= prev.Years {
			return fmt.Errorf("entry %d years %d must be above %d", i, r.Years, prev.Years)
		}
		if r.Rate.LessThan(prev.Rate) {
			return fmt.Errorf("entry %d rate %s is below the previous rate %s", i, r.Rate, prev.Rate)
		}
	}
	return nil
}

func validateWithholdingTable(rows []domain.WithholdingRow) error {
	if len(rows) == 0 {
		return fmt.Errorf("at least one row is required")
	}
	if rows[0].From != 0 {
		return fmt.Errorf("first row must start at 0")
	}
	columns := len(rows[0].Amounts)
	if columns == 0 {
		return fmt.Errorf("rows must have at least one column")
	}
	for i, row := range rows {
		if len(row.Amounts) != columns {
			return fmt.Errorf("row %d has %d columns, expected %d", i, len(row.Amounts), columns)
		}
		if i > 0 && row.From <= rows[i-1].From {
			return fmt.Errorf("row %d starts at %d, not above the previous row", i, row.From)
		}
		for j, a := range row.Amounts {
			if a < 0 {
				return fmt.Errorf("row %d column %d is negative", i, j)
			}
			if j > 0 && a > row.Amounts[j-1] {
				return fmt.Errorf("row %d column %d exceeds the smaller family column", i, j)
			}
		}
	}
	return nil
}

func validateRate(name string, r decimal.Decimal) error {
	if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%s must be between 0 and 1, got %s", name, r)
	}
	return nil
}
