package calculation

import (
	"fmt"
	"time"

	"github.com/taxlab/ktax/internal/domain"
)

// Validator checks one input against the table's domain limits. Hard
// failures are returned as *domain.ValidationError; soft statutory caps are
// clamped and recorded as warnings. A Validator is single-use.
type Validator struct {
	rt       *domain.RateTable
	warnings []domain.Warning
}

// NewValidator creates a validator bound to one rate table
func NewValidator(rt *domain.RateTable) *Validator {
	return &Validator{rt: rt}
}

// Warnings returns every clamp recorded so far
func (v *Validator) Warnings() []domain.Warning {
	return v.warnings
}

// Clamp caps value at limit and records a warning when it had to
func (v *Validator) Clamp(field string, value, limit domain.Won, message string) domain.Won {
	if value <= limit {
		return value
	}
	if limit < 0 {
		limit = 0
	}
	v.warnings = append(v.warnings, domain.Warning{
		Field:    field,
		Message:  message,
		Original: value,
		Applied:  limit,
	})
	return limit
}

type wonField struct {
	name  string
	value domain.Won
}

func invalid(field string, value any, reason string) *domain.ValidationError {
	return &domain.ValidationError{Field: field, Value: value, Reason: reason}
}

func requireNonNegative(fields ...wonField) error {
	for _, f := range fields {
		if f.value < 0 {
			return invalid(f.name, f.value, "cannot be negative")
		}
	}
	return nil
}

func requireAtMost(field string, value, max domain.Won) error {
	if value > max {
		return invalid(field, value, fmt.Sprintf("exceeds the maximum of %s", max))
	}
	return nil
}

func requireCount(field string, n, max int) error {
	if n < 0 {
		return invalid(field, n, "cannot be negative")
	}
	if n > max {
		return invalid(field, n, fmt.Sprintf("exceeds the maximum of %d", max))
	}
	return nil
}

// household checks the disabled and elderly counts against the number of
// people in the household (the taxpayer plus dependents).
func (v *Validator) household(dependents, disabled, elderly int) error {
	if err := requireCount("dependents", dependents, v.rt.Limits.MaxDependents); err != nil {
		return err
	}
	size := dependents + 1
	if err := requireCount("disabled_count", disabled, size); err != nil {
		return err
	}
	return requireCount("elderly_count", elderly, size)
}

func (v *Validator) contribution(field string, value domain.Won, credit domain.ContributionCredit) domain.Won {
	return v.Clamp(field, value, credit.ContributionCap,
		fmt.Sprintf("contribution limited to the %s credit cap", credit.ContributionCap))
}

// ValidateEarnedIncome returns the normalized input
func (v *Validator) ValidateEarnedIncome(in domain.EarnedIncomeInput) (domain.EarnedIncomeInput, error) {
	if err := requireNonNegative(
		wonField{"annual_salary", in.AnnualSalary},
		wonField{"medical_expenses", in.MedicalExpenses},
		wonField{"education_expenses", in.EducationExpenses},
		wonField{"donations", in.Donations},
		wonField{"credit_card_usage", in.CreditCardUsage},
		wonField{"pension_savings", in.PensionSavings},
		wonField{"housing_fund", in.HousingFund},
		wonField{"national_pension", in.NationalPension},
		wonField{"health_insurance", in.HealthInsurance},
	); err != nil {
		return in, err
	}
	if err := requireAtMost("annual_salary", in.AnnualSalary, v.rt.Limits.MaxAnnualIncome); err != nil {
		return in, err
	}
	if err := v.household(in.Dependents, in.DisabledCount, in.ElderlyCount); err != nil {
		return in, err
	}

	in.PensionSavings = v.contribution("pension_savings", in.PensionSavings, v.rt.Credits.PensionSavings)
	in.HousingFund = v.contribution("housing_fund", in.HousingFund, v.rt.Credits.HousingFund)
	return in, nil
}

// ValidateComprehensiveIncome returns the normalized input
func (v *Validator) ValidateComprehensiveIncome(in domain.ComprehensiveIncomeInput) (domain.ComprehensiveIncomeInput, error) {
	incomes := []wonField{
		{"interest_income", in.InterestIncome},
		{"dividend_income", in.DividendIncome},
		{"business_income", in.BusinessIncome},
		{"rental_income", in.RentalIncome},
		{"earned_income", in.EarnedIncome},
		{"pension_income", in.PensionIncome},
		{"other_income", in.OtherIncome},
	}
	if err := requireNonNegative(incomes...); err != nil {
		return in, err
	}
	if err := requireNonNegative(
		wonField{"business_expenses", in.BusinessExpenses},
		wonField{"rental_expenses", in.RentalExpenses},
		wonField{"medical_expenses", in.MedicalExpenses},
		wonField{"education_expenses", in.EducationExpenses},
		wonField{"donations", in.Donations},
		wonField{"credit_card_usage", in.CreditCardUsage},
		wonField{"pension_contributions", in.PensionContributions},
		wonField{"pension_savings", in.PensionSavings},
		wonField{"prepaid_tax", in.PrepaidTax},
	); err != nil {
		return in, err
	}
	for _, f := range incomes {
		if err := requireAtMost(f.name, f.value, v.rt.Limits.MaxAnnualIncome); err != nil {
			return in, err
		}
	}
	if err := v.household(in.Dependents, in.DisabledCount, in.ElderlyCount); err != nil {
		return in, err
	}
	if err := requireCount("children", in.Children, v.rt.Limits.MaxChildren); err != nil {
		return in, err
	}
	if in.Children > in.Dependents {
		return in, invalid("children", in.Children, fmt.Sprintf("cannot exceed the %d dependents", in.Dependents))
	}

	in.BusinessExpenses = v.Clamp("business_expenses", in.BusinessExpenses, in.BusinessIncome,
		"business expenses cannot exceed business income")
	in.RentalExpenses = v.Clamp("rental_expenses", in.RentalExpenses, in.RentalIncome,
		"rental expenses cannot exceed rental income")
	in.PensionSavings = v.contribution("pension_savings", in.PensionSavings, v.rt.Credits.PensionSavings)
	return in, nil
}

// ValidateCapitalGains returns the normalized input
func (v *Validator) ValidateCapitalGains(in domain.CapitalGainsInput) (domain.CapitalGainsInput, error) {
	if in.AcquisitionDate.IsZero() {
		return in, invalid("acquisition_date", nil, "is required")
	}
	if in.SaleDate.IsZero() {
		return in, invalid("sale_date", nil, "is required")
	}
	if in.SaleDate.Before(in.AcquisitionDate) {
		return in, invalid("sale_date", in.SaleDate.Format(time.DateOnly),
			fmt.Sprintf("cannot precede the acquisition date %s", in.AcquisitionDate.Format(time.DateOnly)))
	}
	if err := requireNonNegative(
		wonField{"acquisition_price", in.AcquisitionPrice},
		wonField{"acquisition_costs", in.AcquisitionCosts},
		wonField{"improvement_costs", in.ImprovementCosts},
		wonField{"sale_price", in.SalePrice},
		wonField{"transfer_costs", in.TransferCosts},
		wonField{"previous_year_tax_paid", in.PreviousYearTaxPaid},
	); err != nil {
		return in, err
	}
	if err := requireAtMost("acquisition_price", in.AcquisitionPrice, v.rt.Limits.MaxAssetPrice); err != nil {
		return in, err
	}
	if err := requireAtMost("sale_price", in.SalePrice, v.rt.Limits.MaxAssetPrice); err != nil {
		return in, err
	}
	if in.ResidenceYears < 0 {
		return in, invalid("residence_years", in.ResidenceYears, "cannot be negative")
	}

	years, _ := HoldingPeriod(in.AcquisitionDate, in.SaleDate)
	if in.ResidenceYears > years {
		v.warnings = append(v.warnings, domain.Warning{
			Field:    "residence_years",
			Message:  fmt.Sprintf("residence years limited to the %d-year holding period", years),
			Original: domain.Won(in.ResidenceYears),
			Applied:  domain.Won(years),
		})
		in.ResidenceYears = years
	}
	return in, nil
}

// ValidateWithholding returns the normalized input
func (v *Validator) ValidateWithholding(in domain.WithholdingInput) (domain.WithholdingInput, error) {
	switch in.IncomeType {
	case domain.IncomeTypeEarned, domain.IncomeTypeBusiness, domain.IncomeTypeOther,
		domain.IncomeTypeInterest, domain.IncomeTypeDividend:
	default:
		return in, invalid("income_type", string(in.IncomeType), "unknown income type")
	}
	if err := requireNonNegative(wonField{"payment", in.Payment}); err != nil {
		return in, err
	}
	if err := requireAtMost("payment", in.Payment, v.rt.Limits.MaxPayment); err != nil {
		return in, err
	}
	if err := requireCount("dependents", in.Dependents, v.rt.Limits.MaxDependents); err != nil {
		return in, err
	}
	if err := requireCount("children", in.Children, v.rt.Limits.MaxChildren); err != nil {
		return in, err
	}
	return in, nil
}

// HoldingPeriod returns the completed years and the remaining whole months
// between acquisition and sale.
func HoldingPeriod(acquired, sold time.Time) (years, months int) {
	total := (sold.Year()-acquired.Year())*12 + int(sold.Month()-acquired.Month())
	if sold.Day() < acquired.Day() {
		total--
	}
	if total < 0 {
		return 0, 0
	}
	return total / 12, total % 12
}
