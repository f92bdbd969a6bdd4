package calculation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxlab/ktax/internal/domain"
)

func TestEarnedIncome_FiftyMillionScenario(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))

	res, err := calc.Calculate(domain.EarnedIncomeInput{AnnualSalary: 50_000_000})
	require.NoError(t, err)

	assert.Equal(t, domain.Won(14_250_000), res.EarnedIncomeDeduction)
	assert.Equal(t, domain.Won(1_500_000), res.PersonalDeduction)
	assert.Equal(t, domain.Won(130_000), res.SpecialDeduction)
	assert.False(t, res.UsedItemized)
	assert.Equal(t, domain.Won(34_120_000), res.TaxableAmount)
	assert.Equal(t, domain.Won(3_858_000), res.CalculatedTax)
	assert.Equal(t, domain.Won(3_858_000), res.NationalTax)
	assert.Equal(t, domain.Won(385_800), res.LocalTax)
	assert.Equal(t, domain.Won(4_243_800), res.TotalTax)
	assert.Equal(t, domain.Won(3_813_016), res.NetMonthlyEstimate)
	assert.Equal(t, "0.15", res.MarginalRate.String())
	assert.Equal(t, "0.0849", res.EffectiveRate.String())
	assert.Len(t, res.AppliedRates, 2)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, domain.CategoryEarnedIncome, res.Category)
	assert.Equal(t, 2024, res.TaxYear)
	summary := res.Breakdown.Summary
	assert.Equal(t, domain.Won(50_000_000), summary.GrossIncome)
	assert.Equal(t, domain.Won(15_880_000), summary.TotalDeductions)
	assert.Equal(t, domain.Won(34_120_000), summary.TaxableBase)
	assert.Equal(t, domain.Won(4_243_800), summary.FinalTax)
	assert.NotEmpty(t, res.Breakdown.Steps)
	assert.Equal(t, "Gross salary", res.Breakdown.Steps[0].Label)
}

func TestEarnedIncome_Credits(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))

	res, err := calc.Calculate(domain.EarnedIncomeInput{
		AnnualSalary:   50_000_000,
		PensionSavings: 8_000_000,
		HousingFund:    1_000_000,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Won(1_120_000), res.TotalCredits)
	assert.Equal(t, domain.Won(2_738_000), res.NationalTax)
	assert.Equal(t, domain.Won(273_800), res.LocalTax)
	require.Len(t, res.Credits, 2)
	assert.Equal(t, domain.Won(720_000), res.Credits[0].Amount)
	assert.Equal(t, domain.Won(400_000), res.Credits[1].Amount)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "pension_savings", res.Warnings[0].Field)
	assert.Equal(t, domain.Won(8_000_000), res.Warnings[0].Original)
	assert.Equal(t, domain.Won(6_000_000), res.Warnings[0].Applied)
}

func TestEarnedIncome_CreditsNeverExceedTax(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))

	res, err := calc.Calculate(domain.EarnedIncomeInput{
		AnnualSalary:   20_000_000,
		PensionSavings: 6_000_000,
		HousingFund:    3_000_000,
	})
	require.NoError(t, err)

	assert.Equal(t, res.CalculatedTax, res.TotalCredits)
	assert.Zero(t, res.NationalTax)
	assert.Zero(t, res.TotalTax)
}

func TestEarnedIncome_Itemized(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))

	res, err := calc.Calculate(domain.EarnedIncomeInput{
		AnnualSalary:    50_000_000,
		MedicalExpenses: 3_000_000,
		CreditCardUsage: 20_000_000,
	})
	require.NoError(t, err)

	assert.True(t, res.UsedItemized)
	assert.Equal(t, domain.Won(2_625_000), res.ItemizedTotal)
	assert.Equal(t, domain.Won(2_625_000), res.SpecialDeduction)
	assert.Equal(t, domain.Won(31_625_000), res.TaxableAmount)
	assert.Equal(t, domain.Won(3_483_750), res.NationalTax)
}

func TestEarnedIncome_ClampsStatutoryLimits(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))

	res, err := calc.Calculate(domain.EarnedIncomeInput{
		AnnualSalary:      50_000_000,
		Dependents:        1,
		EducationExpenses: 5_000_000,
		Donations:         20_000_000,
		CreditCardUsage:   50_000_000,
	})
	require.NoError(t, err)

	fields := map[string]domain.Warning{}
	for _, w := range res.Warnings {
		fields[w.Field] = w
	}
	assert.Equal(t, domain.Won(3_000_000), fields["education_expenses"].Applied)
	assert.Equal(t, domain.Won(15_000_000), fields["donations"].Applied)
	assert.Equal(t, domain.Won(3_000_000), fields["credit_card_deduction"].Applied)
	assert.Equal(t, domain.Won(5_625_000), fields["credit_card_deduction"].Original)
	assert.Equal(t, domain.Won(21_000_000), res.ItemizedTotal)
}

func TestEarnedIncome_ZeroClamp(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))

	res, err := calc.Calculate(domain.EarnedIncomeInput{AnnualSalary: 5_000_000, Dependents: 3})
	require.NoError(t, err)

	assert.Zero(t, res.TaxableAmount)
	assert.Zero(t, res.CalculatedTax)
	assert.Zero(t, res.NationalTax)
	assert.Zero(t, res.LocalTax)
	assert.Zero(t, res.TotalTax)
	assert.Empty(t, res.AppliedRates)
	assert.Equal(t, "0", res.MarginalRate.String())
}

func TestEarnedIncome_ZeroSalary(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))

	res, err := calc.Calculate(domain.EarnedIncomeInput{})
	require.NoError(t, err)
	assert.Zero(t, res.TotalTax)
	assert.Equal(t, "0", res.EffectiveRate.String())
}

func TestEarnedIncome_Monotonic(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))

	var prev domain.Won
	for salary := domain.Won(0); salary <= 400_000_000; salary += 1_250_000 {
		res, err := calc.Calculate(domain.EarnedIncomeInput{AnnualSalary: salary, Dependents: 2, MedicalExpenses: 2_000_000})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.TotalTax, prev, "salary %s", salary)
		prev = res.TotalTax
	}
}

func TestEarnedIncome_Deterministic(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))
	in := domain.EarnedIncomeInput{
		AnnualSalary:    87_654_321,
		Dependents:      2,
		ElderlyCount:    1,
		MedicalExpenses: 4_000_001,
		CreditCardUsage: 33_333_333,
		PensionSavings:  7_000_000,
	}

	first, err := calc.Calculate(in)
	require.NoError(t, err)
	second, err := calc.Calculate(in)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestEarnedIncome_ValidationErrors(t *testing.T) {
	calc := NewEarnedIncomeCalculator(table2024(t))

	tests := []struct {
		name  string
		in    domain.EarnedIncomeInput
		field string
	}{
		{"negative salary", domain.EarnedIncomeInput{AnnualSalary: -1}, "annual_salary"},
		{"negative medical", domain.EarnedIncomeInput{AnnualSalary: 1, MedicalExpenses: -1}, "medical_expenses"},
		{"too many dependents", domain.EarnedIncomeInput{AnnualSalary: 1, Dependents: 21}, "dependents"},
		{"negative dependents", domain.EarnedIncomeInput{AnnualSalary: 1, Dependents: -1}, "dependents"},
		{"disabled exceeds household", domain.EarnedIncomeInput{AnnualSalary: 1, DisabledCount: 2}, "disabled_count"},
		{"elderly exceeds household", domain.EarnedIncomeInput{AnnualSalary: 1, Dependents: 1, ElderlyCount: 3}, "elderly_count"},
		{"salary above maximum", domain.EarnedIncomeInput{AnnualSalary: 100_000_000_001}, "annual_salary"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := calc.Calculate(tt.in)
			assert.Nil(t, res)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}
