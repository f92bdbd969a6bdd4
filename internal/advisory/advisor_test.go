package advisory

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxlab/ktax/internal/calculation"
	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/ratetable"
)

func setup(t *testing.T) (*calculation.Engine, *Advisor) {
	t.Helper()
	engine, err := calculation.NewEngine()
	require.NoError(t, err)
	rt, err := engine.Rates.Table(2024)
	require.NoError(t, err)
	return engine, New(rt)
}

func codes(advisories []domain.Advisory) []string {
	return lo.Map(advisories, func(a domain.Advisory, _ int) string { return a.Code })
}

func TestDecorate_LeavesTaxFieldsUntouched(t *testing.T) {
	engine, advisor := setup(t)

	res, err := engine.CalculateEarnedIncome(domain.EarnedIncomeInput{TaxYear: 2024, AnnualSalary: 150_000_000, MedicalExpenses: 9_000_000})
	require.NoError(t, err)
	before := *res

	advisor.Decorate(res)

	require.NotEmpty(t, res.Advisories)
	after := *res
	after.Advisories = nil
	assert.Equal(t, before, after)
}

func TestDecorate_Earned(t *testing.T) {
	engine, advisor := setup(t)

	res, err := engine.CalculateEarnedIncome(domain.EarnedIncomeInput{TaxYear: 2024, AnnualSalary: 150_000_000})
	require.NoError(t, err)
	advisor.Decorate(res)
	assert.Equal(t, []string{CodeYearEndSettlement, CodeHighSalary}, codes(res.Advisories))

	res, err = engine.CalculateEarnedIncome(domain.EarnedIncomeInput{TaxYear: 2024, AnnualSalary: 50_000_000, MedicalExpenses: 2_000_000})
	require.NoError(t, err)
	advisor.Decorate(res)
	assert.Equal(t, []string{CodeYearEndSettlement, CodeItemizedUsed}, codes(res.Advisories))
}

func TestDecorate_Comprehensive(t *testing.T) {
	engine, advisor := setup(t)

	res, err := engine.CalculateComprehensiveIncome(domain.ComprehensiveIncomeInput{
		TaxYear:        2024,
		InterestIncome: 25_000_000,
		OtherIncome:    2_000_000,
		PrepaidTax:     100_000_000,
	})
	require.NoError(t, err)
	advisor.Decorate(res)

	assert.Equal(t, []string{CodeFilingDeadline, CodeFinancialIncome, CodeOtherIncomeSeparate, CodeRefund}, codes(res.Advisories))
	assert.Contains(t, res.Advisories[0].Message, "2025-05-31")
	assert.Equal(t, domain.AdvisoryFiling, res.Advisories[0].Kind)
}

func TestDecorate_ComprehensiveSmallFinancialIncome(t *testing.T) {
	engine, advisor := setup(t)

	res, err := engine.CalculateComprehensiveIncome(domain.ComprehensiveIncomeInput{
		TaxYear:        2024,
		DividendIncome: 5_000_000,
		BusinessIncome: 60_000_000,
	})
	require.NoError(t, err)
	advisor.Decorate(res)

	assert.Contains(t, codes(res.Advisories), CodeFinancialSeparate)
	assert.Contains(t, codes(res.Advisories), CodeAdditionalPayment)
}

func TestDecorate_CapitalGains(t *testing.T) {
	engine, advisor := setup(t)

	res, err := engine.CalculateCapitalGains(domain.CapitalGainsInput{
		TaxYear:          2024,
		AcquisitionDate:  time.Date(2014, time.March, 15, 0, 0, 0, 0, time.UTC),
		SaleDate:         time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC),
		AcquisitionPrice: 500_000_000,
		SalePrice:        800_000_000,
		MultiHouse:       true,
	})
	require.NoError(t, err)
	advisor.Decorate(res)

	assert.Equal(t, []string{CodePreliminaryFiling, CodeSurcharge, CodeHighAmount, CodeAdditionalPayment}, codes(res.Advisories))
	assert.Contains(t, res.Advisories[0].Message, "2024-08-31")
	assert.Contains(t, res.Advisories[1].Message, "20%")
}

func TestDecorate_ExemptTransfer(t *testing.T) {
	engine, advisor := setup(t)

	res, err := engine.CalculateCapitalGains(domain.CapitalGainsInput{
		TaxYear:             2024,
		AcquisitionDate:     time.Date(2019, time.January, 2, 0, 0, 0, 0, time.UTC),
		SaleDate:            time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		AcquisitionPrice:    400_000_000,
		SalePrice:           600_000_000,
		Residential:         true,
		OneHouseOneFamily:   true,
		ResidenceYears:      5,
		PreviousYearTaxPaid: 500_000,
	})
	require.NoError(t, err)
	advisor.Decorate(res)

	assert.Equal(t, []string{CodeExempt, CodeHighAmount, CodeRefund}, codes(res.Advisories))
}

func TestDecorate_Withholding(t *testing.T) {
	engine, advisor := setup(t)

	tests := []struct {
		name  string
		input domain.WithholdingInput
		want  []string
	}{
		{"earned", domain.WithholdingInput{IncomeType: domain.IncomeTypeEarned, Payment: 3_000_000}, []string{CodeYearEndSettlement}},
		{"earned high salary", domain.WithholdingInput{IncomeType: domain.IncomeTypeEarned, Payment: 12_000_000}, []string{CodeYearEndSettlement, CodeHighSalary}},
		{"other small", domain.WithholdingInput{IncomeType: domain.IncomeTypeOther, Payment: 1_000_000, ApplyBasicDeduction: true}, []string{CodeOtherIncomeSeparate}},
		{"other large", domain.WithholdingInput{IncomeType: domain.IncomeTypeOther, Payment: 150_000_000}, []string{CodeHighAmount}},
		{"interest", domain.WithholdingInput{IncomeType: domain.IncomeTypeInterest, Payment: 1_000_000}, []string{CodeFinancialSeparate}},
		{"business", domain.WithholdingInput{IncomeType: domain.IncomeTypeBusiness, Payment: 1_000_000}, []string{CodeWithholdingCreditable}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := engine.CalculateWithholding(tt.input)
			require.NoError(t, err)
			advisor.Decorate(res)
			assert.Equal(t, tt.want, codes(res.Advisories))
		})
	}
}

func TestDecorate_NilAndUnknown(t *testing.T) {
	_, advisor := setup(t)

	assert.NotPanics(t, func() { advisor.Decorate(nil) })
	assert.Nil(t, advisor.Notices(&domain.Outcome{}))
}

func TestDeadlines(t *testing.T) {
	assert.Equal(t, time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC), FilingDeadline(2024, 5))
	assert.Equal(t, time.Date(2024, time.August, 31, 0, 0, 0, 0, time.UTC),
		PreliminaryDeadline(time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC), 2))
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		PreliminaryDeadline(time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC), 2))
}

func TestNew_UsesTableThresholds(t *testing.T) {
	rt, err := ratetable.MustDefault().Table(0)
	require.NoError(t, err)
	a := New(rt)

	assert.Equal(t, 2, a.preliminaryMonths)
	assert.Equal(t, domain.Won(20_000_000), a.rules.FinancialIncomeThreshold)
}

func TestForStore_PicksResultYear(t *testing.T) {
	engine, _ := setup(t)
	decorator := ForStore(engine.Rates)

	res, err := engine.CalculateWithholding(domain.WithholdingInput{IncomeType: domain.IncomeTypeBusiness, Payment: 1_000_000})
	require.NoError(t, err)
	decorator.Decorate(res)
	assert.Equal(t, []string{CodeWithholdingCreditable}, codes(res.Advisories))

	res.Advisories = nil
	res.TaxYear = 1999
	decorator.Decorate(res)
	assert.Empty(t, res.Advisories)

	None{}.Decorate(res)
	assert.Empty(t, res.Advisories)
}
