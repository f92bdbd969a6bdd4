package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// Credit kinds
const (
	CreditPensionSavings = "pension_savings"
	CreditHousingFund    = "housing_fund"
	CreditChild          = "child"
	CreditEarnedIncome   = "earned_income"
	CreditDependent      = "dependent"
)

// EarnedIncomeCalculator performs the year-end settlement of a wage earner
type EarnedIncomeCalculator struct {
	rt *domain.RateTable
}

// NewEarnedIncomeCalculator binds the calculator to one rate table
func NewEarnedIncomeCalculator(rt *domain.RateTable) *EarnedIncomeCalculator {
	return &EarnedIncomeCalculator{rt: rt}
}

// EarnedIncomeDeduction evaluates the tiered earned-income deduction for a
// gross salary. The value is exact; callers floor it only for reporting.
func EarnedIncomeDeduction(rt *domain.RateTable, salary domain.Won) decimal.Decimal {
	d, _ := rt.EarnedIncome.Deduction.Evaluate(salary.Decimal())
	return d
}

// Calculate runs the settlement pipeline
func (c *EarnedIncomeCalculator) Calculate(input domain.EarnedIncomeInput) (*domain.EarnedIncomeResult, error) {
	v := NewValidator(c.rt)
	in, err := v.ValidateEarnedIncome(input)
	if err != nil {
		return nil, err
	}
	rt := c.rt
	salary := in.AnnualSalary.Decimal()
	bd := NewBreakdownBuilder()
	bd.Add("Gross salary", in.AnnualSalary, "Annual earned income before deductions")

	// 1. earned-income deduction
	earnedDed, tier := rt.EarnedIncome.Deduction.Evaluate(salary)
	earnedDedWon := domain.FloorWon(earnedDed)
	bd.AddFormula("Earned income deduction", -earnedDedWon, "Tiered deduction on gross salary", formulaText(rt.EarnedIncome.Deduction, tier, in.AnnualSalary))

	// 2. personal deduction
	personal, personalParts := personalDeduction(rt.Personal, in.Dependents, in.DisabledCount, in.ElderlyCount)
	bd.Subtract("Personal deduction", personal, "Taxpayer, dependents, disabled and elderly persons")

	// 3. itemized vs standard
	itemizedParts, itemized := itemizedDeductions(rt.Itemized, itemizedInput{
		Base:       in.AnnualSalary,
		Dependents: in.Dependents,
		Medical:    in.MedicalExpenses,
		Education:  in.EducationExpenses,
		Donations:  in.Donations,
		CardUsage:  in.CreditCardUsage,
	}, v)
	specialParts, special, usedItemized := specialDeduction(rt.Itemized, itemizedParts, itemized)
	specialWon := domain.FloorWon(special)
	if usedItemized {
		bd.Subtract("Itemized deductions", specialWon, "Itemized total exceeds the standard deduction")
	} else {
		bd.Subtract("Standard deduction", specialWon, "Standard deduction exceeds itemized total")
	}

	// 4. taxable base
	taxable := decimal.Max(salary.Sub(earnedDed).Sub(personal.Decimal()).Sub(special), decimal.Zero)
	taxableWon := domain.FloorWon(taxable)
	bd.Add("Taxable base", taxableWon, "Salary less all deductions, not below zero")

	// 5. progressive tax
	calculated, applied := ProgressiveTax(taxable, rt.IncomeTax.Brackets)
	bd.AddFormula("Calculated tax", calculated, "Progressive rates applied to the taxable base", quickTaxFormula(taxable, rt.IncomeTax.Brackets))

	// 6. credits
	credits := nonZeroCredits(
		domain.Credit{Kind: CreditPensionSavings, Label: "Pension savings credit", Amount: contributionCredit(rt.Credits.PensionSavings, in.PensionSavings)},
		domain.Credit{Kind: CreditHousingFund, Label: "Housing fund credit", Amount: contributionCredit(rt.Credits.HousingFund, in.HousingFund)},
	)
	for _, cr := range credits {
		bd.Subtract(cr.Label, cr.Amount, "")
	}
	totalCredits := sumCredits(credits, calculated)
	national := calculated - totalCredits
	bd.Add("National income tax", national, "Calculated tax less credits, not below zero")

	// 7. local tax
	local := localTax(rt, national)
	bd.AddFormula("Local income tax", local, "Local surtax on national tax", percent(rt.IncomeTax.LocalTaxRate)+" of national tax")
	total := national + local
	bd.Add("Total tax", total, "")

	// 8. net monthly estimate
	takeHome := in.AnnualSalary - total - in.NationalPension - in.HealthInsurance
	monthly := domain.MaxWon(domain.FloorWon(takeHome.Decimal().Div(decimal.NewFromInt(12))), 0)

	deductions := []domain.Deduction{{Kind: KindEarnedIncome, Label: "Earned income deduction", Amount: earnedDedWon}}
	deductions = append(deductions, personalParts...)
	deductions = append(deductions, specialParts...)

	bd.Summarize(domain.BreakdownSummary{
		GrossIncome:      in.AnnualSalary,
		TotalDeductions:  domain.FloorWon(earnedDed.Add(personal.Decimal()).Add(special)),
		TaxableBase:      taxableWon,
		TaxBeforeCredits: calculated,
		TotalCredits:     totalCredits,
		FinalTax:         total,
	})

	return &domain.EarnedIncomeResult{
		Outcome: domain.Outcome{
			Category:      domain.CategoryEarnedIncome,
			TaxYear:       rt.Metadata.TaxYear,
			TaxableAmount: taxableWon,
			NationalTax:   national,
			LocalTax:      local,
			TotalTax:      total,
			AppliedRates:  applied,
			Breakdown:     bd.Build(),
			Warnings:      v.Warnings(),
		},
		GrossSalary:           in.AnnualSalary,
		EarnedIncomeDeduction: earnedDedWon,
		PersonalDeduction:     personal,
		SpecialDeduction:      specialWon,
		UsedItemized:          usedItemized,
		ItemizedTotal:         domain.FloorWon(itemized),
		Deductions:            deductions,
		CalculatedTax:         calculated,
		Credits:               credits,
		TotalCredits:          totalCredits,
		NetMonthlyEstimate:    monthly,
		MarginalRate:          MarginalRate(taxable, rt.IncomeTax.Brackets),
		EffectiveRate:         domain.Rate(total, in.AnnualSalary),
	}, nil
}
