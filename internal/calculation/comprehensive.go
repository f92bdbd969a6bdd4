package calculation

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// Income source kinds of a comprehensive return
const (
	SourceInterest = "interest"
	SourceDividend = "dividend"
	SourceBusiness = "business"
	SourceRental   = "rental"
	SourceEarned   = "earned"
	SourcePension  = "pension"
	SourceOther    = "other"
)

// ComprehensiveIncomeCalculator computes the annual comprehensive-income return
type ComprehensiveIncomeCalculator struct {
	rt *domain.RateTable
}

// NewComprehensiveIncomeCalculator binds the calculator to one rate table
func NewComprehensiveIncomeCalculator(rt *domain.RateTable) *ComprehensiveIncomeCalculator {
	return &ComprehensiveIncomeCalculator{rt: rt}
}

type nettedSource struct {
	source domain.IncomeSource
	net    decimal.Decimal
}

func netted(kind, label string, gross domain.Won, deduction decimal.Decimal) nettedSource {
	deduction = decimal.Min(decimal.Max(deduction, decimal.Zero), gross.Decimal())
	net := gross.Decimal().Sub(deduction)
	return nettedSource{
		source: domain.IncomeSource{
			Kind:      kind,
			Label:     label,
			Gross:     gross,
			Deduction: domain.FloorWon(deduction),
			Net:       domain.FloorWon(net),
		},
		net: net,
	}
}

// OtherIncomeDeduction is the larger of the flat basic deduction and the
// capped notional expense, never more than the income itself.
func OtherIncomeDeduction(rules domain.ComprehensiveRules, income domain.Won) decimal.Decimal {
	if income <= 0 {
		return decimal.Zero
	}
	notional := decimal.Min(income.Decimal().Mul(rules.OtherExpenseRate), rules.OtherExpenseCap.Decimal())
	d := decimal.Max(rules.OtherBasicDeduction.Decimal(), notional)
	return decimal.Min(d, income.Decimal())
}

// EarnedIncomeCredit is the two-tier credit on the tax attributable to
// earned income.
func EarnedIncomeCredit(rules domain.EarnedIncomeCreditRules, attributable decimal.Decimal) domain.Won {
	if !attributable.IsPositive() {
		return 0
	}
	threshold := rules.Threshold.Decimal()
	if attributable.LessThanOrEqual(threshold) {
		return domain.FloorWon(attributable.Mul(rules.LowRate))
	}
	return domain.FloorWon(rules.Base.Decimal().Add(attributable.Sub(threshold).Mul(rules.HighRate)))
}

// Calculate nets each income category, applies the shared deduction and
// credit rules and reconciles against prepaid tax.
func (c *ComprehensiveIncomeCalculator) Calculate(input domain.ComprehensiveIncomeInput) (*domain.ComprehensiveIncomeResult, error) {
	v := NewValidator(c.rt)
	in, err := v.ValidateComprehensiveIncome(input)
	if err != nil {
		return nil, err
	}
	rt := c.rt
	bd := NewBreakdownBuilder()

	pensionDed, _ := rt.Comprehensive.PensionDeduction.Evaluate(in.PensionIncome.Decimal())
	earned := netted(SourceEarned, "Earned income", in.EarnedIncome, EarnedIncomeDeduction(rt, in.EarnedIncome))
	all := []nettedSource{
		netted(SourceInterest, "Interest income", in.InterestIncome, decimal.Zero),
		netted(SourceDividend, "Dividend income", in.DividendIncome, decimal.Zero),
		netted(SourceBusiness, "Business income", in.BusinessIncome, in.BusinessExpenses.Decimal()),
		netted(SourceRental, "Rental income", in.RentalIncome, in.RentalExpenses.Decimal()),
		earned,
		netted(SourcePension, "Pension income", in.PensionIncome, pensionDed),
		netted(SourceOther, "Other income", in.OtherIncome, OtherIncomeDeduction(rt.Comprehensive, in.OtherIncome)),
	}
	present := lo.Filter(all, func(s nettedSource, _ int) bool { return s.source.Gross > 0 })
	sources := lo.Map(present, func(s nettedSource, _ int) domain.IncomeSource { return s.source })

	gross := decimal.Zero
	for _, s := range present {
		gross = gross.Add(s.net)
		bd.AddFormula(s.source.Label, s.source.Net, "Net of category deductions",
			fmt.Sprintf("%s − %s", s.source.Gross, s.source.Deduction))
	}
	grossWon := domain.FloorWon(gross)
	bd.Add("Gross total income", grossWon, "Sum of net category incomes")

	personal, personalParts := personalDeduction(rt.Personal, in.Dependents, in.DisabledCount, in.ElderlyCount)
	bd.Subtract("Personal deduction", personal, "Taxpayer, dependents, disabled and elderly persons")

	pensionContribution := in.PensionContributions
	bd.Subtract("Pension contribution deduction", pensionContribution, "Public pension contributions")

	itemizedParts, itemized := itemizedDeductions(rt.Itemized, itemizedInput{
		Base:       grossWon,
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

	totalDeductions := personal.Decimal().Add(pensionContribution.Decimal()).Add(special)
	taxable := decimal.Max(gross.Sub(totalDeductions), decimal.Zero)
	taxableWon := domain.FloorWon(taxable)
	bd.Add("Taxable base", taxableWon, "Gross total income less deductions, not below zero")

	calculated, applied := ProgressiveTax(taxable, rt.IncomeTax.Brackets)
	bd.AddFormula("Calculated tax", calculated, "Progressive rates applied to the taxable base", quickTaxFormula(taxable, rt.IncomeTax.Brackets))

	// The earned-income credit applies to the share of tax that earned
	// income contributes to the gross total.
	attributable := decimal.Zero
	if gross.IsPositive() && earned.net.IsPositive() {
		attributable = calculated.Decimal().Mul(earned.net).Div(gross)
	}
	credits := nonZeroCredits(
		domain.Credit{Kind: CreditChild, Label: fmt.Sprintf("Child credit (%d)", in.Children), Amount: rt.Credits.PerChild * domain.Won(in.Children)},
		domain.Credit{Kind: CreditEarnedIncome, Label: "Earned income credit", Amount: EarnedIncomeCredit(rt.Credits.EarnedIncome, attributable)},
		domain.Credit{Kind: CreditPensionSavings, Label: "Pension savings credit", Amount: contributionCredit(rt.Credits.PensionSavings, in.PensionSavings)},
	)
	for _, cr := range credits {
		bd.Subtract(cr.Label, cr.Amount, "")
	}
	totalCredits := sumCredits(credits, calculated)
	national := calculated - totalCredits
	bd.Add("National income tax", national, "Calculated tax less credits, not below zero")

	local := localTax(rt, national)
	bd.AddFormula("Local income tax", local, "Local surtax on national tax", percent(rt.IncomeTax.LocalTaxRate)+" of national tax")
	total := national + local
	bd.Add("Total tax", total, "")

	additional, refund := reconcile(total, in.PrepaidTax)
	if in.PrepaidTax > 0 {
		bd.Subtract("Prepaid tax", in.PrepaidTax, "Interim prepayment and withholding")
		if refund > 0 {
			bd.Add("Refund", refund, "Prepaid tax exceeds total tax")
		} else {
			bd.Add("Additional payment", additional, "Total tax less prepaid tax")
		}
	}

	deductions := append([]domain.Deduction{}, personalParts...)
	if pensionContribution > 0 {
		deductions = append(deductions, domain.Deduction{Kind: KindPensionContribution, Label: "Pension contribution deduction", Amount: pensionContribution})
	}
	deductions = append(deductions, specialParts...)

	bd.Summarize(domain.BreakdownSummary{
		GrossIncome:      grossWon,
		TotalDeductions:  domain.FloorWon(totalDeductions),
		TaxableBase:      taxableWon,
		TaxBeforeCredits: calculated,
		TotalCredits:     totalCredits,
		FinalTax:         total,
	})

	return &domain.ComprehensiveIncomeResult{
		Outcome: domain.Outcome{
			Category:      domain.CategoryComprehensiveIncome,
			TaxYear:       rt.Metadata.TaxYear,
			TaxableAmount: taxableWon,
			NationalTax:   national,
			LocalTax:      local,
			TotalTax:      total,
			AppliedRates:  applied,
			Breakdown:     bd.Build(),
			Warnings:      v.Warnings(),
		},
		IncomeSources:     sources,
		GrossIncome:       grossWon,
		PersonalDeduction: personal,
		PensionDeduction:  pensionContribution,
		SpecialDeduction:  specialWon,
		UsedItemized:      usedItemized,
		Deductions:        deductions,
		CalculatedTax:     calculated,
		Credits:           credits,
		TotalCredits:      totalCredits,
		MarginalRate:      MarginalRate(taxable, rt.IncomeTax.Brackets),
		EffectiveRate:     domain.Rate(total, grossWon),
		PrepaidTax:        in.PrepaidTax,
		AdditionalPayment: additional,
		Refund:            refund,
	}, nil
}

// reconcile splits the difference between tax due and tax already paid
func reconcile(total, paid domain.Won) (additional, refund domain.Won) {
	return domain.MaxWon(total-paid, 0), domain.MaxWon(paid-total, 0)
}
