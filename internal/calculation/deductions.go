package calculation

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// Deduction kinds shared by the income calculators
const (
	KindEarnedIncome        = "earned_income"
	KindPersonal            = "personal_basic"
	KindDisabled            = "personal_disabled"
	KindElderly             = "personal_elderly"
	KindMedical             = "medical"
	KindEducation           = "education"
	KindDonation            = "donation"
	KindCreditCard          = "credit_card"
	KindStandard            = "standard"
	KindPensionContribution = "pension_contribution"
)

// personalDeduction sums the flat per-person amounts. The taxpayer always
// counts as one person.
func personalDeduction(rules domain.PersonalDeductionRules, dependents, disabled, elderly int) (domain.Won, []domain.Deduction) {
	parts := []domain.Deduction{
		{Kind: KindPersonal, Label: fmt.Sprintf("Basic deduction (%d persons)", dependents+1), Amount: rules.Basic * domain.Won(dependents+1)},
		{Kind: KindDisabled, Label: fmt.Sprintf("Disabled person deduction (%d)", disabled), Amount: rules.Disabled * domain.Won(disabled)},
		{Kind: KindElderly, Label: fmt.Sprintf("Elderly person deduction (%d)", elderly), Amount: rules.Elderly * domain.Won(elderly)},
	}
	parts = lo.Filter(parts, func(d domain.Deduction, _ int) bool { return d.Amount > 0 })
	return lo.SumBy(parts, func(d domain.Deduction) domain.Won { return d.Amount }), parts
}

// itemizedInput carries the expense claims of either income calculator.
// Base is the income the percentage floors and limits are measured against.
type itemizedInput struct {
	Base       domain.Won
	Dependents int
	Medical    domain.Won
	Education  domain.Won
	Donations  domain.Won
	CardUsage  domain.Won
}

// itemizedDeductions returns the non-zero components and their exact total.
// Education, donation and card amounts above their statutory limits are
// clamped through v.
func itemizedDeductions(rules domain.ItemizedDeductionRules, in itemizedInput, v *Validator) ([]domain.Deduction, decimal.Decimal) {
	base := in.Base.Decimal()

	medical := in.Medical.Decimal().Sub(base.Mul(rules.MedicalFloorRate))
	medical = decimal.Max(medical, decimal.Zero)

	educationCap := rules.EducationCapPerDependent * domain.Won(max(1, in.Dependents))
	education := v.Clamp("education_expenses", in.Education, educationCap,
		fmt.Sprintf("education expenses limited to %s", educationCap)).Decimal()

	donationLimit := domain.FloorWon(base.Mul(rules.DonationLimitRate))
	donation := v.Clamp("donations", in.Donations, donationLimit,
		fmt.Sprintf("donations limited to %s of income", percent(rules.DonationLimitRate))).Decimal()

	card := in.CardUsage.Decimal().Sub(base.Mul(rules.CardFloorRate))
	card = decimal.Max(card, decimal.Zero).Mul(rules.CardDeductionRate)
	if card.GreaterThan(rules.CardDeductionCap.Decimal()) {
		v.Clamp("credit_card_deduction", domain.FloorWon(card), rules.CardDeductionCap,
			fmt.Sprintf("credit card deduction limited to %s", rules.CardDeductionCap))
		card = rules.CardDeductionCap.Decimal()
	}

	parts := []struct {
		kind, label string
		amount      decimal.Decimal
	}{
		{KindMedical, "Medical expenses above " + percent(rules.MedicalFloorRate) + " of income", medical},
		{KindEducation, "Education expenses", education},
		{KindDonation, "Donations", donation},
		{KindCreditCard, "Credit card usage above " + percent(rules.CardFloorRate) + " of income", card},
	}
	var out []domain.Deduction
	total := decimal.Zero
	for _, p := range parts {
		if !p.amount.IsPositive() {
			continue
		}
		total = total.Add(p.amount)
		out = append(out, domain.Deduction{Kind: p.kind, Label: p.label, Amount: domain.FloorWon(p.amount)})
	}
	return out, total
}

// specialDeduction picks the larger of the itemized total and the standard
// deduction.
func specialDeduction(rules domain.ItemizedDeductionRules, parts []domain.Deduction, itemized decimal.Decimal) ([]domain.Deduction, decimal.Decimal, bool) {
	standard := rules.StandardDeduction.Decimal()
	if itemized.GreaterThan(standard) {
		return parts, itemized, true
	}
	return []domain.Deduction{{Kind: KindStandard, Label: "Standard deduction", Amount: rules.StandardDeduction}}, standard, false
}

// contributionCredit converts an already-capped contribution into a credit
func contributionCredit(rules domain.ContributionCredit, contribution domain.Won) domain.Won {
	return domain.FloorWon(domain.MinWon(contribution, rules.ContributionCap).Decimal().Mul(rules.Rate))
}

// sumCredits totals credits and caps them at the tax they reduce
func sumCredits(credits []domain.Credit, tax domain.Won) domain.Won {
	total := lo.SumBy(credits, func(c domain.Credit) domain.Won { return c.Amount })
	return domain.MinWon(total, tax)
}

// nonZeroCredits drops credits that came to nothing
func nonZeroCredits(credits ...domain.Credit) []domain.Credit {
	out := lo.Filter(credits, func(c domain.Credit, _ int) bool { return c.Amount > 0 })
	if out == nil {
		return []domain.Credit{}
	}
	return out
}
