package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// WithholdingCalculator computes the tax withheld from one payment
type WithholdingCalculator struct {
	rt *domain.RateTable
}

// NewWithholdingCalculator binds the calculator to one rate table
func NewWithholdingCalculator(rt *domain.RateTable) *WithholdingCalculator {
	return &WithholdingCalculator{rt: rt}
}

// EarnedTableAmount looks up the monthly withholding for a salary and family
// size. Payments above the last row add the excess rate on the overflow.
func EarnedTableAmount(rules domain.EarnedWithholdingRules, monthly domain.Won, family int) domain.Won {
	if len(rules.Table) == 0 || monthly <= 0 {
		return 0
	}
	idx := 0
	for i, row := range rules.Table {
		if monthly < row.From {
			break
		}
		idx = i
	}
	row := rules.Table[idx]
	col := min(max(family, 0), len(row.Amounts)-1)
	amount := row.Amounts[col]
	if idx == len(rules.Table)-1 && monthly > row.From {
		amount += domain.FloorWon((monthly - row.From).Decimal().Mul(rules.ExcessRate))
	}
	return amount
}

// Calculate dispatches on the income type
func (c *WithholdingCalculator) Calculate(input domain.WithholdingInput) (*domain.WithholdingResult, error) {
	v := NewValidator(c.rt)
	in, err := v.ValidateWithholding(input)
	if err != nil {
		return nil, err
	}
	rules := c.rt.Withholding

	res := &domain.WithholdingResult{
		Outcome: domain.Outcome{
			Category:     domain.CategoryWithholding,
			TaxYear:      c.rt.Metadata.TaxYear,
			AppliedRates: []domain.AppliedRate{},
		},
		IncomeType: in.IncomeType,
		Payment:    in.Payment,
		Rate:       decimal.Zero,
		Credits:    []domain.Credit{},
	}
	bd := NewBreakdownBuilder()
	bd.Add("Payment", in.Payment, string(in.IncomeType)+" income")

	switch in.IncomeType {
	case domain.IncomeTypeEarned:
		c.earned(in, res, bd)
	case domain.IncomeTypeBusiness:
		c.flat(in.Payment, rules.BusinessRate, res, bd)
	case domain.IncomeTypeOther:
		taxable := in.Payment
		if in.ApplyBasicDeduction {
			res.BasicDeduction = domain.MinWon(rules.OtherBasicDeduction, in.Payment)
			taxable -= res.BasicDeduction
			bd.Subtract("Basic deduction", res.BasicDeduction, "Flat deduction on other income")
		}
		c.flat(taxable, rules.OtherRate, res, bd)
	case domain.IncomeTypeInterest:
		c.flat(in.Payment, rules.InterestRate, res, bd)
	case domain.IncomeTypeDividend:
		c.flat(in.Payment, rules.DividendRate, res, bd)
	}

	res.LocalTax = localTax(c.rt, res.NationalTax)
	res.TotalTax = res.NationalTax + res.LocalTax
	res.NetPayment = in.Payment - res.TotalTax
	bd.AddFormula("Local income tax", res.LocalTax, "Local surtax on national tax", percent(c.rt.IncomeTax.LocalTaxRate)+" of national tax")
	bd.Add("Total withheld", res.TotalTax, "")
	bd.Add("Net payment", res.NetPayment, "Payment less total withholding")

	var credited domain.Won
	if in.IncomeType == domain.IncomeTypeEarned {
		credited = res.TableAmount - res.NationalTax
	}
	bd.Summarize(domain.BreakdownSummary{
		GrossIncome:      in.Payment,
		TotalDeductions:  res.BasicDeduction,
		TaxableBase:      res.TaxableAmount,
		TaxBeforeCredits: res.NationalTax + credited,
		TotalCredits:     credited,
		FinalTax:         res.TotalTax,
	})
	res.Breakdown = bd.Build()
	res.Warnings = v.Warnings()
	return res, nil
}

func (c *WithholdingCalculator) flat(taxable domain.Won, rate decimal.Decimal, res *domain.WithholdingResult, bd *BreakdownBuilder) {
	res.TaxableAmount = taxable
	res.Rate = rate
	res.NationalTax = domain.FloorWon(taxable.Decimal().Mul(rate))
	if res.NationalTax > 0 {
		res.AppliedRates = append(res.AppliedRates, domain.AppliedRate{
			IncomeRange:    domain.IncomeRange{From: 0, To: taxable},
			MarginalRate:   rate,
			TaxContributed: res.NationalTax,
		})
	}
	bd.AddFormula("National income tax", res.NationalTax, "Flat withholding rate",
		fmt.Sprintf("%s × %s", taxable, percent(rate)))
}

func (c *WithholdingCalculator) earned(in domain.WithholdingInput, res *domain.WithholdingResult, bd *BreakdownBuilder) {
	rules := c.rt.Withholding.Earned
	res.TaxableAmount = in.Payment
	res.FamilyCount = in.Dependents + in.Children
	res.TableAmount = EarnedTableAmount(rules, in.Payment, res.FamilyCount)
	bd.Add("Table amount", res.TableAmount, fmt.Sprintf("Monthly table, %d dependents and children", res.FamilyCount))

	res.Credits = nonZeroCredits(
		domain.Credit{Kind: CreditDependent, Label: fmt.Sprintf("Dependent credit (%d)", in.Dependents), Amount: rules.DependentCredit * domain.Won(in.Dependents)},
		domain.Credit{Kind: CreditChild, Label: fmt.Sprintf("Child credit (%d)", in.Children), Amount: rules.ChildCredit * domain.Won(in.Children)},
	)
	for _, cr := range res.Credits {
		bd.Subtract(cr.Label, cr.Amount, "")
	}
	credits := sumCredits(res.Credits, res.TableAmount)
	res.NationalTax = res.TableAmount - credits
	bd.Add("National income tax", res.NationalTax, "Table amount less credits, not below zero")
}
