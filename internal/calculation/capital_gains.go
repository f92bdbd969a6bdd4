package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

// Capital gains deduction kinds
const (
	KindBasicTransfer    = "basic_transfer"
	KindLongTermHolding  = "long_term_holding"
	KindOneHouseLongHold = "one_house_long_hold"
)

// CapitalGainsCalculator computes the tax on a single asset transfer
type CapitalGainsCalculator struct {
	rt *domain.RateTable
}

// NewCapitalGainsCalculator binds the calculator to one rate table
func NewCapitalGainsCalculator(rt *domain.RateTable) *CapitalGainsCalculator {
	return &CapitalGainsCalculator{rt: rt}
}

// TransferGain is the sale proceeds net of transfer costs less the total
// acquisition basis, not below zero.
func TransferGain(in domain.CapitalGainsInput) domain.Won {
	proceeds := in.SalePrice - in.TransferCosts
	basis := in.AcquisitionPrice + in.AcquisitionCosts + in.ImprovementCosts
	return domain.MaxWon(proceeds-basis, 0)
}

// CheckExemption evaluates the full exemptions. A one-house-one-family sale
// at or below the threshold with enough residence years is exempt, as is a
// transfer explicitly flagged as foreigner-exempt.
func CheckExemption(rules domain.CapitalGainsRules, in domain.CapitalGainsInput) domain.Exemption {
	if in.OneHouseOneFamily && in.SalePrice <= rules.OneHouseExemptionThreshold &&
		in.ResidenceYears >= rules.OneHouseMinResidenceYears {
		return domain.Exemption{
			Exempt: true,
			Reason: domain.ExemptionOneHouseOneFamily,
			Description: fmt.Sprintf("one house per household sold for at most %s after %d+ years of residence",
				rules.OneHouseExemptionThreshold, rules.OneHouseMinResidenceYears),
		}
	}
	if in.ForeignerExempt {
		return domain.Exemption{
			Exempt:      true,
			Reason:      domain.ExemptionForeigner,
			Description: "transfer exempt under the foreigner exemption",
		}
	}
	return domain.Exemption{}
}

// LongTermHoldingRate returns the deduction rate for the holding period. The
// residential table applies only to a residential one-house-one-family asset
// the owner lived in for the minimum residence period.
func LongTermHoldingRate(rules domain.CapitalGainsRules, in domain.CapitalGainsInput, holdingYears int) decimal.Decimal {
	lth := rules.LongTermHolding
	if holdingYears < lth.MinHoldingYears {
		return decimal.Zero
	}
	table := lth.General
	if in.Residential && in.OneHouseOneFamily && in.ResidenceYears >= rules.OneHouseMinResidenceYears {
		table = lth.Residential
	}
	rate := decimal.Zero
	for _, r := range table {
		if holdingYears < r.Years {
			break
		}
		rate = r.Rate
	}
	return rate
}

// surchargeFor evaluates the heavy-tax conditions in fixed precedence; the
// first match wins.
func surchargeFor(rules domain.CapitalGainsRules, in domain.CapitalGainsInput) (domain.SurchargeKind, decimal.Decimal) {
	switch {
	case in.NonResident:
		return domain.SurchargeNonResident, rules.NonResidentRate
	case in.MultiHouse:
		return domain.SurchargeMultiHouse, rules.SurchargePoints
	case in.AdjustmentArea:
		return domain.SurchargeAdjustmentArea, rules.SurchargePoints
	case in.ReconstructionArea:
		return domain.SurchargeReconstructionArea, rules.SurchargePoints
	default:
		return domain.SurchargeNone, decimal.Zero
	}
}

// Calculate walks the transfer from holding period to reconciliation
func (c *CapitalGainsCalculator) Calculate(input domain.CapitalGainsInput) (*domain.CapitalGainsResult, error) {
	v := NewValidator(c.rt)
	in, err := v.ValidateCapitalGains(input)
	if err != nil {
		return nil, err
	}
	rt := c.rt
	rules := rt.CapitalGains
	bd := NewBreakdownBuilder()

	years, months := HoldingPeriod(in.AcquisitionDate, in.SaleDate)
	gain := TransferGain(in)
	bd.Add("Sale price", in.SalePrice, "")
	bd.Subtract("Transfer costs", in.TransferCosts, "")
	bd.Subtract("Acquisition price", in.AcquisitionPrice, "")
	bd.Subtract("Acquisition costs", in.AcquisitionCosts, "")
	bd.Subtract("Improvement costs", in.ImprovementCosts, "")
	bd.AddFormula("Transfer gain", gain, fmt.Sprintf("Held %d years %d months", years, months),
		"(sale price − transfer costs) − (acquisition price + costs + improvements)")

	res := &domain.CapitalGainsResult{
		Outcome: domain.Outcome{
			Category:     domain.CategoryCapitalGains,
			TaxYear:      rt.Metadata.TaxYear,
			AppliedRates: []domain.AppliedRate{},
		},
		HoldingYears:        years,
		HoldingMonths:       months,
		SaleDate:            in.SaleDate,
		TransferGain:        gain,
		Deductions:          []domain.Deduction{},
		Surcharge:           domain.Surcharge{Kind: domain.SurchargeNone, Rate: decimal.Zero},
		LongTermHoldingRate: decimal.Zero,
		MarginalRate:        decimal.Zero,
		EffectiveRate:       decimal.Zero,
		PreviousYearTaxPaid: in.PreviousYearTaxPaid,
	}

	res.Exemption = CheckExemption(rules, in)
	if res.Exemption.Exempt {
		bd.Add("Exemption", 0, res.Exemption.Description)
		bd.Add("Total tax", 0, "")
		res.AdditionalPayment, res.Refund = reconcile(0, in.PreviousYearTaxPaid)
		if res.Refund > 0 {
			bd.Add("Refund", res.Refund, "Previously paid tax is fully refundable")
		}
		bd.Summarize(domain.BreakdownSummary{GrossIncome: gain})
		res.Breakdown = bd.Build()
		res.Warnings = v.Warnings()
		return res, nil
	}

	gainDec := gain.Decimal()
	basic := domain.MinWon(rules.BasicDeduction, gain)
	lthRate := LongTermHoldingRate(rules, in, years)
	lthd := gainDec.Mul(lthRate)
	oneHouse := decimal.Zero
	if in.OneHouseOneFamily && years >= rules.LongHoldOneHouse.MinHoldingYears {
		oneHouse = decimal.Min(gainDec.Mul(rules.LongHoldOneHouse.Rate), rules.LongHoldOneHouse.Cap.Decimal())
	}

	res.BasicDeduction = basic
	res.LongTermHoldingRate = lthRate
	res.LongTermHoldingDeduction = domain.FloorWon(lthd)
	res.OneHouseLongHoldDeduction = domain.FloorWon(oneHouse)
	if basic > 0 {
		res.Deductions = append(res.Deductions, domain.Deduction{Kind: KindBasicTransfer, Label: "Basic transfer deduction", Amount: basic})
	}
	if lthd.IsPositive() {
		res.Deductions = append(res.Deductions, domain.Deduction{Kind: KindLongTermHolding,
			Label: fmt.Sprintf("Long-term holding deduction (%s)", percent(lthRate)), Amount: res.LongTermHoldingDeduction})
	}
	if oneHouse.IsPositive() {
		res.Deductions = append(res.Deductions, domain.Deduction{Kind: KindOneHouseLongHold,
			Label: "One-house long-hold deduction", Amount: res.OneHouseLongHoldDeduction})
	}
	if lthd.IsPositive() {
		bd.AddFormula("Long-term holding deduction", -res.LongTermHoldingDeduction,
			fmt.Sprintf("%d years held", years), fmt.Sprintf("%s × %s", gain, percent(lthRate)))
	}
	bd.Subtract("One-house long-hold deduction", res.OneHouseLongHoldDeduction, "")
	bd.Subtract("Basic transfer deduction", basic, "")

	totalDeductions := basic.Decimal().Add(lthd).Add(oneHouse)
	taxable := decimal.Max(gainDec.Sub(totalDeductions), decimal.Zero)
	taxableWon := domain.FloorWon(taxable)
	bd.Add("Taxable gain", taxableWon, "Transfer gain less deductions, not below zero")

	baseTax, applied := ProgressiveTax(taxable, rt.IncomeTax.Brackets)
	res.BaseTax = baseTax
	bd.AddFormula("Base tax", baseTax, "Progressive rates applied to the taxable gain", quickTaxFormula(taxable, rt.IncomeTax.Brackets))

	kind, rate := surchargeFor(rules, in)
	national := baseTax
	marginal := MarginalRate(taxable, rt.IncomeTax.Brackets)
	switch kind {
	case domain.SurchargeNonResident:
		national = domain.FloorWon(taxable.Mul(rate))
		applied = []domain.AppliedRate{}
		if national > 0 {
			applied = append(applied, domain.AppliedRate{
				IncomeRange:    domain.IncomeRange{From: 0, To: taxableWon},
				MarginalRate:   rate,
				TaxContributed: national,
			})
		}
		marginal = rate
		res.Surcharge = domain.Surcharge{Kind: kind, Rate: rate, Amount: national}
		bd.AddFormula("Non-resident flat tax", national, "Flat rate replaces the progressive brackets",
			fmt.Sprintf("%s × %s", taxableWon, percent(rate)))
	case domain.SurchargeNone:
	default:
		amount := domain.FloorWon(taxable.Mul(rate))
		national = baseTax + amount
		if taxable.IsPositive() {
			marginal = marginal.Add(rate)
		}
		res.Surcharge = domain.Surcharge{Kind: kind, Rate: rate, Amount: amount}
		bd.AddFormula("Heavy-tax surcharge", amount, string(kind),
			fmt.Sprintf("%s × %s", taxableWon, percent(rate)))
	}
	bd.Add("National transfer income tax", national, "")

	local := localTax(rt, national)
	bd.AddFormula("Local income tax", local, "Local surtax on national tax", percent(rt.IncomeTax.LocalTaxRate)+" of national tax")
	total := national + local
	bd.Add("Total tax", total, "")

	res.AdditionalPayment, res.Refund = reconcile(total, in.PreviousYearTaxPaid)
	if in.PreviousYearTaxPaid > 0 {
		bd.Subtract("Previously paid tax", in.PreviousYearTaxPaid, "")
		if res.Refund > 0 {
			bd.Add("Refund", res.Refund, "")
		} else {
			bd.Add("Additional payment", res.AdditionalPayment, "")
		}
	}

	bd.Summarize(domain.BreakdownSummary{
		GrossIncome:      gain,
		TotalDeductions:  domain.FloorWon(totalDeductions),
		TaxableBase:      taxableWon,
		TaxBeforeCredits: national,
		FinalTax:         total,
	})

	res.TaxableAmount = taxableWon
	res.NationalTax = national
	res.LocalTax = local
	res.TotalTax = total
	res.AppliedRates = applied
	res.MarginalRate = marginal
	res.EffectiveRate = domain.Rate(total, gain)
	res.Breakdown = bd.Build()
	res.Warnings = v.Warnings()
	return res, nil
}
