// Package advisory attaches non-binding notices to finished tax results.
// Notices never change any computed amount.
package advisory

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/calculation"
	"github.com/taxlab/ktax/internal/domain"
)

// Advisory codes
const (
	CodeYearEndSettlement     = "year_end_settlement"
	CodeFilingDeadline        = "filing_deadline"
	CodePreliminaryFiling     = "preliminary_filing"
	CodeHighSalary            = "high_salary"
	CodeHighAmount            = "high_amount"
	CodeFinancialIncome       = "financial_income_comprehensive"
	CodeFinancialSeparate     = "financial_income_separate"
	CodeOtherIncomeSeparate   = "other_income_separate_option"
	CodeRefund                = "refund_due"
	CodeAdditionalPayment     = "additional_payment_due"
	CodeItemizedUsed          = "itemized_used"
	CodeItemizedBelowStd      = "itemized_below_standard"
	CodeExempt                = "exempt_transfer"
	CodeSurcharge             = "heavy_tax_surcharge"
	CodeWithholdingCreditable = "withholding_creditable"
)

// Decorator appends advisories to a result in place
type Decorator interface {
	Decorate(res domain.Result)
}

// Advisor is the default Decorator, driven by the advisory thresholds of a
// rate table.
type Advisor struct {
	rules             domain.AdvisoryRules
	preliminaryMonths int
}

// New creates an advisor for one rate table
func New(rt *domain.RateTable) *Advisor {
	return &Advisor{
		rules:             rt.Advisory,
		preliminaryMonths: rt.CapitalGains.PreliminaryFilingMonths,
	}
}

// Decorate appends the notices for res. Unknown result types are left alone.
func (a *Advisor) Decorate(res domain.Result) {
	if res == nil {
		return
	}
	notices := a.Notices(res)
	if len(notices) == 0 {
		return
	}
	base := res.Base()
	base.Advisories = append(base.Advisories, notices...)
}

// Notices computes the advisories for res without attaching them
func (a *Advisor) Notices(res domain.Result) []domain.Advisory {
	switch r := res.(type) {
	case *domain.EarnedIncomeResult:
		return a.earned(r)
	case *domain.ComprehensiveIncomeResult:
		return a.comprehensive(r)
	case *domain.CapitalGainsResult:
		return a.capitalGains(r)
	case *domain.WithholdingResult:
		return a.withholding(r)
	default:
		return nil
	}
}

// FilingDeadline is the last day of the filing month in the year after taxYear
func FilingDeadline(taxYear, filingMonth int) time.Time {
	return endOfMonth(taxYear+1, time.Month(filingMonth))
}

// PreliminaryDeadline is the last day of the month falling months after the
// sale month.
func PreliminaryDeadline(sale time.Time, months int) time.Time {
	return endOfMonth(sale.Year(), sale.Month()+time.Month(months))
}

func endOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

func notice(kind domain.AdvisoryKind, code, format string, args ...any) domain.Advisory {
	return domain.Advisory{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func (a *Advisor) earned(r *domain.EarnedIncomeResult) []domain.Advisory {
	out := []domain.Advisory{
		notice(domain.AdvisoryInfo, CodeYearEndSettlement,
			"Settled through the employer's year-end settlement; a May return is needed only with other income"),
	}
	monthly := r.GrossSalary / 12
	if a.rules.HighMonthlySalary > 0 && monthly > a.rules.HighMonthlySalary {
		out = append(out, notice(domain.AdvisoryAlert, CodeHighSalary,
			"Average monthly salary %s exceeds %s; review withholding to avoid a large settlement balance",
			monthly, a.rules.HighMonthlySalary))
	}
	out = append(out, itemizedHint(r.UsedItemized, r.ItemizedTotal, r.SpecialDeduction)...)
	return out
}

func (a *Advisor) comprehensive(r *domain.ComprehensiveIncomeResult) []domain.Advisory {
	out := []domain.Advisory{
		notice(domain.AdvisoryFiling, CodeFilingDeadline, "Comprehensive income return due by %s",
			FilingDeadline(r.TaxYear, a.rules.FilingMonth).Format(time.DateOnly)),
	}

	financial := lo.SumBy(lo.Filter(r.IncomeSources, func(s domain.IncomeSource, _ int) bool {
		return s.Kind == calculation.SourceInterest || s.Kind == calculation.SourceDividend
	}), func(s domain.IncomeSource) domain.Won { return s.Gross })
	switch {
	case financial > a.rules.FinancialIncomeThreshold:
		out = append(out, notice(domain.AdvisoryInfo, CodeFinancialIncome,
			"Financial income %s exceeds %s and is taxed comprehensively", financial, a.rules.FinancialIncomeThreshold))
	case financial > 0:
		out = append(out, notice(domain.AdvisoryInfo, CodeFinancialSeparate,
			"Financial income %s is within %s and may be settled by separate withholding", financial, a.rules.FinancialIncomeThreshold))
	}

	if other, ok := lo.Find(r.IncomeSources, func(s domain.IncomeSource) bool { return s.Kind == calculation.SourceOther }); ok &&
		other.Net > 0 && other.Net <= a.rules.OtherIncomeSeparateLimit {
		out = append(out, notice(domain.AdvisoryInfo, CodeOtherIncomeSeparate,
			"Other income of %s after deductions is within %s; separate taxation at source may be elected",
			other.Net, a.rules.OtherIncomeSeparateLimit))
	}
	out = append(out, settlement(r.AdditionalPayment, r.Refund)...)
	out = append(out, itemizedHint(r.UsedItemized, 0, r.SpecialDeduction)...)
	return out
}

func (a *Advisor) capitalGains(r *domain.CapitalGainsResult) []domain.Advisory {
	var out []domain.Advisory
	if r.Exemption.Exempt {
		out = append(out, notice(domain.AdvisoryInfo, CodeExempt, "Transfer is exempt: %s", r.Exemption.Description))
	} else if !r.SaleDate.IsZero() {
		out = append(out, notice(domain.AdvisoryFiling, CodePreliminaryFiling,
			"Preliminary transfer income return due by %s",
			PreliminaryDeadline(r.SaleDate, a.preliminaryMonths).Format(time.DateOnly)))
	}
	if r.Surcharge.Kind != domain.SurchargeNone && r.Surcharge.Kind != "" {
		out = append(out, notice(domain.AdvisoryAlert, CodeSurcharge,
			"Heavy-tax rule %s applied at %s", r.Surcharge.Kind, percent(r.Surcharge.Rate)))
	}
	if a.rules.HighPayment > 0 && r.TransferGain >= a.rules.HighPayment {
		out = append(out, notice(domain.AdvisoryAlert, CodeHighAmount,
			"Transfer gain %s is at least %s; professional review is recommended", r.TransferGain, a.rules.HighPayment))
	}
	out = append(out, settlement(r.AdditionalPayment, r.Refund)...)
	return out
}

func (a *Advisor) withholding(r *domain.WithholdingResult) []domain.Advisory {
	var out []domain.Advisory
	switch r.IncomeType {
	case domain.IncomeTypeEarned:
		out = append(out, notice(domain.AdvisoryInfo, CodeYearEndSettlement,
			"Monthly withholding is provisional and is settled at year end"))
		if a.rules.HighMonthlySalary > 0 && r.Payment > a.rules.HighMonthlySalary {
			out = append(out, notice(domain.AdvisoryAlert, CodeHighSalary,
				"Monthly salary %s exceeds %s", r.Payment, a.rules.HighMonthlySalary))
		}
		return out
	case domain.IncomeTypeOther:
		if net := r.Payment - r.BasicDeduction; net > 0 && net <= a.rules.OtherIncomeSeparateLimit {
			out = append(out, notice(domain.AdvisoryInfo, CodeOtherIncomeSeparate,
				"Other income within %s may be left to separate taxation; withholding is then final",
				a.rules.OtherIncomeSeparateLimit))
		}
	case domain.IncomeTypeInterest, domain.IncomeTypeDividend:
		out = append(out, notice(domain.AdvisoryInfo, CodeFinancialSeparate,
			"Withholding is final unless annual financial income exceeds %s", a.rules.FinancialIncomeThreshold))
	case domain.IncomeTypeBusiness:
		out = append(out, notice(domain.AdvisoryInfo, CodeWithholdingCreditable,
			"Withheld tax is credited against the annual comprehensive income return"))
	}
	if a.rules.HighPayment > 0 && r.Payment >= a.rules.HighPayment {
		out = append(out, notice(domain.AdvisoryAlert, CodeHighAmount,
			"Payment %s is at least %s", r.Payment, a.rules.HighPayment))
	}
	return out
}

func settlement(additional, refund domain.Won) []domain.Advisory {
	switch {
	case refund > 0:
		return []domain.Advisory{notice(domain.AdvisoryInfo, CodeRefund, "Refund of %s is due", refund)}
	case additional > 0:
		return []domain.Advisory{notice(domain.AdvisoryFiling, CodeAdditionalPayment, "Additional payment of %s is due", additional)}
	default:
		return nil
	}
}

func itemizedHint(usedItemized bool, itemized, special domain.Won) []domain.Advisory {
	if usedItemized {
		return []domain.Advisory{notice(domain.AdvisoryInfo, CodeItemizedUsed,
			"Itemized deductions of %s were used; keep receipts for review", special)}
	}
	if itemized > 0 {
		return []domain.Advisory{notice(domain.AdvisoryInfo, CodeItemizedBelowStd,
			"Itemized deductions of %s are below the standard deduction of %s", itemized, special)}
	}
	return nil
}

func percent(rate decimal.Decimal) string {
	return rate.Shift(2).String() + "%"
}
