package domain

import (
	"github.com/shopspring/decimal"
)

// RateTable contains every statutory constant for one tax year.
// It is loaded from a YAML document and never mutated after validation.
type RateTable struct {
	Metadata      RateTableMetadata      `yaml:"metadata" json:"metadata"`
	IncomeTax     IncomeTaxRules         `yaml:"income_tax" json:"income_tax"`
	EarnedIncome  EarnedIncomeRules      `yaml:"earned_income" json:"earned_income"`
	Personal      PersonalDeductionRules `yaml:"personal_deduction" json:"personal_deduction"`
	Itemized      ItemizedDeductionRules `yaml:"itemized_deduction" json:"itemized_deduction"`
	Credits       TaxCreditRules         `yaml:"tax_credits" json:"tax_credits"`
	Comprehensive ComprehensiveRules     `yaml:"comprehensive" json:"comprehensive"`
	CapitalGains  CapitalGainsRules      `yaml:"capital_gains" json:"capital_gains"`
	Withholding   WithholdingRules       `yaml:"withholding" json:"withholding"`
	Advisory      AdvisoryRules          `yaml:"advisory" json:"advisory"`
	Limits        InputLimits            `yaml:"input_limits" json:"input_limits"`
}

// RateTableMetadata describes the table version
type RateTableMetadata struct {
	TaxYear     int    `yaml:"tax_year" json:"tax_year"`
	LastUpdated string `yaml:"last_updated" json:"last_updated"`
	Description string `yaml:"description" json:"description"`
}

// Bracket is one marginal-rate slice. It covers (Min, Max]; a nil Max is the
// unbounded top bracket. ProgressiveDeduction is the constant that makes
// income*Rate - ProgressiveDeduction equal the slice sum for any income in
// the bracket.
type Bracket struct {
	Min                  Won             `yaml:"min" json:"min"`
	Max                  *Won            `yaml:"max,omitempty" json:"max,omitempty"`
	Rate                 decimal.Decimal `yaml:"rate" json:"rate"`
	ProgressiveDeduction Won             `yaml:"progressive_deduction" json:"progressive_deduction"`
}

// Unbounded reports whether this is the top bracket.
func (b Bracket) Unbounded() bool { return b.Max == nil }

// Contains reports whether income falls in (Min, Max]. Zero belongs to the
// bracket starting at zero.
func (b Bracket) Contains(income decimal.Decimal) bool {
	lower := b.Min.Decimal()
	if income.LessThan(lower) || (income.Equal(lower) && b.Min != 0) {
		return false
	}
	return b.Max == nil || income.LessThanOrEqual(b.Max.Decimal())
}

// IncomeTaxRules holds the basic progressive rates shared by every category
type IncomeTaxRules struct {
	Brackets     []Bracket       `yaml:"brackets" json:"brackets"`
	LocalTaxRate decimal.Decimal `yaml:"local_tax_rate" json:"local_tax_rate"`
}

// FormulaTier evaluates to Base + Rate*(x - Over) for x up to UpTo.
// A flat percentage tier has Base and Over set to zero.
type FormulaTier struct {
	UpTo *Won            `yaml:"up_to,omitempty" json:"up_to,omitempty"`
	Base Won             `yaml:"base" json:"base"`
	Rate decimal.Decimal `yaml:"rate" json:"rate"`
	Over Won             `yaml:"over" json:"over"`
}

// TieredFormula is an ordered set of tiers with an optional overall cap.
type TieredFormula struct {
	Tiers []FormulaTier `yaml:"tiers" json:"tiers"`
	Cap   *Won          `yaml:"cap,omitempty" json:"cap,omitempty"`
}

// Evaluate returns the formula value for x (not floored) and the index of
// the tier used. Negative x evaluates to zero.
func (f TieredFormula) Evaluate(x decimal.Decimal) (decimal.Decimal, int) {
	if !x.IsPositive() || len(f.Tiers) == 0 {
		return decimal.Zero, 0
	}
	idx := len(f.Tiers) - 1
	for i, t := range f.Tiers {
		if t.UpTo == nil || x.LessThanOrEqual(t.UpTo.Decimal()) {
			idx = i
			break
		}
	}
	value := f.Tiers[idx].At(x)
	if f.Cap != nil && value.GreaterThan(f.Cap.Decimal()) {
		value = f.Cap.Decimal()
	}
	if value.GreaterThan(x) {
		value = x
	}
	return value, idx
}

// At evaluates the tier expression without range checks
func (t FormulaTier) At(x decimal.Decimal) decimal.Decimal {
	return t.Base.Decimal().Add(t.Rate.Mul(x.Sub(t.Over.Decimal())))
}

// EarnedIncomeRules holds the earned-income deduction formula
type EarnedIncomeRules struct {
	Deduction TieredFormula `yaml:"deduction" json:"deduction"`
}

// PersonalDeductionRules holds flat per-person amounts
type PersonalDeductionRules struct {
	Basic    Won `yaml:"basic" json:"basic"`
	Disabled Won `yaml:"disabled" json:"disabled"`
	Elderly  Won `yaml:"elderly" json:"elderly"`
}

// ItemizedDeductionRules holds the itemizable components and the standard
// deduction that replaces them when larger.
type ItemizedDeductionRules struct {
	StandardDeduction        Won             `yaml:"standard_deduction" json:"standard_deduction"`
	MedicalFloorRate         decimal.Decimal `yaml:"medical_floor_rate" json:"medical_floor_rate"`
	EducationCapPerDependent Won             `yaml:"education_cap_per_dependent" json:"education_cap_per_dependent"`
	DonationLimitRate        decimal.Decimal `yaml:"donation_limit_rate" json:"donation_limit_rate"`
	CardFloorRate            decimal.Decimal `yaml:"card_floor_rate" json:"card_floor_rate"`
	CardDeductionRate        decimal.Decimal `yaml:"card_deduction_rate" json:"card_deduction_rate"`
	CardDeductionCap         Won             `yaml:"card_deduction_cap" json:"card_deduction_cap"`
}

// ContributionCredit converts a contribution into a credit at Rate, with the
// contribution capped at ContributionCap.
type ContributionCredit struct {
	Rate            decimal.Decimal `yaml:"rate" json:"rate"`
	ContributionCap Won             `yaml:"contribution_cap" json:"contribution_cap"`
}

// EarnedIncomeCreditRules is the two-tier earned-income tax credit
type EarnedIncomeCreditRules struct {
	LowRate   decimal.Decimal `yaml:"low_rate" json:"low_rate"`
	Threshold Won             `yaml:"threshold" json:"threshold"`
	Base      Won             `yaml:"base" json:"base"`
	HighRate  decimal.Decimal `yaml:"high_rate" json:"high_rate"`
}

// TaxCreditRules holds every credit used by the income calculators
type TaxCreditRules struct {
	PensionSavings ContributionCredit      `yaml:"pension_savings" json:"pension_savings"`
	HousingFund    ContributionCredit      `yaml:"housing_fund" json:"housing_fund"`
	PerChild       Won                     `yaml:"per_child" json:"per_child"`
	EarnedIncome   EarnedIncomeCreditRules `yaml:"earned_income" json:"earned_income"`
}

// ComprehensiveRules holds the category netting rules for comprehensive income
type ComprehensiveRules struct {
	PensionDeduction    TieredFormula   `yaml:"pension_deduction" json:"pension_deduction"`
	OtherBasicDeduction Won             `yaml:"other_basic_deduction" json:"other_basic_deduction"`
	OtherExpenseRate    decimal.Decimal `yaml:"other_expense_rate" json:"other_expense_rate"`
	OtherExpenseCap     Won             `yaml:"other_expense_cap" json:"other_expense_cap"`
}

// HoldingRate is the long-term-holding deduction rate from Years of holding.
type HoldingRate struct {
	Years int             `yaml:"years" json:"years"`
	Rate  decimal.Decimal `yaml:"rate" json:"rate"`
}

// LongTermHoldingRules holds the two holding-period tables
type LongTermHoldingRules struct {
	MinHoldingYears int           `yaml:"min_holding_years" json:"min_holding_years"`
	General         []HoldingRate `yaml:"general" json:"general"`
	Residential     []HoldingRate `yaml:"residential" json:"residential"`
}

// LongHoldOneHouseRules is the additional deduction for long-held single homes
type LongHoldOneHouseRules struct {
	MinHoldingYears int             `yaml:"min_holding_years" json:"min_holding_years"`
	Rate            decimal.Decimal `yaml:"rate" json:"rate"`
	Cap             Won             `yaml:"cap" json:"cap"`
}

// CapitalGainsRules holds transfer-income constants
type CapitalGainsRules struct {
	BasicDeduction             Won                   `yaml:"basic_deduction" json:"basic_deduction"`
	OneHouseExemptionThreshold Won                   `yaml:"one_house_exemption_threshold" json:"one_house_exemption_threshold"`
	OneHouseMinResidenceYears  int                   `yaml:"one_house_min_residence_years" json:"one_house_min_residence_years"`
	LongTermHolding            LongTermHoldingRules  `yaml:"long_term_holding" json:"long_term_holding"`
	LongHoldOneHouse           LongHoldOneHouseRules `yaml:"long_hold_one_house" json:"long_hold_one_house"`
	NonResidentRate            decimal.Decimal       `yaml:"non_resident_rate" json:"non_resident_rate"`
	SurchargePoints            decimal.Decimal       `yaml:"surcharge_points" json:"surcharge_points"`
	PreliminaryFilingMonths    int                   `yaml:"preliminary_filing_months" json:"preliminary_filing_months"`
}

// WithholdingRow is one monthly-payment row of the simplified withholding
// table. Amounts are indexed by dependents+children, the last column covering
// every larger count.
type WithholdingRow struct {
	From    Won   `yaml:"from" json:"from"`
	Amounts []Won `yaml:"amounts" json:"amounts"`
}

// EarnedWithholdingRules holds the monthly table and its flat credits
type EarnedWithholdingRules struct {
	Table           []WithholdingRow `yaml:"table" json:"table"`
	ExcessRate      decimal.Decimal  `yaml:"excess_rate" json:"excess_rate"`
	DependentCredit Won              `yaml:"dependent_credit" json:"dependent_credit"`
	ChildCredit     Won              `yaml:"child_credit" json:"child_credit"`
}

// WithholdingRules holds all five withholding strategies
type WithholdingRules struct {
	Earned              EarnedWithholdingRules `yaml:"earned" json:"earned"`
	BusinessRate        decimal.Decimal        `yaml:"business_rate" json:"business_rate"`
	OtherRate           decimal.Decimal        `yaml:"other_rate" json:"other_rate"`
	OtherBasicDeduction Won                    `yaml:"other_basic_deduction" json:"other_basic_deduction"`
	InterestRate        decimal.Decimal        `yaml:"interest_rate" json:"interest_rate"`
	DividendRate        decimal.Decimal        `yaml:"dividend_rate" json:"dividend_rate"`
}

// AdvisoryRules holds the thresholds used for non-binding notices
type AdvisoryRules struct {
	FinancialIncomeThreshold Won `yaml:"financial_income_threshold" json:"financial_income_threshold"`
	OtherIncomeSeparateLimit Won `yaml:"other_income_separate_limit" json:"other_income_separate_limit"`
	HighMonthlySalary        Won `yaml:"high_monthly_salary" json:"high_monthly_salary"`
	HighPayment              Won `yaml:"high_payment" json:"high_payment"`
	FilingMonth              int `yaml:"filing_month" json:"filing_month"`
}

// InputLimits are the structural domain maxima enforced by the validator
type InputLimits struct {
	MaxDependents   int `yaml:"max_dependents" json:"max_dependents"`
	MaxChildren     int `yaml:"max_children" json:"max_children"`
	MaxAnnualIncome Won `yaml:"max_annual_income" json:"max_annual_income"`
	MaxPayment      Won `yaml:"max_payment" json:"max_payment"`
	MaxAssetPrice   Won `yaml:"max_asset_price" json:"max_asset_price"`
}
