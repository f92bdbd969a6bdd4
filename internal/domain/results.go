package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deduction is a reduction of the taxable base
type Deduction struct {
	Kind   string `yaml:"kind" json:"kind"`
	Label  string `yaml:"label" json:"label"`
	Amount Won    `yaml:"amount" json:"amount"`
}

// Credit is a direct subtraction from computed tax
type Credit struct {
	Kind   string `yaml:"kind" json:"kind"`
	Label  string `yaml:"label" json:"label"`
	Amount Won    `yaml:"amount" json:"amount"`
}

// IncomeRange is the (From, To] slice of income a bracket covered
type IncomeRange struct {
	From Won `yaml:"from" json:"from"`
	To   Won `yaml:"to" json:"to"`
}

// AppliedRate is one bracket actually touched by a progressive calculation
type AppliedRate struct {
	IncomeRange    IncomeRange     `yaml:"income_range" json:"income_range"`
	MarginalRate   decimal.Decimal `yaml:"marginal_rate" json:"marginal_rate"`
	TaxContributed Won             `yaml:"tax_contributed" json:"tax_contributed"`
}

// Warning records a soft-limit clamp. The calculation proceeded with Applied.
type Warning struct {
	Field    string `yaml:"field" json:"field"`
	Message  string `yaml:"message" json:"message"`
	Original Won    `yaml:"original" json:"original"`
	Applied  Won    `yaml:"applied" json:"applied"`
}

// AdvisoryKind classifies non-binding notices
type AdvisoryKind string

const (
	AdvisoryInfo   AdvisoryKind = "info"
	AdvisoryFiling AdvisoryKind = "filing"
	AdvisoryAlert  AdvisoryKind = "alert"
)

// Advisory is a non-binding message appended after the arithmetic is done
type Advisory struct {
	Kind    AdvisoryKind `yaml:"kind" json:"kind"`
	Code    string       `yaml:"code" json:"code"`
	Message string       `yaml:"message" json:"message"`
}

// Outcome holds the fields every category result shares
type Outcome struct {
	Category      Category             `yaml:"category" json:"category"`
	TaxYear       int                  `yaml:"tax_year" json:"tax_year"`
	TaxableAmount Won                  `yaml:"taxable_amount" json:"taxable_amount"`
	NationalTax   Won                  `yaml:"national_tax" json:"national_tax"`
	LocalTax      Won                  `yaml:"local_tax" json:"local_tax"`
	TotalTax      Won                  `yaml:"total_tax" json:"total_tax"`
	AppliedRates  []AppliedRate        `yaml:"applied_rates" json:"applied_rates"`
	Breakdown     CalculationBreakdown `yaml:"breakdown" json:"breakdown"`
	Warnings      []Warning            `yaml:"warnings,omitempty" json:"warnings,omitempty"`
	Advisories    []Advisory           `yaml:"advisories,omitempty" json:"advisories,omitempty"`
}

// Base gives generic consumers access to the shared fields
func (o *Outcome) Base() *Outcome { return o }

// Result is implemented by every category result pointer
type Result interface {
	Base() *Outcome
}

// EarnedIncomeResult is the year-end settlement outcome for a wage earner
type EarnedIncomeResult struct {
	Outcome               `yaml:",inline"`
	GrossSalary           Won             `yaml:"gross_salary" json:"gross_salary"`
	EarnedIncomeDeduction Won             `yaml:"earned_income_deduction" json:"earned_income_deduction"`
	PersonalDeduction     Won             `yaml:"personal_deduction" json:"personal_deduction"`
	SpecialDeduction      Won             `yaml:"special_deduction" json:"special_deduction"`
	UsedItemized          bool            `yaml:"used_itemized" json:"used_itemized"`
	ItemizedTotal         Won             `yaml:"itemized_total" json:"itemized_total"`
	Deductions            []Deduction     `yaml:"deductions" json:"deductions"`
	CalculatedTax         Won             `yaml:"calculated_tax" json:"calculated_tax"`
	Credits               []Credit        `yaml:"credits" json:"credits"`
	TotalCredits          Won             `yaml:"total_credits" json:"total_credits"`
	NetMonthlyEstimate    Won             `yaml:"net_monthly_estimate" json:"net_monthly_estimate"`
	MarginalRate          decimal.Decimal `yaml:"marginal_rate" json:"marginal_rate"`
	EffectiveRate         decimal.Decimal `yaml:"effective_rate" json:"effective_rate"`
}

// IncomeSource is one netted comprehensive-income category
type IncomeSource struct {
	Kind      string `yaml:"kind" json:"kind"`
	Label     string `yaml:"label" json:"label"`
	Gross     Won    `yaml:"gross" json:"gross"`
	Deduction Won    `yaml:"deduction" json:"deduction"`
	Net       Won    `yaml:"net" json:"net"`
}

// ComprehensiveIncomeResult is the annual comprehensive-income return outcome
type ComprehensiveIncomeResult struct {
	Outcome           `yaml:",inline"`
	IncomeSources     []IncomeSource  `yaml:"income_sources" json:"income_sources"`
	GrossIncome       Won             `yaml:"gross_income" json:"gross_income"`
	PersonalDeduction Won             `yaml:"personal_deduction" json:"personal_deduction"`
	PensionDeduction  Won             `yaml:"pension_contribution_deduction" json:"pension_contribution_deduction"`
	SpecialDeduction  Won             `yaml:"special_deduction" json:"special_deduction"`
	UsedItemized      bool            `yaml:"used_itemized" json:"used_itemized"`
	Deductions        []Deduction     `yaml:"deductions" json:"deductions"`
	CalculatedTax     Won             `yaml:"calculated_tax" json:"calculated_tax"`
	Credits           []Credit        `yaml:"credits" json:"credits"`
	TotalCredits      Won             `yaml:"total_credits" json:"total_credits"`
	MarginalRate      decimal.Decimal `yaml:"marginal_rate" json:"marginal_rate"`
	EffectiveRate     decimal.Decimal `yaml:"effective_rate" json:"effective_rate"`
	PrepaidTax        Won             `yaml:"prepaid_tax" json:"prepaid_tax"`
	AdditionalPayment Won             `yaml:"additional_payment" json:"additional_payment"`
	Refund            Won             `yaml:"refund" json:"refund"`
}

// ExemptionReason names why a transfer was fully exempt
type ExemptionReason string

const (
	ExemptionNone              ExemptionReason = ""
	ExemptionOneHouseOneFamily ExemptionReason = "one_house_one_family"
	ExemptionForeigner         ExemptionReason = "foreigner"
)

// Exemption records the outcome of the exemption check
type Exemption struct {
	Exempt      bool            `yaml:"exempt" json:"exempt"`
	Reason      ExemptionReason `yaml:"reason,omitempty" json:"reason,omitempty"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
}

// SurchargeKind names the heavy-tax condition applied to a transfer
type SurchargeKind string

const (
	SurchargeNone               SurchargeKind = "none"
	SurchargeNonResident        SurchargeKind = "non_resident"
	SurchargeMultiHouse         SurchargeKind = "multi_house"
	SurchargeAdjustmentArea     SurchargeKind = "adjustment_area"
	SurchargeReconstructionArea SurchargeKind = "reconstruction_area"
)

// Surcharge records which precedence rule matched and what it added.
// For the non-resident path Rate is the flat rate that replaced the brackets.
type Surcharge struct {
	Kind   SurchargeKind   `yaml:"kind" json:"kind"`
	Rate   decimal.Decimal `yaml:"rate" json:"rate"`
	Amount Won             `yaml:"amount" json:"amount"`
}

// CapitalGainsResult is the outcome of a single transfer
type CapitalGainsResult struct {
	Outcome                   `yaml:",inline"`
	HoldingYears              int             `yaml:"holding_years" json:"holding_years"`
	HoldingMonths             int             `yaml:"holding_months" json:"holding_months"`
	SaleDate                  time.Time       `yaml:"sale_date" json:"sale_date"`
	TransferGain              Won             `yaml:"transfer_gain" json:"transfer_gain"`
	Exemption                 Exemption       `yaml:"exemption" json:"exemption"`
	BasicDeduction            Won             `yaml:"basic_deduction" json:"basic_deduction"`
	LongTermHoldingRate       decimal.Decimal `yaml:"long_term_holding_rate" json:"long_term_holding_rate"`
	LongTermHoldingDeduction  Won             `yaml:"long_term_holding_deduction" json:"long_term_holding_deduction"`
	OneHouseLongHoldDeduction Won             `yaml:"one_house_long_hold_deduction" json:"one_house_long_hold_deduction"`
	Deductions                []Deduction     `yaml:"deductions" json:"deductions"`
	BaseTax                   Won             `yaml:"base_tax" json:"base_tax"`
	Surcharge                 Surcharge       `yaml:"surcharge" json:"surcharge"`
	MarginalRate              decimal.Decimal `yaml:"marginal_rate" json:"marginal_rate"`
	EffectiveRate             decimal.Decimal `yaml:"effective_rate" json:"effective_rate"`
	PreviousYearTaxPaid       Won             `yaml:"previous_year_tax_paid" json:"previous_year_tax_paid"`
	AdditionalPayment         Won             `yaml:"additional_payment" json:"additional_payment"`
	Refund                    Won             `yaml:"refund" json:"refund"`
}

// WithholdingResult is the tax withheld from one payment
type WithholdingResult struct {
	Outcome        `yaml:",inline"`
	IncomeType     IncomeType      `yaml:"income_type" json:"income_type"`
	Payment        Won             `yaml:"payment" json:"payment"`
	BasicDeduction Won             `yaml:"basic_deduction" json:"basic_deduction"`
	Rate           decimal.Decimal `yaml:"rate" json:"rate"`
	FamilyCount    int             `yaml:"family_count" json:"family_count"`
	TableAmount    Won             `yaml:"table_amount" json:"table_amount"`
	Credits        []Credit        `yaml:"credits,omitempty" json:"credits,omitempty"`
	NetPayment     Won             `yaml:"net_payment" json:"net_payment"`
}
