package domain

import (
	"fmt"
	"time"
)

// Category identifies which calculator handles a request
type Category string

const (
	CategoryEarnedIncome        Category = "earned_income"
	CategoryComprehensiveIncome Category = "comprehensive_income"
	CategoryCapitalGains        Category = "capital_gains"
	CategoryWithholding         Category = "withholding"
)

// Categories lists every supported category in display order
var Categories = []Category{
	CategoryEarnedIncome,
	CategoryComprehensiveIncome,
	CategoryCapitalGains,
	CategoryWithholding,
}

// ParseCategory accepts the canonical names plus the short CLI aliases.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "earned_income", "earned":
		return CategoryEarnedIncome, nil
	case "comprehensive_income", "comprehensive":
		return CategoryComprehensiveIncome, nil
	case "capital_gains", "capital-gains", "transfer":
		return CategoryCapitalGains, nil
	case "withholding":
		return CategoryWithholding, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// IncomeType selects the withholding strategy
type IncomeType string

const (
	IncomeTypeEarned   IncomeType = "earned"
	IncomeTypeBusiness IncomeType = "business"
	IncomeTypeOther    IncomeType = "other"
	IncomeTypeInterest IncomeType = "interest"
	IncomeTypeDividend IncomeType = "dividend"
)

// EarnedIncomeInput is the annual wage-earner record. Dependents excludes the
// taxpayer; DisabledCount and ElderlyCount are drawn from the whole household.
type EarnedIncomeInput struct {
	TaxYear           int `yaml:"tax_year" json:"tax_year"`
	AnnualSalary      Won `yaml:"annual_salary" json:"annual_salary"`
	Dependents        int `yaml:"dependents" json:"dependents"`
	DisabledCount     int `yaml:"disabled_count" json:"disabled_count"`
	ElderlyCount      int `yaml:"elderly_count" json:"elderly_count"`
	MedicalExpenses   Won `yaml:"medical_expenses" json:"medical_expenses"`
	EducationExpenses Won `yaml:"education_expenses" json:"education_expenses"`
	Donations         Won `yaml:"donations" json:"donations"`
	CreditCardUsage   Won `yaml:"credit_card_usage" json:"credit_card_usage"`
	PensionSavings    Won `yaml:"pension_savings" json:"pension_savings"`
	HousingFund       Won `yaml:"housing_fund" json:"housing_fund"`
	NationalPension   Won `yaml:"national_pension" json:"national_pension"`
	HealthInsurance   Won `yaml:"health_insurance" json:"health_insurance"`
}

// ComprehensiveIncomeInput aggregates the seven income categories of a
// comprehensive income return.
type ComprehensiveIncomeInput struct {
	TaxYear              int `yaml:"tax_year" json:"tax_year"`
	InterestIncome       Won `yaml:"interest_income" json:"interest_income"`
	DividendIncome       Won `yaml:"dividend_income" json:"dividend_income"`
	BusinessIncome       Won `yaml:"business_income" json:"business_income"`
	BusinessExpenses     Won `yaml:"business_expenses" json:"business_expenses"`
	RentalIncome         Won `yaml:"rental_income" json:"rental_income"`
	RentalExpenses       Won `yaml:"rental_expenses" json:"rental_expenses"`
	EarnedIncome         Won `yaml:"earned_income" json:"earned_income"`
	PensionIncome        Won `yaml:"pension_income" json:"pension_income"`
	OtherIncome          Won `yaml:"other_income" json:"other_income"`
	Dependents           int `yaml:"dependents" json:"dependents"`
	DisabledCount        int `yaml:"disabled_count" json:"disabled_count"`
	ElderlyCount         int `yaml:"elderly_count" json:"elderly_count"`
	Children             int `yaml:"children" json:"children"`
	MedicalExpenses      Won `yaml:"medical_expenses" json:"medical_expenses"`
	EducationExpenses    Won `yaml:"education_expenses" json:"education_expenses"`
	Donations            Won `yaml:"donations" json:"donations"`
	CreditCardUsage      Won `yaml:"credit_card_usage" json:"credit_card_usage"`
	PensionContributions Won `yaml:"pension_contributions" json:"pension_contributions"`
	PensionSavings       Won `yaml:"pension_savings" json:"pension_savings"`
	PrepaidTax           Won `yaml:"prepaid_tax" json:"prepaid_tax"`
}

// CapitalGainsInput describes a single asset transfer
type CapitalGainsInput struct {
	TaxYear             int       `yaml:"tax_year" json:"tax_year"`
	AcquisitionDate     time.Time `yaml:"acquisition_date" json:"acquisition_date"`
	SaleDate            time.Time `yaml:"sale_date" json:"sale_date"`
	AcquisitionPrice    Won       `yaml:"acquisition_price" json:"acquisition_price"`
	AcquisitionCosts    Won       `yaml:"acquisition_costs" json:"acquisition_costs"`
	ImprovementCosts    Won       `yaml:"improvement_costs" json:"improvement_costs"`
	SalePrice           Won       `yaml:"sale_price" json:"sale_price"`
	TransferCosts       Won       `yaml:"transfer_costs" json:"transfer_costs"`
	Residential         bool      `yaml:"residential" json:"residential"`
	OneHouseOneFamily   bool      `yaml:"one_house_one_family" json:"one_house_one_family"`
	ResidenceYears      int       `yaml:"residence_years" json:"residence_years"`
	ForeignerExempt     bool      `yaml:"foreigner_exempt" json:"foreigner_exempt"`
	NonResident         bool      `yaml:"non_resident" json:"non_resident"`
	MultiHouse          bool      `yaml:"multi_house" json:"multi_house"`
	AdjustmentArea      bool      `yaml:"adjustment_area" json:"adjustment_area"`
	ReconstructionArea  bool      `yaml:"reconstruction_area" json:"reconstruction_area"`
	PreviousYearTaxPaid Won       `yaml:"previous_year_tax_paid" json:"previous_year_tax_paid"`
}

// WithholdingInput describes one payment subject to withholding. For the
// earned strategy Payment is the monthly salary.
type WithholdingInput struct {
	TaxYear             int        `yaml:"tax_year" json:"tax_year"`
	IncomeType          IncomeType `yaml:"income_type" json:"income_type"`
	Payment             Won        `yaml:"payment" json:"payment"`
	Dependents          int        `yaml:"dependents" json:"dependents"`
	Children            int        `yaml:"children" json:"children"`
	ApplyBasicDeduction bool       `yaml:"apply_basic_deduction" json:"apply_basic_deduction"`
}

// Request is a category-tagged input document. Exactly one payload must be
// set and it must match Category.
type Request struct {
	ID            string                    `yaml:"id,omitempty" json:"id,omitempty"`
	Category      Category                  `yaml:"category" json:"category"`
	Earned        *EarnedIncomeInput        `yaml:"earned,omitempty" json:"earned,omitempty"`
	Comprehensive *ComprehensiveIncomeInput `yaml:"comprehensive,omitempty" json:"comprehensive,omitempty"`
	CapitalGains  *CapitalGainsInput        `yaml:"capital_gains,omitempty" json:"capital_gains,omitempty"`
	Withholding   *WithholdingInput         `yaml:"withholding,omitempty" json:"withholding,omitempty"`
}

// Payload returns the input matching Category, or an error when the payload
// is missing or a second payload is also present.
func (r Request) Payload() (any, error) {
	set := 0
	for _, present := range []bool{r.Earned != nil, r.Comprehensive != nil, r.CapitalGains != nil, r.Withholding != nil} {
		if present {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("request %q carries %d payloads, expected one", r.ID, set)
	}
	var payload any
	switch r.Category {
	case CategoryEarnedIncome:
		if r.Earned != nil {
			payload = *r.Earned
		}
	case CategoryComprehensiveIncome:
		if r.Comprehensive != nil {
			payload = *r.Comprehensive
		}
	case CategoryCapitalGains:
		if r.CapitalGains != nil {
			payload = *r.CapitalGains
		}
	case CategoryWithholding:
		if r.Withholding != nil {
			payload = *r.Withholding
		}
	default:
		return nil, fmt.Errorf("request %q has unknown category %q", r.ID, r.Category)
	}
	if payload == nil {
		return nil, fmt.Errorf("request %q: category %s has no matching payload", r.ID, r.Category)
	}
	return payload, nil
}
