package domain

// Step is one line of the audit trail. Amount is signed: deductions and
// credits are recorded as negative amounts.
type Step struct {
	Label       string `yaml:"label" json:"label"`
	Amount      Won    `yaml:"amount" json:"amount"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Formula     string `yaml:"formula,omitempty" json:"formula,omitempty"`
}

// BreakdownSummary condenses the audit trail into the headline figures
type BreakdownSummary struct {
	GrossIncome      Won `yaml:"gross_income" json:"gross_income"`
	TotalDeductions  Won `yaml:"total_deductions" json:"total_deductions"`
	TaxableBase      Won `yaml:"taxable_base" json:"taxable_base"`
	TaxBeforeCredits Won `yaml:"tax_before_credits" json:"tax_before_credits"`
	TotalCredits     Won `yaml:"total_credits" json:"total_credits"`
	FinalTax         Won `yaml:"final_tax" json:"final_tax"`
}

// CalculationBreakdown is the ordered, human-auditable list of steps attached
// to every result.
type CalculationBreakdown struct {
	Steps   []Step           `yaml:"steps" json:"steps"`
	Summary BreakdownSummary `yaml:"summary" json:"summary"`
}
