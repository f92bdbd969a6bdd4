package compare

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
	"github.com/taxlab/ktax/internal/output"
)

// ComparisonResult is one calculated scenario with its headline metrics
type ComparisonResult struct {
	ScenarioName string          `json:"scenarioName"`
	Description  string          `json:"description,omitempty"`
	Category     domain.Category `json:"category"`
	Result       domain.Result   `json:"-"`

	// Key Metrics
	GrossAmount   domain.Won      `json:"grossAmount"`
	TaxableAmount domain.Won      `json:"taxableAmount"`
	TotalTax      domain.Won      `json:"totalTax"`
	AfterTax      domain.Won      `json:"afterTax"`
	MarginalRate  decimal.Decimal `json:"marginalRate"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`

	// Comparison to Base
	TaxDiffFromBase      domain.Won      `json:"taxDiffFromBase"`
	TaxPctFromBase       decimal.Decimal `json:"taxPctFromBase"`
	AfterTaxDiffFromBase domain.Won      `json:"afterTaxDiffFromBase"`
	EffectiveRateDiff    decimal.Decimal `json:"effectiveRateDiff"`
}

// ComparisonSet is a base scenario and its alternatives
type ComparisonSet struct {
	BaseScenarioName   string             `json:"baseScenarioName"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	InputPath          string             `json:"inputPath,omitempty"`
}

// MetricsCalculator extracts key metrics from results
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// GrossAmount is the pre-tax amount a result is measured against
func GrossAmount(res domain.Result) domain.Won {
	switch r := res.(type) {
	case *domain.EarnedIncomeResult:
		return r.GrossSalary
	case *domain.ComprehensiveIncomeResult:
		return r.GrossIncome
	case *domain.CapitalGainsResult:
		return r.TransferGain
	case *domain.WithholdingResult:
		return r.Payment
	default:
		return 0
	}
}

// CalculateMetrics computes the metrics of one result
func (mc *MetricsCalculator) CalculateMetrics(name string, res domain.Result) ComparisonResult {
	o := res.Base()
	marginal, effective := output.Rates(res)
	gross := GrossAmount(res)
	return ComparisonResult{
		ScenarioName:  name,
		Category:      o.Category,
		Result:        res,
		GrossAmount:   gross,
		TaxableAmount: o.TaxableAmount,
		TotalTax:      o.TotalTax,
		AfterTax:      gross - o.TotalTax,
		MarginalRate:  marginal,
		EffectiveRate: effective,
	}
}

// CalculateComparison computes the deltas of a scenario against the base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.TaxDiffFromBase = scenario.TotalTax - base.TotalTax
	if base.TotalTax != 0 {
		scenario.TaxPctFromBase = scenario.TaxDiffFromBase.Decimal().
			Div(base.TotalTax.Decimal()).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	scenario.AfterTaxDiffFromBase = scenario.AfterTax - base.AfterTax
	scenario.EffectiveRateDiff = scenario.EffectiveRate.Sub(base.EffectiveRate)
	return scenario
}

// GenerateRecommendations names the alternatives that beat the base
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}
	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}

	lowestTax := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		if compSet.AlternativeResults[i].TotalTax < lowestTax.TotalTax {
			lowestTax = &compSet.AlternativeResults[i]
		}
	}
	if lowestTax != compSet.BaseResult {
		savings := compSet.BaseResult.TotalTax - lowestTax.TotalTax
		recommendations = append(recommendations,
			fmt.Sprintf("Lowest Tax: %s saves %s KRW versus the base scenario", lowestTax.ScenarioName, savings))
	} else {
		recommendations = append(recommendations, "Lowest Tax: no alternative reduces the base scenario's tax")
	}

	bestAfterTax := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		if compSet.AlternativeResults[i].AfterTax > bestAfterTax.AfterTax {
			bestAfterTax = &compSet.AlternativeResults[i]
		}
	}
	if bestAfterTax != compSet.BaseResult && bestAfterTax != lowestTax {
		gain := bestAfterTax.AfterTax - compSet.BaseResult.AfterTax
		recommendations = append(recommendations,
			fmt.Sprintf("Best After-Tax: %s keeps %s KRW more than the base scenario", bestAfterTax.ScenarioName, gain))
	}

	for _, alt := range compSet.AlternativeResults {
		if alt.MarginalRate.GreaterThan(compSet.BaseResult.MarginalRate) {
			recommendations = append(recommendations,
				fmt.Sprintf("Bracket Change: %s moves into the %s marginal rate", alt.ScenarioName, alt.MarginalRate.Shift(2).String()+"%"))
		}
	}
	return recommendations
}
