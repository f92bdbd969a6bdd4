package compare

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/taxlab/ktax/internal/domain"
)

func TestMetricsCalculator_CalculateMetrics(t *testing.T) {
	mc := NewMetricsCalculator()
	res := &domain.EarnedIncomeResult{
		Outcome: domain.Outcome{
			Category:      domain.CategoryEarnedIncome,
			TaxableAmount: 24_000_000,
			TotalTax:      2_000_000,
		},
		GrossSalary:   40_000_000,
		MarginalRate:  decimal.RequireFromString("0.15"),
		EffectiveRate: decimal.RequireFromString("0.05"),
	}

	metrics := mc.CalculateMetrics("salary", res)

	if metrics.ScenarioName != "salary" {
		t.Errorf("Expected scenario name 'salary', got %s", metrics.ScenarioName)
	}
	if metrics.GrossAmount != 40_000_000 {
		t.Errorf("Expected gross 40,000,000, got %s", metrics.GrossAmount)
	}
	if metrics.AfterTax != 38_000_000 {
		t.Errorf("Expected after tax 38,000,000, got %s", metrics.AfterTax)
	}
	if !metrics.MarginalRate.Equal(decimal.RequireFromString("0.15")) {
		t.Errorf("Expected marginal rate 0.15, got %s", metrics.MarginalRate)
	}
	if metrics.Result != res {
		t.Error("Expected result to be retained")
	}
}

func TestGrossAmount(t *testing.T) {
	tests := []struct {
		name string
		res  domain.Result
		want domain.Won
	}{
		{"earned", &domain.EarnedIncomeResult{GrossSalary: 1}, 1},
		{"comprehensive", &domain.ComprehensiveIncomeResult{GrossIncome: 2}, 2},
		{"capital gains", &domain.CapitalGainsResult{TransferGain: 3}, 3},
		{"withholding", &domain.WithholdingResult{Payment: 4}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GrossAmount(tt.res); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestMetricsCalculator_CalculateComparison(t *testing.T) {
	mc := NewMetricsCalculator()
	base := ComparisonResult{
		ScenarioName:  "base",
		TotalTax:      1_000_000,
		AfterTax:      9_000_000,
		EffectiveRate: decimal.RequireFromString("0.1"),
	}
	alt := ComparisonResult{
		ScenarioName:  "alt",
		TotalTax:      750_000,
		AfterTax:      9_250_000,
		EffectiveRate: decimal.RequireFromString("0.075"),
	}

	got := mc.CalculateComparison(alt, base)

	if got.TaxDiffFromBase != -250_000 {
		t.Errorf("Expected tax diff -250,000, got %s", got.TaxDiffFromBase)
	}
	if got.TaxPctFromBase.StringFixed(2) != "-25.00" {
		t.Errorf("Expected -25.00, got %s", got.TaxPctFromBase.StringFixed(2))
	}
	if got.AfterTaxDiffFromBase != 250_000 {
		t.Errorf("Expected after-tax diff 250,000, got %s", got.AfterTaxDiffFromBase)
	}
	if got.EffectiveRateDiff.String() != "-0.025" {
		t.Errorf("Expected rate diff -0.025, got %s", got.EffectiveRateDiff)
	}

	// zero base tax leaves the percentage at zero
	zero := mc.CalculateComparison(alt, ComparisonResult{})
	if !zero.TaxPctFromBase.IsZero() {
		t.Errorf("Expected zero percentage, got %s", zero.TaxPctFromBase)
	}
}

func TestGenerateRecommendations(t *testing.T) {
	base := &ComparisonResult{
		ScenarioName: "base",
		TotalTax:     1_000_000,
		AfterTax:     9_000_000,
		MarginalRate: decimal.RequireFromString("0.15"),
	}

	t.Run("no alternatives", func(t *testing.T) {
		recs := GenerateRecommendations(&ComparisonSet{BaseResult: base})
		if len(recs) != 0 {
			t.Errorf("Expected no recommendations, got %v", recs)
		}
	})

	t.Run("no improvement", func(t *testing.T) {
		recs := GenerateRecommendations(&ComparisonSet{
			BaseResult: base,
			AlternativeResults: []ComparisonResult{
				{ScenarioName: "worse", TotalTax: 1_200_000, AfterTax: 8_800_000, MarginalRate: decimal.RequireFromString("0.15")},
			},
		})
		if len(recs) != 1 || !contains(recs[0], "no alternative reduces") {
			t.Errorf("Unexpected recommendations %v", recs)
		}
	})

	t.Run("savings and bracket change", func(t *testing.T) {
		recs := GenerateRecommendations(&ComparisonSet{
			BaseResult: base,
			AlternativeResults: []ComparisonResult{
				{ScenarioName: "saver", TotalTax: 900_000, AfterTax: 9_100_000, MarginalRate: decimal.RequireFromString("0.15")},
				{ScenarioName: "raise", TotalTax: 3_000_000, AfterTax: 12_000_000, MarginalRate: decimal.RequireFromString("0.24")},
			},
		})
		if len(recs) != 3 {
			t.Fatalf("Expected 3 recommendations, got %v", recs)
		}
		if !contains(recs[0], "Lowest Tax: saver saves 100,000 KRW") {
			t.Errorf("Unexpected lowest tax recommendation: %s", recs[0])
		}
		if !contains(recs[1], "Best After-Tax: raise keeps 3,000,000 KRW") {
			t.Errorf("Unexpected after-tax recommendation: %s", recs[1])
		}
		if !contains(recs[2], "raise moves into the 24%") {
			t.Errorf("Unexpected bracket recommendation: %s", recs[2])
		}
	})
}
