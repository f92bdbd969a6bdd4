package calculation

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/taxlab/ktax/internal/domain"
)

func TestProgressiveTax_MatchesQuickTax(t *testing.T) {
	brackets := table2024(t).IncomeTax.Brackets

	incomes := []int64{0, 1, 999, 14_000_000, 34_120_000, 2_500_000_000}
	for _, b := range brackets {
		incomes = append(incomes, int64(b.Min)-1, int64(b.Min), int64(b.Min)+1)
	}
	rng := rand.New(rand.NewSource(2024))
	for i := 0; i < 2000; i++ {
		incomes = append(incomes, rng.Int63n(2_000_000_000))
	}

	for _, income := range incomes {
		x := decimal.NewFromInt(income)
		slice, _ := ProgressiveTax(x, brackets)
		assert.Equal(t, QuickTax(x, brackets), slice, "income %d", income)
	}
}

func TestProgressiveTax_FractionalIncome(t *testing.T) {
	brackets := table2024(t).IncomeTax.Brackets
	x := decimal.RequireFromString("14000000.5")

	slice, _ := ProgressiveTax(x, brackets)
	assert.Equal(t, QuickTax(x, brackets), slice)
	assert.Equal(t, domain.Won(840_000), slice)
}

func TestProgressiveTax_AppliedRates(t *testing.T) {
	brackets := table2024(t).IncomeTax.Brackets

	tax, applied := ProgressiveTax(decimal.NewFromInt(34_120_000), brackets)

	assert.Equal(t, domain.Won(3_858_000), tax)
	if assert.Len(t, applied, 2) {
		assert.Equal(t, domain.IncomeRange{From: 0, To: 14_000_000}, applied[0].IncomeRange)
		assert.Equal(t, "0.06", applied[0].MarginalRate.String())
		assert.Equal(t, domain.Won(840_000), applied[0].TaxContributed)
		assert.Equal(t, domain.IncomeRange{From: 14_000_000, To: 34_120_000}, applied[1].IncomeRange)
		assert.Equal(t, "0.15", applied[1].MarginalRate.String())
		assert.Equal(t, domain.Won(3_018_000), applied[1].TaxContributed)
	}
}

func TestProgressiveTax_ContributionsSumToTax(t *testing.T) {
	brackets := table2024(t).IncomeTax.Brackets
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		x := decimal.NewFromInt(rng.Int63n(3_000_000_000)).Add(decimal.New(int64(rng.Intn(100)), -2))
		tax, applied := ProgressiveTax(x, brackets)
		var sum domain.Won
		for _, a := range applied {
			sum += a.TaxContributed
		}
		assert.Equal(t, tax, sum, "income %s", x)
	}
}

func TestProgressiveTax_Monotonic(t *testing.T) {
	brackets := table2024(t).IncomeTax.Brackets
	rng := rand.New(rand.NewSource(11))

	incomes := make([]int64, 1000)
	for i := range incomes {
		incomes[i] = rng.Int63n(1_500_000_000)
	}
	sort.Slice(incomes, func(i, j int) bool { return incomes[i] < incomes[j] })

	var prev domain.Won
	for _, income := range incomes {
		tax, _ := ProgressiveTax(decimal.NewFromInt(income), brackets)
		assert.GreaterOrEqual(t, tax, prev, "income %d", income)
		prev = tax
	}
}

func TestProgressiveTax_NonPositiveIncome(t *testing.T) {
	brackets := table2024(t).IncomeTax.Brackets

	for _, x := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5_000_000)} {
		tax, applied := ProgressiveTax(x, brackets)
		assert.Zero(t, tax)
		assert.Empty(t, applied)
		assert.Zero(t, QuickTax(x, brackets))
	}
}

func TestMarginalRate(t *testing.T) {
	brackets := table2024(t).IncomeTax.Brackets

	tests := []struct {
		income int64
		want   string
	}{
		{0, "0"},
		{1, "0.06"},
		{14_000_000, "0.06"},
		{14_000_001, "0.15"},
		{150_000_000, "0.35"},
		{5_000_000_000, "0.45"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MarginalRate(decimal.NewFromInt(tt.income), brackets).String(), "income %d", tt.income)
	}
}
