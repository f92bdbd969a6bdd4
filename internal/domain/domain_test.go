package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWon_String(t *testing.T) {
	tests := map[Won]string{
		0:             "0",
		999:           "999",
		1000:          "1,000",
		4_243_800:     "4,243,800",
		-1_500_000:    "-1,500,000",
		1_000_000_000: "1,000,000,000",
	}
	for w, want := range tests {
		assert.Equal(t, want, w.String())
	}
}

func TestFloorWon(t *testing.T) {
	assert.Equal(t, Won(10), FloorWon(decimal.RequireFromString("10.99")))
	assert.Equal(t, Won(-11), FloorWon(decimal.RequireFromString("-10.01")))
	assert.Equal(t, Won(7), FloorWon(decimal.NewFromInt(7)))
}

func TestRate(t *testing.T) {
	assert.Equal(t, "0.0849", Rate(4_243_800, 50_000_000).String())
	assert.Equal(t, "0", Rate(100, 0).String())
	assert.Equal(t, "0", Rate(100, -3).String())
}

func TestMinMaxWon(t *testing.T) {
	assert.Equal(t, Won(5), MaxWon(5, -2))
	assert.Equal(t, Won(-2), MinWon(5, -2))
}

func TestBracket_Contains(t *testing.T) {
	top := Won(14_000_000)
	first := Bracket{Min: 0, Max: &top}
	second := Bracket{Min: 14_000_000}

	assert.True(t, first.Contains(decimal.Zero))
	assert.True(t, first.Contains(decimal.NewFromInt(14_000_000)))
	assert.False(t, second.Contains(decimal.NewFromInt(14_000_000)))
	assert.True(t, second.Contains(decimal.RequireFromString("14000000.01")))
	assert.True(t, second.Unbounded())
	assert.False(t, first.Unbounded())
}

func TestTieredFormula_Evaluate(t *testing.T) {
	upTo := Won(5_000_000)
	limit := Won(20_000_000)
	f := TieredFormula{
		Tiers: []FormulaTier{
			{UpTo: &upTo, Rate: decimal.RequireFromString("0.7")},
			{Base: 3_500_000, Rate: decimal.RequireFromString("0.4"), Over: 5_000_000},
		},
		Cap: &limit,
	}

	v, tier := f.Evaluate(decimal.NewFromInt(1_000_000))
	assert.Equal(t, "700000", v.String())
	assert.Equal(t, 0, tier)

	v, tier = f.Evaluate(decimal.NewFromInt(10_000_000))
	assert.Equal(t, "5500000", v.String())
	assert.Equal(t, 1, tier)

	v, _ = f.Evaluate(decimal.NewFromInt(100_000_000))
	assert.Equal(t, "20000000", v.String(), "capped")

	v, _ = f.Evaluate(decimal.NewFromInt(-1))
	assert.True(t, v.IsZero())
}

func TestTieredFormula_NeverExceedsInput(t *testing.T) {
	f := TieredFormula{Tiers: []FormulaTier{{Base: 300_000, Rate: decimal.Zero}}}

	v, _ := f.Evaluate(decimal.NewFromInt(100_000))
	assert.Equal(t, "100000", v.String())
}

func TestRequest_Payload(t *testing.T) {
	in := EarnedIncomeInput{AnnualSalary: 1}
	payload, err := Request{Category: CategoryEarnedIncome, Earned: &in}.Payload()
	require.NoError(t, err)
	assert.Equal(t, in, payload)

	_, err = Request{Category: CategoryEarnedIncome}.Payload()
	assert.ErrorContains(t, err, "no matching payload")

	_, err = Request{Category: CategoryWithholding, Earned: &in, Withholding: &WithholdingInput{}}.Payload()
	assert.ErrorContains(t, err, "2 payloads")

	_, err = Request{Category: "estate", Earned: &in}.Payload()
	assert.ErrorContains(t, err, "unknown category")
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	got, err := ParseCategory("transfer")
	require.NoError(t, err)
	assert.Equal(t, CategoryCapitalGains, got)

	_, err = ParseCategory("gift")
	assert.Error(t, err)
}

func TestRequest_DecodesYAML(t *testing.T) {
	doc := `
id: sale-1
category: capital_gains
capital_gains:
  acquisition_date: 2014-03-15T00:00:00Z
  sale_date: 2024-06-20T00:00:00Z
  acquisition_price: 500000000
  sale_price: 800000000
  multi_house: true
`
	var req Request
	require.NoError(t, yaml.Unmarshal([]byte(doc), &req))
	require.NotNil(t, req.CapitalGains)
	assert.Equal(t, "sale-1", req.ID)
	assert.Equal(t, Won(800_000_000), req.CapitalGains.SalePrice)
	assert.Equal(t, 2014, req.CapitalGains.AcquisitionDate.Year())
	assert.True(t, req.CapitalGains.MultiHouse)
}

func TestOutcome_FlattensInJSON(t *testing.T) {
	res := &WithholdingResult{Outcome: Outcome{Category: CategoryWithholding, TotalTax: 154_000}, Payment: 1_000_000}

	data, err := json.Marshal(res)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Equal(t, float64(154_000), generic["total_tax"])
	assert.Equal(t, "withholding", generic["category"])

	var r Result = res
	assert.Equal(t, Won(154_000), r.Base().TotalTax)
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("calculate: %w", NewUnsupportedTaxYear(2019))

	assert.True(t, errors.Is(err, ErrUnsupportedTaxYear))
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(errors.New("plain")))
	assert.Contains(t, err.Error(), "invalid tax_year (2019)")
}
