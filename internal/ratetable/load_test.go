package ratetable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxlab/ktax/internal/domain"
)

func won(v int64) *domain.Won {
	w := domain.Won(v)
	return &w
}

func TestValidate_EmbeddedTable(t *testing.T) {
	assert.NoError(t, Validate(loadTable(t)))
}

func TestValidate_Nil(t *testing.T) {
	assert.Error(t, Validate(nil))
}

func TestValidateBrackets(t *testing.T) {
	valid := func() []domain.Bracket {
		return []domain.Bracket{
			{Min: 0, Max: won(1000), Rate: decimal.RequireFromString("0.1")},
			{Min: 1000, Max: won(5000), Rate: decimal.RequireFromString("0.2"), ProgressiveDeduction: 100},
			{Min: 5000, Rate: decimal.RequireFromString("0.3"), ProgressiveDeduction: 600},
		}
	}
	require.NoError(t, ValidateBrackets(valid()))

	tests := []struct {
		name   string
		mutate func([]domain.Bracket) []domain.Bracket
		want   string
	}{
		{"empty", func([]domain.Bracket) []domain.Bracket { return nil }, "at least one"},
		{"not starting at zero", func(b []domain.Bracket) []domain.Bracket { b[0].Min = 10; return b }, "start at 0"},
		{"gap", func(b []domain.Bracket) []domain.Bracket { b[1].Min = 1200; return b }, "starts at"},
		{"bounded top", func(b []domain.Bracket) []domain.Bracket { b[2].Max = won(9000); return b }, "unbounded"},
		{"unbounded middle", func(b []domain.Bracket) []domain.Bracket { b[1].Max = nil; return b }, "not the last"},
		{"descending rate", func(b []domain.Bracket) []domain.Bracket {
			b[2].Rate = decimal.RequireFromString("0.15")
			return b
		}, "below the previous rate"},
		{"inconsistent deduction", func(b []domain.Bracket) []domain.Bracket { b[2].ProgressiveDeduction = 700; return b }, "slice form"},
		{"rate above one", func(b []domain.Bracket) []domain.Bracket {
			b[0].Rate = decimal.RequireFromString("1.5")
			return b
		}, "between 0 and 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, ValidateBrackets(tt.mutate(valid())), tt.want)
		})
	}
}

func TestValidateFormula(t *testing.T) {
	f := domain.TieredFormula{Tiers: []domain.FormulaTier{
		{UpTo: won(1000), Rate: decimal.RequireFromString("0.5")},
		{Base: 500, Over: 1000, Rate: decimal.RequireFromString("0.1")},
	}}
	require.NoError(t, ValidateFormula(f))

	f.Tiers[1].Base = 600
	assert.ErrorContains(t, ValidateFormula(f), "disagree")

	f.Tiers[1].Base = 500
	f.Tiers[1].UpTo = won(2000)
	assert.ErrorContains(t, ValidateFormula(f), "open-ended")

	assert.Error(t, ValidateFormula(domain.TieredFormula{}))
}

func TestValidate_WithholdingTable(t *testing.T) {
	rt := loadTable(t)
	rt.Withholding.Earned.Table[3].Amounts = rt.Withholding.Earned.Table[3].Amounts[:2]
	assert.ErrorContains(t, Validate(rt), "columns")

	rt = loadTable(t)
	rt.Withholding.Earned.Table[4].From = 1
	assert.ErrorContains(t, Validate(rt), "withholding.earned.table")
}

func TestValidate_HoldingTables(t *testing.T) {
	rt := loadTable(t)
	rt.CapitalGains.LongTermHolding.General[2].Years = 3
	assert.ErrorContains(t, Validate(rt), "long_term_holding.general")
}

func TestValidate_Limits(t *testing.T) {
	rt := loadTable(t)
	rt.Limits.MaxDependents = 0
	assert.ErrorContains(t, Validate(rt), "input_limits")

	rt = loadTable(t)
	rt.Personal.Basic = -1
	assert.ErrorContains(t, Validate(rt), "personal_deduction.basic")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("income_tax: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse rate table YAML")
}

func TestLoadFile(t *testing.T) {
	data, err := embedded.ReadFile("data/2024.yaml")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	rt, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2024, rt.Metadata.TaxYear)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read file")
}
