package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxlab/ktax/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRequest_YAML(t *testing.T) {
	path := writeFile(t, "house.yaml", `
id: apartment
category: transfer
capital_gains:
  acquisition_date: 2014-03-01
  sale_date: 2024-06-30
  acquisition_price: 500000000
  sale_price: 1500000000
  residential: true
  one_house_one_family: true
  residence_years: 10
`)

	req, err := NewInputParser().LoadRequest(path)
	require.NoError(t, err)

	assert.Equal(t, "apartment", req.ID)
	assert.Equal(t, domain.CategoryCapitalGains, req.Category, "alias should be normalized")
	require.NotNil(t, req.CapitalGains)
	assert.Equal(t, domain.Won(1_500_000_000), req.CapitalGains.SalePrice)
	assert.Equal(t, 2014, req.CapitalGains.AcquisitionDate.Year())
	assert.Equal(t, 10, req.CapitalGains.ResidenceYears)
}

func TestLoadRequest_JSON(t *testing.T) {
	path := writeFile(t, "fee.JSON", `{
  "id": "fee",
  "category": "withholding",
  "withholding": {"income_type": "other", "payment": 1000000, "apply_basic_deduction": true}
}`)

	req, err := NewInputParser().LoadRequest(path)
	require.NoError(t, err)
	require.NotNil(t, req.Withholding)
	assert.Equal(t, domain.IncomeTypeOther, req.Withholding.IncomeType)
	assert.Equal(t, domain.Won(1_000_000), req.Withholding.Payment)
	assert.True(t, req.Withholding.ApplyBasicDeduction)
}

func TestLoadRequests_Batch(t *testing.T) {
	path := writeFile(t, "batch.yaml", `
requests:
  - id: salary
    category: earned
    earned:
      annual_salary: 50000000
  - id: fee
    category: withholding
    withholding:
      income_type: business
      payment: 1000000
`)

	parser := NewInputParser()
	reqs, err := parser.LoadRequests(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, domain.CategoryEarnedIncome, reqs[0].Category)
	assert.Equal(t, domain.Won(50_000_000), reqs[0].Earned.AnnualSalary)
	assert.Equal(t, domain.IncomeTypeBusiness, reqs[1].Withholding.IncomeType)

	_, err = parser.LoadRequest(path)
	assert.ErrorContains(t, err, "holds 2 requests, expected one")
}

func TestLoadRequests_Errors(t *testing.T) {
	parser := NewInputParser()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"empty", "empty.yaml", "", "no requests provided"},
		{"malformed yaml", "bad.yaml", "category: [", "failed to parse YAML"},
		{"malformed json", "bad.json", "{", "failed to parse JSON"},
		{"unknown category", "gift.yaml", "category: gift\n", `unknown category "gift"`},
		{"missing payload", "earned.yaml", "category: earned\n", "has no matching payload"},
		{
			"two payloads", "two.yaml",
			"category: earned\nearned: {annual_salary: 1}\nwithholding: {payment: 1}\n",
			"carries 2 payloads",
		},
		{
			"bad batch item", "batch.yaml",
			"requests:\n  - category: earned\n    earned: {annual_salary: 1}\n  - category: nope\n",
			"request 1 validation failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.LoadRequests(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := parser.LoadRequests(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
