package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taxlab/ktax/internal/domain"
)

func TestValidator_Clamp(t *testing.T) {
	v := NewValidator(table2024(t))

	assert.Equal(t, domain.Won(100), v.Clamp("a", 100, 200, "unused"))
	assert.Empty(t, v.Warnings())

	assert.Equal(t, domain.Won(200), v.Clamp("b", 300, 200, "limited"))
	assert.Equal(t, []domain.Warning{{Field: "b", Message: "limited", Original: 300, Applied: 200}}, v.Warnings())
}

func TestValidator_ClampNegativeLimit(t *testing.T) {
	v := NewValidator(table2024(t))

	assert.Equal(t, domain.Won(0), v.Clamp("c", 10, -5, "limited"))
	assert.Equal(t, domain.Won(0), v.Warnings()[0].Applied)
}

func TestValidator_EarnedNormalizesContributions(t *testing.T) {
	v := NewValidator(table2024(t))

	in, err := v.ValidateEarnedIncome(domain.EarnedIncomeInput{
		AnnualSalary:   40_000_000,
		PensionSavings: 6_000_000,
		HousingFund:    4_000_000,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.Won(6_000_000), in.PensionSavings)
	assert.Equal(t, domain.Won(3_000_000), in.HousingFund)
	assert.Len(t, v.Warnings(), 1)
}

func TestValidationError_Message(t *testing.T) {
	err := invalid("payment", domain.Won(-1), "cannot be negative")
	assert.Equal(t, "invalid payment (-1): cannot be negative", err.Error())

	err = invalid("sale_date", nil, "is required")
	assert.Equal(t, "invalid sale_date: is required", err.Error())
}
