package calculation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxlab/ktax/internal/domain"
)

func baseTransfer() domain.CapitalGainsInput {
	return domain.CapitalGainsInput{
		AcquisitionDate:  date(2014, time.March, 15),
		SaleDate:         date(2024, time.June, 20),
		AcquisitionPrice: 500_000_000,
		SalePrice:        800_000_000,
	}
}

func TestCapitalGains_GeneralAsset(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))

	res, err := calc.Calculate(baseTransfer())
	require.NoError(t, err)

	assert.Equal(t, 10, res.HoldingYears)
	assert.Equal(t, 3, res.HoldingMonths)
	assert.Equal(t, domain.Won(300_000_000), res.TransferGain)
	assert.False(t, res.Exemption.Exempt)
	assert.Equal(t, "0.2", res.LongTermHoldingRate.String())
	assert.Equal(t, domain.Won(60_000_000), res.LongTermHoldingDeduction)
	assert.Equal(t, domain.Won(2_500_000), res.BasicDeduction)
	assert.Equal(t, domain.Won(237_500_000), res.TaxableAmount)
	assert.Equal(t, domain.Won(70_310_000), res.BaseTax)
	assert.Equal(t, domain.SurchargeNone, res.Surcharge.Kind)
	assert.Equal(t, domain.Won(70_310_000), res.NationalTax)
	assert.Equal(t, domain.Won(7_031_000), res.LocalTax)
	assert.Equal(t, domain.Won(77_341_000), res.TotalTax)
	assert.Equal(t, "0.2578", res.EffectiveRate.String())
	assert.Equal(t, domain.Won(77_341_000), res.AdditionalPayment)
}

func TestCapitalGains_OneHouseExemption(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))
	in := baseTransfer()
	in.Residential = true
	in.OneHouseOneFamily = true
	in.ResidenceYears = 3
	in.SalePrice = 1_200_000_000
	in.PreviousYearTaxPaid = 1_000_000

	res, err := calc.Calculate(in)
	require.NoError(t, err)

	assert.True(t, res.Exemption.Exempt)
	assert.Equal(t, domain.ExemptionOneHouseOneFamily, res.Exemption.Reason)
	assert.Equal(t, domain.Won(700_000_000), res.TransferGain)
	assert.Zero(t, res.TaxableAmount)
	assert.Zero(t, res.TotalTax)
	assert.Zero(t, res.AdditionalPayment)
	assert.Equal(t, domain.Won(1_000_000), res.Refund)
}

func TestCapitalGains_ExemptionIgnoresGainSize(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))

	for _, gain := range []domain.Won{0, 1, 50_000_000, 1_199_999_999} {
		in := domain.CapitalGainsInput{
			AcquisitionDate:   date(2020, time.January, 1),
			SaleDate:          date(2024, time.January, 1),
			AcquisitionPrice:  1_200_000_000 - gain,
			SalePrice:         1_200_000_000,
			OneHouseOneFamily: true,
			ResidenceYears:    2,
		}
		res, err := calc.Calculate(in)
		require.NoError(t, err)
		assert.Zero(t, res.TotalTax, "gain %s", gain)
	}
}

func TestCapitalGains_ForeignerExemption(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))
	in := baseTransfer()
	in.ForeignerExempt = true

	res, err := calc.Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, domain.ExemptionForeigner, res.Exemption.Reason)
	assert.Zero(t, res.TotalTax)
}

func TestCapitalGains_OneHouseAboveThreshold(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))
	in := domain.CapitalGainsInput{
		AcquisitionDate:   date(2014, time.January, 1),
		SaleDate:          date(2024, time.January, 1),
		AcquisitionPrice:  500_000_000,
		SalePrice:         1_500_000_000,
		Residential:       true,
		OneHouseOneFamily: true,
		ResidenceYears:    10,
	}

	res, err := calc.Calculate(in)
	require.NoError(t, err)

	assert.False(t, res.Exemption.Exempt)
	assert.Equal(t, "0.8", res.LongTermHoldingRate.String())
	assert.Equal(t, domain.Won(800_000_000), res.LongTermHoldingDeduction)
	assert.Zero(t, res.OneHouseLongHoldDeduction)
	assert.Equal(t, domain.Won(197_500_000), res.TaxableAmount)
	assert.Equal(t, domain.Won(55_110_000), res.NationalTax)
}

func TestCapitalGains_OneHouseLongHold(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))
	in := domain.CapitalGainsInput{
		AcquisitionDate:   date(2004, time.January, 1),
		SaleDate:          date(2024, time.January, 1),
		AcquisitionPrice:  100_000_000,
		SalePrice:         2_100_000_000,
		OneHouseOneFamily: true,
		ResidenceYears:    1,
	}

	res, err := calc.Calculate(in)
	require.NoError(t, err)

	// one year of residence keeps the general table
	assert.Equal(t, "0.3", res.LongTermHoldingRate.String())
	assert.Equal(t, domain.Won(50_000_000), res.OneHouseLongHoldDeduction)
}

func TestCapitalGains_ShortHoldingHasNoHoldingDeduction(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))
	in := baseTransfer()
	in.AcquisitionDate = date(2023, time.January, 1)
	in.SaleDate = date(2024, time.June, 1)

	res, err := calc.Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, 1, res.HoldingYears)
	assert.Zero(t, res.LongTermHoldingDeduction)
	assert.Equal(t, domain.Won(297_500_000), res.TaxableAmount)
}

func TestCapitalGains_SurchargePrecedence(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))

	tests := []struct {
		name     string
		mutate   func(*domain.CapitalGainsInput)
		kind     domain.SurchargeKind
		national domain.Won
		marginal string
	}{
		{"non-resident wins over everything", func(in *domain.CapitalGainsInput) {
			in.NonResident = true
			in.MultiHouse = true
			in.AdjustmentArea = true
			in.ReconstructionArea = true
		}, domain.SurchargeNonResident, 71_250_000, "0.3"},
		{"multi-house before areas", func(in *domain.CapitalGainsInput) {
			in.MultiHouse = true
			in.AdjustmentArea = true
		}, domain.SurchargeMultiHouse, 117_810_000, "0.58"},
		{"adjustment area", func(in *domain.CapitalGainsInput) {
			in.AdjustmentArea = true
			in.ReconstructionArea = true
		}, domain.SurchargeAdjustmentArea, 117_810_000, "0.58"},
		{"reconstruction area", func(in *domain.CapitalGainsInput) {
			in.ReconstructionArea = true
		}, domain.SurchargeReconstructionArea, 117_810_000, "0.58"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseTransfer()
			tt.mutate(&in)
			res, err := calc.Calculate(in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, res.Surcharge.Kind)
			assert.Equal(t, tt.national, res.NationalTax)
			assert.Equal(t, tt.marginal, res.MarginalRate.String())
			assert.Equal(t, domain.Won(70_310_000), res.BaseTax)
		})
	}
}

func TestCapitalGains_NonResidentAppliedRate(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))
	in := baseTransfer()
	in.NonResident = true

	res, err := calc.Calculate(in)
	require.NoError(t, err)
	require.Len(t, res.AppliedRates, 1)
	assert.Equal(t, res.NationalTax, res.AppliedRates[0].TaxContributed)
	assert.Equal(t, "0.3", res.AppliedRates[0].MarginalRate.String())
}

func TestCapitalGains_LossIsZeroTax(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))
	in := baseTransfer()
	in.SalePrice = 400_000_000
	in.PreviousYearTaxPaid = 500_000

	res, err := calc.Calculate(in)
	require.NoError(t, err)
	assert.Zero(t, res.TransferGain)
	assert.Zero(t, res.TotalTax)
	assert.Equal(t, domain.Won(500_000), res.Refund)
}

func TestCapitalGains_ResidenceYearsClamped(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))
	in := baseTransfer()
	in.ResidenceYears = 12

	res, err := calc.Calculate(in)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "residence_years", res.Warnings[0].Field)
	assert.Equal(t, domain.Won(10), res.Warnings[0].Applied)
}

func TestCapitalGains_ValidationErrors(t *testing.T) {
	calc := NewCapitalGainsCalculator(table2024(t))

	tests := []struct {
		name   string
		mutate func(*domain.CapitalGainsInput)
		field  string
	}{
		{"sale before acquisition", func(in *domain.CapitalGainsInput) { in.SaleDate = date(2010, time.January, 1) }, "sale_date"},
		{"missing acquisition date", func(in *domain.CapitalGainsInput) { in.AcquisitionDate = time.Time{} }, "acquisition_date"},
		{"missing sale date", func(in *domain.CapitalGainsInput) { in.SaleDate = time.Time{} }, "sale_date"},
		{"negative costs", func(in *domain.CapitalGainsInput) { in.TransferCosts = -1 }, "transfer_costs"},
		{"negative residence", func(in *domain.CapitalGainsInput) { in.ResidenceYears = -1 }, "residence_years"},
		{"price above maximum", func(in *domain.CapitalGainsInput) { in.SalePrice = 1_000_000_000_001 }, "sale_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseTransfer()
			tt.mutate(&in)
			res, err := calc.Calculate(in)
			assert.Nil(t, res)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestHoldingPeriod(t *testing.T) {
	tests := []struct {
		acquired, sold time.Time
		years, months  int
	}{
		{date(2020, time.January, 31), date(2021, time.January, 30), 0, 11},
		{date(2020, time.January, 31), date(2021, time.January, 31), 1, 0},
		{date(2020, time.February, 29), date(2024, time.February, 28), 3, 11},
		{date(2024, time.May, 1), date(2024, time.May, 1), 0, 0},
	}
	for _, tt := range tests {
		years, months := HoldingPeriod(tt.acquired, tt.sold)
		assert.Equal(t, tt.years, years)
		assert.Equal(t, tt.months, months)
	}
}
