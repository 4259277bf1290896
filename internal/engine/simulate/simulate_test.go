package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvradar/solvency-radar/internal/models"
)

func TestIncomeDrop(t *testing.T) {
	profile := models.Profile{IncomeFloor: 5000}

	tests := []struct {
		name       string
		fixedTotal float64
		dropPct    float64
		expected   models.IncomeDropResult
	}{
		{
			name:       "moderate drop survives",
			fixedTotal: 2000,
			dropPct:    0.3,
			expected: models.IncomeDropResult{
				NewIncome:      3500,
				Deficit:        -1500,
				Breaks:         false,
				CoverageMonths: 1.8,
			},
		},
		{
			name:       "deep drop breaks the budget",
			fixedTotal: 2000,
			dropPct:    0.7,
			expected: models.IncomeDropResult{
				NewIncome:      1500,
				Deficit:        500,
				Breaks:         true,
				CoverageMonths: 0.8,
			},
		},
		{
			name:       "total drop zeroes coverage",
			fixedTotal: 2000,
			dropPct:    1,
			expected: models.IncomeDropResult{
				NewIncome:      0,
				Deficit:        2000,
				Breaks:         true,
				CoverageMonths: 0,
			},
		},
		{
			name:       "no fixed costs cannot break",
			fixedTotal: 0,
			dropPct:    0.5,
			expected: models.IncomeDropResult{
				NewIncome:      2500,
				Deficit:        -2500,
				Breaks:         false,
				CoverageMonths: 0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := IncomeDrop(profile, tt.fixedTotal, tt.dropPct)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *result)
		})
	}
}

func TestIncomeDrop_InvalidDropPct(t *testing.T) {
	profile := models.Profile{IncomeFloor: 5000}

	for _, dropPct := range []float64{-0.1, 1.2} {
		_, err := IncomeDrop(profile, 1000, dropPct)
		require.Error(t, err)
		var invalid *models.InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "drop_pct", invalid.Field)
	}
}

func TestGrowth_ZeroRate(t *testing.T) {
	result, err := Growth(1000, 0, 12500)
	require.NoError(t, err)

	assert.Equal(t, 13, result.Months)
	assert.Equal(t, 13000.0, result.FinalValue)
	assert.Equal(t, 13000.0, result.TotalContributed)
	assert.Equal(t, 0.0, result.TotalGains)
	assert.Equal(t, 0.0, result.GainsPct)
}

func TestGrowth_CompoundScenario(t *testing.T) {
	// 1000/month at 8% a year toward one million: the annuity equation gives
	// 313 months, and recomputing the final value must land at or above the
	// target.
	result, err := Growth(1000, 8, 1_000_000)
	require.NoError(t, err)

	assert.Equal(t, 313, result.Months)
	assert.GreaterOrEqual(t, result.FinalValue, 1_000_000.0)
	assert.Equal(t, 313_000.0, result.TotalContributed)
	assert.InDelta(t, result.FinalValue-result.TotalContributed, result.TotalGains, 0.01)
	assert.Greater(t, result.GainsPct, 0.0)
}

func TestGrowth_OneMonthWhenTargetTiny(t *testing.T) {
	result, err := Growth(1000, 10, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Months)
}

func TestGrowth_InvalidInput(t *testing.T) {
	tests := []struct {
		name          string
		contribution  float64
		annualReturn  float64
		target        float64
		expectedField string
	}{
		{"zero contribution", 0, 8, 1000, "monthly_contribution"},
		{"negative contribution", -5, 8, 1000, "monthly_contribution"},
		{"negative return", 1000, -1, 1000, "annual_return_pct"},
		{"return above 100", 1000, 101, 1000, "annual_return_pct"},
		{"zero target", 1000, 8, 0, "target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Growth(tt.contribution, tt.annualReturn, tt.target)
			require.Error(t, err)
			var invalid *models.InvalidInputError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.expectedField, invalid.Field)
		})
	}
}
