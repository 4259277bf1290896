package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvradar/solvency-radar/internal/models"
)

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func expense(name string, amount float64, rig models.Rigidity, score int, intention models.Intention) *models.Expense {
	return &models.Expense{
		Attributes: models.ExpenseAttributes{
			Name:      name,
			Amount:    amount,
			Intention: intention,
		},
		Score:             &score,
		ComputedRigidity:  &rig,
		RigidityEffective: &rig,
	}
}

func hasWarning(warnings []string, sub string) bool {
	for _, w := range warnings {
		if strings.Contains(w, sub) {
			return true
		}
	}
	return false
}

func TestAggregate_BasicTotals(t *testing.T) {
	profile := models.Profile{IncomeFloor: 10000}
	expenses := []*models.Expense{
		expense("rent", 2000, models.RigidityFixed, 40, models.IntentionEssential),
		expense("groceries", 1000, models.RigidityFlexible, 80, models.IntentionEssential),
		expense("streaming", 100, models.RigidityFlexible, 95, models.IntentionLeisure),
	}

	r := Aggregate(profile, expenses, testNow)

	assert.Equal(t, 3100.0, r.TotalExpenses)
	assert.Equal(t, 2000.0, r.FixedTotal)
	assert.Equal(t, 1100.0, r.FlexibleTotal)
	assert.Equal(t, 3000.0, r.EssentialsTotal)
	assert.Equal(t, 2000.0, r.FixedEssentialTotal)
	assert.Equal(t, 20.0, r.FixedPct)
	assert.Equal(t, 0.2, r.RigidityIndex)
	assert.Equal(t, models.ZoneOK, r.FixedZone.Level)
	assert.Equal(t, 3, r.ExpenseCount)
	assert.Equal(t, testNow, r.GeneratedAt)

	require.Contains(t, r.ByIntention, models.IntentionEssential)
	assert.Equal(t, 3000.0, r.ByIntention[models.IntentionEssential].Total)
	assert.Equal(t, 2000.0, r.ByIntention[models.IntentionEssential].Fixed)
	assert.Equal(t, 1000.0, r.ByIntention[models.IntentionEssential].Flexible)
}

func TestAggregate_UnclassifiedCountsAsFixed(t *testing.T) {
	profile := models.Profile{IncomeFloor: 1000}
	score := 80
	unclassified := &models.Expense{
		Attributes: models.ExpenseAttributes{Name: "mystery", Amount: 500, Intention: models.IntentionComfort},
		Score:      &score,
	}

	r := Aggregate(profile, []*models.Expense{unclassified}, testNow)

	assert.Equal(t, 500.0, r.FixedTotal)
	assert.Equal(t, 0.0, r.FlexibleTotal)
	assert.Equal(t, 1, r.UnclassifiedCount)
	assert.True(t, hasWarning(r.Warnings, `expense "mystery" has no stored classification`))
}

func TestAggregate_MissingScoreCounted(t *testing.T) {
	profile := models.Profile{IncomeFloor: 1000}
	rig := models.RigidityFlexible
	noScore := &models.Expense{
		Attributes:        models.ExpenseAttributes{Name: "legacy", Amount: 100, Intention: models.IntentionComfort},
		ComputedRigidity:  &rig,
		RigidityEffective: &rig,
	}

	r := Aggregate(profile, []*models.Expense{noScore}, testNow)

	assert.Equal(t, 1, r.MissingScoreCount)
	assert.Equal(t, 0, r.UnclassifiedCount)
	// The stored FLEXIBLE classification is respected even without a score.
	assert.Equal(t, 100.0, r.FlexibleTotal)
	assert.True(t, hasWarning(r.Warnings, "has no stored cancelability score"))
}

func TestAggregate_ZeroIncomeFloor(t *testing.T) {
	profile := models.Profile{IncomeFloor: 0, DebtService: 500}
	expenses := []*models.Expense{
		expense("rent", 2000, models.RigidityFixed, 40, models.IntentionEssential),
	}

	r := Aggregate(profile, expenses, testNow)

	assert.Equal(t, 0.0, r.FixedPct)
	assert.Equal(t, 0.0, r.RigidityIndex)
	require.Len(t, r.TopFixedExpenses, 1)
	assert.Nil(t, r.TopFixedExpenses[0].ImpactPct)
}

func TestAggregate_DSCR(t *testing.T) {
	tests := []struct {
		name           string
		profile        models.Profile
		expectNil      bool
		expectedStatus string
	}{
		{
			name:      "nil when debt service is zero",
			profile:   models.Profile{IncomeFloor: 5000},
			expectNil: true,
		},
		{
			name:           "critical below 1",
			profile:        models.Profile{IncomeFloor: 5000, DebtService: 4000},
			expectedStatus: models.DSCRCritical,
		},
		{
			name:           "tight between 1 and 1.5",
			profile:        models.Profile{IncomeFloor: 5000, DebtService: 2500},
			expectedStatus: models.DSCRTight,
		},
		{
			name:           "healthy at 1.5 and above",
			profile:        models.Profile{IncomeFloor: 6000, DebtService: 2000},
			expectedStatus: models.DSCRHealthy,
		},
	}

	expenses := []*models.Expense{
		expense("food", 2000, models.RigidityFixed, 30, models.IntentionEssential),
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Aggregate(tt.profile, expenses, testNow)
			if tt.expectNil {
				assert.Nil(t, r.DSCR)
				return
			}
			require.NotNil(t, r.DSCR)
			assert.Equal(t, tt.expectedStatus, r.DSCR.Status)
		})
	}
}

func TestAggregate_RunwayFallback(t *testing.T) {
	// No essential expense is FIXED: runway falls back to all essentials and
	// says so.
	profile := models.Profile{IncomeFloor: 5000, EmergencyReserve: 3000}
	expenses := []*models.Expense{
		expense("groceries", 1500, models.RigidityFlexible, 80, models.IntentionEssential),
	}

	r := Aggregate(profile, expenses, testNow)

	require.NotNil(t, r.RunwayMonths)
	assert.Equal(t, 2.0, *r.RunwayMonths)
	assert.True(t, hasWarning(r.Warnings, "runway computed against all essentials"))
	assert.True(t, hasWarning(r.Warnings, "emergency reserve covers only"))
}

func TestAggregate_RunwayNilWithoutEssentials(t *testing.T) {
	profile := models.Profile{IncomeFloor: 5000, EmergencyReserve: 10000}
	expenses := []*models.Expense{
		expense("gym", 100, models.RigidityFlexible, 90, models.IntentionComfort),
	}

	r := Aggregate(profile, expenses, testNow)
	assert.Nil(t, r.RunwayMonths)
}

func TestAggregate_AdaptiveLimit(t *testing.T) {
	tests := []struct {
		name     string
		profile  models.Profile
		expected float64
	}{
		{"base", models.Profile{}, 35},
		{"variable income", models.Profile{IncomeIsVariable: true}, 30},
		{"dependents subtract one point each", models.Profile{Dependents: 3}, 32},
		{"dependents capped at four", models.Profile{Dependents: 9}, 31},
		{"floor at 25", models.Profile{IncomeIsVariable: true, Dependents: 9}, 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Aggregate(tt.profile, nil, testNow)
			assert.Equal(t, tt.expected, r.AdaptiveLimitPct)
		})
	}
}

func TestAggregate_Zones(t *testing.T) {
	tests := []struct {
		name          string
		fixedAmount   float64
		expectedLevel string
		expectedLabel string
	}{
		{"ok below 30 percent", 2000, models.ZoneOK, "Healthy"},
		{"amarelo from 30 percent", 3000, models.ZoneAmarelo, "Attention"},
		{"vermelho from 40 percent", 4000, models.ZoneVermelho, "High Risk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := models.Profile{IncomeFloor: 10000}
			expenses := []*models.Expense{
				expense("rent", tt.fixedAmount, models.RigidityFixed, 45, models.IntentionEssential),
			}
			r := Aggregate(profile, expenses, testNow)
			assert.Equal(t, tt.expectedLevel, r.FixedZone.Level)
			assert.Equal(t, tt.expectedLabel, r.FixedZone.Label)
		})
	}
}

func TestAggregate_OverallRiskAccumulation(t *testing.T) {
	// Everything wrong at once: fixedPct >= 40 (+3), rigidityIndex >= 0.6
	// (+2), dscr < 1 (+3), runway < 3 (+2), above adaptive limit (+1).
	profile := models.Profile{
		IncomeFloor:      5000,
		DebtService:      3000,
		EmergencyReserve: 1000,
	}
	expenses := []*models.Expense{
		expense("rent", 2500, models.RigidityFixed, 35, models.IntentionEssential),
	}

	r := Aggregate(profile, expenses, testNow)

	assert.Equal(t, 11, r.OverallRiskScore)
	assert.Equal(t, models.ZoneVermelho, r.OverallRisk.Level)
	assert.Equal(t, "Critical", r.OverallRisk.Label)
	assert.True(t, r.AboveAdaptiveLimit)
}

func TestAggregate_HealthyProfile(t *testing.T) {
	profile := models.Profile{
		IncomeFloor:      10000,
		EmergencyReserve: 20000,
		DebtService:      1000,
	}
	expenses := []*models.Expense{
		expense("rent", 1400, models.RigidityFixed, 60, models.IntentionEssential),
		expense("fun", 500, models.RigidityFlexible, 95, models.IntentionLeisure),
	}

	r := Aggregate(profile, expenses, testNow)

	assert.Equal(t, models.ZoneOK, r.FixedZone.Level)
	assert.Equal(t, models.ZoneOK, r.OverallRisk.Level)
	assert.Equal(t, 0, r.OverallRiskScore)
	assert.False(t, r.AboveAdaptiveLimit)
	assert.Empty(t, r.FixedGrowthWarnings)
}

func TestAggregate_TopFixedExpenses(t *testing.T) {
	profile := models.Profile{IncomeFloor: 100000}
	var expenses []*models.Expense
	for i := 1; i <= 7; i++ {
		expenses = append(expenses,
			expense(fmt.Sprintf("exp-%d", i), float64(i*100), models.RigidityFixed, 50, models.IntentionComfort))
	}

	r := Aggregate(profile, expenses, testNow)

	require.Len(t, r.TopFixedExpenses, 5)
	assert.Equal(t, "exp-7", r.TopFixedExpenses[0].Name)
	assert.Equal(t, 700.0, r.TopFixedExpenses[0].Amount)
	assert.Equal(t, "exp-3", r.TopFixedExpenses[4].Name)
	require.NotNil(t, r.TopFixedExpenses[0].ImpactPct)
	assert.Equal(t, 0.7, *r.TopFixedExpenses[0].ImpactPct)
}

func TestAggregate_GrowthWarnings(t *testing.T) {
	profile := models.Profile{IncomeFloor: 10000}
	expenses := []*models.Expense{
		expense("rent", 4200, models.RigidityFixed, 45, models.IntentionEssential),
	}

	r := Aggregate(profile, expenses, testNow)

	require.Len(t, r.FixedGrowthWarnings, 2)
	assert.Contains(t, r.FixedGrowthWarnings[0], "critical threshold")
	assert.Contains(t, r.FixedGrowthWarnings[1], `largest fixed expense "rent"`)
}

func TestAggregate_LowScoreWarning(t *testing.T) {
	profile := models.Profile{IncomeFloor: 10000}
	expenses := []*models.Expense{
		expense("loan", 500, models.RigidityFixed, 20, models.IntentionEssential),
		expense("lease", 500, models.RigidityFixed, 39, models.IntentionEssential),
		expense("gym", 100, models.RigidityFlexible, 90, models.IntentionComfort),
	}

	r := Aggregate(profile, expenses, testNow)

	assert.Equal(t, 2, r.LowScoreCount)
	assert.True(t, hasWarning(r.Warnings, "2 expense(s) score below 40"))
}

func TestAggregate_EmptyExpenses(t *testing.T) {
	profile := models.Profile{IncomeFloor: 5000}

	r := Aggregate(profile, nil, testNow)

	assert.Equal(t, 0.0, r.TotalExpenses)
	assert.Equal(t, 0, r.ExpenseCount)
	assert.Equal(t, models.ZoneOK, r.FixedZone.Level)
	assert.Nil(t, r.DSCR)
	assert.Nil(t, r.RunwayMonths)
	assert.Empty(t, r.TopFixedExpenses)
}
