// Package simulate holds the two closed-form what-if calculators: the
// income-drop stress test and the compound-growth projector. Both are pure
// functions over in-memory values; they reject out-of-range scenario
// parameters with InvalidInput and never fail otherwise.
package simulate

import (
	"math"

	"github.com/solvradar/solvency-radar/internal/models"
)

// IncomeDrop stress-tests the fixed-cost total against a hypothetical income
// reduction. dropPct is a fraction in [0,1]: 0.3 means a 30% drop.
func IncomeDrop(profile models.Profile, fixedTotal, dropPct float64) (*models.IncomeDropResult, error) {
	if dropPct < 0 || dropPct > 1 {
		return nil, models.NewInvalidInput("drop_pct", "must be between 0 and 1")
	}

	newIncome := profile.IncomeFloor * (1 - dropPct)
	deficit := fixedTotal - newIncome

	coverage := 0.0
	if newIncome > 0 && fixedTotal > 0 {
		coverage = newIncome / fixedTotal
	}

	return &models.IncomeDropResult{
		NewIncome:      round2(newIncome),
		Deficit:        round2(deficit),
		Breaks:         deficit > 0,
		CoverageMonths: round1(coverage),
	}, nil
}

// Growth projects how many months of compound monthly contributions are
// needed to reach the target. The annual rate is converted to a monthly rate
// via (1+annual/100)^(1/12)-1; with a zero rate the projection degrades to
// plain division, otherwise the future-value-of-annuity equation is solved
// for the month count.
func Growth(monthlyContribution, annualReturnPct, target float64) (*models.GrowthProjection, error) {
	if monthlyContribution <= 0 {
		return nil, models.NewInvalidInput("monthly_contribution", "must be greater than 0")
	}
	if annualReturnPct < 0 || annualReturnPct > 100 {
		return nil, models.NewInvalidInput("annual_return_pct", "must be between 0 and 100")
	}
	if target <= 0 {
		return nil, models.NewInvalidInput("target", "must be greater than 0")
	}

	rate := math.Pow(1+annualReturnPct/100, 1.0/12) - 1

	var months int
	var finalValue float64
	if rate == 0 {
		months = int(math.Ceil(target / monthlyContribution))
		finalValue = monthlyContribution * float64(months)
	} else {
		months = int(math.Ceil(math.Log(1+target*rate/monthlyContribution) / math.Log(1+rate)))
		finalValue = monthlyContribution * (math.Pow(1+rate, float64(months)) - 1) / rate
	}

	totalContributed := monthlyContribution * float64(months)
	totalGains := finalValue - totalContributed

	return &models.GrowthProjection{
		Months:           months,
		FinalValue:       round2(finalValue),
		TotalContributed: round2(totalContributed),
		TotalGains:       round2(totalGains),
		GainsPct:         round2(totalGains / totalContributed * 100),
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
