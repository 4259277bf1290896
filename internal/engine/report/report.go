// Package report aggregates a user's profile and persisted classified
// expenses into the monthly risk report.
//
// The aggregator never re-derives rigidity from the score: each expense
// carries its stored classification and the classifier remains the single
// authority. A row with a missing classification is counted as FIXED — a
// partially migrated or corrupted record must never silently lower the
// perceived risk.
package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/solvradar/solvency-radar/internal/models"
)

// Fixed-cost zone thresholds, in percent of the income floor.
const (
	vermelhoPct = 40
	amareloPct  = 30
)

// Risk thresholds for the remaining metrics.
const (
	rigidityHigh     = 0.6
	rigidityElevated = 0.45
	dscrTight        = 1.5
	runwayCritical   = 3
	runwayLow        = 6
	lowScoreCutoff   = 40
	largeFixedPct    = 15
)

// Overall risk score mapping.
const (
	overallVermelhoScore = 5
	overallAmareloScore  = 2
)

type fixedCandidate struct {
	name   string
	amount float64
}

// Aggregate computes the monthly risk report. Pure and total: business edge
// cases (zero income, zero debt, empty expense set) produce zero or nil
// fields plus warnings, never errors.
func Aggregate(profile models.Profile, expenses []*models.Expense, now time.Time) models.MonthlyRiskReport {
	var (
		totalExpenses       float64
		fixedTotal          float64
		flexibleTotal       float64
		essentialsTotal     float64
		fixedEssentialTotal float64
		unclassified        int
		missingScore        int
		lowScore            int
	)
	warnings := []string{}
	byIntention := make(map[models.Intention]*models.IntentionBreakdown)
	var candidates []fixedCandidate

	for _, e := range expenses {
		amount := e.Attributes.Amount
		totalExpenses += amount

		effective := models.RigidityFixed
		if e.RigidityEffective == nil {
			unclassified++
			warnings = append(warnings, fmt.Sprintf(
				"expense %q has no stored classification and was counted as FIXED", e.Attributes.Name))
		} else {
			effective = *e.RigidityEffective
		}
		if e.Score == nil {
			missingScore++
			warnings = append(warnings, fmt.Sprintf(
				"expense %q has no stored cancelability score", e.Attributes.Name))
		} else if *e.Score < lowScoreCutoff {
			lowScore++
		}

		fixed := effective == models.RigidityFixed
		if fixed {
			fixedTotal += amount
			candidates = append(candidates, fixedCandidate{name: e.Attributes.Name, amount: amount})
		} else {
			flexibleTotal += amount
		}

		if e.Attributes.Intention == models.IntentionEssential {
			essentialsTotal += amount
			if fixed {
				fixedEssentialTotal += amount
			}
		}

		b, ok := byIntention[e.Attributes.Intention]
		if !ok {
			b = &models.IntentionBreakdown{}
			byIntention[e.Attributes.Intention] = b
		}
		b.Total += amount
		if fixed {
			b.Fixed += amount
		} else {
			b.Flexible += amount
		}
	}

	// Derived metrics on unrounded values; rounding happens only when the
	// report struct is filled in.
	var fixedPct, rigidityIndex float64
	if profile.IncomeFloor > 0 {
		fixedPct = fixedTotal / profile.IncomeFloor * 100
		rigidityIndex = (fixedTotal + profile.DebtService) / profile.IncomeFloor
	}

	var dscr *models.DSCRResult
	var dscrRaw float64
	if profile.DebtService > 0 {
		dscrRaw = (profile.IncomeFloor - essentialsTotal) / profile.DebtService
		status := models.DSCRHealthy
		switch {
		case dscrRaw < 1:
			status = models.DSCRCritical
			warnings = append(warnings, "debt service coverage is critical: essentials and debt exceed income")
		case dscrRaw < dscrTight:
			status = models.DSCRTight
			warnings = append(warnings, "debt service coverage is tight: little margin after essentials")
		}
		dscr = &models.DSCRResult{Value: round2(dscrRaw), Status: status}
	}

	runwayBase := fixedEssentialTotal
	if runwayBase == 0 && essentialsTotal > 0 {
		runwayBase = essentialsTotal
		warnings = append(warnings, "runway computed against all essentials: no essential expense is classified FIXED")
	}
	var runway *float64
	var runwayRaw float64
	if runwayBase > 0 {
		runwayRaw = profile.EmergencyReserve / runwayBase
		r := round1(runwayRaw)
		runway = &r
		if runwayRaw < runwayCritical {
			warnings = append(warnings, fmt.Sprintf(
				"emergency reserve covers only %.1f months of essential fixed spending", runwayRaw))
		}
	}

	adaptiveLimit := adaptiveLimitPct(profile)
	aboveLimit := fixedPct > adaptiveLimit
	if aboveLimit {
		warnings = append(warnings, fmt.Sprintf(
			"fixed costs at %.1f%% exceed the personalized limit of %.0f%%", fixedPct, adaptiveLimit))
	}

	fixedZone := zoneFor(fixedPct)
	switch fixedZone.Level {
	case models.ZoneVermelho:
		warnings = append(warnings, "fixed-cost zone VERMELHO: high insolvency risk")
	case models.ZoneAmarelo:
		warnings = append(warnings, "fixed-cost zone AMARELO: fixed costs need attention")
	}

	if lowScore > 0 {
		warnings = append(warnings, fmt.Sprintf(
			"%d expense(s) score below %d and would be hard to cancel in a crisis", lowScore, lowScoreCutoff))
	}

	riskScore := overallRiskScore(fixedPct, rigidityIndex, dscr != nil, dscrRaw, runway != nil, runwayRaw, aboveLimit)

	return models.MonthlyRiskReport{
		TotalExpenses:       round2(totalExpenses),
		FixedTotal:          round2(fixedTotal),
		FlexibleTotal:       round2(flexibleTotal),
		EssentialsTotal:     round2(essentialsTotal),
		FixedEssentialTotal: round2(fixedEssentialTotal),
		FixedPct:            round1(fixedPct),
		RigidityIndex:       round3(rigidityIndex),
		DSCR:                dscr,
		RunwayMonths:        runway,
		AdaptiveLimitPct:    adaptiveLimit,
		AboveAdaptiveLimit:  aboveLimit,
		FixedZone:           fixedZone,
		OverallRisk:         overallZone(riskScore),
		OverallRiskScore:    riskScore,
		ByIntention:         roundBreakdown(byIntention),
		TopFixedExpenses:    topFixed(candidates, profile.IncomeFloor),
		FixedGrowthWarnings: growthWarnings(fixedPct, candidates, profile.IncomeFloor),
		Warnings:            warnings,
		UnclassifiedCount:   unclassified,
		MissingScoreCount:   missingScore,
		LowScoreCount:       lowScore,
		ExpenseCount:        len(expenses),
		GeneratedAt:         now.UTC(),
	}
}

// adaptiveLimitPct computes the personalized fixed-cost ceiling: a 35% base,
// minus 5 points for variable income, minus one point per dependent up to 4,
// clamped to [25,38].
func adaptiveLimitPct(profile models.Profile) float64 {
	limit := 35.0
	if profile.IncomeIsVariable {
		limit -= 5
	}
	limit -= math.Min(float64(profile.Dependents), 4)
	if limit < 25 {
		limit = 25
	}
	if limit > 38 {
		limit = 38
	}
	return limit
}

func zoneFor(fixedPct float64) models.Zone {
	switch {
	case fixedPct >= vermelhoPct:
		return models.Zone{Level: models.ZoneVermelho, Label: "High Risk"}
	case fixedPct >= amareloPct:
		return models.Zone{Level: models.ZoneAmarelo, Label: "Attention"}
	default:
		return models.Zone{Level: models.ZoneOK, Label: "Healthy"}
	}
}

func overallRiskScore(fixedPct, rigidityIndex float64, hasDSCR bool, dscrRaw float64, hasRunway bool, runwayRaw float64, aboveLimit bool) int {
	score := 0
	switch {
	case fixedPct >= vermelhoPct:
		score += 3
	case fixedPct >= amareloPct:
		score++
	}
	switch {
	case rigidityIndex >= rigidityHigh:
		score += 2
	case rigidityIndex >= rigidityElevated:
		score++
	}
	if hasDSCR {
		switch {
		case dscrRaw < 1:
			score += 3
		case dscrRaw < dscrTight:
			score++
		}
	}
	if hasRunway {
		switch {
		case runwayRaw < runwayCritical:
			score += 2
		case runwayRaw < runwayLow:
			score++
		}
	}
	if aboveLimit {
		score++
	}
	return score
}

func overallZone(score int) models.Zone {
	switch {
	case score >= overallVermelhoScore:
		return models.Zone{Level: models.ZoneVermelho, Label: "Critical"}
	case score >= overallAmareloScore:
		return models.Zone{Level: models.ZoneAmarelo, Label: "Attention Needed"}
	default:
		return models.Zone{Level: models.ZoneOK, Label: "Healthy"}
	}
}

// topFixed returns the five largest fixed expenses, amount descending, each
// with its share of the income floor (nil when there is no income floor).
func topFixed(candidates []fixedCandidate, incomeFloor float64) []models.TopFixedExpense {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].amount > candidates[j].amount
	})
	top := []models.TopFixedExpense{}
	for i, c := range candidates {
		if i == 5 {
			break
		}
		entry := models.TopFixedExpense{Name: c.name, Amount: round2(c.amount)}
		if incomeFloor > 0 {
			impact := round1(c.amount / incomeFloor * 100)
			entry.ImpactPct = &impact
		}
		top = append(top, entry)
	}
	return top
}

// growthWarnings emits threshold-crossing alerts for the fixed-cost
// percentage and flags a single dominant fixed expense.
func growthWarnings(fixedPct float64, candidates []fixedCandidate, incomeFloor float64) []string {
	alerts := []string{}
	switch {
	case fixedPct >= vermelhoPct:
		alerts = append(alerts, fmt.Sprintf(
			"fixed costs crossed the %d%% critical threshold", vermelhoPct))
	case fixedPct >= amareloPct:
		alerts = append(alerts, fmt.Sprintf(
			"fixed costs crossed the %d%% attention threshold", amareloPct))
	}
	if incomeFloor > 0 {
		var largest fixedCandidate
		for _, c := range candidates {
			if c.amount > largest.amount {
				largest = c
			}
		}
		if pct := largest.amount / incomeFloor * 100; pct > largeFixedPct {
			alerts = append(alerts, fmt.Sprintf(
				"largest fixed expense %q alone consumes %.1f%% of income", largest.name, pct))
		}
	}
	return alerts
}

func roundBreakdown(byIntention map[models.Intention]*models.IntentionBreakdown) map[models.Intention]*models.IntentionBreakdown {
	for _, b := range byIntention {
		b.Total = round2(b.Total)
		b.Fixed = round2(b.Fixed)
		b.Flexible = round2(b.Flexible)
	}
	return byIntention
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
