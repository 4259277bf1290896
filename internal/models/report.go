// Package models contains the monthly risk report and its component types.
// The report is a pure projection: it is recomputed on demand from the
// profile and the persisted classified expenses, never stored.
package models

import "time"

// Zone levels, ordered from healthy to critical.
const (
	ZoneOK       = "OK"
	ZoneAmarelo  = "AMARELO"
	ZoneVermelho = "VERMELHO"
)

// DSCR status values.
const (
	DSCRCritical = "critical"
	DSCRTight    = "tight"
	DSCRHealthy  = "healthy"
)

// Zone pairs a risk level with its display label.
type Zone struct {
	Level string `json:"level"`
	Label string `json:"label"`
}

// DSCRResult carries the debt-service coverage ratio. Present in the report
// only when the profile has a non-zero debt service.
type DSCRResult struct {
	Value  float64 `json:"value"`
	Status string  `json:"status"`
}

// IntentionBreakdown accumulates amounts for one spending intention.
type IntentionBreakdown struct {
	Total    float64 `json:"total"`
	Fixed    float64 `json:"fixed"`
	Flexible float64 `json:"flexible"`
}

// TopFixedExpense is one entry of the largest-fixed-expenses list.
// ImpactPct is nil when the profile has no income floor to compare against.
type TopFixedExpense struct {
	Name      string   `json:"name"`
	Amount    float64  `json:"amount"`
	ImpactPct *float64 `json:"impact_pct"`
}

// MonthlyRiskReport aggregates a user's profile and classified expenses into
// portfolio-level risk indicators. Percentages and months are rounded to one
// decimal for display, currency to two, the rigidity index to three; all
// threshold decisions are made on unrounded values.
type MonthlyRiskReport struct {
	TotalExpenses       float64                           `json:"total_expenses"`
	FixedTotal          float64                           `json:"fixed_total"`
	FlexibleTotal       float64                           `json:"flexible_total"`
	EssentialsTotal     float64                           `json:"essentials_total"`
	FixedEssentialTotal float64                           `json:"fixed_essential_total"`
	FixedPct            float64                           `json:"fixed_pct"`
	RigidityIndex       float64                           `json:"rigidity_index"`
	DSCR                *DSCRResult                       `json:"dscr"`
	RunwayMonths        *float64                          `json:"runway_months"`
	AdaptiveLimitPct    float64                           `json:"adaptive_limit_pct"`
	AboveAdaptiveLimit  bool                              `json:"above_adaptive_limit"`
	FixedZone           Zone                              `json:"fixed_zone"`
	OverallRisk         Zone                              `json:"overall_risk"`
	OverallRiskScore    int                               `json:"overall_risk_score"`
	ByIntention         map[Intention]*IntentionBreakdown `json:"by_intention"`
	TopFixedExpenses    []TopFixedExpense                 `json:"top_fixed_expenses"`
	FixedGrowthWarnings []string                          `json:"fixed_growth_warnings"`
	Warnings            []string                          `json:"warnings"`
	UnclassifiedCount   int                               `json:"unclassified_count"`
	MissingScoreCount   int                               `json:"missing_score_count"`
	LowScoreCount       int                               `json:"low_score_count"`
	ExpenseCount        int                               `json:"expense_count"`
	GeneratedAt         time.Time                         `json:"generated_at"`
}

// IncomeDropResult is the outcome of the income-drop stress test.
type IncomeDropResult struct {
	NewIncome      float64 `json:"new_income"`
	Deficit        float64 `json:"deficit"`
	Breaks         bool    `json:"breaks"`
	CoverageMonths float64 `json:"coverage_months"`
}

// GrowthProjection is the outcome of the compound-growth projector.
type GrowthProjection struct {
	Months           int     `json:"months"`
	FinalValue       float64 `json:"final_value"`
	TotalContributed float64 `json:"total_contributed"`
	TotalGains       float64 `json:"total_gains"`
	GainsPct         float64 `json:"gains_pct"`
}

// RiskAlert is published to the message broker when a monthly report lands in
// a non-healthy fixed-cost zone, and consumed by the alert-sender worker.
type RiskAlert struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Level    string  `json:"level"`
	FixedPct float64 `json:"fixed_pct"`
	Message  string  `json:"message"`
}
