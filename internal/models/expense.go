// Package models contains the domain structures for expenses, their
// cancelability scoring results, user profiles and the monthly risk report,
// plus the raw request types used to receive data from JSON requests.
package models

import "time"

// Intention describes what an expense is spent on. It is used only for the
// per-category breakdown in the monthly report, never for scoring.
type Intention string

// Spending intention constants.
const (
	IntentionEssential Intention = "ESSENTIAL"
	IntentionComfort   Intention = "COMFORT"
	IntentionGrowth    Intention = "GROWTH"
	IntentionWealth    Intention = "WEALTH"
	IntentionLeisure   Intention = "LEISURE"
)

// Rigidity is the binary classification of an expense: FIXED means the user
// must keep paying it, FLEXIBLE means it can be cut.
type Rigidity string

// Rigidity constants.
const (
	RigidityFixed    Rigidity = "FIXED"
	RigidityFlexible Rigidity = "FLEXIBLE"
)

// ExpenseAttributes is the normalized set of attributes of a single recurring
// expense, as consumed by the scoring engine. Produced from a RawExpense by
// the expense service; all defaults are already applied and all bounds hold.
type ExpenseAttributes struct {
	Name                    string    // Non-empty label, trimmed
	Amount                  float64   // Monthly amount, >= 0
	Intention               Intention // Spending purpose, breakdown only
	ContractMonthsRemaining int       // Months left on a binding contract, >= 0
	NoticeDays              int       // Required cancellation notice, >= 0
	CancellationFeePct      float64   // Early-exit penalty, [0,100]
	HasLegalLink            bool      // Formal legal/financial binding (loan, lease)
	EssentialObligation     bool      // Non-discretionary (e.g. child support)
	Substitutability        int       // Ease of replacement, [0,10], 10 = trivial
	OverrideRigidity        *Rigidity // User-requested classification, nil when absent
	OverrideReason          string    // Required (>= 8 chars trimmed) for a FLEXIBLE override
}

// RawExpense receives one expense's attributes from a JSON request before
// normalization. Optional numeric fields are pointers so that absent and zero
// can be told apart when defaults are applied.
type RawExpense struct {
	Name                    string   `json:"name" validate:"required"`
	Amount                  *float64 `json:"amount" validate:"required,gte=0"`
	Intention               string   `json:"intention" validate:"omitempty,oneof=ESSENTIAL COMFORT GROWTH WEALTH LEISURE"`
	ContractMonthsRemaining *int     `json:"contract_months_remaining" validate:"omitempty,gte=0"`
	NoticeDays              *int     `json:"notice_days" validate:"omitempty,gte=0"`
	CancellationFeePct      *float64 `json:"cancellation_fee_pct" validate:"omitempty,gte=0,lte=100"`
	HasLegalLink            *bool    `json:"has_legal_link"`
	EssentialObligation     *bool    `json:"essential_obligation"`
	Substitutability        *int     `json:"substitutability" validate:"omitempty,gte=0,lte=10"`
	OverrideRigidity        *string  `json:"override_rigidity" validate:"omitempty,oneof=FIXED FLEXIBLE"`
	OverrideReason          string   `json:"override_reason"`
}

// ScoreResult is the outcome of scoring and classifying one expense. It is
// persisted alongside the expense and never recomputed during aggregation:
// the classifier is the single authority for a given expense.
type ScoreResult struct {
	CancelabilityScore int       `json:"cancelability_score"` // [0,100], lower = harder to cancel
	ComputedRigidity   Rigidity  `json:"computed_rigidity"`   // system classification, override ignored
	RigidityEffective  Rigidity  `json:"rigidity_effective"`  // classification used downstream
	Warnings           []string  `json:"warnings"`            // advisory texts, insertion order significant
	ComputedAt         time.Time `json:"computed_at"`         // audit trail
}

// Expense is a persisted expense record: the normalized attributes plus the
// stored score result. The score fields are pointers because legacy or
// partially migrated rows may lack them; the aggregator treats a missing
// classification as FIXED (anti-bypass) rather than inferring FLEXIBLE.
type Expense struct {
	ID                int               `json:"id"`
	Username          string            `json:"-"`
	Attributes        ExpenseAttributes `json:"attributes"`
	Score             *int              `json:"cancelability_score"`
	ComputedRigidity  *Rigidity         `json:"computed_rigidity"`
	RigidityEffective *Rigidity         `json:"rigidity_effective"`
	Warnings          []string          `json:"warnings"`
	ComputedAt        *time.Time        `json:"computed_at"`
}
