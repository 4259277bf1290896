package rigidity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvradar/solvency-radar/internal/models"
)

func fixedClock() func() time.Time {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func override(r models.Rigidity) *models.Rigidity { return &r }

func TestClassify_ComputedRigidity(t *testing.T) {
	c := New(fixedClock())

	tests := []struct {
		name     string
		attrs    models.ExpenseAttributes
		expected models.Rigidity
	}{
		{
			name:     "no signals and high score is FLEXIBLE",
			attrs:    models.ExpenseAttributes{Substitutability: 5},
			expected: models.RigidityFlexible,
		},
		{
			name: "no signals but low score is FIXED",
			attrs: models.ExpenseAttributes{
				CancellationFeePct: 100,
				Substitutability:   0,
				NoticeDays:         29,
			},
			expected: models.RigidityFixed,
		},
		{
			name: "legal link forces FIXED",
			attrs: models.ExpenseAttributes{
				HasLegalLink:     true,
				Substitutability: 10,
			},
			expected: models.RigidityFixed,
		},
		{
			name: "essential obligation forces FIXED below the escape valve",
			attrs: models.ExpenseAttributes{
				EssentialObligation: true,
				Substitutability:    5,
				CancellationFeePct:  40,
			},
			expected: models.RigidityFixed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.attrs)
			assert.Equal(t, tt.expected, result.ComputedRigidity)
			assert.Equal(t, tt.expected, result.RigidityEffective)
		})
	}
}

func TestClassify_EscapeValve(t *testing.T) {
	c := New(fixedClock())

	// Long notice is a hard signal but not a strong one: with a score of 90
	// the classification escapes to FLEXIBLE with an explanatory warning.
	attrs := models.ExpenseAttributes{
		NoticeDays:       30,
		Substitutability: 10,
	}
	result := c.Classify(attrs)
	assert.Equal(t, 90, result.CancelabilityScore)
	assert.Equal(t, models.RigidityFlexible, result.ComputedRigidity)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "classified FLEXIBLE despite hard signals")
}

func TestClassify_EscapeValveBlockedByStrongSignals(t *testing.T) {
	c := New(fixedClock())

	// An active contract is a strong signal: no escape regardless of score.
	attrs := models.ExpenseAttributes{
		ContractMonthsRemaining: 1,
		Substitutability:        10,
	}
	result := c.Classify(attrs)
	assert.Equal(t, models.RigidityFixed, result.ComputedRigidity)
}

func TestClassify_OverrideDecisionTable(t *testing.T) {
	c := New(fixedClock())

	tests := []struct {
		name              string
		attrs             models.ExpenseAttributes
		expectedComputed  models.Rigidity
		expectedEffective models.Rigidity
		warningContains   string
	}{
		{
			name: "FIXED override always honored",
			attrs: models.ExpenseAttributes{
				Substitutability: 10,
				OverrideRigidity: override(models.RigidityFixed),
			},
			expectedComputed:  models.RigidityFlexible,
			expectedEffective: models.RigidityFixed,
		},
		{
			name: "FLEXIBLE override without reason is rejected",
			attrs: models.ExpenseAttributes{
				CancellationFeePct: 100,
				Substitutability:   0,
				NoticeDays:         29,
				OverrideRigidity:   override(models.RigidityFlexible),
			},
			expectedComputed:  models.RigidityFixed,
			expectedEffective: models.RigidityFixed,
			warningContains:   "justification of at least 8 characters",
		},
		{
			name: "FLEXIBLE override with short reason is rejected",
			attrs: models.ExpenseAttributes{
				CancellationFeePct: 100,
				Substitutability:   0,
				NoticeDays:         29,
				OverrideRigidity:   override(models.RigidityFlexible),
				OverrideReason:     "  short ",
			},
			expectedComputed:  models.RigidityFixed,
			expectedEffective: models.RigidityFixed,
			warningContains:   "justification of at least 8 characters",
		},
		{
			name: "FLEXIBLE override blocked by hard signals despite valid reason",
			attrs: models.ExpenseAttributes{
				HasLegalLink:     true,
				Substitutability: 10,
				OverrideRigidity: override(models.RigidityFlexible),
				OverrideReason:   "I can cancel this loan early without penalty",
			},
			expectedComputed:  models.RigidityFixed,
			expectedEffective: models.RigidityFixed,
			warningContains:   "blocked by hard signals: legal link",
		},
		{
			name: "FLEXIBLE override honored with valid reason and no hard signals",
			attrs: models.ExpenseAttributes{
				CancellationFeePct: 100,
				Substitutability:   0,
				NoticeDays:         29,
				OverrideRigidity:   override(models.RigidityFlexible),
				OverrideReason:     "shared family plan I can leave next month",
			},
			expectedComputed:  models.RigidityFixed,
			expectedEffective: models.RigidityFlexible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.attrs)
			assert.Equal(t, tt.expectedComputed, result.ComputedRigidity, "computed")
			assert.Equal(t, tt.expectedEffective, result.RigidityEffective, "effective")
			if tt.warningContains != "" {
				found := false
				for _, w := range result.Warnings {
					if strings.Contains(w, tt.warningContains) {
						found = true
					}
				}
				assert.True(t, found, "expected a warning containing %q, got %v", tt.warningContains, result.Warnings)
			}
		})
	}
}

func TestClassify_BlockedOverrideNamesAllSignals(t *testing.T) {
	c := New(fixedClock())

	attrs := models.ExpenseAttributes{
		HasLegalLink:            true,
		ContractMonthsRemaining: 6,
		EssentialObligation:     true,
		NoticeDays:              45,
		Substitutability:        5,
		OverrideRigidity:        override(models.RigidityFlexible),
		OverrideReason:          "a long and perfectly valid justification",
	}
	result := c.Classify(attrs)
	assert.Equal(t, models.RigidityFixed, result.RigidityEffective)

	found := ""
	for _, w := range result.Warnings {
		if strings.Contains(w, "blocked by hard signals") {
			found = w
		}
	}
	require.NotEmpty(t, found)
	assert.Contains(t, found, "legal link, active contract, essential obligation, long notice period")
}

func TestClassify_ContextualWarningsOrder(t *testing.T) {
	c := New(fixedClock())

	// Fee >= 50, contract >= 12 and substitutability <= 2 all fire, in the
	// documented order.
	attrs := models.ExpenseAttributes{
		ContractMonthsRemaining: 12,
		CancellationFeePct:      60,
		Substitutability:        1,
	}
	result := c.Classify(attrs)

	require.Len(t, result.Warnings, 3)
	assert.Contains(t, result.Warnings[0], "cancellation fee")
	assert.Contains(t, result.Warnings[1], "contract still binds for 12 months")
	assert.Contains(t, result.Warnings[2], "few substitutes")
}

func TestClassify_WorkedScenario(t *testing.T) {
	c := New(fixedClock())

	attrs := models.ExpenseAttributes{
		Amount:                  1000,
		ContractMonthsRemaining: 12,
		CancellationFeePct:      20,
		HasLegalLink:            true,
		Substitutability:        5,
	}
	result := c.Classify(attrs)

	assert.Equal(t, 50, result.CancelabilityScore)
	assert.Equal(t, models.RigidityFixed, result.ComputedRigidity)
	assert.Equal(t, models.RigidityFixed, result.RigidityEffective)
	// The legal cap was the binding constraint, so the cap warning fires.
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "contract still binds for 12 months")
	assert.Contains(t, result.Warnings[1], "score capped at 50 by the legal link")
}

func TestClassify_CapWarnings(t *testing.T) {
	c := New(fixedClock())

	// Contract cap binding: one remaining month, everything else favorable.
	attrs := models.ExpenseAttributes{
		ContractMonthsRemaining: 1,
		Substitutability:        10,
	}
	result := c.Classify(attrs)
	assert.Equal(t, 60, result.CancelabilityScore)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[len(result.Warnings)-1], "score capped at 60 by the remaining contract")
}

func TestClassify_Idempotent(t *testing.T) {
	c := New(fixedClock())

	attrs := models.ExpenseAttributes{
		ContractMonthsRemaining: 14,
		CancellationFeePct:      55,
		Substitutability:        2,
		OverrideRigidity:        override(models.RigidityFlexible),
		OverrideReason:          "renegotiated contract allows early exit",
	}

	first := c.Classify(attrs)
	second := c.Classify(attrs)
	assert.Equal(t, first, second)
}

func TestClassify_DeterministicTimestamp(t *testing.T) {
	ts := time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)
	c := New(func() time.Time { return ts })

	result := c.Classify(models.ExpenseAttributes{Substitutability: 5})
	assert.Equal(t, ts, result.ComputedAt)
}
