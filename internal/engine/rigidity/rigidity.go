// Package rigidity derives the FIXED/FLEXIBLE classification of an expense
// from its cancelability score, its hard signals and an optional user
// override.
//
// The decision runs as an explicit two-step state machine so the anti-bypass
// invariant stays auditable: step 1 computes the system's unbiased
// classification with the override ignored, step 2 applies the override under
// the anti-bypass rules. A user may always tighten the classification to
// FIXED; loosening it to FLEXIBLE requires a justified reason and is refused
// outright while hard signals are present. Contextual advisory warnings are
// appended last, in a fixed order.
package rigidity

import (
	"fmt"
	"strings"
	"time"

	"github.com/solvradar/solvency-radar/internal/engine/score"
	"github.com/solvradar/solvency-radar/internal/models"
)

// FlexibleThreshold is the score below which an expense without hard signals
// is still classified FIXED.
const FlexibleThreshold = 55

// EscapeValveScore is the score at or above which hard signals other than a
// legal link or an active contract no longer force a FIXED classification.
const EscapeValveScore = 90

// minOverrideReasonLen is the minimum trimmed length of the justification
// required for a FLEXIBLE override.
const minOverrideReasonLen = 8

// longNoticeDays is the notice period from which cancellation is considered
// structurally constrained (a hard signal).
const longNoticeDays = 30

// Classifier turns expense attributes into a persisted ScoreResult. The
// clock is injected so the audit timestamp is deterministic in tests.
type Classifier struct {
	now func() time.Time
}

// New builds a Classifier. A nil clock falls back to time.Now.
func New(now func() time.Time) *Classifier {
	if now == nil {
		now = time.Now
	}
	return &Classifier{now: now}
}

// hardSignals lists the attributes that structurally limit cancelability,
// regardless of the numeric score. Order matters: it is the order signals are
// named in warnings.
func hardSignals(attrs models.ExpenseAttributes) []string {
	var signals []string
	if attrs.HasLegalLink {
		signals = append(signals, "legal link")
	}
	if attrs.ContractMonthsRemaining > 0 {
		signals = append(signals, "active contract")
	}
	if attrs.EssentialObligation {
		signals = append(signals, "essential obligation")
	}
	if attrs.NoticeDays >= longNoticeDays {
		signals = append(signals, "long notice period")
	}
	return signals
}

// strongSignals reports whether a legal link or an active contract is
// present. These two cannot be escaped even by a score of 90 or more.
func strongSignals(attrs models.ExpenseAttributes) bool {
	return attrs.HasLegalLink || attrs.ContractMonthsRemaining > 0
}

// Classify scores the attributes and derives both classifications. Total
// over valid attributes: it never fails, all problems surface as warnings.
func (c *Classifier) Classify(attrs models.ExpenseAttributes) models.ScoreResult {
	s := score.Compute(attrs)
	warnings := []string{}

	signals := hardSignals(attrs)

	// Step 1: unbiased classification, override ignored.
	var computed models.Rigidity
	switch {
	case len(signals) > 0 && s >= EscapeValveScore && !strongSignals(attrs):
		computed = models.RigidityFlexible
		warnings = append(warnings, fmt.Sprintf(
			"classified FLEXIBLE despite hard signals: score %d is high and no legal or contract binding exists", s))
	case len(signals) > 0:
		computed = models.RigidityFixed
	case s < FlexibleThreshold:
		computed = models.RigidityFixed
	default:
		computed = models.RigidityFlexible
	}

	// Step 2: apply the override under the anti-bypass rules.
	effective := computed
	if attrs.OverrideRigidity != nil {
		switch *attrs.OverrideRigidity {
		case models.RigidityFixed:
			// Tightening is always honored.
			effective = models.RigidityFixed
		case models.RigidityFlexible:
			switch {
			case len(strings.TrimSpace(attrs.OverrideReason)) < minOverrideReasonLen:
				warnings = append(warnings,
					"FLEXIBLE override rejected: a justification of at least 8 characters is required")
			case len(signals) > 0:
				warnings = append(warnings, fmt.Sprintf(
					"FLEXIBLE override blocked by hard signals: %s", strings.Join(signals, ", ")))
				effective = models.RigidityFixed
			default:
				effective = models.RigidityFlexible
			}
		}
	}

	// Step 3: contextual warnings, fixed order, independent of the steps above.
	if attrs.CancellationFeePct >= 50 {
		warnings = append(warnings, fmt.Sprintf(
			"cancellation fee of %.1f%% makes early exit expensive", attrs.CancellationFeePct))
	}
	if attrs.ContractMonthsRemaining >= 12 {
		warnings = append(warnings, fmt.Sprintf(
			"contract still binds for %d months", attrs.ContractMonthsRemaining))
	}
	if attrs.Substitutability <= 2 {
		warnings = append(warnings, "few substitutes available for this expense")
	}
	if attrs.HasLegalLink && s == score.LegalLinkCap {
		warnings = append(warnings, fmt.Sprintf("score capped at %d by the legal link", score.LegalLinkCap))
	}
	if attrs.ContractMonthsRemaining > 0 && s == score.ContractCap {
		warnings = append(warnings, fmt.Sprintf("score capped at %d by the remaining contract", score.ContractCap))
	}

	return models.ScoreResult{
		CancelabilityScore: s,
		ComputedRigidity:   computed,
		RigidityEffective:  effective,
		Warnings:           warnings,
		ComputedAt:         c.now().UTC(),
	}
}
