// Package score implements the cancelability score of a single expense.
//
// An expense starts at 100 (trivially cancelable) and loses points for each
// signal that makes cancellation harder: remaining contract months, exit
// fees, legal bindings, essential obligations, low substitutability and long
// notice periods. Each penalty is capped independently. Two hard caps are
// applied after clamping and cannot be outscored: a legally linked expense
// never scores above 50 and an expense with contract months remaining never
// scores above 60.
package score

import (
	"math"

	"github.com/solvradar/solvency-radar/internal/models"
)

// Hard caps applied after the additive penalties.
const (
	LegalLinkCap = 50
	ContractCap  = 60
)

// Per-signal penalty caps.
const (
	contractPenaltyCap = 30
	feePenaltyCap      = 25
	substPenaltyCap    = 20
	noticePenaltyCap   = 10

	legalLinkPenalty = 20
	essentialPenalty = 15
)

// Compute maps normalized expense attributes to an integer score in [0,100].
// Pure and total: it never fails for valid attributes.
func Compute(attrs models.ExpenseAttributes) int {
	penalty := math.Min(float64(attrs.ContractMonthsRemaining)*2, contractPenaltyCap)
	penalty += math.Min(attrs.CancellationFeePct/4, feePenaltyCap)
	if attrs.HasLegalLink {
		penalty += legalLinkPenalty
	}
	if attrs.EssentialObligation {
		penalty += essentialPenalty
	}
	// Substitutability 5 is the neutral default; only below-neutral values
	// penalize.
	if attrs.Substitutability < 5 {
		penalty += math.Min(float64(10-attrs.Substitutability)*2, substPenaltyCap)
	}
	penalty += math.Min(float64(attrs.NoticeDays)/3, noticePenaltyCap)

	s := int(math.Round(100 - penalty))
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}

	// Hard caps take the minimum with the already-clamped value, so a high
	// raw score cannot mask a structural binding.
	if attrs.HasLegalLink && s > LegalLinkCap {
		s = LegalLinkCap
	}
	if attrs.ContractMonthsRemaining > 0 && s > ContractCap {
		s = ContractCap
	}
	return s
}
