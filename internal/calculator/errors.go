package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// Reason is a machine-distinguishable rejection code. These values are part
// of the API contract and are surfaced verbatim to callers.
type Reason string

const (
	ReasonNonPositiveAmount Reason = "non-positive-amount"
	ReasonEmptySet          Reason = "empty-set"
	ReasonInvalidMember     Reason = "invalid-member"
	ReasonPaymentMismatch   Reason = "payment-mismatch"
	ReasonSplitMismatch     Reason = "split-mismatch"
	ReasonPercentageError   Reason = "percentage-error"
)

// ValidationError is a rejection from the split validator. It carries the
// failed rule plus the computed totals needed to render a precise message;
// rejections are terminal for the operation and never coerced to a guess.
type ValidationError struct {
	Reason Reason

	// Set names the empty collection for ReasonEmptySet ("payers" or
	// "participants").
	Set string

	// Members lists the offending names for ReasonInvalidMember.
	Members []models.MemberName

	// Duplicate marks ReasonInvalidMember rejections where a name was
	// listed more than once in the payer or participant set, rather than
	// missing from the group.
	Duplicate bool

	// Member is the participant whose derived share disagreed, for
	// per-participant ReasonSplitMismatch rejections.
	Member models.MemberName

	// Got and Want carry the computed and expected amounts for mismatch
	// reasons.
	Got  money.Cents
	Want money.Cents

	// PercentSum is the actual percentage total for ReasonPercentageError.
	PercentSum decimal.Decimal
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonNonPositiveAmount:
		return fmt.Sprintf("amount (%s) must be greater than zero", e.Got)
	case ReasonEmptySet:
		return fmt.Sprintf("expense must have at least one of: %s", e.Set)
	case ReasonInvalidMember:
		names := make([]string, len(e.Members))
		for i, m := range e.Members {
			names[i] = m.String()
		}
		if e.Duplicate {
			return fmt.Sprintf("listed more than once: %s", strings.Join(names, ", "))
		}
		if len(names) == 0 {
			return "not a member of this group"
		}
		return fmt.Sprintf("not a member of this group: %s", strings.Join(names, ", "))
	case ReasonPaymentMismatch:
		return fmt.Sprintf("total paid (%s) must equal total amount (%s)", e.Got, e.Want)
	case ReasonSplitMismatch:
		if e.Member != "" {
			return fmt.Sprintf("share for %s (%s) must equal derived amount (%s)", e.Member, e.Got, e.Want)
		}
		return fmt.Sprintf("total split (%s) must equal total amount (%s)", e.Got, e.Want)
	case ReasonPercentageError:
		return fmt.Sprintf("percentages must sum to 100, got %s", e.PercentSum)
	}
	return string(e.Reason)
}
