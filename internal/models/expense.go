package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/money"
)

// SplitType is the rule used to derive per-participant share amounts.
type SplitType string

const (
	// SplitEqual divides the amount evenly across participants.
	SplitEqual SplitType = "equal"
	// SplitUnequal uses explicit per-participant amounts.
	SplitUnequal SplitType = "unequal"
	// SplitPercentage derives amounts from per-participant percentages.
	SplitPercentage SplitType = "percentage"
	// SplitShares derives amounts from per-participant share weights.
	SplitShares SplitType = "shares"
)

// ParseSplitType validates a split type string.
func ParseSplitType(s string) (SplitType, error) {
	switch SplitType(s) {
	case SplitEqual, SplitUnequal, SplitPercentage, SplitShares:
		return SplitType(s), nil
	}
	return "", fmt.Errorf("unknown split type %q", s)
}

// PayerShare records how much one member contributed toward an expense.
type PayerShare struct {
	Member MemberName
	Amount money.Cents
}

// ParticipantShare records how much of an expense one member owes, plus the
// percentage or share weight it was derived from when the split type uses
// them.
type ParticipantShare struct {
	Member MemberName

	// Amount is this participant's share of the expense total.
	Amount money.Cents

	// Percentage is set for percentage splits (0-100).
	Percentage decimal.Decimal

	// ShareUnits is the positive weight for shares splits.
	ShareUnits decimal.Decimal
}

// Expense represents one shared cost. Expenses are append-only: there is no
// update or delete, only whole-group deletion once balances are settled.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// Description is the human-readable name for the expense.
	Description string

	// Amount is the total cost in minor units.
	Amount money.Cents

	// SplitType determines which validation rule applies to Splits.
	SplitType SplitType

	// PaidBy lists who contributed money; the amounts sum to Amount.
	PaidBy []PayerShare

	// Splits lists who owes a share; the amounts sum to Amount.
	Splits []ParticipantShare

	// Date is the Unix timestamp of when the cost was incurred.
	Date int64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// TotalPaid sums the payer contributions.
func (e *Expense) TotalPaid() money.Cents {
	var sum money.Cents
	for _, p := range e.PaidBy {
		sum += p.Amount
	}
	return sum
}

// TotalShares sums the participant share amounts.
func (e *Expense) TotalShares() money.Cents {
	var sum money.Cents
	for _, s := range e.Splits {
		sum += s.Amount
	}
	return sum
}
