// Package calculator implements the split validator and the balance engine.
// Both are pure functions over a snapshot of (group, expenses) supplied by
// the caller; they hold no state and do no I/O.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// PercentTolerance is the maximum deviation, in percentage points, allowed
// between a percentage split's sum and 100.
var PercentTolerance = decimal.NewFromFloat(0.1)

var oneHundred = decimal.NewFromInt(100)

// ValidateExpense checks a candidate expense against the group's current
// member set and the method-specific split rules. It returns nil when the
// expense is internally consistent, or a *ValidationError naming the failed
// rule and the computed totals. It is the single authoritative check;
// client-derived share amounts are re-derived here and never trusted.
func ValidateExpense(group *models.Group, e *models.Expense) error {
	if e.Amount <= 0 {
		return &ValidationError{Reason: ReasonNonPositiveAmount, Got: e.Amount}
	}
	if len(e.PaidBy) == 0 {
		return &ValidationError{Reason: ReasonEmptySet, Set: "payers"}
	}
	if len(e.Splits) == 0 {
		return &ValidationError{Reason: ReasonEmptySet, Set: "participants"}
	}

	if err := checkMembership(group, e); err != nil {
		return err
	}

	if paid := e.TotalPaid(); !money.WithinTolerance(paid, e.Amount) {
		return &ValidationError{Reason: ReasonPaymentMismatch, Got: paid, Want: e.Amount}
	}
	if split := e.TotalShares(); !money.WithinTolerance(split, e.Amount) {
		return &ValidationError{Reason: ReasonSplitMismatch, Got: split, Want: e.Amount}
	}

	switch e.SplitType {
	case models.SplitEqual:
		return checkEqualSplit(e)
	case models.SplitPercentage:
		return checkPercentageSplit(e)
	case models.SplitShares:
		return checkSharesSplit(e)
	}
	// Unequal splits carry explicit amounts; the sum checks above are the
	// whole rule.
	return nil
}

// checkMembership verifies every payer and participant name against the
// group's stored member strings (exact match), and that no name appears
// twice within the payer list or within the participant list. All
// offenders are collected so the rejection can name each of them.
func checkMembership(group *models.Group, e *models.Expense) error {
	members := group.MemberSet()
	var invalid, duplicated []models.MemberName
	flagged := make(map[models.MemberName]bool)
	duped := make(map[models.MemberName]bool)

	scan := func(name models.MemberName, seen map[models.MemberName]bool) {
		if seen[name] && !duped[name] {
			duplicated = append(duplicated, name)
			duped[name] = true
		}
		seen[name] = true
		if !members[name] && !flagged[name] {
			invalid = append(invalid, name)
			flagged[name] = true
		}
	}

	// A member may be both a payer and a participant, so each list gets
	// its own seen set.
	payerSeen := make(map[models.MemberName]bool, len(e.PaidBy))
	for _, p := range e.PaidBy {
		scan(p.Member, payerSeen)
	}
	splitSeen := make(map[models.MemberName]bool, len(e.Splits))
	for _, s := range e.Splits {
		scan(s.Member, splitSeen)
	}

	if len(invalid) > 0 {
		return &ValidationError{Reason: ReasonInvalidMember, Members: invalid}
	}
	if len(duplicated) > 0 {
		return &ValidationError{Reason: ReasonInvalidMember, Members: duplicated, Duplicate: true}
	}
	return nil
}

// checkEqualSplit verifies each share is amount/count up to the remainder
// cent. The sum is already known to match, so each share may sit one cent
// either side of the integer base depending on how the client assigned the
// remainder.
func checkEqualSplit(e *models.Expense) error {
	n := money.Cents(len(e.Splits))
	base := e.Amount / n
	var extra money.Cents
	if e.Amount%n != 0 {
		extra = 1
	}
	for _, s := range e.Splits {
		if s.Amount < base-money.Tolerance || s.Amount > base+extra+money.Tolerance {
			return &ValidationError{
				Reason: ReasonSplitMismatch,
				Member: s.Member,
				Got:    s.Amount,
				Want:   base,
			}
		}
	}
	return nil
}

// checkPercentageSplit verifies the percentages sum to 100 within
// PercentTolerance. The share amounts themselves are already covered by the
// sum check; user-entered percentages legitimately round a hair off 100
// (33.33 three ways), so per-share re-derivation would reject valid input.
func checkPercentageSplit(e *models.Expense) error {
	sum := decimal.Zero
	for _, s := range e.Splits {
		sum = sum.Add(s.Percentage)
	}
	if sum.Sub(oneHundred).Abs().GreaterThan(PercentTolerance) {
		return &ValidationError{Reason: ReasonPercentageError, PercentSum: sum}
	}
	return nil
}

// checkSharesSplit re-derives each share as amount * units / totalUnits and
// checks the submitted amounts against the derivation.
func checkSharesSplit(e *models.Expense) error {
	weights := make([]decimal.Decimal, len(e.Splits))
	for i, s := range e.Splits {
		weights[i] = s.ShareUnits
	}
	derived := money.SplitByWeights(e.Amount, weights)
	if derived == nil {
		// Zero or negative weights make the formula undefined.
		return &ValidationError{Reason: ReasonSplitMismatch, Got: e.TotalShares(), Want: e.Amount}
	}
	return checkDerivedAmounts(e, derived)
}

func checkDerivedAmounts(e *models.Expense, derived []money.Cents) error {
	for i, s := range e.Splits {
		if !money.WithinTolerance(s.Amount, derived[i]) {
			return &ValidationError{
				Reason: ReasonSplitMismatch,
				Member: s.Member,
				Got:    s.Amount,
				Want:   derived[i],
			}
		}
	}
	return nil
}
