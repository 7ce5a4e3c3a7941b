package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

// ExpenseService records and retrieves expenses.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// RecordExpense validates a candidate expense against the group's current
// member set and persists it. The storage layer re-checks membership inside
// the write transaction, so a concurrent membership change between
// validation and commit still surfaces as an invalid-member rejection.
func (s *ExpenseService) RecordExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	group, err := s.store.GetGroup(ctx, expense.GroupID)
	if err != nil {
		return nil, err
	}

	if err := calculator.ValidateExpense(group, expense); err != nil {
		var verr *calculator.ValidationError
		if errors.As(err, &verr) {
			slog.Info("Expense rejected",
				"group_id", expense.GroupID,
				"reason", verr.Reason,
				"error", verr,
			)
		}
		return nil, err
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		if errors.Is(err, storage.ErrMemberNotInGroup) {
			// Membership changed between validation and commit.
			verr := &calculator.ValidationError{Reason: calculator.ReasonInvalidMember}
			var merr *storage.MemberNotInGroupError
			if errors.As(err, &merr) {
				verr.Members = []models.MemberName{merr.Member}
			}
			return nil, verr
		}
		slog.Error("RecordExpense failed", "group_id", expense.GroupID, "error", err)
		return nil, err
	}

	slog.Info("Expense recorded",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount,
		"split_type", expense.SplitType,
	)
	return expense, nil
}

// RecordSettlement records a payment from one member to another as a
// compensating ledger entry: the payer contributes the amount and the
// receiver owes all of it, moving their net balances toward zero without
// mutating any prior expense.
func (s *ExpenseService) RecordSettlement(ctx context.Context, groupID, from, to string, amount money.Cents) (*models.Expense, error) {
	payer, err := models.NewMemberName(from)
	if err != nil {
		return nil, err
	}
	receiver, err := models.NewMemberName(to)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:     groupID,
		Description: fmt.Sprintf("Settlement: %s paid %s", payer, receiver),
		Amount:      amount,
		SplitType:   models.SplitUnequal,
		PaidBy:      []models.PayerShare{{Member: payer, Amount: amount}},
		Splits:      []models.ParticipantShare{{Member: receiver, Amount: amount}},
	}
	return s.RecordExpense(ctx, expense)
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return s.store.GetExpense(ctx, expenseID)
}

// ListExpenses retrieves all expenses for a group in creation order.
func (s *ExpenseService) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	if _, err := s.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}
