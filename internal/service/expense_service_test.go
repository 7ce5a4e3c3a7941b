package service

import (
	"context"
	"errors"
	"testing"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

func TestRecordExpense(t *testing.T) {
	groups, expenses := setupServices(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "Bob", "Carol"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	expense, err := expenses.RecordExpense(ctx, &models.Expense{
		GroupID:     group.ID,
		Description: "Groceries",
		Amount:      9000,
		SplitType:   models.SplitEqual,
		PaidBy:      []models.PayerShare{{Member: "Alice", Amount: 9000}},
		Splits: []models.ParticipantShare{
			{Member: "Alice", Amount: 3000},
			{Member: "Bob", Amount: 3000},
			{Member: "Carol", Amount: 3000},
		},
	})
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}
	if expense.ID == "" {
		t.Error("expected non-empty expense ID")
	}

	listed, err := expenses.ListExpenses(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(listed) != 1 || listed[0].Description != "Groceries" {
		t.Errorf("listed = %+v, want the recorded expense", listed)
	}
}

func TestRecordExpenseRejectionNotPersisted(t *testing.T) {
	groups, expenses := setupServices(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "Bob", "Carol"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// "Dave" is not a member, so the expense is rejected and never stored.
	_, err = expenses.RecordExpense(ctx, &models.Expense{
		GroupID:     group.ID,
		Description: "Bar tab",
		Amount:      5000,
		SplitType:   models.SplitUnequal,
		PaidBy:      []models.PayerShare{{Member: "Dave", Amount: 5000}},
		Splits:      []models.ParticipantShare{{Member: "Alice", Amount: 5000}},
	})

	var verr *calculator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Reason != calculator.ReasonInvalidMember {
		t.Errorf("reason = %q, want invalid-member", verr.Reason)
	}
	if len(verr.Members) != 1 || verr.Members[0] != "Dave" {
		t.Errorf("offending members = %v, want [Dave]", verr.Members)
	}

	listed, err := expenses.ListExpenses(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("rejected expense was persisted: %+v", listed)
	}
}

func TestRecordExpenseDuplicatePayerRejected(t *testing.T) {
	groups, expenses := setupServices(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "Bob"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// Alice appears twice in the payer list; the sums still line up.
	_, err = expenses.RecordExpense(ctx, &models.Expense{
		GroupID:     group.ID,
		Description: "Hotel",
		Amount:      10000,
		SplitType:   models.SplitUnequal,
		PaidBy: []models.PayerShare{
			{Member: "Alice", Amount: 6000},
			{Member: "Alice", Amount: 4000},
		},
		Splits: []models.ParticipantShare{
			{Member: "Alice", Amount: 5000},
			{Member: "Bob", Amount: 5000},
		},
	})

	var verr *calculator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Reason != calculator.ReasonInvalidMember || !verr.Duplicate {
		t.Errorf("got %+v, want duplicate invalid-member rejection", verr)
	}
	if len(verr.Members) != 1 || verr.Members[0] != "Alice" {
		t.Errorf("offending members = %v, want [Alice]", verr.Members)
	}

	listed, err := expenses.ListExpenses(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("rejected expense was persisted: %+v", listed)
	}
}

// staleGroupStore reports a member the underlying store does not have,
// simulating a membership change between validation and commit.
type staleGroupStore struct {
	storage.Store
	phantom models.MemberName
}

func (s *staleGroupStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.Store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = append(group.Members, s.phantom)
	return group, nil
}

func TestRecordExpenseCommitTimeRejectionNamesMember(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	groups := NewGroupService(store)
	group, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "Bob"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	expenses := NewExpenseService(&staleGroupStore{Store: store, phantom: "Ghost"})
	_, err = expenses.RecordExpense(ctx, &models.Expense{
		GroupID:     group.ID,
		Description: "Dinner",
		Amount:      2000,
		SplitType:   models.SplitUnequal,
		PaidBy:      []models.PayerShare{{Member: "Ghost", Amount: 2000}},
		Splits:      []models.ParticipantShare{{Member: "Alice", Amount: 2000}},
	})

	var verr *calculator.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Reason != calculator.ReasonInvalidMember {
		t.Errorf("reason = %q, want invalid-member", verr.Reason)
	}
	if len(verr.Members) != 1 || verr.Members[0] != "Ghost" {
		t.Errorf("offending members = %v, want [Ghost]", verr.Members)
	}
	if got, want := verr.Error(), "not a member of this group: Ghost"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestRecordSettlement(t *testing.T) {
	groups, expenses := setupServices(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "Bob"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// Alice fronts 40, then Bob pays her back his half.
	_, err = expenses.RecordExpense(ctx, &models.Expense{
		GroupID:     group.ID,
		Description: "Gas",
		Amount:      4000,
		SplitType:   models.SplitEqual,
		PaidBy:      []models.PayerShare{{Member: "Alice", Amount: 4000}},
		Splits: []models.ParticipantShare{
			{Member: "Alice", Amount: 2000},
			{Member: "Bob", Amount: 2000},
		},
	})
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}

	settlement, err := expenses.RecordSettlement(ctx, group.ID, "Bob", "Alice", 2000)
	if err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	if settlement.SplitType != models.SplitUnequal {
		t.Errorf("settlement split type = %s, want unequal", settlement.SplitType)
	}

	balances, err := groups.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if !balances.Settled() {
		t.Errorf("settlement should zero the balances, got %+v", balances.Balances)
	}
}

func TestRecordSettlementValidatesMembers(t *testing.T) {
	groups, expenses := setupServices(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "Bob"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err = expenses.RecordSettlement(ctx, group.ID, "Mallory", "Alice", 1000)
	var verr *calculator.ValidationError
	if !errors.As(err, &verr) || verr.Reason != calculator.ReasonInvalidMember {
		t.Errorf("error = %v, want invalid-member ValidationError", err)
	}
}
