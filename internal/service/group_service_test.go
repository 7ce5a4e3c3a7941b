package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
	"github.com/splitledger/splitledger/internal/storage/sqlite"
)

// setupStore creates a temp SQLite store, cleaned up with the test.
func setupStore(t *testing.T) storage.Store {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// setupServices creates both services over a temp SQLite store.
func setupServices(t *testing.T) (*GroupService, *ExpenseService) {
	t.Helper()
	store := setupStore(t)
	return NewGroupService(store), NewExpenseService(store)
}

func TestCreateGroup(t *testing.T) {
	groups, _ := setupServices(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, "Roommates", []string{"Alice", "Bob", "Carol"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if len(group.Members) != 3 {
		t.Errorf("members: expected 3, got %d", len(group.Members))
	}
	if group.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}
}

func TestCreateGroupValidation(t *testing.T) {
	groups, _ := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		group   string
		members []string
		wantErr error
	}{
		{name: "empty name", group: "", members: []string{"Alice"}, wantErr: ErrEmptyGroupName},
		{name: "no members", group: "Trip", members: nil, wantErr: ErrNoMembers},
		{name: "blank member", group: "Trip", members: []string{"Alice", "  "}, wantErr: models.ErrEmptyMemberName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := groups.CreateGroup(ctx, tt.group, tt.members); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("case-insensitive duplicate", func(t *testing.T) {
		_, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "alice"})
		var derr *DuplicateMemberError
		if !errors.As(err, &derr) {
			t.Fatalf("error = %v, want DuplicateMemberError", err)
		}
		if derr.Name != "alice" {
			t.Errorf("duplicate name = %q, want alice", derr.Name)
		}
	})

	t.Run("names are trimmed", func(t *testing.T) {
		group, err := groups.CreateGroup(ctx, "Trip", []string{"  Alice  ", "Bob"})
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.Members[0] != "Alice" {
			t.Errorf("member = %q, want Alice", group.Members[0])
		}
	})
}

func TestAddMembers(t *testing.T) {
	groups, _ := setupServices(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "Bob"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("join appends", func(t *testing.T) {
		updated, err := groups.AddMembers(ctx, group.ID, []string{"Carol"})
		if err != nil {
			t.Fatalf("AddMembers failed: %v", err)
		}
		if len(updated.Members) != 3 || updated.Members[2] != "Carol" {
			t.Errorf("members = %v, want [Alice Bob Carol]", updated.Members)
		}
	})

	t.Run("case-insensitive collision rejected", func(t *testing.T) {
		_, err := groups.AddMembers(ctx, group.ID, []string{"BOB"})
		var derr *DuplicateMemberError
		if !errors.As(err, &derr) {
			t.Fatalf("error = %v, want DuplicateMemberError", err)
		}
	})

	t.Run("unknown group", func(t *testing.T) {
		if _, err := groups.AddMembers(ctx, "no-such-group", []string{"Dave"}); !errors.Is(err, storage.ErrGroupNotFound) {
			t.Errorf("error = %v, want ErrGroupNotFound", err)
		}
	})
}

func TestDeleteGroupSettlementGate(t *testing.T) {
	groups, expenses := setupServices(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "Bob", "Carol"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	// Alice fronts 90, split three ways.
	_, err = expenses.RecordExpense(ctx, &models.Expense{
		GroupID:     group.ID,
		Description: "Hotel",
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

	err = groups.DeleteGroup(ctx, group.ID)
	var uerr *UnsettledError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v, want UnsettledError", err)
	}
	foundCarol := false
	for _, b := range uerr.Residuals {
		if b.Member == "Carol" {
			foundCarol = true
			if b.NetBalance != -3000 {
				t.Errorf("Carol residual = %s, want -30.00", b.NetBalance)
			}
		}
	}
	if !foundCarol {
		t.Error("expected Carol among the residuals")
	}

	// Bob and Carol settle up; deletion then succeeds.
	if _, err := expenses.RecordSettlement(ctx, group.ID, "Bob", "Alice", 3000); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}
	if _, err := expenses.RecordSettlement(ctx, group.ID, "Carol", "Alice", 3000); err != nil {
		t.Fatalf("RecordSettlement failed: %v", err)
	}

	if err := groups.DeleteGroup(ctx, group.ID); err != nil {
		t.Fatalf("DeleteGroup after settling failed: %v", err)
	}
	if _, err := groups.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrGroupNotFound) {
		t.Errorf("error = %v, want ErrGroupNotFound after delete", err)
	}
}

func TestBalances(t *testing.T) {
	groups, expenses := setupServices(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, "Trip", []string{"Alice", "Bob", "Carol"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	_, err = expenses.RecordExpense(ctx, &models.Expense{
		GroupID:     group.ID,
		Description: "Dinner",
		Amount:      10000,
		SplitType:   models.SplitEqual,
		PaidBy: []models.PayerShare{
			{Member: "Alice", Amount: 6000},
			{Member: "Bob", Amount: 4000},
		},
		Splits: []models.ParticipantShare{
			{Member: "Alice", Amount: 3334},
			{Member: "Bob", Amount: 3333},
			{Member: "Carol", Amount: 3333},
		},
	})
	if err != nil {
		t.Fatalf("RecordExpense failed: %v", err)
	}

	balances, err := groups.Balances(ctx, group.ID)
	if err != nil {
		t.Fatalf("Balances failed: %v", err)
	}
	if balances.TotalExpenses != 10000 {
		t.Errorf("total = %s, want 100.00", balances.TotalExpenses)
	}
	want := map[models.MemberName]int64{"Alice": 2666, "Bob": 667, "Carol": -3333}
	for _, b := range balances.Balances {
		if int64(b.NetBalance) != want[b.Member] {
			t.Errorf("%s = %s, want %d cents", b.Member, b.NetBalance, want[b.Member])
		}
	}
}
