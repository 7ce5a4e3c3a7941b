package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
	"github.com/splitledger/splitledger/internal/storage"
)

// CreateExpense persists a validated expense. Membership of every payer and
// participant is re-checked against group_members inside the same
// transaction that writes the rows, so a membership change racing the
// submission cannot produce an expense naming a non-member.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.Date == 0 {
		expense.Date = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	members, err := txGroupMemberSet(ctx, tx, expense.GroupID)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return storage.ErrGroupNotFound
	}
	for _, p := range expense.PaidBy {
		if !members[p.Member] {
			return &storage.MemberNotInGroupError{Member: p.Member}
		}
	}
	for _, sp := range expense.Splits {
		if !members[sp.Member] {
			return &storage.MemberNotInGroupError{Member: sp.Member}
		}
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses (id, group_id, description, amount_cents, split_type, date, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Description, int64(expense.Amount),
		string(expense.SplitType), expense.Date, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, p := range expense.PaidBy {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_payers (expense_id, name, amount_cents, position) VALUES (?, ?, ?, ?)",
			expense.ID, p.Member.String(), int64(p.Amount), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payer: %w", err)
		}
	}

	for i, sp := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, name, amount_cents, percentage, share_units, position) VALUES (?, ?, ?, ?, ?, ?)",
			expense.ID, sp.Member.String(), int64(sp.Amount),
			decimalColumn(sp.Percentage), decimalColumn(sp.ShareUnits), i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including payer and split rows.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var amount int64
	var splitType string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, group_id, description, amount_cents, split_type, date, created_at FROM expenses WHERE id = ?",
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.Description, &amount, &splitType, &expense.Date, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrExpenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.Amount = money.Cents(amount)
	expense.SplitType = models.SplitType(splitType)

	if err := s.loadShares(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses for a group in creation order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, group_id, description, amount_cents, split_type, date, created_at FROM expenses WHERE group_id = ? ORDER BY created_at, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense := &models.Expense{}
		var amount int64
		var splitType string
		if err := rows.Scan(&expense.ID, &expense.GroupID, &expense.Description, &amount, &splitType, &expense.Date, &expense.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.Amount = money.Cents(amount)
		expense.SplitType = models.SplitType(splitType)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadShares(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (s *SQLiteStore) loadShares(ctx context.Context, expense *models.Expense) error {
	payerRows, err := s.db.QueryContext(ctx,
		"SELECT name, amount_cents FROM expense_payers WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get payers: %w", err)
	}
	defer payerRows.Close()

	for payerRows.Next() {
		var name string
		var amount int64
		if err := payerRows.Scan(&name, &amount); err != nil {
			return fmt.Errorf("failed to scan payer: %w", err)
		}
		expense.PaidBy = append(expense.PaidBy, models.PayerShare{
			Member: models.MemberName(name),
			Amount: money.Cents(amount),
		})
	}
	if err := payerRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate payers: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx,
		"SELECT name, amount_cents, percentage, share_units FROM expense_splits WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var name, percentage, shareUnits string
		var amount int64
		if err := splitRows.Scan(&name, &amount, &percentage, &shareUnits); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		share := models.ParticipantShare{
			Member: models.MemberName(name),
			Amount: money.Cents(amount),
		}
		if share.Percentage, err = parseDecimalColumn(percentage); err != nil {
			return fmt.Errorf("failed to parse percentage: %w", err)
		}
		if share.ShareUnits, err = parseDecimalColumn(shareUnits); err != nil {
			return fmt.Errorf("failed to parse share units: %w", err)
		}
		expense.Splits = append(expense.Splits, share)
	}
	if err := splitRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

func txGroupMemberSet(ctx context.Context, tx *sql.Tx, groupID string) (map[models.MemberName]bool, error) {
	rows, err := tx.QueryContext(ctx,
		"SELECT name FROM group_members WHERE group_id = ?",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := make(map[models.MemberName]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[models.MemberName(name)] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// decimalColumn stores zero decimals as the empty string so non-percentage
// splits don't carry a spurious "0".
func decimalColumn(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func parseDecimalColumn(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
