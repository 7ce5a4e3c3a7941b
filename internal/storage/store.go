// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/splitledger/splitledger/internal/models"
)

var (
	// ErrGroupNotFound is returned when a group lookup fails.
	ErrGroupNotFound = errors.New("group not found")

	// ErrExpenseNotFound is returned when an expense lookup fails.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrMemberNotInGroup is returned when an expense write names someone
	// who is not (or no longer) a member at commit time. The membership
	// re-check runs inside the write transaction so a concurrent
	// membership change cannot slip between validation and persistence.
	ErrMemberNotInGroup = errors.New("member not in group")
)

// MemberNotInGroupError names who failed the commit-time membership
// re-check, so callers can surface the member rather than a bare sentinel.
// It unwraps to ErrMemberNotInGroup.
type MemberNotInGroupError struct {
	Member models.MemberName
}

func (e *MemberNotInGroupError) Error() string {
	return fmt.Sprintf("member %q not in group", e.Member)
}

func (e *MemberNotInGroupError) Unwrap() error { return ErrMemberNotInGroup }

// Store defines the interface for group and expense persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
type Store interface {
	// CreateGroup persists a new group, populating ID and CreatedAt.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by ID, ErrGroupNotFound if absent.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups, newest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// AddGroupMembers appends members to a group's ordered member list.
	AddGroupMembers(ctx context.Context, groupID string, members []models.MemberName) error

	// DeleteGroup removes a group and cascades to its expenses. The
	// settlement precondition is the service layer's responsibility.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists a validated expense, populating ID and
	// CreatedAt. Payer and participant membership is re-verified inside
	// the write transaction; ErrMemberNotInGroup on failure.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID, ErrExpenseNotFound if absent.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByGroup retrieves all expenses for a group in creation
	// order.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// Close releases any resources held by the store.
	Close() error
}
