// Package service implements the application services over a storage.Store.
// Services are transport-free: the HTTP layer translates requests into
// these calls and maps the returned errors onto status codes.
package service

import (
	"context"
	"log/slog"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// GroupService manages group lifecycle and balance queries.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group with the given member names. Names are
// trimmed; uniqueness is enforced case-insensitively while the stored
// strings keep their original casing.
func (s *GroupService) CreateGroup(ctx context.Context, name string, memberNames []string) (*models.Group, error) {
	if name == "" {
		return nil, ErrEmptyGroupName
	}
	if len(memberNames) == 0 {
		return nil, ErrNoMembers
	}

	members := make([]models.MemberName, 0, len(memberNames))
	seen := make(map[string]bool, len(memberNames))
	for _, raw := range memberNames {
		member, err := models.NewMemberName(raw)
		if err != nil {
			return nil, err
		}
		if seen[member.Fold()] {
			return nil, &DuplicateMemberError{Name: member}
		}
		seen[member.Fold()] = true
		members = append(members, member)
	}

	group := &models.Group{Name: name, Members: members}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name, "members_count", len(group.Members))
	return group, nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.store.ListGroups(ctx)
}

// AddMembers appends new members to a group. A name that collides
// case-insensitively with an existing member (or another name in the same
// request) is rejected.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, memberNames []string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		seen[m.Fold()] = true
	}

	var added []models.MemberName
	for _, raw := range memberNames {
		member, err := models.NewMemberName(raw)
		if err != nil {
			return nil, err
		}
		if seen[member.Fold()] {
			return nil, &DuplicateMemberError{Name: member}
		}
		seen[member.Fold()] = true
		added = append(added, member)
	}
	if len(added) == 0 {
		return group, nil
	}

	if err := s.store.AddGroupMembers(ctx, groupID, added); err != nil {
		slog.Error("AddMembers failed", "group_id", groupID, "error", err)
		return nil, err
	}
	slog.Info("Members added", "group_id", groupID, "new_members", added)

	group.Members = append(group.Members, added...)
	return group, nil
}

// Balances replays the group's full expense history and returns per-member
// net balances, the total spent, and a simplified transfer list.
func (s *GroupService) Balances(ctx context.Context, groupID string) (*calculator.GroupBalances, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.ComputeBalances(group, expenses), nil
}

// DeleteGroup removes a group and its expenses. Deletion is rejected with
// an *UnsettledError while any member's balance is outside tolerance.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	balances, err := s.Balances(ctx, groupID)
	if err != nil {
		return err
	}
	if !balances.Settled() {
		residuals := balances.Unsettled()
		slog.Info("DeleteGroup blocked by unsettled balances",
			"group_id", groupID,
			"unsettled_count", len(residuals),
		)
		return &UnsettledError{Residuals: residuals}
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return err
	}
	slog.Info("Group deleted", "group_id", groupID)
	return nil
}
