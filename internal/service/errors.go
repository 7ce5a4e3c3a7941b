package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/splitledger/splitledger/internal/calculator"
	"github.com/splitledger/splitledger/internal/models"
)

var (
	// ErrEmptyGroupName is returned when a group is created without a name.
	ErrEmptyGroupName = errors.New("group name must not be empty")

	// ErrNoMembers is returned when a group is created with no members.
	ErrNoMembers = errors.New("group must have at least one member")
)

// DuplicateMemberError is returned when a member name collides
// (case-insensitively) with an existing member.
type DuplicateMemberError struct {
	Name models.MemberName
}

func (e *DuplicateMemberError) Error() string {
	return fmt.Sprintf("member %q already exists in this group", e.Name)
}

// UnsettledError blocks group deletion while any member's balance is
// non-zero. It carries the residual balances so the caller can report who
// still owes what.
type UnsettledError struct {
	Residuals []calculator.MemberBalance
}

func (e *UnsettledError) Error() string {
	parts := make([]string, len(e.Residuals))
	for i, b := range e.Residuals {
		parts[i] = fmt.Sprintf("%s: %s", b.Member, b.NetBalance)
	}
	return fmt.Sprintf("group has unsettled balances (%s)", strings.Join(parts, ", "))
}
