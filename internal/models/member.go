package models

import (
	"errors"
	"strings"
)

// ErrEmptyMemberName is returned when a member name is blank after trimming.
var ErrEmptyMemberName = errors.New("member name must not be empty")

// MemberName identifies a group member by display name. The trimmed exact
// string is what gets stored and what balances are keyed by; uniqueness
// within a group is checked case-insensitively via Fold.
type MemberName string

// NewMemberName trims surrounding whitespace and rejects empty names.
func NewMemberName(s string) (MemberName, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", ErrEmptyMemberName
	}
	return MemberName(trimmed), nil
}

// Fold returns the case-folded form used for uniqueness checks.
func (m MemberName) Fold() string {
	return strings.ToLower(string(m))
}

// String returns the stored display name.
func (m MemberName) String() string {
	return string(m)
}
