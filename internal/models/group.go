package models

// Group represents a set of people who share expenses. Membership is an
// ordered list of display names; it can grow via join but members are never
// removed. A group can only be deleted once all balances are settled.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Goa Trip").
	Name string

	// Members is the ordered list of member names in this group.
	// Uniqueness is enforced case-insensitively at creation and join time.
	Members []MemberName

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// MemberSet returns the members as a set for repeated lookups.
func (g *Group) MemberSet() map[MemberName]bool {
	set := make(map[MemberName]bool, len(g.Members))
	for _, m := range g.Members {
		set[m] = true
	}
	return set
}
