// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - Group: a named set of members who share expenses
//   - Expense: one shared cost, with payer and participant share rows
//   - MemberName: validated display-name identity for a group member
//   - SplitType: the rule used to derive per-participant shares
//
// Members are identified by display-name strings unique within a group
// (case-insensitively), not by user accounts. Balances are keyed by this
// name.
//
// # Design Principles
//
// 1. **Money in minor units**: every currency field is money.Cents so that
// balance replay over a long expense history is drift-free. Percentages and
// share weights stay decimal; they are user-entered ratios, not currency.
//
// 2. **Append-only expenses**: an expense is created once and never edited
// or deleted. Corrections are compensating entries (see settlements), which
// keeps the replay algorithm correct and auditable.
//
// 3. **Avoid circular references**: relationships use ID strings instead of
// pointers.
package models
