package models

import "github.com/shopspring/decimal"

// Group represents a set of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// CreatedBy is the user ID of the creator, who is also the group admin.
	CreatedBy string

	// TotalMembers is the number of memberships in the group.
	// It is maintained incrementally by membership inserts.
	TotalMembers int

	// TotalExpenses is the sum of the amounts of all live expenses in the group.
	// It is adjusted on every expense creation and deletion, never recomputed.
	TotalExpenses decimal.Decimal

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Membership links a user to a group. It is unique per (GroupID, UserID).
type Membership struct {
	GroupID string
	UserID  string
	IsAdmin bool

	// JoinedAt is the Unix timestamp when the user joined.
	JoinedAt int64
}

// GroupDetail is a group together with its members and live expenses.
type GroupDetail struct {
	Group    Group
	Members  []Membership
	Expenses []Expense
}
