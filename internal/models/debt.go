package models

import "github.com/shopspring/decimal"

// Debt records that DebtorID owes LenderID Amount within GroupID.
//
// For any pair of members at most one Debt exists, in one direction only.
// Amount is always positive; a debt that reaches zero is deleted.
type Debt struct {
	// ID is the unique identifier for the debt (UUID format).
	ID string

	// DebtorID is the member who owes money.
	DebtorID string

	// LenderID is the member who is owed money.
	LenderID string

	// GroupID is the group the obligation lives in.
	GroupID string

	// Amount is the outstanding balance.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the debt record was created.
	CreatedAt int64
}
