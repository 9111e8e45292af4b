package models

import "github.com/shopspring/decimal"

// Settlement represents a repayment applied to a debt.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// DebtID is the debt the payment was applied to. The debt may no longer exist.
	DebtID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (lender being paid).
	ToUserID string

	// Amount is the payment amount actually applied to the debt.
	Amount decimal.Decimal

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
