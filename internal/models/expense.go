package models

import "github.com/shopspring/decimal"

// Expense represents an amount paid by one member on behalf of the whole group.
// Expenses are immutable once created; they can only be deleted.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group the expense belongs to.
	GroupID string

	// Description is a free-form label (e.g., "Groceries").
	Description string

	// Amount is the total paid. Always positive.
	Amount decimal.Decimal

	// CreatedBy is the paying member.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// ExpenseParticipant is a payment receipt: UserID paid AmountPaid toward ExpenseID.
//
// AmountOwed is AmountPaid minus the even share of the expense at the time the
// receipt was recorded. Receipts never feed the debt ledger.
type ExpenseParticipant struct {
	ID         string
	ExpenseID  string
	UserID     string
	AmountPaid decimal.Decimal
	AmountOwed decimal.Decimal
	CreatedAt  int64
}

// ExpenseDetail is an expense together with all receipts recorded against it.
type ExpenseDetail struct {
	Expense      Expense
	Participants []ExpenseParticipant
}
