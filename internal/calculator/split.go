package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance below which a remaining balance is treated as settled.
var Epsilon = decimal.New(1, -2)

// ErrInvalidState is returned when an amount cannot be split, e.g. a group with no members.
var ErrInvalidState = errors.New("invalid state")

// EvenShare returns amount divided evenly across members.
func EvenShare(amount decimal.Decimal, members int) (decimal.Decimal, error) {
	if members <= 0 {
		return decimal.Zero, fmt.Errorf("%w: cannot split across %d members", ErrInvalidState, members)
	}
	return amount.Div(decimal.NewFromInt(int64(members))), nil
}

// AmountOwed computes the receipt balance for someone who paid amountPaid toward
// an expense of expenseAmount split evenly across members.
// Positive means the payer covered more than their share.
func AmountOwed(amountPaid, expenseAmount decimal.Decimal, members int) (decimal.Decimal, error) {
	share, err := EvenShare(expenseAmount, members)
	if err != nil {
		return decimal.Zero, err
	}
	return amountPaid.Sub(share), nil
}
