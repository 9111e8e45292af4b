package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateExpense records that payerID paid amount for the whole group and
// reconciles the debt ledger: every other member now owes the payer an even share.
//
// Fails with ErrInvalidState for a non-positive amount or a group without
// members, and with ErrNotFound for a missing group or a payer outside the group.
func (l *Ledger) CreateExpense(ctx context.Context, groupID, payerID string, amount decimal.Decimal, description string) (*models.Expense, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: expense amount must be positive, got %s", ErrInvalidState, amount)
	}

	var expense *models.Expense
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		group, err := uow.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if group.TotalMembers <= 0 {
			return fmt.Errorf("%w: group %s has no members", ErrInvalidState, groupID)
		}

		isMember, err := uow.IsMember(ctx, groupID, payerID)
		if err != nil {
			return err
		}
		if !isMember {
			return fmt.Errorf("payer %s in group %s: %w", payerID, groupID, ErrNotFound)
		}

		createdAt := l.now()
		if description == "" {
			description = defaultDescription(createdAt)
		}
		e := &models.Expense{
			GroupID:     groupID,
			Description: description,
			Amount:      amount,
			CreatedBy:   payerID,
			CreatedAt:   createdAt.Unix(),
		}
		if err := uow.CreateExpense(ctx, e); err != nil {
			return err
		}
		if err := uow.AdjustTotalExpenses(ctx, groupID, amount); err != nil {
			return err
		}
		if err := l.reconcile(ctx, uow, group, payerID, amount, calculator.Apply); err != nil {
			return err
		}

		expense = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense, undoing its effect on the debt ledger and
// the group total, and deletes its payment receipts.
func (l *Ledger) DeleteExpense(ctx context.Context, expenseID string) error {
	return l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		expense, err := uow.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		group, err := uow.GetGroup(ctx, expense.GroupID)
		if err != nil {
			return err
		}

		if err := uow.AdjustTotalExpenses(ctx, group.ID, expense.Amount.Neg()); err != nil {
			return err
		}
		if err := l.reconcile(ctx, uow, group, expense.CreatedBy, expense.Amount, calculator.Revert); err != nil {
			return err
		}

		removed, err := uow.DeleteParticipantsByExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		slog.Debug("Expense receipts deleted", "expense_id", expenseID, "count", removed)

		return uow.DeleteExpense(ctx, expenseID)
	})
}

// reconcile reads the payer's debts once, plans the adjustments and applies them through uow.
func (l *Ledger) reconcile(ctx context.Context, uow storage.UnitOfWork, group *models.Group, payerID string, amount decimal.Decimal, dir calculator.Direction) error {
	members, err := uow.ListMemberIDs(ctx, group.ID)
	if err != nil {
		return err
	}
	existing, err := uow.ListDebtsByUser(ctx, group.ID, payerID)
	if err != nil {
		return err
	}

	plan, err := calculator.Reconcile(calculator.Event{
		GroupID:      group.ID,
		PayerID:      payerID,
		Amount:       amount,
		Members:      members,
		TotalMembers: group.TotalMembers,
		Direction:    dir,
	}, derefDebts(existing))
	if err != nil {
		return fmt.Errorf("failed to reconcile debts: %w", err)
	}

	for _, d := range plan.Delete {
		if err := uow.DeleteDebt(ctx, d.ID); err != nil {
			return err
		}
	}
	for _, d := range plan.Update {
		if err := uow.UpdateDebtAmount(ctx, d.ID, d.Amount); err != nil {
			return err
		}
	}
	createdAt := l.now().Unix()
	for i := range plan.Create {
		d := plan.Create[i]
		d.CreatedAt = createdAt
		if err := uow.CreateDebt(ctx, &d); err != nil {
			return err
		}
	}

	slog.Debug("Debts reconciled",
		"group_id", group.ID,
		"payer_id", payerID,
		"direction", dir.String(),
		"share", plan.Share.String(),
		"created", len(plan.Create),
		"updated", len(plan.Update),
		"deleted", len(plan.Delete),
	)
	return nil
}

// GetExpense returns the expense with all its payment receipts.
func (l *Ledger) GetExpense(ctx context.Context, expenseID string) (*models.ExpenseDetail, error) {
	var detail *models.ExpenseDetail
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		detail, err = uow.GetExpenseWithParticipants(ctx, expenseID)
		return err
	})
	return detail, err
}

// ListGroupExpenses returns the group's live expenses, newest first.
func (l *Ledger) ListGroupExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	var expenses []models.Expense
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		if _, err := uow.GetGroup(ctx, groupID); err != nil {
			return err
		}
		found, err := uow.ListExpensesByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		for _, e := range found {
			expenses = append(expenses, *e)
		}
		return nil
	})
	return expenses, err
}

// RecordPayment stores a receipt saying userID paid amountPaid toward the expense.
// AmountOwed is computed against the group's current member count.
// Receipts do not affect the debt ledger.
func (l *Ledger) RecordPayment(ctx context.Context, expenseID, userID string, amountPaid decimal.Decimal) (*models.ExpenseParticipant, error) {
	if amountPaid.IsNegative() {
		return nil, fmt.Errorf("%w: amount paid must not be negative, got %s", ErrInvalidState, amountPaid)
	}

	var receipt *models.ExpenseParticipant
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		expense, err := uow.GetExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if _, err := uow.GetUser(ctx, userID); err != nil {
			return err
		}
		group, err := uow.GetGroup(ctx, expense.GroupID)
		if err != nil {
			return err
		}

		owed, err := calculator.AmountOwed(amountPaid, expense.Amount, group.TotalMembers)
		if err != nil {
			return err
		}

		p := &models.ExpenseParticipant{
			ExpenseID:  expenseID,
			UserID:     userID,
			AmountPaid: amountPaid,
			AmountOwed: owed,
			CreatedAt:  l.now().Unix(),
		}
		if err := uow.CreateParticipant(ctx, p); err != nil {
			return err
		}
		receipt = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// defaultDescription labels an expense recorded without a description.
func defaultDescription(createdAt time.Time) string {
	return fmt.Sprintf("Expense - %s", createdAt.Format("Jan 2, 2006"))
}
