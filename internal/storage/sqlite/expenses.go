package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = "id, group_id, description, amount, created_by, created_at"

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	err := row.Scan(&expense.ID, &expense.GroupID, &expense.Description,
		&expense.Amount, &expense.CreatedBy, &expense.CreatedAt)
	return expense, err
}

// CreateExpense persists a new expense.
func (u *unitOfWork) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	_, err := u.tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.CreatedBy, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID.
func (u *unitOfWork) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(u.tx.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// GetExpenseWithParticipants retrieves an expense and every receipt recorded against it.
func (u *unitOfWork) GetExpenseWithParticipants(ctx context.Context, expenseID string) (*models.ExpenseDetail, error) {
	expense, err := u.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	rows, err := u.tx.QueryContext(ctx,
		`SELECT id, expense_id, user_id, amount_paid, amount_owed, created_at
		 FROM expense_participants WHERE expense_id = ? ORDER BY created_at, rowid`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	detail := &models.ExpenseDetail{Expense: *expense}
	for rows.Next() {
		var p models.ExpenseParticipant
		if err := rows.Scan(&p.ID, &p.ExpenseID, &p.UserID, &p.AmountPaid, &p.AmountOwed, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		detail.Participants = append(detail.Participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return detail, nil
}

// ListExpensesByGroup retrieves the group's expenses, newest first.
func (u *unitOfWork) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := u.tx.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at DESC, rowid DESC",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// DeleteExpense removes an expense by ID. Receipts must be deleted first.
func (u *unitOfWork) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := u.tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return mustAffect(res, "expense", expenseID)
}

// CreateParticipant persists a payment receipt.
func (u *unitOfWork) CreateParticipant(ctx context.Context, p *models.ExpenseParticipant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	_, err := u.tx.ExecContext(ctx,
		`INSERT INTO expense_participants (id, expense_id, user_id, amount_paid, amount_owed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.ExpenseID, p.UserID, p.AmountPaid, p.AmountOwed, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}

	return nil
}

// DeleteParticipantsByExpense removes every receipt tied to the expense.
func (u *unitOfWork) DeleteParticipantsByExpense(ctx context.Context, expenseID string) (int64, error) {
	res, err := u.tx.ExecContext(ctx, "DELETE FROM expense_participants WHERE expense_id = ?", expenseID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete participants: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
