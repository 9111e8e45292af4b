package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const debtColumns = "id, debtor_id, lender_id, group_id, amount, created_at"

func scanDebt(row rowScanner) (*models.Debt, error) {
	debt := &models.Debt{}
	err := row.Scan(&debt.ID, &debt.DebtorID, &debt.LenderID, &debt.GroupID, &debt.Amount, &debt.CreatedAt)
	return debt, err
}

// CreateDebt persists a new debt.
func (u *unitOfWork) CreateDebt(ctx context.Context, debt *models.Debt) error {
	if debt.ID == "" {
		debt.ID = uuid.New().String()
	}
	if debt.CreatedAt == 0 {
		debt.CreatedAt = time.Now().Unix()
	}

	_, err := u.tx.ExecContext(ctx,
		"INSERT INTO debts ("+debtColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		debt.ID, debt.DebtorID, debt.LenderID, debt.GroupID, debt.Amount, debt.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("debt %s -> %s in group %s: %w", debt.DebtorID, debt.LenderID, debt.GroupID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}

	return nil
}

// GetDebt retrieves a debt by ID.
func (u *unitOfWork) GetDebt(ctx context.Context, debtID string) (*models.Debt, error) {
	debt, err := scanDebt(u.tx.QueryRowContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE id = ?", debtID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("debt %s: %w", debtID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return debt, nil
}

// UpdateDebtAmount sets the outstanding amount of a debt.
func (u *unitOfWork) UpdateDebtAmount(ctx context.Context, debtID string, amount decimal.Decimal) error {
	res, err := u.tx.ExecContext(ctx, "UPDATE debts SET amount = ? WHERE id = ?", amount, debtID)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	return mustAffect(res, "debt", debtID)
}

// DeleteDebt removes a debt by ID.
func (u *unitOfWork) DeleteDebt(ctx context.Context, debtID string) error {
	res, err := u.tx.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", debtID)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	return mustAffect(res, "debt", debtID)
}

// ListDebtsByGroup retrieves every debt in a group.
func (u *unitOfWork) ListDebtsByGroup(ctx context.Context, groupID string) ([]*models.Debt, error) {
	return u.queryDebts(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
}

// ListDebtsByUser retrieves the group's debts where userID is debtor or lender.
func (u *unitOfWork) ListDebtsByUser(ctx context.Context, groupID, userID string) ([]*models.Debt, error) {
	return u.queryDebts(ctx,
		`SELECT `+debtColumns+` FROM debts
		 WHERE group_id = ? AND (debtor_id = ? OR lender_id = ?)
		 ORDER BY created_at, rowid`,
		groupID, userID, userID,
	)
}

func (u *unitOfWork) queryDebts(ctx context.Context, query string, args ...any) ([]*models.Debt, error) {
	rows, err := u.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	defer rows.Close()

	var debts []*models.Debt
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, debt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}

	return debts, nil
}
