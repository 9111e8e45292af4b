package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// CreateSettlement persists a new settlement to the database.
func (u *unitOfWork) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	_, err := u.tx.ExecContext(ctx,
		`INSERT INTO settlements (id, group_id, debt_id, from_user_id, to_user_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, settlement.DebtID, settlement.FromUserID,
		settlement.ToUserID, settlement.Amount, settlement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// ListSettlementsByGroup retrieves all settlements for a group.
func (u *unitOfWork) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	rows, err := u.tx.QueryContext(ctx,
		`SELECT id, group_id, debt_id, from_user_id, to_user_id, amount, created_at
		 FROM settlements WHERE group_id = ? ORDER BY created_at DESC, rowid DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		if err := rows.Scan(&settlement.ID, &settlement.GroupID, &settlement.DebtID, &settlement.FromUserID,
			&settlement.ToUserID, &settlement.Amount, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}
