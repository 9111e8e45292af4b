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

const groupColumns = "id, name, created_by, total_members, total_expenses, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	err := row.Scan(&group.ID, &group.Name, &group.CreatedBy,
		&group.TotalMembers, &group.TotalExpenses, &group.CreatedAt)
	return group, err
}

// InsertGroup persists a new group with no members.
func (u *unitOfWork) InsertGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	group.TotalMembers = 0
	group.TotalExpenses = decimal.Zero

	ok, err := u.exists(ctx, "SELECT 1 FROM users WHERE id = ?", group.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to check creator existence: %w", err)
	}
	if !ok {
		return fmt.Errorf("user %s: %w", group.CreatedBy, storage.ErrNotFound)
	}

	_, err = u.tx.ExecContext(ctx,
		"INSERT INTO groups ("+groupColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		group.ID, group.Name, group.CreatedBy, group.TotalMembers, group.TotalExpenses, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID.
func (u *unitOfWork) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := scanGroup(u.tx.QueryRowContext(ctx,
		"SELECT "+groupColumns+" FROM groups WHERE id = ?", groupID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// GetGroupDetail retrieves a group with its memberships and expenses.
func (u *unitOfWork) GetGroupDetail(ctx context.Context, groupID string) (*models.GroupDetail, error) {
	group, err := u.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	rows, err := u.tx.QueryContext(ctx,
		`SELECT group_id, user_id, is_admin, joined_at FROM group_members
		 WHERE group_id = ? ORDER BY joined_at, rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	detail := &models.GroupDetail{Group: *group}
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.IsAdmin, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		detail.Members = append(detail.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	expenses, err := u.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		detail.Expenses = append(detail.Expenses, *e)
	}

	return detail, nil
}

// ListGroups retrieves all groups, newest first.
func (u *unitOfWork) ListGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := u.tx.QueryContext(ctx,
		"SELECT "+groupColumns+" FROM groups ORDER BY created_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// AdjustTotalExpenses adds delta to the group's running expense total.
func (u *unitOfWork) AdjustTotalExpenses(ctx context.Context, groupID string, delta decimal.Decimal) error {
	var total decimal.Decimal
	err := u.tx.QueryRowContext(ctx,
		"SELECT total_expenses FROM groups WHERE id = ?", groupID,
	).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read group total: %w", err)
	}

	_, err = u.tx.ExecContext(ctx,
		"UPDATE groups SET total_expenses = ? WHERE id = ?",
		total.Add(delta), groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group total: %w", err)
	}
	return nil
}

// AddMember inserts a membership and bumps the group's member count.
func (u *unitOfWork) AddMember(ctx context.Context, membership *models.Membership) error {
	if membership.JoinedAt == 0 {
		membership.JoinedAt = time.Now().Unix()
	}

	ok, err := u.exists(ctx, "SELECT 1 FROM groups WHERE id = ?", membership.GroupID)
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}
	if !ok {
		return fmt.Errorf("group %s: %w", membership.GroupID, storage.ErrNotFound)
	}

	ok, err = u.exists(ctx, "SELECT 1 FROM users WHERE id = ?", membership.UserID)
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if !ok {
		return fmt.Errorf("user %s: %w", membership.UserID, storage.ErrNotFound)
	}

	_, err = u.tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, is_admin, joined_at) VALUES (?, ?, ?, ?)",
		membership.GroupID, membership.UserID, membership.IsAdmin, membership.JoinedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("user %s already in group %s: %w", membership.UserID, membership.GroupID, storage.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}

	_, err = u.tx.ExecContext(ctx,
		"UPDATE groups SET total_members = total_members + 1 WHERE id = ?",
		membership.GroupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member count: %w", err)
	}

	return nil
}

// IsMember reports whether userID belongs to groupID.
func (u *unitOfWork) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	ok, err := u.exists(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return ok, nil
}

// ListMemberIDs returns the group's member IDs in join order.
func (u *unitOfWork) ListMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := u.tx.QueryContext(ctx,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY joined_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return ids, nil
}
