package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateUser registers a user identity. Returns ErrConflict if the email is taken.
func (l *Ledger) CreateUser(ctx context.Context, name, email string) (*models.User, error) {
	user := &models.User{Name: name, Email: email, CreatedAt: l.now().Unix()}
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		return uow.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser returns ErrNotFound if the user does not exist.
func (l *Ledger) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user *models.User
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		user, err = uow.GetUser(ctx, userID)
		return err
	})
	return user, err
}

// CreateGroup creates a group and makes the creator its admin member.
func (l *Ledger) CreateGroup(ctx context.Context, name, creatorID string) (*models.Group, error) {
	var group *models.Group
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		g := &models.Group{Name: name, CreatedBy: creatorID, CreatedAt: l.now().Unix()}
		if err := uow.InsertGroup(ctx, g); err != nil {
			return err
		}

		admin := &models.Membership{GroupID: g.ID, UserID: creatorID, IsAdmin: true, JoinedAt: g.CreatedAt}
		if err := uow.AddMember(ctx, admin); err != nil {
			return fmt.Errorf("failed to add creator to group: %w", err)
		}

		var err error
		group, err = uow.GetGroup(ctx, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember adds userID to groupID. Returns ErrConflict if already a member.
func (l *Ledger) AddMember(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	membership := &models.Membership{GroupID: groupID, UserID: userID, JoinedAt: l.now().Unix()}
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		return uow.AddMember(ctx, membership)
	})
	if err != nil {
		return nil, err
	}
	return membership, nil
}

// GetGroup returns the group with its members and live expenses.
func (l *Ledger) GetGroup(ctx context.Context, groupID string) (*models.GroupDetail, error) {
	var detail *models.GroupDetail
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		var err error
		detail, err = uow.GetGroupDetail(ctx, groupID)
		return err
	})
	return detail, err
}

// ListGroups returns every group, newest first.
func (l *Ledger) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		found, err := uow.ListGroups(ctx)
		if err != nil {
			return err
		}
		for _, g := range found {
			groups = append(groups, *g)
		}
		return nil
	})
	return groups, err
}
