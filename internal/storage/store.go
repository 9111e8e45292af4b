// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a referenced user, group, expense or debt does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert would violate a uniqueness rule,
	// e.g. adding a user to a group twice.
	ErrConflict = errors.New("conflict")
)

// Store hands out units of work.
// This abstraction allows swapping storage backends (SQLite, in-memory, etc.)
// without changing the ledger layer.
type Store interface {
	// RunInTx runs fn inside one unit of work. If fn returns an error every
	// change made through uow is rolled back; otherwise all of them commit.
	// Concurrent units of work that write are serialized.
	RunInTx(ctx context.Context, fn func(uow UnitOfWork) error) error

	// Close releases any resources held by the store.
	Close() error
}

// UnitOfWork is the set of repository operations available inside one transaction.
// It must not be used after the RunInTx callback returns.
type UnitOfWork interface {
	Users
	Groups
	Expenses
	Debts
	Settlements
}

// Users stores user identities.
type Users interface {
	// CreateUser persists a new user. ID and CreatedAt are populated when empty.
	// Returns ErrConflict if the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser returns ErrNotFound if the user does not exist.
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Groups stores groups, their aggregates and memberships.
type Groups interface {
	// InsertGroup persists a group with zero members and zero expenses.
	// Memberships are added separately with AddMember.
	InsertGroup(ctx context.Context, group *models.Group) error

	// GetGroup returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// GetGroupDetail returns the group with its members and live expenses.
	GetGroupDetail(ctx context.Context, groupID string) (*models.GroupDetail, error)

	ListGroups(ctx context.Context) ([]*models.Group, error)

	// AdjustTotalExpenses adds delta (which may be negative) to the group's running total.
	AdjustTotalExpenses(ctx context.Context, groupID string, delta decimal.Decimal) error

	// AddMember inserts a membership and increments the group's member count.
	// Returns ErrNotFound for a missing group or user and ErrConflict for a duplicate.
	AddMember(ctx context.Context, membership *models.Membership) error

	IsMember(ctx context.Context, groupID, userID string) (bool, error)

	// ListMemberIDs returns member user IDs ordered by join time.
	ListMemberIDs(ctx context.Context, groupID string) ([]string, error)
}

// Expenses stores expenses and their payment receipts.
type Expenses interface {
	// CreateExpense persists a new expense. ID and CreatedAt are populated when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense returns ErrNotFound if the expense does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// GetExpenseWithParticipants returns the expense and all its receipts.
	GetExpenseWithParticipants(ctx context.Context, expenseID string) (*models.ExpenseDetail, error)

	// ListExpensesByGroup returns the group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// DeleteExpense returns ErrNotFound if the expense does not exist.
	DeleteExpense(ctx context.Context, expenseID string) error

	CreateParticipant(ctx context.Context, participant *models.ExpenseParticipant) error

	// DeleteParticipantsByExpense removes every receipt of the expense and reports how many.
	DeleteParticipantsByExpense(ctx context.Context, expenseID string) (int64, error)
}

// Debts stores the pairwise debt ledger.
type Debts interface {
	// CreateDebt persists a new debt. ID and CreatedAt are populated when empty.
	// Returns ErrConflict if a debt for the same (group, debtor, lender) exists.
	CreateDebt(ctx context.Context, debt *models.Debt) error

	// GetDebt returns ErrNotFound if the debt does not exist.
	GetDebt(ctx context.Context, debtID string) (*models.Debt, error)

	// UpdateDebtAmount sets the outstanding amount. Returns ErrNotFound for a missing debt.
	UpdateDebtAmount(ctx context.Context, debtID string, amount decimal.Decimal) error

	// DeleteDebt returns ErrNotFound if the debt does not exist.
	DeleteDebt(ctx context.Context, debtID string) error

	ListDebtsByGroup(ctx context.Context, groupID string) ([]*models.Debt, error)

	// ListDebtsByUser returns the group's debts where userID is debtor or lender.
	ListDebtsByUser(ctx context.Context, groupID, userID string) ([]*models.Debt, error)
}

// Settlements stores the repayment audit trail.
type Settlements interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// ListSettlementsByGroup returns settlements newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
}
