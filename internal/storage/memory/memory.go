// Package memory provides an in-memory storage.Store for tests and local development.
//
// Every unit of work runs against a private copy of the state, which replaces
// the shared state only when the callback succeeds. Units of work are fully
// serialized by a single mutex.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	_ storage.Store      = (*Store)(nil)
	_ storage.UnitOfWork = (*unitOfWork)(nil)
)

// Store is an in-memory storage.Store.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	users        map[string]models.User
	groups       map[string]models.Group
	members      map[string][]models.Membership // by group, join order
	expenses     []models.Expense               // insertion order
	participants []models.ExpenseParticipant
	debts        []models.Debt
	settlements  []models.Settlement
}

// New returns an empty Store.
func New() *Store {
	return &Store{state: &state{
		users:   make(map[string]models.User),
		groups:  make(map[string]models.Group),
		members: make(map[string][]models.Membership),
	}}
}

func (s *state) clone() *state {
	c := &state{
		users:        make(map[string]models.User, len(s.users)),
		groups:       make(map[string]models.Group, len(s.groups)),
		members:      make(map[string][]models.Membership, len(s.members)),
		expenses:     append([]models.Expense(nil), s.expenses...),
		participants: append([]models.ExpenseParticipant(nil), s.participants...),
		debts:        append([]models.Debt(nil), s.debts...),
		settlements:  append([]models.Settlement(nil), s.settlements...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.members {
		c.members[k] = append([]models.Membership(nil), v...)
	}
	return c
}

// RunInTx runs fn against a copy of the state and publishes it on success.
func (s *Store) RunInTx(ctx context.Context, fn func(uow storage.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := &unitOfWork{state: s.state.clone()}
	if err := fn(work); err != nil {
		return err
	}
	s.state = work.state
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

type unitOfWork struct {
	*state
}

func now() int64 {
	return time.Now().Unix()
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, storage.ErrNotFound)
}

// Users

func (u *unitOfWork) CreateUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = now()
	}
	for _, existing := range u.users {
		if existing.Email == user.Email || existing.ID == user.ID {
			return fmt.Errorf("user with email %s: %w", user.Email, storage.ErrConflict)
		}
	}
	u.users[user.ID] = *user
	return nil
}

func (u *unitOfWork) GetUser(_ context.Context, userID string) (*models.User, error) {
	user, ok := u.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return &user, nil
}

// Groups

func (u *unitOfWork) InsertGroup(_ context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = now()
	}
	if _, ok := u.users[group.CreatedBy]; !ok {
		return notFound("user", group.CreatedBy)
	}
	if _, ok := u.groups[group.ID]; ok {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrConflict)
	}
	group.TotalMembers = 0
	group.TotalExpenses = decimal.Zero
	u.groups[group.ID] = *group
	return nil
}

func (u *unitOfWork) GetGroup(_ context.Context, groupID string) (*models.Group, error) {
	group, ok := u.groups[groupID]
	if !ok {
		return nil, notFound("group", groupID)
	}
	return &group, nil
}

func (u *unitOfWork) GetGroupDetail(ctx context.Context, groupID string) (*models.GroupDetail, error) {
	group, err := u.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	detail := &models.GroupDetail{
		Group:   *group,
		Members: append([]models.Membership(nil), u.members[groupID]...),
	}
	expenses, _ := u.ListExpensesByGroup(ctx, groupID)
	for _, e := range expenses {
		detail.Expenses = append(detail.Expenses, *e)
	}
	return detail, nil
}

func (u *unitOfWork) ListGroups(_ context.Context) ([]*models.Group, error) {
	groups := make([]*models.Group, 0, len(u.groups))
	for _, g := range u.groups {
		g := g
		groups = append(groups, &g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CreatedAt != groups[j].CreatedAt {
			return groups[i].CreatedAt > groups[j].CreatedAt
		}
		return groups[i].ID < groups[j].ID
	})
	return groups, nil
}

func (u *unitOfWork) AdjustTotalExpenses(_ context.Context, groupID string, delta decimal.Decimal) error {
	group, ok := u.groups[groupID]
	if !ok {
		return notFound("group", groupID)
	}
	group.TotalExpenses = group.TotalExpenses.Add(delta)
	u.groups[groupID] = group
	return nil
}

func (u *unitOfWork) AddMember(_ context.Context, membership *models.Membership) error {
	group, ok := u.groups[membership.GroupID]
	if !ok {
		return notFound("group", membership.GroupID)
	}
	if _, ok := u.users[membership.UserID]; !ok {
		return notFound("user", membership.UserID)
	}
	for _, m := range u.members[membership.GroupID] {
		if m.UserID == membership.UserID {
			return fmt.Errorf("user %s already in group %s: %w", membership.UserID, membership.GroupID, storage.ErrConflict)
		}
	}
	if membership.JoinedAt == 0 {
		membership.JoinedAt = now()
	}
	u.members[membership.GroupID] = append(u.members[membership.GroupID], *membership)
	group.TotalMembers++
	u.groups[membership.GroupID] = group
	return nil
}

func (u *unitOfWork) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	for _, m := range u.members[groupID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (u *unitOfWork) ListMemberIDs(_ context.Context, groupID string) ([]string, error) {
	var ids []string
	for _, m := range u.members[groupID] {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// Expenses

func (u *unitOfWork) CreateExpense(_ context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now()
	}
	if _, ok := u.groups[expense.GroupID]; !ok {
		return notFound("group", expense.GroupID)
	}
	u.expenses = append(u.expenses, *expense)
	return nil
}

func (u *unitOfWork) GetExpense(_ context.Context, expenseID string) (*models.Expense, error) {
	for _, e := range u.expenses {
		if e.ID == expenseID {
			return &e, nil
		}
	}
	return nil, notFound("expense", expenseID)
}

func (u *unitOfWork) GetExpenseWithParticipants(ctx context.Context, expenseID string) (*models.ExpenseDetail, error) {
	expense, err := u.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	detail := &models.ExpenseDetail{Expense: *expense}
	for _, p := range u.participants {
		if p.ExpenseID == expenseID {
			detail.Participants = append(detail.Participants, p)
		}
	}
	return detail, nil
}

func (u *unitOfWork) ListExpensesByGroup(_ context.Context, groupID string) ([]*models.Expense, error) {
	var expenses []*models.Expense
	for i := len(u.expenses) - 1; i >= 0; i-- {
		if e := u.expenses[i]; e.GroupID == groupID {
			expenses = append(expenses, &e)
		}
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].CreatedAt > expenses[j].CreatedAt
	})
	return expenses, nil
}

func (u *unitOfWork) DeleteExpense(_ context.Context, expenseID string) error {
	for i, e := range u.expenses {
		if e.ID == expenseID {
			u.expenses = append(u.expenses[:i], u.expenses[i+1:]...)
			return nil
		}
	}
	return notFound("expense", expenseID)
}

func (u *unitOfWork) CreateParticipant(_ context.Context, p *models.ExpenseParticipant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = now()
	}
	u.participants = append(u.participants, *p)
	return nil
}

func (u *unitOfWork) DeleteParticipantsByExpense(_ context.Context, expenseID string) (int64, error) {
	kept := u.participants[:0]
	var removed int64
	for _, p := range u.participants {
		if p.ExpenseID == expenseID {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	u.participants = kept
	return removed, nil
}

// Debts

func (u *unitOfWork) CreateDebt(_ context.Context, debt *models.Debt) error {
	if debt.ID == "" {
		debt.ID = uuid.New().String()
	}
	if debt.CreatedAt == 0 {
		debt.CreatedAt = now()
	}
	for _, d := range u.debts {
		if d.GroupID == debt.GroupID && d.DebtorID == debt.DebtorID && d.LenderID == debt.LenderID {
			return fmt.Errorf("debt %s -> %s in group %s: %w", debt.DebtorID, debt.LenderID, debt.GroupID, storage.ErrConflict)
		}
	}
	u.debts = append(u.debts, *debt)
	return nil
}

func (u *unitOfWork) debtIndex(debtID string) int {
	for i, d := range u.debts {
		if d.ID == debtID {
			return i
		}
	}
	return -1
}

func (u *unitOfWork) GetDebt(_ context.Context, debtID string) (*models.Debt, error) {
	i := u.debtIndex(debtID)
	if i < 0 {
		return nil, notFound("debt", debtID)
	}
	d := u.debts[i]
	return &d, nil
}

func (u *unitOfWork) UpdateDebtAmount(_ context.Context, debtID string, amount decimal.Decimal) error {
	i := u.debtIndex(debtID)
	if i < 0 {
		return notFound("debt", debtID)
	}
	u.debts[i].Amount = amount
	return nil
}

func (u *unitOfWork) DeleteDebt(_ context.Context, debtID string) error {
	i := u.debtIndex(debtID)
	if i < 0 {
		return notFound("debt", debtID)
	}
	u.debts = append(u.debts[:i], u.debts[i+1:]...)
	return nil
}

func (u *unitOfWork) ListDebtsByGroup(_ context.Context, groupID string) ([]*models.Debt, error) {
	var debts []*models.Debt
	for _, d := range u.debts {
		if d.GroupID == groupID {
			d := d
			debts = append(debts, &d)
		}
	}
	return debts, nil
}

func (u *unitOfWork) ListDebtsByUser(_ context.Context, groupID, userID string) ([]*models.Debt, error) {
	var debts []*models.Debt
	for _, d := range u.debts {
		if d.GroupID == groupID && (d.DebtorID == userID || d.LenderID == userID) {
			d := d
			debts = append(debts, &d)
		}
	}
	return debts, nil
}

// Settlements

func (u *unitOfWork) CreateSettlement(_ context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = now()
	}
	u.settlements = append(u.settlements, *settlement)
	return nil
}

func (u *unitOfWork) ListSettlementsByGroup(_ context.Context, groupID string) ([]*models.Settlement, error) {
	var settlements []*models.Settlement
	for i := len(u.settlements) - 1; i >= 0; i-- {
		if s := u.settlements[i]; s.GroupID == groupID {
			settlements = append(settlements, &s)
		}
	}
	return settlements, nil
}
