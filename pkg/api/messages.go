// Package api defines the request and response messages of the splitledger
// RPC services. Messages travel as JSON; monetary amounts are decimal strings.
package api

import "github.com/shopspring/decimal"

// =============================================================================
// Shared shapes
// =============================================================================

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"`
}

type Group struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CreatedBy     string          `json:"created_by"`
	TotalMembers  int             `json:"total_members"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	CreatedAt     int64           `json:"created_at"`
}

type Member struct {
	UserID   string `json:"user_id"`
	IsAdmin  bool   `json:"is_admin"`
	JoinedAt int64  `json:"joined_at"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	CreatedAt   int64           `json:"created_at"`
}

// Participant is a payment receipt recorded against an expense.
type Participant struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	AmountOwed decimal.Decimal `json:"amount_owed"`
	CreatedAt  int64           `json:"created_at"`
}

// Debt reads "DebtorID owes LenderID Amount within GroupID".
type Debt struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"group_id"`
	DebtorID  string          `json:"debtor_id"`
	LenderID  string          `json:"lender_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt int64           `json:"created_at"`
}

type Settlement struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"group_id"`
	DebtID     string          `json:"debt_id"`
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  int64           `json:"created_at"`
}

type MemberBalance struct {
	UserID     string          `json:"user_id"`
	NetBalance decimal.Decimal `json:"net_balance"`
	TotalLent  decimal.Decimal `json:"total_lent"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
}

type Transfer struct {
	FromUserID string          `json:"from_user_id"`
	ToUserID   string          `json:"to_user_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// =============================================================================
// UserService
// =============================================================================

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreateUserResponse struct {
	User *User `json:"user"`
}

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

type GetUserResponse struct {
	User *User `json:"user"`
}

// =============================================================================
// GroupService
// =============================================================================

type CreateGroupRequest struct {
	Name      string `json:"name"`
	CreatorID string `json:"creator_id"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group    *Group     `json:"group"`
	Members  []*Member  `json:"members"`
	Expenses []*Expense `json:"expenses"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMemberRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type AddMemberResponse struct {
	Member *Member `json:"member"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupBalancesResponse struct {
	Balances  []*MemberBalance `json:"balances"`
	Transfers []*Transfer      `json:"transfers"`
}

// =============================================================================
// ExpenseService
// =============================================================================

type CreateExpenseRequest struct {
	GroupID     string          `json:"group_id"`
	PaidBy      string          `json:"paid_by"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type DeleteExpenseResponse struct{}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id"`
}

type GetExpenseResponse struct {
	Expense      *Expense       `json:"expense"`
	Participants []*Participant `json:"participants"`
}

type ListGroupExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListGroupExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type RecordPaymentRequest struct {
	ExpenseID  string          `json:"expense_id"`
	UserID     string          `json:"user_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

type RecordPaymentResponse struct {
	Participant *Participant `json:"participant"`
}

// =============================================================================
// DebtService
// =============================================================================

type ListGroupDebtsRequest struct {
	GroupID string `json:"group_id"`
}

type ListGroupDebtsResponse struct {
	Debts []*Debt `json:"debts"`
}

type ListUserDebtsRequest struct {
	GroupID string `json:"group_id"`
	UserID  string `json:"user_id"`
}

type ListUserDebtsResponse struct {
	Debts []*Debt `json:"debts"`
}

type SettleDebtRequest struct {
	DebtID     string          `json:"debt_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
}

type SettleDebtResponse struct {
	// Debt is nil when the repayment cleared it.
	Debt         *Debt           `json:"debt,omitempty"`
	Remaining    decimal.Decimal `json:"remaining"`
	FullySettled bool            `json:"fully_settled"`
	Settlement   *Settlement     `json:"settlement"`
}

type DeleteDebtRequest struct {
	DebtID string `json:"debt_id"`
}

type DeleteDebtResponse struct{}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}
