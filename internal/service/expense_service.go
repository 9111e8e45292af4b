package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates a new ExpenseService backed by the given ledger.
func NewExpenseService(l *ledger.Ledger) *ExpenseService {
	return &ExpenseService{ledger: l}
}

// CreateExpense records a group expense and reconciles the debt ledger.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"paid_by", req.Msg.PaidBy,
		"amount", req.Msg.Amount.String(),
	)

	if err := requireFields("group_id", req.Msg.GroupID, "paid_by", req.Msg.PaidBy); err != nil {
		return nil, err
	}

	expense, err := s.ledger.CreateExpense(ctx, req.Msg.GroupID, req.Msg.PaidBy, req.Msg.Amount, req.Msg.Description)
	if err != nil {
		return nil, toConnectError("CreateExpense", err, "group_id", req.Msg.GroupID, "paid_by", req.Msg.PaidBy)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID)

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// DeleteExpense removes an expense and reverts its debts.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if err := requireFields("expense_id", req.Msg.ExpenseID); err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteExpense(ctx, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError("DeleteExpense", err, "expense_id", req.Msg.ExpenseID)
	}

	slog.Info("Expense deleted", "expense_id", req.Msg.ExpenseID)

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// GetExpense retrieves an expense with its payment receipts.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	if err := requireFields("expense_id", req.Msg.ExpenseID); err != nil {
		return nil, err
	}

	detail, err := s.ledger.GetExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError("GetExpense", err, "expense_id", req.Msg.ExpenseID)
	}

	participants := make([]*api.Participant, len(detail.Participants))
	for i := range detail.Participants {
		participants[i] = participantToAPI(&detail.Participants[i])
	}

	return connect.NewResponse(&api.GetExpenseResponse{
		Expense:      expenseToAPI(&detail.Expense),
		Participants: participants,
	}), nil
}

// ListGroupExpenses retrieves all live expenses of a group, newest first.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	slog.Info("ListGroupExpenses request received", "group_id", req.Msg.GroupID)

	if err := requireFields("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	expenses, err := s.ledger.ListGroupExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListGroupExpenses", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("ListGroupExpenses successful", "group_id", req.Msg.GroupID, "count", len(expenses))

	return connect.NewResponse(&api.ListGroupExpensesResponse{Expenses: expensesToAPI(expenses)}), nil
}

// RecordPayment stores a payment receipt against an expense.
func (s *ExpenseService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	slog.Info("RecordPayment request received",
		"expense_id", req.Msg.ExpenseID,
		"user_id", req.Msg.UserID,
		"amount_paid", req.Msg.AmountPaid.String(),
	)

	if err := requireFields("expense_id", req.Msg.ExpenseID, "user_id", req.Msg.UserID); err != nil {
		return nil, err
	}

	receipt, err := s.ledger.RecordPayment(ctx, req.Msg.ExpenseID, req.Msg.UserID, req.Msg.AmountPaid)
	if err != nil {
		return nil, toConnectError("RecordPayment", err, "expense_id", req.Msg.ExpenseID, "user_id", req.Msg.UserID)
	}

	return connect.NewResponse(&api.RecordPaymentResponse{Participant: participantToAPI(receipt)}), nil
}
