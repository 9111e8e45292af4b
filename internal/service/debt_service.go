package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// DebtService implements the Connect DebtService.
type DebtService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.DebtServiceHandler = (*DebtService)(nil)

// NewDebtService creates a new DebtService backed by the given ledger.
func NewDebtService(l *ledger.Ledger) *DebtService {
	return &DebtService{ledger: l}
}

// ListGroupDebts returns every outstanding debt in a group. An empty ledger is not an error.
func (s *DebtService) ListGroupDebts(ctx context.Context, req *connect.Request[api.ListGroupDebtsRequest]) (*connect.Response[api.ListGroupDebtsResponse], error) {
	slog.Info("ListGroupDebts request received", "group_id", req.Msg.GroupID)

	if err := requireFields("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	debts, err := s.ledger.ListGroupDebts(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListGroupDebts", err, "group_id", req.Msg.GroupID)
	}

	slog.Info("ListGroupDebts successful", "group_id", req.Msg.GroupID, "count", len(debts))

	return connect.NewResponse(&api.ListGroupDebtsResponse{Debts: debtsToAPI(debts)}), nil
}

// ListUserDebts returns the debts a user is party to. No debts is NotFound.
func (s *DebtService) ListUserDebts(ctx context.Context, req *connect.Request[api.ListUserDebtsRequest]) (*connect.Response[api.ListUserDebtsResponse], error) {
	slog.Info("ListUserDebts request received",
		"group_id", req.Msg.GroupID,
		"user_id", req.Msg.UserID,
	)

	if err := requireFields("group_id", req.Msg.GroupID, "user_id", req.Msg.UserID); err != nil {
		return nil, err
	}

	debts, err := s.ledger.ListUserDebts(ctx, req.Msg.GroupID, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("ListUserDebts", err, "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)
	}

	return connect.NewResponse(&api.ListUserDebtsResponse{Debts: debtsToAPI(debts)}), nil
}

// SettleDebt applies a repayment to a debt.
func (s *DebtService) SettleDebt(ctx context.Context, req *connect.Request[api.SettleDebtRequest]) (*connect.Response[api.SettleDebtResponse], error) {
	slog.Info("SettleDebt request received",
		"debt_id", req.Msg.DebtID,
		"amount_paid", req.Msg.AmountPaid.String(),
	)

	if err := requireFields("debt_id", req.Msg.DebtID); err != nil {
		return nil, err
	}

	res, err := s.ledger.SettleDebt(ctx, req.Msg.DebtID, req.Msg.AmountPaid)
	if err != nil {
		return nil, toConnectError("SettleDebt", err, "debt_id", req.Msg.DebtID)
	}

	resp := &api.SettleDebtResponse{
		Remaining:    res.Remaining,
		FullySettled: res.FullySettled,
		Settlement:   settlementToAPI(&res.Settlement),
	}
	if !res.FullySettled {
		debt := res.Debt
		debt.Amount = res.Remaining
		resp.Debt = debtToAPI(&debt)
	}

	slog.Info("Debt settled",
		"debt_id", req.Msg.DebtID,
		"remaining", res.Remaining.String(),
		"fully_settled", res.FullySettled,
	)

	return connect.NewResponse(resp), nil
}

// DeleteDebt removes a debt without recording a settlement.
func (s *DebtService) DeleteDebt(ctx context.Context, req *connect.Request[api.DeleteDebtRequest]) (*connect.Response[api.DeleteDebtResponse], error) {
	slog.Info("DeleteDebt request received", "debt_id", req.Msg.DebtID)

	if err := requireFields("debt_id", req.Msg.DebtID); err != nil {
		return nil, err
	}

	if err := s.ledger.DeleteDebt(ctx, req.Msg.DebtID); err != nil {
		return nil, toConnectError("DeleteDebt", err, "debt_id", req.Msg.DebtID)
	}

	slog.Info("Debt deleted", "debt_id", req.Msg.DebtID)

	return connect.NewResponse(&api.DeleteDebtResponse{}), nil
}

// ListSettlements returns a group's repayment history, newest first.
func (s *DebtService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID)

	if err := requireFields("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	settlements, err := s.ledger.ListSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err, "group_id", req.Msg.GroupID)
	}

	out := make([]*api.Settlement, len(settlements))
	for i := range settlements {
		out[i] = settlementToAPI(&settlements[i])
	}

	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}
