package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// SettleResult is the outcome of applying a repayment to a debt.
type SettleResult struct {
	// Debt is the debt as it was before the repayment.
	Debt models.Debt

	// Remaining is the outstanding amount after the repayment; zero when fully settled.
	Remaining decimal.Decimal

	// FullySettled is true when the debt record was deleted.
	FullySettled bool

	Settlement models.Settlement
}

// Balances summarizes a group's ledger per member.
type Balances struct {
	Members   []calculator.MemberBalance
	Transfers []calculator.Transfer
}

// ListGroupDebts returns every debt in the group. No debts is an empty result, not an error.
func (l *Ledger) ListGroupDebts(ctx context.Context, groupID string) ([]models.Debt, error) {
	debts := []models.Debt{}
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		found, err := uow.ListDebtsByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		debts = append(debts, derefDebts(found)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return debts, nil
}

// ListUserDebts returns the group's debts where userID is debtor or lender.
// An empty result is reported as ErrNotFound.
func (l *Ledger) ListUserDebts(ctx context.Context, groupID, userID string) ([]models.Debt, error) {
	var debts []models.Debt
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		found, err := uow.ListDebtsByUser(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return fmt.Errorf("debts for user %s in group %s: %w", userID, groupID, ErrNotFound)
		}
		debts = derefDebts(found)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return debts, nil
}

// SettleDebt applies a repayment of amountPaid to the debt. A debt whose
// remaining amount drops to zero or below is deleted. A Settlement row is
// written for the amount actually applied.
func (l *Ledger) SettleDebt(ctx context.Context, debtID string, amountPaid decimal.Decimal) (*SettleResult, error) {
	if !amountPaid.IsPositive() {
		return nil, fmt.Errorf("%w: amount paid must be positive, got %s", ErrInvalidState, amountPaid)
	}

	var result *SettleResult
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		debt, err := uow.GetDebt(ctx, debtID)
		if err != nil {
			return err
		}

		res := &SettleResult{Debt: *debt, Remaining: debt.Amount.Sub(amountPaid)}
		if res.Remaining.LessThanOrEqual(decimal.Zero) {
			if err := uow.DeleteDebt(ctx, debtID); err != nil {
				return err
			}
			res.Remaining = decimal.Zero
			res.FullySettled = true
		} else if err := uow.UpdateDebtAmount(ctx, debtID, res.Remaining); err != nil {
			return err
		}

		res.Settlement = models.Settlement{
			GroupID:    debt.GroupID,
			DebtID:     debt.ID,
			FromUserID: debt.DebtorID,
			ToUserID:   debt.LenderID,
			Amount:     decimal.Min(amountPaid, debt.Amount),
			CreatedAt:  l.now().Unix(),
		}
		if err := uow.CreateSettlement(ctx, &res.Settlement); err != nil {
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteDebt removes a debt unconditionally, for manual correction.
func (l *Ledger) DeleteDebt(ctx context.Context, debtID string) error {
	return l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		return uow.DeleteDebt(ctx, debtID)
	})
}

// ListSettlements returns the group's repayment history, newest first.
func (l *Ledger) ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	var settlements []models.Settlement
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		if _, err := uow.GetGroup(ctx, groupID); err != nil {
			return err
		}
		found, err := uow.ListSettlementsByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		for _, s := range found {
			settlements = append(settlements, *s)
		}
		return nil
	})
	return settlements, err
}

// GroupBalances derives each member's net position from the current debts
// and suggests a short list of transfers that would clear them.
func (l *Ledger) GroupBalances(ctx context.Context, groupID string) (*Balances, error) {
	var balances *Balances
	err := l.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		if _, err := uow.GetGroup(ctx, groupID); err != nil {
			return err
		}
		members, err := uow.ListMemberIDs(ctx, groupID)
		if err != nil {
			return err
		}
		debts, err := uow.ListDebtsByGroup(ctx, groupID)
		if err != nil {
			return err
		}

		net := calculator.NetBalances(derefDebts(debts))
		seen := make(map[string]bool, len(net))
		for _, b := range net {
			seen[b.UserID] = true
		}
		for _, m := range members {
			if !seen[m] {
				net = append(net, calculator.MemberBalance{UserID: m})
			}
		}
		sort.Slice(net, func(i, j int) bool { return net[i].UserID < net[j].UserID })

		balances = &Balances{
			Members:   net,
			Transfers: calculator.SimplifyDebts(net),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}
