package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Direction tells Reconcile whether an expense is being added to or removed from the ledger.
type Direction int

const (
	// Apply adds an expense: every other member now owes the payer their share.
	Apply Direction = 1
	// Revert removes an expense and undoes what Apply did.
	Revert Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Apply:
		return "apply"
	case Revert:
		return "revert"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// DebtKey identifies the ordered (debtor, lender) pair of a debt.
type DebtKey struct {
	DebtorID string
	LenderID string
}

// Reverse returns the key for the opposite direction.
func (k DebtKey) Reverse() DebtKey {
	return DebtKey{DebtorID: k.LenderID, LenderID: k.DebtorID}
}

// KeyOf returns the pair key of a debt.
func KeyOf(d models.Debt) DebtKey {
	return DebtKey{DebtorID: d.DebtorID, LenderID: d.LenderID}
}

// Event is one expense lifecycle change to reconcile against the ledger.
type Event struct {
	GroupID string
	PayerID string
	Amount  decimal.Decimal

	// Members are the current member IDs of the group, payer included.
	Members []string

	// TotalMembers is the group's member count used to compute the even share.
	TotalMembers int

	Direction Direction
}

// Plan is the set of debt mutations produced by one reconciliation pass.
// Created debts carry no ID; the store assigns one.
type Plan struct {
	Share  decimal.Decimal
	Create []models.Debt
	Update []models.Debt
	Delete []models.Debt
}

// Empty reports whether the plan has nothing to apply.
func (p *Plan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// Reconcile computes the debt mutations for ev.
//
// existing must be the debts of the group that touch the payer, in either
// direction, read once before any mutation. Each non-payer member is adjusted
// against that snapshot independently:
//
//   - a debt in the direction the event strengthens grows by the share
//   - an opposite debt larger than the share shrinks by the share
//   - an opposite debt smaller than the share by at least Epsilon is replaced
//     by a debt in the strengthened direction for the difference
//   - otherwise the opposite debt is deleted and the sub-Epsilon residue is dropped
//   - with no debt between the pair, a new debt for the share is created
func Reconcile(ev Event, existing []models.Debt) (*Plan, error) {
	if ev.Direction != Apply && ev.Direction != Revert {
		return nil, fmt.Errorf("%w: unknown direction %d", ErrInvalidState, int(ev.Direction))
	}
	if len(ev.Members) == 0 {
		return nil, fmt.Errorf("%w: group %s has no members", ErrInvalidState, ev.GroupID)
	}
	share, err := EvenShare(ev.Amount, ev.TotalMembers)
	if err != nil {
		return nil, err
	}

	snapshot := make(map[DebtKey]models.Debt, len(existing))
	for _, d := range existing {
		if _, dup := snapshot[KeyOf(d)]; !dup {
			snapshot[KeyOf(d)] = d
		}
	}

	plan := &Plan{Share: share}
	for _, member := range ev.Members {
		if member == ev.PayerID {
			continue
		}

		owing := DebtKey{DebtorID: member, LenderID: ev.PayerID}
		if ev.Direction == Revert {
			owing = owing.Reverse()
		}

		if d, ok := snapshot[owing]; ok {
			d.Amount = d.Amount.Add(share)
			plan.Update = append(plan.Update, d)
			continue
		}

		d, ok := snapshot[owing.Reverse()]
		if !ok {
			plan.Create = append(plan.Create, newDebt(ev.GroupID, owing, share))
			continue
		}

		switch {
		case d.Amount.GreaterThan(share):
			d.Amount = d.Amount.Sub(share)
			plan.Update = append(plan.Update, d)
		case share.Sub(d.Amount).GreaterThanOrEqual(Epsilon):
			plan.Delete = append(plan.Delete, d)
			plan.Create = append(plan.Create, newDebt(ev.GroupID, owing, share.Sub(d.Amount)))
		default:
			// Residue below Epsilon is discarded, not carried over.
			plan.Delete = append(plan.Delete, d)
		}
	}

	return plan, nil
}

func newDebt(groupID string, key DebtKey, amount decimal.Decimal) models.Debt {
	return models.Debt{
		DebtorID: key.DebtorID,
		LenderID: key.LenderID,
		GroupID:  groupID,
		Amount:   amount,
	}
}
