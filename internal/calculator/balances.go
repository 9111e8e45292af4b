package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID     string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalLent  decimal.Decimal // Sum of debts where the user is the lender
	TotalOwed  decimal.Decimal // Sum of debts where the user is the debtor
}

// Transfer is a suggested payment that clears part of the group's balances.
type Transfer struct {
	From   string // Person who pays
	To     string // Person who receives
	Amount decimal.Decimal
}

// NetBalances aggregates debts into one balance per user, sorted by user ID.
func NetBalances(debts []models.Debt) []MemberBalance {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if _, exists := balances[id]; !exists {
			balances[id] = &MemberBalance{UserID: id}
		}
		return balances[id]
	}

	for _, d := range debts {
		lender := get(d.LenderID)
		lender.TotalLent = lender.TotalLent.Add(d.Amount)
		debtor := get(d.DebtorID)
		debtor.TotalOwed = debtor.TotalOwed.Add(d.Amount)
	}

	result := make([]MemberBalance, 0, len(balances))
	for _, bal := range balances {
		bal.NetBalance = bal.TotalLent.Sub(bal.TotalOwed)
		result = append(result, *bal)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result
}

// SimplifyDebts turns net balances into a short list of transfers.
//
// Algorithm:
// - Split members into creditors (owed money) and debtors (owe money)
// - Greedy: match the largest debtor with the largest creditor
// - Each match settles min(owed, due); balances under Epsilon count as settled
func SimplifyDebts(balances []MemberBalance) []Transfer {
	type party struct {
		id     string
		amount decimal.Decimal
	}

	var creditors, debtors []party
	for _, bal := range balances {
		switch {
		case bal.NetBalance.GreaterThanOrEqual(Epsilon):
			creditors = append(creditors, party{bal.UserID, bal.NetBalance})
		case bal.NetBalance.Neg().GreaterThanOrEqual(Epsilon):
			debtors = append(debtors, party{bal.UserID, bal.NetBalance.Neg()})
		}
	}

	byAmount := func(ps []party) {
		sort.Slice(ps, func(i, j int) bool {
			if c := ps[i].amount.Cmp(ps[j].amount); c != 0 {
				return c > 0
			}
			return ps[i].id < ps[j].id
		})
	}
	byAmount(creditors)
	byAmount(debtors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)

		if amount.GreaterThanOrEqual(Epsilon) {
			transfers = append(transfers, Transfer{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.LessThan(Epsilon) {
			i++
		}
		if creditors[j].amount.LessThan(Epsilon) {
			j++
		}
	}

	return transfers
}
