package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func userToAPI(u *models.User) *api.User {
	return &api.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

func groupToAPI(g *models.Group) *api.Group {
	return &api.Group{
		ID:            g.ID,
		Name:          g.Name,
		CreatedBy:     g.CreatedBy,
		TotalMembers:  g.TotalMembers,
		TotalExpenses: g.TotalExpenses,
		CreatedAt:     g.CreatedAt,
	}
}

func memberToAPI(m *models.Membership) *api.Member {
	return &api.Member{
		UserID:   m.UserID,
		IsAdmin:  m.IsAdmin,
		JoinedAt: m.JoinedAt,
	}
}

func expenseToAPI(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.CreatedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func expensesToAPI(expenses []models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i := range expenses {
		out[i] = expenseToAPI(&expenses[i])
	}
	return out
}

func participantToAPI(p *models.ExpenseParticipant) *api.Participant {
	return &api.Participant{
		ID:         p.ID,
		UserID:     p.UserID,
		AmountPaid: p.AmountPaid,
		AmountOwed: p.AmountOwed,
		CreatedAt:  p.CreatedAt,
	}
}

func debtToAPI(d *models.Debt) *api.Debt {
	return &api.Debt{
		ID:        d.ID,
		GroupID:   d.GroupID,
		DebtorID:  d.DebtorID,
		LenderID:  d.LenderID,
		Amount:    d.Amount,
		CreatedAt: d.CreatedAt,
	}
}

func debtsToAPI(debts []models.Debt) []*api.Debt {
	out := make([]*api.Debt, len(debts))
	for i := range debts {
		out[i] = debtToAPI(&debts[i])
	}
	return out
}

func settlementToAPI(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:         s.ID,
		GroupID:    s.GroupID,
		DebtID:     s.DebtID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		CreatedAt:  s.CreatedAt,
	}
}

func balanceToAPI(b *calculator.MemberBalance) *api.MemberBalance {
	return &api.MemberBalance{
		UserID:     b.UserID,
		NetBalance: b.NetBalance,
		TotalLent:  b.TotalLent,
		TotalOwed:  b.TotalOwed,
	}
}

func transferToAPI(t *calculator.Transfer) *api.Transfer {
	return &api.Transfer{
		FromUserID: t.From,
		ToUserID:   t.To,
		Amount:     t.Amount,
	}
}
