package calculator

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

var abc = []string{"A", "B", "C"}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func debt(debtor, lender, amount string) models.Debt {
	return models.Debt{DebtorID: debtor, LenderID: lender, GroupID: "g", Amount: dec(amount)}
}

// touching returns the debts a reconciliation for payer would read.
func touching(debts []models.Debt, payer string) []models.Debt {
	var out []models.Debt
	for _, d := range debts {
		if d.DebtorID == payer || d.LenderID == payer {
			out = append(out, d)
		}
	}
	return out
}

func applyPlan(debts []models.Debt, plan *Plan) []models.Debt {
	byKey := make(map[DebtKey]models.Debt, len(debts))
	for _, d := range debts {
		byKey[KeyOf(d)] = d
	}
	for _, d := range plan.Delete {
		delete(byKey, KeyOf(d))
	}
	for _, d := range plan.Update {
		byKey[KeyOf(d)] = d
	}
	for _, d := range plan.Create {
		byKey[KeyOf(d)] = d
	}

	out := make([]models.Debt, 0, len(byKey))
	for _, d := range byKey {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DebtorID != out[j].DebtorID {
			return out[i].DebtorID < out[j].DebtorID
		}
		return out[i].LenderID < out[j].LenderID
	})
	return out
}

func run(t *testing.T, debts []models.Debt, members []string, payer, amount string, dir Direction) []models.Debt {
	t.Helper()
	plan, err := Reconcile(Event{
		GroupID:      "g",
		PayerID:      payer,
		Amount:       dec(amount),
		Members:      members,
		TotalMembers: len(members),
		Direction:    dir,
	}, touching(debts, payer))
	require.NoError(t, err)
	return applyPlan(debts, plan)
}

// ledgerOf renders debts as "debtor->lender" => fixed two-decimal amount.
func ledgerOf(debts []models.Debt) map[string]string {
	out := make(map[string]string, len(debts))
	for _, d := range debts {
		out[d.DebtorID+"->"+d.LenderID] = d.Amount.StringFixed(2)
	}
	return out
}

func assertNoOppositePairs(t *testing.T, debts []models.Debt) {
	t.Helper()
	seen := make(map[DebtKey]bool, len(debts))
	for _, d := range debts {
		k := KeyOf(d)
		assert.False(t, seen[k], "duplicate debt %v", k)
		assert.False(t, seen[k.Reverse()], "both directions present for %v", k)
		seen[k] = true
		assert.True(t, d.Amount.IsPositive(), "non-positive debt %v = %s", k, d.Amount)
	}
}

func TestReconcile_FirstExpenseCreatesDebts(t *testing.T) {
	// GIVEN: A, B, C with no debts
	// WHEN: A pays 90
	// THEN: B and C each owe A 30
	debts := run(t, nil, abc, "A", "90", Apply)

	assert.Equal(t, map[string]string{"B->A": "30.00", "C->A": "30.00"}, ledgerOf(debts))
}

func TestReconcile_SecondPayerNetsAgainstExisting(t *testing.T) {
	// GIVEN: B owes A 30, C owes A 30
	// WHEN: B pays 60 (share 20)
	// THEN: B's debt to A shrinks to 10, C now also owes B 20
	debts := run(t, nil, abc, "A", "90", Apply)
	debts = run(t, debts, abc, "B", "60", Apply)

	assert.Equal(t, map[string]string{
		"B->A": "10.00",
		"C->A": "30.00",
		"C->B": "20.00",
	}, ledgerOf(debts))
	assertNoOppositePairs(t, debts)
}

func TestReconcile_Cases(t *testing.T) {
	tests := []struct {
		name     string
		existing []models.Debt
		payer    string
		amount   string
		dir      Direction
		want     map[string]string
		creates  int
		updates  int
		deletes  int
	}{
		{
			name:     "member already owes payer grows",
			existing: []models.Debt{debt("B", "A", "5")},
			payer:    "A", amount: "20", dir: Apply,
			want:    map[string]string{"B->A": "15.00"},
			updates: 1,
		},
		{
			name:     "payer owes more than share shrinks",
			existing: []models.Debt{debt("A", "B", "50")},
			payer:    "A", amount: "20", dir: Apply,
			want:    map[string]string{"A->B": "40.00"},
			updates: 1,
		},
		{
			name:     "payer owes less than share flips direction",
			existing: []models.Debt{debt("A", "B", "10")},
			payer:    "A", amount: "60", dir: Apply,
			want:    map[string]string{"B->A": "20.00"},
			creates: 1, deletes: 1,
		},
		{
			name:     "payer owes exactly the share is settled",
			existing: []models.Debt{debt("A", "B", "30")},
			payer:    "A", amount: "60", dir: Apply,
			want:    map[string]string{},
			deletes: 1,
		},
		{
			// Only the flip branch has an epsilon tolerance; a tiny remainder here stays on the books.
			name:     "payer owes barely more than share keeps sub-cent remainder",
			existing: []models.Debt{debt("A", "B", "30.004")},
			payer:    "A", amount: "60", dir: Apply,
			want:    map[string]string{"A->B": "0.00"},
			updates: 1,
		},
		{
			name:     "revert grows payer debt",
			existing: []models.Debt{debt("A", "B", "5")},
			payer:    "A", amount: "20", dir: Revert,
			want:    map[string]string{"A->B": "15.00"},
			updates: 1,
		},
		{
			name:     "revert shrinks member debt",
			existing: []models.Debt{debt("B", "A", "50")},
			payer:    "A", amount: "20", dir: Revert,
			want:    map[string]string{"B->A": "40.00"},
			updates: 1,
		},
		{
			name:     "revert flips member debt",
			existing: []models.Debt{debt("B", "A", "4")},
			payer:    "A", amount: "20", dir: Revert,
			want:    map[string]string{"A->B": "6.00"},
			creates: 1, deletes: 1,
		},
		{
			name:  "revert with no debt creates payer debt",
			payer: "A", amount: "20", dir: Revert,
			want:    map[string]string{"A->B": "10.00"},
			creates: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			members := []string{"A", "B"}
			plan, err := Reconcile(Event{
				GroupID:      "g",
				PayerID:      tt.payer,
				Amount:       dec(tt.amount),
				Members:      members,
				TotalMembers: len(members),
				Direction:    tt.dir,
			}, tt.existing)
			require.NoError(t, err)

			assert.Len(t, plan.Create, tt.creates, "creates")
			assert.Len(t, plan.Update, tt.updates, "updates")
			assert.Len(t, plan.Delete, tt.deletes, "deletes")
			assert.Equal(t, tt.want, ledgerOf(applyPlan(tt.existing, plan)))
		})
	}
}

func TestReconcile_EpsilonSettlement(t *testing.T) {
	// A owes B 0.005; A pays 0.01 split two ways (share 0.005).
	existing := []models.Debt{debt("A", "B", "0.005")}
	debts := run(t, existing, []string{"A", "B"}, "A", "0.01", Apply)

	assert.Empty(t, debts, "debt must be deleted, not left near zero")
}

// The sub-epsilon residue is dropped rather than carried into a new record.
// Pinned: changing it alters every ledger built on the current rule.
func TestReconcile_SubEpsilonResidueIsDropped(t *testing.T) {
	existing := []models.Debt{debt("A", "B", "29.995")}
	plan, err := Reconcile(Event{
		GroupID:      "g",
		PayerID:      "A",
		Amount:       dec("60"),
		Members:      []string{"A", "B"},
		TotalMembers: 2,
		Direction:    Apply,
	}, existing)
	require.NoError(t, err)

	assert.Empty(t, plan.Create, "0.005 residue must not produce a B->A debt")
	assert.Empty(t, plan.Update)
	require.Len(t, plan.Delete, 1)
	assert.Equal(t, "A", plan.Delete[0].DebtorID)
}

// Opposite debt barely above the share shrinks in place; only the flip branch applies epsilon.
func TestReconcile_SubEpsilonRemainderIsKept(t *testing.T) {
	existing := []models.Debt{debt("A", "B", "30.004")}
	plan, err := Reconcile(Event{
		GroupID: "g", PayerID: "A", Amount: dec("60"),
		Members: []string{"A", "B"}, TotalMembers: 2, Direction: Apply,
	}, existing)
	require.NoError(t, err)

	assert.Empty(t, plan.Create)
	assert.Empty(t, plan.Delete)
	require.Len(t, plan.Update, 1)
	assert.Equal(t, "A", plan.Update[0].DebtorID)
	assert.True(t, plan.Update[0].Amount.Equal(dec("0.004")), "got %s", plan.Update[0].Amount)
}

func TestReconcile_ToleratesBothDirections(t *testing.T) {
	existing := []models.Debt{debt("B", "A", "5"), debt("A", "B", "7")}
	plan, err := Reconcile(Event{
		GroupID: "g", PayerID: "A", Amount: dec("20"),
		Members: []string{"A", "B"}, TotalMembers: 2, Direction: Apply,
	}, existing)
	require.NoError(t, err)

	require.Len(t, plan.Update, 1)
	assert.Equal(t, "B", plan.Update[0].DebtorID)
	assert.True(t, plan.Update[0].Amount.Equal(dec("15")))
	assert.Empty(t, plan.Delete)
}

func TestReconcile_SkipsPayerAndKeepsShare(t *testing.T) {
	plan, err := Reconcile(Event{
		GroupID: "g", PayerID: "C", Amount: dec("100"),
		Members: abc, TotalMembers: 3, Direction: Apply,
	}, nil)
	require.NoError(t, err)

	require.Len(t, plan.Create, 2)
	for _, d := range plan.Create {
		assert.NotEqual(t, "C", d.DebtorID)
		assert.Equal(t, "C", d.LenderID)
		assert.Equal(t, "g", d.GroupID)
		assert.Equal(t, "33.33", d.Amount.StringFixed(2))
	}
	assert.True(t, plan.Share.Equal(plan.Create[0].Amount))
}

func TestReconcile_InvalidState(t *testing.T) {
	t.Run("zero total members", func(t *testing.T) {
		_, err := Reconcile(Event{PayerID: "A", Amount: dec("10"), Members: []string{"A"}, Direction: Apply}, nil)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
	t.Run("no member list", func(t *testing.T) {
		_, err := Reconcile(Event{PayerID: "A", Amount: dec("10"), TotalMembers: 1, Direction: Apply}, nil)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
	t.Run("unknown direction", func(t *testing.T) {
		_, err := Reconcile(Event{PayerID: "A", Amount: dec("10"), Members: abc, TotalMembers: 3}, nil)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestReconcile_RoundTrip(t *testing.T) {
	starts := map[string][]models.Debt{
		"empty":          nil,
		"member owes":    {debt("B", "A", "12")},
		"payer owes big": {debt("A", "B", "45"), debt("C", "A", "3")},
		"payer owes small, flips": {debt("A", "C", "10")},
	}

	for name, start := range starts {
		t.Run(name, func(t *testing.T) {
			after := run(t, start, abc, "A", "90", Apply)
			back := run(t, after, abc, "A", "90", Revert)
			assert.Equal(t, ledgerOf(start), ledgerOf(back))
		})
	}
}

type expense struct {
	payer  string
	amount int64
}

// Random expense histories: after each step the ledger has no opposite pairs
// and every member's net position equals paid minus even shares. Reverting
// every expense in a shuffled order empties the ledger.
func TestReconcile_ConservationProperty(t *testing.T) {
	members := []string{"A", "B", "C", "D"}
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		var debts []models.Debt
		var history []expense
		expected := make(map[string]decimal.Decimal)

		for step := 0; step < 15; step++ {
			e := expense{
				payer:  members[rng.Intn(len(members))],
				amount: int64(4 * (1 + rng.Intn(50))),
			}
			history = append(history, e)

			amount := decimal.NewFromInt(e.amount)
			debts = run(t, debts, members, e.payer, amount.String(), Apply)
			assertNoOppositePairs(t, debts)

			share := amount.Div(decimal.NewFromInt(int64(len(members))))
			for _, m := range members {
				paid := decimal.Zero
				if m == e.payer {
					paid = amount
				}
				expected[m] = expected[m].Add(paid.Sub(share))
			}

			got := make(map[string]decimal.Decimal)
			for _, b := range NetBalances(debts) {
				got[b.UserID] = b.NetBalance
			}
			for _, m := range members {
				diff := expected[m].Sub(got[m]).Abs()
				assert.True(t, diff.LessThan(Epsilon), "round %d step %d member %s: want %s got %s",
					round, step, m, expected[m], got[m])
			}
		}

		rng.Shuffle(len(history), func(i, j int) { history[i], history[j] = history[j], history[i] })
		for _, e := range history {
			debts = run(t, debts, members, e.payer, decimal.NewFromInt(e.amount).String(), Revert)
			assertNoOppositePairs(t, debts)
		}
		assert.Empty(t, debts, "round %d: ledger not empty after reverting all expenses", round)
	}
}
