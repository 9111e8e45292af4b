package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

type testClients struct {
	url      string
	users    *apiconnect.UserServiceClient
	groups   *apiconnect.GroupServiceClient
	expenses *apiconnect.ExpenseServiceClient
	debts    *apiconnect.DebtServiceClient
}

// setupTestServer serves all four services over a temp SQLite database.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	l := ledger.New(store)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewUserServiceHandler(NewUserService(l)))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(l)))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(l)))
	mux.Handle(apiconnect.NewDebtServiceHandler(NewDebtService(l)))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testClients{
		url:      server.URL,
		users:    apiconnect.NewUserServiceClient(http.DefaultClient, server.URL),
		groups:   apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		expenses: apiconnect.NewExpenseServiceClient(http.DefaultClient, server.URL),
		debts:    apiconnect.NewDebtServiceClient(http.DefaultClient, server.URL),
	}
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("code: expected %v, got %v (%v)", want, got, err)
	}
}

func (c *testClients) createUser(t *testing.T, name string) string {
	t.Helper()
	resp, err := c.users.CreateUser(context.Background(), connect.NewRequest(&api.CreateUserRequest{
		Name:  name,
		Email: strings.ToLower(name) + "@example.com",
	}))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return resp.Msg.User.ID
}

// createTrio creates Alice, Bob and Charlie and a group with all three.
func (c *testClients) createTrio(t *testing.T) (groupID, alice, bob, charlie string) {
	t.Helper()
	ctx := context.Background()
	alice = c.createUser(t, "Alice")
	bob = c.createUser(t, "Bob")
	charlie = c.createUser(t, "Charlie")

	resp, err := c.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{
		Name:      "Roommates",
		CreatorID: alice,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID = resp.Msg.Group.ID

	for _, id := range []string{bob, charlie} {
		if _, err := c.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: groupID, UserID: id})); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}
	return groupID, alice, bob, charlie
}

func (c *testClients) pay(t *testing.T, groupID, payer string, amount int64) *api.Expense {
	t.Helper()
	resp, err := c.expenses.CreateExpense(context.Background(), connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:     groupID,
		PaidBy:      payer,
		Amount:      decimal.NewFromInt(amount),
		Description: "Groceries",
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

// ledgerOf returns debtor->lender => amount for the group.
func (c *testClients) ledgerOf(t *testing.T, groupID string) map[[2]string]string {
	t.Helper()
	resp, err := c.debts.ListGroupDebts(context.Background(), connect.NewRequest(&api.ListGroupDebtsRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListGroupDebts failed: %v", err)
	}
	out := make(map[[2]string]string, len(resp.Msg.Debts))
	for _, d := range resp.Msg.Debts {
		out[[2]string{d.DebtorID, d.LenderID}] = d.Amount.StringFixed(2)
	}
	return out
}

func TestCreateUser(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	resp, err := c.users.CreateUser(ctx, connect.NewRequest(&api.CreateUserRequest{Name: "Alice", Email: "alice@example.com"}))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if resp.Msg.User.ID == "" {
		t.Error("expected non-empty user ID")
	}
	if resp.Msg.User.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}

	got, err := c.users.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{UserID: resp.Msg.User.ID}))
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Msg.User.Name != "Alice" {
		t.Errorf("name: expected 'Alice', got '%s'", got.Msg.User.Name)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := c.users.CreateUser(ctx, connect.NewRequest(&api.CreateUserRequest{Name: "Other", Email: "alice@example.com"}))
		expectCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := c.users.CreateUser(ctx, connect.NewRequest(&api.CreateUserRequest{Name: "Bob"}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := c.users.GetUser(ctx, connect.NewRequest(&api.GetUserRequest{UserID: "nope"}))
		expectCode(t, err, connect.CodeNotFound)
	})
}

func TestGroupMembership(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	groupID, alice, bob, _ := c.createTrio(t)

	resp, err := c.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if resp.Msg.Group.TotalMembers != 3 {
		t.Errorf("total_members: expected 3, got %d", resp.Msg.Group.TotalMembers)
	}
	if len(resp.Msg.Members) != 3 {
		t.Fatalf("members: expected 3, got %d", len(resp.Msg.Members))
	}
	if resp.Msg.Members[0].UserID != alice || !resp.Msg.Members[0].IsAdmin {
		t.Errorf("expected creator as first admin member, got %+v", resp.Msg.Members[0])
	}

	_, err = c.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: groupID, UserID: bob}))
	expectCode(t, err, connect.CodeAlreadyExists)

	_, err = c.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Ghosts", CreatorID: "nope"}))
	expectCode(t, err, connect.CodeNotFound)

	list, err := c.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(list.Msg.Groups) != 1 {
		t.Errorf("groups: expected 1, got %d", len(list.Msg.Groups))
	}
}

func TestCreateExpense_ReconcilesDebts(t *testing.T) {
	c := setupTestServer(t)
	groupID, alice, bob, charlie := c.createTrio(t)

	c.pay(t, groupID, alice, 90)
	c.pay(t, groupID, bob, 60)

	want := map[[2]string]string{
		{bob, alice}:     "10.00",
		{charlie, alice}: "30.00",
		{charlie, bob}:   "20.00",
	}
	got := c.ledgerOf(t, groupID)
	if len(got) != len(want) {
		t.Fatalf("debts: expected %d, got %d (%v)", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("debt %v: expected %s, got %s", k, v, got[k])
		}
	}
}

func TestCreateExpense_Errors(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	groupID, alice, _, _ := c.createTrio(t)
	outsider := c.createUser(t, "Dave")

	tests := []struct {
		name string
		req  *api.CreateExpenseRequest
		want connect.Code
	}{
		{"missing group", &api.CreateExpenseRequest{PaidBy: alice, Amount: decimal.NewFromInt(10)}, connect.CodeInvalidArgument},
		{"zero amount", &api.CreateExpenseRequest{GroupID: groupID, PaidBy: alice}, connect.CodeFailedPrecondition},
		{"unknown group", &api.CreateExpenseRequest{GroupID: "nope", PaidBy: alice, Amount: decimal.NewFromInt(10)}, connect.CodeNotFound},
		{"payer outside group", &api.CreateExpenseRequest{GroupID: groupID, PaidBy: outsider, Amount: decimal.NewFromInt(10)}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.expenses.CreateExpense(ctx, connect.NewRequest(tt.req))
			expectCode(t, err, tt.want)
		})
	}

	if got := c.ledgerOf(t, groupID); len(got) != 0 {
		t.Errorf("expected no debts after failed creates, got %v", got)
	}
}

func TestDeleteExpense_RevertsDebts(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	groupID, alice, bob, _ := c.createTrio(t)

	c.pay(t, groupID, bob, 30)
	before := c.ledgerOf(t, groupID)

	e := c.pay(t, groupID, alice, 90)
	if _, err := c.expenses.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: e.ID})); err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}

	after := c.ledgerOf(t, groupID)
	if len(after) != len(before) {
		t.Fatalf("debts: expected %v, got %v", before, after)
	}
	for k, v := range before {
		if after[k] != v {
			t.Errorf("debt %v: expected %s, got %s", k, v, after[k])
		}
	}

	list, err := c.expenses.ListGroupExpenses(ctx, connect.NewRequest(&api.ListGroupExpensesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListGroupExpenses failed: %v", err)
	}
	if len(list.Msg.Expenses) != 1 {
		t.Errorf("expenses: expected 1, got %d", len(list.Msg.Expenses))
	}

	_, err = c.expenses.DeleteExpense(ctx, connect.NewRequest(&api.DeleteExpenseRequest{ExpenseID: e.ID}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestRecordPayment(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	groupID, alice, _, _ := c.createTrio(t)
	e := c.pay(t, groupID, alice, 90)

	resp, err := c.expenses.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{
		ExpenseID:  e.ID,
		UserID:     alice,
		AmountPaid: decimal.NewFromInt(90),
	}))
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}
	if got := resp.Msg.Participant.AmountOwed.StringFixed(2); got != "60.00" {
		t.Errorf("amount_owed: expected 60.00, got %s", got)
	}

	detail, err := c.expenses.GetExpense(ctx, connect.NewRequest(&api.GetExpenseRequest{ExpenseID: e.ID}))
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if len(detail.Msg.Participants) != 1 {
		t.Errorf("participants: expected 1, got %d", len(detail.Msg.Participants))
	}
	if detail.Msg.Expense.PaidBy != alice {
		t.Errorf("paid_by: expected %s, got %s", alice, detail.Msg.Expense.PaidBy)
	}
}

func TestDebtQueries(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	groupID, alice, bob, _ := c.createTrio(t)

	t.Run("empty group ledger", func(t *testing.T) {
		resp, err := c.debts.ListGroupDebts(ctx, connect.NewRequest(&api.ListGroupDebtsRequest{GroupID: groupID}))
		if err != nil {
			t.Fatalf("ListGroupDebts failed: %v", err)
		}
		if resp.Msg.Debts == nil || len(resp.Msg.Debts) != 0 {
			t.Errorf("expected empty non-nil debts, got %#v", resp.Msg.Debts)
		}
	})

	t.Run("user without debts", func(t *testing.T) {
		_, err := c.debts.ListUserDebts(ctx, connect.NewRequest(&api.ListUserDebtsRequest{GroupID: groupID, UserID: alice}))
		expectCode(t, err, connect.CodeNotFound)
	})

	c.pay(t, groupID, alice, 90)

	userDebts, err := c.debts.ListUserDebts(ctx, connect.NewRequest(&api.ListUserDebtsRequest{GroupID: groupID, UserID: bob}))
	if err != nil {
		t.Fatalf("ListUserDebts failed: %v", err)
	}
	if len(userDebts.Msg.Debts) != 1 {
		t.Fatalf("debts: expected 1, got %d", len(userDebts.Msg.Debts))
	}
	debtID := userDebts.Msg.Debts[0].ID

	t.Run("partial settle", func(t *testing.T) {
		resp, err := c.debts.SettleDebt(ctx, connect.NewRequest(&api.SettleDebtRequest{DebtID: debtID, AmountPaid: decimal.NewFromInt(10)}))
		if err != nil {
			t.Fatalf("SettleDebt failed: %v", err)
		}
		if resp.Msg.FullySettled {
			t.Error("expected partial settlement")
		}
		if resp.Msg.Debt == nil || resp.Msg.Debt.Amount.StringFixed(2) != "20.00" {
			t.Errorf("expected remaining debt 20.00, got %+v", resp.Msg.Debt)
		}
	})

	t.Run("non-positive settle", func(t *testing.T) {
		_, err := c.debts.SettleDebt(ctx, connect.NewRequest(&api.SettleDebtRequest{DebtID: debtID}))
		expectCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("full settle", func(t *testing.T) {
		resp, err := c.debts.SettleDebt(ctx, connect.NewRequest(&api.SettleDebtRequest{DebtID: debtID, AmountPaid: decimal.NewFromInt(20)}))
		if err != nil {
			t.Fatalf("SettleDebt failed: %v", err)
		}
		if !resp.Msg.FullySettled || resp.Msg.Debt != nil {
			t.Errorf("expected debt cleared, got %+v", resp.Msg)
		}
	})

	settlements, err := c.debts.ListSettlements(ctx, connect.NewRequest(&api.ListSettlementsRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("ListSettlements failed: %v", err)
	}
	if len(settlements.Msg.Settlements) != 2 {
		t.Errorf("settlements: expected 2, got %d", len(settlements.Msg.Settlements))
	}

	_, err = c.debts.DeleteDebt(ctx, connect.NewRequest(&api.DeleteDebtRequest{DebtID: debtID}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestGetGroupBalances(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	groupID, alice, _, charlie := c.createTrio(t)
	c.pay(t, groupID, alice, 90)

	resp, err := c.groups.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	if len(resp.Msg.Balances) != 3 {
		t.Fatalf("balances: expected 3, got %d", len(resp.Msg.Balances))
	}
	for _, b := range resp.Msg.Balances {
		if b.UserID == alice && b.NetBalance.StringFixed(2) != "60.00" {
			t.Errorf("alice net: expected 60.00, got %s", b.NetBalance)
		}
	}
	if len(resp.Msg.Transfers) != 2 {
		t.Fatalf("transfers: expected 2, got %d", len(resp.Msg.Transfers))
	}
	for _, tr := range resp.Msg.Transfers {
		if tr.ToUserID != alice {
			t.Errorf("expected transfers to alice, got %+v", tr)
		}
		if tr.FromUserID == charlie && tr.Amount.StringFixed(2) != "30.00" {
			t.Errorf("charlie transfer: expected 30.00, got %s", tr.Amount)
		}
	}
}

// Plain HTTP clients speak the same JSON without a Connect runtime.
func TestJSONWireFormat(t *testing.T) {
	c := setupTestServer(t)
	groupID, alice, _, _ := c.createTrio(t)

	body := `{"group_id":"` + groupID + `","paid_by":"` + alice + `","amount":"12.30"}`
	resp, err := http.Post(c.url+apiconnect.ExpenseServiceCreateExpenseProcedure, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("status: expected 200, got %d: %s", resp.StatusCode, data)
	}

	var out map[string]map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got := out["expense"]["amount"]; got != "12.3" {
		t.Errorf("amount: expected \"12.3\", got %#v", got)
	}
	if got := out["expense"]["paid_by"]; got != alice {
		t.Errorf("paid_by: expected %s, got %v", alice, got)
	}
}
