package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// Fully-qualified service names.
const (
	UserServiceName    = "splitledger.v1.UserService"
	GroupServiceName   = "splitledger.v1.GroupService"
	ExpenseServiceName = "splitledger.v1.ExpenseService"
	DebtServiceName    = "splitledger.v1.DebtService"
)

// Procedure paths. Every RPC is served as POST <path> with a JSON body.
const (
	UserServiceCreateUserProcedure = "/" + UserServiceName + "/CreateUser"
	UserServiceGetUserProcedure    = "/" + UserServiceName + "/GetUser"

	GroupServiceCreateGroupProcedure      = "/" + GroupServiceName + "/CreateGroup"
	GroupServiceGetGroupProcedure         = "/" + GroupServiceName + "/GetGroup"
	GroupServiceListGroupsProcedure       = "/" + GroupServiceName + "/ListGroups"
	GroupServiceAddMemberProcedure        = "/" + GroupServiceName + "/AddMember"
	GroupServiceGetGroupBalancesProcedure = "/" + GroupServiceName + "/GetGroupBalances"

	ExpenseServiceCreateExpenseProcedure     = "/" + ExpenseServiceName + "/CreateExpense"
	ExpenseServiceDeleteExpenseProcedure     = "/" + ExpenseServiceName + "/DeleteExpense"
	ExpenseServiceGetExpenseProcedure        = "/" + ExpenseServiceName + "/GetExpense"
	ExpenseServiceListGroupExpensesProcedure = "/" + ExpenseServiceName + "/ListGroupExpenses"
	ExpenseServiceRecordPaymentProcedure     = "/" + ExpenseServiceName + "/RecordPayment"

	DebtServiceListGroupDebtsProcedure  = "/" + DebtServiceName + "/ListGroupDebts"
	DebtServiceListUserDebtsProcedure   = "/" + DebtServiceName + "/ListUserDebts"
	DebtServiceSettleDebtProcedure      = "/" + DebtServiceName + "/SettleDebt"
	DebtServiceDeleteDebtProcedure      = "/" + DebtServiceName + "/DeleteDebt"
	DebtServiceListSettlementsProcedure = "/" + DebtServiceName + "/ListSettlements"
)

// routes dispatches on the exact procedure path under a service prefix.
type routes map[string]http.Handler

func (r routes) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r[req.URL.Path]; ok {
		h.ServeHTTP(w, req)
		return
	}
	http.NotFound(w, req)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
}

// =============================================================================
// UserService
// =============================================================================

type UserServiceHandler interface {
	CreateUser(context.Context, *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error)
	GetUser(context.Context, *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error)
}

// NewUserServiceHandler returns the mount path and handler for svc.
func NewUserServiceHandler(svc UserServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + UserServiceName + "/", routes{
		UserServiceCreateUserProcedure: connect.NewUnaryHandler(UserServiceCreateUserProcedure, svc.CreateUser, opts...),
		UserServiceGetUserProcedure:    connect.NewUnaryHandler(UserServiceGetUserProcedure, svc.GetUser, opts...),
	}
}

type UserServiceClient struct {
	createUser *connect.Client[api.CreateUserRequest, api.CreateUserResponse]
	getUser    *connect.Client[api.GetUserRequest, api.GetUserResponse]
}

// NewUserServiceClient builds a client for the service hosted at baseURL.
func NewUserServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *UserServiceClient {
	opts = clientOptions(opts)
	return &UserServiceClient{
		createUser: connect.NewClient[api.CreateUserRequest, api.CreateUserResponse](httpClient, baseURL+UserServiceCreateUserProcedure, opts...),
		getUser:    connect.NewClient[api.GetUserRequest, api.GetUserResponse](httpClient, baseURL+UserServiceGetUserProcedure, opts...),
	}
}

func (c *UserServiceClient) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	return c.createUser.CallUnary(ctx, req)
}

func (c *UserServiceClient) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	return c.getUser.CallUnary(ctx, req)
}

// =============================================================================
// GroupService
// =============================================================================

type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
}

func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + GroupServiceName + "/", routes{
		GroupServiceCreateGroupProcedure:      connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...),
		GroupServiceGetGroupProcedure:         connect.NewUnaryHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts...),
		GroupServiceListGroupsProcedure:       connect.NewUnaryHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts...),
		GroupServiceAddMemberProcedure:        connect.NewUnaryHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts...),
		GroupServiceGetGroupBalancesProcedure: connect.NewUnaryHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...),
	}
}

type GroupServiceClient struct {
	createGroup      *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup         *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups       *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	addMember        *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
}

func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	opts = clientOptions(opts)
	return &GroupServiceClient{
		createGroup:      connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		getGroup:         connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GroupServiceGetGroupProcedure, opts...),
		listGroups:       connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+GroupServiceListGroupsProcedure, opts...),
		addMember:        connect.NewClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL+GroupServiceAddMemberProcedure, opts...),
		getGroupBalances: connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+GroupServiceGetGroupBalancesProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

// =============================================================================
// ExpenseService
// =============================================================================

type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	ListGroupExpenses(context.Context, *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error)
	RecordPayment(context.Context, *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error)
}

func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ExpenseServiceName + "/", routes{
		ExpenseServiceCreateExpenseProcedure:     connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		ExpenseServiceDeleteExpenseProcedure:     connect.NewUnaryHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...),
		ExpenseServiceGetExpenseProcedure:        connect.NewUnaryHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts...),
		ExpenseServiceListGroupExpensesProcedure: connect.NewUnaryHandler(ExpenseServiceListGroupExpensesProcedure, svc.ListGroupExpenses, opts...),
		ExpenseServiceRecordPaymentProcedure:     connect.NewUnaryHandler(ExpenseServiceRecordPaymentProcedure, svc.RecordPayment, opts...),
	}
}

type ExpenseServiceClient struct {
	createExpense     *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	deleteExpense     *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	getExpense        *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	listGroupExpenses *connect.Client[api.ListGroupExpensesRequest, api.ListGroupExpensesResponse]
	recordPayment     *connect.Client[api.RecordPaymentRequest, api.RecordPaymentResponse]
}

func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	opts = clientOptions(opts)
	return &ExpenseServiceClient{
		createExpense:     connect.NewClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		deleteExpense:     connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+ExpenseServiceDeleteExpenseProcedure, opts...),
		getExpense:        connect.NewClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL+ExpenseServiceGetExpenseProcedure, opts...),
		listGroupExpenses: connect.NewClient[api.ListGroupExpensesRequest, api.ListGroupExpensesResponse](httpClient, baseURL+ExpenseServiceListGroupExpensesProcedure, opts...),
		recordPayment:     connect.NewClient[api.RecordPaymentRequest, api.RecordPaymentResponse](httpClient, baseURL+ExpenseServiceRecordPaymentProcedure, opts...),
	}
}

func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	return c.listGroupExpenses.CallUnary(ctx, req)
}

func (c *ExpenseServiceClient) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	return c.recordPayment.CallUnary(ctx, req)
}

// =============================================================================
// DebtService
// =============================================================================

type DebtServiceHandler interface {
	ListGroupDebts(context.Context, *connect.Request[api.ListGroupDebtsRequest]) (*connect.Response[api.ListGroupDebtsResponse], error)
	ListUserDebts(context.Context, *connect.Request[api.ListUserDebtsRequest]) (*connect.Response[api.ListUserDebtsResponse], error)
	SettleDebt(context.Context, *connect.Request[api.SettleDebtRequest]) (*connect.Response[api.SettleDebtResponse], error)
	DeleteDebt(context.Context, *connect.Request[api.DeleteDebtRequest]) (*connect.Response[api.DeleteDebtResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
}

func NewDebtServiceHandler(svc DebtServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + DebtServiceName + "/", routes{
		DebtServiceListGroupDebtsProcedure:  connect.NewUnaryHandler(DebtServiceListGroupDebtsProcedure, svc.ListGroupDebts, opts...),
		DebtServiceListUserDebtsProcedure:   connect.NewUnaryHandler(DebtServiceListUserDebtsProcedure, svc.ListUserDebts, opts...),
		DebtServiceSettleDebtProcedure:      connect.NewUnaryHandler(DebtServiceSettleDebtProcedure, svc.SettleDebt, opts...),
		DebtServiceDeleteDebtProcedure:      connect.NewUnaryHandler(DebtServiceDeleteDebtProcedure, svc.DeleteDebt, opts...),
		DebtServiceListSettlementsProcedure: connect.NewUnaryHandler(DebtServiceListSettlementsProcedure, svc.ListSettlements, opts...),
	}
}

type DebtServiceClient struct {
	listGroupDebts  *connect.Client[api.ListGroupDebtsRequest, api.ListGroupDebtsResponse]
	listUserDebts   *connect.Client[api.ListUserDebtsRequest, api.ListUserDebtsResponse]
	settleDebt      *connect.Client[api.SettleDebtRequest, api.SettleDebtResponse]
	deleteDebt      *connect.Client[api.DeleteDebtRequest, api.DeleteDebtResponse]
	listSettlements *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
}

func NewDebtServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *DebtServiceClient {
	opts = clientOptions(opts)
	return &DebtServiceClient{
		listGroupDebts:  connect.NewClient[api.ListGroupDebtsRequest, api.ListGroupDebtsResponse](httpClient, baseURL+DebtServiceListGroupDebtsProcedure, opts...),
		listUserDebts:   connect.NewClient[api.ListUserDebtsRequest, api.ListUserDebtsResponse](httpClient, baseURL+DebtServiceListUserDebtsProcedure, opts...),
		settleDebt:      connect.NewClient[api.SettleDebtRequest, api.SettleDebtResponse](httpClient, baseURL+DebtServiceSettleDebtProcedure, opts...),
		deleteDebt:      connect.NewClient[api.DeleteDebtRequest, api.DeleteDebtResponse](httpClient, baseURL+DebtServiceDeleteDebtProcedure, opts...),
		listSettlements: connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+DebtServiceListSettlementsProcedure, opts...),
	}
}

func (c *DebtServiceClient) ListGroupDebts(ctx context.Context, req *connect.Request[api.ListGroupDebtsRequest]) (*connect.Response[api.ListGroupDebtsResponse], error) {
	return c.listGroupDebts.CallUnary(ctx, req)
}

func (c *DebtServiceClient) ListUserDebts(ctx context.Context, req *connect.Request[api.ListUserDebtsRequest]) (*connect.Response[api.ListUserDebtsResponse], error) {
	return c.listUserDebts.CallUnary(ctx, req)
}

func (c *DebtServiceClient) SettleDebt(ctx context.Context, req *connect.Request[api.SettleDebtRequest]) (*connect.Response[api.SettleDebtResponse], error) {
	return c.settleDebt.CallUnary(ctx, req)
}

func (c *DebtServiceClient) DeleteDebt(ctx context.Context, req *connect.Request[api.DeleteDebtRequest]) (*connect.Response[api.DeleteDebtResponse], error) {
	return c.deleteDebt.CallUnary(ctx, req)
}

func (c *DebtServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}
