package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// NewGroupService creates a new GroupService backed by the given ledger.
func NewGroupService(l *ledger.Ledger) *GroupService {
	return &GroupService{ledger: l}
}

// CreateGroup creates a new group with the creator as its admin member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"creator_id", req.Msg.CreatorID,
	)

	if err := requireFields("name", req.Msg.Name, "creator_id", req.Msg.CreatorID); err != nil {
		return nil, err
	}

	group, err := s.ledger.CreateGroup(ctx, req.Msg.Name, req.Msg.CreatorID)
	if err != nil {
		return nil, toConnectError("CreateGroup", err, "creator_id", req.Msg.CreatorID)
	}

	slog.Info("Group created", "group_id", group.ID)

	return connect.NewResponse(&api.CreateGroupResponse{Group: groupToAPI(group)}), nil
}

// GetGroup retrieves a group with its members and expenses.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	if err := requireFields("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	detail, err := s.ledger.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroup", err, "group_id", req.Msg.GroupID)
	}

	members := make([]*api.Member, len(detail.Members))
	for i := range detail.Members {
		members[i] = memberToAPI(&detail.Members[i])
	}

	slog.Info("GetGroup successful",
		"group_id", detail.Group.ID,
		"members", len(members),
		"expenses", len(detail.Expenses),
	)

	return connect.NewResponse(&api.GetGroupResponse{
		Group:    groupToAPI(&detail.Group),
		Members:  members,
		Expenses: expensesToAPI(detail.Expenses),
	}), nil
}

// ListGroups retrieves all groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	slog.Info("ListGroups request received")

	groups, err := s.ledger.ListGroups(ctx)
	if err != nil {
		return nil, toConnectError("ListGroups", err)
	}

	out := make([]*api.Group, len(groups))
	for i := range groups {
		out[i] = groupToAPI(&groups[i])
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// AddMember adds an existing user to a group.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	slog.Info("AddMember request received",
		"group_id", req.Msg.GroupID,
		"user_id", req.Msg.UserID,
	)

	if err := requireFields("group_id", req.Msg.GroupID, "user_id", req.Msg.UserID); err != nil {
		return nil, err
	}

	membership, err := s.ledger.AddMember(ctx, req.Msg.GroupID, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("AddMember", err, "group_id", req.Msg.GroupID, "user_id", req.Msg.UserID)
	}

	slog.Info("Member added", "group_id", membership.GroupID, "user_id", membership.UserID)

	return connect.NewResponse(&api.AddMemberResponse{Member: memberToAPI(membership)}), nil
}

// GetGroupBalances reports each member's net position and suggested transfers.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	if err := requireFields("group_id", req.Msg.GroupID); err != nil {
		return nil, err
	}

	balances, err := s.ledger.GroupBalances(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroupBalances", err, "group_id", req.Msg.GroupID)
	}

	resp := &api.GetGroupBalancesResponse{
		Balances:  make([]*api.MemberBalance, len(balances.Members)),
		Transfers: make([]*api.Transfer, len(balances.Transfers)),
	}
	for i := range balances.Members {
		resp.Balances[i] = balanceToAPI(&balances.Members[i])
	}
	for i := range balances.Transfers {
		resp.Transfers[i] = transferToAPI(&balances.Transfers[i])
	}

	return connect.NewResponse(resp), nil
}
