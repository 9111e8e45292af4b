package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// UserService implements the Connect UserService.
type UserService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.UserServiceHandler = (*UserService)(nil)

// NewUserService creates a new UserService backed by the given ledger.
func NewUserService(l *ledger.Ledger) *UserService {
	return &UserService{ledger: l}
}

// CreateUser registers a user identity.
func (s *UserService) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	slog.Info("CreateUser request received", "email", req.Msg.Email)

	if err := requireFields("name", req.Msg.Name, "email", req.Msg.Email); err != nil {
		return nil, err
	}

	user, err := s.ledger.CreateUser(ctx, req.Msg.Name, req.Msg.Email)
	if err != nil {
		return nil, toConnectError("CreateUser", err, "email", req.Msg.Email)
	}

	slog.Info("User created", "user_id", user.ID)

	return connect.NewResponse(&api.CreateUserResponse{User: userToAPI(user)}), nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, req *connect.Request[api.GetUserRequest]) (*connect.Response[api.GetUserResponse], error) {
	slog.Info("GetUser request received", "user_id", req.Msg.UserID)

	if err := requireFields("user_id", req.Msg.UserID); err != nil {
		return nil, err
	}

	user, err := s.ledger.GetUser(ctx, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError("GetUser", err, "user_id", req.Msg.UserID)
	}

	return connect.NewResponse(&api.GetUserResponse{User: userToAPI(user)}), nil
}
