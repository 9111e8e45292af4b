package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
)

// toConnectError logs a failed operation and maps ledger errors onto Connect codes.
func toConnectError(op string, err error, attrs ...any) error {
	attrs = append(attrs, "error", err)

	var code connect.Code
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, ledger.ErrInvalidState):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, ledger.ErrConflict):
		code = connect.CodeAlreadyExists
	default:
		slog.Error(op+" failed", attrs...)
		return connect.NewError(connect.CodeInternal, err)
	}

	slog.Warn(op+" failed", append(attrs, "code", code.String())...)
	return connect.NewError(code, err)
}

// requireFields returns an InvalidArgument error naming the first empty field.
func requireFields(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			slog.Warn("request rejected", "field", fields[i], "code", connect.CodeInvalidArgument.String())
			return connect.NewError(connect.CodeInvalidArgument, errors.New(fields[i]+" is required"))
		}
	}
	return nil
}
