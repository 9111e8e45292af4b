package service

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  connect.Code
		level string
	}{
		{"not found", fmt.Errorf("group g1: %w", ledger.ErrNotFound), connect.CodeNotFound, "WARN"},
		{"invalid state", fmt.Errorf("%w: no members", ledger.ErrInvalidState), connect.CodeFailedPrecondition, "WARN"},
		{"conflict", fmt.Errorf("email taken: %w", ledger.ErrConflict), connect.CodeAlreadyExists, "WARN"},
		{"unexpected", errors.New("disk full"), connect.CodeInternal, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)

			err := toConnectError("CreateExpense", tt.err, "group_id", "g1")
			if got := connect.CodeOf(err); got != tt.code {
				t.Errorf("code: got %v, want %v", got, tt.code)
			}

			out := logs.String()
			if got := strings.Count(out, `"msg":"CreateExpense failed"`); got != 1 {
				t.Errorf("expected one log line, got %d:\n%s", got, out)
			}
			if !strings.Contains(out, `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %s, got:\n%s", tt.level, out)
			}
		})
	}
}

func TestRequireFields(t *testing.T) {
	logs := captureLogs(t)

	if err := requireFields("group_id", "g1", "user_id", "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("expected no logs for valid input, got:\n%s", logs.String())
	}

	err := requireFields("group_id", "g1", "user_id", "")
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
	out := logs.String()
	if strings.Count(out, `"msg":"request rejected"`) != 1 || !strings.Contains(out, `"field":"user_id"`) {
		t.Errorf("expected one rejection naming user_id, got:\n%s", out)
	}
}
