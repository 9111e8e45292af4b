package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

func setupRouter(t *testing.T, origins ...string) *httptest.Server {
	t.Helper()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	server := httptest.NewServer(newRouter(ledger.New(memory.New()), origins, prometheus.NewRegistry()))
	t.Cleanup(server.Close)
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestHealthz(t *testing.T) {
	server := setupRouter(t)

	status, body := get(t, server.URL+"/healthz")
	if status != http.StatusOK || body != "ok" {
		t.Errorf("healthz: got %d %q", status, body)
	}
}

func TestRouter_ServesRPCAndMetrics(t *testing.T) {
	server := setupRouter(t)
	users := apiconnect.NewUserServiceClient(http.DefaultClient, server.URL)

	resp, err := users.CreateUser(context.Background(), connect.NewRequest(&api.CreateUserRequest{
		Name:  "Alice",
		Email: "alice@example.com",
	}))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if resp.Msg.User.ID == "" {
		t.Error("expected user ID")
	}

	_, err = users.GetUser(context.Background(), connect.NewRequest(&api.GetUserRequest{UserID: "nope"}))
	if connect.CodeOf(err) != connect.CodeNotFound {
		t.Errorf("expected not_found, got %v", err)
	}

	status, body := get(t, server.URL+"/metrics")
	if status != http.StatusOK {
		t.Fatalf("metrics: status %d", status)
	}
	for _, want := range []string{
		`splitledger_rpc_requests_total{code="ok",procedure="/splitledger.v1.UserService/CreateUser"} 1`,
		`splitledger_rpc_requests_total{code="not_found",procedure="/splitledger.v1.UserService/GetUser"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestRouter_UnknownProcedure(t *testing.T) {
	server := setupRouter(t)

	resp, err := http.Post(server.URL+"/splitledger.v1.UserService/DeleteUser", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: expected 404, got %d", resp.StatusCode)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	server := setupRouter(t, "http://localhost:5173")

	req, _ := http.NewRequest(http.MethodOptions, server.URL+apiconnect.GroupServiceListGroupsProcedure, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Access-Control-Allow-Origin: got %q", got)
	}
}
