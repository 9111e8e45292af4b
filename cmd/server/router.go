package main

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// newRouter mounts the RPC services, health check and metrics endpoint.
func newRouter(l *ledger.Ledger, allowedOrigins []string, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms"},
		MaxAge:         300,
	}))

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.NewMetrics(reg).Interceptor(),
	)

	r.Mount(apiconnect.NewUserServiceHandler(service.NewUserService(l), interceptors))
	r.Mount(apiconnect.NewGroupServiceHandler(service.NewGroupService(l), interceptors))
	r.Mount(apiconnect.NewExpenseServiceHandler(service.NewExpenseService(l), interceptors))
	r.Mount(apiconnect.NewDebtServiceHandler(service.NewDebtService(l), interceptors))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return r
}
