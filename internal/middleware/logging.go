package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// Successful calls log at info. Failures already shaped into a *connect.Error are
// left to the code that built them; any other error is logged here.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			requestID := chimw.GetReqID(ctx) // empty outside the chi router

			resp, err := next(ctx, req)

			duration := time.Since(start).Milliseconds()
			var connectErr *connect.Error
			if err != nil && !errors.As(err, &connectErr) {
				// Connect errors are logged once where they are built; only stray errors land here.
				slog.Error("RPC error",
					"procedure", procedure,
					"code", connect.CodeOf(err),
					"error", err,
					"request_id", requestID,
					"duration_ms", duration,
				)
			} else if err == nil {
				slog.Info("RPC ok",
					"procedure", procedure,
					"request_id", requestID,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}
