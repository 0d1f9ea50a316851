// Package transporthttp assembles the HTTP surface: global middleware,
// feature routes, health and metrics endpoints.
package transporthttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	hospitalhandler "vaxledger/internal/hospital/handler"
	"vaxledger/internal/platform/metrics"
	"vaxledger/internal/platform/middleware"
	recordhandler "vaxledger/internal/record/handler"
	"vaxledger/internal/transport/http/shared"
)

const requestTimeout = 30 * time.Second

// HealthCheck probes one dependency for the readiness endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger      *slog.Logger
	Validator   middleware.JWTValidator
	HTTPMetrics *metrics.HTTP
	Hospital    *hospitalhandler.Handler
	Record      *recordhandler.Handler
	Checks      []HealthCheck
}

// NewRouter builds the full route tree. State-changing routes sit behind
// bearer auth; reads and the ops endpoints are open.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(deps.HTTPMetrics))

	r.Get("/healthz", handleHealth(deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		deps.Hospital.RegisterPublic(r)
		deps.Record.RegisterPublic(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		deps.Hospital.RegisterProtected(r)
		deps.Record.RegisterProtected(r)
	})

	return r
}

func handleHealth(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, check := range checks {
			if err := check.Check(r.Context()); err != nil {
				results[check.Name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			results[check.Name] = "ok"
		}
		shared.WriteJSON(w, status, map[string]any{
			"status": http.StatusText(status),
			"checks": results,
		})
	}
}
