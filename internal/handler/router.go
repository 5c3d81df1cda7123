package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/auth"
	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"
	"github.com/rmacedo/edgeadmin-go/internal/port"
	"github.com/rmacedo/edgeadmin-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Route groups are gated by the hybrid resolver: /v1/auth/local-login is
// the only unauthenticated API route.
func NewRouter(
	resolver *auth.Resolver,
	localAdmin *auth.LocalAdmin,
	domainsSvc *service.DomainsService,
	analyticsSvc *service.AnalyticsService,
	billingSvc *service.BillingService,
	adminSvc *service.AdminService,
	domainStore port.DomainStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(domainStore))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// Auth
		// =============================================
		r.Post("/auth/local-login", localLoginHandler(localAdmin, logger))

		r.Group(func(r chi.Router) {
			r.Use(RequireUser(resolver, logger))
			r.Get("/auth/me", meHandler())

			// =============================================
			// Domains
			// =============================================
			r.Get("/domains", listDomainsHandler(domainsSvc, logger))
			r.Post("/domains", createDomainHandler(domainsSvc, logger))
			r.Get("/domains/{id}", getDomainHandler(domainsSvc, logger))
			r.Put("/domains/{id}", updateDomainHandler(domainsSvc, logger))
			r.Delete("/domains/{id}", deleteDomainHandler(domainsSvc, logger))

			// =============================================
			// Analytics
			// =============================================
			r.Post("/analytics/events", ingestEventsHandler(analyticsSvc, logger))
			r.Get("/domains/{id}/analytics/summary", trafficSummaryHandler(analyticsSvc, logger))
			r.Get("/domains/{id}/analytics/timeseries", trafficTimeseriesHandler(analyticsSvc, logger))
			r.Get("/domains/{id}/analytics/top-countries", topCountriesHandler(analyticsSvc, logger))

			// =============================================
			// Billing
			// =============================================
			r.Post("/billing/charges", createChargeHandler(billingSvc, logger))
			r.Get("/billing/charges", listChargesHandler(billingSvc, logger))
			r.Get("/billing/charges/{id}", getChargeHandler(billingSvc, logger))
		})

		// =============================================
		// Admin console
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(resolver, logger))
			r.Get("/admin/stats", adminStatsHandler(adminSvc, logger))
			r.Get("/admin/users", adminListUsersHandler(adminSvc, logger))
			r.Get("/admin/domains", adminListDomainsHandler(adminSvc, logger))
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireSuperAdmin(resolver, logger))
			r.Patch("/admin/users/{id}/role", adminUpdateRoleHandler(adminSvc, logger))
			r.Get("/admin/overview", adminOverviewHandler(adminSvc, logger))
		})
	})

	return r
}

// healthzHandler probes the data plane with a cheap count. A failing
// store degrades health but does not fail the endpoint.
func healthzHandler(store port.DomainStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{"api": "ok"}
		status := "ok"

		if store != nil {
			if _, err := store.CountDomains(ctx); err != nil {
				checks["supabase"] = "unreachable"
				status = "degraded"
			} else {
				checks["supabase"] = "ok"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
