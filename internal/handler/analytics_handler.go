package handler

import (
	"net/http"
	"strconv"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Analytics — event ingest and per-domain aggregations
// ============================================================

// ingestRequest is the body for POST /v1/analytics/events.
type ingestRequest struct {
	DomainID string                `json:"domainId"`
	Events   []domain.TrafficEvent `json:"events"`
}

type ingestResponse struct {
	Accepted int `json:"accepted"`
}

func ingestEventsHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/analytics/events")
		defer span.End()

		var req ingestRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.DomainID == "" {
			writeError(w, http.StatusBadRequest, "domainId is required")
			return
		}

		accepted, err := svc.Ingest(ctx, PrincipalFromContext(ctx), req.DomainID, req.Events)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		// 202: events are buffered, not yet persisted.
		writeJSON(w, http.StatusAccepted, ingestResponse{Accepted: accepted})
	}
}

func trafficSummaryHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/domains/{id}/analytics/summary")
		defer span.End()

		summary, err := svc.Summary(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "id"), r.URL.Query().Get("period"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func trafficTimeseriesHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/domains/{id}/analytics/timeseries")
		defer span.End()

		points, err := svc.Timeseries(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "id"), r.URL.Query().Get("period"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, points)
	}
}

func topCountriesHandler(svc *service.AnalyticsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/domains/{id}/analytics/top-countries")
		defer span.End()

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}

		countries, err := svc.TopCountries(ctx, PrincipalFromContext(ctx), chi.URLParam(r, "id"), r.URL.Query().Get("period"), limit)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, countries)
	}
}
