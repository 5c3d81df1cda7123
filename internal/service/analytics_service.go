package service

import (
	"context"
	"strings"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/analytics"
	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"
	"github.com/rmacedo/edgeadmin-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var analyticsTracer = otel.Tracer("service/analytics")

var analyticsPeriods = map[string]bool{
	"24h": true,
	"7d":  true,
	"30d": true,
}

const maxEventsPerIngest = 1000

// AnalyticsService ingests traffic events and serves aggregations.
// Events flow through the batch queue; reads go straight to the store.
type AnalyticsService struct {
	store   port.AnalyticsStore
	domains port.DomainStore
	queue   *analytics.Queue
	geo     port.GeoLookup
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(store port.AnalyticsStore, domains port.DomainStore, queue *analytics.Queue, geo port.GeoLookup, metrics *observability.Metrics, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		store:   store,
		domains: domains,
		queue:   queue,
		geo:     geo,
		metrics: metrics,
		logger:  logger,
	}
}

// Ingest validates a batch of events for one of the caller's domains,
// enriches missing countries from the client IP, and enqueues them.
// Returns how many events were accepted.
func (s *AnalyticsService) Ingest(ctx context.Context, principal *domain.Principal, domainID string, events []domain.TrafficEvent) (int, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.Ingest")
	defer span.End()
	span.SetAttributes(
		attribute.String("domain.id", domainID),
		attribute.Int("events.count", len(events)),
	)

	if len(events) == 0 {
		return 0, &domain.ErrValidation{Field: "events", Message: "at least one event is required"}
	}
	if len(events) > maxEventsPerIngest {
		return 0, &domain.ErrValidation{Field: "events", Message: "too many events in one request"}
	}

	if _, err := s.ownedDomain(ctx, principal, domainID); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	for i := range events {
		events[i].DomainID = domainID
		if events[i].OccurredAt.IsZero() {
			events[i].OccurredAt = now
		}
		if events[i].Method == "" {
			events[i].Method = "GET"
		}
		// Country enrichment is best effort; a failed lookup never
		// fails the ingest.
		if events[i].Country == "" && events[i].ClientIP != "" {
			if loc, err := s.geo.Lookup(ctx, events[i].ClientIP); err == nil {
				events[i].Country = loc.CountryCode
			}
		}
	}

	accepted := s.queue.Enqueue(events...)
	return accepted, nil
}

// Summary aggregates one domain's traffic over a period.
func (s *AnalyticsService) Summary(ctx context.Context, principal *domain.Principal, domainID, period string) (*domain.TrafficSummary, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.Summary")
	defer span.End()

	period, err := s.checkAccess(ctx, principal, domainID, period)
	if err != nil {
		return nil, err
	}
	return s.store.GetTrafficSummary(ctx, domainID, period)
}

// Timeseries returns bucketed traffic for one domain.
func (s *AnalyticsService) Timeseries(ctx context.Context, principal *domain.Principal, domainID, period string) ([]domain.TrafficPoint, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.Timeseries")
	defer span.End()

	period, err := s.checkAccess(ctx, principal, domainID, period)
	if err != nil {
		return nil, err
	}
	return s.store.GetTrafficTimeseries(ctx, domainID, period)
}

// TopCountries returns the busiest origin countries for one domain.
func (s *AnalyticsService) TopCountries(ctx context.Context, principal *domain.Principal, domainID, period string, limit int) ([]domain.CountryCount, error) {
	ctx, span := analyticsTracer.Start(ctx, "AnalyticsService.TopCountries")
	defer span.End()

	period, err := s.checkAccess(ctx, principal, domainID, period)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.store.GetTopCountries(ctx, domainID, period, limit)
}

func (s *AnalyticsService) checkAccess(ctx context.Context, principal *domain.Principal, domainID, period string) (string, error) {
	if period == "" {
		period = "24h"
	}
	if !analyticsPeriods[period] {
		return "", &domain.ErrValidation{Field: "period", Message: "must be one of 24h, 7d, 30d"}
	}
	if _, err := s.ownedDomain(ctx, principal, domainID); err != nil {
		return "", err
	}
	return period, nil
}

// ownedDomain resolves the domain and applies the same not-found
// masking as the domains service for non-admin callers.
func (s *AnalyticsService) ownedDomain(ctx context.Context, principal *domain.Principal, domainID string) (*domain.Domain, error) {
	d, err := s.domains.GetDomain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	role := strings.ToLower(principal.Role)
	if role != domain.RoleAdmin && role != domain.RoleSuperAdmin && d.UserID != principal.ID {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: domainID}
	}
	return d, nil
}
