package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Traffic analytics — implements port.AnalyticsStore
// ============================================================

// Events are fetched pre-filtered through PostgREST and aggregated
// here; at the listing cap below that is a few MB at worst and keeps
// the Supabase side free of custom RPC functions.
const maxEventsPerAggregation = 10000

// supabaseEvent maps the traffic_events table columns.
type supabaseEvent struct {
	ID         string  `json:"id"`
	DomainID   string  `json:"domain_id"`
	Path       string  `json:"path"`
	Method     string  `json:"method"`
	StatusCode int     `json:"status_code"`
	BytesSent  int64   `json:"bytes_sent"`
	Country    string  `json:"country"`
	CacheHit   bool    `json:"cache_hit"`
	LatencyMs  float64 `json:"latency_ms"`
	OccurredAt string  `json:"occurred_at"`
}

// periodWindow maps a period label to its start time and bucket size.
func periodWindow(period string) (time.Time, time.Duration) {
	now := time.Now().UTC()
	switch period {
	case "7d":
		return now.Add(-7 * 24 * time.Hour), 24 * time.Hour
	case "30d":
		return now.Add(-30 * 24 * time.Hour), 24 * time.Hour
	default: // 24h
		return now.Add(-24 * time.Hour), time.Hour
	}
}

func (c *Client) fetchEvents(ctx context.Context, domainID string, since time.Time) ([]supabaseEvent, error) {
	path := fmt.Sprintf("traffic_events?domain_id=eq.%s&occurred_at=gte.%s&order=occurred_at.desc&limit=%d",
		url.QueryEscape(domainID), url.QueryEscape(since.Format(time.RFC3339)), maxEventsPerAggregation)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/traffic_events", Err: err}
	}

	var rows []supabaseEvent
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, fmt.Errorf("decode traffic_events: %w", err)
		}
	}
	return rows, nil
}

// InsertEvents batch-inserts traffic events.
func (c *Client) InsertEvents(ctx context.Context, events []domain.TrafficEvent) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertEvents")
	defer span.End()
	span.SetAttributes(attribute.Int("events.count", len(events)))

	if len(events) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, map[string]any{
			"domain_id":   e.DomainID,
			"path":        e.Path,
			"method":      e.Method,
			"status_code": e.StatusCode,
			"bytes_sent":  e.BytesSent,
			"country":     e.Country,
			"cache_hit":   e.CacheHit,
			"latency_ms":  e.LatencyMs,
			"occurred_at": e.OccurredAt.UTC().Format(time.RFC3339),
		})
	}

	if _, err := c.doPost(ctx, "traffic_events", rows); err != nil {
		return &domain.ErrExternalService{Service: "supabase/traffic_events", Err: err}
	}
	return nil
}

// GetTrafficSummary aggregates a domain's events over a period.
func (c *Client) GetTrafficSummary(ctx context.Context, domainID, period string) (*domain.TrafficSummary, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTrafficSummary")
	defer span.End()
	span.SetAttributes(attribute.String("domain.id", domainID))

	since, _ := periodWindow(period)
	rows, err := c.fetchEvents(ctx, domainID, since)
	if err != nil {
		return nil, err
	}

	summary := &domain.TrafficSummary{DomainID: domainID, Period: period}
	var cacheHits, serverErrors int64
	var latencySum float64
	for _, r := range rows {
		summary.Requests++
		summary.BytesSent += r.BytesSent
		latencySum += r.LatencyMs
		if r.CacheHit {
			cacheHits++
		}
		if r.StatusCode >= 500 {
			serverErrors++
		}
	}
	if summary.Requests > 0 {
		summary.CacheHitRatio = float64(cacheHits) / float64(summary.Requests)
		summary.ErrorRatio = float64(serverErrors) / float64(summary.Requests)
		summary.AvgLatencyMs = latencySum / float64(summary.Requests)
	}
	return summary, nil
}

// GetTrafficTimeseries buckets a domain's events: hourly for 24h
// windows, daily otherwise. Empty buckets are included so charts stay
// continuous.
func (c *Client) GetTrafficTimeseries(ctx context.Context, domainID, period string) ([]domain.TrafficPoint, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTrafficTimeseries")
	defer span.End()

	since, bucket := periodWindow(period)
	rows, err := c.fetchEvents(ctx, domainID, since)
	if err != nil {
		return nil, err
	}

	buckets := map[time.Time]*domain.TrafficPoint{}
	for _, r := range rows {
		at, err := time.Parse(time.RFC3339, r.OccurredAt)
		if err != nil {
			continue
		}
		key := at.UTC().Truncate(bucket)
		p, ok := buckets[key]
		if !ok {
			p = &domain.TrafficPoint{Timestamp: key}
			buckets[key] = p
		}
		p.Requests++
		p.BytesSent += r.BytesSent
	}

	points := []domain.TrafficPoint{}
	for t := since.Truncate(bucket); !t.After(time.Now().UTC()); t = t.Add(bucket) {
		if p, ok := buckets[t]; ok {
			points = append(points, *p)
		} else {
			points = append(points, domain.TrafficPoint{Timestamp: t})
		}
	}
	return points, nil
}

// GetTopCountries returns the busiest origin countries for a domain.
func (c *Client) GetTopCountries(ctx context.Context, domainID, period string, limit int) ([]domain.CountryCount, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetTopCountries")
	defer span.End()

	since, _ := periodWindow(period)
	rows, err := c.fetchEvents(ctx, domainID, since)
	if err != nil {
		return nil, err
	}

	counts := map[string]int64{}
	for _, r := range rows {
		country := r.Country
		if country == "" {
			country = "unknown"
		}
		counts[country]++
	}

	top := make([]domain.CountryCount, 0, len(counts))
	for country, n := range counts {
		top = append(top, domain.CountryCount{Country: country, Requests: n})
	}
	sort.Slice(top, func(i, j int) bool { return top[i].Requests > top[j].Requests })
	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

// CountEventsSince counts events platform-wide after a point in time.
func (c *Client) CountEventsSince(ctx context.Context, since time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountEventsSince")
	defer span.End()

	return c.count(ctx, "traffic_events?select=id&occurred_at=gte."+url.QueryEscape(since.UTC().Format(time.RFC3339)))
}
