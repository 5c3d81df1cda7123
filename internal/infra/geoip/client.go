// Package geoip resolves client IPs to countries through an external
// geolocation HTTP API. Lookups are cached because access logs repeat
// the same addresses constantly.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/cache"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"
	"github.com/rmacedo/edgeadmin-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("geoip")

// Client looks up IP locations with retry, circuit breaker and caching.
// A bulkhead caps concurrent outbound lookups so an ingest burst of
// unseen addresses cannot exhaust the HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	cache      *cache.InMemory[domain.GeoLocation]
	metrics    *observability.Metrics
}

// NewClient creates a geolocation client.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, geoCache *cache.InMemory[domain.GeoLocation], metrics *observability.Metrics) *Client {
	concurrency := cfg.MaxConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(concurrency),
		cache:      geoCache,
		metrics:    metrics,
	}
}

// Lookup resolves one IP address to a location.
func (c *Client) Lookup(ctx context.Context, ip string) (*domain.GeoLocation, error) {
	ctx, span := tracer.Start(ctx, "GeoIP.Lookup")
	defer span.End()
	span.SetAttributes(attribute.String("geo.ip", ip))

	if loc, ok := c.cache.Get(ip); ok {
		c.metrics.IncrCacheHit("geoip")
		return &loc, nil
	}
	c.metrics.IncrCacheMiss("geoip")

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "geoip lookup"}
	}
	defer c.bulkhead.Release()

	var loc domain.GeoLocation

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			reqURL := fmt.Sprintf("%s/json/%s", c.baseURL, url.PathEscape(ip))
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return err
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return &domain.ErrNotFound{Resource: "geolocation", ID: ip}
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("geo API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&loc)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &loc, nil
	})

	if err != nil {
		c.metrics.IncrExternalError("geoip")
		return nil, &domain.ErrExternalService{Service: "geoip", Err: err}
	}

	resolved := result.(*domain.GeoLocation)
	resolved.IP = ip
	c.cache.Set(ip, *resolved)
	return resolved, nil
}
