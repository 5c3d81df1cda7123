package domain

import "time"

// ============================================================
// Traffic analytics
// ============================================================

// TrafficEvent is a single access log event reported for a domain.
type TrafficEvent struct {
	ID         string    `json:"id,omitempty"`
	DomainID   string    `json:"domain_id"`
	Path       string    `json:"path"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	BytesSent  int64     `json:"bytes_sent"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Country    string    `json:"country,omitempty"`
	CacheHit   bool      `json:"cache_hit"`
	LatencyMs  float64   `json:"latency_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TrafficSummary aggregates a domain's traffic over a period.
type TrafficSummary struct {
	DomainID      string  `json:"domainId"`
	Period        string  `json:"period"`
	Requests      int64   `json:"requests"`
	BytesSent     int64   `json:"bytesSent"`
	CacheHitRatio float64 `json:"cacheHitRatio"`
	ErrorRatio    float64 `json:"errorRatio"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
}

// TrafficPoint is one bucket of a timeseries.
type TrafficPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Requests  int64     `json:"requests"`
	BytesSent int64     `json:"bytesSent"`
}

// CountryCount is one entry of a top-countries breakdown.
type CountryCount struct {
	Country  string `json:"country"`
	Requests int64  `json:"requests"`
}

// GeoLocation is the result of an IP geolocation lookup.
type GeoLocation struct {
	IP          string `json:"ip"`
	CountryCode string `json:"countryCode"`
	Country     string `json:"country"`
	City        string `json:"city,omitempty"`
}
