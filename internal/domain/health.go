package domain

import "time"

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status    string            `json:"status"` // ok or degraded
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}
