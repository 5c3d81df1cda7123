// Package port defines the interfaces the services depend on, so the
// Supabase-backed implementations can be swapped for mocks in tests.
package port

import (
	"context"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
)

// UserStore reads and mutates user rows.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, int, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUserRole(ctx context.Context, id, role string) (*domain.User, error)
}

// DomainStore manages customer domain records.
type DomainStore interface {
	ListDomains(ctx context.Context, userID string, filter domain.DomainListFilter, page, pageSize int) ([]domain.Domain, int, error)
	ListAllDomains(ctx context.Context, page, pageSize int) ([]domain.Domain, int, error)
	GetDomain(ctx context.Context, id string) (*domain.Domain, error)
	GetDomainByHostname(ctx context.Context, hostname string) (*domain.Domain, error)
	CreateDomain(ctx context.Context, d *domain.Domain) (*domain.Domain, error)
	UpdateDomain(ctx context.Context, id string, updates map[string]any) (*domain.Domain, error)
	DeleteDomain(ctx context.Context, id string) error
	CountDomains(ctx context.Context) (int64, error)
	CountDomainsByStatus(ctx context.Context, status string) (int64, error)
}

// AnalyticsStore persists traffic events and serves aggregations.
type AnalyticsStore interface {
	InsertEvents(ctx context.Context, events []domain.TrafficEvent) error
	GetTrafficSummary(ctx context.Context, domainID, period string) (*domain.TrafficSummary, error)
	GetTrafficTimeseries(ctx context.Context, domainID, period string) ([]domain.TrafficPoint, error)
	GetTopCountries(ctx context.Context, domainID, period string, limit int) ([]domain.CountryCount, error)
	CountEventsSince(ctx context.Context, since time.Time) (int64, error)
}

// BillingStore persists PIX charges.
type BillingStore interface {
	CreateCharge(ctx context.Context, c *domain.Charge) (*domain.Charge, error)
	GetCharge(ctx context.Context, id string) (*domain.Charge, error)
	ListCharges(ctx context.Context, userID string, page, pageSize int) ([]domain.Charge, int, error)
	CountPendingCharges(ctx context.Context) (int64, error)
	SumPaidCharges(ctx context.Context) (float64, error)
	ChargesByDay(ctx context.Context, days int) ([]domain.ChargeDay, error)
}

// GeoLookup resolves an IP address to a location.
type GeoLookup interface {
	Lookup(ctx context.Context, ip string) (*domain.GeoLocation, error)
}
