package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
)

// ============================================================
// Hand-rolled mocks for the port interfaces
// ============================================================

type mockDomainStore struct {
	domains map[string]*domain.Domain
	created *domain.Domain
	updates map[string]any
	deleted []string

	countTotal  int64
	countActive int64
	failCounts  bool
}

func newMockDomainStore(domains ...*domain.Domain) *mockDomainStore {
	m := &mockDomainStore{domains: map[string]*domain.Domain{}}
	for _, d := range domains {
		m.domains[d.ID] = d
	}
	return m
}

func (m *mockDomainStore) ListDomains(ctx context.Context, userID string, filter domain.DomainListFilter, page, pageSize int) ([]domain.Domain, int, error) {
	var out []domain.Domain
	for _, d := range m.domains {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, len(out), nil
}

func (m *mockDomainStore) ListAllDomains(ctx context.Context, page, pageSize int) ([]domain.Domain, int, error) {
	var out []domain.Domain
	for _, d := range m.domains {
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (m *mockDomainStore) GetDomain(ctx context.Context, id string) (*domain.Domain, error) {
	d, ok := m.domains[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: id}
	}
	return d, nil
}

func (m *mockDomainStore) GetDomainByHostname(ctx context.Context, hostname string) (*domain.Domain, error) {
	for _, d := range m.domains {
		if d.Hostname == hostname {
			return d, nil
		}
	}
	return nil, nil
}

func (m *mockDomainStore) CreateDomain(ctx context.Context, d *domain.Domain) (*domain.Domain, error) {
	created := *d
	created.ID = "dom-new"
	created.CreatedAt = time.Now()
	m.created = &created
	m.domains[created.ID] = &created
	return &created, nil
}

func (m *mockDomainStore) UpdateDomain(ctx context.Context, id string, updates map[string]any) (*domain.Domain, error) {
	m.updates = updates
	d, ok := m.domains[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: id}
	}
	return d, nil
}

func (m *mockDomainStore) DeleteDomain(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.domains, id)
	return nil
}

func (m *mockDomainStore) CountDomains(ctx context.Context) (int64, error) {
	if m.failCounts {
		return 0, fmt.Errorf("store down")
	}
	return m.countTotal, nil
}

func (m *mockDomainStore) CountDomainsByStatus(ctx context.Context, status string) (int64, error) {
	if m.failCounts {
		return 0, fmt.Errorf("store down")
	}
	return m.countActive, nil
}

type mockUserStore struct {
	users       map[string]*domain.User
	countUsers  int64
	roleChanges map[string]string
}

func newMockUserStore(users ...*domain.User) *mockUserStore {
	m := &mockUserStore{users: map[string]*domain.User{}, roleChanges: map[string]string{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return m.users[id], nil
}

func (m *mockUserStore) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, int, error) {
	var out []domain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserStore) CountUsers(ctx context.Context) (int64, error) {
	return m.countUsers, nil
}

func (m *mockUserStore) UpdateUserRole(ctx context.Context, id, role string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	m.roleChanges[id] = role
	updated := *u
	updated.Role = role
	return &updated, nil
}

type mockBillingStore struct {
	charges map[string]*domain.Charge
	created *domain.Charge

	pending int64
	revenue float64
	byDay   []domain.ChargeDay
}

func newMockBillingStore(charges ...*domain.Charge) *mockBillingStore {
	m := &mockBillingStore{charges: map[string]*domain.Charge{}}
	for _, c := range charges {
		m.charges[c.ID] = c
	}
	return m
}

func (m *mockBillingStore) CreateCharge(ctx context.Context, c *domain.Charge) (*domain.Charge, error) {
	created := *c
	created.ID = "chg-new"
	created.CreatedAt = time.Now()
	m.created = &created
	m.charges[created.ID] = &created
	return &created, nil
}

func (m *mockBillingStore) GetCharge(ctx context.Context, id string) (*domain.Charge, error) {
	c, ok := m.charges[id]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "charge", ID: id}
	}
	return c, nil
}

func (m *mockBillingStore) ListCharges(ctx context.Context, userID string, page, pageSize int) ([]domain.Charge, int, error) {
	var out []domain.Charge
	for _, c := range m.charges {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (m *mockBillingStore) CountPendingCharges(ctx context.Context) (int64, error) {
	return m.pending, nil
}

func (m *mockBillingStore) SumPaidCharges(ctx context.Context) (float64, error) {
	return m.revenue, nil
}

func (m *mockBillingStore) ChargesByDay(ctx context.Context, days int) ([]domain.ChargeDay, error) {
	return m.byDay, nil
}

type mockAnalyticsStore struct {
	inserted  []domain.TrafficEvent
	summary   *domain.TrafficSummary
	points    []domain.TrafficPoint
	countries []domain.CountryCount
	events24h int64
}

func (m *mockAnalyticsStore) InsertEvents(ctx context.Context, events []domain.TrafficEvent) error {
	m.inserted = append(m.inserted, events...)
	return nil
}

func (m *mockAnalyticsStore) GetTrafficSummary(ctx context.Context, domainID, period string) (*domain.TrafficSummary, error) {
	return m.summary, nil
}

func (m *mockAnalyticsStore) GetTrafficTimeseries(ctx context.Context, domainID, period string) ([]domain.TrafficPoint, error) {
	return m.points, nil
}

func (m *mockAnalyticsStore) GetTopCountries(ctx context.Context, domainID, period string, limit int) ([]domain.CountryCount, error) {
	return m.countries, nil
}

func (m *mockAnalyticsStore) CountEventsSince(ctx context.Context, since time.Time) (int64, error) {
	return m.events24h, nil
}

type mockGeoLookup struct {
	locations map[string]*domain.GeoLocation
	calls     int
}

func (m *mockGeoLookup) Lookup(ctx context.Context, ip string) (*domain.GeoLocation, error) {
	m.calls++
	if loc, ok := m.locations[ip]; ok {
		return loc, nil
	}
	return nil, &domain.ErrNotFound{Resource: "geolocation", ID: ip}
}
