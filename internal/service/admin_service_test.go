package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"

	"go.uber.org/zap"
)

func adminFixture() (*AdminService, *mockUserStore, *mockDomainStore, *mockBillingStore, *mockAnalyticsStore) {
	users := newMockUserStore(
		&domain.User{ID: "user-1", Email: "a@example.com", Role: domain.RoleUser},
		&domain.User{ID: "admin-1", Email: "b@example.com", Role: domain.RoleSuperAdmin},
	)
	users.countUsers = 2

	domains := newMockDomainStore()
	domains.countTotal = 5
	domains.countActive = 3

	billing := newMockBillingStore()
	billing.pending = 4
	billing.revenue = 1234.50
	billing.byDay = []domain.ChargeDay{{Day: "2026-08-30", Count: 2, Amount: 100}}

	events := &mockAnalyticsStore{events24h: 99}

	svc := NewAdminService(users, domains, billing, events, observability.NewMetrics(), zap.NewNop())
	return svc, users, domains, billing, events
}

func superadmin() *domain.Principal {
	return &domain.Principal{ID: "admin-1", Role: domain.RoleSuperAdmin}
}

func TestAdminStats_GathersAllCounters(t *testing.T) {
	svc, _, _, _, _ := adminFixture()

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d, want 2", stats.TotalUsers)
	}
	if stats.TotalDomains != 5 {
		t.Errorf("TotalDomains = %d, want 5", stats.TotalDomains)
	}
	if stats.ActiveDomains != 3 {
		t.Errorf("ActiveDomains = %d, want 3", stats.ActiveDomains)
	}
	if stats.PendingCharges != 4 {
		t.Errorf("PendingCharges = %d, want 4", stats.PendingCharges)
	}
	if stats.EventsLast24h != 99 {
		t.Errorf("EventsLast24h = %d, want 99", stats.EventsLast24h)
	}
}

func TestAdminStats_OneFailureFailsAll(t *testing.T) {
	svc, _, domains, _, _ := adminFixture()
	domains.failCounts = true

	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("expected error when one counter source is down")
	}
}

func TestUpdateUserRole_ValidatesRole(t *testing.T) {
	svc, _, _, _, _ := adminFixture()

	_, err := svc.UpdateUserRole(context.Background(), superadmin(), "user-1", &domain.UpdateRoleRequest{Role: "root"})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateUserRole_NormalizesCase(t *testing.T) {
	svc, users, _, _, _ := adminFixture()

	updated, err := svc.UpdateUserRole(context.Background(), superadmin(), "user-1", &domain.UpdateRoleRequest{Role: " Admin "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Role != domain.RoleAdmin {
		t.Errorf("expected lowercased role, got %q", updated.Role)
	}
	if users.roleChanges["user-1"] != domain.RoleAdmin {
		t.Errorf("store received %q", users.roleChanges["user-1"])
	}
}

func TestUpdateUserRole_CannotChangeOwnRole(t *testing.T) {
	svc, users, _, _, _ := adminFixture()

	_, err := svc.UpdateUserRole(context.Background(), superadmin(), "admin-1", &domain.UpdateRoleRequest{Role: domain.RoleUser})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(users.roleChanges) != 0 {
		t.Error("store must not be reached for a self role change")
	}
}

func TestOverview_CombinesStatsAndRevenue(t *testing.T) {
	svc, _, _, _, _ := adminFixture()

	overview, err := svc.Overview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overview.Stats == nil || overview.Stats.TotalUsers != 2 {
		t.Errorf("expected embedded stats, got %+v", overview.Stats)
	}
	if overview.RevenuePaid != 1234.50 {
		t.Errorf("RevenuePaid = %v, want 1234.50", overview.RevenuePaid)
	}
	if len(overview.ChargesByDay) != 1 {
		t.Errorf("expected charges-by-day passed through, got %v", overview.ChargesByDay)
	}
	if overview.AuthActivity == nil {
		t.Error("expected auth activity snapshot")
	}
}
