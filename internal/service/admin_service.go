package service

import (
	"context"
	"strings"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"
	"github.com/rmacedo/edgeadmin-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var adminTracer = otel.Tracer("service/admin")

var assignableRoles = map[string]bool{
	domain.RoleUser:       true,
	domain.RoleAdmin:      true,
	domain.RoleSuperAdmin: true,
}

// AdminService serves the admin and superadmin dashboards.
type AdminService struct {
	users   port.UserStore
	domains port.DomainStore
	billing port.BillingStore
	events  port.AnalyticsStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAdminService creates an admin service.
func NewAdminService(users port.UserStore, domains port.DomainStore, billing port.BillingStore, events port.AnalyticsStore, metrics *observability.Metrics, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:   users,
		domains: domains,
		billing: billing,
		events:  events,
		metrics: metrics,
		logger:  logger,
	}
}

// Stats gathers the dashboard counters. The five counts are
// independent reads, so they run concurrently; one failure fails the
// whole request rather than serving a half-filled dashboard.
func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Stats")
	defer span.End()

	start := time.Now()
	stats := &domain.AdminStats{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.CountUsers(gctx)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.domains.CountDomains(gctx)
		stats.TotalDomains = n
		return err
	})
	g.Go(func() error {
		n, err := s.domains.CountDomainsByStatus(gctx, "active")
		stats.ActiveDomains = n
		return err
	})
	g.Go(func() error {
		n, err := s.billing.CountPendingCharges(gctx)
		stats.PendingCharges = n
		return err
	})
	g.Go(func() error {
		n, err := s.events.CountEventsSince(gctx, time.Now().Add(-24*time.Hour))
		stats.EventsLast24h = n
		return err
	})

	if err := g.Wait(); err != nil {
		s.metrics.IncrExternalError("admin-stats")
		return nil, err
	}

	s.metrics.RecordRequestDuration("admin_stats", time.Since(start))
	return stats, nil
}

// ListUsers returns a page of all users.
func (s *AdminService) ListUsers(ctx context.Context, page, pageSize int) (*domain.UserList, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListUsers")
	defer span.End()

	items, total, err := s.users.ListUsers(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &domain.UserList{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// ListAllDomains returns a page of every user's domains.
func (s *AdminService) ListAllDomains(ctx context.Context, page, pageSize int) (*domain.DomainList, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.ListAllDomains")
	defer span.End()

	items, total, err := s.domains.ListAllDomains(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &domain.DomainList{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// UpdateUserRole changes a user's role. Superadmin only; a caller can
// never change their own role, which keeps at least one superadmin
// able to undo a mistake.
func (s *AdminService) UpdateUserRole(ctx context.Context, principal *domain.Principal, userID string, req *domain.UpdateRoleRequest) (*domain.User, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateUserRole")
	defer span.End()

	role := strings.ToLower(strings.TrimSpace(req.Role))
	if !assignableRoles[role] {
		return nil, &domain.ErrValidation{Field: "role", Message: "must be one of user, admin, superadmin"}
	}
	if userID == principal.ID {
		return nil, &domain.ErrValidation{Field: "id", Message: "cannot change your own role"}
	}

	updated, err := s.users.UpdateUserRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Warn("user role changed",
		zap.String("user_id", userID),
		zap.String("new_role", role),
		zap.String("changed_by", principal.ID),
	)
	return updated, nil
}

// Overview builds the superadmin platform snapshot.
func (s *AdminService) Overview(ctx context.Context) (*domain.PlatformOverview, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.Overview")
	defer span.End()

	overview := &domain.PlatformOverview{
		AuthActivity: s.metrics.AuthActivity(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.Stats(gctx)
		overview.Stats = stats
		return err
	})
	g.Go(func() error {
		revenue, err := s.billing.SumPaidCharges(gctx)
		overview.RevenuePaid = revenue
		return err
	})
	g.Go(func() error {
		days, err := s.billing.ChargesByDay(gctx, 30)
		overview.ChargesByDay = days
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overview, nil
}
