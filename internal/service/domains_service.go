// Package service provides the business logic layer (use cases).
package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"
	"github.com/rmacedo/edgeadmin-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var domainsTracer = otel.Tracer("service/domains")

// hostnamePattern accepts registrable names like "cdn.example.com".
// No scheme, no port, no trailing dot.
var hostnamePattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)

var domainStatuses = map[string]bool{
	"active":  true,
	"paused":  true,
	"pending": true,
}

// DomainsService manages customer domain records.
type DomainsService struct {
	store   port.DomainStore
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewDomainsService creates a domains service.
func NewDomainsService(store port.DomainStore, metrics *observability.Metrics, logger *zap.Logger) *DomainsService {
	return &DomainsService{store: store, metrics: metrics, logger: logger}
}

// List returns a page of the caller's domains.
func (s *DomainsService) List(ctx context.Context, userID string, filter domain.DomainListFilter, page, pageSize int) (*domain.DomainList, error) {
	ctx, span := domainsTracer.Start(ctx, "DomainsService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if filter.Status != "" && !domainStatuses[filter.Status] {
		return nil, &domain.ErrValidation{Field: "status", Message: "must be one of active, paused, pending"}
	}

	items, total, err := s.store.ListDomains(ctx, userID, filter, page, pageSize)
	if err != nil {
		s.metrics.IncrExternalError("domains")
		return nil, err
	}

	return &domain.DomainList{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// Get returns one of the caller's domains. Admins may read any domain.
func (s *DomainsService) Get(ctx context.Context, principal *domain.Principal, id string) (*domain.Domain, error) {
	ctx, span := domainsTracer.Start(ctx, "DomainsService.Get")
	defer span.End()

	d, err := s.store.GetDomain(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(principal, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Create registers a new domain for the caller. Hostnames are unique
// across the whole platform.
func (s *DomainsService) Create(ctx context.Context, userID string, req *domain.CreateDomainRequest) (*domain.Domain, error) {
	ctx, span := domainsTracer.Start(ctx, "DomainsService.Create")
	defer span.End()

	hostname := strings.ToLower(strings.TrimSpace(req.Hostname))
	if !hostnamePattern.MatchString(hostname) {
		return nil, &domain.ErrValidation{Field: "hostname", Message: "must be a valid hostname like cdn.example.com"}
	}
	if err := validateOriginURL(req.OriginURL); err != nil {
		return nil, err
	}

	existing, err := s.store.GetDomainByHostname(ctx, hostname)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &domain.ErrConflict{Message: "hostname already registered: " + hostname}
	}

	created, err := s.store.CreateDomain(ctx, &domain.Domain{
		UserID:     userID,
		Hostname:   hostname,
		OriginURL:  req.OriginURL,
		SSLEnabled: req.SSLEnabled,
		Status:     "pending",
	})
	if err != nil {
		s.metrics.IncrExternalError("domains")
		return nil, err
	}

	s.logger.Info("domain created",
		zap.String("domain_id", created.ID),
		zap.String("hostname", created.Hostname),
		zap.String("user_id", userID),
	)
	return created, nil
}

// Update applies a partial update to one of the caller's domains.
// Hostname is immutable; re-register to change it.
func (s *DomainsService) Update(ctx context.Context, principal *domain.Principal, id string, req *domain.UpdateDomainRequest) (*domain.Domain, error) {
	ctx, span := domainsTracer.Start(ctx, "DomainsService.Update")
	defer span.End()

	existing, err := s.store.GetDomain(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(principal, existing); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.OriginURL != nil {
		if err := validateOriginURL(*req.OriginURL); err != nil {
			return nil, err
		}
		updates["origin_url"] = *req.OriginURL
	}
	if req.SSLEnabled != nil {
		updates["ssl_enabled"] = *req.SSLEnabled
	}
	if req.Status != nil {
		if !domainStatuses[*req.Status] {
			return nil, &domain.ErrValidation{Field: "status", Message: "must be one of active, paused, pending"}
		}
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no updatable fields provided"}
	}

	updated, err := s.store.UpdateDomain(ctx, id, updates)
	if err != nil {
		return nil, err
	}

	s.logger.Info("domain updated",
		zap.String("domain_id", id),
		zap.Int("fields", len(updates)),
	)
	return updated, nil
}

// Delete removes one of the caller's domains.
func (s *DomainsService) Delete(ctx context.Context, principal *domain.Principal, id string) error {
	ctx, span := domainsTracer.Start(ctx, "DomainsService.Delete")
	defer span.End()

	existing, err := s.store.GetDomain(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(principal, existing); err != nil {
		return err
	}

	if err := s.store.DeleteDomain(ctx, id); err != nil {
		return err
	}

	s.logger.Info("domain deleted",
		zap.String("domain_id", id),
		zap.String("hostname", existing.Hostname),
	)
	return nil
}

// authorize hides other users' domains behind a not-found rather than a
// forbidden, so domain ids cannot be probed.
func (s *DomainsService) authorize(principal *domain.Principal, d *domain.Domain) error {
	role := strings.ToLower(principal.Role)
	if role == domain.RoleAdmin || role == domain.RoleSuperAdmin {
		return nil
	}
	if d.UserID != principal.ID {
		return &domain.ErrNotFound{Resource: "domain", ID: d.ID}
	}
	return nil
}

func validateOriginURL(origin string) error {
	if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
		return &domain.ErrValidation{Field: "originUrl", Message: "must start with http:// or https://"}
	}
	if len(origin) <= len("https://") {
		return &domain.ErrValidation{Field: "originUrl", Message: "must include a host"}
	}
	return nil
}
