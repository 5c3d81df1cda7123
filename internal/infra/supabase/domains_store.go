package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Domain records — implements port.DomainStore
// ============================================================

// supabaseDomain maps the domains table columns.
type supabaseDomain struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Hostname   string `json:"hostname"`
	OriginURL  string `json:"origin_url"`
	SSLEnabled bool   `json:"ssl_enabled"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func (d *supabaseDomain) toDomain() domain.Domain {
	created, _ := time.Parse(time.RFC3339, d.CreatedAt)
	updated, _ := time.Parse(time.RFC3339, d.UpdatedAt)
	return domain.Domain{
		ID:         d.ID,
		UserID:     d.UserID,
		Hostname:   d.Hostname,
		OriginURL:  d.OriginURL,
		SSLEnabled: d.SSLEnabled,
		Status:     d.Status,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
}

// domainsFilterPath builds the PostgREST query string for a user's
// filtered listing. Search matches the hostname as a substring.
func domainsFilterPath(userID string, filter domain.DomainListFilter) string {
	path := fmt.Sprintf("domains?user_id=eq.%s", url.QueryEscape(userID))
	if filter.Status != "" {
		path += "&status=eq." + url.QueryEscape(filter.Status)
	}
	if filter.Search != "" {
		path += "&hostname=ilike." + url.QueryEscape("*"+filter.Search+"*")
	}
	return path
}

// ListDomains returns one page of a user's domains plus the exact
// filtered total.
func (c *Client) ListDomains(ctx context.Context, userID string, filter domain.DomainListFilter, page, pageSize int) ([]domain.Domain, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListDomains")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	base := domainsFilterPath(userID, filter)

	total, err := c.count(ctx, base+"&select=id")
	if err != nil {
		return nil, 0, &domain.ErrExternalService{Service: "supabase/domains", Err: err}
	}

	var rows []supabaseDomain

	_, err = c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			offset := (page - 1) * pageSize
			path := fmt.Sprintf("%s&order=created_at.desc&limit=%d&offset=%d", base, pageSize, offset)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			rows = rows[:0]
			if body != nil {
				if err := json.Unmarshal(body, &rows); err != nil {
					return fmt.Errorf("decode domains: %w", err)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, 0, &domain.ErrExternalService{Service: "supabase/domains", Err: err}
	}

	domains := make([]domain.Domain, 0, len(rows))
	for _, r := range rows {
		domains = append(domains, r.toDomain())
	}
	return domains, int(total), nil
}

// ListAllDomains returns one page across every user (admin console).
func (c *Client) ListAllDomains(ctx context.Context, page, pageSize int) ([]domain.Domain, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAllDomains")
	defer span.End()

	total, err := c.count(ctx, "domains?select=id")
	if err != nil {
		return nil, 0, &domain.ErrExternalService{Service: "supabase/domains", Err: err}
	}

	offset := (page - 1) * pageSize
	path := fmt.Sprintf("domains?order=created_at.desc&limit=%d&offset=%d", pageSize, offset)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, 0, &domain.ErrExternalService{Service: "supabase/domains", Err: err}
	}

	var rows []supabaseDomain
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, 0, fmt.Errorf("decode domains: %w", err)
		}
	}

	domains := make([]domain.Domain, 0, len(rows))
	for _, r := range rows {
		domains = append(domains, r.toDomain())
	}
	return domains, int(total), nil
}

// GetDomain fetches one domain record by id.
func (c *Client) GetDomain(ctx context.Context, id string) (*domain.Domain, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetDomain")
	defer span.End()

	path := fmt.Sprintf("domains?id=eq.%s&limit=1", url.QueryEscape(id))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/domains", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: id}
	}

	var rows []supabaseDomain
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode domains: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: id}
	}
	d := rows[0].toDomain()
	return &d, nil
}

// GetDomainByHostname fetches one record by hostname, nil when absent.
func (c *Client) GetDomainByHostname(ctx context.Context, hostname string) (*domain.Domain, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetDomainByHostname")
	defer span.End()

	path := fmt.Sprintf("domains?hostname=eq.%s&limit=1", url.QueryEscape(hostname))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/domains", Err: err}
	}
	if body == nil || string(body) == "[]" {
		return nil, nil
	}

	var rows []supabaseDomain
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode domains: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	d := rows[0].toDomain()
	return &d, nil
}

// CreateDomain inserts a new record and returns it with its row id.
func (c *Client) CreateDomain(ctx context.Context, d *domain.Domain) (*domain.Domain, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateDomain")
	defer span.End()

	row := map[string]any{
		"user_id":     d.UserID,
		"hostname":    d.Hostname,
		"origin_url":  d.OriginURL,
		"ssl_enabled": d.SSLEnabled,
		"status":      d.Status,
	}

	body, err := c.doPost(ctx, "domains", row)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/domains", Err: err}
	}

	var rows []supabaseDomain
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode domain: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no result from domains insert")
	}
	created := rows[0].toDomain()
	return &created, nil
}

// UpdateDomain applies a partial update and returns the new row.
func (c *Client) UpdateDomain(ctx context.Context, id string, updates map[string]any) (*domain.Domain, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateDomain")
	defer span.End()

	updates["updated_at"] = time.Now().Format(time.RFC3339)

	body, err := c.doPatch(ctx, fmt.Sprintf("domains?id=eq.%s", url.QueryEscape(id)), updates)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/domains", Err: err}
	}

	var rows []supabaseDomain
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode domain: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "domain", ID: id}
	}
	updated := rows[0].toDomain()
	return &updated, nil
}

// DeleteDomain removes a record.
func (c *Client) DeleteDomain(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteDomain")
	defer span.End()

	return c.doDelete(ctx, fmt.Sprintf("domains?id=eq.%s", url.QueryEscape(id)))
}

// CountDomains returns the total domain record count.
func (c *Client) CountDomains(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountDomains")
	defer span.End()

	return c.count(ctx, "domains?select=id")
}

// CountDomainsByStatus counts records in one status.
func (c *Client) CountDomainsByStatus(ctx context.Context, status string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountDomainsByStatus")
	defer span.End()

	return c.count(ctx, "domains?select=id&status=eq."+url.QueryEscape(status))
}
