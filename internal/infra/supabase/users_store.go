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
// Users — implements port.UserStore and auth.UserStore
// ============================================================

// supabaseUser maps the users table columns to our domain.
type supabaseUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	Plan      string `json:"plan"`
	CreatedAt string `json:"created_at"`
}

func (u *supabaseUser) toDomain() domain.User {
	created, _ := time.Parse(time.RFC3339, u.CreatedAt)
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		Plan:      u.Plan,
		CreatedAt: created,
	}
}

// GetUserByID fetches one user row. Returns (nil, nil) when the row
// does not exist — the resolver needs to distinguish "missing" from
// "store unreachable". This runs on every authenticated request, so it
// gets the full breaker + retry treatment.
func (c *Client) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByID")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	var user *domain.User

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("users?id=eq.%s&limit=1", url.QueryEscape(id))
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}
			if body == nil || string(body) == "[]" {
				return nil // row missing, not an error
			}

			var rows []supabaseUser
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode users: %w", err)
			}
			if len(rows) > 0 {
				u := rows[0].toDomain()
				user = &u
			}
			return nil
		})
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}

	return user, nil
}

// ListUsers returns one page of users plus the exact total.
func (c *Client) ListUsers(ctx context.Context, page, pageSize int) ([]domain.User, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListUsers")
	defer span.End()

	total, err := c.count(ctx, "users?select=id")
	if err != nil {
		return nil, 0, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}

	offset := (page - 1) * pageSize
	path := fmt.Sprintf("users?order=created_at.desc&limit=%d&offset=%d", pageSize, offset)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, 0, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}

	var rows []supabaseUser
	if body != nil {
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, 0, fmt.Errorf("decode users: %w", err)
		}
	}

	users := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toDomain())
	}
	return users, int(total), nil
}

// CountUsers returns the total user count.
func (c *Client) CountUsers(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountUsers")
	defer span.End()

	return c.count(ctx, "users?select=id")
}

// UpdateUserRole changes a user's role and returns the updated row.
func (c *Client) UpdateUserRole(ctx context.Context, id, role string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateUserRole")
	defer span.End()

	body, err := c.doPatch(ctx, fmt.Sprintf("users?id=eq.%s", url.QueryEscape(id)), map[string]any{
		"role":       role,
		"updated_at": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/users", Err: err}
	}

	var rows []supabaseUser
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	u := rows[0].toDomain()
	return &u, nil
}
