package auth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rmacedo/edgeadmin-go/internal/auth"
	"github.com/rmacedo/edgeadmin-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// --- Mocks ---

type mockStore struct {
	users map[string]*domain.User
	err   error
	calls int
}

func (m *mockStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.users[id], nil
}

type mockIntrospector struct {
	subject string
	err     error
}

func (m *mockIntrospector) IntrospectToken(_ context.Context, _ string) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.subject, m.subject + "@example.com", nil
}

func signLocalToken(t *testing.T, sub, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newResolver(store *mockStore, intro *mockIntrospector, localAdmin bool) *auth.Resolver {
	return auth.NewResolver(store, intro, testSecret, localAdmin, zap.NewNop())
}

// --- Tests ---

func TestResolve_MissingToken(t *testing.T) {
	r := newResolver(&mockStore{}, &mockIntrospector{err: errors.New("no")}, false)

	_, err := r.Resolve(context.Background(), "")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

// A credential both paths would accept must resolve via the hosted path:
// the principal's role comes from the database row of the hosted subject.
func TestResolve_HostedPathPrecedence(t *testing.T) {
	store := &mockStore{users: map[string]*domain.User{
		"hosted-id": {ID: "hosted-id", Email: "a@b.co", Role: "ADMIN"},
		"local-id":  {ID: "local-id", Email: "c@d.co", Role: "user"},
	}}
	r := newResolver(store, &mockIntrospector{subject: "hosted-id"}, false)

	// The token is also a validly-signed local token for another user.
	token := signLocalToken(t, "local-id", "user")

	p, err := r.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.ID != "hosted-id" {
		t.Errorf("expected hosted-path principal, got %s", p.ID)
	}
	if p.Role != "admin" {
		t.Errorf("expected database-sourced role 'admin', got %q", p.Role)
	}
}

func TestResolve_HostedVerifiedButProfileMissing(t *testing.T) {
	r := newResolver(&mockStore{users: map[string]*domain.User{}}, &mockIntrospector{subject: "ghost"}, false)

	_, err := r.Resolve(context.Background(), "some-hosted-token")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResolve_LocalAdminEscapeHatch(t *testing.T) {
	store := &mockStore{users: map[string]*domain.User{}}
	r := newResolver(store, &mockIntrospector{err: errors.New("not a hosted token")}, true)

	token := signLocalToken(t, "admin", "admin")

	p, err := r.ResolveRole(context.Background(), token, domain.RoleSuperAdmin)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !p.Synthetic {
		t.Error("expected synthetic principal")
	}
	if store.calls != 0 {
		t.Errorf("expected no database reads for built-in admin, got %d", store.calls)
	}
}

func TestResolve_LocalAdminDisabled(t *testing.T) {
	r := newResolver(&mockStore{}, &mockIntrospector{err: errors.New("nope")}, false)

	token := signLocalToken(t, "admin", "admin")

	_, err := r.Resolve(context.Background(), token)
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized when escape hatch disabled, got %v", err)
	}
}

func TestResolve_LocalTokenResolvesSubject(t *testing.T) {
	store := &mockStore{users: map[string]*domain.User{
		"u-1": {ID: "u-1", Email: "u@e.co", Name: "User One", Role: "user"},
	}}
	r := newResolver(store, &mockIntrospector{err: errors.New("nope")}, false)

	token := signLocalToken(t, "u-1", "user")

	p, err := r.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.ID != "u-1" || p.Synthetic {
		t.Errorf("unexpected principal: %+v", p)
	}
}

func TestResolve_LocalTokenUnknownSubject(t *testing.T) {
	r := newResolver(&mockStore{users: map[string]*domain.User{}}, &mockIntrospector{err: errors.New("nope")}, false)

	token := signLocalToken(t, "deleted-user", "user")

	_, err := r.Resolve(context.Background(), token)
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResolve_UndecodableByBothPaths(t *testing.T) {
	r := newResolver(&mockStore{}, &mockIntrospector{err: errors.New("nope")}, true)

	_, err := r.Resolve(context.Background(), "garbage-token")
	var unauthorized *domain.ErrUnauthorized
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestResolveRole_Gating(t *testing.T) {
	store := &mockStore{users: map[string]*domain.User{
		"admin-1": {ID: "admin-1", Role: "admin"},
		"super-1": {ID: "super-1", Role: "SuperAdmin"},
	}}

	// Requiring superadmin rejects an admin with 403 semantics.
	r := newResolver(store, &mockIntrospector{subject: "admin-1"}, false)
	_, err := r.ResolveRole(context.Background(), "token", domain.RoleSuperAdmin)
	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Requiring admin accepts a superadmin (case-insensitive).
	r = newResolver(store, &mockIntrospector{subject: "super-1"}, false)
	p, err := r.ResolveRole(context.Background(), "token", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.ID != "super-1" {
		t.Errorf("unexpected principal: %+v", p)
	}
}

func TestExtractToken_Order(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.Header.Set("X-Access-Token", "custom-token")
	req.AddCookie(&http.Cookie{Name: "sb-access-token", Value: "cookie-token"})

	if got := auth.ExtractToken(req); got != "header-token" {
		t.Errorf("expected Authorization header to win, got %q", got)
	}

	req.Header.Del("Authorization")
	if got := auth.ExtractToken(req); got != "custom-token" {
		t.Errorf("expected custom header next, got %q", got)
	}

	req.Header.Del("X-Access-Token")
	if got := auth.ExtractToken(req); got != "cookie-token" {
		t.Errorf("expected cookie fallback, got %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "edgeadmin_token", Value: "local-cookie"})
	if got := auth.ExtractToken(req); got != "local-cookie" {
		t.Errorf("expected second cookie name, got %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, "/", nil)
	if got := auth.ExtractToken(req); got != "" {
		t.Errorf("expected empty token, got %q", got)
	}
}
