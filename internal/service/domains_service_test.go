package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"

	"go.uber.org/zap"
)

func domainsService(store *mockDomainStore) *DomainsService {
	return NewDomainsService(store, observability.NewMetrics(), zap.NewNop())
}

func owner() *domain.Principal {
	return &domain.Principal{ID: "user-1", Role: domain.RoleUser}
}

func TestDomainsCreate_NormalizesHostname(t *testing.T) {
	store := newMockDomainStore()
	svc := domainsService(store)

	created, err := svc.Create(context.Background(), "user-1", &domain.CreateDomainRequest{
		Hostname:  "  CDN.Example.COM ",
		OriginURL: "https://origin.example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Hostname != "cdn.example.com" {
		t.Errorf("expected normalized hostname, got %q", created.Hostname)
	}
	if created.Status != "pending" {
		t.Errorf("new domains must start pending, got %q", created.Status)
	}
}

func TestDomainsCreate_RejectsBadHostname(t *testing.T) {
	svc := domainsService(newMockDomainStore())

	for _, hostname := range []string{"", "not a host", "http://cdn.example.com", "example", "-bad.example.com"} {
		_, err := svc.Create(context.Background(), "user-1", &domain.CreateDomainRequest{
			Hostname:  hostname,
			OriginURL: "https://origin.example.com",
		})
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("hostname %q: expected validation error, got %v", hostname, err)
		}
	}
}

func TestDomainsCreate_RejectsBadOrigin(t *testing.T) {
	svc := domainsService(newMockDomainStore())

	_, err := svc.Create(context.Background(), "user-1", &domain.CreateDomainRequest{
		Hostname:  "cdn.example.com",
		OriginURL: "ftp://origin.example.com",
	})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDomainsCreate_DuplicateHostnameConflicts(t *testing.T) {
	store := newMockDomainStore(&domain.Domain{ID: "dom-1", UserID: "user-2", Hostname: "cdn.example.com"})
	svc := domainsService(store)

	_, err := svc.Create(context.Background(), "user-1", &domain.CreateDomainRequest{
		Hostname:  "cdn.example.com",
		OriginURL: "https://origin.example.com",
	})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDomainsGet_MasksOtherUsersAsNotFound(t *testing.T) {
	store := newMockDomainStore(&domain.Domain{ID: "dom-1", UserID: "user-2", Hostname: "cdn.example.com"})
	svc := domainsService(store)

	_, err := svc.Get(context.Background(), owner(), "dom-1")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found for foreign domain, got %v", err)
	}
}

func TestDomainsGet_AdminSeesAnyDomain(t *testing.T) {
	store := newMockDomainStore(&domain.Domain{ID: "dom-1", UserID: "user-2", Hostname: "cdn.example.com"})
	svc := domainsService(store)

	admin := &domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}
	d, err := svc.Get(context.Background(), admin, "dom-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID != "dom-1" {
		t.Errorf("expected dom-1, got %q", d.ID)
	}
}

func TestDomainsUpdate_BuildsPartialUpdate(t *testing.T) {
	store := newMockDomainStore(&domain.Domain{ID: "dom-1", UserID: "user-1", Hostname: "cdn.example.com"})
	svc := domainsService(store)

	status := "paused"
	_, err := svc.Update(context.Background(), owner(), "dom-1", &domain.UpdateDomainRequest{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.updates["status"] != "paused" {
		t.Errorf("expected status in update map, got %v", store.updates)
	}
	if _, ok := store.updates["origin_url"]; ok {
		t.Error("origin_url was not sent and must not be updated")
	}
}

func TestDomainsUpdate_EmptyBodyRejected(t *testing.T) {
	store := newMockDomainStore(&domain.Domain{ID: "dom-1", UserID: "user-1"})
	svc := domainsService(store)

	_, err := svc.Update(context.Background(), owner(), "dom-1", &domain.UpdateDomainRequest{})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDomainsDelete_OwnerOnly(t *testing.T) {
	store := newMockDomainStore(&domain.Domain{ID: "dom-1", UserID: "user-2"})
	svc := domainsService(store)

	if err := svc.Delete(context.Background(), owner(), "dom-1"); err == nil {
		t.Fatal("expected error deleting a foreign domain")
	}
	if len(store.deleted) != 0 {
		t.Error("store delete must not be reached")
	}
}
