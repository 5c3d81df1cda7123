package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"

	"go.uber.org/zap"
)

const testPixKey = "a1b2c3d4-e5f6-4a7b-8c9d-0e1f2a3b4c5d"

func billingService(store *mockBillingStore) *BillingService {
	return NewBillingService(store, testPixKey, "EdgeAdmin Servicos", "Sao Paulo", observability.NewMetrics(), zap.NewNop())
}

func TestCreateCharge_PersistsPendingWithEMV(t *testing.T) {
	store := newMockBillingStore()
	svc := billingService(store)

	resp, err := svc.CreateCharge(context.Background(), owner(), &domain.CreateChargeRequest{
		Amount:      149.90,
		Description: "monthly plan",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.created == nil {
		t.Fatal("expected charge persisted")
	}
	if store.created.Status != "pending" {
		t.Errorf("expected pending status, got %q", store.created.Status)
	}
	if store.created.UserID != "user-1" {
		t.Errorf("charge must belong to the caller, got %q", store.created.UserID)
	}
	if len(store.created.TransactionID) != 25 {
		t.Errorf("expected 25-char txid, got %d chars", len(store.created.TransactionID))
	}
	if store.created.EMVCode == "" || !strings.HasPrefix(store.created.EMVCode, "000201") {
		t.Errorf("expected EMV payload starting with 000201, got %q", store.created.EMVCode)
	}
	if resp.QRCode == nil || resp.QRCode.PixKeyType != domain.PixKeyRandom {
		t.Errorf("expected RANDOM key type for a uuid merchant key, got %+v", resp.QRCode)
	}
}

func TestCreateCharge_RejectsNonPositiveAmount(t *testing.T) {
	svc := billingService(newMockBillingStore())

	for _, amount := range []float64{0, -1} {
		_, err := svc.CreateCharge(context.Background(), owner(), &domain.CreateChargeRequest{Amount: amount})
		var verr *domain.ErrValidation
		if !errors.As(err, &verr) {
			t.Errorf("amount %v: expected validation error, got %v", amount, err)
		}
	}
}

func TestCreateCharge_RequiresConfiguredKey(t *testing.T) {
	svc := NewBillingService(newMockBillingStore(), "", "EdgeAdmin", "Sao Paulo", observability.NewMetrics(), zap.NewNop())

	_, err := svc.CreateCharge(context.Background(), owner(), &domain.CreateChargeRequest{Amount: 10})
	if err == nil {
		t.Fatal("expected error without a merchant pix key")
	}
}

func TestGetCharge_MasksForeignCharges(t *testing.T) {
	store := newMockBillingStore(&domain.Charge{
		ID:         "chg-1",
		UserID:     "user-2",
		PixKeyType: string(domain.PixKeyRandom),
		EMVCode:    "000201",
	})
	svc := billingService(store)

	_, err := svc.GetCharge(context.Background(), owner(), "chg-1")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found for foreign charge, got %v", err)
	}
}

func TestGetCharge_RendersStoredPayload(t *testing.T) {
	store := newMockBillingStore(&domain.Charge{
		ID:         "chg-1",
		UserID:     "user-1",
		PixKeyType: string(domain.PixKeyRandom),
		EMVCode:    "00020101021226580014br.gov.bcb.pix",
	})
	svc := billingService(store)

	resp, err := svc.GetCharge(context.Background(), owner(), "chg-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.QRCode.EMVCode != store.charges["chg-1"].EMVCode {
		t.Error("QR must be rendered from the stored payload, not regenerated")
	}
	if resp.QRCode.QRCodeBase64 == "" {
		t.Error("expected a rendered image")
	}
}
