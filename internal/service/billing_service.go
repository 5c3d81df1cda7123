package service

import (
	"context"
	"strings"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/infra/observability"
	"github.com/rmacedo/edgeadmin-go/internal/pix"
	"github.com/rmacedo/edgeadmin-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var billingTracer = otel.Tracer("service/billing")

// maxChargeAmount caps a single invoice; anything above this is almost
// certainly a client-side unit mistake (cents vs reais).
const maxChargeAmount = 1_000_000.00

// BillingService creates PIX charges against the platform's merchant
// key and serves charge history.
type BillingService struct {
	store        port.BillingStore
	pixKey       string
	merchantName string
	merchantCity string
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// NewBillingService creates a billing service.
func NewBillingService(store port.BillingStore, pixKey, merchantName, merchantCity string, metrics *observability.Metrics, logger *zap.Logger) *BillingService {
	return &BillingService{
		store:        store,
		pixKey:       pixKey,
		merchantName: merchantName,
		merchantCity: merchantCity,
		metrics:      metrics,
		logger:       logger,
	}
}

// CreateCharge generates a PIX BR Code for the amount, persists the
// charge as pending, and returns both the row and the rendered QR.
func (s *BillingService) CreateCharge(ctx context.Context, principal *domain.Principal, req *domain.CreateChargeRequest) (*domain.ChargeResponse, error) {
	ctx, span := billingTracer.Start(ctx, "BillingService.CreateCharge")
	defer span.End()
	span.SetAttributes(attribute.Float64("charge.amount", req.Amount))

	if req.Amount <= 0 {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be greater than zero"}
	}
	if req.Amount > maxChargeAmount {
		return nil, &domain.ErrValidation{Field: "amount", Message: "exceeds the maximum charge amount"}
	}
	if s.pixKey == "" {
		return nil, &domain.ErrValidation{Field: "pixKey", Message: "billing is not configured with a merchant pix key"}
	}

	txid := strings.ReplaceAll(uuid.New().String(), "-", "")[:25]

	qr, err := pix.GenerateQRCode(&domain.PixCharge{
		PixKey:        s.pixKey,
		Amount:        req.Amount,
		Description:   req.Description,
		TransactionID: txid,
		MerchantName:  s.merchantName,
		MerchantCity:  s.merchantCity,
	})
	if err != nil {
		return nil, err
	}

	charge, err := s.store.CreateCharge(ctx, &domain.Charge{
		UserID:        principal.ID,
		TransactionID: txid,
		Amount:        req.Amount,
		Description:   req.Description,
		PixKey:        s.pixKey,
		PixKeyType:    string(qr.PixKeyType),
		EMVCode:       qr.EMVCode,
		Status:        "pending",
	})
	if err != nil {
		s.metrics.IncrExternalError("billing")
		return nil, err
	}

	s.metrics.IncrPixCharge(string(qr.PixKeyType))
	s.logger.Info("pix charge created",
		zap.String("charge_id", charge.ID),
		zap.String("transaction_id", txid),
		zap.String("user_id", principal.ID),
		zap.Float64("amount", req.Amount),
	)

	return &domain.ChargeResponse{Charge: charge, QRCode: qr}, nil
}

// GetCharge returns one charge with its QR re-rendered from the stored
// EMV payload. Non-admins only see their own charges.
func (s *BillingService) GetCharge(ctx context.Context, principal *domain.Principal, id string) (*domain.ChargeResponse, error) {
	ctx, span := billingTracer.Start(ctx, "BillingService.GetCharge")
	defer span.End()

	charge, err := s.store.GetCharge(ctx, id)
	if err != nil {
		return nil, err
	}
	role := strings.ToLower(principal.Role)
	if role != domain.RoleAdmin && role != domain.RoleSuperAdmin && charge.UserID != principal.ID {
		return nil, &domain.ErrNotFound{Resource: "charge", ID: id}
	}

	qr, err := pix.RenderEMV(charge.EMVCode, domain.PixKeyType(charge.PixKeyType))
	if err != nil {
		return nil, err
	}
	return &domain.ChargeResponse{Charge: charge, QRCode: qr}, nil
}

// ListCharges returns a page of the caller's own charges.
func (s *BillingService) ListCharges(ctx context.Context, principal *domain.Principal, page, pageSize int) ([]domain.Charge, int, error) {
	ctx, span := billingTracer.Start(ctx, "BillingService.ListCharges")
	defer span.End()

	return s.store.ListCharges(ctx, principal.ID, page, pageSize)
}
