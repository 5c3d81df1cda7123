package domain

import "time"

// ============================================================
// Billing — PIX invoices/charges
// ============================================================

// Charge is a billing charge row with its generated PIX code.
type Charge struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	TransactionID string     `json:"transaction_id"`
	Amount        float64    `json:"amount"`
	Description   string     `json:"description,omitempty"`
	PixKey        string     `json:"pix_key"`
	PixKeyType    string     `json:"pix_key_type"`
	EMVCode       string     `json:"emv_code"`
	Status        string     `json:"status"` // pending, paid, expired
	CreatedAt     time.Time  `json:"created_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// CreateChargeRequest is the body for POST /v1/billing/charges.
type CreateChargeRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// ChargeResponse is a charge plus its rendered QR code.
type ChargeResponse struct {
	Charge *Charge    `json:"charge"`
	QRCode *PixQRCode `json:"qrCode"`
}
