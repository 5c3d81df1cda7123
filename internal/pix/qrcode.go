package pix

import (
	"encoding/base64"
	"fmt"

	"github.com/rmacedo/edgeadmin-go/internal/domain"

	qrcode "github.com/skip2/go-qrcode"
)

// qrSize is the rendered image width/height in pixels.
const qrSize = 512

// GenerateQRCode builds the EMV payload for a charge and renders it as
// a PNG QR code (error-correction level M). Fails before any rendering
// if the key is invalid. Rendering is local, no network involved.
// RenderEMV re-renders the QR image for an already-assembled payload,
// e.g. when serving a stored charge back to a client.
func RenderEMV(emv string, keyType domain.PixKeyType) (*domain.PixQRCode, error) {
	png, err := qrcode.Encode(emv, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	b64 := base64.StdEncoding.EncodeToString(png)
	return &domain.PixQRCode{
		EMVCode:      emv,
		QRCodeImage:  "data:image/png;base64," + b64,
		QRCodeBase64: b64,
		PixKeyType:   keyType,
		IsValid:      true,
	}, nil
}

func GenerateQRCode(charge *domain.PixCharge) (*domain.PixQRCode, error) {
	keyType, ok := ValidateKey(charge.PixKey)
	if !ok {
		return nil, &domain.ErrInvalidPixKey{Key: charge.PixKey}
	}

	emv, err := GenerateEMV(charge)
	if err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(emv, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}

	b64 := base64.StdEncoding.EncodeToString(png)
	return &domain.PixQRCode{
		EMVCode:      emv,
		QRCodeImage:  "data:image/png;base64," + b64,
		QRCodeBase64: b64,
		PixKeyType:   keyType,
		IsValid:      true,
	}, nil
}
