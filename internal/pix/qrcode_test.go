package pix_test

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
	"github.com/rmacedo/edgeadmin-go/internal/pix"
)

func TestGenerateQRCode_Success(t *testing.T) {
	result, err := pix.GenerateQRCode(testCharge())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !result.IsValid {
		t.Error("expected isValid=true on success")
	}
	if result.PixKeyType != domain.PixKeyRandom {
		t.Errorf("expected RANDOM key type, got %s", result.PixKeyType)
	}
	if result.EMVCode == "" {
		t.Fatal("expected non-empty EMV code")
	}
	if !strings.HasPrefix(result.QRCodeImage, "data:image/png;base64,") {
		t.Errorf("expected PNG data URI, got %q", result.QRCodeImage[:30])
	}
	if result.QRCodeImage != "data:image/png;base64,"+result.QRCodeBase64 {
		t.Error("data URI and bare base64 should wrap the same bytes")
	}

	png, err := base64.StdEncoding.DecodeString(result.QRCodeBase64)
	if err != nil {
		t.Fatalf("base64 payload does not decode: %v", err)
	}
	// PNG magic bytes.
	if len(png) < 8 || png[0] != 0x89 || string(png[1:4]) != "PNG" {
		t.Error("decoded payload is not a PNG image")
	}
}

func TestGenerateQRCode_InvalidKeyFailsBeforeRendering(t *testing.T) {
	charge := testCharge()
	charge.PixKey = "bogus"

	result, err := pix.GenerateQRCode(charge)
	var invalidKey *domain.ErrInvalidPixKey
	if !errors.As(err, &invalidKey) {
		t.Fatalf("expected ErrInvalidPixKey, got %v", err)
	}
	if result != nil {
		t.Error("expected nil result on invalid key")
	}
}
