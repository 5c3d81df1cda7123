// Package pix builds BR Code (EMV-MPM) payloads for PIX charges and
// renders them as QR codes. Everything here is pure computation; the
// only external piece is the QR raster encoder.
package pix

import (
	"regexp"

	"github.com/rmacedo/edgeadmin-go/internal/domain"
)

// Key format patterns, tried in fixed priority order. Format-only:
// CPF/CNPJ check digits are not verified, matching the registry's
// behaviour at the bank side (the key either resolves or it doesn't).
var (
	cpfPattern    = regexp.MustCompile(`^\d{11}$`)
	cnpjPattern   = regexp.MustCompile(`^\d{14}$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^\+55\d{10,11}$`)
	randomPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ValidateKey classifies a PIX key by shape. First match wins; the
// shapes are disjoint so at most one can match. Returns
// (PixKeyUnknown, false) for anything unrecognized.
func ValidateKey(key string) (domain.PixKeyType, bool) {
	switch {
	case cpfPattern.MatchString(key):
		return domain.PixKeyCPF, true
	case cnpjPattern.MatchString(key):
		return domain.PixKeyCNPJ, true
	case emailPattern.MatchString(key):
		return domain.PixKeyEmail, true
	case phonePattern.MatchString(key):
		return domain.PixKeyPhone, true
	case randomPattern.MatchString(key):
		return domain.PixKeyRandom, true
	default:
		return domain.PixKeyUnknown, false
	}
}
