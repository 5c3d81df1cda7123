package pix

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rmacedo/edgeadmin-go/internal/domain"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EMV-MPM field IDs used by BR Code.
const (
	idPayloadFormat       = "00"
	idInitiationMethod    = "01"
	idMerchantAccountInfo = "26"
	idMerchantCategory    = "52"
	idCurrency            = "53"
	idAmount              = "54"
	idCountryCode         = "58"
	idMerchantName        = "59"
	idMerchantCity        = "60"
	idAdditionalData      = "62"
	idCRC                 = "63"

	// Nested under 26.
	idGUI    = "00"
	idPixKey = "01"
	// Nested under 62.
	idReferenceLabel = "05"

	pixGUI = "br.gov.bcb.pix"

	maxMerchantName  = 25
	maxMerchantCity  = 15
	maxTransactionID = 25
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SanitizeField strips diacritics, truncates to max characters and
// uppercases. Idempotent: the output is already accent-free, within
// length and uppercase.
func SanitizeField(value string, max int) string {
	out, _, err := transform.String(stripAccents, value)
	if err != nil {
		out = value
	}
	r := []rune(out)
	if max >= 0 && len(r) > max {
		r = r[:max]
	}
	return strings.ToUpper(string(r))
}

// tlv encodes one id-length-value triple. The length is the value's
// byte count, zero-padded to two digits; values over 99 bytes cannot
// be encoded in EMV-MPM and are rejected.
func tlv(id, value string) (string, error) {
	if len(value) > 99 {
		return "", &domain.ErrValidation{Field: id, Message: "EMV field value exceeds 99 characters"}
	}
	return fmt.Sprintf("%s%02d%s", id, len(value), value), nil
}

// GenerateEMV assembles the full BR Code payload for a charge,
// terminated by its CRC16. Field order is fixed — some validators
// check canonical ordering, not just tag presence.
func GenerateEMV(charge *domain.PixCharge) (string, error) {
	if _, ok := ValidateKey(charge.PixKey); !ok {
		return "", &domain.ErrInvalidPixKey{Key: charge.PixKey}
	}
	if charge.Amount <= 0 {
		return "", &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	name := SanitizeField(charge.MerchantName, maxMerchantName)
	city := SanitizeField(charge.MerchantCity, maxMerchantCity)
	txid := SanitizeField(charge.TransactionID, maxTransactionID)

	gui, err := tlv(idGUI, pixGUI)
	if err != nil {
		return "", err
	}
	key, err := tlv(idPixKey, charge.PixKey)
	if err != nil {
		return "", err
	}
	ref, err := tlv(idReferenceLabel, txid)
	if err != nil {
		return "", err
	}

	fields := []struct {
		id    string
		value string
	}{
		{idPayloadFormat, "01"},
		{idInitiationMethod, "12"},
		{idMerchantAccountInfo, gui + key},
		{idMerchantCategory, "0000"},
		{idCurrency, "986"}, // ISO 4217 BRL
		{idAmount, fmt.Sprintf("%.2f", charge.Amount)},
		{idCountryCode, "BR"},
		{idMerchantName, name},
		{idMerchantCity, city},
		{idAdditionalData, ref},
	}

	var b strings.Builder
	for _, f := range fields {
		encoded, err := tlv(f.id, f.value)
		if err != nil {
			return "", err
		}
		b.WriteString(encoded)
	}

	// The CRC tag and length ("6304") are part of the checksum input;
	// only the four hex digits come after.
	b.WriteString(idCRC + "04")
	payload := b.String()
	return payload + CRC16(payload), nil
}
