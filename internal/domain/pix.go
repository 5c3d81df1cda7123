package domain

// ============================================================
// PIX charge types (EMV BR Code generation)
// ============================================================

// PixKeyType is the detected variant of a PIX key.
type PixKeyType string

const (
	PixKeyCPF     PixKeyType = "CPF"
	PixKeyCNPJ    PixKeyType = "CNPJ"
	PixKeyEmail   PixKeyType = "EMAIL"
	PixKeyPhone   PixKeyType = "PHONE"
	PixKeyRandom  PixKeyType = "RANDOM"
	PixKeyUnknown PixKeyType = "UNKNOWN"
)

// PixCharge describes one static charge to encode as a BR Code.
type PixCharge struct {
	PixKey        string
	Amount        float64
	Description   string
	TransactionID string
	MerchantName  string
	MerchantCity  string
}

// PixQRCode is the rendered result of a charge: the EMV payload plus
// the QR image in both data-URI and bare base64 form.
type PixQRCode struct {
	EMVCode      string     `json:"emvCode"`
	QRCodeImage  string     `json:"qrCodeImage"`
	QRCodeBase64 string     `json:"qrCodeBase64"`
	PixKeyType   PixKeyType `json:"pixKeyType"`
	IsValid      bool       `json:"isValid"`
}
