package request

// CreatePaymentRequest opens a payment for an approved request. The amount is
// never part of it: the server always charges the approved price. CardToken is
// the client-side tokenization result and is required for card methods only.
type CreatePaymentRequest struct {
	PatientID  string `json:"patient_id" binding:"required"`
	Method     string `json:"method" binding:"required"`
	PayerEmail string `json:"payer_email"`
	CardToken  string `json:"card_token"`
}

// SignDocumentRequest triggers the digital signature workflow for a paid
// request. The certificate password goes straight to the signing provider and
// is never stored.
type SignDocumentRequest struct {
	CertificatePassword string `json:"certificate_password"`
}
