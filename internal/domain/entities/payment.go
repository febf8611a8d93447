package entities

import (
	"errors"
	"time"
)

// PaymentStatus follows the provider-facing lifecycle. Rejected and refunded
// are terminal.

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodPix         PaymentMethod = "pix"
	PaymentMethodCheckoutPro PaymentMethod = "checkout_pro"
	PaymentMethodCreditCard  PaymentMethod = "credit_card"
	PaymentMethodDebitCard   PaymentMethod = "debit_card"
)

var (
	ErrInvalidPaymentAmount = errors.New("payment amount must be positive")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrExternalIDMismatch signals an attempt to overwrite a provider
	// correlation with a different one, which is a consistency bug upstream.
	ErrExternalIDMismatch = errors.New("payment already correlated to a different external id")
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodCheckoutPro, PaymentMethodCreditCard, PaymentMethodDebitCard:
		return true
	}
	return false
}

// Payment is one payment attempt against a Request. Historical payments are
// kept for audit; at most one pending payment exists per request at a time.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (request_id-index): request_id
//   - GSI2 (external_id-index): external_id
type Payment struct {
	ID        string        `json:"id"`
	RequestID string        `json:"request_id"`
	PatientID string        `json:"patient_id"`
	Amount    float64       `json:"amount"`
	Method    PaymentMethod `json:"method"`
	Status    PaymentStatus `json:"status"`

	// ExternalID is the provider-assigned payment id, set once: at creation
	// for pull-based flows, or on the first webhook/sync for push-based ones.
	ExternalID   string `json:"external_id,omitempty"`
	PixQRCode    string `json:"pix_qr_code,omitempty"`
	PixCopyPaste string `json:"pix_copy_paste,omitempty"`
	CheckoutURL  string `json:"checkout_url,omitempty"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPayment(id, requestID, patientID string, amount float64, method PaymentMethod) (*Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidPaymentAmount
	}
	if !method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	now := time.Now().UTC()
	return &Payment{
		ID:        id,
		RequestID: requestID,
		PatientID: patientID,
		Amount:    amount,
		Method:    method,
		Status:    PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusRejected || p.Status == PaymentStatusRefunded
}

// SetExternalID attaches the provider correlation. Re-attaching the same id is
// a no-op; a different id is a consistency error.
func (p *Payment) SetExternalID(externalID string) error {
	if externalID == "" {
		return nil
	}
	if p.ExternalID == "" {
		p.ExternalID = externalID
		p.touch()
		return nil
	}
	if p.ExternalID != externalID {
		return ErrExternalIDMismatch
	}
	return nil
}

// SetPixData attaches the PIX rendering fields. Idempotent.
func (p *Payment) SetPixData(qrCode, copyPaste string) {
	if qrCode != "" {
		p.PixQRCode = qrCode
	}
	if copyPaste != "" {
		p.PixCopyPaste = copyPaste
	}
	p.touch()
}

func (p *Payment) Approve() error {
	if p.Status != PaymentStatusPending {
		return &StateTransitionError{Op: "approve_payment", From: RequestStatus(p.Status)}
	}
	p.Status = PaymentStatusApproved
	p.touch()
	return nil
}

func (p *Payment) Reject() error {
	if p.Status != PaymentStatusPending {
		return &StateTransitionError{Op: "reject_payment", From: RequestStatus(p.Status)}
	}
	p.Status = PaymentStatusRejected
	p.touch()
	return nil
}

func (p *Payment) Refund() error {
	if p.Status != PaymentStatusApproved {
		return &StateTransitionError{Op: "refund_payment", From: RequestStatus(p.Status)}
	}
	p.Status = PaymentStatusRefunded
	p.touch()
	return nil
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now().UTC()
}
