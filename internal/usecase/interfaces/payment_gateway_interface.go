package interfaces

import (
	"context"
	"encoding/json"

	"receitamed/internal/domain/entities"
)

// CreatePaymentInput carries everything the provider needs to open a payment.
// IdempotencyKey correlates retries on the provider side and is recorded in
// the attempt ledger.
type CreatePaymentInput struct {
	Amount            float64
	Method            entities.PaymentMethod
	Description       string
	ExternalReference string // request id, echoed back by the provider
	PayerEmail        string
	CardToken         string // card methods only, produced client-side
	IdempotencyKey    string
}

// CreatePaymentOutput is the normalized provider response. RawResponse keeps
// the original body for the attempt ledger.
type CreatePaymentOutput struct {
	ExternalID   string
	Status       string
	PixQRCode    string
	PixCopyPaste string
	CheckoutURL  string
	RawResponse  json.RawMessage
	HTTPStatus   int
}

// PaymentStatusOutput is the authoritative status fetched from the provider.
// Webhooks are a notification to look, never a source of truth; reconciliation
// always goes through GetPaymentStatus.
type PaymentStatusOutput struct {
	ExternalID        string
	Status            string
	StatusDetail      string
	ExternalReference string
}

// IPaymentGateway abstracts the external payment provider (Mercado Pago).
type IPaymentGateway interface {
	CreatePayment(ctx context.Context, input CreatePaymentInput) (CreatePaymentOutput, error)
	GetPaymentStatus(ctx context.Context, externalID string) (PaymentStatusOutput, error)
}
