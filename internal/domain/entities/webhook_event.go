package entities

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrWebhookEventImmutable = errors.New("webhook event already marked duplicate")

// WebhookEvent is one inbound provider notification, persisted before any
// business processing so a crash still leaves a forensic trail. Dedup key is
// the provider-assigned request id header; it is not contractually unique per
// logical event, so the load-bearing idempotency guard lives in reconciliation,
// not here.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (provider_request_id-index): provider_request_id
type WebhookEvent struct {
	ID                string            `json:"id"`
	ProviderPaymentID string            `json:"provider_payment_id"`
	ProviderRequestID string            `json:"provider_request_id,omitempty"`
	Type              string            `json:"type,omitempty"`
	Action            string            `json:"action,omitempty"`
	RawBody           json.RawMessage   `json:"raw_body,omitempty"`
	RawQuery          string            `json:"raw_query,omitempty"`
	Headers           map[string]string `json:"headers,omitempty"`
	ContentType       string            `json:"content_type,omitempty"`
	ContentLength     int64             `json:"content_length,omitempty"`
	SourceIP          string            `json:"source_ip,omitempty"`

	IsDuplicate     bool   `json:"is_duplicate"`
	IsProcessed     bool   `json:"is_processed"`
	ProcessingError string `json:"processing_error,omitempty"`

	// Payment status/detail observed from the provider at processing time.
	PaymentStatus       string `json:"payment_status,omitempty"`
	PaymentStatusDetail string `json:"payment_status_detail,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewWebhookEvent(id string) *WebhookEvent {
	now := time.Now().UTC()
	return &WebhookEvent{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkAsDuplicate freezes the record; duplicate events are immutable.
func (e *WebhookEvent) MarkAsDuplicate() error {
	if e.IsDuplicate {
		return nil
	}
	e.IsDuplicate = true
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (e *WebhookEvent) MarkAsProcessed(paymentStatus, statusDetail string) error {
	if e.IsDuplicate {
		return ErrWebhookEventImmutable
	}
	e.IsProcessed = true
	e.ProcessingError = ""
	e.PaymentStatus = paymentStatus
	e.PaymentStatusDetail = statusDetail
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func (e *WebhookEvent) MarkAsFailed(procErr error) error {
	if e.IsDuplicate {
		return ErrWebhookEventImmutable
	}
	e.IsProcessed = false
	if procErr != nil {
		e.ProcessingError = procErr.Error()
	}
	e.UpdatedAt = time.Now().UTC()
	return nil
}
