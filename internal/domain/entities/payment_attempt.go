package entities

import (
	"encoding/json"
	"time"
)

// PaymentAttempt is the append-mostly ledger of outbound provider calls. One
// record per call: created before the call, updated exactly once with the
// outcome. Never read for control-flow decisions, purely diagnostic.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (payment_id-index): payment_id
type PaymentAttempt struct {
	ID             string          `json:"id"`
	PaymentID      string          `json:"payment_id"`
	RequestID      string          `json:"request_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	RequestBody    json.RawMessage `json:"request_body,omitempty"`
	ResponseBody   json.RawMessage `json:"response_body,omitempty"`
	HTTPStatus     int             `json:"http_status,omitempty"`
	Success        bool            `json:"success"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewPaymentAttempt(id, paymentID, requestID, idempotencyKey string, requestBody json.RawMessage) *PaymentAttempt {
	now := time.Now().UTC()
	return &PaymentAttempt{
		ID:             id,
		PaymentID:      paymentID,
		RequestID:      requestID,
		IdempotencyKey: idempotencyKey,
		RequestBody:    requestBody,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RecordOutcome fills in the single post-call update.
func (a *PaymentAttempt) RecordOutcome(responseBody json.RawMessage, httpStatus int, callErr error) {
	a.ResponseBody = responseBody
	a.HTTPStatus = httpStatus
	a.Success = callErr == nil
	if callErr != nil {
		a.ErrorMessage = callErr.Error()
	}
	a.UpdatedAt = time.Now().UTC()
}
