package response

import (
	"time"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase"
)

type PaymentResponse struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"request_id"`
	PatientID    string    `json:"patient_id"`
	Amount       float64   `json:"amount"`
	Method       string    `json:"method"`
	Status       string    `json:"status"`
	ExternalID   string    `json:"external_id,omitempty"`
	PixQRCode    string    `json:"pix_qr_code,omitempty"`
	PixCopyPaste string    `json:"pix_copy_paste,omitempty"`
	CheckoutURL  string    `json:"checkout_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromPayment(p *entities.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		RequestID:    p.RequestID,
		PatientID:    p.PatientID,
		Amount:       p.Amount,
		Method:       string(p.Method),
		Status:       string(p.Status),
		ExternalID:   p.ExternalID,
		PixQRCode:    p.PixQRCode,
		PixCopyPaste: p.PixCopyPaste,
		CheckoutURL:  p.CheckoutURL,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromPayments(list []*entities.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, FromPayment(p))
	}
	return out
}

// SyncResponse reports a manual reconciliation run.
type SyncResponse struct {
	Applied        bool   `json:"applied"`
	AlreadyApplied bool   `json:"already_applied"`
	PaymentStatus  string `json:"payment_status,omitempty"`
	StatusDetail   string `json:"status_detail,omitempty"`
}

func FromReconcileOutcome(o usecase.ReconcileOutcome) SyncResponse {
	return SyncResponse{
		Applied:        o.Applied,
		AlreadyApplied: o.AlreadyApplied,
		PaymentStatus:  o.PaymentStatus,
		StatusDetail:   o.StatusDetail,
	}
}

// WebhookAckResponse acknowledges an inbound provider notification.
type WebhookAckResponse struct {
	EventID       string `json:"event_id,omitempty"`
	Duplicate     bool   `json:"duplicate"`
	Processed     bool   `json:"processed"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

func FromWebhookAck(a usecase.WebhookAck) WebhookAckResponse {
	return WebhookAckResponse{
		EventID:       a.EventID,
		Duplicate:     a.Duplicate,
		Processed:     a.Processed,
		PaymentStatus: a.PaymentStatus,
	}
}
