package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrWebhookPaymentIDMissing means no plausible payment identifier was
	// found in any channel; nothing to correlate, no event record is created.
	ErrWebhookPaymentIDMissing = errors.New("webhook carries no payment identifier")
	ErrWebhookSignatureInvalid = errors.New("webhook signature mismatch")
)

const (
	headerProviderRequestID = "x-request-id"
	headerProviderSignature = "x-signature"
)

// Provider payment ids are short numeric tokens; anything else in the same
// slot (URLs, UUIDs, prose) is not an identifier.
var paymentIDPattern = regexp.MustCompile(`^[0-9]{1,20}$`)

// WebhookConfig controls signature validation. An empty secret with
// SandboxMode unset is a misconfiguration surfaced at startup, not here.
type WebhookConfig struct {
	Secret      string
	SandboxMode bool
}

// WebhookInput is the raw inbound notification as handed over by transport.
type WebhookInput struct {
	Body          []byte
	Query         url.Values
	Headers       map[string]string
	SourceIP      string
	ContentType   string
	ContentLength int64
}

// WebhookAck reports what happened to a delivery. Once an event record exists
// the pipeline acknowledges even on processing failure, recording the failure
// on the event itself; this prevents provider retry storms while keeping a
// forensic trail.
type WebhookAck struct {
	EventID       string
	Duplicate     bool
	Processed     bool
	PaymentStatus string
}

type IWebhookUseCase interface {
	Ingest(ctx context.Context, input WebhookInput) (WebhookAck, error)
}

type WebhookUseCase struct {
	repo       interfaces.IWebhookEventRepository
	reconciler IReconciliationUseCase
	cfg        WebhookConfig
	log        *zap.Logger
}

var _ IWebhookUseCase = (*WebhookUseCase)(nil)

func NewWebhookUseCase(
	repo interfaces.IWebhookEventRepository,
	reconciler IReconciliationUseCase,
	cfg WebhookConfig,
	log *zap.Logger,
) *WebhookUseCase {
	return &WebhookUseCase{repo: repo, reconciler: reconciler, cfg: cfg, log: log}
}

func (u *WebhookUseCase) Ingest(ctx context.Context, input WebhookInput) (WebhookAck, error) {
	paymentID, eventType, action := extractNotification(input)
	if paymentID == "" {
		return WebhookAck{}, ErrWebhookPaymentIDMissing
	}

	providerRequestID := headerValue(input.Headers, headerProviderRequestID)

	// Idempotency boundary: a delivery already recorded under this provider
	// request id is marked duplicate and acknowledged without re-processing.
	// If the lookup itself fails, availability wins over strict dedup: proceed
	// and let the aggregate guards absorb the redelivery.
	if providerRequestID != "" {
		existing, err := u.repo.GetByProviderRequestID(ctx, providerRequestID)
		if err != nil {
			u.log.Warn("webhook dedup lookup failed, processing anyway",
				zap.String("provider_request_id", providerRequestID), zap.Error(err))
		} else if existing != nil {
			_ = existing.MarkAsDuplicate()
			if err := u.repo.Update(ctx, existing); err != nil {
				u.log.Warn("failed marking webhook event duplicate",
					zap.String("event_id", existing.ID), zap.Error(err))
			}
			u.log.Info("duplicate webhook delivery",
				zap.String("provider_request_id", providerRequestID), zap.String("event_id", existing.ID))
			return WebhookAck{EventID: existing.ID, Duplicate: true}, nil
		}
	}

	// Persist before signature validation and business processing so even a
	// crash leaves a forensic trail.
	event := entities.NewWebhookEvent(uuid.NewString())
	event.ProviderPaymentID = paymentID
	event.ProviderRequestID = providerRequestID
	event.Type = eventType
	event.Action = action
	event.RawBody = json.RawMessage(input.Body)
	event.RawQuery = input.Query.Encode()
	event.Headers = input.Headers
	event.ContentType = input.ContentType
	event.ContentLength = input.ContentLength
	event.SourceIP = input.SourceIP
	if err := u.repo.Create(ctx, event); err != nil {
		return WebhookAck{}, err
	}

	if err := u.validateSignature(input.Headers, paymentID, providerRequestID); err != nil {
		u.markFailed(ctx, event, err)
		return WebhookAck{EventID: event.ID}, err
	}

	outcome, err := u.reconciler.Reconcile(ctx, paymentID)
	if err != nil {
		u.log.Error("webhook reconciliation failed",
			zap.String("event_id", event.ID), zap.String("provider_payment_id", paymentID), zap.Error(err))
		u.markFailed(ctx, event, err)
		return WebhookAck{EventID: event.ID}, nil
	}

	if err := event.MarkAsProcessed(outcome.PaymentStatus, outcome.StatusDetail); err == nil {
		if err := u.repo.Update(ctx, event); err != nil {
			u.log.Warn("failed marking webhook event processed", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
	u.log.Info("webhook processed",
		zap.String("event_id", event.ID),
		zap.String("provider_payment_id", paymentID),
		zap.String("payment_status", outcome.PaymentStatus),
		zap.Bool("already_applied", outcome.AlreadyApplied))
	return WebhookAck{EventID: event.ID, Processed: true, PaymentStatus: outcome.PaymentStatus}, nil
}

func (u *WebhookUseCase) markFailed(ctx context.Context, event *entities.WebhookEvent, cause error) {
	if err := event.MarkAsFailed(cause); err != nil {
		return
	}
	if err := u.repo.Update(ctx, event); err != nil {
		u.log.Warn("failed marking webhook event failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}

// validateSignature checks the provider HMAC: sha256 over
// "id:<paymentID>;request-id:<requestID>;ts:<ts>;" keyed with the configured
// secret, carried as "ts=...,v1=..." in the signature header. Skipped only in
// explicitly-flagged sandbox mode.
func (u *WebhookUseCase) validateSignature(headers map[string]string, paymentID, providerRequestID string) error {
	if u.cfg.SandboxMode || u.cfg.Secret == "" {
		return nil
	}
	signature := headerValue(headers, headerProviderSignature)
	if signature == "" {
		return ErrWebhookSignatureInvalid
	}

	var ts, v1 string
	for _, part := range strings.Split(signature, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return ErrWebhookSignatureInvalid
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(paymentID), providerRequestID, ts)
	mac := hmac.New(sha256.New, []byte(u.cfg.Secret))
	mac.Write([]byte(manifest))
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return ErrWebhookSignatureInvalid
	}
	return nil
}

// extractNotification normalizes the heterogeneous provider payload shapes to
// a canonical (paymentID, type, action) triple. Channels are tried in priority
// order for the payment id; partial results from different channels are never
// merged for the same field.
func extractNotification(input WebhookInput) (paymentID, eventType, action string) {
	var body struct {
		Data struct {
			ID json.RawMessage `json:"id"`
		} `json:"data"`
		ID       json.RawMessage `json:"id"`
		Type     string          `json:"type"`
		Action   string          `json:"action"`
		Topic    string          `json:"topic"`
		Resource string          `json:"resource"`
	}
	if len(input.Body) > 0 {
		_ = json.Unmarshal(input.Body, &body)
	}

	eventType = body.Type
	if eventType == "" {
		eventType = body.Topic
	}
	action = body.Action

	// Query string wins.
	for _, key := range []string{"data.id", "id"} {
		if id := plausiblePaymentID(input.Query.Get(key)); id != "" {
			return id, eventType, action
		}
	}
	if id := plausiblePaymentID(rawToken(body.Data.ID)); id != "" {
		return id, eventType, action
	}
	if id := plausiblePaymentID(rawToken(body.ID)); id != "" {
		return id, eventType, action
	}
	// Legacy shape: resource is a URL or a bare id.
	if body.Resource != "" {
		token := body.Resource
		if idx := strings.LastIndex(token, "/"); idx >= 0 {
			token = token[idx+1:]
		}
		if id := plausiblePaymentID(token); id != "" {
			return id, eventType, action
		}
	}
	return "", eventType, action
}

// rawToken unquotes a JSON scalar that may arrive as a string or a number.
func rawToken(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	return strings.Trim(s, `"`)
}

func plausiblePaymentID(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if paymentIDPattern.MatchString(candidate) {
		return candidate
	}
	return ""
}

func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
