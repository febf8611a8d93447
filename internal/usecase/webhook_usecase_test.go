package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"receitamed/internal/domain/entities"
	mock_interfaces "receitamed/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type webhookFixture struct {
	repo       *mock_interfaces.MockIWebhookEventRepository
	reconciler *reconcilerStub
	uc         *WebhookUseCase
}

// reconcilerStub avoids mocking the concrete ReconciliationUseCase; the
// webhook pipeline only needs its outcome.
type reconcilerStub struct {
	outcome ReconcileOutcome
	err     error
	calls   []string
}

func (s *reconcilerStub) Reconcile(_ context.Context, providerPaymentID string) (ReconcileOutcome, error) {
	s.calls = append(s.calls, providerPaymentID)
	return s.outcome, s.err
}

func (s *reconcilerStub) SyncPayment(context.Context, string) (ReconcileOutcome, error) {
	return ReconcileOutcome{}, nil
}

func newWebhookFixture(t *testing.T, cfg WebhookConfig) *webhookFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	f := &webhookFixture{
		repo:       mock_interfaces.NewMockIWebhookEventRepository(ctrl),
		reconciler: &reconcilerStub{},
	}
	f.uc = NewWebhookUseCase(f.repo, f.reconciler, cfg, zap.NewNop())
	return f
}

func signatureHeader(secret, paymentID, requestID, ts string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "id:%s;request-id:%s;ts:%s;", paymentID, requestID, ts)
	return fmt.Sprintf("ts=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhookIngest_MissingPaymentID(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{SandboxMode: true})

	// No event record is created for uncorrelatable noise.
	_, err := f.uc.Ingest(context.Background(), WebhookInput{
		Body:  []byte(`{"type":"payment","data":{"id":"not-a-number"}}`),
		Query: url.Values{},
	})
	if !errors.Is(err, ErrWebhookPaymentIDMissing) {
		t.Fatalf("expected ErrWebhookPaymentIDMissing, got %v", err)
	}
	if len(f.reconciler.calls) != 0 {
		t.Fatalf("reconciler must not run")
	}
}

func TestWebhookIngest_Duplicate(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{SandboxMode: true})

	existing := entities.NewWebhookEvent("evt-1")
	f.repo.EXPECT().GetByProviderRequestID(gomock.Any(), "rid-1").Return(existing, nil)
	f.repo.EXPECT().Update(gomock.Any(), existing).Return(nil)

	ack, err := f.uc.Ingest(context.Background(), WebhookInput{
		Body:    []byte(`{"type":"payment","data":{"id":"987654"}}`),
		Query:   url.Values{},
		Headers: map[string]string{"x-request-id": "rid-1"},
	})
	if err != nil {
		t.Fatalf("duplicates must ack: %v", err)
	}
	if !ack.Duplicate || ack.EventID != "evt-1" {
		t.Fatalf("expected duplicate ack, got %+v", ack)
	}
	if !existing.IsDuplicate {
		t.Fatalf("existing event must be frozen as duplicate")
	}
	if len(f.reconciler.calls) != 0 {
		t.Fatalf("duplicate must not re-process")
	}
}

func TestWebhookIngest_DedupLookupFailureProceeds(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{SandboxMode: true})
	f.reconciler.outcome = ReconcileOutcome{Applied: true, PaymentStatus: "approved"}

	f.repo.EXPECT().GetByProviderRequestID(gomock.Any(), "rid-1").Return(nil, errors.New("table offline"))
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	ack, err := f.uc.Ingest(context.Background(), WebhookInput{
		Body:    []byte(`{"type":"payment","data":{"id":"987654"}}`),
		Query:   url.Values{},
		Headers: map[string]string{"x-request-id": "rid-1"},
	})
	if err != nil {
		t.Fatalf("availability wins over strict dedup: %v", err)
	}
	if !ack.Processed {
		t.Fatalf("expected processed ack, got %+v", ack)
	}
}

func TestWebhookIngest_SignatureValidation(t *testing.T) {
	const secret = "hook-secret"

	t.Run("valid signature processes", func(t *testing.T) {
		f := newWebhookFixture(t, WebhookConfig{Secret: secret})
		f.reconciler.outcome = ReconcileOutcome{Applied: true, PaymentStatus: "approved"}

		f.repo.EXPECT().GetByProviderRequestID(gomock.Any(), "rid-1").Return(nil, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		ack, err := f.uc.Ingest(context.Background(), WebhookInput{
			Body:  []byte(`{"type":"payment","data":{"id":"987654"}}`),
			Query: url.Values{},
			Headers: map[string]string{
				"x-request-id": "rid-1",
				"x-signature":  signatureHeader(secret, "987654", "rid-1", "1700000000"),
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ack.Processed || ack.PaymentStatus != "approved" {
			t.Fatalf("expected processed ack, got %+v", ack)
		}
		if len(f.reconciler.calls) != 1 || f.reconciler.calls[0] != "987654" {
			t.Fatalf("reconciler calls: %v", f.reconciler.calls)
		}
	})

	t.Run("tampered signature rejects after recording", func(t *testing.T) {
		f := newWebhookFixture(t, WebhookConfig{Secret: secret})

		var recorded *entities.WebhookEvent
		f.repo.EXPECT().GetByProviderRequestID(gomock.Any(), "rid-1").Return(nil, nil)
		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e *entities.WebhookEvent) error {
				recorded = e
				return nil
			})
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.uc.Ingest(context.Background(), WebhookInput{
			Body:  []byte(`{"type":"payment","data":{"id":"987654"}}`),
			Query: url.Values{},
			Headers: map[string]string{
				"x-request-id": "rid-1",
				"x-signature":  signatureHeader("wrong-secret", "987654", "rid-1", "1700000000"),
			},
		})
		if !errors.Is(err, ErrWebhookSignatureInvalid) {
			t.Fatalf("expected ErrWebhookSignatureInvalid, got %v", err)
		}
		if recorded == nil || recorded.ProcessingError == "" {
			t.Fatalf("failure must be recorded on the event")
		}
		if len(f.reconciler.calls) != 0 {
			t.Fatalf("unverified delivery must not reconcile")
		}
	})

	t.Run("missing signature header rejects", func(t *testing.T) {
		f := newWebhookFixture(t, WebhookConfig{Secret: secret})

		f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

		_, err := f.uc.Ingest(context.Background(), WebhookInput{
			Body:  []byte(`{"type":"payment","data":{"id":"987654"}}`),
			Query: url.Values{},
		})
		if !errors.Is(err, ErrWebhookSignatureInvalid) {
			t.Fatalf("expected ErrWebhookSignatureInvalid, got %v", err)
		}
	})
}

func TestWebhookIngest_ReconcileFailureStillAcks(t *testing.T) {
	f := newWebhookFixture(t, WebhookConfig{SandboxMode: true})
	f.reconciler.err = errors.New("provider timeout")

	var recorded *entities.WebhookEvent
	f.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *entities.WebhookEvent) error {
			recorded = e
			return nil
		})
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	ack, err := f.uc.Ingest(context.Background(), WebhookInput{
		Body:  []byte(`{"type":"payment","data":{"id":"987654"}}`),
		Query: url.Values{},
	})
	if err != nil {
		t.Fatalf("recorded deliveries must ack even on failure, got %v", err)
	}
	if ack.Processed || ack.EventID == "" {
		t.Fatalf("expected unprocessed ack with event id, got %+v", ack)
	}
	if recorded.ProcessingError != "provider timeout" {
		t.Fatalf("failure not recorded, got %q", recorded.ProcessingError)
	}
}

func TestExtractNotification(t *testing.T) {
	cases := []struct {
		name  string
		input WebhookInput
		want  string
	}{
		{
			name: "query data.id wins over body",
			input: WebhookInput{
				Body:  []byte(`{"data":{"id":"111"}}`),
				Query: url.Values{"data.id": {"222"}},
			},
			want: "222",
		},
		{
			name:  "body data.id as number",
			input: WebhookInput{Body: []byte(`{"data":{"id":987654}}`), Query: url.Values{}},
			want:  "987654",
		},
		{
			name:  "top-level id fallback",
			input: WebhookInput{Body: []byte(`{"id":"555"}`), Query: url.Values{}},
			want:  "555",
		},
		{
			name:  "legacy resource url",
			input: WebhookInput{Body: []byte(`{"topic":"payment","resource":"https://api.example.com/v1/payments/777"}`), Query: url.Values{}},
			want:  "777",
		},
		{
			name:  "non-numeric tokens ignored",
			input: WebhookInput{Body: []byte(`{"data":{"id":"abc-123"},"resource":"https://api.example.com/v1/payments/search"}`), Query: url.Values{}},
			want:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _, _ := extractNotification(tc.input)
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
