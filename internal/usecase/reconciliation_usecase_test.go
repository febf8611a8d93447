package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"
	mock_interfaces "receitamed/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type reconcileFixture struct {
	paymentRepo *mock_interfaces.MockIPaymentRepository
	requestRepo *mock_interfaces.MockIRequestRepository
	gateway     *mock_interfaces.MockIPaymentGateway
	notifier    *mock_interfaces.MockINotificationSender
	uc          *ReconciliationUseCase
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	f := &reconcileFixture{
		paymentRepo: mock_interfaces.NewMockIPaymentRepository(ctrl),
		requestRepo: mock_interfaces.NewMockIRequestRepository(ctrl),
		gateway:     mock_interfaces.NewMockIPaymentGateway(ctrl),
		notifier:    mock_interfaces.NewMockINotificationSender(ctrl),
	}
	f.uc = NewReconciliationUseCase(f.paymentRepo, f.requestRepo, f.gateway, f.notifier, zap.NewNop())
	return f
}

func pendingPaymentWithExternalID(t *testing.T, requestID, externalID string) *entities.Payment {
	t.Helper()
	p, err := entities.NewPayment("pay-1", requestID, "patient-1", 49.90, entities.PaymentMethodPix)
	if err != nil {
		t.Fatalf("new payment: %v", err)
	}
	if externalID != "" {
		if err := p.SetExternalID(externalID); err != nil {
			t.Fatalf("set external id: %v", err)
		}
	}
	return p
}

func TestReconcile_ApprovedFlipsPaymentAndRequest(t *testing.T) {
	f := newReconcileFixture(t)

	r := payableRequest(t)
	_ = r.MarkPendingPayment()
	p := pendingPaymentWithExternalID(t, r.ID, "987654")

	f.gateway.EXPECT().GetPaymentStatus(gomock.Any(), "987654").
		Return(interfaces.PaymentStatusOutput{ExternalID: "987654", Status: "approved", StatusDetail: "accredited", ExternalReference: r.ID}, nil)
	f.paymentRepo.EXPECT().GetByExternalID(gomock.Any(), "987654").Return(p, nil)
	f.paymentRepo.EXPECT().Update(gomock.Any(), p).Return(nil)
	f.requestRepo.EXPECT().GetByID(gomock.Any(), r.ID).Return(r, nil)
	f.requestRepo.EXPECT().Update(gomock.Any(), r).Return(nil)
	f.notifier.EXPECT().Notify(gomock.Any(), "patient-1", "Pagamento confirmado", gomock.Any()).Return(nil)

	out, err := f.uc.Reconcile(context.Background(), "987654")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Applied || out.AlreadyApplied {
		t.Fatalf("expected applied outcome, got %+v", out)
	}
	if p.Status != entities.PaymentStatusApproved || r.Status != entities.RequestStatusPaid {
		t.Fatalf("aggregates not advanced: payment=%s request=%s", p.Status, r.Status)
	}
}

func TestReconcile_RedeliveryIsAlreadyApplied(t *testing.T) {
	f := newReconcileFixture(t)

	p := pendingPaymentWithExternalID(t, "req-1", "987654")
	_ = p.Approve()

	f.gateway.EXPECT().GetPaymentStatus(gomock.Any(), "987654").
		Return(interfaces.PaymentStatusOutput{ExternalID: "987654", Status: "approved"}, nil)
	f.paymentRepo.EXPECT().GetByExternalID(gomock.Any(), "987654").Return(p, nil)
	// No repo updates, no notification: the transition already happened.

	out, err := f.uc.Reconcile(context.Background(), "987654")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Applied || !out.AlreadyApplied {
		t.Fatalf("expected already-applied outcome, got %+v", out)
	}
}

func TestReconcile_LostRaceCountsAsAlreadyApplied(t *testing.T) {
	f := newReconcileFixture(t)

	p := pendingPaymentWithExternalID(t, "req-1", "987654")

	f.gateway.EXPECT().GetPaymentStatus(gomock.Any(), "987654").
		Return(interfaces.PaymentStatusOutput{ExternalID: "987654", Status: "approved"}, nil)
	f.paymentRepo.EXPECT().GetByExternalID(gomock.Any(), "987654").Return(p, nil)
	f.paymentRepo.EXPECT().Update(gomock.Any(), p).Return(interfaces.ErrVersionConflict)

	out, err := f.uc.Reconcile(context.Background(), "987654")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Applied || !out.AlreadyApplied {
		t.Fatalf("expected already-applied outcome, got %+v", out)
	}
}

func TestReconcile_LocatesByExternalReference(t *testing.T) {
	f := newReconcileFixture(t)

	r := payableRequest(t)
	_ = r.MarkPendingPayment()
	p := pendingPaymentWithExternalID(t, r.ID, "")

	f.gateway.EXPECT().GetPaymentStatus(gomock.Any(), "987654").
		Return(interfaces.PaymentStatusOutput{ExternalID: "987654", Status: "approved", ExternalReference: r.ID}, nil)
	f.paymentRepo.EXPECT().GetByExternalID(gomock.Any(), "987654").Return(nil, nil)
	f.paymentRepo.EXPECT().GetPendingByRequestID(gomock.Any(), r.ID).Return(p, nil)
	// First update persists the correlation, second the approval.
	f.paymentRepo.EXPECT().Update(gomock.Any(), p).Return(nil).Times(2)
	f.requestRepo.EXPECT().GetByID(gomock.Any(), r.ID).Return(r, nil)
	f.requestRepo.EXPECT().Update(gomock.Any(), r).Return(nil)
	f.notifier.EXPECT().Notify(gomock.Any(), "patient-1", "Pagamento confirmado", gomock.Any()).Return(nil)

	out, err := f.uc.Reconcile(context.Background(), "987654")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Applied {
		t.Fatalf("expected applied outcome, got %+v", out)
	}
	if p.ExternalID != "987654" {
		t.Fatalf("external id not attached, got %q", p.ExternalID)
	}
}

func TestReconcile_UnknownPaymentIsSoftSuccess(t *testing.T) {
	f := newReconcileFixture(t)

	f.gateway.EXPECT().GetPaymentStatus(gomock.Any(), "987654").
		Return(interfaces.PaymentStatusOutput{ExternalID: "987654", Status: "approved", ExternalReference: "other-system"}, nil)
	f.paymentRepo.EXPECT().GetByExternalID(gomock.Any(), "987654").Return(nil, nil)
	f.paymentRepo.EXPECT().GetPendingByRequestID(gomock.Any(), "other-system").Return(nil, nil)

	out, err := f.uc.Reconcile(context.Background(), "987654")
	if err != nil {
		t.Fatalf("unknown payment must ack, got %v", err)
	}
	if out.Applied || out.PaymentStatus != "approved" {
		t.Fatalf("expected soft outcome, got %+v", out)
	}
}

func TestReconcile_RejectedClosesPaymentOnly(t *testing.T) {
	f := newReconcileFixture(t)

	p := pendingPaymentWithExternalID(t, "req-1", "987654")

	f.gateway.EXPECT().GetPaymentStatus(gomock.Any(), "987654").
		Return(interfaces.PaymentStatusOutput{ExternalID: "987654", Status: "rejected", StatusDetail: "cc_rejected_insufficient_amount"}, nil)
	f.paymentRepo.EXPECT().GetByExternalID(gomock.Any(), "987654").Return(p, nil)
	f.paymentRepo.EXPECT().Update(gomock.Any(), p).Return(nil)
	// No request lookup: rejection leaves the request payable.

	out, err := f.uc.Reconcile(context.Background(), "987654")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Applied || p.Status != entities.PaymentStatusRejected {
		t.Fatalf("rejection not applied: out=%+v status=%s", out, p.Status)
	}
}

func TestReconcile_ProviderFailure(t *testing.T) {
	f := newReconcileFixture(t)

	f.gateway.EXPECT().GetPaymentStatus(gomock.Any(), "987654").
		Return(interfaces.PaymentStatusOutput{}, errors.New("timeout"))

	_, err := f.uc.Reconcile(context.Background(), "987654")
	if !errors.Is(err, ErrPaymentProviderFailed) {
		t.Fatalf("expected ErrPaymentProviderFailed, got %v", err)
	}
}

func TestSyncPayment(t *testing.T) {
	t.Run("no payments at all", func(t *testing.T) {
		f := newReconcileFixture(t)

		f.paymentRepo.EXPECT().GetPendingByRequestID(gomock.Any(), "req-1").Return(nil, nil)
		f.paymentRepo.EXPECT().ListByRequestID(gomock.Any(), "req-1").Return(nil, nil)

		_, err := f.uc.SyncPayment(context.Background(), "req-1")
		if !errors.Is(err, ErrPaymentNotFound) {
			t.Fatalf("expected ErrPaymentNotFound, got %v", err)
		}
	})

	t.Run("nothing pending reports latest", func(t *testing.T) {
		f := newReconcileFixture(t)

		older, _ := entities.NewPayment("pay-1", "req-1", "patient-1", 10, entities.PaymentMethodPix)
		_ = older.Reject()
		newer, _ := entities.NewPayment("pay-2", "req-1", "patient-1", 10, entities.PaymentMethodPix)
		newer.CreatedAt = older.CreatedAt.Add(time.Minute)
		_ = newer.Approve()

		f.paymentRepo.EXPECT().GetPendingByRequestID(gomock.Any(), "req-1").Return(nil, nil)
		f.paymentRepo.EXPECT().ListByRequestID(gomock.Any(), "req-1").
			Return([]*entities.Payment{older, newer}, nil)

		out, err := f.uc.SyncPayment(context.Background(), "req-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !out.AlreadyApplied || out.PaymentStatus != string(entities.PaymentStatusApproved) {
			t.Fatalf("expected latest payment state, got %+v", out)
		}
	})

	t.Run("pending but never registered", func(t *testing.T) {
		f := newReconcileFixture(t)

		p := pendingPaymentWithExternalID(t, "req-1", "")
		f.paymentRepo.EXPECT().GetPendingByRequestID(gomock.Any(), "req-1").Return(p, nil)

		out, err := f.uc.SyncPayment(context.Background(), "req-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Applied || out.PaymentStatus != string(entities.PaymentStatusPending) {
			t.Fatalf("expected current state only, got %+v", out)
		}
	})

	t.Run("pending delegates to reconcile", func(t *testing.T) {
		f := newReconcileFixture(t)

		p := pendingPaymentWithExternalID(t, "req-1", "987654")
		f.paymentRepo.EXPECT().GetPendingByRequestID(gomock.Any(), "req-1").Return(p, nil)
		f.gateway.EXPECT().GetPaymentStatus(gomock.Any(), "987654").
			Return(interfaces.PaymentStatusOutput{ExternalID: "987654", Status: "in_process"}, nil)
		f.paymentRepo.EXPECT().GetByExternalID(gomock.Any(), "987654").Return(p, nil)

		out, err := f.uc.SyncPayment(context.Background(), "req-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Applied || out.PaymentStatus != "in_process" {
			t.Fatalf("expected passthrough status, got %+v", out)
		}
	})
}
