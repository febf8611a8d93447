package usecase

import (
	"context"
	"errors"
	"testing"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"
	mock_interfaces "receitamed/internal/usecase/interfaces/mocks"

	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func payableRequest(t *testing.T) *entities.Request {
	t.Helper()
	r := entities.NewPrescriptionRequest("patient-1", "common", "simple", []string{"dipirona"}, nil)
	if err := r.AssignDoctor("doctor-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := r.Approve(49.90, "", nil, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	return r
}

func TestPaymentUseCase_CreatePayment_Validation(t *testing.T) {
	uc := NewPaymentUseCase(nil, nil, nil, nil, zap.NewNop())

	t.Run("missing request id", func(t *testing.T) {
		_, err := uc.CreatePayment(context.Background(), CreatePaymentInput{PatientID: "patient-1", Method: entities.PaymentMethodPix})
		if !errors.Is(err, ErrInvalidRequestID) {
			t.Fatalf("expected ErrInvalidRequestID, got %v", err)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := uc.CreatePayment(context.Background(), CreatePaymentInput{RequestID: "req-1", PatientID: "patient-1", Method: "boleto"})
		if !errors.Is(err, entities.ErrInvalidPaymentMethod) {
			t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
		}
	})

	t.Run("card without token", func(t *testing.T) {
		_, err := uc.CreatePayment(context.Background(), CreatePaymentInput{RequestID: "req-1", PatientID: "patient-1", Method: entities.PaymentMethodCreditCard})
		if !errors.Is(err, ErrMissingCardToken) {
			t.Fatalf("expected ErrMissingCardToken, got %v", err)
		}
	})
}

func TestPaymentUseCase_CreatePayment_Guards(t *testing.T) {
	t.Run("request not payable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		requestRepo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := NewPaymentUseCase(nil, requestRepo, nil, nil, zap.NewNop())

		r := entities.NewPrescriptionRequest("patient-1", "common", "simple", nil, nil)
		requestRepo.EXPECT().GetByID(gomock.Any(), r.ID).Return(r, nil)

		_, err := uc.CreatePayment(context.Background(), CreatePaymentInput{RequestID: r.ID, PatientID: "patient-1", Method: entities.PaymentMethodPix})
		if !errors.Is(err, ErrRequestNotPayable) {
			t.Fatalf("expected ErrRequestNotPayable, got %v", err)
		}
	})

	t.Run("patient mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		requestRepo := mock_interfaces.NewMockIRequestRepository(ctrl)
		uc := NewPaymentUseCase(nil, requestRepo, nil, nil, zap.NewNop())

		r := payableRequest(t)
		requestRepo.EXPECT().GetByID(gomock.Any(), r.ID).Return(r, nil)

		_, err := uc.CreatePayment(context.Background(), CreatePaymentInput{RequestID: r.ID, PatientID: "someone-else", Method: entities.PaymentMethodPix})
		if !errors.Is(err, ErrInvalidPatientID) {
			t.Fatalf("expected ErrInvalidPatientID, got %v", err)
		}
	})

	t.Run("pending payment already open", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		requestRepo := mock_interfaces.NewMockIRequestRepository(ctrl)
		paymentRepo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		uc := NewPaymentUseCase(paymentRepo, requestRepo, nil, nil, zap.NewNop())

		r := payableRequest(t)
		open, _ := entities.NewPayment("pay-open", r.ID, "patient-1", r.Price, entities.PaymentMethodPix)
		requestRepo.EXPECT().GetByID(gomock.Any(), r.ID).Return(r, nil)
		paymentRepo.EXPECT().GetPendingByRequestID(gomock.Any(), r.ID).Return(open, nil)

		_, err := uc.CreatePayment(context.Background(), CreatePaymentInput{RequestID: r.ID, PatientID: "patient-1", Method: entities.PaymentMethodPix})
		if !errors.Is(err, ErrPaymentAlreadyPending) {
			t.Fatalf("expected ErrPaymentAlreadyPending, got %v", err)
		}
	})
}

func TestPaymentUseCase_CreatePayment_Pix(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	requestRepo := mock_interfaces.NewMockIRequestRepository(ctrl)
	paymentRepo := mock_interfaces.NewMockIPaymentRepository(ctrl)
	attemptRepo := mock_interfaces.NewMockIPaymentAttemptRepository(ctrl)
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	uc := NewPaymentUseCase(paymentRepo, requestRepo, attemptRepo, gateway, zap.NewNop())

	r := payableRequest(t)
	requestRepo.EXPECT().GetByID(gomock.Any(), r.ID).Return(r, nil)
	paymentRepo.EXPECT().GetPendingByRequestID(gomock.Any(), r.ID).Return(nil, nil)
	paymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	attemptRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in interfaces.CreatePaymentInput) (interfaces.CreatePaymentOutput, error) {
			if in.Amount != 49.90 || in.ExternalReference != r.ID || in.IdempotencyKey == "" {
				t.Fatalf("unexpected gateway input: %+v", in)
			}
			return interfaces.CreatePaymentOutput{
				ExternalID:   "987654",
				Status:       "pending",
				PixCopyPaste: "00020126pixcode",
				PixQRCode:    "cXJfYmFzZTY0",
				HTTPStatus:   201,
			}, nil
		})
	attemptRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	paymentRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
	// Request leaves approved_pending_payment once the charge is open.
	requestRepo.EXPECT().Update(gomock.Any(), r).Return(nil)

	p, err := uc.CreatePayment(context.Background(), CreatePaymentInput{
		RequestID: r.ID,
		PatientID: "patient-1",
		Method:    entities.PaymentMethodPix,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ExternalID != "987654" || p.PixCopyPaste != "00020126pixcode" {
		t.Fatalf("provider data not attached: %+v", p)
	}
	if r.Status != entities.RequestStatusPendingPayment {
		t.Fatalf("expected pending_payment, got %s", r.Status)
	}
}

func TestPaymentUseCase_CreatePayment_ProviderFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	requestRepo := mock_interfaces.NewMockIRequestRepository(ctrl)
	paymentRepo := mock_interfaces.NewMockIPaymentRepository(ctrl)
	gateway := mock_interfaces.NewMockIPaymentGateway(ctrl)
	uc := NewPaymentUseCase(paymentRepo, requestRepo, nil, gateway, zap.NewNop())

	r := payableRequest(t)
	requestRepo.EXPECT().GetByID(gomock.Any(), r.ID).Return(r, nil)
	paymentRepo.EXPECT().GetPendingByRequestID(gomock.Any(), r.ID).Return(nil, nil)

	var created *entities.Payment
	paymentRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *entities.Payment) error {
			created = p
			return nil
		})
	gateway.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).
		Return(interfaces.CreatePaymentOutput{}, errors.New("gateway timeout"))
	paymentRepo.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)

	_, err := uc.CreatePayment(context.Background(), CreatePaymentInput{
		RequestID: r.ID,
		PatientID: "patient-1",
		Method:    entities.PaymentMethodPix,
	})
	if !errors.Is(err, ErrPaymentProviderFailed) {
		t.Fatalf("expected ErrPaymentProviderFailed, got %v", err)
	}
	if created == nil || created.Status != entities.PaymentStatusRejected {
		t.Fatalf("payment must be closed after provider failure: %+v", created)
	}
	if r.Status != entities.RequestStatusApprovedPendingPayment {
		t.Fatalf("request must stay payable, got %s", r.Status)
	}
}

func TestPaymentUseCase_Refund(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		paymentRepo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		uc := NewPaymentUseCase(paymentRepo, nil, nil, nil, zap.NewNop())

		paymentRepo.EXPECT().GetByID(gomock.Any(), "pay-1").Return(nil, nil)

		_, err := uc.Refund(context.Background(), "pay-1")
		if !errors.Is(err, ErrPaymentNotFound) {
			t.Fatalf("expected ErrPaymentNotFound, got %v", err)
		}
	})

	t.Run("only approved payments refund", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		paymentRepo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		uc := NewPaymentUseCase(paymentRepo, nil, nil, nil, zap.NewNop())

		p, _ := entities.NewPayment("pay-1", "req-1", "patient-1", 10, entities.PaymentMethodPix)
		paymentRepo.EXPECT().GetByID(gomock.Any(), "pay-1").Return(p, nil)

		_, err := uc.Refund(context.Background(), "pay-1")
		if !errors.Is(err, entities.ErrIllegalTransition) {
			t.Fatalf("expected ErrIllegalTransition, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		paymentRepo := mock_interfaces.NewMockIPaymentRepository(ctrl)
		uc := NewPaymentUseCase(paymentRepo, nil, nil, nil, zap.NewNop())

		p, _ := entities.NewPayment("pay-1", "req-1", "patient-1", 10, entities.PaymentMethodPix)
		_ = p.Approve()
		paymentRepo.EXPECT().GetByID(gomock.Any(), "pay-1").Return(p, nil)
		paymentRepo.EXPECT().Update(gomock.Any(), p).Return(nil)

		got, err := uc.Refund(context.Background(), "pay-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != entities.PaymentStatusRefunded {
			t.Fatalf("expected refunded, got %s", got.Status)
		}
	})
}
