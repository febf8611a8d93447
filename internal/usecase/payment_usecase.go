package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrInvalidPaymentID      = errors.New("invalid payment id")
	ErrRequestNotPayable     = errors.New("request is not awaiting payment")
	ErrPaymentAlreadyPending = errors.New("request already has a pending payment")
	ErrMissingCardToken      = errors.New("card payments require a card token")
	ErrPaymentProviderFailed = errors.New("payment provider call failed")
)

type CreatePaymentInput struct {
	RequestID  string
	PatientID  string
	Method     entities.PaymentMethod
	PayerEmail string
	CardToken  string
}

// IPaymentUseCase creates and inspects payments for a request. The amount is
// always the request's approved price, never caller-supplied.
type IPaymentUseCase interface {
	CreatePayment(ctx context.Context, input CreatePaymentInput) (*entities.Payment, error)
	GetByID(ctx context.Context, id string) (*entities.Payment, error)
	ListByRequestID(ctx context.Context, requestID string) ([]*entities.Payment, error)
	Refund(ctx context.Context, paymentID string) (*entities.Payment, error)
}

type PaymentUseCase struct {
	repo        interfaces.IPaymentRepository
	requestRepo interfaces.IRequestRepository
	attemptRepo interfaces.IPaymentAttemptRepository
	gateway     interfaces.IPaymentGateway
	log         *zap.Logger
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

func NewPaymentUseCase(
	repo interfaces.IPaymentRepository,
	requestRepo interfaces.IRequestRepository,
	attemptRepo interfaces.IPaymentAttemptRepository,
	gateway interfaces.IPaymentGateway,
	log *zap.Logger,
) *PaymentUseCase {
	return &PaymentUseCase{repo: repo, requestRepo: requestRepo, attemptRepo: attemptRepo, gateway: gateway, log: log}
}

func (u *PaymentUseCase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*entities.Payment, error) {
	requestID := strings.TrimSpace(input.RequestID)
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}
	patientID := strings.TrimSpace(input.PatientID)
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}
	if !input.Method.Valid() {
		return nil, entities.ErrInvalidPaymentMethod
	}
	if (input.Method == entities.PaymentMethodCreditCard || input.Method == entities.PaymentMethodDebitCard) &&
		strings.TrimSpace(input.CardToken) == "" {
		return nil, ErrMissingCardToken
	}

	r, err := u.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrRequestNotFound
	}
	if r.PatientID != patientID {
		return nil, ErrInvalidPatientID
	}
	switch r.Status {
	case entities.RequestStatusApprovedPendingPayment, entities.RequestStatusPendingPayment:
	default:
		return nil, ErrRequestNotPayable
	}

	// One pending payment per request; historical ones stay for audit.
	if existing, err := u.repo.GetPendingByRequestID(ctx, requestID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrPaymentAlreadyPending
	}

	p, err := entities.NewPayment(uuid.NewString(), requestID, patientID, r.Price, input.Method)
	if err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	u.log.Info("payment created",
		zap.String("payment_id", p.ID), zap.String("request_id", requestID),
		zap.String("method", string(p.Method)), zap.Float64("amount", p.Amount))

	gwInput := interfaces.CreatePaymentInput{
		Amount:            p.Amount,
		Method:            p.Method,
		Description:       fmt.Sprintf("Solicitação médica %s", requestID),
		ExternalReference: requestID,
		PayerEmail:        strings.TrimSpace(input.PayerEmail),
		CardToken:         strings.TrimSpace(input.CardToken),
		IdempotencyKey:    uuid.NewString(),
	}

	attempt := u.openAttempt(ctx, p, gwInput)
	out, gwErr := u.gateway.CreatePayment(ctx, gwInput)
	u.closeAttempt(ctx, attempt, out, gwErr)

	if gwErr != nil {
		u.log.Error("payment provider create failed",
			zap.String("payment_id", p.ID), zap.String("request_id", requestID), zap.Error(gwErr))
		// Close the pending payment so the patient can retry with a fresh one.
		if rejErr := p.Reject(); rejErr == nil {
			if err := u.repo.Update(ctx, p); err != nil {
				u.log.Warn("failed closing payment after provider error", zap.String("payment_id", p.ID), zap.Error(err))
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentProviderFailed, gwErr)
	}

	if err := p.SetExternalID(out.ExternalID); err != nil {
		return nil, err
	}
	if p.Method == entities.PaymentMethodPix {
		p.SetPixData(out.PixQRCode, out.PixCopyPaste)
	}
	if out.CheckoutURL != "" {
		p.CheckoutURL = out.CheckoutURL
	}
	if err := u.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	u.markRequestPendingPayment(ctx, r)

	u.log.Info("payment registered with provider",
		zap.String("payment_id", p.ID), zap.String("external_id", p.ExternalID), zap.String("provider_status", out.Status))
	return p, nil
}

// openAttempt writes the ledger record before the provider call. Ledger
// failures are logged, never propagated.
func (u *PaymentUseCase) openAttempt(ctx context.Context, p *entities.Payment, gwInput interfaces.CreatePaymentInput) *entities.PaymentAttempt {
	if u.attemptRepo == nil {
		return nil
	}
	body, _ := json.Marshal(gwInput)
	attempt := entities.NewPaymentAttempt(uuid.NewString(), p.ID, p.RequestID, gwInput.IdempotencyKey, body)
	if err := u.attemptRepo.Create(ctx, attempt); err != nil {
		u.log.Warn("failed recording payment attempt", zap.String("payment_id", p.ID), zap.Error(err))
		return nil
	}
	return attempt
}

func (u *PaymentUseCase) closeAttempt(ctx context.Context, attempt *entities.PaymentAttempt, out interfaces.CreatePaymentOutput, callErr error) {
	if attempt == nil {
		return
	}
	attempt.RecordOutcome(out.RawResponse, out.HTTPStatus, callErr)
	if err := u.attemptRepo.Update(ctx, attempt); err != nil {
		u.log.Warn("failed updating payment attempt", zap.String("attempt_id", attempt.ID), zap.Error(err))
	}
}

// markRequestPendingPayment moves the request out of approved-pending-payment.
// Losing to a concurrent payment creation is benign.
func (u *PaymentUseCase) markRequestPendingPayment(ctx context.Context, r *entities.Request) {
	if err := r.MarkPendingPayment(); err != nil {
		if !errors.Is(err, entities.ErrIllegalTransition) {
			u.log.Warn("unexpected pending-payment transition failure", zap.String("request_id", r.ID), zap.Error(err))
		}
		return
	}
	if err := u.requestRepo.Update(ctx, r); err != nil {
		u.log.Warn("failed persisting pending-payment status", zap.String("request_id", r.ID), zap.Error(err))
	}
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (*entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidPaymentID
	}
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

func (u *PaymentUseCase) ListByRequestID(ctx context.Context, requestID string) ([]*entities.Payment, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return nil, ErrInvalidRequestID
	}
	return u.repo.ListByRequestID(ctx, requestID)
}

func (u *PaymentUseCase) Refund(ctx context.Context, paymentID string) (*entities.Payment, error) {
	p, err := u.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := p.Refund(); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	u.log.Info("payment refunded", zap.String("payment_id", p.ID))
	return p, nil
}
