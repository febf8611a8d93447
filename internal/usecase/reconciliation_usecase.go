package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"receitamed/internal/domain/entities"
	"receitamed/internal/usecase/interfaces"

	"go.uber.org/zap"
)

// Provider status values that trigger transitions. Anything else is recorded
// without transitioning.
const (
	providerStatusApproved  = "approved"
	providerStatusRejected  = "rejected"
	providerStatusCancelled = "cancelled"
)

// ReconcileOutcome is a tagged result, not an exception: idempotent
// re-deliveries come back as AlreadyApplied, genuine errors as errors.
type ReconcileOutcome struct {
	Applied        bool
	AlreadyApplied bool
	PaymentStatus  string
	StatusDetail   string
}

// IReconciliationUseCase fetches authoritative payment status from the
// provider and applies it to the payment and request aggregates. Safe to
// invoke concurrently for the same payment from the webhook and sync paths:
// every transition re-checks aggregate state, and storage-level version
// conflicts are resolved by re-reading.
type IReconciliationUseCase interface {
	Reconcile(ctx context.Context, providerPaymentID string) (ReconcileOutcome, error)
	SyncPayment(ctx context.Context, requestID string) (ReconcileOutcome, error)
}

type ReconciliationUseCase struct {
	paymentRepo interfaces.IPaymentRepository
	requestRepo interfaces.IRequestRepository
	gateway     interfaces.IPaymentGateway
	notifier    interfaces.INotificationSender
	log         *zap.Logger
}

var _ IReconciliationUseCase = (*ReconciliationUseCase)(nil)

func NewReconciliationUseCase(
	paymentRepo interfaces.IPaymentRepository,
	requestRepo interfaces.IRequestRepository,
	gateway interfaces.IPaymentGateway,
	notifier interfaces.INotificationSender,
	log *zap.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		paymentRepo: paymentRepo,
		requestRepo: requestRepo,
		gateway:     gateway,
		notifier:    notifier,
		log:         log,
	}
}

func (u *ReconciliationUseCase) Reconcile(ctx context.Context, providerPaymentID string) (ReconcileOutcome, error) {
	providerPaymentID = strings.TrimSpace(providerPaymentID)
	if providerPaymentID == "" {
		return ReconcileOutcome{}, ErrInvalidPaymentID
	}

	// The webhook is only a notification to look: the provider is always asked
	// for the authoritative status, payload order is never trusted.
	status, err := u.gateway.GetPaymentStatus(ctx, providerPaymentID)
	if err != nil {
		return ReconcileOutcome{}, fmt.Errorf("%w: %v", ErrPaymentProviderFailed, err)
	}

	p, err := u.locatePayment(ctx, providerPaymentID, status.ExternalReference)
	if err != nil {
		return ReconcileOutcome{}, err
	}
	if p == nil {
		// First notification may race local creation, or the payment belongs to
		// another system. Soft failure: acknowledge so the provider stops
		// retrying, take no action.
		u.log.Warn("no local payment for provider notification",
			zap.String("provider_payment_id", providerPaymentID),
			zap.String("external_reference", status.ExternalReference))
		return ReconcileOutcome{PaymentStatus: status.Status, StatusDetail: status.StatusDetail}, nil
	}

	outcome := ReconcileOutcome{PaymentStatus: status.Status, StatusDetail: status.StatusDetail}

	switch status.Status {
	case providerStatusApproved:
		flipped, err := u.applyApproval(ctx, p)
		if err != nil {
			return ReconcileOutcome{}, err
		}
		outcome.Applied = flipped
		outcome.AlreadyApplied = !flipped
		if flipped {
			// Notification is guarded by the payment's own transition, not by
			// webhook dedup, so a sync-triggered approval also notifies, and a
			// redelivered webhook never double-notifies.
			u.notify(ctx, p.PatientID, "Pagamento confirmado", "Seu pagamento foi confirmado.")
		}
	case providerStatusRejected, providerStatusCancelled:
		flipped, err := u.applyRejection(ctx, p)
		if err != nil {
			return ReconcileOutcome{}, err
		}
		outcome.Applied = flipped
		outcome.AlreadyApplied = !flipped
	default:
		u.log.Info("provider status requires no transition",
			zap.String("payment_id", p.ID), zap.String("provider_status", status.Status))
	}

	return outcome, nil
}

// SyncPayment is the on-demand pull path. It shares the apply logic with the
// webhook path, so both converge to the same final state.
func (u *ReconciliationUseCase) SyncPayment(ctx context.Context, requestID string) (ReconcileOutcome, error) {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ReconcileOutcome{}, ErrInvalidRequestID
	}

	p, err := u.paymentRepo.GetPendingByRequestID(ctx, requestID)
	if err != nil {
		return ReconcileOutcome{}, err
	}
	if p == nil {
		// Nothing pending: report the latest known payment state instead.
		payments, err := u.paymentRepo.ListByRequestID(ctx, requestID)
		if err != nil {
			return ReconcileOutcome{}, err
		}
		if len(payments) == 0 {
			return ReconcileOutcome{}, ErrPaymentNotFound
		}
		latest := payments[0]
		for _, candidate := range payments[1:] {
			if candidate.CreatedAt.After(latest.CreatedAt) {
				latest = candidate
			}
		}
		return ReconcileOutcome{AlreadyApplied: true, PaymentStatus: string(latest.Status)}, nil
	}
	if p.ExternalID == "" {
		// Never registered with the provider; there is nothing to reconcile
		// against yet.
		return ReconcileOutcome{PaymentStatus: string(p.Status)}, nil
	}
	return u.Reconcile(ctx, p.ExternalID)
}

// locatePayment resolves the local payment for a provider id. When the first
// notification races local correlation, the pending payment is found through
// the provider's echoed external reference (the request id) and the external
// id is attached then.
func (u *ReconciliationUseCase) locatePayment(ctx context.Context, providerPaymentID, externalReference string) (*entities.Payment, error) {
	p, err := u.paymentRepo.GetByExternalID(ctx, providerPaymentID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	if externalReference == "" {
		return nil, nil
	}

	p, err = u.paymentRepo.GetPendingByRequestID(ctx, externalReference)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	if err := p.SetExternalID(providerPaymentID); err != nil {
		// Pending payment already correlated elsewhere; this notification is
		// not ours to apply.
		u.log.Warn("pending payment correlated to a different provider id",
			zap.String("payment_id", p.ID), zap.String("provider_payment_id", providerPaymentID))
		return nil, nil
	}
	if err := u.paymentRepo.Update(ctx, p); err != nil {
		if errors.Is(err, interfaces.ErrVersionConflict) {
			return u.paymentRepo.GetByExternalID(ctx, providerPaymentID)
		}
		return nil, err
	}
	return p, nil
}

// applyApproval flips a pending payment to approved and advances the request.
// Returns whether this call performed the payment transition.
func (u *ReconciliationUseCase) applyApproval(ctx context.Context, p *entities.Payment) (bool, error) {
	if p.Status != entities.PaymentStatusPending {
		return false, nil
	}
	if err := p.Approve(); err != nil {
		return false, nil
	}
	if err := u.paymentRepo.Update(ctx, p); err != nil {
		if errors.Is(err, interfaces.ErrVersionConflict) {
			// Lost the race; the winner performed the transition.
			return false, nil
		}
		return false, err
	}
	u.log.Info("payment approved", zap.String("payment_id", p.ID), zap.String("request_id", p.RequestID))

	if err := u.advanceRequest(ctx, p.RequestID); err != nil {
		return true, err
	}
	return true, nil
}

// advanceRequest marks the request paid when it still awaits payment. Already
// being paid or beyond is a benign idempotent re-delivery.
func (u *ReconciliationUseCase) advanceRequest(ctx context.Context, requestID string) error {
	r, err := u.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if r == nil {
		u.log.Warn("approved payment references unknown request", zap.String("request_id", requestID))
		return nil
	}
	if err := r.MarkAsPaid(); err != nil {
		var ste *entities.StateTransitionError
		if errors.As(err, &ste) {
			u.log.Info("request already past payment",
				zap.String("request_id", requestID), zap.String("status", string(r.Status)))
			return nil
		}
		return err
	}
	if err := u.requestRepo.Update(ctx, r); err != nil {
		if errors.Is(err, interfaces.ErrVersionConflict) {
			return nil
		}
		return err
	}
	u.log.Info("request marked as paid", zap.String("request_id", requestID))
	return nil
}

// applyRejection flips a pending payment to rejected. The request keeps its
// status so the patient can retry with a fresh payment.
func (u *ReconciliationUseCase) applyRejection(ctx context.Context, p *entities.Payment) (bool, error) {
	if p.Status != entities.PaymentStatusPending {
		return false, nil
	}
	if err := p.Reject(); err != nil {
		return false, nil
	}
	if err := u.paymentRepo.Update(ctx, p); err != nil {
		if errors.Is(err, interfaces.ErrVersionConflict) {
			return false, nil
		}
		return false, err
	}
	u.log.Info("payment rejected by provider", zap.String("payment_id", p.ID), zap.String("request_id", p.RequestID))
	return true, nil
}

func (u *ReconciliationUseCase) notify(ctx context.Context, userID, title, message string) {
	if u.notifier == nil {
		return
	}
	if err := u.notifier.Notify(ctx, userID, title, message); err != nil {
		u.log.Warn("notification failed", zap.String("user_id", userID), zap.Error(err))
	}
}
