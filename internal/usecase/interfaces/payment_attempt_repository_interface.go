package interfaces

import (
	"context"

	"receitamed/internal/domain/entities"
)

// IPaymentAttemptRepository persists the append-mostly provider-call ledger.
// Each attempt is created before the outbound call and updated once with the
// outcome.
type IPaymentAttemptRepository interface {
	Create(ctx context.Context, a *entities.PaymentAttempt) error
	Update(ctx context.Context, a *entities.PaymentAttempt) error
	ListByPaymentID(ctx context.Context, paymentID string) ([]*entities.PaymentAttempt, error)
}
