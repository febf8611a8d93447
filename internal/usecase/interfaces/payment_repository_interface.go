package interfaces

import (
	"context"

	"receitamed/internal/domain/entities"
)

// IPaymentRepository abstracts persistence for Payment aggregates. Lookups
// return nil (no error) when nothing matches; Update is version-conditional.
type IPaymentRepository interface {
	Create(ctx context.Context, p *entities.Payment) error
	GetByID(ctx context.Context, id string) (*entities.Payment, error)
	GetByExternalID(ctx context.Context, externalID string) (*entities.Payment, error)
	GetPendingByRequestID(ctx context.Context, requestID string) (*entities.Payment, error)
	ListByRequestID(ctx context.Context, requestID string) ([]*entities.Payment, error)
	Update(ctx context.Context, p *entities.Payment) error
}
