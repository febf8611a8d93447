package interfaces

import (
	"context"

	"receitamed/internal/domain/entities"
)

// IRequestRepository abstracts persistence for the Request aggregate.
//
// Update must be conditional on the entity's stored version (compare-and-set)
// and return ErrVersionConflict when it loses a race, so the "check current
// state, then transition" pattern is race-free at the storage level.
type IRequestRepository interface {
	Create(ctx context.Context, r *entities.Request) error
	GetByID(ctx context.Context, id string) (*entities.Request, error)
	ListByPatientID(ctx context.Context, patientID string) ([]*entities.Request, error)
	Update(ctx context.Context, r *entities.Request) error
}
