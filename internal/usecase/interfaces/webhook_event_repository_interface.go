package interfaces

import (
	"context"

	"receitamed/internal/domain/entities"
)

// IWebhookEventRepository persists inbound notification records.
// GetByProviderRequestID returns nil (no error) when no record matches.
type IWebhookEventRepository interface {
	Create(ctx context.Context, e *entities.WebhookEvent) error
	GetByProviderRequestID(ctx context.Context, providerRequestID string) (*entities.WebhookEvent, error)
	Update(ctx context.Context, e *entities.WebhookEvent) error
}
