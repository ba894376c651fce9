package customer

import (
	"context"

	"storefront-checkout/internal/domain"
)

// Repository persists and fetches customers by their owning principal.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByUser(ctx context.Context, userType, userID string) (*domain.Customer, error)
	Save(ctx context.Context, c *domain.Customer) error
}
