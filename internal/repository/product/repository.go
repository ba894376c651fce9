package product

import (
	"context"

	"storefront-checkout/internal/domain"
)

// Repository fetches catalog products referenced by cart lines.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
}
