package shippingmethod

import (
	"context"

	"storefront-checkout/internal/domain"
)

// Repository reads the configured shipping methods. The list is store
// configuration: written by the seed/admin tooling, read-only for the
// checkout flow.
type Repository interface {
	ListActive(ctx context.Context) ([]domain.ShippingMethod, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.ShippingMethod, error)
}
