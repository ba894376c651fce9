package cart

import (
	"context"

	"storefront-checkout/internal/domain"
)

// Repository persists carts and their line items. A cart row is only
// created once something actually touches the cart; FindByToken treats
// unknown tokens as domain.ErrNotFound, never as a failure.
type Repository interface {
	Create(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
	FindByToken(ctx context.Context, token string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Deactivate(ctx context.Context, cartID string) error
	AddLineItem(ctx context.Context, cartID string, product domain.Product, quantity int) error
	ChangeLineItemQuantity(ctx context.Context, cartID, lineItemID string, quantity int) error
	RemoveLineItem(ctx context.Context, cartID, lineItemID string) error
	UpdateLineItemPrice(ctx context.Context, cartID, lineItemID string, unitPriceCents int64) error
}
