package httpserver

import (
	"context"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/service/cartsession"
	customersvc "storefront-checkout/internal/service/customer"
	"storefront-checkout/internal/shipping"
)

// CartSessionService is the slice of the cart session manager the
// handlers need.
type CartSessionService interface {
	ResolveCart(ctx context.Context, sess cartsession.TokenStore, identifier, namespace string) (*domain.Cart, error)
	PrepareCart(ctx context.Context, cart *domain.Cart, auth customersvc.AuthContext, requestLocale string) error
	CommitCartToken(sess cartsession.TokenStore, cart *domain.Cart, namespace string)
}

// CartStore covers the cart mutations driven by HTTP actions.
type CartStore interface {
	Create(ctx context.Context, cart *domain.Cart) (*domain.Cart, error)
	FindByToken(ctx context.Context, token string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Deactivate(ctx context.Context, cartID string) error
	AddLineItem(ctx context.Context, cartID string, product domain.Product, quantity int) error
	ChangeLineItemQuantity(ctx context.Context, cartID, lineItemID string, quantity int) error
}

// ProductGetter looks up catalog products for cart actions.
type ProductGetter interface {
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
}

// CustomerResolver yields the customer for the current auth context.
type CustomerResolver interface {
	Resolve(ctx context.Context, auth customersvc.AuthContext) (*domain.Customer, error)
}

// CustomerSaver persists customer mutations made during checkout.
type CustomerSaver interface {
	Save(ctx context.Context, c *domain.Customer) error
}

// ShippingQuoter computes the shipping methods available to a cart.
type ShippingQuoter interface {
	Quotes(ctx context.Context, cart *domain.Cart) ([]shipping.Quote, error)
}

// AuthService authenticates users and validates bearer tokens.
type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	AccessTTLSeconds() int
}

// Deps bundles everything the router needs.
type Deps struct {
	CartSessions CartSessionService
	Carts        CartStore
	Products     ProductGetter
	Customers    CustomerResolver
	CustomerRepo CustomerSaver
	Shipping     ShippingQuoter
	Auth         AuthService
}
