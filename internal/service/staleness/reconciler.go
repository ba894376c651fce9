// Package staleness normalizes cart contents against the currently
// purchasable catalog before the cart is shown or persisted.
package staleness

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-checkout/internal/domain"
	cartrepo "storefront-checkout/internal/repository/cart"
	productrepo "storefront-checkout/internal/repository/product"
)

// Reconciler is the pluggable strategy invoked once per cart
// preparation, before persistence.
type Reconciler interface {
	Reconcile(ctx context.Context, cart *domain.Cart) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type lineStore interface {
	RemoveLineItem(ctx context.Context, cartID, lineItemID string) error
	UpdateLineItemPrice(ctx context.Context, cartID, lineItemID string, unitPriceCents int64) error
}

// ProductList drops cart lines whose product disappeared or was
// deactivated and refreshes unit prices that drifted from the catalog.
type ProductList struct {
	products productRepo
	lines    lineStore
	logger   *log.Logger
}

// NewProductList builds the default reconciler.
func NewProductList(products productrepo.Repository, lines cartrepo.Repository, logger *log.Logger) *ProductList {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ProductList{products: products, lines: lines, logger: logger}
}

// Reconcile mutates both the stored lines and the in-memory cart so
// callers keep working with a consistent view.
func (r *ProductList) Reconcile(ctx context.Context, cart *domain.Cart) error {
	if !cart.Persisted() || len(cart.Lines) == 0 {
		return nil
	}

	kept := cart.Lines[:0]
	for _, line := range cart.Lines {
		product, err := r.products.GetByID(ctx, line.ProductID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err != nil || !product.Active {
			if err := r.lines.RemoveLineItem(ctx, cart.ID, line.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return err
			}
			r.logger.Printf("staleness: dropped line %s (product %s no longer purchasable)", line.ID, line.ProductID)
			continue
		}
		if product.PriceCents != line.UnitPriceCents {
			if err := r.lines.UpdateLineItemPrice(ctx, cart.ID, line.ID, product.PriceCents); err != nil {
				return err
			}
			line.UnitPriceCents = product.PriceCents
			line.TotalCents = product.PriceCents * int64(line.Quantity)
		}
		kept = append(kept, line)
	}
	cart.Lines = kept

	total := int64(0)
	for _, line := range cart.Lines {
		total += line.TotalCents
	}
	cart.TotalCents = total
	return nil
}

// Noop leaves carts untouched. Useful for wiring and tests.
type Noop struct{}

func (Noop) Reconcile(context.Context, *domain.Cart) error { return nil }
