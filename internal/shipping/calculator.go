// Package shipping resolves shipping-cost calculators for configured
// shipping methods and filters the methods available to a cart.
package shipping

import (
	"fmt"

	"storefront-checkout/internal/domain"
)

// Calculator computes availability and cost for one (cart, method)
// pair. Implementations are constructed per request by a Factory and
// must not retain the cart afterwards.
type Calculator interface {
	Available() bool
	Cost() (int64, error)
}

// Factory builds a calculator bound to a cart and a shipping method. A
// returned error is a configuration defect (bad rule, missing
// parameter), not a user error.
type Factory func(cart *domain.Cart, method domain.ShippingMethod) (Calculator, error)

// Registry maps shipping method identifiers to calculator factories.
// It is populated once at startup and read-only afterwards, so lookups
// need no locking.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to a shipping method identifier.
func (r *Registry) Register(identifier string, f Factory) {
	r.factories[identifier] = f
}

// Lookup resolves the factory for a shipping method by its identifier.
func (r *Registry) Lookup(method domain.ShippingMethod) (Factory, bool) {
	f, ok := r.factories[method.Identifier]
	return f, ok
}

// CalculatorNotFoundError reports an active shipping method with no
// registered calculator. This is a store misconfiguration and must
// surface loudly instead of being skipped.
type CalculatorNotFoundError struct {
	Method domain.ShippingMethod
}

func (e *CalculatorNotFoundError) Error() string {
	return fmt.Sprintf(
		"no calculator found for the shipping method %q (identifier %q): remove the shipping method with id %s or register a calculator for %q",
		e.Method.Name, e.Method.Identifier, e.Method.ID, e.Method.Identifier,
	)
}
