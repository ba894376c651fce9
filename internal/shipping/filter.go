package shipping

import (
	"context"

	"storefront-checkout/internal/domain"
)

type methodLister interface {
	ListActive(ctx context.Context) ([]domain.ShippingMethod, error)
}

// Filter computes the shipping methods a cart can actually use, in the
// declared method order.
type Filter struct {
	methods  methodLister
	registry *Registry
}

// NewFilter wires the filter to the shipping method store and the
// calculator registry.
func NewFilter(methods methodLister, registry *Registry) *Filter {
	return &Filter{methods: methods, registry: registry}
}

// Quote pairs an available shipping method with its computed cost.
type Quote struct {
	Method    domain.ShippingMethod `json:"method"`
	CostCents int64                 `json:"costCents"`
}

// AvailableMethods returns the active shipping methods whose
// calculator reports availability for the cart, preserving the
// declared order. An active method without a registered calculator
// aborts with a *CalculatorNotFoundError: silently skipping it would
// hide store misconfiguration from the operator.
func (f *Filter) AvailableMethods(ctx context.Context, cart *domain.Cart) ([]domain.ShippingMethod, error) {
	quotes, err := f.quotes(ctx, cart, false)
	if err != nil {
		return nil, err
	}
	methods := make([]domain.ShippingMethod, 0, len(quotes))
	for _, q := range quotes {
		methods = append(methods, q.Method)
	}
	return methods, nil
}

// Quotes returns the available methods together with their computed
// costs, in the same order as AvailableMethods.
func (f *Filter) Quotes(ctx context.Context, cart *domain.Cart) ([]Quote, error) {
	return f.quotes(ctx, cart, true)
}

func (f *Filter) quotes(ctx context.Context, cart *domain.Cart, withCosts bool) ([]Quote, error) {
	active, err := f.methods.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	quotes := make([]Quote, 0, len(active))
	for _, method := range active {
		factory, ok := f.registry.Lookup(method)
		if !ok {
			return nil, &CalculatorNotFoundError{Method: method}
		}
		calculator, err := factory(cart, method)
		if err != nil {
			return nil, err
		}
		if !calculator.Available() {
			continue
		}
		quote := Quote{Method: method}
		if withCosts {
			cost, err := calculator.Cost()
			if err != nil {
				return nil, err
			}
			quote.CostCents = cost
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}
