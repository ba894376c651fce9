package shipping

import "storefront-checkout/internal/domain"

type flatRateCalculator struct {
	cart   *domain.Cart
	method domain.ShippingMethod
}

// FlatRate charges the method's configured price and is available to
// every cart. When the method defines a free-shipping threshold and
// the cart total reaches it, the cost drops to zero.
func FlatRate(cart *domain.Cart, method domain.ShippingMethod) (Calculator, error) {
	return &flatRateCalculator{cart: cart, method: method}, nil
}

func (c *flatRateCalculator) Available() bool {
	return true
}

func (c *flatRateCalculator) Cost() (int64, error) {
	if c.method.FreeAboveCents != nil && c.cart.TotalCents >= *c.method.FreeAboveCents {
		return 0, nil
	}
	return c.method.PriceCents, nil
}

type freeOverCalculator struct {
	cart   *domain.Cart
	method domain.ShippingMethod
}

// FreeOver is free shipping offered only to carts whose total reaches
// the method's threshold. Below the threshold the method is simply not
// offered.
func FreeOver(cart *domain.Cart, method domain.ShippingMethod) (Calculator, error) {
	return &freeOverCalculator{cart: cart, method: method}, nil
}

func (c *freeOverCalculator) Available() bool {
	if c.method.FreeAboveCents == nil {
		return false
	}
	return c.cart.TotalCents >= *c.method.FreeAboveCents
}

func (c *freeOverCalculator) Cost() (int64, error) {
	return 0, nil
}
