// Package addresses copies delivery and billing addresses between
// address-bearing entities, typically to prefill the checkout form
// from the customer's saved addresses.
package addresses

import "storefront-checkout/internal/domain"

// Addressable is anything exposing independent, optional shipping and
// billing address slots. Carts, customers and checkout forms all
// qualify.
type Addressable interface {
	AddressFor(kind domain.AddressKind) *domain.Address
	SetAddressFor(kind domain.AddressKind, a *domain.Address)
}

// Prefill fills the target's empty address slots from the source.
// Slots the target already has are never overwritten; slots absent on
// both sides get an empty placeholder so downstream form binding never
// sees a nil address. Calling it twice changes nothing further.
func Prefill(source, target Addressable) {
	prefill(source, target, domain.ShippingAddressKind)
	prefill(source, target, domain.BillingAddressKind)
}

func prefill(source, target Addressable, kind domain.AddressKind) {
	if target.AddressFor(kind) != nil {
		return
	}
	if src := source.AddressFor(kind); src != nil {
		target.SetAddressFor(kind, src.Clone())
		return
	}
	target.SetAddressFor(kind, &domain.Address{})
}
