package domain

import "time"

// Customer represents the shop-side record bound to an authenticatable
// principal. It is created lazily on the first authenticated cart
// interaction, at most once per principal.
type Customer struct {
	ID              string    `json:"id"`
	UserType        string    `json:"-"`
	UserID          string    `json:"-"`
	Email           string    `json:"email"`
	Locale          string    `json:"locale,omitempty"`
	ShippingAddress *Address  `json:"shippingAddress,omitempty"`
	BillingAddress  *Address  `json:"billingAddress,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// AddressFor returns the address in the given slot, or nil.
func (c *Customer) AddressFor(kind AddressKind) *Address {
	if kind == BillingAddressKind {
		return c.BillingAddress
	}
	return c.ShippingAddress
}

// SetAddressFor replaces the address in the given slot.
func (c *Customer) SetAddressFor(kind AddressKind, a *Address) {
	if kind == BillingAddressKind {
		c.BillingAddress = a
		return
	}
	c.ShippingAddress = a
}
