package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Cart is the session shopping cart. Its token is minted once at
// construction and identifies the cart to a returning browser; the
// identifier is the session-scoped symbolic key (usually "default")
// that allows several concurrent carts per session.
type Cart struct {
	ID              string     `json:"id,omitempty"`
	Token           string     `json:"-"`
	Identifier      string     `json:"identifier"`
	CustomerID      *string    `json:"customerId,omitempty"`
	Locale          string     `json:"locale,omitempty"`
	Currency        string     `json:"currency"`
	Active          bool       `json:"active"`
	TotalCents      int64      `json:"totalCents"`
	ShippingAddress *Address   `json:"shippingAddress,omitempty"`
	BillingAddress  *Address   `json:"billingAddress,omitempty"`
	Lines           []CartLine `json:"lineItems,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// CartLine is one product entry of a cart, with a price captured at the
// time the product was added.
type CartLine struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	ProductID      string    `json:"productId"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	TotalCents     int64     `json:"totalCents"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewCart builds an unpersisted, active cart with a fresh token. The
// token stays stable for the cart's whole lifetime.
func NewCart(identifier, currency string) *Cart {
	return &Cart{
		Token:      newCartToken(),
		Identifier: identifier,
		Currency:   currency,
		Active:     true,
	}
}

// Persisted reports whether the cart has been stored already. New carts
// stay unpersisted until something actually touches them.
func (c *Cart) Persisted() bool {
	return c.ID != ""
}

// ItemCount sums the quantities over all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// AddressFor returns the address in the given slot, or nil.
func (c *Cart) AddressFor(kind AddressKind) *Address {
	if kind == BillingAddressKind {
		return c.BillingAddress
	}
	return c.ShippingAddress
}

// SetAddressFor replaces the address in the given slot.
func (c *Cart) SetAddressFor(kind AddressKind, a *Address) {
	if kind == BillingAddressKind {
		c.BillingAddress = a
		return
	}
	c.ShippingAddress = a
}

func newCartToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
