package domain

import "time"

// ShippingMethod is a configured way of delivering a cart. Its
// identifier doubles as the key into the calculator registry; every
// active method must resolve to a registered calculator.
type ShippingMethod struct {
	ID               string    `json:"id"`
	Identifier       string    `json:"identifier"`
	Name             string    `json:"name"`
	Active           bool      `json:"active"`
	Position         int       `json:"position"`
	PriceCents       int64     `json:"priceCents"`
	FreeAboveCents   *int64    `json:"freeAboveCents,omitempty"`
	AvailabilityRule string    `json:"-"`
	CostRule         string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
}
