package domain

import "time"

// Product is a catalog entry referenced by cart lines. Inactive
// products are no longer purchasable and get reconciled out of carts.
type Product struct {
	ID         string    `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	PriceCents int64     `json:"priceCents"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
}
