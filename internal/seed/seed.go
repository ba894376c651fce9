package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	SKU        string
	Name       string
	PriceCents int64
	Currency   string
}

type methodSeed struct {
	Identifier       string
	Name             string
	Position         int
	PriceCents       int64
	FreeAboveCents   *int64
	AvailabilityRule string
	CostRule         string
}

// Apply inserts basic seed data for manual testing. It is idempotent
// via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{SKU: "SKU-DEMO-TSHIRT", Name: "Demo T-Shirt", PriceCents: 1999, Currency: "EUR"},
		{SKU: "SKU-DEMO-MUG", Name: "Demo Mug", PriceCents: 1299, Currency: "EUR"},
		{SKU: "SKU-DEMO-POSTER", Name: "Demo Poster", PriceCents: 899, Currency: "EUR"},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	freeAbove := int64(5000)
	methods := []methodSeed{
		{
			Identifier:     "flat-rate",
			Name:           "Standard Delivery",
			Position:       1,
			PriceCents:     499,
			FreeAboveCents: &freeAbove,
		},
		{
			Identifier:     "free-shipping",
			Name:           "Free Shipping",
			Position:       2,
			FreeAboveCents: &freeAbove,
		},
		{
			Identifier:       "express",
			Name:             "Express Delivery",
			Position:         3,
			PriceCents:       999,
			AvailabilityRule: `item_count > 0 && total_cents < 100000`,
			CostRule:         `total_cents >= 20000 ? price_cents / 2 : price_cents`,
		},
	}
	for _, m := range methods {
		if err := upsertShippingMethod(ctx, pool, m); err != nil {
			return fmt.Errorf("upsert shipping method %s: %w", m.Identifier, err)
		}
	}

	if err := ensureUser(ctx, pool, "demo@example.com", "password123"); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, price_cents, currency)
VALUES ($1, $2, $3, $4)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.PriceCents, p.Currency)
	return err
}

func upsertShippingMethod(ctx context.Context, pool *pgxpool.Pool, m methodSeed) error {
	const q = `
INSERT INTO shipping_methods (identifier, name, active, position, price_cents, free_above_cents, availability_rule, cost_rule)
VALUES ($1, $2, TRUE, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
ON CONFLICT (identifier) DO UPDATE
SET name = EXCLUDED.name,
    position = EXCLUDED.position,
    price_cents = EXCLUDED.price_cents,
    free_above_cents = EXCLUDED.free_above_cents,
    availability_rule = EXCLUDED.availability_rule,
    cost_rule = EXCLUDED.cost_rule
`
	_, err := pool.Exec(ctx, q, m.Identifier, m.Name, m.Position, m.PriceCents, m.FreeAboveCents, m.AvailabilityRule, m.CostRule)
	return err
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (email, password_hash)
VALUES ($1, $2)
ON CONFLICT (email) DO NOTHING
`
	_, err = pool.Exec(ctx, q, email, string(hash))
	return err
}
