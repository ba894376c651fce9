package shippingmethod

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-checkout/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const methodColumns = `id::text, identifier, name, active, position, price_cents, free_above_cents, availability_rule, cost_rule, created_at`

func (r *postgresRepo) ListActive(ctx context.Context) ([]domain.ShippingMethod, error) {
	const q = `
SELECT ` + methodColumns + `
FROM shipping_methods
WHERE active
ORDER BY position ASC, identifier ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var methods []domain.ShippingMethod
	for rows.Next() {
		method, err := scanMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, *method)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return methods, nil
}

func (r *postgresRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.ShippingMethod, error) {
	const q = `
SELECT ` + methodColumns + `
FROM shipping_methods
WHERE identifier = $1
LIMIT 1
`
	method, err := scanMethod(r.pool.QueryRow(ctx, q, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return method, nil
}

func scanMethod(row pgx.Row) (*domain.ShippingMethod, error) {
	var m domain.ShippingMethod
	var freeAbove *int64
	var availabilityRule, costRule *string
	if err := row.Scan(
		&m.ID,
		&m.Identifier,
		&m.Name,
		&m.Active,
		&m.Position,
		&m.PriceCents,
		&freeAbove,
		&availabilityRule,
		&costRule,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.FreeAboveCents = freeAbove
	if availabilityRule != nil {
		m.AvailabilityRule = *availabilityRule
	}
	if costRule != nil {
		m.CostRule = *costRule
	}
	return &m, nil
}
