package customer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-checkout/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const customerColumns = `id::text, user_type, user_id, email, locale, shipping_address, billing_address, created_at`

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	shipJSON, err := marshalAddress(c.ShippingAddress)
	if err != nil {
		return nil, err
	}
	billJSON, err := marshalAddress(c.BillingAddress)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO customers (user_type, user_id, email, locale, shipping_address, billing_address)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + customerColumns
	return r.scanCustomer(r.pool.QueryRow(ctx, q,
		c.UserType,
		c.UserID,
		strings.ToLower(c.Email),
		c.Locale,
		shipJSON,
		billJSON,
	))
}

func (r *postgresRepo) GetByUser(ctx context.Context, userType, userID string) (*domain.Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE user_type = $1 AND user_id = $2
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, userType, userID))
}

func (r *postgresRepo) Save(ctx context.Context, c *domain.Customer) error {
	shipJSON, err := marshalAddress(c.ShippingAddress)
	if err != nil {
		return err
	}
	billJSON, err := marshalAddress(c.BillingAddress)
	if err != nil {
		return err
	}
	const q = `
UPDATE customers
SET email = $1,
    locale = $2,
    shipping_address = $3,
    billing_address = $4
WHERE id = $5
`
	cmd, err := r.pool.Exec(ctx, q, strings.ToLower(c.Email), c.Locale, shipJSON, billJSON, c.ID)
	if err != nil {
		r.logger.Printf("customer repo: save error=%v", err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var shipJSON, billJSON []byte
	err := row.Scan(
		&c.ID,
		&c.UserType,
		&c.UserID,
		&c.Email,
		&c.Locale,
		&shipJSON,
		&billJSON,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("customer repo: scan error=%v", err)
		return nil, err
	}
	if c.ShippingAddress, err = unmarshalAddress(shipJSON); err != nil {
		return nil, err
	}
	if c.BillingAddress, err = unmarshalAddress(billJSON); err != nil {
		return nil, err
	}
	return &c, nil
}

func marshalAddress(a *domain.Address) ([]byte, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func unmarshalAddress(raw []byte) (*domain.Address, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var a domain.Address
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
