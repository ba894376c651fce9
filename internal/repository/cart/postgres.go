package cart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
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

const cartColumns = `id::text, token, identifier, customer_id::text, locale, currency, active, total_cents, shipping_address, billing_address, created_at`

func (r *postgresRepo) Create(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	shipJSON, billJSON, err := marshalAddresses(cart)
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO carts (token, identifier, customer_id, locale, currency, active, total_cents, shipping_address, billing_address)
VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
RETURNING ` + cartColumns
	return r.scanCart(ctx, r.pool.QueryRow(ctx, q,
		cart.Token,
		cart.Identifier,
		cart.CustomerID,
		cart.Locale,
		cart.Currency,
		cart.Active,
		shipJSON,
		billJSON,
	), false)
}

func (r *postgresRepo) FindByToken(ctx context.Context, token string) (*domain.Cart, error) {
	const q = `
SELECT ` + cartColumns + `
FROM carts
WHERE token = $1
LIMIT 1
`
	return r.scanCart(ctx, r.pool.QueryRow(ctx, q, token), true)
}

func (r *postgresRepo) Save(ctx context.Context, cart *domain.Cart) error {
	shipJSON, billJSON, err := marshalAddresses(cart)
	if err != nil {
		return err
	}
	const q = `
UPDATE carts
SET customer_id = $1,
    locale = $2,
    active = $3,
    shipping_address = $4,
    billing_address = $5
WHERE id = $6
`
	cmd, err := r.pool.Exec(ctx, q, cart.CustomerID, cart.Locale, cart.Active, shipJSON, billJSON, cart.ID)
	if err != nil {
		r.logger.Printf("cart repo: save error=%v", err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Deactivate(ctx context.Context, cartID string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE carts SET active = FALSE WHERE id = $1`, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) AddLineItem(ctx context.Context, cartID string, product domain.Product, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var lineID string
	var existingQty int
	var unitPrice int64
	err = tx.QueryRow(ctx, `
SELECT id::text, quantity, unit_price_cents
FROM cart_lines
WHERE cart_id = $1 AND product_id = $2
`, cartID, product.ID).Scan(&lineID, &existingQty, &unitPrice)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if err == nil {
		newQty := existingQty + quantity
		if _, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1, total_cents = $2
WHERE id = $3
`, newQty, unitPrice*int64(newQty), lineID); err != nil {
			return err
		}
	} else {
		unitPrice = product.PriceCents
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, sku, name, quantity, unit_price_cents, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, cartID, product.ID, product.SKU, product.Name, quantity, unitPrice, unitPrice*int64(quantity)); err != nil {
			return err
		}
	}

	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) ChangeLineItemQuantity(ctx context.Context, cartID, lineItemID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quantity <= 0 {
		if err := deleteLine(ctx, tx, cartID, lineItemID); err != nil {
			return err
		}
	} else {
		var unitPrice int64
		err := tx.QueryRow(ctx, `
SELECT unit_price_cents
FROM cart_lines
WHERE id = $1 AND cart_id = $2
`, lineItemID, cartID).Scan(&unitPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1, total_cents = $2
WHERE id = $3 AND cart_id = $4
`, quantity, unitPrice*int64(quantity), lineItemID, cartID); err != nil {
			return err
		}
	}

	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveLineItem(ctx context.Context, cartID, lineItemID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := deleteLine(ctx, tx, cartID, lineItemID); err != nil {
		return err
	}
	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) UpdateLineItemPrice(ctx context.Context, cartID, lineItemID string, unitPriceCents int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET unit_price_cents = $1, total_cents = $1 * quantity
WHERE id = $2 AND cart_id = $3
`, unitPriceCents, lineItemID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if err := updateCartTotal(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) scanCart(ctx context.Context, row pgx.Row, withLines bool) (*domain.Cart, error) {
	var cart domain.Cart
	var customerID *string
	var shipJSON, billJSON []byte
	err := row.Scan(
		&cart.ID,
		&cart.Token,
		&cart.Identifier,
		&customerID,
		&cart.Locale,
		&cart.Currency,
		&cart.Active,
		&cart.TotalCents,
		&shipJSON,
		&billJSON,
		&cart.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("cart repo: scan error=%v", err)
		return nil, err
	}
	cart.CustomerID = customerID
	if cart.ShippingAddress, err = unmarshalAddress(shipJSON); err != nil {
		return nil, err
	}
	if cart.BillingAddress, err = unmarshalAddress(billJSON); err != nil {
		return nil, err
	}

	if !withLines {
		return &cart, nil
	}

	const linesQuery = `
SELECT id::text, cart_id::text, product_id::text, sku, name, quantity, unit_price_cents, total_cents, created_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, linesQuery, cart.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(
			&line.ID,
			&line.CartID,
			&line.ProductID,
			&line.SKU,
			&line.Name,
			&line.Quantity,
			&line.UnitPriceCents,
			&line.TotalCents,
			&line.CreatedAt,
		); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

func deleteLine(ctx context.Context, tx pgx.Tx, cartID, lineItemID string) error {
	cmd, err := tx.Exec(ctx, `
DELETE FROM cart_lines
WHERE id = $1 AND cart_id = $2
`, lineItemID, cartID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func updateCartTotal(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `
UPDATE carts
SET total_cents = COALESCE((
	SELECT SUM(total_cents)
	FROM cart_lines
	WHERE cart_id = $1
), 0)
WHERE id = $1
`, cartID)
	return err
}

func marshalAddresses(cart *domain.Cart) ([]byte, []byte, error) {
	shipJSON, err := marshalAddress(cart.ShippingAddress)
	if err != nil {
		return nil, nil, err
	}
	billJSON, err := marshalAddress(cart.BillingAddress)
	if err != nil {
		return nil, nil, err
	}
	return shipJSON, billJSON, nil
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
