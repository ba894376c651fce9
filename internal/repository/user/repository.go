package user

import (
	"context"

	"storefront-checkout/internal/domain"
)

// Repository persists the built-in user principals.
type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
