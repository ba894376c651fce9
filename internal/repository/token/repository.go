package token

import (
	"context"
	"time"
)

// Token is an opaque bearer credential bound to a user principal.
type Token struct {
	Token     string
	UserType  string
	UserID    string
	Kind      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Repository stores issued auth tokens.
type Repository interface {
	Create(ctx context.Context, token Token) error
	Get(ctx context.Context, token string) (*Token, error)
	Delete(ctx context.Context, token string) error
}
