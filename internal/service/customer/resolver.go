// Package customer resolves the shop customer bound to the current
// authenticated principal.
package customer

import (
	"context"
	"errors"
	"fmt"

	"storefront-checkout/internal/domain"
	custrepo "storefront-checkout/internal/repository/customer"
)

// Principal is any authenticatable entity that can own a customer.
type Principal interface {
	PrincipalType() string
	PrincipalID() string
	PrincipalEmail() string
}

// AuthContext exposes the signed-in principal of the current request,
// if any. The transport layer implements it; this package never looks
// at credentials.
type AuthContext interface {
	SignedIn() bool
	Principal() Principal
}

type customerRepo interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByUser(ctx context.Context, userType, userID string) (*domain.Customer, error)
}

// Resolver finds or lazily creates the customer for a principal.
type Resolver struct {
	repo customerRepo
}

// NewResolver wires the resolver to customer storage.
func NewResolver(repo custrepo.Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the customer for the signed-in principal, creating
// one seeded with the principal's email on first contact. Anonymous
// sessions get (nil, nil): no customer is fabricated for them.
// Repeated calls for the same principal always yield the same
// customer.
func (r *Resolver) Resolve(ctx context.Context, auth AuthContext) (*domain.Customer, error) {
	if auth == nil || !auth.SignedIn() {
		return nil, nil
	}
	principal := auth.Principal()

	existing, err := r.repo.GetByUser(ctx, principal.PrincipalType(), principal.PrincipalID())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup customer: %w", err)
	}

	created, err := r.repo.Create(ctx, domain.Customer{
		UserType: principal.PrincipalType(),
		UserID:   principal.PrincipalID(),
		Email:    principal.PrincipalEmail(),
	})
	if err != nil {
		// A concurrent request for the same principal may have won the
		// insert; the unique binding guarantees a single customer.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return r.repo.GetByUser(ctx, principal.PrincipalType(), principal.PrincipalID())
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}
