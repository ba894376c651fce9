// Package cartsession resolves, prepares and commits the active cart
// of a browsing session. The session side only ever stores a mapping
// from a derived cart key to the cart's opaque token; everything else
// lives in storage.
package cartsession

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"storefront-checkout/internal/domain"
	cartrepo "storefront-checkout/internal/repository/cart"
	custrepo "storefront-checkout/internal/repository/customer"
	customersvc "storefront-checkout/internal/service/customer"
)

// DefaultIdentifier is the cart identifier used when the request does
// not ask for a specific one.
const DefaultIdentifier = "default"

// keyPrefix is the fixed first component of every session cart key.
const keyPrefix = "storefront"

// TokenStore is the session-side key/value mapping holding cart
// tokens. The transport (encrypted cookies in the HTTP layer) is
// responsible for tamper evidence and lifetime.
type TokenStore interface {
	Get(key string) (string, bool)
	Set(key, token string)
	Delete(key string)
}

type cartStore interface {
	FindByToken(ctx context.Context, token string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
}

type customerResolver interface {
	Resolve(ctx context.Context, auth customersvc.AuthContext) (*domain.Customer, error)
}

type customerStore interface {
	Save(ctx context.Context, c *domain.Customer) error
}

type reconciler interface {
	Reconcile(ctx context.Context, cart *domain.Cart) error
}

// Service orchestrates the cart lifecycle for one request at a time.
type Service struct {
	carts      cartStore
	resolver   customerResolver
	customers  customerStore
	reconciler reconciler
	locales    map[string]bool
	currency   string
	logger     *log.Logger
}

// New wires the session manager. availableLocales guards locale
// propagation; currency is the currency new carts start with.
func New(
	carts cartrepo.Repository,
	resolver *customersvc.Resolver,
	customers custrepo.Repository,
	rec reconciler,
	availableLocales []string,
	currency string,
	logger *log.Logger,
) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	locales := make(map[string]bool, len(availableLocales))
	for _, locale := range availableLocales {
		locales[locale] = true
	}
	return &Service{
		carts:      carts,
		resolver:   resolver,
		customers:  customers,
		reconciler: rec,
		locales:    locales,
		currency:   currency,
		logger:     logger,
	}
}

// CartKey derives the session key for a cart identifier. The format is
// shared verbatim by the write and delete paths, so a commit always
// targets the mapping a resolve looked at.
func CartKey(identifier, namespace string) string {
	if identifier == "" {
		identifier = DefaultIdentifier
	}
	parts := make([]string, 0, 4)
	parts = append(parts, keyPrefix, "cart")
	if namespace != "" {
		parts = append(parts, namespace)
	}
	parts = append(parts, identifier)
	return strings.Join(parts, ".")
}

// ResolveCart returns the active cart the session token maps to, or a
// fresh unpersisted cart when no valid mapping exists. A token
// pointing at an inactive or vanished cart is removed on the spot;
// absence is a normal path, never an error.
func (s *Service) ResolveCart(ctx context.Context, sess TokenStore, identifier, namespace string) (*domain.Cart, error) {
	if identifier == "" {
		identifier = DefaultIdentifier
	}
	key := CartKey(identifier, namespace)

	if token, ok := sess.Get(key); ok && token != "" {
		cart, err := s.carts.FindByToken(ctx, token)
		switch {
		case err == nil && cart.Active:
			return cart, nil
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("find cart by token: %w", err)
		}
		// The token points at a cart that was checked out or cleaned
		// up. Drop the mapping and fall through to a fresh cart.
		sess.Delete(key)
	}

	return domain.NewCart(identifier, s.currency), nil
}

// PrepareCart binds the resolved customer, propagates the request
// locale and reconciles stale lines. Only carts that already exist in
// storage are saved; brand-new carts stay in memory so plain visits
// and crawlers never create rows.
func (s *Service) PrepareCart(ctx context.Context, cart *domain.Cart, auth customersvc.AuthContext, requestLocale string) error {
	cust, err := s.resolver.Resolve(ctx, auth)
	if err != nil {
		return err
	}
	if cust != nil {
		if cart.CustomerID == nil {
			id := cust.ID
			cart.CustomerID = &id
		}
		// Track the customer's browsing locale for later mailing, but
		// only for declared locales: URL locale handling can otherwise
		// leak pseudo-locales such as an asset path prefix.
		if cust.Locale == "" && s.locales[requestLocale] {
			cust.Locale = requestLocale
			if err := s.customers.Save(ctx, cust); err != nil {
				return fmt.Errorf("save customer locale: %w", err)
			}
		}
	}
	if requestLocale != "" && s.locales[requestLocale] {
		cart.Locale = requestLocale
	}

	if err := s.reconciler.Reconcile(ctx, cart); err != nil {
		return fmt.Errorf("reconcile cart: %w", err)
	}

	if cart.Persisted() {
		if err := s.carts.Save(ctx, cart); err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
	}
	return nil
}

// CommitCartToken refreshes the session mapping for a persisted,
// active cart and removes it for anything else. A mapping must never
// outlive the cart it points to.
func (s *Service) CommitCartToken(sess TokenStore, cart *domain.Cart, namespace string) {
	key := CartKey(cart.Identifier, namespace)
	if cart.Persisted() && cart.Active {
		sess.Set(key, cart.Token)
		return
	}
	sess.Delete(key)
}
