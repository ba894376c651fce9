package staleness

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"storefront-checkout/internal/domain"
)

type stubProductRepo struct {
	products map[string]*domain.Product
}

func (s *stubProductRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

type stubLineStore struct {
	removed      []string
	repriced     map[string]int64
	removeErr    error
	repriceCalls int
}

func (s *stubLineStore) RemoveLineItem(_ context.Context, _, lineItemID string) error {
	s.removed = append(s.removed, lineItemID)
	return s.removeErr
}

func (s *stubLineStore) UpdateLineItemPrice(_ context.Context, _, lineItemID string, unitPriceCents int64) error {
	if s.repriced == nil {
		s.repriced = make(map[string]int64)
	}
	s.repriced[lineItemID] = unitPriceCents
	s.repriceCalls++
	return nil
}

func newTestReconciler(products *stubProductRepo, lines *stubLineStore) *ProductList {
	return &ProductList{products: products, lines: lines, logger: log.New(io.Discard, "", 0)}
}

func TestReconcileSkipsUnpersistedCarts(t *testing.T) {
	lines := &stubLineStore{}
	r := newTestReconciler(&stubProductRepo{}, lines)

	cart := domain.NewCart("default", "EUR")
	if err := r.Reconcile(context.Background(), cart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines.removed) != 0 || lines.repriceCalls != 0 {
		t.Fatalf("unpersisted carts must not be touched")
	}
}

func TestReconcileDropsVanishedProducts(t *testing.T) {
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Active: true, PriceCents: 1000},
	}}
	lines := &stubLineStore{}
	r := newTestReconciler(products, lines)

	cart := &domain.Cart{
		ID: "c1",
		Lines: []domain.CartLine{
			{ID: "l1", ProductID: "p1", Quantity: 2, UnitPriceCents: 1000, TotalCents: 2000},
			{ID: "l2", ProductID: "gone", Quantity: 1, UnitPriceCents: 500, TotalCents: 500},
		},
	}
	if err := r.Reconcile(context.Background(), cart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 || cart.Lines[0].ID != "l1" {
		t.Fatalf("vanished product line not dropped: %+v", cart.Lines)
	}
	if len(lines.removed) != 1 || lines.removed[0] != "l2" {
		t.Fatalf("stored line not removed: %v", lines.removed)
	}
	if cart.TotalCents != 2000 {
		t.Fatalf("total not recomputed: %d", cart.TotalCents)
	}
}

func TestReconcileDropsInactiveProducts(t *testing.T) {
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Active: false, PriceCents: 1000},
	}}
	lines := &stubLineStore{}
	r := newTestReconciler(products, lines)

	cart := &domain.Cart{
		ID:    "c1",
		Lines: []domain.CartLine{{ID: "l1", ProductID: "p1", Quantity: 1, UnitPriceCents: 1000, TotalCents: 1000}},
	}
	if err := r.Reconcile(context.Background(), cart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 || cart.TotalCents != 0 {
		t.Fatalf("inactive product line not dropped: %+v", cart)
	}
}

func TestReconcileRefreshesDriftedPrices(t *testing.T) {
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Active: true, PriceCents: 1200},
	}}
	lines := &stubLineStore{}
	r := newTestReconciler(products, lines)

	cart := &domain.Cart{
		ID:    "c1",
		Lines: []domain.CartLine{{ID: "l1", ProductID: "p1", Quantity: 3, UnitPriceCents: 1000, TotalCents: 3000}},
	}
	if err := r.Reconcile(context.Background(), cart); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines.repriced["l1"] != 1200 {
		t.Fatalf("stored price not refreshed: %v", lines.repriced)
	}
	if cart.Lines[0].UnitPriceCents != 1200 || cart.Lines[0].TotalCents != 3600 {
		t.Fatalf("in-memory line not refreshed: %+v", cart.Lines[0])
	}
	if cart.TotalCents != 3600 {
		t.Fatalf("total not recomputed: %d", cart.TotalCents)
	}
}

func TestReconcileRemoveError(t *testing.T) {
	products := &stubProductRepo{}
	lines := &stubLineStore{removeErr: errors.New("boom")}
	r := newTestReconciler(products, lines)

	cart := &domain.Cart{
		ID:    "c1",
		Lines: []domain.CartLine{{ID: "l1", ProductID: "gone", Quantity: 1}},
	}
	if err := r.Reconcile(context.Background(), cart); err == nil {
		t.Fatalf("expected storage error to propagate")
	}
}
