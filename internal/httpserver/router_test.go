package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/service/cartsession"
	customersvc "storefront-checkout/internal/service/customer"
	"storefront-checkout/internal/shipping"
)

type stubSessions struct {
	cart       *domain.Cart
	resolveErr error
	prepareErr error
	prepared   []*domain.Cart
	committed  []*domain.Cart
}

func (s *stubSessions) ResolveCart(_ context.Context, _ cartsession.TokenStore, identifier, _ string) (*domain.Cart, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	if s.cart != nil {
		return s.cart, nil
	}
	return domain.NewCart(identifier, "EUR"), nil
}

func (s *stubSessions) PrepareCart(_ context.Context, cart *domain.Cart, _ customersvc.AuthContext, _ string) error {
	if s.prepareErr != nil {
		return s.prepareErr
	}
	s.prepared = append(s.prepared, cart)
	return nil
}

func (s *stubSessions) CommitCartToken(sess cartsession.TokenStore, cart *domain.Cart, namespace string) {
	key := cartsession.CartKey(cart.Identifier, namespace)
	if cart.Persisted() && cart.Active {
		sess.Set(key, cart.Token)
	} else {
		sess.Delete(key)
	}
	s.committed = append(s.committed, cart)
}

type stubCarts struct {
	created     *domain.Cart
	saved       []*domain.Cart
	deactivated []string
	addedSKUs   []string
	changed     []string
	findErr     error
}

func (s *stubCarts) Create(_ context.Context, cart *domain.Cart) (*domain.Cart, error) {
	dup := *cart
	dup.ID = "cart-1"
	s.created = &dup
	return &dup, nil
}

func (s *stubCarts) FindByToken(_ context.Context, token string) (*domain.Cart, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.created != nil && s.created.Token == token {
		return s.created, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubCarts) Save(_ context.Context, cart *domain.Cart) error {
	s.saved = append(s.saved, cart)
	return nil
}

func (s *stubCarts) Deactivate(_ context.Context, cartID string) error {
	s.deactivated = append(s.deactivated, cartID)
	return nil
}

func (s *stubCarts) AddLineItem(_ context.Context, _ string, product domain.Product, _ int) error {
	s.addedSKUs = append(s.addedSKUs, product.SKU)
	return nil
}

func (s *stubCarts) ChangeLineItemQuantity(_ context.Context, _ string, lineItemID string, _ int) error {
	s.changed = append(s.changed, lineItemID)
	return nil
}

type stubProducts struct {
	bySKU map[string]*domain.Product
}

func (s *stubProducts) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	if p, ok := s.bySKU[sku]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

type stubCustomers struct {
	customer *domain.Customer
	err      error
}

func (s *stubCustomers) Resolve(context.Context, customersvc.AuthContext) (*domain.Customer, error) {
	return s.customer, s.err
}

type stubCustomerSaver struct {
	saved []*domain.Customer
}

func (s *stubCustomerSaver) Save(_ context.Context, c *domain.Customer) error {
	s.saved = append(s.saved, c)
	return nil
}

type stubShipping struct {
	quotes []shipping.Quote
	err    error
}

func (s *stubShipping) Quotes(context.Context, *domain.Cart) ([]shipping.Quote, error) {
	return s.quotes, s.err
}

type stubAuth struct {
	registerUser *domain.User
	registerErr  error
	loginUser    *domain.User
	loginErr     error
	byToken      map[string]*domain.User
}

func (s *stubAuth) Register(context.Context, string, string) (*domain.User, error) {
	return s.registerUser, s.registerErr
}

func (s *stubAuth) Login(context.Context, string, string) (*domain.User, string, string, error) {
	if s.loginErr != nil {
		return nil, "", "", s.loginErr
	}
	return s.loginUser, "access-1", "refresh-1", nil
}

func (s *stubAuth) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	if u, ok := s.byToken[token]; ok {
		return u, nil
	}
	return nil, errors.New("invalid token")
}

func (s *stubAuth) AccessTTLSeconds() int { return 3600 }

type testEnv struct {
	sessions *stubSessions
	carts    *stubCarts
	router   *gin.Engine
}

func newTestEnv(t *testing.T, deps Deps) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{sessions: &stubSessions{}, carts: &stubCarts{}}
	if deps.CartSessions == nil {
		deps.CartSessions = env.sessions
	} else if s, ok := deps.CartSessions.(*stubSessions); ok {
		env.sessions = s
	}
	if deps.Carts == nil {
		deps.Carts = env.carts
	} else if c, ok := deps.Carts.(*stubCarts); ok {
		env.carts = c
	}
	if deps.Products == nil {
		deps.Products = &stubProducts{}
	}
	if deps.Customers == nil {
		deps.Customers = &stubCustomers{}
	}
	if deps.CustomerRepo == nil {
		deps.CustomerRepo = &stubCustomerSaver{}
	}
	if deps.Shipping == nil {
		deps.Shipping = &stubShipping{}
	}
	if deps.Auth == nil {
		deps.Auth = &stubAuth{}
	}

	logger := log.New(io.Discard, "", 0)
	router, err := buildRouter(logger, nil, deps, "test-secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	env.router = router
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func persistedCart() *domain.Cart {
	cart := domain.NewCart("default", "EUR")
	cart.ID = "cart-1"
	cart.Lines = []domain.CartLine{{ID: "line-1", SKU: "mug", Quantity: 2, UnitPriceCents: 500, TotalCents: 1000}}
	cart.TotalCents = 1000
	return cart
}

func TestBuildRouterRejectsMissingDeps(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	if _, err := buildRouter(logger, nil, Deps{}, "test-secret"); err == nil {
		t.Error("expected error for empty deps")
	}
}

func TestBuildRouterRejectsEmptySecret(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	deps := Deps{
		CartSessions: &stubSessions{}, Carts: &stubCarts{}, Products: &stubProducts{},
		Customers: &stubCustomers{}, CustomerRepo: &stubCustomerSaver{},
		Shipping: &stubShipping{}, Auth: &stubAuth{},
	}
	if _, err := buildRouter(logger, nil, deps, ""); err == nil {
		t.Error("expected error for empty session secret")
	}
}

func TestGetCartStoresTokenForPersistedCart(t *testing.T) {
	cart := persistedCart()
	env := newTestEnv(t, Deps{CartSessions: &stubSessions{cart: cart}})

	w := env.do(http.MethodGet, "/cart", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ItemCount int `json:"itemCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ItemCount != 2 {
		t.Errorf("expected itemCount 2, got %d", resp.ItemCount)
	}

	cookies := w.Result().Cookies()
	found := false
	for _, cookie := range cookies {
		if cookie.Name == "storefront.cart.default" && cookie.MaxAge > 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected a storefront.cart.default cookie to be written")
	}
}

func TestGetCartNamespaceScopesTheCookie(t *testing.T) {
	cart := persistedCart()
	cart.Identifier = "default"
	env := newTestEnv(t, Deps{CartSessions: &stubSessions{cart: cart}})

	w := env.do(http.MethodGet, "/cart?namespace=wishlist", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	found := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "storefront.cart.wishlist.default" {
			found = true
		}
	}
	if !found {
		t.Error("expected the namespaced cookie key to be used")
	}
}

func TestGetCartResolveErrorReturns500(t *testing.T) {
	env := newTestEnv(t, Deps{CartSessions: &stubSessions{resolveErr: errors.New("boom")}})

	w := env.do(http.MethodGet, "/cart", "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestUpdateCartCreatesCartOnFirstAction(t *testing.T) {
	carts := &stubCarts{}
	products := &stubProducts{bySKU: map[string]*domain.Product{
		"mug": {ID: "p-1", SKU: "mug", Active: true, PriceCents: 500},
	}}
	env := newTestEnv(t, Deps{Carts: carts, Products: products})

	body := `{"actions":[{"action":"addLineItem","sku":"mug","quantity":2}]}`
	w := env.do(http.MethodPost, "/cart", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if carts.created == nil {
		t.Fatal("expected the cart to be persisted on first action")
	}
	if len(carts.addedSKUs) != 1 || carts.addedSKUs[0] != "mug" {
		t.Errorf("expected mug to be added, got %v", carts.addedSKUs)
	}
}

func TestUpdateCartRejectsInactiveProduct(t *testing.T) {
	products := &stubProducts{bySKU: map[string]*domain.Product{
		"retired": {ID: "p-2", SKU: "retired", Active: false},
	}}
	env := newTestEnv(t, Deps{Products: products})

	body := `{"actions":[{"action":"addLineItem","sku":"retired","quantity":1}]}`
	w := env.do(http.MethodPost, "/cart", body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestUpdateCartRejectsUnknownAction(t *testing.T) {
	env := newTestEnv(t, Deps{})

	w := env.do(http.MethodPost, "/cart", `{"actions":[{"action":"explode"}]}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestUpdateCartRequiresActions(t *testing.T) {
	env := newTestEnv(t, Deps{})

	w := env.do(http.MethodPost, "/cart", `{"actions":[]}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestShippingMethodsReturnsQuotes(t *testing.T) {
	quoter := &stubShipping{quotes: []shipping.Quote{
		{Method: domain.ShippingMethod{Identifier: "flat-rate", Name: "Standard"}, CostCents: 499},
	}}
	env := newTestEnv(t, Deps{CartSessions: &stubSessions{cart: persistedCart()}, Shipping: quoter})

	w := env.do(http.MethodGet, "/checkout/shipping-methods", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "flat-rate") {
		t.Errorf("expected the quote in the response, got %s", w.Body.String())
	}
}

func TestShippingMethodsSurfacesMissingCalculator(t *testing.T) {
	quoter := &stubShipping{err: &shipping.CalculatorNotFoundError{
		Method: domain.ShippingMethod{ID: "42", Identifier: "drone", Name: "Drone Delivery"},
	}}
	env := newTestEnv(t, Deps{Shipping: quoter})

	w := env.do(http.MethodGet, "/checkout/shipping-methods", "")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Drone Delivery", "drone", "register a calculator"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected error body to contain %q, got %s", want, body)
		}
	}
}

func TestGetAddressesPrefillsFromCustomer(t *testing.T) {
	customer := &domain.Customer{
		ID:              "cust-1",
		ShippingAddress: &domain.Address{ID: "addr-1", FirstName: "Ada", City: "Paris"},
	}
	env := newTestEnv(t, Deps{
		CartSessions: &stubSessions{cart: persistedCart()},
		Customers:    &stubCustomers{customer: customer},
	})

	w := env.do(http.MethodGet, "/checkout/addresses", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp addressesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ShippingAddress == nil || resp.ShippingAddress.City != "Paris" {
		t.Errorf("expected shipping address copied from customer, got %+v", resp.ShippingAddress)
	}
	if resp.ShippingAddress.ID != "" {
		t.Error("expected the copy to drop the customer address id")
	}
	if resp.BillingAddress == nil {
		t.Error("expected an empty billing placeholder")
	}
}

func TestPutAddressesRequiresShippingAddress(t *testing.T) {
	env := newTestEnv(t, Deps{})

	w := env.do(http.MethodPut, "/checkout/addresses", `{"billingAddress":{"city":"Lyon"}}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPutAddressesBackfillsCustomer(t *testing.T) {
	customer := &domain.Customer{ID: "cust-1"}
	saver := &stubCustomerSaver{}
	carts := &stubCarts{}
	env := newTestEnv(t, Deps{
		CartSessions: &stubSessions{cart: persistedCart()},
		Carts:        carts,
		Customers:    &stubCustomers{customer: customer},
		CustomerRepo: saver,
	})

	body := `{"shippingAddress":{"firstName":"Ada","city":"Paris"}}`
	w := env.do(http.MethodPut, "/checkout/addresses", body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(carts.saved) == 0 {
		t.Error("expected the cart to be saved")
	}
	if len(saver.saved) != 1 {
		t.Fatalf("expected the customer to be saved once, got %d", len(saver.saved))
	}
	if customer.ShippingAddress == nil || customer.ShippingAddress.City != "Paris" {
		t.Errorf("expected the customer shipping address backfilled, got %+v", customer.ShippingAddress)
	}
}

func TestCompleteCheckoutRejectsEmptyCart(t *testing.T) {
	env := newTestEnv(t, Deps{})

	w := env.do(http.MethodPost, "/checkout/complete", "")

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestCompleteCheckoutRequiresShippingAddress(t *testing.T) {
	env := newTestEnv(t, Deps{CartSessions: &stubSessions{cart: persistedCart()}})

	w := env.do(http.MethodPost, "/checkout/complete", "")

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}
}

func TestCompleteCheckoutDeactivatesAndForgetsCart(t *testing.T) {
	cart := persistedCart()
	cart.ShippingAddress = &domain.Address{FirstName: "Ada", City: "Paris"}
	carts := &stubCarts{}
	env := newTestEnv(t, Deps{CartSessions: &stubSessions{cart: cart}, Carts: carts})

	w := env.do(http.MethodPost, "/checkout/complete", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(carts.deactivated) != 1 || carts.deactivated[0] != "cart-1" {
		t.Errorf("expected cart-1 deactivated, got %v", carts.deactivated)
	}

	forgotten := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "storefront.cart.default" && cookie.MaxAge < 0 {
			forgotten = true
		}
	}
	if !forgotten {
		t.Error("expected the cart token cookie to be removed")
	}
}

func TestRegisterHandlerConflict(t *testing.T) {
	env := newTestEnv(t, Deps{Auth: &stubAuth{registerErr: domain.ErrAlreadyExists}})

	w := env.do(http.MethodPost, "/auth/register", `{"email":"a@b.co","password":"secret123"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestLoginHandlerReturnsTokens(t *testing.T) {
	auth := &stubAuth{loginUser: &domain.User{ID: "u-1", Email: "a@b.co"}}
	env := newTestEnv(t, Deps{Auth: auth})

	w := env.do(http.MethodPost, "/auth/login", `{"email":"a@b.co","password":"secret123"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	for _, want := range []string{"access-1", "refresh-1", "3600"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("expected body to contain %q, got %s", want, w.Body.String())
		}
	}
}

func TestMeRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t, Deps{})

	w := env.do(http.MethodGet, "/me", "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestMeResolvesCustomerForBearerToken(t *testing.T) {
	auth := &stubAuth{byToken: map[string]*domain.User{
		"tok-1": {ID: "u-1", Email: "a@b.co"},
	}}
	env := newTestEnv(t, Deps{
		Auth:      auth,
		Customers: &stubCustomers{customer: &domain.Customer{ID: "cust-1", Email: "a@b.co"}},
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "cust-1") {
		t.Errorf("expected the customer in the response, got %s", w.Body.String())
	}
}
