package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-checkout/internal/addresses"
	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/shipping"
)

func shippingMethodsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, ok := requestCart(c)
		if !ok {
			return
		}
		quotes, err := deps.Shipping.Quotes(c.Request.Context(), cart)
		if err != nil {
			// Misconfiguration must be loud: the operator has to either
			// remove the method or register its calculator.
			var notFound *shipping.CalculatorNotFoundError
			if errors.As(err, &notFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": notFound.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute shipping methods"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"shippingMethods": quotes})
	}
}

type addressesResponse struct {
	ShippingAddress *domain.Address `json:"shippingAddress"`
	BillingAddress  *domain.Address `json:"billingAddress"`
}

// getAddressesHandler prefills the checkout address form from the
// customer's saved addresses. After it runs the cart always exposes
// both address slots, possibly empty.
func getAddressesHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, ok := requestCart(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()

		source := addresses.Addressable(&domain.Customer{})
		if customer, err := deps.Customers.Resolve(ctx, currentAuth(c)); err == nil && customer != nil {
			source = customer
		}
		addresses.Prefill(source, cart)

		if cart.Persisted() {
			if err := deps.Carts.Save(ctx, cart); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save cart"})
				return
			}
		}
		c.JSON(http.StatusOK, addressesResponse{
			ShippingAddress: cart.ShippingAddress,
			BillingAddress:  cart.BillingAddress,
		})
	}
}

type putAddressesRequest struct {
	ShippingAddress *domain.Address `json:"shippingAddress"`
	BillingAddress  *domain.Address `json:"billingAddress"`
}

// putAddressesHandler stores the submitted checkout addresses on the
// cart and backfills the customer's missing saved addresses from it
// for the next checkout.
func putAddressesHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in putAddressesRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if in.ShippingAddress == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shippingAddress required"})
			return
		}

		cart, ok := requestCart(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()

		cart.ShippingAddress = in.ShippingAddress
		cart.BillingAddress = in.BillingAddress

		if !cart.Persisted() {
			created, err := deps.Carts.Create(ctx, cart)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create cart"})
				return
			}
			*cart = *created
		} else if err := deps.Carts.Save(ctx, cart); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save cart"})
			return
		}

		if customer, err := deps.Customers.Resolve(ctx, currentAuth(c)); err == nil && customer != nil {
			addresses.Prefill(cart, customer)
			if err := deps.CustomerRepo.Save(ctx, customer); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save customer"})
				return
			}
		}

		c.JSON(http.StatusOK, addressesResponse{
			ShippingAddress: cart.ShippingAddress,
			BillingAddress:  cart.BillingAddress,
		})
	}
}

// completeCheckoutHandler deactivates the cart. The middleware commit
// then removes the session token mapping, so the checked-out cart can
// never be reattached to a session.
func completeCheckoutHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, ok := requestCart(c)
		if !ok {
			return
		}
		if !cart.Persisted() || len(cart.Lines) == 0 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cart is empty"})
			return
		}
		if cart.ShippingAddress == nil || cart.ShippingAddress.Empty() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "shipping address required"})
			return
		}

		if err := deps.Carts.Deactivate(c.Request.Context(), cart.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not complete checkout"})
			return
		}
		cart.Active = false

		c.JSON(http.StatusOK, gin.H{"status": "completed", "cartId": cart.ID})
	}
}
