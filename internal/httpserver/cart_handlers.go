package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-checkout/internal/domain"
)

type cartResponse struct {
	Cart      *domain.Cart `json:"cart"`
	ItemCount int          `json:"itemCount"`
}

func toCartResponse(cart *domain.Cart) cartResponse {
	return cartResponse{Cart: cart, ItemCount: cart.ItemCount()}
}

func getCartHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, ok := requestCart(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

type updateCartRequest struct {
	Actions []cartAction `json:"actions"`
}

type cartAction struct {
	Action     string `json:"action"`
	SKU        string `json:"sku,omitempty"`
	LineItemID string `json:"lineItemId,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
}

func updateCartHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in updateCartRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if len(in.Actions) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "actions required"})
			return
		}

		cart, ok := requestCart(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()

		// The first real interaction turns the in-memory cart into a
		// durable one; plain visits never reach this point.
		if !cart.Persisted() {
			created, err := deps.Carts.Create(ctx, cart)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create cart"})
				return
			}
			*cart = *created
		}

		for _, action := range in.Actions {
			if msg, status := applyCartAction(c, deps, cart, action); status != 0 {
				c.JSON(status, gin.H{"error": msg})
				return
			}
		}

		refreshed, err := deps.Carts.FindByToken(ctx, cart.Token)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reload cart"})
			return
		}
		*cart = *refreshed
		c.JSON(http.StatusOK, toCartResponse(cart))
	}
}

func applyCartAction(c *gin.Context, deps Deps, cart *domain.Cart, action cartAction) (string, int) {
	ctx := c.Request.Context()
	switch strings.ToLower(strings.TrimSpace(action.Action)) {
	case "addlineitem":
		sku := strings.TrimSpace(action.SKU)
		if sku == "" {
			return "sku required", http.StatusBadRequest
		}
		if action.Quantity <= 0 {
			return "quantity must be positive", http.StatusBadRequest
		}
		product, err := deps.Products.GetBySKU(ctx, sku)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "product not found", http.StatusBadRequest
			}
			return "could not look up product", http.StatusInternalServerError
		}
		if !product.Active {
			return "product not purchasable", http.StatusBadRequest
		}
		if err := deps.Carts.AddLineItem(ctx, cart.ID, *product, action.Quantity); err != nil {
			return "could not add line item", http.StatusInternalServerError
		}
	case "changelineitemquantity":
		lineID := strings.TrimSpace(action.LineItemID)
		if lineID == "" {
			return "lineItemId required", http.StatusBadRequest
		}
		if err := deps.Carts.ChangeLineItemQuantity(ctx, cart.ID, lineID, action.Quantity); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "line item not found", http.StatusBadRequest
			}
			return "could not change line item", http.StatusInternalServerError
		}
	default:
		return "unsupported action", http.StatusBadRequest
	}
	return "", 0
}

// requestCart fetches the request's current cart, writing the error
// response itself when resolution fails.
func requestCart(c *gin.Context) (*domain.Cart, bool) {
	cc := currentCartContext(c)
	if cc == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cart context missing"})
		return nil, false
	}
	cart, err := cc.Current(c.Request.Context(), c.Query("cart_key"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve cart"})
		return nil, false
	}
	return cart, true
}
