package httpserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-checkout/internal/domain"
	"storefront-checkout/internal/service/cartsession"
	customersvc "storefront-checkout/internal/service/customer"
)

// requestIDMiddleware tags every response with an X-Request-Id,
// honoring one supplied by an upstream proxy.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

const (
	userCtxKey = "httpserver.user"
	cartCtxKey = "httpserver.cartContext"
)

// authContext adapts the optional signed-in user to the customer
// resolver's AuthContext.
type authContext struct {
	user *domain.User
}

func (a authContext) SignedIn() bool {
	return a.user != nil
}

func (a authContext) Principal() customersvc.Principal {
	if a.user == nil {
		return nil
	}
	return a.user
}

// authMiddleware resolves an optional bearer token to a user. Invalid
// tokens simply leave the request anonymous; protected handlers decide
// whether that is acceptable.
func authMiddleware(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			if user, err := auth.LookupByToken(c.Request.Context(), token); err == nil {
				c.Set(userCtxKey, user)
			}
		}
		c.Next()
	}
}

func currentAuth(c *gin.Context) authContext {
	if v, ok := c.Get(userCtxKey); ok {
		if u, ok := v.(*domain.User); ok {
			return authContext{user: u}
		}
	}
	return authContext{}
}

// cartContext memoizes the carts touched by one request and commits
// their token mappings when the request ends. It never outlives the
// request.
type cartContext struct {
	sessions  CartSessionService
	sess      cartsession.TokenStore
	auth      authContext
	namespace string
	locale    string
	carts     map[string]*domain.Cart
}

// Current resolves and prepares the cart for an identifier once per
// request; later calls return the same instance.
func (cc *cartContext) Current(ctx context.Context, identifier string) (*domain.Cart, error) {
	if identifier == "" {
		identifier = cartsession.DefaultIdentifier
	}
	key := cartsession.CartKey(identifier, cc.namespace)
	if cart, ok := cc.carts[key]; ok {
		return cart, nil
	}
	cart, err := cc.sessions.ResolveCart(ctx, cc.sess, identifier, cc.namespace)
	if err != nil {
		return nil, err
	}
	if err := cc.sessions.PrepareCart(ctx, cart, cc.auth, cc.locale); err != nil {
		return nil, err
	}
	cc.carts[key] = cart
	return cart, nil
}

func (cc *cartContext) commit() {
	for _, cart := range cc.carts {
		cc.sessions.CommitCartToken(cc.sess, cart, cc.namespace)
	}
}

// cartMiddleware scopes a cartContext to the request and stores the
// token mappings of every touched cart after the handler ran.
func cartMiddleware(sessions CartSessionService, codec *cookieCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		cc := &cartContext{
			sessions:  sessions,
			sess:      newCookieTokenStore(c, codec),
			auth:      currentAuth(c),
			namespace: c.Query("namespace"),
			locale:    c.Query("locale"),
			carts:     make(map[string]*domain.Cart),
		}
		c.Set(cartCtxKey, cc)
		c.Next()
		cc.commit()
	}
}

func currentCartContext(c *gin.Context) *cartContext {
	v, ok := c.Get(cartCtxKey)
	if !ok {
		return nil
	}
	cc, _ := v.(*cartContext)
	return cc
}
