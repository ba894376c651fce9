package httpserver

import (
	"errors"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the storefront API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, sessionSecret string) (*gin.Engine, error) {
	if deps.CartSessions == nil || deps.Carts == nil || deps.Products == nil ||
		deps.Customers == nil || deps.CustomerRepo == nil || deps.Shipping == nil || deps.Auth == nil {
		return nil, errors.New("httpserver: missing dependencies")
	}
	if sessionSecret == "" {
		return nil, errors.New("httpserver: session secret required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestIDMiddleware(), gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/auth/register", registerHandler(deps))
	router.POST("/auth/login", loginHandler(deps))

	codec := newCookieCodec(sessionSecret)

	authed := router.Group("/", authMiddleware(deps.Auth))
	authed.GET("/me", meHandler(deps))

	shop := authed.Group("/", cartMiddleware(deps.CartSessions, codec))
	shop.GET("/cart", getCartHandler())
	shop.POST("/cart", updateCartHandler(deps))
	shop.GET("/checkout/shipping-methods", shippingMethodsHandler(deps))
	shop.GET("/checkout/addresses", getAddressesHandler(deps))
	shop.PUT("/checkout/addresses", putAddressesHandler(deps))
	shop.POST("/checkout/complete", completeCheckoutHandler(deps))

	return router, nil
}
