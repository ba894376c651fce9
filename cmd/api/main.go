package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-checkout/internal/config"
	"storefront-checkout/internal/db"
	"storefront-checkout/internal/httpserver"
	cartrepo "storefront-checkout/internal/repository/cart"
	customerrepo "storefront-checkout/internal/repository/customer"
	productrepo "storefront-checkout/internal/repository/product"
	shippingmethodrepo "storefront-checkout/internal/repository/shippingmethod"
	tokenrepo "storefront-checkout/internal/repository/token"
	userrepo "storefront-checkout/internal/repository/user"
	authsvc "storefront-checkout/internal/service/auth"
	"storefront-checkout/internal/service/cartsession"
	customersvc "storefront-checkout/internal/service/customer"
	"storefront-checkout/internal/service/staleness"
	"storefront-checkout/internal/shipping"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool)
	methodRepo := shippingmethodrepo.NewPostgres(dbpool)
	userRepo := userrepo.NewPostgres(dbpool)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	resolver := customersvc.NewResolver(customerRepo)
	reconciler := staleness.NewProductList(productRepo, cartRepo, logger)
	cartSessions := cartsession.New(cartRepo, resolver, customerRepo, reconciler,
		cfg.AvailableLocales, cfg.DefaultCurrency, logger)

	registry := shipping.NewRegistry()
	registry.Register("flat-rate", shipping.FlatRate)
	registry.Register("free-shipping", shipping.FreeOver)
	registry.Register("express", shipping.Rule)
	shippingFilter := shipping.NewFilter(methodRepo, registry)

	authService := authsvc.New(userRepo, tokenRepo)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSessions: cartSessions,
		Carts:        cartRepo,
		Products:     productRepo,
		Customers:    resolver,
		CustomerRepo: customerRepo,
		Shipping:     shippingFilter,
		Auth:         authService,
	}, cfg.SessionSecret)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
