package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-checkout/internal/domain"
	authsvc "storefront-checkout/internal/service/auth"
)

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func registerHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in credentialsRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
			return
		}
		user, err := deps.Auth.Register(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

func loginHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in credentialsRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
			return
		}
		user, access, refresh, err := deps.Auth.Login(c.Request.Context(), in.Email, in.Password)
		if err != nil {
			if errors.Is(err, authsvc.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user":         user,
			"accessToken":  access,
			"refreshToken": refresh,
			"expiresIn":    deps.Auth.AccessTTLSeconds(),
		})
	}
}

func meHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := currentAuth(c)
		if !auth.SignedIn() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		customer, err := deps.Customers.Resolve(c.Request.Context(), auth)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve customer"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": auth.user, "customer": customer})
	}
}
