// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/crewhub/chatbot-service/internal/domain/errors"
	"github.com/crewhub/chatbot-service/internal/domain/models"
	"github.com/crewhub/chatbot-service/internal/services/directory"
)

const businessContextKey = "business"

// AuthMiddleware authenticates widget requests with a per-business API key.
type AuthMiddleware struct {
	directory directory.Service
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(dir directory.Service) *AuthMiddleware {
	return &AuthMiddleware{
		directory: dir,
	}
}

// Authenticate returns a gin middleware that validates the X-API-Key
// header and stores the resolved business in the context. When the route
// carries a businessId path param, the key must belong to that business.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "missing X-API-Key header",
			})
			return
		}

		business, err := m.directory.GetBusinessByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			// A directory outage is not the caller's fault; don't report
			// the key as invalid when the lookup itself failed.
			message := "authentication failed"
			if domainerrors.IsUnauthorized(err) {
				message = "invalid API key"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": message,
			})
			return
		}

		if businessID := c.Param("businessId"); businessID != "" && businessID != business.ID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "UNAUTHORIZED",
				"message": "API key does not match business",
			})
			return
		}

		c.Set(businessContextKey, business)

		c.Next()
	}
}

// GetBusiness retrieves the authenticated business from the gin context.
func GetBusiness(c *gin.Context) *models.Business {
	if business, exists := c.Get(businessContextKey); exists {
		return business.(*models.Business)
	}
	return nil
}
