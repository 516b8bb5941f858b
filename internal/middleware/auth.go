package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminKeyHeader carries the admin API key on mutating content routes.
const AdminKeyHeader = "X-Admin-API-Key"

// AdminAuthMiddleware validates the admin API key on protected routes.
func AdminAuthMiddleware(adminKey string) gin.HandlerFunc {
	if adminKey == "" {
		// Return a middleware that always returns 500 if misconfigured
		return func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "server misconfigured: admin API key not set",
			})
		}
	}
	keyBytes := []byte(adminKey)

	return func(c *gin.Context) {
		key := c.GetHeader(AdminKeyHeader)
		// Use subtle.ConstantTimeCompare to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(key), keyBytes) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
