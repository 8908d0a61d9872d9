package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const apiKeyHeader = "X-API-Key"

// APIKeyAuth rejects any request whose X-API-Key header does not exactly
// match the server secret. It runs before any other work and must not log
// or echo the secret.
func APIKeyAuth(serverAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplied := c.GetHeader(apiKeyHeader)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(serverAPIKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"detail": "Could not validate API credentials.",
			})
			return
		}
		c.Next()
	}
}
