package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenAuth returns a middleware that validates the bearer token in the
// Authorization header. A missing or invalid token aborts the request with
// 401 before any handler runs
func TokenAuth(validToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token != validToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Next()
	}
}
