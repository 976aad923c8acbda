package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenHeader carries the shared import secret.
const TokenHeader = "X-Import-Token"

// RequireToken rejects requests that do not present token in TokenHeader or the token query
// parameter. An empty token disables the check.
func RequireToken(token string) gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(token))
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}

		presented := c.GetHeader(TokenHeader)
		if presented == "" {
			presented = c.Query("token")
		}
		if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: invalid token"})
			return
		}
		c.Next()
	}
}
