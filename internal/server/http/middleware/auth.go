package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/marketclient/internal/server/http/dto"
)

// tokenQueryParam carries the bridge token for EventSource clients, which cannot set headers.
const tokenQueryParam = "access_token"

// BridgeAuth rejects requests that do not present token. An empty token disables the check.
func BridgeAuth(token string) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		if len(expected) == 0 {
			c.Next()
			return
		}

		presented := extractToken(c)
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "bridge token required", Kind: "unauthorized"})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return c.Query(tokenQueryParam)
}
