package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminKeyHeader = "X-Admin-API-Key"

// RequireAdminAPIKey accepts the key in X-Admin-API-Key or as a Bearer
// token. An empty configured key locks the admin surface entirely.
func RequireAdminAPIKey(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin api disabled", "code": "forbidden"})
			return
		}

		provided := c.GetHeader(adminKeyHeader)
		if provided == "" {
			if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
				provided = strings.TrimSpace(token)
			}
		}

		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			slog.WarnContext(c.Request.Context(), "admin request rejected", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "code": "unauthorized"})
			return
		}

		c.Next()
	}
}
