package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"workerscope/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware simple bearer token authentication middleware.
// An empty apiKey disables authentication.
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}

		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")

		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
			logger.WarnCtx(c.Request.Context(), "unauthorized request, invalid API key")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Next()
	}
}
