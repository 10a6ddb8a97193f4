package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "pomodoro/pomod/internal/errors"
	"pomodoro/pomod/internal/service"
)

const ClientContextKey = "client"

// Auth requires a bearer token when the daemon has a shared secret and lets
// every request through otherwise.
func Auth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authService.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			writeError(c, apperrors.Unauthorized("missing authorization header"))
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			writeError(c, apperrors.Unauthorized("invalid authorization format"))
			return
		}

		subject, apiErr := authService.ParseToken(token)
		if apiErr != nil {
			writeError(c, apiErr)
			return
		}

		c.Set(ClientContextKey, subject)
		c.Next()
	}
}

func Client(c *gin.Context) string {
	value, ok := c.Get(ClientContextKey)
	if !ok {
		return ""
	}
	client, ok := value.(string)
	if !ok {
		return ""
	}
	return client
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"error": gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}
