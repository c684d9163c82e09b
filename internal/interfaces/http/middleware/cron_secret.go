package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CronSecret guards scheduler-trigger endpoints with a shared secret passed
// as a query parameter. An empty configured secret disables the routes
// entirely rather than leaving them open.
func CronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			abortCronUnauthorized(c, "CRON_DISABLED", "Cron endpoints are not configured")
			return
		}
		provided := c.Query("secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			abortCronUnauthorized(c, "INVALID_CRON_SECRET", "Invalid or missing cron secret")
			return
		}
		c.Next()
	}
}

func abortCronUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
