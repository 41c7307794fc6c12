package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit guards an expensive endpoint with a process-wide token
// bucket. Rejected requests get the standard envelope shape.
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(r, burst)
	return func(c *gin.Context) {
		if !lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "Too many upload requests, slow down",
				},
			})
			return
		}
		c.Next()
	}
}
