package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ReportRateLimiter caps report submissions per user to limit per 24 hours.
// It must run after AuthMiddleware.
func ReportRateLimiter(client redis.Cmdable, queuePrefix string, limit int, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentSession(c).UserID()
		if userID == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		ctx := c.Request.Context()

		// Create individual key for each user
		userKey := fmt.Sprintf("%s:%s", queuePrefix, userID)

		count, err := client.Incr(ctx, userKey).Result()
		if err != nil {
			log.Error("rate limiter increment failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			if err := client.Expire(ctx, userKey, 24*time.Hour).Err(); err != nil {
				log.Error("rate limiter expire failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := client.TTL(ctx, userKey).Result()
			c.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
