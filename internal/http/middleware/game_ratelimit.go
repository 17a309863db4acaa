package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// TapRateLimit limits taps per user (not per IP). Uses the user id set by
// JWT, so it must run after it. Counters live in Redis when configured and
// in process otherwise.
func TapRateLimit(maxTaps int, window time.Duration) gin.HandlerFunc {
	local := newKeyedLimiter(maxTaps, window)
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if redisClient == nil {
			if !local.allow(userID, time.Now()) {
				RLBlocked.WithLabelValues("tap").Inc()
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":       "tap rate limit exceeded",
					"retry_after": int(window.Seconds()),
				})
				return
			}
			RLRequests.WithLabelValues("tap").Inc()
			c.Next()
			return
		}

		key := "tap_rl:" + userID + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		val, err := windowCount(c.Request.Context(), key, window)
		if err != nil {
			c.Header("X-TapRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		c.Header("X-TapRateLimit-Limit", strconv.Itoa(maxTaps))
		c.Header("X-TapRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxTaps)-val), 10))

		if val > int64(maxTaps) {
			RLBlocked.WithLabelValues("tap").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "tap rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("tap").Inc()
		c.Next()
	}
}
