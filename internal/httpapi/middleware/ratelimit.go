package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/interview-platform/internal/common"
	"github.com/prepforge/interview-platform/internal/store/redisstore"
)

// RateLimit caps LLM-backed calls per user per minute. Redis errors fail
// open so a cache outage does not take the API down with it.
func RateLimit(store *redisstore.Store, name string, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || perMinute <= 0 {
			c.Next()
			return
		}
		uid, ok := UserID(c)
		if !ok {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%d", name, uid)
		allowed, err := store.Allow(c.Request.Context(), key, perMinute, time.Minute)
		if err != nil {
			log.Printf("ratelimit: redis error, failing open: %v", err)
			c.Next()
			return
		}
		if !allowed {
			common.Fail(c, http.StatusTooManyRequests, 42900, "too many requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
