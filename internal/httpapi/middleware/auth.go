package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/prepforge/interview-platform/internal/auth"
	"github.com/prepforge/interview-platform/internal/common"
)

const UserIDKey = "auth_user_id"

func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
			c.Abort()
			return
		}

		uid, err := auth.ParseJWT(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			common.Fail(c, http.StatusUnauthorized, 40102, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, uid)
		c.Next()
	}
}

func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
