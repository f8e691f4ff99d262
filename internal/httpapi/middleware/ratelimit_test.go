package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func rateLimitedRouter(limit int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/limited",
		func(c *gin.Context) { c.Set(UserIDKey, uint64(1)) },
		RateLimit(nil, "test", limit),
		func(c *gin.Context) { c.String(http.StatusOK, "ok") },
	)
	return r
}

func TestRateLimit_NilStorePassesThrough(t *testing.T) {
	r := rateLimitedRouter(5)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 without a store", w.Code)
	}
}

func TestRateLimit_ZeroLimitDisables(t *testing.T) {
	r := rateLimitedRouter(0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with limiting disabled", w.Code)
	}
}

func TestRateLimit_NoUserPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/limited",
		RateLimit(nil, "test", 5),
		func(c *gin.Context) { c.String(http.StatusOK, "ok") },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for unauthenticated passthrough", w.Code)
	}
}
