package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterKeysBucketsIndependently(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimiter(2, time.Minute, func(c *gin.Context) string {
		return c.GetHeader("X-Limit-Key")
	}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(key string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if key != "" {
			req.Header.Set("X-Limit-Key", key)
		}
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := do("u:1"); code != http.StatusOK {
			t.Fatalf("request %d for u:1 = %d, want %d", i+1, code, http.StatusOK)
		}
	}
	if code := do("u:1"); code != http.StatusTooManyRequests {
		t.Fatalf("exhausted bucket u:1 = %d, want %d", code, http.StatusTooManyRequests)
	}

	// 其它键有独立的配额
	if code := do("u:2"); code != http.StatusOK {
		t.Fatalf("fresh bucket u:2 = %d, want %d", code, http.StatusOK)
	}

	// 键为空时回退到按IP限流，与 u:1 的桶互不影响
	if code := do(""); code != http.StatusOK {
		t.Fatalf("ip-keyed request = %d, want %d", code, http.StatusOK)
	}
}

func TestRateLimiterNilKeyFuncFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RateLimiter(1, time.Minute, nil))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("first request = %d, want %d", w.Code, http.StatusOK)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request from same IP = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
}
