package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

func limitKeyFor(t *testing.T, secret string, header, query string) string {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}
	return userLimitKey(secret)(c)
}

func TestUserLimitKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "limit-key-secret"

	user := &model.User{}
	user.ID = 7
	token, err := util.GenerateJWT(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if got := limitKeyFor(t, secret, "Bearer "+token, ""); got != "u:7" {
		t.Errorf("bearer token key = %q, want %q", got, "u:7")
	}
	if got := limitKeyFor(t, secret, "", "token="+token); got != "u:7" {
		t.Errorf("query token key = %q, want %q", got, "u:7")
	}

	// 匿名请求与坏token都回退到空键（限流器改用IP）
	if got := limitKeyFor(t, secret, "", ""); got != "" {
		t.Errorf("anonymous key = %q, want empty", got)
	}
	if got := limitKeyFor(t, secret, "Bearer not-a-token", ""); got != "" {
		t.Errorf("garbage token key = %q, want empty", got)
	}
	if got := limitKeyFor(t, "other-secret", "Bearer "+token, ""); got != "" {
		t.Errorf("wrong-secret key = %q, want empty", got)
	}
}
