// internal/middleware/middleware_test.go
package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/story-mcp/internal/i18n"
	"github.com/javajoker/story-mcp/internal/models"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/services/servicestest"
	"github.com/javajoker/story-mcp/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := i18n.Initialize("", "en"); err != nil {
		panic(err)
	}
	utils.SetJWTSecret("middleware-test-secret")
}

func TestToolRecordsInvocation(t *testing.T) {
	recorder := &servicestest.Recorder{}
	r := gin.New()
	r.Use(RequestID(), OptionalAuth())

	var body []byte
	var traced bool
	r.POST("/things/:id", Tool("make_thing", recorder), func(c *gin.Context) {
		body, _ = io.ReadAll(c.Request.Body)
		traced = services.TraceFromContext(c.Request.Context()) != nil
		c.Status(http.StatusCreated)
	})

	token, err := utils.GenerateJWT("ci-bot", 0, 1)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodPost, "/things/7?dry=true", bytes.NewBufferString(`{"name":"x","count":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"x","count":2}`, string(body))
	assert.True(t, traced)

	inv := recorder.Last()
	require.NotNil(t, inv)
	assert.Equal(t, "make_thing", inv.Tool)
	assert.Equal(t, models.TransportHTTP, inv.Transport)
	assert.Equal(t, models.InvocationStatusSuccess, inv.Status)
	assert.Equal(t, "ci-bot", inv.Operator)
	assert.Equal(t, "req-1", inv.RequestID)
	assert.Equal(t, "x", inv.Arguments["name"])
	assert.Equal(t, float64(2), inv.Arguments["count"])
	assert.Equal(t, "true", inv.Arguments["dry"])
	assert.Equal(t, "7", inv.Arguments["id"])
}

func TestToolRecordsHandlerError(t *testing.T) {
	recorder := &servicestest.Recorder{}
	r := gin.New()
	r.GET("/fail", Tool("failing", recorder), func(c *gin.Context) {
		_ = c.Error(errors.New("rpc down"))
		c.Status(http.StatusBadGateway)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	inv := recorder.Last()
	require.NotNil(t, inv)
	assert.Equal(t, models.InvocationStatusError, inv.Status)
	assert.Equal(t, "rpc down", inv.Error)
}

func TestRequestIDGenerated(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = utils.GetRequestIDFromContext(c)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
}

func TestAuthRequired(t *testing.T) {
	r := gin.New()
	r.GET("/secure", AuthRequired(), func(c *gin.Context) {
		operator, _ := utils.GetOperatorFromContext(c)
		c.String(http.StatusOK, operator)
	})

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
		})
	}

	token, err := utils.GenerateJWT("ops", 1, 1)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ops", w.Body.String())
}

func TestAuthRequiredIfDisabledPassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/open", AuthRequiredIf(false), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/open", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(0.001), 2)
	defer limiter.Stop()

	r := gin.New()
	r.GET("/", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestI18nMiddlewarePicksLanguage(t *testing.T) {
	r := gin.New()
	r.Use(I18nMiddleware("en"))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, utils.GetLangFromContext(c))
	})

	tests := []struct {
		query, header, want string
	}{
		{"", "", "en"},
		{"", "zh-TW,zh;q=0.9", "zh_TW"},
		{"lang=zh_TW", "en-US", "zh_TW"},
		{"lang=fr", "", "en"},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		if tt.header != "" {
			req.Header.Set("Accept-Language", tt.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.want, w.Body.String(), "query=%q header=%q", tt.query, tt.header)
	}
}
