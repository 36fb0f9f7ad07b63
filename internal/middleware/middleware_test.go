package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"journey-chat/internal/redis"
	"journey-chat/internal/services"
	chat_errors "journey-chat/pkg/errors"
	"journey-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubParser struct{}

func (stubParser) ParseAccessToken(token string) (services.AccessClaims, error) {
	if token != "good" {
		return services.AccessClaims{}, chat_errors.ErrUnauthorized
	}
	return services.AccessClaims{UserID: "alice", Username: "Alice"}, nil
}

type stubLimiter struct {
	result *redis.RateLimitResult
	err    error
	calls  int
}

func (s *stubLimiter) AllowMessage(_ context.Context, _ string) (*redis.RateLimitResult, error) {
	s.calls++
	return s.result, s.err
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen any
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		seen = c.Request.Context().Value(logger.RequestIdKey)
		c.Status(http.StatusOK)
	})

	t.Run("propagates caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := serve(r, req)
		assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})

	t.Run("mints an id", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		assert.Len(t, id, 32)
		assert.NotContains(t, id, "-")
		assert.Equal(t, id, seen)
	})

	t.Run("replaces unusable ids", func(t *testing.T) {
		for _, bad := range []string{"has space", strings.Repeat("x", maxRequestIDLength+1)} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, bad)
			rec := serve(r, req)
			assert.Len(t, rec.Header().Get(RequestIDHeader), 32)
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(AuthMiddleware(stubParser{}))
	r.GET("/me", func(c *gin.Context) {
		id, _ := services.UserIDFromContext(c.Request.Context())
		c.String(http.StatusOK, id+"/"+services.UsernameFromContext(c.Request.Context()))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(r, req)
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "alice/Alice", rec.Body.String())
			} else {
				assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
			}
		})
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(logger.NewNop()))
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("%w: message 42", chat_errors.ErrNotFound))
	})
	r.GET("/storage", func(c *gin.Context) {
		_ = c.Error(fmt.Errorf("%w: connection refused", chat_errors.ErrStorage))
	})
	r.GET("/written", func(c *gin.Context) {
		c.String(http.StatusAccepted, "done")
		_ = c.Error(errors.New("after write"))
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", body.Code)
	assert.Contains(t, body.Error, "message 42")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/storage", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body = decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, body.Error, "connection refused")

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}

func TestMessageRateLimitMiddleware(t *testing.T) {
	newRouter := func(limiter MessageLimiter) *gin.Engine {
		r := gin.New()
		r.Use(AuthMiddleware(stubParser{}), MessageRateLimitMiddleware(limiter, logger.NewNop()))
		r.POST("/messages", func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}
	send := func(r *gin.Engine) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/messages", nil)
		req.Header.Set("Authorization", "Bearer good")
		return serve(r, req)
	}

	t.Run("allowed", func(t *testing.T) {
		limiter := &stubLimiter{result: &redis.RateLimitResult{Allowed: true, Remaining: 4, Limit: 5, ResetIn: 30 * time.Second}}
		rec := send(newRouter(limiter))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, "30", rec.Header().Get("X-RateLimit-Reset"))
	})

	t.Run("limited", func(t *testing.T) {
		limiter := &stubLimiter{result: &redis.RateLimitResult{Allowed: false, Limit: 5, ResetIn: 10 * time.Second}}
		rec := send(newRouter(limiter))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "RATE_LIMITED", decodeError(t, rec).Code)
	})

	t.Run("fails open", func(t *testing.T) {
		limiter := &stubLimiter{err: errors.New("redis down")}
		rec := send(newRouter(limiter))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1, limiter.calls)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(r, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), RequestIDHeader)
}
