package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newLimitedEcho(rl *RateLimiter) *echo.Echo {
	e := echo.New()
	e.Use(rl.Middleware())
	e.GET("/api/download", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func doRequest(e *echo.Echo, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/download", nil)
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsWithinBudget(t *testing.T) {
	e := newLimitedEcho(NewRateLimiter(600, 10))

	for i := 0; i < 10; i++ {
		rec := doRequest(e, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_RejectsOverBudget(t *testing.T) {
	// 60 req/min with burst 1: the second immediate request is rejected.
	e := newLimitedEcho(NewRateLimiter(60, 1))

	assert.Equal(t, http.StatusOK, doRequest(e, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(e, "").Code)
}

func TestRateLimiter_RetryAfterHeader(t *testing.T) {
	// 30 req/min means one request's budget refills in 2 seconds.
	e := newLimitedEcho(NewRateLimiter(30, 1))

	doRequest(e, "")
	rec := doRequest(e, "")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_BudgetsArePerIP(t *testing.T) {
	e := newLimitedEcho(NewRateLimiter(60, 1))

	assert.Equal(t, http.StatusOK, doRequest(e, "1.2.3.4:1234").Code)
	assert.Equal(t, http.StatusOK, doRequest(e, "5.6.7.8:5678").Code, "a fresh IP has its own bucket")
	assert.Equal(t, http.StatusTooManyRequests, doRequest(e, "1.2.3.4:1234").Code)
}
