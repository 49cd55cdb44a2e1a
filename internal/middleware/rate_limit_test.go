package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPRateLimiter_BurstThenDeny(t *testing.T) {
	//補充はほぼ無し。バースト分の2回だけ通る
	l := NewIPRateLimiter(rate.Every(time.Hour), 2)

	assert.True(t, l.allow("203.0.113.1"))
	assert.True(t, l.allow("203.0.113.1"))
	assert.False(t, l.allow("203.0.113.1"))

	//別IPは別バケット
	assert.True(t, l.allow("203.0.113.2"))
}

func TestIPRateLimiter_MiddlewareReturns429(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(time.Hour), 1)
	e := echo.New()

	h := l.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/payments/webhook", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		_ = h(c)
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusTooManyRequests, do().Code)
}

func TestIPRateLimiter_EvictIdle(t *testing.T) {
	l := NewIPRateLimiter(rate.Every(time.Hour), 1)
	l.allow("203.0.113.1")

	l.mu.Lock()
	l.visitors["203.0.113.1"].lastSeen = time.Now().Add(-11 * time.Minute)
	l.mu.Unlock()

	l.evictIdle(10 * time.Minute)

	l.mu.Lock()
	_, ok := l.visitors["203.0.113.1"]
	l.mu.Unlock()
	assert.False(t, ok)
}
