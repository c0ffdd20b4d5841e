package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewIPRateLimiter(rate.Limit(1), 2).Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another address has its own bucket
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPRateLimiter_Prune(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)
	l.GetLimiter("10.0.0.1")
	assert.Zero(t, l.Prune(time.Hour))
	assert.Equal(t, 1, l.Prune(-time.Second))
}

func TestResponseCache(t *testing.T) {
	calls := 0
	rc := NewResponseCache(time.Minute)
	r := gin.New()
	r.GET("/stats", rc.Middleware(), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.POST("/loans", rc.FlushOnWrite(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.POST("/broken", rc.FlushOnWrite(), func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/stats", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"calls":1}`, second.Body.String())

	// a failed write keeps the cache
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/broken", nil))
	assert.Equal(t, 1, rc.Len())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/loans", nil))
	assert.Zero(t, rc.Len())

	third := httptest.NewRecorder()
	r.ServeHTTP(third, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"calls":2}`, third.Body.String())
}

func TestResponseCache_WriteDuringReadIsNotCached(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	r := gin.New()
	r.POST("/loans", rc.FlushOnWrite(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	loans := 0
	r.GET("/stats", rc.Middleware(), func(c *gin.Context) {
		count := loans
		if count == 0 {
			// a loan commits while the counts are being rendered
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/loans", nil))
			loans++
		}
		c.JSON(http.StatusOK, gin.H{"loans": count})
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.JSONEq(t, `{"loans":0}`, first.Body.String())
	assert.Zero(t, rc.Len(), "a response started before the flush must not be stored")

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, "MISS", second.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"loans":1}`, second.Body.String())
	assert.Equal(t, 1, rc.Len())
}

func TestRequireOperator(t *testing.T) {
	r := gin.New()
	r.POST("/loans", RequireOperator(), func(c *gin.Context) {
		c.String(http.StatusOK, Operator(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/loans", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/loans", nil)
	req.Header.Set(OperatorHeader, " ana ")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana", w.Body.String())
}
