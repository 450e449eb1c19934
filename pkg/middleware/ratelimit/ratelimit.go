package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

var errRateLimited = appErrors.New("RATE_LIMITED", http.StatusTooManyRequests, "rate limit exceeded")

// New throttles requests with a shared token bucket. Safe methods pass through.
func New(rps float64, burst int) gin.HandlerFunc {
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if !limiter.Allow() {
			c.AbortWithStatusJSON(errRateLimited.Status, gin.H{"error": errRateLimited})
			return
		}
		c.Next()
	}
}
