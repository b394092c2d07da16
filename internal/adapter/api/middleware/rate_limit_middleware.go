package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/metrics"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/ratelimit"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/errors"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/response"
)

// RateLimit throttles an authenticated action per user. It must run after
// AuthMiddleware.Authenticate.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, _ := c.Get("uid").(string)
			if uid == "" {
				return next(c)
			}

			allowed, wait := limiter.Allow(uid, action)
			if !allowed {
				metrics.RateLimitHits.WithLabelValues(action).Inc()
				logger.Warn("RATE LIMIT: %s blocked for user %s (retry in %v)", action, uid, wait)
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Too many requests, slow down"))
			}
			return next(c)
		}
	}
}
