package router

import (
	"github.com/labstack/echo/v4"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/handler"
	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/middleware"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/ratelimit"
)

func SetupInterestRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	interestHandler := handler.GetInterestHandler()

	e.POST("/v1/interests", interestHandler.RecordInterest,
		authMiddleware.Authenticate,
		middleware.RateLimit(limiter, ratelimit.ActionRecordInterest),
	)
}
