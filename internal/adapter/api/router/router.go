package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/middleware"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/ratelimit"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware, limiter *ratelimit.RateLimiter) {
	SetupChatRouter(e, authMiddleware, limiter)
	SetupInterestRouter(e, authMiddleware, limiter)
	SetupNotificationRouter(e, authMiddleware)
	SetupAdminRouter(e, authMiddleware, adminMiddleware)
	SetupHealthRouter(e)
	SetupMetricsRouter(e, promhttp.Handler())
}

func SetupMetricsRouter(e *echo.Echo, h http.Handler) {
	e.GET("/metrics", echo.WrapHandler(h))
}
