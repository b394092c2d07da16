package router

import (
	"github.com/labstack/echo/v4"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/handler"
	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.POST("/chats/:id/repair", adminHandler.RepairChat)
}
