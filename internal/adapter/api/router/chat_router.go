package router

import (
	"github.com/labstack/echo/v4"

	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/handler"
	"github.com/preetambaheti/Farmunity-marketplace/internal/adapter/api/middleware"
	"github.com/preetambaheti/Farmunity-marketplace/internal/infrastructure/ratelimit"
)

func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	chatHandler := handler.GetChatHandler()

	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.POST("/start", chatHandler.StartChat, middleware.RateLimit(limiter, ratelimit.ActionStartConversation))
	chatGroup.GET("", chatHandler.GetUserChats)

	chatGroup.GET("/:id/messages", chatHandler.GetChatMessages)
	chatGroup.POST("/:id/messages", chatHandler.SendMessage, middleware.RateLimit(limiter, ratelimit.ActionSendMessage))
}
