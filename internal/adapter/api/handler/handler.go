package handler

import (
	"github.com/preetambaheti/Farmunity-marketplace/internal/usecase"
)

var (
	chatHandler         *ChatHandler
	interestHandler     *InterestHandler
	notificationHandler *NotificationHandler
	adminHandler        *AdminHandler
	healthHandler       *HealthHandler
)

func Setup(
	conversationUseCase *usecase.ConversationUseCase,
	messageUseCase *usecase.MessageUseCase,
	summaryUseCase *usecase.SummaryUseCase,
	interestUseCase *usecase.InterestUseCase,
	notificationUseCase *usecase.NotificationUseCase,
	healthChecks map[string]HealthCheck,
) {
	chatHandler = NewChatHandler(conversationUseCase, messageUseCase, summaryUseCase)
	interestHandler = NewInterestHandler(interestUseCase)
	notificationHandler = NewNotificationHandler(notificationUseCase)
	adminHandler = NewAdminHandler(messageUseCase)
	healthHandler = NewHealthHandler(healthChecks)
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetInterestHandler() *InterestHandler {
	return interestHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetAdminHandler() *AdminHandler {
	return adminHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}
