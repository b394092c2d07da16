package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/preetambaheti/Farmunity-marketplace/internal/usecase"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/response"
)

type ChatHandler struct {
	conversationUseCase *usecase.ConversationUseCase
	messageUseCase      *usecase.MessageUseCase
	summaryUseCase      *usecase.SummaryUseCase
}

func NewChatHandler(
	conversationUseCase *usecase.ConversationUseCase,
	messageUseCase *usecase.MessageUseCase,
	summaryUseCase *usecase.SummaryUseCase,
) *ChatHandler {
	return &ChatHandler{
		conversationUseCase: conversationUseCase,
		messageUseCase:      messageUseCase,
		summaryUseCase:      summaryUseCase,
	}
}

type startChatRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,userid"`
	Context     string `json:"context"`
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// StartChat returns the caller's conversation with the recipient, creating it on first use.
func (h *ChatHandler) StartChat(c echo.Context) error {
	var req startChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	result, err := h.conversationUseCase.StartOrGet(c.Request().Context(), userID, req.RecipientID, req.Context)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *ChatHandler) GetUserChats(c echo.Context) error {
	userID := c.Get("uid").(string)

	summaries, err := h.summaryUseCase.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, summaries)
}

func (h *ChatHandler) GetChatMessages(c echo.Context) error {
	userID := c.Get("uid").(string)

	messages, err := h.messageUseCase.List(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.messageUseCase.Append(c.Request().Context(), c.Param("id"), userID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}
