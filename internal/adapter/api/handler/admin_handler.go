package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/preetambaheti/Farmunity-marketplace/internal/usecase"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/logger"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/response"
)

type AdminHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewAdminHandler(messageUseCase *usecase.MessageUseCase) *AdminHandler {
	return &AdminHandler{messageUseCase: messageUseCase}
}

// RepairChat recomputes a conversation's cached last message from its log.
func (h *AdminHandler) RepairChat(c echo.Context) error {
	conversationID := c.Param("id")

	repaired, err := h.messageUseCase.RepairLastMessage(c.Request().Context(), conversationID)
	if err != nil {
		return response.Error(c, err)
	}

	logger.Info("Admin %v ran last-message repair on %s (repaired=%t)", c.Get("uid"), conversationID, repaired)
	return response.Success(c, map[string]bool{"repaired": repaired})
}
