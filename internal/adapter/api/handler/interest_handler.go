package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/preetambaheti/Farmunity-marketplace/internal/usecase"
	"github.com/preetambaheti/Farmunity-marketplace/pkg/response"
)

type InterestHandler struct {
	interestUseCase *usecase.InterestUseCase
}

func NewInterestHandler(interestUseCase *usecase.InterestUseCase) *InterestHandler {
	return &InterestHandler{interestUseCase: interestUseCase}
}

type recordInterestRequest struct {
	ListingOwnerID string `json:"listing_owner_id" validate:"required,userid"`
	ListingRef     string `json:"listing_ref" validate:"required,listingref"`
	Note           string `json:"note"`
}

func (h *InterestHandler) RecordInterest(c echo.Context) error {
	var req recordInterestRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	result, err := h.interestUseCase.RecordInterest(c.Request().Context(), userID, usecase.RecordInterestInput{
		ListingOwnerID: req.ListingOwnerID,
		ListingRef:     req.ListingRef,
		Note:           req.Note,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}
