package handler

import (
	"github.com/labstack/echo/v4"

	"scentswap/internal/usecase"
	"scentswap/pkg/errors"
	"scentswap/pkg/response"
	"scentswap/pkg/utils"
)

type SwapHandler struct {
	swapUseCase *usecase.SwapUseCase
}

func NewSwapHandler(swapUseCase *usecase.SwapUseCase) *SwapHandler {
	return &SwapHandler{
		swapUseCase: swapUseCase,
	}
}

type createSwapRequest struct {
	OfferedListingID   string `json:"offered_listing_id" validate:"required"`
	RequestedListingID string `json:"requested_listing_id" validate:"required"`
	Note               string `json:"note,omitempty"`
}

type decisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=cancel reject"`
}

type confirmAddressRequest struct {
	FormattedAddress string `json:"formatted_address,omitempty"`
}

type confirmShipmentRequest struct {
	TrackingNumber string `json:"tracking_number,omitempty"`
}

func (h *SwapHandler) CreateSwap(c echo.Context) error {
	var req createSwapRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	swap, err := h.swapUseCase.CreateSwap(c.Request().Context(), userID, usecase.CreateSwapInput{
		OfferedListingID:   req.OfferedListingID,
		RequestedListingID: req.RequestedListingID,
		Note:               req.Note,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, swap)
}

func (h *SwapHandler) GetSwap(c echo.Context) error {
	swapID := c.Param("id")
	if swapID == "" {
		return response.Error(c, errors.BadRequest("Swap ID is required", nil))
	}

	userID := c.Get("uid").(string)

	swap, err := h.swapUseCase.GetSwap(c.Request().Context(), userID, swapID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, swap)
}

func (h *SwapHandler) ListSwaps(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)
	userID := c.Get("uid").(string)

	swaps, total, err := h.swapUseCase.ListSwaps(c.Request().Context(), userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, swaps, total, pagination.Page, pagination.PageSize)
}

func (h *SwapHandler) AcceptSwap(c echo.Context) error {
	swapID := c.Param("id")
	userID := c.Get("uid").(string)

	result, err := h.swapUseCase.AcceptSwap(c.Request().Context(), swapID, userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *SwapHandler) RejectOrCancelSwap(c echo.Context) error {
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	swapID := c.Param("id")
	userID := c.Get("uid").(string)

	result, err := h.swapUseCase.RejectOrCancelSwap(c.Request().Context(), swapID, userID, req.Decision)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *SwapHandler) ConfirmAddress(c echo.Context) error {
	var req confirmAddressRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	swapID := c.Param("id")
	userID := c.Get("uid").(string)

	result, err := h.swapUseCase.ConfirmAddress(c.Request().Context(), swapID, userID, req.FormattedAddress)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *SwapHandler) ConfirmShipment(c echo.Context) error {
	var req confirmShipmentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	swapID := c.Param("id")
	userID := c.Get("uid").(string)

	result, err := h.swapUseCase.ConfirmShipment(c.Request().Context(), swapID, userID, req.TrackingNumber)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
