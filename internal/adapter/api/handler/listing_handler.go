package handler

import (
	"github.com/labstack/echo/v4"

	"scentswap/internal/usecase"
	"scentswap/pkg/errors"
	"scentswap/pkg/response"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type createListingRequest struct {
	Title            string `json:"title" validate:"required,max=120"`
	Fragrance        string `json:"fragrance" validate:"required,max=120"`
	Brand            string `json:"brand" validate:"required,max=120"`
	ImageURL         string `json:"image_url,omitempty"`
	PercentRemaining int    `json:"percent_remaining" validate:"min=1,max=100"`
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	listing, err := h.listingUseCase.CreateListing(c.Request().Context(), userID, usecase.CreateListingInput{
		Title:            req.Title,
		Fragrance:        req.Fragrance,
		Brand:            req.Brand,
		ImageURL:         req.ImageURL,
		PercentRemaining: req.PercentRemaining,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	listingID := c.Param("id")
	if listingID == "" {
		return response.Error(c, errors.BadRequest("Listing ID is required", nil))
	}

	listing, err := h.listingUseCase.GetListing(c.Request().Context(), listingID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) ListOwnListings(c echo.Context) error {
	userID := c.Get("uid").(string)
	cursor := c.QueryParam("cursor")

	listings, next, err := h.listingUseCase.ListOwn(c.Request().Context(), userID, 20, cursor)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"items":       listings,
		"next_cursor": next,
	})
}

func (h *ListingHandler) ArchiveListing(c echo.Context) error {
	listingID := c.Param("id")
	userID := c.Get("uid").(string)

	listing, err := h.listingUseCase.ArchiveListing(c.Request().Context(), userID, listingID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}
