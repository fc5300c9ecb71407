package handler

import (
	"github.com/labstack/echo/v4"

	"scentswap/internal/usecase"
	"scentswap/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
}

type updateProfileRequest struct {
	Username         string `json:"username,omitempty" validate:"omitempty,min=3,max=32"`
	PhotoURL         string `json:"photo_url,omitempty"`
	FormattedAddress string `json:"formatted_address,omitempty"`
	FCMToken         string `json:"fcm_token,omitempty"`
}

// Register creates the profile document for a freshly signed-in Firebase user.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	user, err := h.userUseCase.EnsureProfile(c.Request().Context(), userID, req.Email, req.Username)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user)
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.userUseCase.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), userID, usecase.UpdateProfileInput{
		Username:         req.Username,
		PhotoURL:         req.PhotoURL,
		FormattedAddress: req.FormattedAddress,
		FCMToken:         req.FCMToken,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
