package handler

import (
	"github.com/labstack/echo/v4"

	"scentswap/internal/usecase"
	"scentswap/pkg/response"
	"scentswap/pkg/utils"
)

type ConversationHandler struct {
	conversationUseCase *usecase.ConversationUseCase
}

func NewConversationHandler(conversationUseCase *usecase.ConversationUseCase) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
	}
}

type sendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type markReadRequest struct {
	MessageIDs []string `json:"message_ids" validate:"required,min=1"`
}

type presenceRequest struct {
	Active bool `json:"active"`
}

func (h *ConversationHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	swapID := c.Param("id")
	userID := c.Get("uid").(string)

	message, err := h.conversationUseCase.SendMessage(c.Request().Context(), swapID, userID, req.Text)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ConversationHandler) ListMessages(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)
	swapID := c.Param("id")
	userID := c.Get("uid").(string)

	messages, total, err := h.conversationUseCase.ListMessages(c.Request().Context(), swapID, userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, pagination.Page, pagination.PageSize)
}

func (h *ConversationHandler) MarkMessagesRead(c echo.Context) error {
	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	swapID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.conversationUseCase.MarkMessagesRead(c.Request().Context(), swapID, userID, req.MessageIDs); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"read": true})
}

func (h *ConversationHandler) Heartbeat(c echo.Context) error {
	var req presenceRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	swapID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.conversationUseCase.Heartbeat(c.Request().Context(), swapID, userID, req.Active); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"active": req.Active})
}

func (h *ConversationHandler) GetCounters(c echo.Context) error {
	userID := c.Get("uid").(string)

	counters, err := h.conversationUseCase.GetCounters(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, counters)
}
