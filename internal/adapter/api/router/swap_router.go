package router

import (
	"scentswap/internal/adapter/api/handler"
	"scentswap/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupSwapRouter initializes swap lifecycle and conversation routes
func SetupSwapRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	swapHandler := handler.GetSwapHandler()
	conversationHandler := handler.GetConversationHandler()

	swaps := e.Group("/v1/swaps")
	swaps.Use(authMiddleware.Authenticate)

	swaps.POST("", swapHandler.CreateSwap)
	swaps.GET("", swapHandler.ListSwaps)
	swaps.GET("/:id", swapHandler.GetSwap)
	swaps.POST("/:id/accept", swapHandler.AcceptSwap)
	swaps.POST("/:id/decision", swapHandler.RejectOrCancelSwap)
	swaps.POST("/:id/address", swapHandler.ConfirmAddress)
	swaps.POST("/:id/shipment", swapHandler.ConfirmShipment)

	swaps.POST("/:id/messages", conversationHandler.SendMessage)
	swaps.GET("/:id/messages", conversationHandler.ListMessages)
	swaps.POST("/:id/messages/read", conversationHandler.MarkMessagesRead)
	swaps.POST("/:id/presence", conversationHandler.Heartbeat)

	me := e.Group("/v1/me")
	me.Use(authMiddleware.Authenticate)
	me.GET("/counters", conversationHandler.GetCounters)
}
