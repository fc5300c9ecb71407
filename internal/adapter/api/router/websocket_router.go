package router

import (
	"scentswap/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

// The WebSocket route skips the auth middleware: the handler authenticates
// the connection itself from a token query parameter, since browser clients
// cannot set headers on WebSocket upgrades.
func SetupWebSocketRouter(e *echo.Echo) {
	webSocketHandler := handler.GetWebSocketHandler()

	e.GET("/v1/ws", webSocketHandler.HandleWebSocket)
}
