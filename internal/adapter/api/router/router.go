package router

import (
	"scentswap/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, jobMiddleware *middleware.JobMiddleware) {
	SetupUserRouter(e, authMiddleware)
	SetupListingRouter(e, authMiddleware)
	SetupSwapRouter(e, authMiddleware)
	SetupJobRouter(e, jobMiddleware)
	SetupWebSocketRouter(e)
	SetupHealthRouter(e)
}
