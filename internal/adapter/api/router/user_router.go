package router

import (
	"scentswap/internal/adapter/api/handler"
	"scentswap/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupUserRouter initializes user profile routes
func SetupUserRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	userHandler := handler.GetUserHandler()

	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.POST("/register", userHandler.Register)
	users.GET("/me", userHandler.GetProfile)
	users.PATCH("/me", userHandler.UpdateProfile)
}
