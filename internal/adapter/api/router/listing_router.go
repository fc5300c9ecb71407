package router

import (
	"scentswap/internal/adapter/api/handler"
	"scentswap/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupListingRouter initializes listing routes
func SetupListingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	listingHandler := handler.GetListingHandler()

	listings := e.Group("/v1/listings")
	listings.Use(authMiddleware.Authenticate)

	listings.POST("", listingHandler.CreateListing)
	listings.GET("/mine", listingHandler.ListOwnListings)
	listings.GET("/:id", listingHandler.GetListing)
	listings.POST("/:id/archive", listingHandler.ArchiveListing)
}
