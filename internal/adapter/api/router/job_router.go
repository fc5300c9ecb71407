package router

import (
	"scentswap/internal/adapter/api/handler"
	"scentswap/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupJobRouter initializes the internal routes invoked by the external
// scheduler (daily and monthly triggers) and by upstream tier-change events.
func SetupJobRouter(e *echo.Echo, jobMiddleware *middleware.JobMiddleware) {
	jobHandler := handler.GetJobHandler()

	jobs := e.Group("/v1/internal/jobs")
	jobs.Use(jobMiddleware.Authenticate)

	jobs.POST("/validate-unread-counts", jobHandler.ValidateUnreadCounts)
	jobs.POST("/reset-monthly-swap-counts", jobHandler.ResetMonthlySwapCounts)
	jobs.POST("/cleanup-expired-swaps", jobHandler.CleanupExpiredSwaps)
	jobs.POST("/propagate-owner-tier", jobHandler.PropagateOwnerTier)

	internal := e.Group("/v1/internal/users")
	internal.Use(jobMiddleware.Authenticate)
	internal.POST("/:uid/tier", jobHandler.SetUserTier)
}
