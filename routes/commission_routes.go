package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/daansetu/daansetu_backend/controllers"
	"github.com/daansetu/daansetu_backend/middleware"
	"github.com/daansetu/daansetu_backend/models"
)

// RegisterCommissionRoutes sets up commission routes. Distribution and payout
// marking are admin operations; the earning views belong to coordinators.
func RegisterCommissionRoutes(e *echo.Echo, commissionController *controllers.CommissionController) {
	admin := e.Group("/api/admin/commissions")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.POST("/donations/:id/distribute", commissionController.Distribute)
	admin.POST("/:id/mark-paid", commissionController.MarkPaid)

	team := e.Group("/api/commissions")
	team.Use(middleware.JWTMiddleware())
	team.Use(middleware.RequireMinRank(models.RolePrerak))
	team.GET("", commissionController.GetMyCommissions)
	team.GET("/summary", commissionController.GetMySummary)
	team.GET("/team-donations", commissionController.GetTeamDonations)
}
