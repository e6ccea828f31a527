package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/daansetu/daansetu_backend/controllers"
	"github.com/daansetu/daansetu_backend/middleware"
	"github.com/daansetu/daansetu_backend/models"
)

// RegisterDonationRoutes sets up checkout, webhook and donation lookup routes.
// Order creation and the webhook are public; the gateway authenticates the
// webhook with its signature header.
func RegisterDonationRoutes(e *echo.Echo, donationController *controllers.DonationController) {
	e.POST("/api/donations/order", donationController.CreateOrder)
	e.POST("/api/donations/webhook", donationController.HandleWebhook)

	protected := e.Group("/api/donations")
	protected.Use(middleware.JWTMiddleware())
	protected.Use(middleware.RequireMinRank(models.RoleVolunteer))
	protected.GET("/:id", donationController.GetDonation)
}
