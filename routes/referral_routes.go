package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/daansetu/daansetu_backend/controllers"
	"github.com/daansetu/daansetu_backend/middleware"
	"github.com/daansetu/daansetu_backend/models"
)

// RegisterReferralRoutes sets up referral code routes. Resolution is public
// so the checkout page can validate a code before payment; everything else
// requires an active account.
func RegisterReferralRoutes(e *echo.Echo, referralController *controllers.ReferralController) {
	e.GET("/api/referral/resolve/:code", referralController.ResolveReferralCode)

	protected := e.Group("/api/referral")
	protected.Use(middleware.JWTMiddleware())
	protected.Use(middleware.RequireMinRank(models.RoleDonor))
	protected.GET("/my-code", referralController.GetMyReferralCode)
	protected.GET("/data", referralController.GetReferralData)
}
