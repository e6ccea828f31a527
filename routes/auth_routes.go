package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/daansetu/daansetu_backend/controllers"
)

// RegisterAuthRoutes sets up the public authentication routes
func RegisterAuthRoutes(e *echo.Echo, authController *controllers.AuthController) {
	e.POST("/api/auth/signup", authController.Signup)
	e.POST("/api/auth/login", authController.Login)
}
