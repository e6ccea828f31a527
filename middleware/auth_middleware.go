// middleware/auth_middleware.go
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daansetu/daansetu_backend/models"
)

// RequireRole checks if the authenticated user has one of the allowed roles
func RequireRole(allowedRoles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := ExtractRole(c)

			if role == "" {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: role not found",
				})
			}

			for _, allowed := range allowedRoles {
				if models.Role(role) == allowed {
					return next(c)
				}
			}

			return c.JSON(http.StatusForbidden, models.Response{
				Status:  http.StatusForbidden,
				Message: "Access denied for your role",
			})
		}
	}
}

// RequireMinRank allows any caller whose role ranks at or above the given
// role (lower rank = more authority).
func RequireMinRank(minRole models.Role) echo.MiddlewareFunc {
	minRank, minErr := models.RankOf(minRole)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if minErr != nil {
				return c.JSON(http.StatusInternalServerError, models.Response{
					Status:  http.StatusInternalServerError,
					Message: "Misconfigured rank requirement",
				})
			}

			role, err := models.ParseRole(ExtractRole(c))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.Response{
					Status:  http.StatusUnauthorized,
					Message: "Authentication failed: unknown role",
				})
			}

			rank, err := models.RankOf(role)
			if err != nil || rank > minRank {
				return c.JSON(http.StatusForbidden, models.Response{
					Status:  http.StatusForbidden,
					Message: "Access denied for your role",
				})
			}

			return next(c)
		}
	}
}
