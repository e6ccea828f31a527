package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/daansetu/daansetu_backend/controllers"
	"github.com/daansetu/daansetu_backend/middleware"
	"github.com/daansetu/daansetu_backend/models"
)

// RegisterHierarchyRoutes sets up the coordinator team routes. Only
// coordinator roles (prerak and above) manage a tree.
func RegisterHierarchyRoutes(e *echo.Echo, hierarchyController *controllers.HierarchyController) {
	team := e.Group("/api/team")
	team.Use(middleware.JWTMiddleware())
	team.Use(middleware.RequireMinRank(models.RolePrerak))
	team.GET("/hierarchy", hierarchyController.GetHierarchy)
	team.GET("/members", hierarchyController.GetTeamMembers)
	team.POST("/members/:id/approve", hierarchyController.ApproveMember)
	team.POST("/members/:id/reject", hierarchyController.RejectMember)
}
