// controllers/hierarchy_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/middleware"
	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/repositories"
	"github.com/daansetu/daansetu_backend/services"
)

// HierarchyController exposes the coordinator tree and the member
// approval lifecycle.
type HierarchyController struct {
	users     repositories.UserStore
	hierarchy *services.HierarchyService
	referrals *services.ReferralService
}

func NewHierarchyController(users repositories.UserStore, hierarchy *services.HierarchyService, referrals *services.ReferralService) *HierarchyController {
	return &HierarchyController{users: users, hierarchy: hierarchy, referrals: referrals}
}

// caller loads the authenticated user behind the request token
func (hc *HierarchyController) caller(ctx context.Context, c echo.Context) (*models.User, error) {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return nil, err
	}
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}
	return hc.users.FindByID(ctx, userObjID)
}

// GetHierarchy returns the caller's full subordinate tree.
func (hc *HierarchyController) GetHierarchy(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	tree, err := hc.hierarchy.BuildTree(ctx, userObjID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Hierarchy retrieved",
		Data:    tree,
	})
}

// GetTeamMembers returns the caller's subordinates, filterable and paginated.
func (hc *HierarchyController) GetTeamMembers(c echo.Context) error {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}
	userObjID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	var q models.TeamMemberQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid query parameters",
		})
	}

	filter := services.TeamFilter{
		Page:       q.Page,
		Limit:      q.Limit,
		DirectOnly: q.DirectOnly,
		Status:     q.Status,
	}
	if q.Role != "" {
		role, err := models.ParseRole(q.Role)
		if err != nil {
			return respondServiceError(c, err)
		}
		filter.Role = role
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	members, total, err := hc.hierarchy.GetTeamMembers(ctx, userObjID, filter)
	if err != nil {
		return respondServiceError(c, err)
	}

	for i := range members {
		members[i].Password = ""
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Team members retrieved",
		Data: map[string]interface{}{
			"members": members,
			"total":   total,
			"page":    filter.Page,
			"limit":   filter.Limit,
		},
	})
}

// ApproveMember activates a pending member under the caller.
func (hc *HierarchyController) ApproveMember(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid member id",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	approver, err := hc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	if err := hc.hierarchy.Approve(ctx, approver, targetID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Member approved",
	})
}

// RejectMember marks a pending member inactive and retires their referral
// code if one was already issued.
func (hc *HierarchyController) RejectMember(c echo.Context) error {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid member id",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	approver, err := hc.caller(ctx, c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	if err := hc.hierarchy.Reject(ctx, approver, targetID); err != nil {
		return respondServiceError(c, err)
	}

	if err := hc.referrals.DeactivateForOwner(ctx, targetID); err != nil {
		log.Printf("Warning: failed to deactivate referral code for %s: %v", targetID.Hex(), err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Member rejected",
	})
}
