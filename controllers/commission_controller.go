// controllers/commission_controller.go
package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/middleware"
	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/repositories"
	"github.com/daansetu/daansetu_backend/services"
	"github.com/daansetu/daansetu_backend/websocket"
)

// CommissionController exposes commission distribution, payout marking and
// the earning views coordinators see on their dashboard.
type CommissionController struct {
	commissions *services.CommissionService
	hierarchy   *services.HierarchyService
	donations   repositories.DonationStore
	logs        repositories.CommissionLogStore
	hub         *websocket.Hub
}

func NewCommissionController(
	commissions *services.CommissionService,
	hierarchy *services.HierarchyService,
	donations repositories.DonationStore,
	logs repositories.CommissionLogStore,
	hub *websocket.Hub,
) *CommissionController {
	return &CommissionController{
		commissions: commissions,
		hierarchy:   hierarchy,
		donations:   donations,
		logs:        logs,
		hub:         hub,
	}
}

// Distribute runs the commission split for one successful donation.
func (cc *CommissionController) Distribute(c echo.Context) error {
	donationID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid donation id",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	result, err := cc.commissions.Distribute(ctx, donationID)
	if err != nil {
		return respondServiceError(c, err)
	}

	for _, d := range result.Distributions {
		cc.hub.NotifyCommissionRecorded(d.UserID, map[string]interface{}{
			"donationId": result.DonationID.Hex(),
			"amount":     d.Amount,
			"level":      d.Level,
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission distributed",
		Data:    result,
	})
}

// MarkPaid records an off-platform payout against one commission entry.
func (cc *CommissionController) MarkPaid(c echo.Context) error {
	logID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid commission id",
		})
	}

	var req models.MarkCommissionPaidRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request format",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := cc.commissions.MarkCommissionPaid(ctx, logID, req.TransactionID, req.PaymentMethod); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission marked as paid",
	})
}

// GetMyCommissions lists the caller's commission entries, newest first.
func (cc *CommissionController) GetMyCommissions(c echo.Context) error {
	userObjID, err := callerObjectID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	entries, total, err := cc.logs.ListForUser(ctx, userObjID, page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commissions retrieved",
		Data: map[string]interface{}{
			"commissions": entries,
			"total":       total,
			"page":        page,
			"limit":       limit,
		},
	})
}

// GetMySummary returns the caller's earned, paid and pending totals.
func (cc *CommissionController) GetMySummary(c echo.Context) error {
	userObjID, err := callerObjectID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	earned, paid, err := cc.logs.SummaryForUser(ctx, userObjID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission summary retrieved",
		Data: map[string]interface{}{
			"totalEarned": earned,
			"totalPaid":   paid,
			"pending":     earned - paid,
		},
	})
}

// GetTeamDonations lists donations attributed to the caller or anyone in
// their subordinate tree.
func (cc *CommissionController) GetTeamDonations(c echo.Context) error {
	userObjID, err := callerObjectID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Authentication failed",
		})
	}

	page, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	subordinates, err := cc.hierarchy.GetAllSubordinates(ctx, userObjID)
	if err != nil {
		return respondServiceError(c, err)
	}

	ids := make([]primitive.ObjectID, 0, len(subordinates)+1)
	ids = append(ids, userObjID)
	for _, u := range subordinates {
		ids = append(ids, u.ID)
	}

	donations, total, err := cc.donations.ListByAttributed(ctx, ids, page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Team donations retrieved",
		Data: map[string]interface{}{
			"donations": donations,
			"total":     total,
			"page":      page,
			"limit":     limit,
		},
	})
}

// callerObjectID reads the authenticated user id from the request token
func callerObjectID(c echo.Context) (primitive.ObjectID, error) {
	userID, err := middleware.ExtractUserID(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(userID)
}

// pageParams reads page/limit query parameters with sane defaults
func pageParams(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
