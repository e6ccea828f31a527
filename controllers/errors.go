package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/services"
)

// respondServiceError maps core error kinds onto HTTP responses. Anything
// unrecognized is an infrastructure failure and stays generic.
func respondServiceError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrDonationNotFound),
		errors.Is(err, services.ErrCommissionLogNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, services.ErrInvalidOrInactiveReferralCode),
		errors.Is(err, services.ErrNotPending),
		errors.Is(err, models.ErrUnknownRole):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, services.ErrAlreadyDistributed),
		errors.Is(err, services.ErrNotSuccessful),
		errors.Is(err, services.ErrUnattributed),
		errors.Is(err, services.ErrAlreadyPaid):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, services.ErrCodeGenerationExhausted),
		errors.Is(err, services.ErrCycleDetected):
		status = http.StatusInternalServerError
		message = err.Error()
	}

	return c.JSON(status, models.Response{
		Status:  status,
		Message: message,
	})
}
