// controllers/referral_controller.go
package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/middleware"
	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/services"
)

// ReferralController exposes referral code creation, lookup and sharing data
type ReferralController struct {
	referrals *services.ReferralService
}

func NewReferralController(referrals *services.ReferralService) *ReferralController {
	return &ReferralController{referrals: referrals}
}

func referralBaseURL() string {
	if base := os.Getenv("REFERRAL_LINK_BASE_URL"); base != "" {
		return base
	}
	return "https://daansetu.org/donate"
}

// GetMyReferralCode returns the caller's referral code, creating one on
// first request.
func (rc *ReferralController) GetMyReferralCode(c echo.Context) error {
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

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	code, err := rc.referrals.GetOrCreate(ctx, userObjID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral code retrieved",
		Data:    code,
	})
}

// GetReferralData returns the caller's sharing kit: code, totals, donation
// link and a QR code image.
func (rc *ReferralController) GetReferralData(c echo.Context) error {
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

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	code, err := rc.referrals.GetOrCreate(ctx, userObjID)
	if err != nil {
		return respondServiceError(c, err)
	}

	referralLink := fmt.Sprintf("%s?code=%s", referralBaseURL(), code.Code)

	qrCode, err := generateReferralQRCode(referralLink)
	if err != nil {
		// Continue without the QR image
		log.Printf("Warning: failed to generate QR code: %v", err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral data retrieved",
		Data: map[string]interface{}{
			"referralCode":   code.Code,
			"type":           code.Type,
			"active":         code.Active,
			"totalDonations": code.TotalDonations,
			"totalAmount":    code.TotalAmount,
			"referralLink":   referralLink,
			"qrCode":         qrCode,
		},
	})
}

// ResolveReferralCode looks up a code for the public checkout page. Unknown
// codes resolve to valid=false rather than an error.
func (rc *ReferralController) ResolveReferralCode(c echo.Context) error {
	raw := c.Param("code")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing referral code",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	code, err := rc.referrals.Resolve(ctx, raw)
	if err != nil {
		return respondServiceError(c, err)
	}
	if code == nil || !code.Active {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Referral code resolved",
			Data:    map[string]interface{}{"valid": false},
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Referral code resolved",
		Data: map[string]interface{}{
			"valid": true,
			"code":  code.Code,
			"type":  code.Type,
		},
	})
}

// generateReferralQRCode renders the donation link as a base64 PNG
func generateReferralQRCode(content string) (string, error) {
	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", err
	}

	qrCode, err = barcode.Scale(qrCode, 300, 300)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
