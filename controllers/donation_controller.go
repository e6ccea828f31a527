// controllers/donation_controller.go
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/repositories"
	"github.com/daansetu/daansetu_backend/services"
	"github.com/daansetu/daansetu_backend/websocket"
)

// DonationController handles donation checkout and the gateway webhook
type DonationController struct {
	donations   repositories.DonationStore
	attribution *services.AttributionService
	referrals   *services.ReferralService
	gateway     *services.RazorpayService
	mailer      *services.EmailService
	hub         *websocket.Hub
}

func NewDonationController(
	donations repositories.DonationStore,
	attribution *services.AttributionService,
	referrals *services.ReferralService,
	gateway *services.RazorpayService,
	mailer *services.EmailService,
	hub *websocket.Hub,
) *DonationController {
	return &DonationController{
		donations:   donations,
		attribution: attribution,
		referrals:   referrals,
		gateway:     gateway,
		mailer:      mailer,
		hub:         hub,
	}
}

// CreateOrder creates a gateway order and a PENDING donation. Attribution is
// resolved here, before payment: an unknown or inactive referral code rejects
// the order outright.
func (dc *DonationController) CreateOrder(c echo.Context) error {
	var req models.CreateDonationRequest
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

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	in := services.AttributionInput{ReferralCode: req.ReferralCode}
	if req.ReferredBy != "" {
		refID, err := primitive.ObjectIDFromHex(req.ReferredBy)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid referredBy id",
			})
		}
		in.ReferredBy = &refID
	}

	// All request validation happens before the gateway call; a rejected
	// request must not leave an orphan order behind at the gateway.
	var programID *primitive.ObjectID
	if req.ProgramID != "" {
		id, err := primitive.ObjectIDFromHex(req.ProgramID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid program id",
			})
		}
		programID = &id
	}

	attribution, err := dc.attribution.Attribute(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	receipt := "DSN-" + uuid.NewString()

	order, err := dc.gateway.CreateOrder(ctx, req.Amount, currency, receipt, map[string]string{
		"referralCode": req.ReferralCode,
	})
	if err != nil {
		log.Printf("ERROR: gateway order creation failed: %v", err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Payment gateway unavailable",
		})
	}

	donation := &models.Donation{
		Amount:         req.Amount,
		Currency:       currency,
		DonorName:      req.DonorName,
		DonorEmail:     req.DonorEmail,
		PaymentStatus:  models.PaymentStatusPending,
		GatewayOrderID: order.ID,
		Receipt:        receipt,
		ReferralCodeID: attribution.ReferralCodeID,
		ReferredBy:     in.ReferredBy,
		AttributedTo:   attribution.AttributedTo,
		ProgramID:      programID,
	}

	if err := dc.donations.Insert(ctx, donation); err != nil {
		log.Printf("ERROR: failed to persist donation: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create donation",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Donation order created",
		Data: models.DonationOrderResponse{
			DonationID:     donation.ID.Hex(),
			GatewayOrderID: order.ID,
			Amount:         donation.Amount,
			Currency:       currency,
			Receipt:        receipt,
			KeyID:          dc.gateway.KeyID(),
		},
	})
}

// webhookPayload is the subset of the gateway event we act on
type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook finalizes a donation on the gateway callback. Receipt email
// and dashboard notification are best-effort; their failure never affects
// the payment record.
func (dc *DonationController) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unreadable body",
		})
	}

	signature := c.Request().Header.Get("X-Razorpay-Signature")
	if !dc.gateway.VerifyWebhookSignature(body, signature) {
		log.Printf("ERROR: webhook signature verification failed")
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid signature",
		})
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payload",
		})
	}

	orderID := payload.Payload.Payment.Entity.OrderID
	paymentID := payload.Payload.Payment.Entity.ID
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing order id",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	donation, err := dc.donations.FindByGatewayOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: "Unknown order",
			})
		}
		return respondServiceError(c, err)
	}

	switch payload.Event {
	case "payment.captured":
		err = dc.donations.MarkPaymentResult(ctx, donation.ID, models.PaymentStatusSuccess, paymentID)
		if errors.Is(err, repositories.ErrConflict) {
			// Gateway retried a webhook we already processed
			return c.JSON(http.StatusOK, models.Response{
				Status:  http.StatusOK,
				Message: "Already processed",
			})
		}
		if err != nil {
			return respondServiceError(c, err)
		}
		dc.finalizeSuccess(donation)
	case "payment.failed":
		err = dc.donations.MarkPaymentResult(ctx, donation.ID, models.PaymentStatusFailed, paymentID)
		if err != nil && !errors.Is(err, repositories.ErrConflict) {
			return respondServiceError(c, err)
		}
	default:
		// Unhandled events are acknowledged so the gateway stops retrying
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Webhook processed",
	})
}

// finalizeSuccess runs the post-payment side effects: usage counters,
// dashboard notification, receipt email.
func (dc *DonationController) finalizeSuccess(donation *models.Donation) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if donation.ReferralCodeID != nil {
			if err := dc.referrals.RecordUsage(ctx, *donation.ReferralCodeID, donation.Amount); err != nil {
				log.Printf("ERROR: failed to record referral usage for donation %s: %v", donation.ID.Hex(), err)
			}
		}

		if donation.AttributedTo != nil {
			dc.hub.NotifyDonationReceived(*donation.AttributedTo, map[string]interface{}{
				"donationId": donation.ID.Hex(),
				"amount":     donation.Amount,
				"currency":   donation.Currency,
			})
		}

		if err := dc.mailer.SendDonationReceipt(donation.DonorEmail, donation.DonorName, donation.Amount, donation.Currency, donation.Receipt); err != nil {
			log.Printf("Warning: receipt email failed for donation %s: %v", donation.ID.Hex(), err)
		}
	}()
}

// GetDonation returns one donation by id
func (dc *DonationController) GetDonation(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid donation id",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	donation, err := dc.donations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondServiceError(c, services.ErrDonationNotFound)
		}
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Donation retrieved",
		Data:    donation,
	})
}
