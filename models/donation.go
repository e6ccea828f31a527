// models/donation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment status values
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// Donation is a single payment event. Amount is in paise (smallest currency
// unit), matching the gateway's integer-amount convention.
type Donation struct {
	ID               primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Amount           int64               `json:"amount" bson:"amount"`
	Currency         string              `json:"currency" bson:"currency"`
	ProgramID        *primitive.ObjectID `json:"programId,omitempty" bson:"programId,omitempty"`
	DonorName        string              `json:"donorName,omitempty" bson:"donorName,omitempty"`
	DonorEmail       string              `json:"donorEmail,omitempty" bson:"donorEmail,omitempty"`
	PaymentStatus    string              `json:"paymentStatus" bson:"paymentStatus"`
	GatewayOrderID   string              `json:"gatewayOrderId" bson:"gatewayOrderId"`
	GatewayPaymentID string              `json:"gatewayPaymentId,omitempty" bson:"gatewayPaymentId,omitempty"`
	Receipt          string              `json:"receipt" bson:"receipt"`
	ReferralCodeID   *primitive.ObjectID `json:"referralCodeId,omitempty" bson:"referralCodeId,omitempty"`
	// ReferredBy is the legacy direct-referrer attribution path, used when no
	// referral code accompanies the donation.
	ReferredBy                 *primitive.ObjectID `json:"referredBy,omitempty" bson:"referredBy,omitempty"`
	AttributedTo               *primitive.ObjectID `json:"attributedTo,omitempty" bson:"attributedTo,omitempty"`
	Distributed                bool                `json:"distributed" bson:"distributed"`
	DistributedAt              *time.Time          `json:"distributedAt,omitempty" bson:"distributedAt,omitempty"`
	TotalCommissionDistributed int64               `json:"totalCommissionDistributed" bson:"totalCommissionDistributed"`
	OrganizationFundAmount     int64               `json:"organizationFundAmount" bson:"organizationFundAmount"`
	CreatedAt                  time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt                  time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type CreateDonationRequest struct {
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	Currency     string `json:"currency,omitempty"`
	ProgramID    string `json:"programId,omitempty"`
	ReferralCode string `json:"referralCode,omitempty"`
	ReferredBy   string `json:"referredBy,omitempty"`
	DonorName    string `json:"donorName,omitempty"`
	DonorEmail   string `json:"donorEmail,omitempty" validate:"omitempty,email"`
}

// DonationOrderResponse is the order handle returned to the checkout page.
type DonationOrderResponse struct {
	DonationID     string `json:"donationId"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	KeyID          string `json:"keyId"`
}
