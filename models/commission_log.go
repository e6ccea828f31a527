// models/commission_log.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommissionLog records one beneficiary's share of a distributed donation.
// Level is the distance from the attributed user up the ancestor chain
// (level 0 = the attributed user).
type CommissionLog struct {
	ID            primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	DonationID    primitive.ObjectID `json:"donationId" bson:"donationId"`
	UserID        primitive.ObjectID `json:"userId" bson:"userId"`
	Amount        int64              `json:"amount" bson:"amount"`
	Level         int                `json:"level" bson:"level"`
	Paid          bool               `json:"paid" bson:"paid"`
	PaidAt        *time.Time         `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
	TransactionID string             `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	PaymentMethod string             `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

type MarkCommissionPaidRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required"`
}
