// models/referral_code.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Referral code types, derived from the owner's role.
const (
	CodeTypeCoordinator    = "COORDINATOR"
	CodeTypeSubCoordinator = "SUB_COORDINATOR"
)

// ReferralCode is the durable attribution token. Exactly one code exists per
// owner; codes are deactivated, never deleted.
type ReferralCode struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Code        string             `json:"code" bson:"code"`
	OwnerUserID primitive.ObjectID `json:"ownerUserId" bson:"ownerUserId"`
	Type        string             `json:"type" bson:"type"`
	// ParentCodeID mirrors the owner's parentCoordinatorId as a shadow tree of
	// codes. Traversal convenience only; permissions always come from roles.
	ParentCodeID   *primitive.ObjectID `json:"parentCodeId,omitempty" bson:"parentCodeId,omitempty"`
	Active         bool                `json:"active" bson:"active"`
	TotalDonations int64               `json:"totalDonations" bson:"totalDonations"`
	TotalAmount    int64               `json:"totalAmount" bson:"totalAmount"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// CodeTypeForRole maps an owner role to the referral code type.
func CodeTypeForRole(r Role) string {
	if r.IsCoordinator() && r != RolePrerak {
		return CodeTypeCoordinator
	}
	return CodeTypeSubCoordinator
}
