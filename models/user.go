// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID                  primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Email               string              `json:"email" bson:"email"`
	Password            string              `json:"password,omitempty" bson:"password"`
	FullName            string              `json:"fullName" bson:"fullName"`
	Phone               string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Role                Role                `json:"role" bson:"role"`
	Status              string              `json:"status" bson:"status"`
	ParentCoordinatorID *primitive.ObjectID `json:"parentCoordinatorId,omitempty" bson:"parentCoordinatorId,omitempty"`
	// ReferralCode is a read-only cache of the user's own code. The
	// referral_codes collection is the source of truth; this field is only
	// written by the registry when the code is first created.
	ReferralCode string    `json:"referralCode,omitempty" bson:"referralCode,omitempty"`
	State        string    `json:"state,omitempty" bson:"state,omitempty"`
	District     string    `json:"district,omitempty" bson:"district,omitempty"`
	Block        string    `json:"block,omitempty" bson:"block,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type SignupRequest struct {
	FullName string `json:"fullName" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role" validate:"required"`
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Block    string `json:"block,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TeamMemberQuery struct {
	Page       int    `query:"page"`
	Limit      int    `query:"limit"`
	DirectOnly bool   `query:"directOnly"`
	Role       string `query:"role"`
	Status     string `query:"status"`
}
