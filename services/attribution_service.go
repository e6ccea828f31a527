// services/attribution_service.go
package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/repositories"
)

// AttributionInput carries the two possible attribution hints on a donation.
type AttributionInput struct {
	ReferralCode string
	ReferredBy   *primitive.ObjectID
}

// Attribution is the resolver's outcome. AttributedTo is nil for a general,
// unattributed donation (a valid terminal state). ReferralCodeID is set only
// when attribution came through a persisted code row.
type Attribution struct {
	AttributedTo   *primitive.ObjectID
	ReferralCodeID *primitive.ObjectID
}

// AttributionService determines the single user a donation is attributed to.
type AttributionService struct {
	users     repositories.UserStore
	referrals *ReferralService
}

func NewAttributionService(users repositories.UserStore, referrals *ReferralService) *AttributionService {
	return &AttributionService{users: users, referrals: referrals}
}

// Attribute resolves attribution in strict order: referral code first, then
// direct referrer, then none. An unknown or inactive referral code is a hard
// failure so that attribution integrity is enforced before payment.
func (s *AttributionService) Attribute(ctx context.Context, in AttributionInput) (Attribution, error) {
	if in.ReferralCode != "" {
		rc, err := s.referrals.Resolve(ctx, in.ReferralCode)
		if err != nil {
			return Attribution{}, err
		}
		if rc == nil || !rc.Active {
			return Attribution{}, ErrInvalidOrInactiveReferralCode
		}

		attribution := Attribution{AttributedTo: &rc.OwnerUserID}
		if !rc.ID.IsZero() {
			id := rc.ID
			attribution.ReferralCodeID = &id
		}
		return attribution, nil
	}

	if in.ReferredBy != nil {
		user, err := s.users.FindByID(ctx, *in.ReferredBy)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				// Unknown direct referrer falls through to unattributed
				return Attribution{}, nil
			}
			return Attribution{}, err
		}
		if user.Status == models.StatusActive {
			id := user.ID
			return Attribution{AttributedTo: &id}, nil
		}
	}

	return Attribution{}, nil
}
