// services/referral_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/repositories"
	"github.com/daansetu/daansetu_backend/utils"
)

const (
	// maxCodeGenerationAttempts bounds collision retries in GetOrCreate.
	maxCodeGenerationAttempts = 5

	resolveCacheTTL       = 10 * time.Minute
	resolveCacheKeyPrefix = "refcode:"
)

// ReferralService owns creation, uniqueness and resolution of referral codes.
// The referral_codes collection is the source of truth; the legacy
// User.referralCode field is honored on reads for pre-migration data.
type ReferralService struct {
	users repositories.UserStore
	codes repositories.ReferralCodeStore
	cache *redis.Client // nil disables caching
}

func NewReferralService(users repositories.UserStore, codes repositories.ReferralCodeStore, cache *redis.Client) *ReferralService {
	return &ReferralService{users: users, codes: codes, cache: cache}
}

// GetOrCreate returns the owner's referral code, creating it on first use.
// Idempotent: repeat calls, including concurrent ones, converge on a single
// code per owner.
func (s *ReferralService) GetOrCreate(ctx context.Context, ownerID primitive.ObjectID) (*models.ReferralCode, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	existing, err := s.codes.FindByOwner(ctx, ownerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	// Legacy path: the user document may carry a code that predates the
	// referral_codes collection. Adopt it instead of minting a second code.
	if owner.ReferralCode != "" {
		return s.adoptLegacyCode(ctx, owner)
	}

	parentCodeID, err := s.parentCodeID(ctx, owner)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeGenerationAttempts; attempt++ {
		candidate, err := utils.GenerateReferralCode(owner.Role, owner.State)
		if err != nil {
			return nil, err
		}

		taken, err := s.codeTaken(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		rc := &models.ReferralCode{
			Code:         candidate,
			OwnerUserID:  owner.ID,
			Type:         models.CodeTypeForRole(owner.Role),
			ParentCodeID: parentCodeID,
			Active:       true,
		}

		err = s.codes.Insert(ctx, rc)
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// Either the code string collided or a concurrent request
			// created the owner's code first. The owner probe decides.
			winner, findErr := s.codes.FindByOwner(ctx, ownerID)
			if findErr == nil {
				return winner, nil
			}
			if !errors.Is(findErr, repositories.ErrNotFound) {
				return nil, findErr
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		// Sync the read-only cache field on the user document
		if err := s.users.SetReferralCode(ctx, owner.ID, candidate); err != nil {
			log.Printf("Warning: failed to sync referral code to user %s: %v", owner.ID.Hex(), err)
		}
		return rc, nil
	}

	return nil, ErrCodeGenerationExhausted
}

// Resolve looks up a referral code, case-insensitively. Returns (nil, nil)
// on not-found; callers decide whether that is an error.
func (s *ReferralService) Resolve(ctx context.Context, codeString string) (*models.ReferralCode, error) {
	canonical := utils.CanonicalizeCode(codeString)
	if canonical == "" {
		return nil, nil
	}

	if cached := s.cacheGet(ctx, canonical); cached != nil {
		return cached, nil
	}

	rc, err := s.codes.FindByCode(ctx, canonical)
	if err == nil {
		s.cacheSet(ctx, canonical, rc)
		return rc, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	// Legacy fallback: the code may only exist on a user document
	user, err := s.users.FindByReferralCode(ctx, canonical)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	// Synthesized, not persisted: the migration shim writes rows only via
	// GetOrCreate
	return &models.ReferralCode{
		Code:        canonical,
		OwnerUserID: user.ID,
		Type:        models.CodeTypeForRole(user.Role),
		Active:      user.Status == models.StatusActive,
	}, nil
}

// DeactivateForOwner deactivates the owner's code, if any. Codes are never
// deleted. A missing code is not an error.
func (s *ReferralService) DeactivateForOwner(ctx context.Context, ownerID primitive.ObjectID) error {
	rc, err := s.codes.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.codes.Deactivate(ctx, rc.ID); err != nil {
		return err
	}
	s.cacheInvalidate(ctx, rc.Code)
	return nil
}

// RecordUsage bumps the code's running totals for one successful donation.
func (s *ReferralService) RecordUsage(ctx context.Context, codeID primitive.ObjectID, amount int64) error {
	return s.codes.IncrementUsage(ctx, codeID, amount)
}

func (s *ReferralService) adoptLegacyCode(ctx context.Context, owner *models.User) (*models.ReferralCode, error) {
	canonical := utils.CanonicalizeCode(owner.ReferralCode)

	parentCodeID, err := s.parentCodeID(ctx, owner)
	if err != nil {
		return nil, err
	}

	rc := &models.ReferralCode{
		Code:         canonical,
		OwnerUserID:  owner.ID,
		Type:         models.CodeTypeForRole(owner.Role),
		ParentCodeID: parentCodeID,
		Active:       owner.Status == models.StatusActive,
	}

	err = s.codes.Insert(ctx, rc)
	if errors.Is(err, repositories.ErrDuplicateKey) {
		winner, findErr := s.codes.FindByOwner(ctx, owner.ID)
		if findErr == nil {
			return winner, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// parentCodeID resolves the shadow-tree back-reference. A parent without a
// code yet is tolerated, never back-filled.
func (s *ReferralService) parentCodeID(ctx context.Context, owner *models.User) (*primitive.ObjectID, error) {
	if owner.ParentCoordinatorID == nil {
		return nil, nil
	}
	parentCode, err := s.codes.FindByOwner(ctx, *owner.ParentCoordinatorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &parentCode.ID, nil
}

// codeTaken probes both storage locations for the candidate.
func (s *ReferralService) codeTaken(ctx context.Context, candidate string) (bool, error) {
	_, err := s.codes.FindByCode(ctx, candidate)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}

	_, err = s.users.FindByReferralCode(ctx, candidate)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return false, err
	}
	return false, nil
}

func (s *ReferralService) cacheGet(ctx context.Context, canonical string) *models.ReferralCode {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, resolveCacheKeyPrefix+canonical).Result()
	if err != nil {
		return nil
	}
	var rc models.ReferralCode
	if err := json.Unmarshal([]byte(raw), &rc); err != nil {
		return nil
	}
	return &rc
}

func (s *ReferralService) cacheSet(ctx context.Context, canonical string, rc *models.ReferralCode) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(rc)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, resolveCacheKeyPrefix+canonical, raw, resolveCacheTTL).Err(); err != nil {
		log.Printf("Warning: failed to cache referral code %s: %v", canonical, err)
	}
}

func (s *ReferralService) cacheInvalidate(ctx context.Context, canonical string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, resolveCacheKeyPrefix+canonical).Err(); err != nil {
		log.Printf("Warning: failed to invalidate referral code cache %s: %v", canonical, err)
	}
}
