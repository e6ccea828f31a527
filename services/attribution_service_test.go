package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daansetu/daansetu_backend/models"
)

func newAttributionFixture() (*fakeUserStore, *ReferralService, *AttributionService) {
	users := newFakeUserStore()
	codes := newFakeCodeStore()
	referrals := NewReferralService(users, codes, nil)
	return users, referrals, NewAttributionService(users, referrals)
}

func TestAttribute_ReferralCodeWins(t *testing.T) {
	users, referrals, svc := newAttributionFixture()
	codeOwner := users.add(models.User{
		FullName: "Code Owner",
		Email:    "codeowner@example.org",
		Role:     models.RolePrerak,
		Status:   models.StatusActive,
	})
	directReferrer := users.add(models.User{
		FullName: "Direct Referrer",
		Email:    "direct@example.org",
		Role:     models.RoleVolunteer,
		Status:   models.StatusActive,
	})

	rc, err := referrals.GetOrCreate(context.Background(), codeOwner.ID)
	require.NoError(t, err)

	// Both hints present: the code decides, not the direct referrer
	result, err := svc.Attribute(context.Background(), AttributionInput{
		ReferralCode: rc.Code,
		ReferredBy:   &directReferrer.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.AttributedTo)
	assert.Equal(t, codeOwner.ID, *result.AttributedTo)
	require.NotNil(t, result.ReferralCodeID)
	assert.Equal(t, rc.ID, *result.ReferralCodeID)
}

func TestAttribute_UnknownCodeIsHardFailure(t *testing.T) {
	users, _, svc := newAttributionFixture()
	referrer := users.add(models.User{
		FullName: "Fallback Referrer",
		Email:    "fallback@example.org",
		Role:     models.RoleVolunteer,
		Status:   models.StatusActive,
	})

	// A bad code must not fall through to the direct referrer
	_, err := svc.Attribute(context.Background(), AttributionInput{
		ReferralCode: "XXIN-UNKNOWN",
		ReferredBy:   &referrer.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidOrInactiveReferralCode)
}

func TestAttribute_InactiveCodeIsHardFailure(t *testing.T) {
	users, referrals, svc := newAttributionFixture()
	owner := users.add(models.User{
		FullName: "Retired Owner",
		Email:    "retired@example.org",
		Role:     models.RoleBlockCoordinator,
		Status:   models.StatusActive,
	})

	rc, err := referrals.GetOrCreate(context.Background(), owner.ID)
	require.NoError(t, err)
	require.NoError(t, referrals.DeactivateForOwner(context.Background(), owner.ID))

	_, err = svc.Attribute(context.Background(), AttributionInput{ReferralCode: rc.Code})
	assert.ErrorIs(t, err, ErrInvalidOrInactiveReferralCode)
}

func TestAttribute_DirectReferrer(t *testing.T) {
	users, _, svc := newAttributionFixture()
	referrer := users.add(models.User{
		FullName: "Active Referrer",
		Email:    "active@example.org",
		Role:     models.RoleVolunteer,
		Status:   models.StatusActive,
	})

	result, err := svc.Attribute(context.Background(), AttributionInput{ReferredBy: &referrer.ID})
	require.NoError(t, err)
	require.NotNil(t, result.AttributedTo)
	assert.Equal(t, referrer.ID, *result.AttributedTo)
	assert.Nil(t, result.ReferralCodeID)
}

func TestAttribute_UnknownDirectReferrerUnattributed(t *testing.T) {
	_, _, svc := newAttributionFixture()
	ghost := newObjectID()

	result, err := svc.Attribute(context.Background(), AttributionInput{ReferredBy: &ghost})
	require.NoError(t, err)
	assert.Nil(t, result.AttributedTo)
}

func TestAttribute_InactiveDirectReferrerUnattributed(t *testing.T) {
	users, _, svc := newAttributionFixture()
	referrer := users.add(models.User{
		FullName: "Pending Referrer",
		Email:    "pending@example.org",
		Role:     models.RoleVolunteer,
		Status:   models.StatusPending,
	})

	result, err := svc.Attribute(context.Background(), AttributionInput{ReferredBy: &referrer.ID})
	require.NoError(t, err)
	assert.Nil(t, result.AttributedTo)
}

func TestAttribute_NoHintsUnattributed(t *testing.T) {
	_, _, svc := newAttributionFixture()

	result, err := svc.Attribute(context.Background(), AttributionInput{})
	require.NoError(t, err)
	assert.Nil(t, result.AttributedTo)
	assert.Nil(t, result.ReferralCodeID)
}
