package services

import "errors"

// Error kinds surfaced by the core services. Controllers map these onto HTTP
// status codes; none is ever silently swallowed.
var (
	// ErrUnauthorized means the caller's rank is insufficient for the
	// requested hierarchy mutation.
	ErrUnauthorized = errors.New("caller rank insufficient")

	// ErrInvalidOrInactiveReferralCode rejects an order whose referral code
	// cannot be resolved or is no longer active. Checked before payment,
	// never after.
	ErrInvalidOrInactiveReferralCode = errors.New("invalid or inactive referral code")

	// ErrCodeGenerationExhausted is returned after the bounded number of
	// candidate-code collisions.
	ErrCodeGenerationExhausted = errors.New("referral code generation exhausted")

	ErrUserNotFound          = errors.New("user not found")
	ErrDonationNotFound      = errors.New("donation not found")
	ErrCommissionLogNotFound = errors.New("commission log not found")

	// ErrNotPending rejects approval of a user who already left the pending
	// state.
	ErrNotPending = errors.New("user is not pending approval")

	ErrAlreadyDistributed = errors.New("donation already distributed")
	ErrNotSuccessful      = errors.New("donation payment not successful")
	ErrUnattributed       = errors.New("donation has no attributed user")
	ErrAlreadyPaid        = errors.New("commission already paid")

	// ErrCycleDetected signals corrupted hierarchy data: a user appeared in
	// its own ancestor chain, or traversal blew through its ceiling. Fatal,
	// not recoverable.
	ErrCycleDetected = errors.New("cycle detected in hierarchy")
)
