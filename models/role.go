// models/role.go
package models

import "errors"

// Role is the closed set of user roles. Rank is derived solely from the role,
// never from tree position.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleCentralPresident  Role = "central_president"
	RoleStatePresident    Role = "state_president"
	RoleDistrictPresident Role = "district_president"
	RoleBlockCoordinator  Role = "block_coordinator"
	RolePrerak            Role = "prerak"
	RoleVolunteer         Role = "volunteer"
	RoleDonor             Role = "donor"
)

// ErrUnknownRole is returned for any role value outside the closed set above.
var ErrUnknownRole = errors.New("unknown role")

// roleRanks is the single authoritative ranking. Lower rank = more authority.
var roleRanks = map[Role]int{
	RoleAdmin:             0,
	RoleCentralPresident:  1,
	RoleStatePresident:    2,
	RoleDistrictPresident: 3,
	RoleBlockCoordinator:  4,
	RolePrerak:            5,
	RoleVolunteer:         6,
	RoleDonor:             7,
}

// RankOf returns the hierarchy rank of a role. It is total over the closed
// role set and fails with ErrUnknownRole for anything else.
func RankOf(r Role) (int, error) {
	rank, ok := roleRanks[r]
	if !ok {
		return 0, ErrUnknownRole
	}
	return rank, nil
}

// IsStrictlyAbove reports whether a outranks b. Unknown roles never outrank
// anything.
func IsStrictlyAbove(a, b Role) bool {
	ra, ok := roleRanks[a]
	if !ok {
		return false
	}
	rb, ok := roleRanks[b]
	if !ok {
		return false
	}
	return ra < rb
}

// ParseRole validates an externally supplied role string.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRanks[r]; !ok {
		return "", ErrUnknownRole
	}
	return r, nil
}

// IsCoordinator reports whether the role can own subordinates in the
// hierarchy tree.
func (r Role) IsCoordinator() bool {
	rank, ok := roleRanks[r]
	if !ok {
		return false
	}
	return rank <= roleRanks[RolePrerak]
}

// User status values
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusInactive  = "inactive"
)
