package utils

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"github.com/daansetu/daansetu_backend/models"
)

// rolePrefixes gives each role a short code prefix so a referral code hints
// at who issued it. Donors never issue codes but get a prefix anyway so
// generation stays total.
var rolePrefixes = map[models.Role]string{
	models.RoleAdmin:             "AD",
	models.RoleCentralPresident:  "CP",
	models.RoleStatePresident:    "SP",
	models.RoleDistrictPresident: "DP",
	models.RoleBlockCoordinator:  "BC",
	models.RolePrerak:            "PR",
	models.RoleVolunteer:         "VL",
	models.RoleDonor:             "DN",
}

// GenerateReferralCode produces a candidate referral code for the given role
// and region. Format: {ROLE}{REGION}-{RANDOM} where RANDOM is 6 alphanumeric
// characters. Example: BCMH-X3K9Q2. Candidates are not guaranteed unique;
// the registry retries on collision.
func GenerateReferralCode(role models.Role, region string) (string, error) {
	randomBytes := make([]byte, 4)
	_, err := rand.Read(randomBytes)
	if err != nil {
		return "", err
	}

	// Base32 keeps the tail alphanumeric and case-free
	randomStr := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	randomStr = strings.ToUpper(randomStr)
	if len(randomStr) > 6 {
		randomStr = randomStr[:6]
	}
	if len(randomStr) < 6 {
		randomStr = randomStr + strings.Repeat("0", 6-len(randomStr))
	}

	prefix, ok := rolePrefixes[role]
	if !ok {
		prefix = "XX"
	}

	return prefix + regionTag(region) + "-" + randomStr, nil
}

// CanonicalizeCode normalizes externally supplied codes for lookup.
func CanonicalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// regionTag derives a two-letter tag from the region name ("Maharashtra" ->
// "MA"). Empty or too-short regions fall back to "IN".
func regionTag(region string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			return r
		}
		return -1
	}, region)

	if len(cleaned) < 2 {
		return "IN"
	}
	return strings.ToUpper(cleaned[:2])
}
