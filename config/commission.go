// config/commission.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMaxChainDepth bounds the ancestor walk during distribution even when
// the rate table is longer than any sane hierarchy.
const DefaultMaxChainDepth = 8

var oneHundred = decimal.NewFromInt(100)

// CommissionConfig holds the per-level commission rate table. Level 0 is the
// attributed user, level 1 their parent coordinator, and so on. Rates are
// configuration, never computed.
type CommissionConfig struct {
	LevelPercents []decimal.Decimal
	MaxChainDepth int
}

// LoadCommissionConfig reads COMMISSION_LEVEL_PERCENTS (comma-separated
// percentages, level 0 first, e.g. "10,5,2.5") and COMMISSION_MAX_DEPTH.
func LoadCommissionConfig() (CommissionConfig, error) {
	raw := os.Getenv("COMMISSION_LEVEL_PERCENTS")
	if raw == "" {
		return CommissionConfig{}, fmt.Errorf("COMMISSION_LEVEL_PERCENTS environment variable is required")
	}

	var percents []decimal.Decimal
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pct, err := decimal.NewFromString(part)
		if err != nil {
			return CommissionConfig{}, fmt.Errorf("invalid commission percent %q: %w", part, err)
		}
		if pct.IsNegative() {
			return CommissionConfig{}, fmt.Errorf("commission percent %q must not be negative", part)
		}
		percents = append(percents, pct)
	}
	if len(percents) == 0 {
		return CommissionConfig{}, fmt.Errorf("COMMISSION_LEVEL_PERCENTS contains no rates")
	}

	// The organization fund is the remainder; the table must leave one.
	sum := decimal.Zero
	for _, pct := range percents {
		sum = sum.Add(pct)
	}
	if sum.GreaterThan(oneHundred) {
		return CommissionConfig{}, fmt.Errorf("commission percents sum to %s, must not exceed 100", sum)
	}

	maxDepth := DefaultMaxChainDepth
	if depthStr := os.Getenv("COMMISSION_MAX_DEPTH"); depthStr != "" {
		depth, err := strconv.Atoi(depthStr)
		if err != nil || depth <= 0 {
			return CommissionConfig{}, fmt.Errorf("invalid COMMISSION_MAX_DEPTH %q", depthStr)
		}
		maxDepth = depth
	}

	return CommissionConfig{LevelPercents: percents, MaxChainDepth: maxDepth}, nil
}

// NewCommissionConfig builds a config from explicit percentages.
func NewCommissionConfig(percents []float64, maxDepth int) CommissionConfig {
	levels := make([]decimal.Decimal, len(percents))
	for i, pct := range percents {
		levels[i] = decimal.NewFromFloat(pct)
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxChainDepth
	}
	return CommissionConfig{LevelPercents: levels, MaxChainDepth: maxDepth}
}

// LevelAmount computes the commission in paise for one level, rounding down.
// The remainder after all levels goes to the organization fund, so flooring
// keeps the fund non-negative.
func (c CommissionConfig) LevelAmount(amount int64, level int) int64 {
	if level < 0 || level >= len(c.LevelPercents) {
		return 0
	}
	return decimal.NewFromInt(amount).
		Mul(c.LevelPercents[level]).
		Div(oneHundred).
		Floor().
		IntPart()
}

// Levels returns the number of configured commission levels.
func (c CommissionConfig) Levels() int {
	return len(c.LevelPercents)
}
