package domain

import (
	"fmt"
	"math/bits"
)

// MaxLevel is the highest reachable alpha level.
const MaxLevel = 20

// TierEntry is one row of the level table: reaching RequiredAmount of
// cumulative qualifying volume unlocks Level.
type TierEntry struct {
	Level          int     `json:"level"`
	RequiredAmount float64 `json:"requiredAmount"`
}

// tierAmounts[L] = 2^L for L in [1, MaxLevel]. Index 0 is unused.
var tierAmounts = func() [MaxLevel + 1]uint64 {
	var t [MaxLevel + 1]uint64
	for l := 1; l <= MaxLevel; l++ {
		t[l] = 1 << uint(l)
	}
	return t
}()

// AmountForLevel returns the cumulative amount required for level.
func AmountForLevel(level int) (float64, error) {
	if level < 1 || level > MaxLevel {
		return 0, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidLevel, level, MaxLevel)
	}
	return float64(tierAmounts[level]), nil
}

// LevelForAmount maps a cumulative amount to its level. The result is the
// highest level whose required amount does not exceed amount, so exact
// table values round-trip.
func LevelForAmount(amount float64) int {
	if !(amount >= float64(tierAmounts[1])) {
		return 0
	}
	if amount >= float64(tierAmounts[MaxLevel]) {
		return MaxLevel
	}
	// floor(log2(n)) for an integer n is its bit length minus one.
	return bits.Len64(uint64(amount)) - 1
}

// Tiers returns a copy of the level table.
func Tiers() []TierEntry {
	out := make([]TierEntry, 0, MaxLevel)
	for l := 1; l <= MaxLevel; l++ {
		out = append(out, TierEntry{Level: l, RequiredAmount: float64(tierAmounts[l])})
	}
	return out
}
