package sprouts_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bloomideas/sprout-engine/sprouts"
)

// =============================================================================
// TIER DERIVATION TESTS
// =============================================================================

func TestTierFor_Boundaries(t *testing.T) {
	cases := []struct {
		total     int64
		wantName  string
		wantLevel int
	}{
		{0, "Seed", 1},
		{49, "Seed", 1},
		{50, "Sprout", 2},
		{149, "Sprout", 2},
		{150, "Bloom", 3},
		{299, "Bloom", 3},
		{300, "Grove-Keeper", 4},
		{499, "Grove-Keeper", 4},
		{500, "Garden Master", 5},
		{10000, "Garden Master", 5},
	}

	for _, tc := range cases {
		tier := sprouts.TierFor(tc.total)
		assert.Equal(t, tc.wantName, tier.Name, "total=%d", tc.total)
		assert.Equal(t, tc.wantLevel, tier.Level, "total=%d", tc.total)
	}
}

func TestTierFor_NegativeTotalMapsToLowest(t *testing.T) {
	// A negative total is an upstream invariant violation; the mapping stays
	// total rather than panicking.
	tier := sprouts.TierFor(-10)
	assert.Equal(t, 1, tier.Level)
}

func TestTiers_StrictlyAscending(t *testing.T) {
	for i := 1; i < len(sprouts.Tiers); i++ {
		assert.Greater(t, sprouts.Tiers[i].MinPoints, sprouts.Tiers[i-1].MinPoints)
		assert.Equal(t, sprouts.Tiers[i-1].Level+1, sprouts.Tiers[i].Level)
	}
}

// =============================================================================
// NEXT TIER / PROGRESS TESTS
// =============================================================================

func TestNextTier_WalksTheTable(t *testing.T) {
	tier := sprouts.TierFor(0)
	steps := 0
	for {
		next, ok := sprouts.NextTier(tier)
		if !ok {
			break
		}
		assert.Equal(t, tier.Level+1, next.Level)
		tier = next
		steps++
	}
	assert.Equal(t, len(sprouts.Tiers)-1, steps)
	assert.Equal(t, "Garden Master", tier.Name)
}

func TestNextTier_TopTierHasNone(t *testing.T) {
	_, ok := sprouts.NextTier(sprouts.TierFor(500))
	assert.False(t, ok)
}

func TestTierProgress_AtThresholdIsZero(t *testing.T) {
	assert.Equal(t, "0", sprouts.TierProgress(0).String())
	assert.Equal(t, "0", sprouts.TierProgress(50).String())
	assert.Equal(t, "0", sprouts.TierProgress(150).String())
}

func TestTierProgress_Midway(t *testing.T) {
	// Seed spans 0..50; 25 sprouts is halfway.
	assert.Equal(t, "50", sprouts.TierProgress(25).String())
	// Sprout spans 50..150; 100 sprouts is halfway.
	assert.Equal(t, "50", sprouts.TierProgress(100).String())
}

func TestTierProgress_TopTierPinnedAtHundred(t *testing.T) {
	assert.Equal(t, "100", sprouts.TierProgress(500).String())
	assert.Equal(t, "100", sprouts.TierProgress(99999).String())
}

func TestTierProgress_BoundedZeroToHundred(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	for total := int64(0); total <= 600; total += 7 {
		pct := sprouts.TierProgress(total)
		assert.False(t, pct.IsNegative(), "total=%d", total)
		assert.True(t, pct.LessThanOrEqual(hundred), "total=%d", total)
	}
}
