/*
tiers.go - Reputation tiers derived from sprout totals

PURPOSE:
  Maps a sprout total to a named reputation tier and computes progress toward
  the next one. The table is a compile-time constant, strictly increasing in
  both level and threshold.

DERIVATION:
  A gardener's tier is the highest tier whose threshold their total meets.
  Level 1 has threshold 0, so every non-negative total maps to a tier.
  Progress is derived on demand, never stored.
*/
package sprouts

import "github.com/shopspring/decimal"

// Tier is one named reputation rank.
type Tier struct {
	Name      string
	Level     int
	MinPoints int64
}

// Tiers is the static tier table, ascending. Do not reorder.
var Tiers = []Tier{
	{Name: "Seed", Level: 1, MinPoints: 0},
	{Name: "Sprout", Level: 2, MinPoints: 50},
	{Name: "Bloom", Level: 3, MinPoints: 150},
	{Name: "Grove-Keeper", Level: 4, MinPoints: 300},
	{Name: "Garden Master", Level: 5, MinPoints: 500},
}

// TierFor returns the highest tier whose threshold totalPoints meets.
// Totals must be non-negative; a negative total is an upstream invariant
// violation and maps to the lowest tier rather than panicking.
func TierFor(totalPoints int64) Tier {
	for i := len(Tiers) - 1; i >= 0; i-- {
		if totalPoints >= Tiers[i].MinPoints {
			return Tiers[i]
		}
	}
	return Tiers[0]
}

// NextTier returns the tier after t, or false when t is the top tier.
func NextTier(t Tier) (Tier, bool) {
	if t.Level >= Tiers[len(Tiers)-1].Level {
		return Tier{}, false
	}
	return Tiers[t.Level], true // Level is 1-based, Tiers is 0-based
}

// TierProgress returns the percentage of the way from the current tier's
// threshold to the next tier's, 0..100. At the top tier there is nothing
// left to earn and progress is pinned at 100.
func TierProgress(totalPoints int64) decimal.Decimal {
	current := TierFor(totalPoints)
	next, ok := NextTier(current)
	if !ok {
		return decimal.NewFromInt(100)
	}

	earned := decimal.NewFromInt(totalPoints - current.MinPoints)
	span := decimal.NewFromInt(next.MinPoints - current.MinPoints)
	pct := earned.Div(span).Mul(decimal.NewFromInt(100))

	hundred := decimal.NewFromInt(100)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	if pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}
