/*
rank.go - Hot-score ordering for the idea feed

PURPOSE:
  The feed orders ideas by a weighted blend of community signals: nurtures
  weigh most, builder interest and discussion slightly less. Weights are
  fractional, so the blend is computed with decimals and rounded once at the
  end rather than accumulating float error.
*/
package garden

import "github.com/shopspring/decimal"

var (
	weightNurtures = decimal.NewFromFloat(0.4)
	weightInterest = decimal.NewFromFloat(0.3)
	weightComments = decimal.NewFromFloat(0.3)
	hotScoreScale  = decimal.NewFromInt(10)
)

// HotScore blends a project's counts into a single feed-ranking integer:
// round((nurtures*0.4 + interest*0.3 + comments*0.3) * 10).
func HotScore(c ProjectCounts) int64 {
	score := decimal.NewFromInt(int64(c.Nurtures)).Mul(weightNurtures).
		Add(decimal.NewFromInt(int64(c.JoinRequests)).Mul(weightInterest)).
		Add(decimal.NewFromInt(int64(c.Comments)).Mul(weightComments)).
		Mul(hotScoreScale)
	return score.Round(0).IntPart()
}
