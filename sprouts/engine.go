/*
engine.go - The four pure decision functions of the accounting core

PURPOSE:
  Everything the platform needs to decide about sprouts is computed here,
  with no I/O. Orchestrators call these functions and then perform the ledger
  mutations the results prescribe. Centralizing the rules means each amount
  literal and schedule exists in exactly one place.

THE FOUR DECISIONS:
  PointsForSubmission: reward for planting an idea, escalating with count
  TierFor:             reputation tier derived from a running total (tiers.go)
  CommentCost:         price of the next comment, decreasing with usage
  CareDelta:           ledger mutations accompanying a care-action transition

NOTE ON THE SUBMISSION SCHEDULE:
  Rewarding more for later submissions is unusual for a reputation system.
  The schedule is preserved exactly as the product defines it; nothing here
  assumes it is spam-resistant.
*/
package sprouts

// =============================================================================
// SUBMISSION REWARD
// =============================================================================

// SubmissionBase is the reward for a gardener's first planted idea.
const SubmissionBase = 50

// SubmissionStep is the additional reward per previously planted idea.
const SubmissionStep = 10

// PointsForSubmission returns the sprouts earned for planting an idea given
// how many ideas the gardener already owns. The count excludes the idea being
// created and must be non-negative; negative inputs are treated as zero.
func PointsForSubmission(priorSubmissions int) int64 {
	if priorSubmissions < 0 {
		priorSubmissions = 0
	}
	return int64(SubmissionBase + SubmissionStep*priorSubmissions)
}

// =============================================================================
// COMMENT COST
// =============================================================================

// CommentCost returns the sprout price of the gardener's next comment on an
// idea, given how many comments they have already posted on it. The schedule
// decreases with usage: first comment 5, second 4, everything after 3.
func CommentCost(priorComments int) int64 {
	switch {
	case priorComments <= 0:
		return 5
	case priorComments == 1:
		return 4
	default:
		return 3
	}
}

// =============================================================================
// CARE-ACTION TRANSITIONS
// =============================================================================

// CareDelta describes the ledger mutations that must accompany a care-action
// transition. Grant, when non-nil, is the amount to insert under the nurture
// reason tied to the idea. Revoke means delete the rows matching
// (user, nurture, idea) first; deleting rows that do not exist is a no-op, so
// applying the same delta twice cannot double-revoke.
type CareDelta struct {
	Grant  *int64
	Revoke bool
}

// NurtureReward is the sprouts earned for each nurture.
const NurtureReward int64 = 1

// CareTransition computes the delta for moving a (idea, gardener) pair from
// previous to next. nil means "no action": (nil, action) is a first reaction,
// (action, nil) a retraction, and repeating the stored action also retracts.
//
//	previous  next      effect
//	none      nurture   grant +1 nurture
//	none      neglect   nothing
//	nurture   none      revoke the nurture grant
//	nurture   nurture   retraction: revoke the nurture grant
//	nurture   neglect   revoke, no grant for neglect
//	neglect   none      nothing to revoke
//	neglect   neglect   retraction: nothing to revoke
//	neglect   nurture   grant +1 nurture
func CareTransition(previous, next *CareAction) CareDelta {
	wasNurture := previous != nil && *previous == CareNurture
	// Repeating the stored action is a retraction.
	if previous != nil && next != nil && *previous == *next {
		next = nil
	}
	becomesNurture := next != nil && *next == CareNurture

	delta := CareDelta{}
	if wasNurture && !becomesNurture {
		delta.Revoke = true
	}
	if becomesNurture && !wasNurture {
		amount := NurtureReward
		delta.Grant = &amount
	}
	return delta
}
