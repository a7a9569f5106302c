/*
Package sprouts implements the reputation accounting core of Bloom Ideas.

PURPOSE:
  Sprouts are the reputation currency of the platform. Every rewarded or
  charged action is recorded as an immutable row in a point ledger, a
  per-user aggregate is derived from that ledger, and a reputation tier is
  derived from the aggregate total. This package holds the rules that decide
  how many sprouts an action is worth, what the next privileged action costs,
  which tier a total maps to, and which ledger mutations must accompany a
  care-action transition.

KEY CONCEPTS IN THIS FILE (types.go):
  - Address: a gardener's wallet address, the user identity everywhere
  - PointGrant: an immutable ledger row (who, why, how much, about what)
  - Aggregate: per-user rollup of the ledger (cache, never source of truth)
  - CareAction: a gardener's reaction to an idea (nurture or neglect)

DESIGN PRINCIPLES:
  1. Immutability: grants are never edited; reversal deletes matching rows
  2. Purity: every decision function is side-effect free; orchestrators do I/O
  3. Recomputability: the aggregate must always equal a replay of the ledger

SEE ALSO:
  - engine.go: the four decision functions
  - catalog.go: reason-name to reason-code resolution
  - ledger.go: persistence interface and aggregation reader
  - tiers.go: the reputation tier table
*/
package sprouts

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Address is a gardener's wallet address. Addresses are compared verbatim;
// callers are expected to lowercase before handing them to this package.
type Address string

// ReasonName is the symbolic name for why a grant exists ("nurture",
// "plant_idea", ...). The engine speaks in names; the store speaks in codes.
type ReasonName string

// ReasonCode is the catalog-resolved identifier stored as a foreign key on
// every ledger row.
type ReasonCode int64

// Reason names known to the engine. The backing catalog must contain an entry
// for each of these or Resolve fails at startup.
const (
	ReasonNurture      ReasonName = "nurture"
	ReasonNeglect      ReasonName = "neglect"
	ReasonPlantIdea    ReasonName = "plant_idea"
	ReasonComment      ReasonName = "comment"
	ReasonCommentFee   ReasonName = "comment_fee"
	ReasonBuildRequest ReasonName = "build_request"
	ReasonInvite       ReasonName = "invite"
)

// AllReasons lists every reason name the engine can emit, in catalog order.
func AllReasons() []ReasonName {
	return []ReasonName{
		ReasonNurture,
		ReasonNeglect,
		ReasonPlantIdea,
		ReasonComment,
		ReasonCommentFee,
		ReasonBuildRequest,
		ReasonInvite,
	}
}

// =============================================================================
// POINT GRANT - One immutable ledger row
// =============================================================================

// PointGrant records a single sprout earning (or fee) event. A grant is
// immutable once created; reversal is performed by deleting matching rows,
// never by negating a row in place.
type PointGrant struct {
	ID        string
	User      Address
	Reason    ReasonCode
	Amount    int64 // signed; positive under all current rules
	RelatedID *int64
	CreatedAt time.Time
}

// =============================================================================
// AGGREGATE - Per-user rollup, derived from the ledger
// =============================================================================

// Aggregate is the per-user rollup the rest of the system reads. It is a
// cache: Total must always equal the sum of the user's ledger rows, and
// ByReason the per-reason sums. A user with no rows has the zero Aggregate.
type Aggregate struct {
	User     Address
	Total    int64
	ByReason map[ReasonName]int64
}

// Count returns the aggregated amount for one reason, zero when absent.
func (a Aggregate) Count(reason ReasonName) int64 {
	return a.ByReason[reason]
}

// =============================================================================
// CARE ACTION - Reaction to an idea, one per (idea, gardener)
// =============================================================================

// CareAction is a gardener's reaction to an idea. At most one exists per
// (idea, gardener) pair; a second reaction flips it, repeating the same
// reaction retracts it.
type CareAction string

const (
	CareNurture CareAction = "nurture"
	CareNeglect CareAction = "neglect"
)
