/*
ledger.go - Ledger persistence interface and the aggregation reader

PURPOSE:
  The Ledger is the source of truth for all sprout balances. Grants are
  inserted when an action is rewarded or charged and deleted only when the
  triggering action is itself undone. There is no update: a row either exists
  or it does not.

REVOCATION CONTRACT:
  DeleteMatching removes the specific rows matching (user, reason, related
  entity), not a blind decrement. Deleting rows that are not there is a no-op
  rather than an error, which makes revocation safe to retry and keeps the
  ledger auditable.

AGGREGATE CONTRACT:
  Aggregate reads the per-user rollup. Absence of rows is a valid zero state
  for a brand-new gardener, never an error. The rollup is a cache: callers
  that just wrote a grant re-read it rather than incrementing an in-memory
  copy, so the ledger and the numbers users see cannot drift apart.

SEE ALSO:
  - store/memory.go: in-memory implementation for tests and dev
  - ../store/sqlite: production implementation with a materialized rollup
*/
package sprouts

import "context"

// =============================================================================
// LEDGER - Persistence collaborator
// =============================================================================

// Ledger persists point grants and serves the per-user rollup.
type Ledger interface {
	// Insert appends one grant. Grants are immutable once inserted.
	Insert(ctx context.Context, grant PointGrant) error

	// DeleteMatching removes every grant matching (user, reason, relatedID).
	// Matching zero rows is a no-op. This is the only way a row leaves the
	// ledger, and only ever in response to the triggering action being undone.
	DeleteMatching(ctx context.Context, user Address, reason ReasonCode, relatedID int64) error

	// Aggregate returns the user's rollup; the zero Aggregate on miss.
	Aggregate(ctx context.Context, user Address) (Aggregate, error)

	// Grants returns the user's ledger rows, oldest first.
	Grants(ctx context.Context, user Address) ([]PointGrant, error)
}

// =============================================================================
// READER - What the rest of the system consumes
// =============================================================================

// Reader exposes the aggregate in the shape consumers want: a total for
// gating and tiering, and a by-reason breakdown for profile display.
type Reader struct {
	ledger Ledger
}

func NewReader(ledger Ledger) *Reader {
	return &Reader{ledger: ledger}
}

// TotalPoints returns the user's sprout total, zero for unknown users.
func (r *Reader) TotalPoints(ctx context.Context, user Address) (int64, error) {
	agg, err := r.ledger.Aggregate(ctx, user)
	if err != nil {
		return 0, &StoreError{Op: "aggregate", Err: err}
	}
	return agg.Total, nil
}

// PointsByReason returns the per-reason breakdown, empty for unknown users.
func (r *Reader) PointsByReason(ctx context.Context, user Address) (map[ReasonName]int64, error) {
	agg, err := r.ledger.Aggregate(ctx, user)
	if err != nil {
		return nil, &StoreError{Op: "aggregate", Err: err}
	}
	if agg.ByReason == nil {
		return map[ReasonName]int64{}, nil
	}
	return agg.ByReason, nil
}

// Standing bundles everything a profile needs in one read.
type Standing struct {
	User     Address
	Total    int64
	ByReason map[ReasonName]int64
	Tier     Tier
	Progress string // percent toward the next tier, "0".."100"
}

// StandingFor derives the user's full reputation standing from one aggregate
// read.
func (r *Reader) StandingFor(ctx context.Context, user Address) (Standing, error) {
	agg, err := r.ledger.Aggregate(ctx, user)
	if err != nil {
		return Standing{}, &StoreError{Op: "aggregate", Err: err}
	}
	byReason := agg.ByReason
	if byReason == nil {
		byReason = map[ReasonName]int64{}
	}
	return Standing{
		User:     user,
		Total:    agg.Total,
		ByReason: byReason,
		Tier:     TierFor(agg.Total),
		Progress: TierProgress(agg.Total).StringFixed(1),
	}, nil
}
