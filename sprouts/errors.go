/*
errors.go - Centralized error types for the sprout accounting core

PURPOSE:
  All error types in one place. Orchestrators and the HTTP layer classify
  errors with the helpers at the bottom instead of matching strings.

ERROR CATEGORIES:
  1. Catalog errors - reason name has no catalog entry (deployment defect)
  2. Balance errors - a charged action exceeds the user's sprout total
  3. Store errors - the ledger collaborator is unavailable

USAGE:
  if errors.Is(err, sprouts.ErrUnknownReason) { ... }

  var insufficient *sprouts.InsufficientPointsError
  if errors.As(err, &insufficient) {
      // insufficient.Shortfall names how many sprouts are missing
  }
*/
package sprouts

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownReason is returned when a reason name has no catalog entry.
	// This indicates the code and the catalog have drifted out of sync; it is
	// a configuration defect, never retried.
	ErrUnknownReason = errors.New("unknown sprout reason")

	// ErrInsufficientPoints is returned when a charged action exceeds the
	// user's current sprout total. Expected and user-facing.
	ErrInsufficientPoints = errors.New("insufficient sprouts")

	// ErrStoreUnavailable wraps transient ledger store failures.
	ErrStoreUnavailable = errors.New("sprout store unavailable")

	// ErrNegativeBalance is returned when a mutation would drive a user's
	// total below zero. The ledger must never reach this state; hitting it
	// is an invariant violation, not a new tier.
	ErrNegativeBalance = errors.New("sprout total would go negative")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownReasonError names the reason that failed to resolve.
type UnknownReasonError struct {
	Reason ReasonName
}

func (e *UnknownReasonError) Error() string {
	return fmt.Sprintf("sprout reason %q not found in catalog", e.Reason)
}

func (e *UnknownReasonError) Unwrap() error { return ErrUnknownReason }

// InsufficientPointsError names the shortfall blocking a charged action.
type InsufficientPointsError struct {
	User      Address
	Required  int64
	Available int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient sprouts: need %d, have %d (short %d)",
		e.Required, e.Available, e.Shortfall())
}

func (e *InsufficientPointsError) Unwrap() error { return ErrInsufficientPoints }

// Shortfall is how many sprouts the user is missing.
func (e *InsufficientPointsError) Shortfall() int64 { return e.Required - e.Available }

// StoreError wraps a failure from the ledger store collaborator.
type StoreError struct {
	Op  string // "insert", "delete", "aggregate"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("sprout store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return ErrStoreUnavailable }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to a user-facing rule
// rather than a system fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientPoints) ||
		errors.Is(err, ErrNegativeBalance)
}

// IsConfigError reports whether the error indicates a deployment defect.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrUnknownReason)
}
