package garden

import "errors"

// Sentinel errors for the garden domain. The HTTP layer maps these to
// status codes; use errors.Is for classification.
var (
	// ErrNotFound is returned when a project, comment, or join request does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotOwner is returned when a non-owner tries an owner-only action
	// (deciding join requests).
	ErrNotOwner = errors.New("caller does not own this project")

	// ErrAlreadyDecided is returned when accepting or declining a join
	// request that is no longer pending.
	ErrAlreadyDecided = errors.New("join request already decided")

	// ErrEmptyContent is returned for blank comments and untitled ideas.
	ErrEmptyContent = errors.New("content must not be empty")
)
