/*
Package garden holds the Bloom Ideas domain: projects (planted ideas),
comments, care actions, and join requests, plus the orchestrators that pair
each user action with the sprout ledger mutations the accounting engine
prescribes.

PURPOSE:
  The sprouts package decides; this package acts. Every call site that used
  to duplicate amount literals and reason names runs through Service, so each
  accounting rule is encoded exactly once.

KEY CONCEPTS IN THIS FILE (types.go):
  - Project: a planted idea progressing through garden stages
  - Comment: discussion on an idea, cost-gated by sprout balance
  - JoinRequest: a builder asking to help grow an idea

SEE ALSO:
  - service.go: the orchestrators
  - store.go: persistence interface
  - rank.go: hot-score feed ordering
*/
package garden

import (
	"time"

	"github.com/bloomideas/sprout-engine/sprouts"
)

// =============================================================================
// PROJECT - A planted idea
// =============================================================================

// Stage is a project's position in the garden lifecycle.
type Stage string

const (
	StagePlanted   Stage = "planted"
	StageGrowing   Stage = "growing"
	StageBlooming  Stage = "blooming"
	StageHarvested Stage = "harvested"
)

// Project is a planted idea. Categories, links, and visuals are stored as
// child rows but carried inline here for reads.
type Project struct {
	ID          int64
	Owner       sprouts.Address
	Title       string
	Summary     string
	Description string
	Stage       Stage
	Categories  []string
	Links       []string
	Visuals     []string
	CreatedAt   time.Time
}

// ProjectCounts are the per-project tallies the feed and detail views need.
type ProjectCounts struct {
	Nurtures     int
	Neglects     int
	Comments     int
	JoinRequests int
}

// =============================================================================
// USER
// =============================================================================

// User is a gardener. The wallet address is the identity; the username is
// display-only.
type User struct {
	WalletAddress sprouts.Address
	BloomUsername string
	CreatedAt     time.Time
}

// =============================================================================
// COMMENT
// =============================================================================

type Comment struct {
	ID        int64
	ProjectID int64
	User      sprouts.Address
	Content   string
	CreatedAt time.Time
}

// =============================================================================
// JOIN REQUEST
// =============================================================================

type JoinStatus string

const (
	JoinPending  JoinStatus = "pending"
	JoinApproved JoinStatus = "approved"
	JoinDeclined JoinStatus = "declined"
)

// JoinRequest is a builder asking to join a project. Acceptance moves the
// project's stage to growing.
type JoinRequest struct {
	ID         int64
	ProjectID  int64
	Builder    sprouts.Address
	Message    string
	Status     JoinStatus
	AssignedAt *time.Time
	CreatedAt  time.Time
}
