/*
store.go - Persistence interface for the garden domain

PURPOSE:
  Defines the interface between the orchestrators and the database. The
  sprout ledger has its own interface (sprouts.Ledger); this one covers the
  content tables: users, projects, comments, care actions, join requests.

ORDERING CONTRACT:
  Orchestrators write the primary content row before the compensating ledger
  row (a comment exists before its fee grant, an idea before its submission
  bonus). The store does not wrap the two in one transaction; the gap is
  accepted drift, logged by the service.

IMPLEMENTATIONS:
  - store/sqlite: production, sqlx over go-sqlite3
  - garden/store: in-memory for tests
*/
package garden

import (
	"context"
	"time"

	"github.com/bloomideas/sprout-engine/sprouts"
)

// Store persists the garden content tables.
type Store interface {
	// Users
	UpsertUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, addr sprouts.Address) (User, error)

	// Projects
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id int64) (Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	CountProjectsByOwner(ctx context.Context, owner sprouts.Address) (int, error)
	SetProjectStage(ctx context.Context, id int64, stage Stage) error
	ProjectCounts(ctx context.Context, id int64) (ProjectCounts, error)

	// Care actions: at most one row per (project, user)
	GetCareAction(ctx context.Context, projectID int64, user sprouts.Address) (*sprouts.CareAction, error)
	SetCareAction(ctx context.Context, projectID int64, user sprouts.Address, action sprouts.CareAction) error
	DeleteCareAction(ctx context.Context, projectID int64, user sprouts.Address) error

	// Comments
	CreateComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, projectID int64) ([]Comment, error)
	CountCommentsBy(ctx context.Context, projectID int64, user sprouts.Address) (int, error)

	// Join requests
	CreateJoinRequest(ctx context.Context, r *JoinRequest) error
	GetJoinRequest(ctx context.Context, id int64) (JoinRequest, error)
	ListJoinRequests(ctx context.Context, projectID int64) ([]JoinRequest, error)
	SetJoinRequestStatus(ctx context.Context, id int64, status JoinStatus, assignedAt *time.Time) error
}
