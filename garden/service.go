/*
service.go - Orchestrators pairing user actions with ledger mutations

PURPOSE:
  One method per user action. Each method asks the accounting engine what the
  action is worth (or costs), writes the primary content row, then issues the
  prescribed ledger mutation.

BOOKKEEPING ASYMMETRY:
  Primary content creation must not be blocked by secondary reward
  bookkeeping. A planted idea whose bonus grant fails is still planted; the
  failure is logged and the gardener keeps their idea. The one exception is
  the comment-cost gate, which runs BEFORE anything is written: a gardener
  below the cost never reaches the store.

KNOWN RACE:
  PlantIdea and PostComment read a count and then act on it. Two concurrent
  submissions from the same gardener can read the same stale count and earn
  the same bonus. There is no transactional isolation here; the reward is
  best-effort, not a financial guarantee.
*/
package garden

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/bloomideas/sprout-engine/sprouts"
)

// Service orchestrates garden actions against the content store and the
// sprout ledger.
type Service struct {
	store   Store
	ledger  sprouts.Ledger
	catalog *sprouts.Catalog
	reader  *sprouts.Reader
	log     logrus.FieldLogger
}

// NewService wires the orchestrators. The catalog must already be validated;
// NewService resolves the engine's built-in reasons eagerly so catalog drift
// fails at startup, not on the first affected action.
func NewService(store Store, ledger sprouts.Ledger, catalog *sprouts.Catalog, log logrus.FieldLogger) (*Service, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:   store,
		ledger:  ledger,
		catalog: catalog,
		reader:  sprouts.NewReader(ledger),
		log:     log,
	}, nil
}

// Reader exposes the aggregation reader for consumers that only need totals.
func (s *Service) Reader() *sprouts.Reader { return s.reader }

// Gardener returns a gardener's profile, ErrNotFound for addresses that have
// never written anything.
func (s *Service) Gardener(ctx context.Context, addr sprouts.Address) (User, error) {
	return s.store.GetUser(ctx, addr)
}

// =============================================================================
// IDEAS
// =============================================================================

// IdeaDraft is the input for planting an idea. Username, when present,
// refreshes the owner's display name.
type IdeaDraft struct {
	Owner       sprouts.Address
	Username    string
	Title       string
	Summary     string
	Description string
	Categories  []string
	Links       []string
	Visuals     []string
}

// PlantIdea creates a project and awards the submission bonus. The bonus is
// based on how many ideas the owner had planted before this one; the count is
// read before the insert so the new row is excluded. The grant is
// best-effort: its failure is logged and the idea stands.
func (s *Service) PlantIdea(ctx context.Context, draft IdeaDraft) (Project, int64, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return Project{}, 0, ErrEmptyContent
	}

	// Planting is the first write most gardeners ever make, so it doubles as
	// profile registration.
	if err := s.store.UpsertUser(ctx, User{
		WalletAddress: draft.Owner,
		BloomUsername: strings.TrimSpace(draft.Username),
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		return Project{}, 0, fmt.Errorf("upsert gardener: %w", err)
	}

	prior, err := s.store.CountProjectsByOwner(ctx, draft.Owner)
	if err != nil {
		return Project{}, 0, fmt.Errorf("count prior ideas: %w", err)
	}
	reward := sprouts.PointsForSubmission(prior)

	project := Project{
		Owner:       draft.Owner,
		Title:       strings.TrimSpace(draft.Title),
		Summary:     draft.Summary,
		Description: draft.Description,
		Stage:       StagePlanted,
		Categories:  draft.Categories,
		Links:       draft.Links,
		Visuals:     draft.Visuals,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateProject(ctx, &project); err != nil {
		return Project{}, 0, fmt.Errorf("create project: %w", err)
	}

	awarded := s.grantBestEffort(ctx, draft.Owner, sprouts.ReasonPlantIdea, reward, project.ID)
	if !awarded {
		reward = 0
	}
	return project, reward, nil
}

// IdeaSummary is one feed entry: the project plus its tallies and hot score.
type IdeaSummary struct {
	Project  Project
	Counts   ProjectCounts
	HotScore int64
}

// Feed returns all ideas ordered by hot score, hottest first. Ties break by
// recency so fresh ideas surface.
func (s *Service) Feed(ctx context.Context) ([]IdeaSummary, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	summaries := make([]IdeaSummary, 0, len(projects))
	for _, p := range projects {
		counts, err := s.store.ProjectCounts(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("project %d counts: %w", p.ID, err)
		}
		summaries = append(summaries, IdeaSummary{
			Project:  p,
			Counts:   counts,
			HotScore: HotScore(counts),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].HotScore != summaries[j].HotScore {
			return summaries[i].HotScore > summaries[j].HotScore
		}
		return summaries[i].Project.CreatedAt.After(summaries[j].Project.CreatedAt)
	})
	return summaries, nil
}

// Idea returns one project with its tallies.
func (s *Service) Idea(ctx context.Context, id int64) (IdeaSummary, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return IdeaSummary{}, err
	}
	counts, err := s.store.ProjectCounts(ctx, id)
	if err != nil {
		return IdeaSummary{}, fmt.Errorf("project %d counts: %w", id, err)
	}
	return IdeaSummary{Project: project, Counts: counts, HotScore: HotScore(counts)}, nil
}

// =============================================================================
// CARE ACTIONS
// =============================================================================

// Care applies a gardener's reaction to an idea. Repeating the stored
// reaction retracts it; a different reaction flips it. The care row is
// written before the ledger mutation; a revoked nurture deletes the exact
// grant rows for this (gardener, idea) pair, which makes the ledger half
// idempotent.
//
// Returns the resulting care state, nil when the reaction was retracted.
func (s *Service) Care(ctx context.Context, user sprouts.Address, projectID int64, action sprouts.CareAction) (*sprouts.CareAction, error) {
	if action != sprouts.CareNurture && action != sprouts.CareNeglect {
		return nil, fmt.Errorf("unknown care action %q", action)
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}

	existing, err := s.store.GetCareAction(ctx, projectID, user)
	if err != nil {
		return nil, fmt.Errorf("load care action: %w", err)
	}

	next := &action
	if existing != nil && *existing == action {
		next = nil // repeating retracts
	}
	delta := sprouts.CareTransition(existing, next)

	if err := s.guardNonNegative(ctx, user, delta, projectID); err != nil {
		return nil, err
	}

	// Care row first, ledger second.
	if next == nil {
		if err := s.store.DeleteCareAction(ctx, projectID, user); err != nil {
			return nil, fmt.Errorf("delete care action: %w", err)
		}
	} else {
		if err := s.store.SetCareAction(ctx, projectID, user, *next); err != nil {
			return nil, fmt.Errorf("set care action: %w", err)
		}
	}

	if delta.Revoke {
		code := s.catalog.MustResolve(sprouts.ReasonNurture)
		if err := s.ledger.DeleteMatching(ctx, user, code, projectID); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"user": user, "project": projectID,
			}).Error("failed to revoke nurture sprout")
		}
	}
	if delta.Grant != nil {
		s.grantBestEffort(ctx, user, sprouts.ReasonNurture, *delta.Grant, projectID)
	}
	return next, nil
}

// guardNonNegative rejects ledger deltas that would drive the user's total
// below zero. Under current rules revocation only removes previously granted
// rows, so this cannot trip; tripping it means the ledger already violated
// an invariant, which is worth a loud log line.
func (s *Service) guardNonNegative(ctx context.Context, user sprouts.Address, delta sprouts.CareDelta, projectID int64) error {
	if !delta.Revoke {
		return nil
	}
	agg, err := s.ledger.Aggregate(ctx, user)
	if err != nil {
		return fmt.Errorf("read aggregate: %w", err)
	}

	revoked := int64(0)
	grants, err := s.ledger.Grants(ctx, user)
	if err != nil {
		return fmt.Errorf("read grants: %w", err)
	}
	code := s.catalog.MustResolve(sprouts.ReasonNurture)
	for _, g := range grants {
		if g.Reason == code && g.RelatedID != nil && *g.RelatedID == projectID {
			revoked += g.Amount
		}
	}

	projected := agg.Total - revoked
	if delta.Grant != nil {
		projected += *delta.Grant
	}
	if projected < 0 {
		s.log.WithFields(logrus.Fields{
			"user": user, "total": agg.Total, "projected": projected,
		}).Error("care revocation would drive sprout total negative")
		return sprouts.ErrNegativeBalance
	}
	return nil
}

// =============================================================================
// COMMENTS
// =============================================================================

// PostComment gates the comment behind the gardener's sprout balance, writes
// it, then records the fee. The cost depends on how many comments the
// gardener has already posted on this idea. The fee is stored as a positive
// grant under the comment_fee reason with the comment as related entity; like
// all secondary bookkeeping it is best-effort once the comment exists.
func (s *Service) PostComment(ctx context.Context, user sprouts.Address, projectID int64, content string) (Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, ErrEmptyContent
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return Comment{}, err
	}

	prior, err := s.store.CountCommentsBy(ctx, projectID, user)
	if err != nil {
		return Comment{}, fmt.Errorf("count prior comments: %w", err)
	}
	cost := sprouts.CommentCost(prior)

	total, err := s.reader.TotalPoints(ctx, user)
	if err != nil {
		return Comment{}, err
	}
	if total < cost {
		return Comment{}, &sprouts.InsufficientPointsError{
			User: user, Required: cost, Available: total,
		}
	}

	comment := Comment{
		ProjectID: projectID,
		User:      user,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateComment(ctx, &comment); err != nil {
		return Comment{}, fmt.Errorf("create comment: %w", err)
	}

	s.grantBestEffort(ctx, user, sprouts.ReasonCommentFee, cost, comment.ID)
	return comment, nil
}

// Comments lists an idea's discussion, oldest first.
func (s *Service) Comments(ctx context.Context, projectID int64) ([]Comment, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, projectID)
}

// NextCommentCost tells the UI what the gardener's next comment on this idea
// will cost.
func (s *Service) NextCommentCost(ctx context.Context, user sprouts.Address, projectID int64) (int64, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return 0, err
	}
	prior, err := s.store.CountCommentsBy(ctx, projectID, user)
	if err != nil {
		return 0, fmt.Errorf("count prior comments: %w", err)
	}
	return sprouts.CommentCost(prior), nil
}

// =============================================================================
// JOIN REQUESTS
// =============================================================================

// RequestToJoin files a pending join request. No sprouts change hands until
// an owner decision, and under current rules not even then.
func (s *Service) RequestToJoin(ctx context.Context, builder sprouts.Address, projectID int64, message string) (JoinRequest, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return JoinRequest{}, err
	}
	req := JoinRequest{
		ProjectID: projectID,
		Builder:   builder,
		Message:   strings.TrimSpace(message),
		Status:    JoinPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateJoinRequest(ctx, &req); err != nil {
		return JoinRequest{}, fmt.Errorf("create join request: %w", err)
	}
	return req, nil
}

// JoinRequests lists a project's join requests for its owner.
func (s *Service) JoinRequests(ctx context.Context, caller sprouts.Address, projectID int64) ([]JoinRequest, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.Owner != caller {
		return nil, ErrNotOwner
	}
	return s.store.ListJoinRequests(ctx, projectID)
}

// DecideJoinRequest is the owner accepting or declining. Acceptance moves the
// project stage to growing; a stage-update failure after the approval is
// logged, not rolled back.
func (s *Service) DecideJoinRequest(ctx context.Context, caller sprouts.Address, requestID int64, accept bool) (JoinRequest, error) {
	req, err := s.store.GetJoinRequest(ctx, requestID)
	if err != nil {
		return JoinRequest{}, err
	}
	project, err := s.store.GetProject(ctx, req.ProjectID)
	if err != nil {
		return JoinRequest{}, err
	}
	if project.Owner != caller {
		return JoinRequest{}, ErrNotOwner
	}
	if req.Status != JoinPending {
		return JoinRequest{}, ErrAlreadyDecided
	}

	status := JoinDeclined
	var assignedAt *time.Time
	if accept {
		status = JoinApproved
		now := time.Now().UTC()
		assignedAt = &now
	}
	if err := s.store.SetJoinRequestStatus(ctx, requestID, status, assignedAt); err != nil {
		return JoinRequest{}, fmt.Errorf("update join request: %w", err)
	}

	if accept {
		if err := s.store.SetProjectStage(ctx, req.ProjectID, StageGrowing); err != nil {
			s.log.WithError(err).WithField("project", req.ProjectID).
				Error("join request approved but stage update failed")
		}
	}

	req.Status = status
	req.AssignedAt = assignedAt
	return req, nil
}

// =============================================================================
// MANUAL AWARDS
// =============================================================================

// Award grants sprouts outside the automatic rules, for collaboration
// (build_request) and inviting gardeners (invite). Unlike the automatic
// grants this is the primary action, so failures propagate.
func (s *Service) Award(ctx context.Context, user sprouts.Address, reason sprouts.ReasonName, amount int64, relatedID *int64) (sprouts.PointGrant, error) {
	if reason != sprouts.ReasonBuildRequest && reason != sprouts.ReasonInvite {
		return sprouts.PointGrant{}, &sprouts.UnknownReasonError{Reason: reason}
	}
	if amount <= 0 {
		return sprouts.PointGrant{}, fmt.Errorf("award amount must be positive, got %d", amount)
	}
	code, err := s.catalog.Resolve(reason)
	if err != nil {
		return sprouts.PointGrant{}, err
	}

	grant := sprouts.PointGrant{
		ID:        uuid.NewString(),
		User:      user,
		Reason:    code,
		Amount:    amount,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ledger.Insert(ctx, grant); err != nil {
		return sprouts.PointGrant{}, &sprouts.StoreError{Op: "insert", Err: err}
	}
	return grant, nil
}

// =============================================================================
// INTERNAL
// =============================================================================

// grantBestEffort inserts a grant and reports success. Failure is logged and
// swallowed: secondary reward bookkeeping must never fail the primary action.
func (s *Service) grantBestEffort(ctx context.Context, user sprouts.Address, reason sprouts.ReasonName, amount int64, relatedID int64) bool {
	code := s.catalog.MustResolve(reason)
	grant := sprouts.PointGrant{
		ID:        uuid.NewString(),
		User:      user,
		Reason:    code,
		Amount:    amount,
		RelatedID: &relatedID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.ledger.Insert(ctx, grant); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user": user, "reason": reason, "amount": amount, "related": relatedID,
		}).Error("failed to record sprout grant")
		return false
	}
	return true
}
