/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the domain model from
  the external contract. Request types carry validator tags; handlers run
  them through a shared validator before touching the domain.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients
*/
package api

import (
	"time"

	"github.com/bloomideas/sprout-engine/garden"
	"github.com/bloomideas/sprout-engine/sprouts"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PlantIdeaRequest is the body for planting an idea.
type PlantIdeaRequest struct {
	Owner       string   `json:"owner" validate:"required"`
	Title       string   `json:"title" validate:"required,max=140"`
	Summary     string   `json:"summary" validate:"max=280"`
	Description string   `json:"description"`
	Categories  []string `json:"categories" validate:"max=5,dive,max=40"`
	Links       []string `json:"links" validate:"dive,url"`
	Visuals     []string `json:"visuals" validate:"dive,url"`
	Username    string   `json:"username" validate:"max=40"`
}

// CareRequest is the body for reacting to an idea.
type CareRequest struct {
	User   string `json:"user" validate:"required"`
	Action string `json:"action" validate:"required,oneof=nurture neglect"`
}

// PostCommentRequest is the body for commenting on an idea.
type PostCommentRequest struct {
	User    string `json:"user" validate:"required"`
	Content string `json:"content" validate:"required,max=2000"`
}

// JoinRequestRequest is the body for asking to join a project.
type JoinRequestRequest struct {
	Builder string `json:"builder" validate:"required"`
	Message string `json:"message" validate:"max=1000"`
}

// DecideJoinRequest is the owner's accept/decline body.
type DecideJoinRequest struct {
	Caller string `json:"caller" validate:"required"`
}

// AwardRequest is the body for a manual sprout award.
type AwardRequest struct {
	User      string `json:"user" validate:"required"`
	Reason    string `json:"reason" validate:"required,oneof=build_request invite"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	RelatedID *int64 `json:"related_id,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// IdeaDTO is one idea with its community tallies.
type IdeaDTO struct {
	ID          int64    `json:"id"`
	Owner       string   `json:"owner"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Stage       string   `json:"stage"`
	Categories  []string `json:"categories,omitempty"`
	Links       []string `json:"links,omitempty"`
	Visuals     []string `json:"visuals,omitempty"`
	Nurtures    int      `json:"nurtures"`
	Neglects    int      `json:"neglects"`
	Comments    int      `json:"comments"`
	Interest    int      `json:"interest"`
	HotScore    int64    `json:"hot_score"`
	CreatedAt   string   `json:"created_at"`
}

func toIdeaDTO(s garden.IdeaSummary) IdeaDTO {
	return IdeaDTO{
		ID:          s.Project.ID,
		Owner:       string(s.Project.Owner),
		Title:       s.Project.Title,
		Summary:     s.Project.Summary,
		Description: s.Project.Description,
		Stage:       string(s.Project.Stage),
		Categories:  s.Project.Categories,
		Links:       s.Project.Links,
		Visuals:     s.Project.Visuals,
		Nurtures:    s.Counts.Nurtures,
		Neglects:    s.Counts.Neglects,
		Comments:    s.Counts.Comments,
		Interest:    s.Counts.JoinRequests,
		HotScore:    s.HotScore,
		CreatedAt:   s.Project.CreatedAt.Format(time.RFC3339),
	}
}

// PlantedDTO confirms a planted idea and the sprouts it earned.
type PlantedDTO struct {
	Idea          IdeaDTO `json:"idea"`
	SproutsEarned int64   `json:"sprouts_earned"`
}

// CareDTO reports the care state after a reaction.
type CareDTO struct {
	Action *string `json:"action"` // null means retracted
}

// CommentDTO is one comment.
type CommentDTO struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id"`
	User      string `json:"user"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toCommentDTO(c garden.Comment) CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		ProjectID: c.ProjectID,
		User:      string(c.User),
		Content:   c.Content,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

// JoinRequestDTO is one join request.
type JoinRequestDTO struct {
	ID         int64   `json:"id"`
	ProjectID  int64   `json:"project_id"`
	Builder    string  `json:"builder"`
	Message    string  `json:"message,omitempty"`
	Status     string  `json:"status"`
	AssignedAt *string `json:"assigned_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func toJoinRequestDTO(r garden.JoinRequest) JoinRequestDTO {
	dto := JoinRequestDTO{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		Builder:   string(r.Builder),
		Message:   r.Message,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.AssignedAt != nil {
		s := r.AssignedAt.Format(time.RFC3339)
		dto.AssignedAt = &s
	}
	return dto
}

// StandingDTO is a gardener's reputation standing.
type StandingDTO struct {
	User      string           `json:"user"`
	Username  string           `json:"username,omitempty"`
	Total     int64            `json:"total_sprouts"`
	ByReason  map[string]int64 `json:"by_reason"`
	TierName  string           `json:"tier"`
	TierLevel int              `json:"level"`
	Progress  string           `json:"progress_pct"`
}

func toStandingDTO(s sprouts.Standing, username string) StandingDTO {
	byReason := make(map[string]int64, len(s.ByReason))
	for name, amount := range s.ByReason {
		byReason[string(name)] = amount
	}
	return StandingDTO{
		User:      string(s.User),
		Username:  username,
		Total:     s.Total,
		ByReason:  byReason,
		TierName:  s.Tier.Name,
		TierLevel: s.Tier.Level,
		Progress:  s.Progress,
	}
}

// GrantDTO is one ledger row.
type GrantDTO struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Reason    string `json:"reason"`
	Amount    int64  `json:"amount"`
	RelatedID *int64 `json:"related_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

// ErrorDTO is the uniform error body.
type ErrorDTO struct {
	Error    string `json:"error"`
	Required *int64 `json:"required,omitempty"`
	Short    *int64 `json:"shortfall,omitempty"`
}
