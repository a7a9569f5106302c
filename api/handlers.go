/*
handlers.go - HTTP API handlers for the Bloom Ideas server

PURPOSE:
  Exposes the garden service and the sprout accounting core via REST.
  Handlers parse and validate input, delegate to the service, and map domain
  errors onto status codes.

ENDPOINTS:
  Ideas:
    GET    /api/ideas                        feed ordered by hot score
    POST   /api/ideas                        plant an idea
    GET    /api/ideas/{id}                   idea detail with tallies
    POST   /api/ideas/{id}/care              nurture / neglect / retract
    GET    /api/ideas/{id}/comments          list discussion
    POST   /api/ideas/{id}/comments          post (sprout-cost gated)
    GET    /api/ideas/{id}/comment-cost      price of the caller's next comment
    POST   /api/ideas/{id}/join-requests     ask to join
    GET    /api/ideas/{id}/join-requests     owner lists requests

  Join requests:
    POST   /api/join-requests/{id}/accept    owner accepts
    POST   /api/join-requests/{id}/decline   owner declines

  Gardeners:
    GET    /api/gardeners/{address}/sprouts  total, breakdown, tier, progress
    GET    /api/gardeners/{address}/grants   ledger history

  Admin:
    POST   /api/admin/awards                 manual build_request/invite award

ERROR MAPPING:
  400: validation errors, malformed bodies
  402: insufficient sprouts (the one payment-shaped error in the system)
  403: non-owner deciding a join request
  404: missing project/comment/request
  409: join request already decided
  500: everything else
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/bloomideas/sprout-engine/garden"
	"github.com/bloomideas/sprout-engine/sprouts"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *garden.Service
	Ledger   sprouts.Ledger
	Catalog  *sprouts.Catalog
	Log      logrus.FieldLogger
	validate *validator.Validate
}

// NewHandler creates a handler around the garden service.
func NewHandler(service *garden.Service, ledger sprouts.Ledger, catalog *sprouts.Catalog, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Service:  service,
		Ledger:   ledger,
		Catalog:  catalog,
		Log:      log,
		validate: validator.New(),
	}
}

// =============================================================================
// IDEAS
// =============================================================================

func (h *Handler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	feed, err := h.Service.Feed(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]IdeaDTO, 0, len(feed))
	for _, s := range feed {
		dtos = append(dtos, toIdeaDTO(s))
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) PlantIdea(w http.ResponseWriter, r *http.Request) {
	var req PlantIdeaRequest
	if !h.decode(w, r, &req) {
		return
	}

	project, earned, err := h.Service.PlantIdea(r.Context(), garden.IdeaDraft{
		Owner:       address(req.Owner),
		Username:    req.Username,
		Title:       req.Title,
		Summary:     req.Summary,
		Description: req.Description,
		Categories:  req.Categories,
		Links:       req.Links,
		Visuals:     req.Visuals,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	summary, err := h.Service.Idea(r.Context(), project.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, PlantedDTO{
		Idea:          toIdeaDTO(summary),
		SproutsEarned: earned,
	})
}

func (h *Handler) GetIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	summary, err := h.Service.Idea(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toIdeaDTO(summary))
}

// =============================================================================
// CARE ACTIONS
// =============================================================================

func (h *Handler) Care(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req CareRequest
	if !h.decode(w, r, &req) {
		return
	}

	state, err := h.Service.Care(r.Context(), address(req.User), id, sprouts.CareAction(req.Action))
	if err != nil {
		h.writeError(w, err)
		return
	}

	dto := CareDTO{}
	if state != nil {
		s := string(*state)
		dto.Action = &s
	}
	h.writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// COMMENTS
// =============================================================================

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	comments, err := h.Service.Comments(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		dtos = append(dtos, toCommentDTO(c))
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) PostComment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req PostCommentRequest
	if !h.decode(w, r, &req) {
		return
	}

	comment, err := h.Service.PostComment(r.Context(), address(req.User), id, req.Content)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toCommentDTO(comment))
}

func (h *Handler) CommentCost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	user := r.URL.Query().Get("user")
	if user == "" {
		h.writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "user query parameter required"})
		return
	}
	cost, err := h.Service.NextCommentCost(r.Context(), address(user), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"cost": cost})
}

// =============================================================================
// JOIN REQUESTS
// =============================================================================

func (h *Handler) CreateJoinRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req JoinRequestRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.Service.RequestToJoin(r.Context(), address(req.Builder), id, req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toJoinRequestDTO(created))
}

func (h *Handler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	caller := r.URL.Query().Get("caller")
	if caller == "" {
		h.writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "caller query parameter required"})
		return
	}

	reqs, err := h.Service.JoinRequests(r.Context(), address(caller), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]JoinRequestDTO, 0, len(reqs))
	for _, jr := range reqs {
		dtos = append(dtos, toJoinRequestDTO(jr))
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AcceptJoinRequest(w http.ResponseWriter, r *http.Request) {
	h.decideJoinRequest(w, r, true)
}

func (h *Handler) DeclineJoinRequest(w http.ResponseWriter, r *http.Request) {
	h.decideJoinRequest(w, r, false)
}

func (h *Handler) decideJoinRequest(w http.ResponseWriter, r *http.Request, accept bool) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req DecideJoinRequest
	if !h.decode(w, r, &req) {
		return
	}

	decided, err := h.Service.DecideJoinRequest(r.Context(), address(req.Caller), id, accept)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toJoinRequestDTO(decided))
}

// =============================================================================
// GARDENERS
// =============================================================================

func (h *Handler) GetStanding(w http.ResponseWriter, r *http.Request) {
	addr := address(chi.URLParam(r, "address"))
	standing, err := h.Service.Reader().StandingFor(r.Context(), addr)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Unknown gardeners still have a (zero) standing; the profile is optional.
	username := ""
	if u, err := h.Service.Gardener(r.Context(), addr); err == nil {
		username = u.BloomUsername
	} else if !errors.Is(err, garden.ErrNotFound) {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toStandingDTO(standing, username))
}

func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	addr := chi.URLParam(r, "address")
	grants, err := h.Ledger.Grants(r.Context(), address(addr))
	if err != nil {
		h.writeError(w, err)
		return
	}

	dtos := make([]GrantDTO, 0, len(grants))
	for _, g := range grants {
		name, _ := h.Catalog.Name(g.Reason)
		dtos = append(dtos, GrantDTO{
			ID:        g.ID,
			User:      string(g.User),
			Reason:    string(name),
			Amount:    g.Amount,
			RelatedID: g.RelatedID,
			CreatedAt: g.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN
// =============================================================================

func (h *Handler) CreateAward(w http.ResponseWriter, r *http.Request) {
	var req AwardRequest
	if !h.decode(w, r, &req) {
		return
	}

	grant, err := h.Service.Award(r.Context(), address(req.User),
		sprouts.ReasonName(req.Reason), req.Amount, req.RelatedID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	name, _ := h.Catalog.Name(grant.Reason)
	h.writeJSON(w, http.StatusCreated, GrantDTO{
		ID:        grant.ID,
		User:      string(grant.User),
		Reason:    string(name),
		Amount:    grant.Amount,
		RelatedID: grant.RelatedID,
		CreatedAt: grant.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// address normalizes a wallet address; the whole system compares lowercased.
func address(s string) sprouts.Address {
	return sprouts.Address(strings.ToLower(strings.TrimSpace(s)))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: "malformed JSON body"})
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error()})
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Log.WithError(err).Error("failed to encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var insufficient *sprouts.InsufficientPointsError
	switch {
	case errors.As(err, &insufficient):
		required, short := insufficient.Required, insufficient.Shortfall()
		h.writeJSON(w, http.StatusPaymentRequired, ErrorDTO{
			Error:    insufficient.Error(),
			Required: &required,
			Short:    &short,
		})
	case errors.Is(err, garden.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, ErrorDTO{Error: "not found"})
	case errors.Is(err, garden.ErrNotOwner):
		h.writeJSON(w, http.StatusForbidden, ErrorDTO{Error: err.Error()})
	case errors.Is(err, garden.ErrAlreadyDecided):
		h.writeJSON(w, http.StatusConflict, ErrorDTO{Error: err.Error()})
	case errors.Is(err, garden.ErrEmptyContent), sprouts.IsClientError(err):
		h.writeJSON(w, http.StatusBadRequest, ErrorDTO{Error: err.Error()})
	default:
		h.Log.WithError(err).Error("internal error")
		h.writeJSON(w, http.StatusInternalServerError, ErrorDTO{Error: "internal error"})
	}
}
