// Package store provides garden.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bloomideas/sprout-engine/garden"
	"github.com/bloomideas/sprout-engine/sprouts"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type careKey struct {
	ProjectID int64
	User      sprouts.Address
}

type Memory struct {
	mu           sync.RWMutex
	users        map[sprouts.Address]garden.User
	projects     map[int64]garden.Project
	comments     map[int64]garden.Comment
	careActions  map[careKey]sprouts.CareAction
	joinRequests map[int64]garden.JoinRequest

	nextProjectID int64
	nextCommentID int64
	nextRequestID int64
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[sprouts.Address]garden.User),
		projects:     make(map[int64]garden.Project),
		comments:     make(map[int64]garden.Comment),
		careActions:  make(map[careKey]sprouts.CareAction),
		joinRequests: make(map[int64]garden.JoinRequest),
	}
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

func (m *Memory) UpsertUser(_ context.Context, u garden.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[u.WalletAddress]; ok {
		if u.BloomUsername == "" {
			u.BloomUsername = existing.BloomUsername
		}
		u.CreatedAt = existing.CreatedAt
	}
	m.users[u.WalletAddress] = u
	return nil
}

func (m *Memory) GetUser(_ context.Context, addr sprouts.Address) (garden.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[addr]
	if !ok {
		return garden.User{}, garden.ErrNotFound
	}
	return u, nil
}

// -----------------------------------------------------------------------------
// Projects
// -----------------------------------------------------------------------------

func (m *Memory) CreateProject(_ context.Context, p *garden.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextProjectID++
	p.ID = m.nextProjectID
	m.projects[p.ID] = *p
	return nil
}

func (m *Memory) GetProject(_ context.Context, id int64) (garden.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return garden.Project{}, garden.ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListProjects(_ context.Context) ([]garden.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]garden.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CountProjectsByOwner(_ context.Context, owner sprouts.Address) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, p := range m.projects {
		if p.Owner == owner {
			count++
		}
	}
	return count, nil
}

func (m *Memory) SetProjectStage(_ context.Context, id int64, stage garden.Stage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return garden.ErrNotFound
	}
	p.Stage = stage
	m.projects[id] = p
	return nil
}

func (m *Memory) ProjectCounts(_ context.Context, id int64) (garden.ProjectCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var counts garden.ProjectCounts
	for k, action := range m.careActions {
		if k.ProjectID != id {
			continue
		}
		switch action {
		case sprouts.CareNurture:
			counts.Nurtures++
		case sprouts.CareNeglect:
			counts.Neglects++
		}
	}
	for _, c := range m.comments {
		if c.ProjectID == id {
			counts.Comments++
		}
	}
	for _, r := range m.joinRequests {
		if r.ProjectID == id {
			counts.JoinRequests++
		}
	}
	return counts, nil
}

// -----------------------------------------------------------------------------
// Care actions
// -----------------------------------------------------------------------------

func (m *Memory) GetCareAction(_ context.Context, projectID int64, user sprouts.Address) (*sprouts.CareAction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	action, ok := m.careActions[careKey{ProjectID: projectID, User: user}]
	if !ok {
		return nil, nil
	}
	return &action, nil
}

func (m *Memory) SetCareAction(_ context.Context, projectID int64, user sprouts.Address, action sprouts.CareAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.careActions[careKey{ProjectID: projectID, User: user}] = action
	return nil
}

func (m *Memory) DeleteCareAction(_ context.Context, projectID int64, user sprouts.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.careActions, careKey{ProjectID: projectID, User: user})
	return nil
}

// -----------------------------------------------------------------------------
// Comments
// -----------------------------------------------------------------------------

func (m *Memory) CreateComment(_ context.Context, c *garden.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextCommentID++
	c.ID = m.nextCommentID
	m.comments[c.ID] = *c
	return nil
}

func (m *Memory) ListComments(_ context.Context, projectID int64) ([]garden.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []garden.Comment
	for _, c := range m.comments {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) CountCommentsBy(_ context.Context, projectID int64, user sprouts.Address) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, c := range m.comments {
		if c.ProjectID == projectID && c.User == user {
			count++
		}
	}
	return count, nil
}

// -----------------------------------------------------------------------------
// Join requests
// -----------------------------------------------------------------------------

func (m *Memory) CreateJoinRequest(_ context.Context, r *garden.JoinRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRequestID++
	r.ID = m.nextRequestID
	m.joinRequests[r.ID] = *r
	return nil
}

func (m *Memory) GetJoinRequest(_ context.Context, id int64) (garden.JoinRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.joinRequests[id]
	if !ok {
		return garden.JoinRequest{}, garden.ErrNotFound
	}
	return r, nil
}

func (m *Memory) ListJoinRequests(_ context.Context, projectID int64) ([]garden.JoinRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []garden.JoinRequest
	for _, r := range m.joinRequests {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) SetJoinRequestStatus(_ context.Context, id int64, status garden.JoinStatus, assignedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.joinRequests[id]
	if !ok {
		return garden.ErrNotFound
	}
	r.Status = status
	r.AssignedAt = assignedAt
	m.joinRequests[id] = r
	return nil
}

var _ garden.Store = (*Memory)(nil)
