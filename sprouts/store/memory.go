// Package store provides Ledger implementations.
package store

import (
	"context"
	"sync"

	"github.com/bloomideas/sprout-engine/sprouts"
)

// =============================================================================
// MEMORY LEDGER - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps the full ledger in process and recomputes aggregates on read,
// which makes the ledger/rollup invariant hold by construction.
type Memory struct {
	mu      sync.RWMutex
	grants  map[sprouts.Address][]sprouts.PointGrant
	catalog *sprouts.Catalog
}

func NewMemory(catalog *sprouts.Catalog) *Memory {
	return &Memory{
		grants:  make(map[sprouts.Address][]sprouts.PointGrant),
		catalog: catalog,
	}
}

// Insert appends one grant.
func (m *Memory) Insert(_ context.Context, grant sprouts.PointGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[grant.User] = append(m.grants[grant.User], grant)
	return nil
}

// DeleteMatching removes every grant matching (user, reason, relatedID).
// Matching nothing is a no-op.
func (m *Memory) DeleteMatching(_ context.Context, user sprouts.Address, reason sprouts.ReasonCode, relatedID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.grants[user]
	kept := rows[:0]
	for _, g := range rows {
		if g.Reason == reason && g.RelatedID != nil && *g.RelatedID == relatedID {
			continue
		}
		kept = append(kept, g)
	}
	m.grants[user] = kept
	return nil
}

// Aggregate replays the user's rows. Unknown users get the zero Aggregate.
func (m *Memory) Aggregate(_ context.Context, user sprouts.Address) (sprouts.Aggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agg := sprouts.Aggregate{
		User:     user,
		ByReason: make(map[sprouts.ReasonName]int64),
	}
	for _, g := range m.grants[user] {
		agg.Total += g.Amount
		if name, ok := m.catalog.Name(g.Reason); ok {
			agg.ByReason[name] += g.Amount
		}
	}
	return agg, nil
}

// Grants returns a copy of the user's rows in insertion order.
func (m *Memory) Grants(_ context.Context, user sprouts.Address) ([]sprouts.PointGrant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]sprouts.PointGrant, len(m.grants[user]))
	copy(rows, m.grants[user])
	return rows, nil
}

var _ sprouts.Ledger = (*Memory)(nil)
