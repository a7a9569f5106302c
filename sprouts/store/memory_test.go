package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomideas/sprout-engine/sprouts"
	"github.com/bloomideas/sprout-engine/sprouts/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func testCatalog() *sprouts.Catalog {
	codes := make(map[sprouts.ReasonName]sprouts.ReasonCode)
	for i, name := range sprouts.AllReasons() {
		codes[name] = sprouts.ReasonCode(i + 1)
	}
	return sprouts.NewCatalog(codes)
}

func grant(catalog *sprouts.Catalog, id string, user sprouts.Address, reason sprouts.ReasonName, amount int64, relatedID int64) sprouts.PointGrant {
	return sprouts.PointGrant{
		ID:        id,
		User:      user,
		Reason:    catalog.MustResolve(reason),
		Amount:    amount,
		RelatedID: &relatedID,
		CreatedAt: time.Now().UTC(),
	}
}

// =============================================================================
// LEDGER ROUND-TRIP TESTS
// =============================================================================

func TestMemoryLedger_InsertAndAggregate(t *testing.T) {
	catalog := testCatalog()
	ledger := store.NewMemory(catalog)
	ctx := context.Background()

	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-1", "0xabc", sprouts.ReasonPlantIdea, 50, 1)))
	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-2", "0xabc", sprouts.ReasonNurture, 1, 2)))

	agg, err := ledger.Aggregate(ctx, "0xabc")
	require.NoError(t, err)

	assert.Equal(t, int64(51), agg.Total)
	assert.Equal(t, int64(50), agg.Count(sprouts.ReasonPlantIdea))
	assert.Equal(t, int64(1), agg.Count(sprouts.ReasonNurture))
}

func TestMemoryLedger_UnknownUserHasZeroAggregate(t *testing.T) {
	ledger := store.NewMemory(testCatalog())

	agg, err := ledger.Aggregate(context.Background(), "0xnobody")
	require.NoError(t, err)

	assert.Equal(t, int64(0), agg.Total)
	assert.Empty(t, agg.ByReason)
}

func TestMemoryLedger_UsersAreIsolated(t *testing.T) {
	catalog := testCatalog()
	ledger := store.NewMemory(catalog)
	ctx := context.Background()

	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-1", "0xaaa", sprouts.ReasonPlantIdea, 50, 1)))
	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-2", "0xbbb", sprouts.ReasonPlantIdea, 60, 2)))

	aggA, _ := ledger.Aggregate(ctx, "0xaaa")
	aggB, _ := ledger.Aggregate(ctx, "0xbbb")

	assert.Equal(t, int64(50), aggA.Total)
	assert.Equal(t, int64(60), aggB.Total)
}

// =============================================================================
// TARGETED DELETION TESTS
// =============================================================================

func TestMemoryLedger_DeleteMatching_RemovesOnlyTargetedRows(t *testing.T) {
	// GIVEN: Nurture grants for two different ideas plus a submission bonus
	// WHEN: Revoking the nurture on idea 7
	// THEN: Only that grant disappears

	catalog := testCatalog()
	ledger := store.NewMemory(catalog)
	ctx := context.Background()

	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-1", "0xabc", sprouts.ReasonPlantIdea, 50, 7)))
	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-2", "0xabc", sprouts.ReasonNurture, 1, 7)))
	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-3", "0xabc", sprouts.ReasonNurture, 1, 8)))

	nurture := catalog.MustResolve(sprouts.ReasonNurture)
	require.NoError(t, ledger.DeleteMatching(ctx, "0xabc", nurture, 7))

	agg, err := ledger.Aggregate(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(51), agg.Total)
	assert.Equal(t, int64(1), agg.Count(sprouts.ReasonNurture))
	assert.Equal(t, int64(50), agg.Count(sprouts.ReasonPlantIdea))
}

func TestMemoryLedger_DeleteMatching_NoRowsIsNoop(t *testing.T) {
	catalog := testCatalog()
	ledger := store.NewMemory(catalog)
	ctx := context.Background()

	nurture := catalog.MustResolve(sprouts.ReasonNurture)
	require.NoError(t, ledger.DeleteMatching(ctx, "0xabc", nurture, 1))
	// Twice in a row cannot double-revoke either.
	require.NoError(t, ledger.DeleteMatching(ctx, "0xabc", nurture, 1))

	agg, _ := ledger.Aggregate(ctx, "0xabc")
	assert.Equal(t, int64(0), agg.Total)
}

func TestMemoryLedger_GrantsPreserveInsertionOrder(t *testing.T) {
	catalog := testCatalog()
	ledger := store.NewMemory(catalog)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		g := grant(catalog, fmt.Sprintf("g-%d", i), "0xabc", sprouts.ReasonNurture, 1, int64(i))
		require.NoError(t, ledger.Insert(ctx, g))
	}

	rows, err := ledger.Grants(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	for i, g := range rows {
		assert.Equal(t, fmt.Sprintf("g-%d", i+1), g.ID)
	}
}

// =============================================================================
// REPLAY INVARIANT
// =============================================================================

func TestMemoryLedger_AggregateEqualsReplay(t *testing.T) {
	// The aggregate must always equal a fold over the remaining rows, across
	// an arbitrary mix of inserts and targeted deletions.

	catalog := testCatalog()
	ledger := store.NewMemory(catalog)
	ctx := context.Background()
	user := sprouts.Address("0xabc")

	reasons := []sprouts.ReasonName{
		sprouts.ReasonPlantIdea, sprouts.ReasonNurture,
		sprouts.ReasonCommentFee, sprouts.ReasonBuildRequest,
	}
	for i := 0; i < 40; i++ {
		reason := reasons[i%len(reasons)]
		g := grant(catalog, fmt.Sprintf("g-%d", i), user, reason, int64(1+i%7), int64(i%5))
		require.NoError(t, ledger.Insert(ctx, g))

		if i%6 == 5 {
			require.NoError(t, ledger.DeleteMatching(ctx, user,
				catalog.MustResolve(sprouts.ReasonNurture), int64(i%5)))
		}
	}

	agg, err := ledger.Aggregate(ctx, user)
	require.NoError(t, err)

	rows, err := ledger.Grants(ctx, user)
	require.NoError(t, err)

	replayTotal := int64(0)
	replayByReason := map[sprouts.ReasonName]int64{}
	for _, g := range rows {
		replayTotal += g.Amount
		name, ok := catalog.Name(g.Reason)
		require.True(t, ok)
		replayByReason[name] += g.Amount
	}

	assert.Equal(t, replayTotal, agg.Total)
	assert.Equal(t, replayByReason, agg.ByReason)
}

// =============================================================================
// READER TESTS
// =============================================================================

func TestReader_StandingFor(t *testing.T) {
	catalog := testCatalog()
	ledger := store.NewMemory(catalog)
	reader := sprouts.NewReader(ledger)
	ctx := context.Background()

	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-1", "0xabc", sprouts.ReasonPlantIdea, 50, 1)))
	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-2", "0xabc", sprouts.ReasonPlantIdea, 60, 2)))

	standing, err := reader.StandingFor(ctx, "0xabc")
	require.NoError(t, err)

	assert.Equal(t, int64(110), standing.Total)
	assert.Equal(t, "Sprout", standing.Tier.Name)
	assert.Equal(t, 2, standing.Tier.Level)
	// Sprout spans 50..150, so 110 is 60% of the way to Bloom.
	assert.Equal(t, "60.0", standing.Progress)
	assert.Equal(t, int64(110), standing.ByReason[sprouts.ReasonPlantIdea])
}

func TestReader_UnknownUserStanding(t *testing.T) {
	reader := sprouts.NewReader(store.NewMemory(testCatalog()))

	standing, err := reader.StandingFor(context.Background(), "0xnew")
	require.NoError(t, err)

	assert.Equal(t, int64(0), standing.Total)
	assert.Equal(t, "Seed", standing.Tier.Name)
	assert.NotNil(t, standing.ByReason)
}

func TestReader_TotalPoints(t *testing.T) {
	catalog := testCatalog()
	ledger := store.NewMemory(catalog)
	reader := sprouts.NewReader(ledger)
	ctx := context.Background()

	total, err := reader.TotalPoints(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	require.NoError(t, ledger.Insert(ctx, grant(catalog, "g-1", "0xabc", sprouts.ReasonInvite, 25, 0)))

	total, err = reader.TotalPoints(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(25), total)
}
