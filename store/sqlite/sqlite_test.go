package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomideas/sprout-engine/garden"
	"github.com/bloomideas/sprout-engine/sprouts"
	"github.com/bloomideas/sprout-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) (*sqlite.Store, *sprouts.Catalog) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	catalog, err := store.LoadCatalog(context.Background())
	require.NoError(t, err)
	return store, catalog
}

func newGrant(catalog *sprouts.Catalog, id string, user sprouts.Address, reason sprouts.ReasonName, amount int64, relatedID int64) sprouts.PointGrant {
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
// CATALOG TESTS
// =============================================================================

func TestLoadCatalog_SeededWithAllReasons(t *testing.T) {
	_, catalog := newTestStore(t)
	assert.NoError(t, catalog.Validate())
}

func TestLoadCatalog_StableAcrossReopen(t *testing.T) {
	// Reason codes come from the database, so reopening the same file must
	// yield the same codes. INSERT OR IGNORE keeps reseeding idempotent.
	path := t.TempDir() + "/bloom.db"

	first, err := sqlite.New(path)
	require.NoError(t, err)
	catalog1, err := first.LoadCatalog(context.Background())
	require.NoError(t, err)
	nurture1 := catalog1.MustResolve(sprouts.ReasonNurture)
	require.NoError(t, first.Close())

	second, err := sqlite.New(path)
	require.NoError(t, err)
	defer second.Close()
	catalog2, err := second.LoadCatalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, nurture1, catalog2.MustResolve(sprouts.ReasonNurture))
}

// =============================================================================
// LEDGER TESTS
// =============================================================================

func TestLedger_InsertAggregateRoundTrip(t *testing.T) {
	store, catalog := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newGrant(catalog, "g-1", "0xabc", sprouts.ReasonPlantIdea, 50, 1)))
	require.NoError(t, store.Insert(ctx, newGrant(catalog, "g-2", "0xabc", sprouts.ReasonCommentFee, 5, 9)))

	agg, err := store.Aggregate(ctx, "0xabc")
	require.NoError(t, err)

	assert.Equal(t, int64(55), agg.Total)
	assert.Equal(t, int64(50), agg.Count(sprouts.ReasonPlantIdea))
	assert.Equal(t, int64(5), agg.Count(sprouts.ReasonCommentFee))
}

func TestLedger_AggregateMissIsZeroState(t *testing.T) {
	store, _ := newTestStore(t)

	agg, err := store.Aggregate(context.Background(), "0xnew")
	require.NoError(t, err)
	assert.Equal(t, int64(0), agg.Total)
	assert.NotNil(t, agg.ByReason)
	assert.Empty(t, agg.ByReason)
}

func TestLedger_DeleteMatching_TargetedAndIdempotent(t *testing.T) {
	store, catalog := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newGrant(catalog, "g-1", "0xabc", sprouts.ReasonNurture, 1, 7)))
	require.NoError(t, store.Insert(ctx, newGrant(catalog, "g-2", "0xabc", sprouts.ReasonNurture, 1, 8)))

	nurture := catalog.MustResolve(sprouts.ReasonNurture)
	require.NoError(t, store.DeleteMatching(ctx, "0xabc", nurture, 7))
	// Deleting again matches nothing and stays a no-op.
	require.NoError(t, store.DeleteMatching(ctx, "0xabc", nurture, 7))

	agg, err := store.Aggregate(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.Total)

	rows, err := store.Grants(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "g-2", rows[0].ID)
	require.NotNil(t, rows[0].RelatedID)
	assert.Equal(t, int64(8), *rows[0].RelatedID)
}

func TestLedger_RollupTracksEveryMutation(t *testing.T) {
	// The materialized rollup is refreshed synchronously, so it must agree
	// with a replay after each insert and delete.
	store, catalog := newTestStore(t)
	ctx := context.Background()
	user := sprouts.Address("0xabc")

	check := func() {
		agg, err := store.Aggregate(ctx, user)
		require.NoError(t, err)
		rows, err := store.Grants(ctx, user)
		require.NoError(t, err)
		replay := int64(0)
		for _, g := range rows {
			replay += g.Amount
		}
		assert.Equal(t, replay, agg.Total)
	}

	require.NoError(t, store.Insert(ctx, newGrant(catalog, "g-1", user, sprouts.ReasonPlantIdea, 50, 1)))
	check()
	require.NoError(t, store.Insert(ctx, newGrant(catalog, "g-2", user, sprouts.ReasonNurture, 1, 2)))
	check()
	require.NoError(t, store.DeleteMatching(ctx, user, catalog.MustResolve(sprouts.ReasonNurture), 2))
	check()
}

func TestRefreshRollups_CountsLedgerUsers(t *testing.T) {
	store, catalog := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newGrant(catalog, "g-1", "0xaaa", sprouts.ReasonPlantIdea, 50, 1)))
	require.NoError(t, store.Insert(ctx, newGrant(catalog, "g-2", "0xbbb", sprouts.ReasonInvite, 25, 2)))

	n, err := store.RefreshRollups(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	agg, err := store.Aggregate(ctx, "0xbbb")
	require.NoError(t, err)
	assert.Equal(t, int64(25), agg.Total)
}

// =============================================================================
// USER TESTS
// =============================================================================

func TestUsers_UpsertKeepsUsername(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertUser(ctx, garden.User{
		WalletAddress: "0xabc", BloomUsername: "rose",
	}))
	// Upsert without a username must not blank the stored one.
	require.NoError(t, store.UpsertUser(ctx, garden.User{WalletAddress: "0xabc"}))

	u, err := store.GetUser(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "rose", u.BloomUsername)
}

func TestUsers_GetUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetUser(context.Background(), "0xghost")
	assert.ErrorIs(t, err, garden.ErrNotFound)
}

// =============================================================================
// PROJECT TESTS
// =============================================================================

func TestProjects_RoundTripWithChildren(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	project := garden.Project{
		Owner:       "0xowner",
		Title:       "Decentralized seed bank",
		Summary:     "Preserve heirloom varieties on-chain",
		Description: "Long form",
		Stage:       garden.StagePlanted,
		Categories:  []string{"defi", "sustainability"},
		Links:       []string{"https://example.com/whitepaper"},
		Visuals:     []string{"https://example.com/mock.png"},
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.CreateProject(ctx, &project))
	require.NotZero(t, project.ID)

	got, err := store.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.Title, got.Title)
	assert.Equal(t, garden.StagePlanted, got.Stage)
	assert.Equal(t, []string{"defi", "sustainability"}, got.Categories)
	assert.Equal(t, []string{"https://example.com/whitepaper"}, got.Links)
	assert.Equal(t, []string{"https://example.com/mock.png"}, got.Visuals)
}

func TestProjects_CountByOwnerAndStage(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two"} {
		p := garden.Project{Owner: "0xowner", Title: title, Stage: garden.StagePlanted, CreatedAt: time.Now().UTC()}
		require.NoError(t, store.CreateProject(ctx, &p))
	}
	other := garden.Project{Owner: "0xother", Title: "three", Stage: garden.StagePlanted, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateProject(ctx, &other))

	count, err := store.CountProjectsByOwner(ctx, "0xowner")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, store.SetProjectStage(ctx, other.ID, garden.StageGrowing))
	got, err := store.GetProject(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, garden.StageGrowing, got.Stage)

	assert.ErrorIs(t, store.SetProjectStage(ctx, 999, garden.StageGrowing), garden.ErrNotFound)
}

func TestProjects_GetUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.GetProject(context.Background(), 42)
	assert.ErrorIs(t, err, garden.ErrNotFound)
}

// =============================================================================
// CARE ACTION TESTS
// =============================================================================

func TestCareActions_UpsertFlipDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p := garden.Project{Owner: "0xowner", Title: "idea", Stage: garden.StagePlanted, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateProject(ctx, &p))

	got, err := store.GetCareAction(ctx, p.ID, "0xfan")
	require.NoError(t, err)
	assert.Nil(t, got, "no reaction yet")

	require.NoError(t, store.SetCareAction(ctx, p.ID, "0xfan", sprouts.CareNurture))
	got, err = store.GetCareAction(ctx, p.ID, "0xfan")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sprouts.CareNurture, *got)

	// Flip in place; the unique constraint makes this an update.
	require.NoError(t, store.SetCareAction(ctx, p.ID, "0xfan", sprouts.CareNeglect))
	got, _ = store.GetCareAction(ctx, p.ID, "0xfan")
	require.NotNil(t, got)
	assert.Equal(t, sprouts.CareNeglect, *got)

	require.NoError(t, store.DeleteCareAction(ctx, p.ID, "0xfan"))
	got, _ = store.GetCareAction(ctx, p.ID, "0xfan")
	assert.Nil(t, got)
}

func TestProjectCounts_Tallies(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p := garden.Project{Owner: "0xowner", Title: "idea", Stage: garden.StagePlanted, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateProject(ctx, &p))

	require.NoError(t, store.SetCareAction(ctx, p.ID, "0xfan1", sprouts.CareNurture))
	require.NoError(t, store.SetCareAction(ctx, p.ID, "0xfan2", sprouts.CareNurture))
	require.NoError(t, store.SetCareAction(ctx, p.ID, "0xcritic", sprouts.CareNeglect))

	c := garden.Comment{ProjectID: p.ID, User: "0xfan1", Content: "nice", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateComment(ctx, &c))

	jr := garden.JoinRequest{ProjectID: p.ID, Builder: "0xbuilder", Status: garden.JoinPending, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateJoinRequest(ctx, &jr))

	counts, err := store.ProjectCounts(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, garden.ProjectCounts{
		Nurtures: 2, Neglects: 1, Comments: 1, JoinRequests: 1,
	}, counts)
}

// =============================================================================
// COMMENT TESTS
// =============================================================================

func TestComments_ListAndCountByUser(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p := garden.Project{Owner: "0xowner", Title: "idea", Stage: garden.StagePlanted, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateProject(ctx, &p))

	for _, content := range []string{"first", "second"} {
		c := garden.Comment{ProjectID: p.ID, User: "0xalice", Content: content, CreatedAt: time.Now().UTC()}
		require.NoError(t, store.CreateComment(ctx, &c))
	}
	c := garden.Comment{ProjectID: p.ID, User: "0xbob", Content: "third", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateComment(ctx, &c))

	all, err := store.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Content)

	count, err := store.CountCommentsBy(ctx, p.ID, "0xalice")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// =============================================================================
// JOIN REQUEST TESTS
// =============================================================================

func TestJoinRequests_StatusTransition(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	p := garden.Project{Owner: "0xowner", Title: "idea", Stage: garden.StagePlanted, CreatedAt: time.Now().UTC()}
	require.NoError(t, store.CreateProject(ctx, &p))

	jr := garden.JoinRequest{
		ProjectID: p.ID, Builder: "0xbuilder", Message: "let me in",
		Status: garden.JoinPending, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateJoinRequest(ctx, &jr))
	require.NotZero(t, jr.ID)

	assigned := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.SetJoinRequestStatus(ctx, jr.ID, garden.JoinApproved, &assigned))

	got, err := store.GetJoinRequest(ctx, jr.ID)
	require.NoError(t, err)
	assert.Equal(t, garden.JoinApproved, got.Status)
	require.NotNil(t, got.AssignedAt)
	assert.True(t, got.AssignedAt.Equal(assigned))

	listed, err := store.ListJoinRequests(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	assert.ErrorIs(t, store.SetJoinRequestStatus(ctx, 999, garden.JoinDeclined, nil), garden.ErrNotFound)
}

// =============================================================================
// PERSISTENCE ACROSS REOPEN
// =============================================================================

func TestLedger_SurvivesReopen(t *testing.T) {
	path := t.TempDir() + "/bloom.db"
	ctx := context.Background()

	store, err := sqlite.New(path)
	require.NoError(t, err)
	catalog, err := store.LoadCatalog(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, newGrant(catalog, "g-1", "0xabc", sprouts.ReasonPlantIdea, 50, 1)))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	agg, err := reopened.Aggregate(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, int64(50), agg.Total)

	rows, err := reopened.Grants(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "g-1", rows[0].ID)
}
