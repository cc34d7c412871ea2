package service

import (
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFollowService(t *testing.T) *FollowService {
	t.Helper()
	db := newTestDB(t)
	return NewFollowService(
		db,
		repository.NewUserRepository(db),
		repository.NewFollowRepository(db),
		repository.NewPostRepository(db),
	)
}

func TestToggleFollowFlipsTheEdge(t *testing.T) {
	svc := newFollowService(t)
	ctx := testCtx()
	alice := createUser(t, svc.db, "issuer|alice", "Alice")
	bob := createUser(t, svc.db, "issuer|bob", "Bob")

	following, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	exists, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// Toggling again removes the edge and returns to the original state.
	following, err = svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	var count int64
	svc.db.Model(&models.Follow{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestToggleFollowRejectsSelf(t *testing.T) {
	svc := newFollowService(t)
	ctx := testCtx()
	alice := createUser(t, svc.db, "issuer|alice", "Alice")

	_, err := svc.ToggleFollow(ctx, alice.ID, alice.ID)
	assert.Equal(t, models.CodeInvalidOperation, appCode(t, err))

	// Still rejected on repeat; self edges can never exist in either state.
	_, err = svc.ToggleFollow(ctx, alice.ID, alice.ID)
	assert.Equal(t, models.CodeInvalidOperation, appCode(t, err))
}

func TestToggleFollowUnknownTarget(t *testing.T) {
	svc := newFollowService(t)
	alice := createUser(t, svc.db, "issuer|alice", "Alice")

	_, err := svc.ToggleFollow(testCtx(), alice.ID, 9999)
	assert.Equal(t, models.CodeNotFound, appCode(t, err))
}

func TestGetMyFollowersProjection(t *testing.T) {
	svc := newFollowService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")
	fan := createUser(t, svc.db, "issuer|fan", "Fan")
	mutual := createUser(t, svc.db, "issuer|mutual", "Mutual")

	_, err := svc.ToggleFollow(ctx, fan.ID, author.ID)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, mutual.ID, author.ID)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, author.ID, mutual.ID)
	require.NoError(t, err)

	publishedAt := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, svc.db.Create(&models.Post{
		Title: "By mutual", Content: "c", Status: models.PostStatusPublished,
		AuthorID: mutual.ID, PublishedAt: &publishedAt,
	}).Error)
	require.NoError(t, svc.db.Create(&models.Post{
		Title: "Mutual draft", Content: "c", Status: models.PostStatusDraft,
		AuthorID: mutual.ID,
	}).Error)

	followers, err := svc.GetMyFollowers(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, followers, 2)

	byID := map[uint]FollowerProjection{}
	for _, f := range followers {
		byID[f.User.ID] = f
	}

	fanEntry, ok := byID[fan.ID]
	require.True(t, ok)
	assert.Equal(t, "Fan", fanEntry.User.Name)
	assert.False(t, fanEntry.FollowsBack)
	assert.Equal(t, int64(0), fanEntry.PostCount)
	assert.Nil(t, fanEntry.LatestPostAt)

	mutualEntry, ok := byID[mutual.ID]
	require.True(t, ok)
	assert.True(t, mutualEntry.FollowsBack)
	assert.Equal(t, int64(1), mutualEntry.PostCount, "drafts do not count")
	require.NotNil(t, mutualEntry.LatestPostAt)
	assert.True(t, publishedAt.Equal(*mutualEntry.LatestPostAt))
	assert.Equal(t, int64(1), mutualEntry.FollowerCount)
}

func TestGetMyFollowersEmpty(t *testing.T) {
	svc := newFollowService(t)
	author := createUser(t, svc.db, "issuer|author", "Author")

	followers, err := svc.GetMyFollowers(testCtx(), author.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestFollowCounts(t *testing.T) {
	svc := newFollowService(t)
	ctx := testCtx()
	a := createUser(t, svc.db, "issuer|a", "A")
	b := createUser(t, svc.db, "issuer|b", "B")
	c := createUser(t, svc.db, "issuer|c", "C")

	_, err := svc.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, c.ID, a.ID)
	require.NoError(t, err)
	_, err = svc.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)

	followers, following, err := svc.FollowCounts(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers)
	assert.Equal(t, int64(1), following)
}
