package service

import (
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(t *testing.T) *PostService {
	t.Helper()
	db := newTestDB(t)
	return NewPostService(db, repository.NewPostRepository(db))
}

func draftInput(title string) SavePostInput {
	return SavePostInput{
		Title:   title,
		Content: "Some content",
		Status:  models.PostStatusDraft,
		Tags:    []string{"go", "writing"},
	}
}

func TestSavePostKeepsSingleDraftPerAuthor(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")

	firstID, err := svc.SavePost(ctx, author.ID, draftInput("First pass"))
	require.NoError(t, err)

	// A second draft save patches the same record instead of inserting.
	secondID, err := svc.SavePost(ctx, author.ID, draftInput("Second pass"))
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID)

	var count int64
	svc.db.Model(&models.Post{}).Where("author_id = ?", author.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	draft, err := svc.GetUserDraft(ctx, author.ID)
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, "Second pass", draft.Title)
	assert.Nil(t, draft.PublishedAt)
}

func TestSavePostPublishConsumesDraft(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")

	draftID, err := svc.SavePost(ctx, author.ID, draftInput("Work in progress"))
	require.NoError(t, err)

	in := draftInput("Finished piece")
	in.Status = models.PostStatusPublished
	publishedID, err := svc.SavePost(ctx, author.ID, in)
	require.NoError(t, err)
	assert.Equal(t, draftID, publishedID, "publish must keep the draft's record ID")

	var post models.Post
	require.NoError(t, svc.db.First(&post, publishedID).Error)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	require.NotNil(t, post.PublishedAt)

	// The draft slot is free again; the next draft save inserts a new record.
	draft, err := svc.GetUserDraft(ctx, author.ID)
	require.NoError(t, err)
	assert.Nil(t, draft)

	nextID, err := svc.SavePost(ctx, author.ID, draftInput("Next piece"))
	require.NoError(t, err)
	assert.NotEqual(t, publishedID, nextID)
}

func TestSavePostPublishWithoutDraftInserts(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")

	in := draftInput("Straight to press")
	in.Status = models.PostStatusPublished
	id, err := svc.SavePost(ctx, author.ID, in)
	require.NoError(t, err)

	var post models.Post
	require.NoError(t, svc.db.First(&post, id).Error)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	require.NotNil(t, post.PublishedAt)
}

func TestSavePostValidation(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")

	in := draftInput("")
	_, err := svc.SavePost(ctx, author.ID, in)
	assert.Equal(t, models.CodeValidation, appCode(t, err))

	in = draftInput("Title")
	in.Content = ""
	_, err = svc.SavePost(ctx, author.ID, in)
	assert.Equal(t, models.CodeValidation, appCode(t, err))

	in = draftInput("Title")
	in.Status = "archived"
	_, err = svc.SavePost(ctx, author.ID, in)
	assert.Equal(t, models.CodeValidation, appCode(t, err))
}

func TestSavePostKeepsScheduledFor(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")

	when := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	in := draftInput("Scheduled")
	in.ScheduledFor = &when
	id, err := svc.SavePost(ctx, author.ID, in)
	require.NoError(t, err)

	var post models.Post
	require.NoError(t, svc.db.First(&post, id).Error)
	require.NotNil(t, post.ScheduledFor)
	assert.True(t, when.Equal(*post.ScheduledFor))
}

func TestUpdatePostRequiresOwnership(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")
	stranger := createUser(t, svc.db, "issuer|stranger", "Stranger")

	id, err := svc.SavePost(ctx, author.ID, draftInput("Mine"))
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.UpdatePost(ctx, stranger.ID, id, UpdatePostInput{Title: &title})
	assert.Equal(t, models.CodeNotAuthorized, appCode(t, err))

	_, err = svc.UpdatePost(ctx, author.ID, 9999, UpdatePostInput{Title: &title})
	assert.Equal(t, models.CodeNotFound, appCode(t, err))
}

func TestUpdatePostStampsPublishedAtOnce(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")

	id, err := svc.SavePost(ctx, author.ID, draftInput("Draft"))
	require.NoError(t, err)

	published := models.PostStatusPublished
	_, err = svc.UpdatePost(ctx, author.ID, id, UpdatePostInput{Status: &published})
	require.NoError(t, err)

	var post models.Post
	require.NoError(t, svc.db.First(&post, id).Error)
	require.NotNil(t, post.PublishedAt)
	stamped := *post.PublishedAt

	// A later edit that re-submits the published status keeps the timestamp.
	title := "Edited after publish"
	_, err = svc.UpdatePost(ctx, author.ID, id, UpdatePostInput{Title: &title, Status: &published})
	require.NoError(t, err)

	require.NoError(t, svc.db.First(&post, id).Error)
	require.NotNil(t, post.PublishedAt)
	assert.True(t, stamped.Equal(*post.PublishedAt))
	assert.Equal(t, "Edited after publish", post.Title)
}

func TestUpdatePostLeavesOmittedFieldsUntouched(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")

	in := draftInput("Original title")
	in.Category = "essays"
	id, err := svc.SavePost(ctx, author.ID, in)
	require.NoError(t, err)

	content := "Rewritten content"
	_, err = svc.UpdatePost(ctx, author.ID, id, UpdatePostInput{Content: &content})
	require.NoError(t, err)

	var post models.Post
	require.NoError(t, svc.db.First(&post, id).Error)
	assert.Equal(t, "Original title", post.Title)
	assert.Equal(t, "essays", post.Category)
	assert.Equal(t, "Rewritten content", post.Content)
}

func TestGetUserDraftIsNilWhenAbsent(t *testing.T) {
	svc := newPostService(t)
	author := createUser(t, svc.db, "issuer|author", "Author")

	draft, err := svc.GetUserDraft(testCtx(), author.ID)
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestGetPublishedHidesDraftsAndCountsViews(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")

	draftID, err := svc.SavePost(ctx, author.ID, draftInput("Hidden"))
	require.NoError(t, err)

	_, err = svc.GetPublished(ctx, draftID)
	assert.Equal(t, models.CodeNotFound, appCode(t, err))

	published := models.PostStatusPublished
	_, err = svc.UpdatePost(ctx, author.ID, draftID, UpdatePostInput{Status: &published})
	require.NoError(t, err)

	post, err := svc.GetPublished(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, 1, post.ViewCount)

	post, err = svc.GetPublished(ctx, draftID)
	require.NoError(t, err)
	assert.Equal(t, 2, post.ViewCount)
}

func TestListPublishedNewestFirst(t *testing.T) {
	svc := newPostService(t)
	ctx := testCtx()
	author := createUser(t, svc.db, "issuer|author", "Author")

	older := time.Now().UTC().Add(-time.Hour)
	newer := time.Now().UTC()
	require.NoError(t, svc.db.Create(&models.Post{
		Title: "Older", Content: "c", Status: models.PostStatusPublished,
		AuthorID: author.ID, PublishedAt: &older,
	}).Error)
	require.NoError(t, svc.db.Create(&models.Post{
		Title: "Newer", Content: "c", Status: models.PostStatusPublished,
		AuthorID: author.ID, PublishedAt: &newer,
	}).Error)
	require.NoError(t, svc.db.Create(&models.Post{
		Title: "Draft", Content: "c", Status: models.PostStatusDraft,
		AuthorID: author.ID,
	}).Error)

	posts, err := svc.ListPublished(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "Newer", posts[0].Title)
	assert.Equal(t, "Older", posts[1].Title)
	assert.Equal(t, author.ID, posts[0].Author.ID)
}
