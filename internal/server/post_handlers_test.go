package server

import (
	"net/http"
	"strconv"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savePost(t *testing.T, app *fiber.App, token string, body SavePostRequest) (int, map[string]interface{}) {
	t.Helper()
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", body, token))
	require.NoError(t, err)

	var out map[string]interface{}
	decodeBody(t, resp, &out)
	return resp.StatusCode, out
}

func TestDraftLifecycleOverHTTP(t *testing.T) {
	s, app := newTestServer(t)
	token := signToken(t, "issuer|author", "Author")

	// No draft yet.
	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts/draft", nil, token))
	require.NoError(t, err)
	var draft *models.Post
	decodeBody(t, resp, &draft)
	assert.Nil(t, draft)

	// First save inserts a draft.
	status, first := savePost(t, app, token, SavePostRequest{
		Title: "First pass", Content: "words", Status: "draft",
	})
	require.Equal(t, http.StatusOK, status)
	firstID := first["id"].(float64)

	// Second save patches the same record.
	status, second := savePost(t, app, token, SavePostRequest{
		Title: "Second pass", Content: "more words", Status: "draft",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, firstID, second["id"])

	// Draft round-trips through the editor resume endpoint.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/draft", nil, token))
	require.NoError(t, err)
	decodeBody(t, resp, &draft)
	require.NotNil(t, draft)
	assert.Equal(t, "Second pass", draft.Title)

	// Publishing consumes the draft, keeping its ID.
	status, published := savePost(t, app, token, SavePostRequest{
		Title: "Final", Content: "done", Status: "published",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, firstID, published["id"])

	var post models.Post
	require.NoError(t, s.db.First(&post, uint(firstID)).Error)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.NotNil(t, post.PublishedAt)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/draft", nil, token))
	require.NoError(t, err)
	decodeBody(t, resp, &draft)
	assert.Nil(t, draft)
}

func TestSavePostRejectsInvalidStatus(t *testing.T) {
	_, app := newTestServer(t)
	token := signToken(t, "issuer|author", "Author")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/posts", SavePostRequest{
		Title: "T", Content: "C", Status: "archived",
	}, token))
	require.NoError(t, err)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, body.Code)
}

func TestUpdatePostOwnership(t *testing.T) {
	_, app := newTestServer(t)
	author := signToken(t, "issuer|author", "Author")
	stranger := signToken(t, "issuer|stranger", "Stranger")

	status, saved := savePost(t, app, author, SavePostRequest{
		Title: "Mine", Content: "words", Status: "draft",
	})
	require.Equal(t, http.StatusOK, status)
	postID := int(saved["id"].(float64))

	title := "Hijacked"
	resp, err := app.Test(jsonRequest(t, http.MethodPut,
		"/api/posts/"+strconv.Itoa(postID), UpdatePostRequest{Title: &title}, stranger))
	require.NoError(t, err)

	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, models.CodeNotAuthorized, body.Code)

	// The author may edit.
	resp, err = app.Test(jsonRequest(t, http.MethodPut,
		"/api/posts/"+strconv.Itoa(postID), UpdatePostRequest{Title: &title}, author))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPublicFeedHidesDrafts(t *testing.T) {
	_, app := newTestServer(t)
	token := signToken(t, "issuer|author", "Author")

	status, _ := savePost(t, app, token, SavePostRequest{
		Title: "Public piece", Content: "words", Status: "published",
	})
	require.Equal(t, http.StatusOK, status)

	status, saved := savePost(t, app, token, SavePostRequest{
		Title: "Hidden draft", Content: "words", Status: "draft",
	})
	require.Equal(t, http.StatusOK, status)
	draftID := int(saved["id"].(float64))

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts", nil, ""))
	require.NoError(t, err)

	var feed []models.Post
	decodeBody(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, "Public piece", feed[0].Title)

	// Fetching a draft by ID on the public route is a 404.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/posts/"+strconv.Itoa(draftID), nil, ""))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPostCountsViews(t *testing.T) {
	_, app := newTestServer(t)
	token := signToken(t, "issuer|author", "Author")

	status, saved := savePost(t, app, token, SavePostRequest{
		Title: "Read me", Content: "words", Status: "published",
	})
	require.Equal(t, http.StatusOK, status)
	postID := int(saved["id"].(float64))

	for i := 1; i <= 2; i++ {
		resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/posts/"+strconv.Itoa(postID), nil, ""))
		require.NoError(t, err)

		var post models.Post
		decodeBody(t, resp, &post)
		assert.Equal(t, i, post.ViewCount)
	}
}
