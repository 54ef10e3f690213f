package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/hackorsnooze/internal/fakeapi"
	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
)

func setupClient(t *testing.T, stories ...models.StoryRecord) *Client {
	t.Helper()

	api := fakeapi.New([]byte("apiclient-test"), fakeapi.WithStories(stories...))
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)

	return New(srv.URL, WithTimeout(5*time.Second))
}

func setupRawServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(srv.URL)
}

func TestListStoriesKeepsServerOrder(t *testing.T) {
	client := setupClient(
		t,
		models.StoryRecord{StoryID: "1", Title: "one", URL: "http://one.example.com", Username: "u"},
		models.StoryRecord{StoryID: "2", Title: "two", URL: "http://two.example.com", Username: "u"},
	)

	stories, err := client.ListStories(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "1", stories[0].StoryID)
	assert.Equal(t, "2", stories[1].StoryID)
}

func TestSignupLoginProfile(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	signedUp, err := client.Signup(ctx, "alice", "pw123", "Alice A")
	require.NoError(t, err)
	assert.Equal(t, "alice", signedUp.User.Username)
	assert.Equal(t, "Alice A", signedUp.User.Name)
	assert.NotEmpty(t, signedUp.Token)

	_, err = client.Signup(ctx, "alice", "pw123", "Alice A")
	assert.ErrorIs(t, err, ErrConflict)

	loggedIn, err := client.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, loggedIn.Token)

	_, err = client.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	profile, err := client.GetProfile(ctx, loggedIn.Token, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)

	_, err = client.GetProfile(ctx, "bad-token", "alice")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestStoryAndFavoriteCalls(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	auth, err := client.Signup(ctx, "alice", "pw", "Alice")
	require.NoError(t, err)

	created, err := client.CreateStory(ctx, auth.Token, models.NewStory{Title: "Go", Author: "Gopher", URL: "https://go.dev/"})
	require.NoError(t, err)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "https://go.dev/", created.URL)

	require.NoError(t, client.AddFavorite(ctx, auth.Token, "alice", created.StoryID))

	profile, err := client.GetProfile(ctx, auth.Token, "alice")
	require.NoError(t, err)
	require.Len(t, profile.Favorites, 1)
	require.Len(t, profile.Stories, 1)

	require.NoError(t, client.RemoveFavorite(ctx, auth.Token, "alice", created.StoryID))
	require.NoError(t, client.DeleteStory(ctx, auth.Token, created.StoryID))

	err = client.DeleteStory(ctx, auth.Token, created.StoryID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = client.AddFavorite(ctx, "", "alice", "whatever")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = client.CreateStory(ctx, auth.Token, models.NewStory{Title: "x", Author: "y", URL: "nope"})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestStatusErrorCarriesAPIMessage(t *testing.T) {
	client := setupRawServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"error":{"status":418,"title":"Teapot","message":"short and stout"}}`))
	})

	_, err := client.ListStories(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTeapot, statusErr.StatusCode)
	assert.Equal(t, "short and stout", statusErr.Message)
	assert.Equal(t, http.MethodGet, statusErr.Method)
	assert.Equal(t, "/stories", statusErr.Path)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestMalformedPayload(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "missing_stories", body: `{}`},
		{name: "story_without_id", body: `{"stories":[{"title":"t","url":"http://a.b","username":"u"}]}`},
		{name: "not_json", body: `<html></html>`},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			client := setupRawServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(testCase.body))
			})

			_, err := client.ListStories(context.Background())
			assert.ErrorIs(t, err, models.ErrMalformedPayload)
		})
	}
}

func TestAuthResponseWithoutToken(t *testing.T) {
	client := setupRawServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"username":"alice","favorites":[],"stories":[]}}`))
	})

	_, err := client.Login(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, models.ErrMalformedPayload)
}

func TestRequestShape(t *testing.T) {
	var gotMethod, gotPath, gotRequestID string
	client := setupRawServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotRequestID = r.Header.Get(requestIDHdr)
		w.WriteHeader(http.StatusOK)
	})

	err := client.RemoveFavorite(context.Background(), "tok", "alice", "story 1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/users/alice/favorites/story 1", gotPath)
	assert.NotEmpty(t, gotRequestID)
}

func TestContextCancellation(t *testing.T) {
	client := setupRawServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ListStories(ctx)
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr))
}
