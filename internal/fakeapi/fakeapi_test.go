package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
)

var testSigningKey = []byte("fake-api-test-key")

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func setupTestServer(t *testing.T, optionsProto ...InitOption) (*httptest.Server, *Server) {
	t.Helper()

	api := New(testSigningKey, append([]InitOption{WithClock(fixedClock)}, optionsProto...)...)
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)

	return srv, api
}

func signup(t *testing.T, srv *httptest.Server, username string) models.AuthResponse {
	t.Helper()

	var result models.AuthResponse
	resp, err := resty.New().R().
		SetBody(models.AuthRequest{User: models.Credentials{Username: username, Password: "pw", Name: "Name " + username}}).
		SetResult(&result).
		Post(srv.URL + "/signup")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())

	return result
}

func decodeError(t *testing.T, body []byte) models.APIError {
	t.Helper()

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))

	return errResp.Error
}

func TestSignupAndLogin(t *testing.T) {
	srv, _ := setupTestServer(t)

	auth := signup(t, srv, "alice")
	require.NotNil(t, auth.User)
	assert.Equal(t, "alice", auth.User.Username)
	assert.Equal(t, "Name alice", auth.User.Name)
	assert.Equal(t, "2024-03-01T12:00:00.000Z", auth.User.CreatedAt)
	assert.NotEmpty(t, auth.Token)
	assert.Empty(t, auth.User.Favorites)
	assert.Empty(t, auth.User.Stories)

	type tTestCase struct {
		name     string
		username string
		password string
		code     int
	}
	testCases := []tTestCase{
		{name: "positive", username: "alice", password: "pw", code: http.StatusOK},
		{name: "wrong_password", username: "alice", password: "nope", code: http.StatusUnauthorized},
		{name: "unknown_user", username: "bob", password: "pw", code: http.StatusNotFound},
		{name: "empty_password", username: "alice", password: "", code: http.StatusBadRequest},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			resp, err := resty.New().R().
				SetBody(models.AuthRequest{User: models.Credentials{Username: testCase.username, Password: testCase.password}}).
				Post(srv.URL + "/login")
			require.NoError(t, err)
			assert.Equal(t, testCase.code, resp.StatusCode())
		})
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	srv, _ := setupTestServer(t)
	signup(t, srv, "alice")

	resp, err := resty.New().R().
		SetBody(models.AuthRequest{User: models.Credentials{Username: "alice", Password: "x", Name: "A"}}).
		Post(srv.URL + "/signup")
	require.NoError(t, err)

	assert.Equal(t, http.StatusConflict, resp.StatusCode())
	apiErr := decodeError(t, resp.Body())
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, apiErr.Message, "alice")
}

func TestStoryLifecycle(t *testing.T) {
	srv, _ := setupTestServer(t, WithStories(models.StoryRecord{
		StoryID:  "seed",
		Title:    "Seeded",
		Author:   "Seeder",
		URL:      "http://seed.example.com",
		Username: "nobody",
	}))
	auth := signup(t, srv, "alice")

	var created models.StoryResponse
	resp, err := resty.New().R().
		SetBody(models.CreateStoryRequest{
			Token: auth.Token,
			Story: models.NewStory{Title: "Go", Author: "Gopher", URL: "https://go.dev"},
		}).
		SetResult(&created).
		Post(srv.URL + "/stories")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode())
	require.NotNil(t, created.Story)
	assert.NotEmpty(t, created.Story.StoryID)
	assert.Equal(t, "alice", created.Story.Username)

	var list models.StoriesResponse
	resp, err = resty.New().R().SetResult(&list).Get(srv.URL + "/stories")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, list.Stories, 2)
	assert.Equal(t, created.Story.StoryID, list.Stories[0].StoryID)
	assert.Equal(t, "seed", list.Stories[1].StoryID)

	resp, err = resty.New().R().
		SetBody(models.TokenRequest{Token: auth.Token}).
		Post(fmt.Sprintf("%s/users/alice/favorites/%s", srv.URL, created.Story.StoryID))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	resp, err = resty.New().R().
		SetBody(models.TokenRequest{Token: auth.Token}).
		Delete(srv.URL + "/stories/seed")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode())

	resp, err = resty.New().R().
		SetBody(models.TokenRequest{Token: auth.Token}).
		Delete(srv.URL + "/stories/" + created.Story.StoryID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	var profile models.ProfileResponse
	resp, err = resty.New().R().
		SetQueryParam("token", auth.Token).
		SetResult(&profile).
		Get(srv.URL + "/users/alice")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Empty(t, profile.User.Favorites)
	assert.Empty(t, profile.User.Stories)
}

func TestTokenChecks(t *testing.T) {
	srv, api := setupTestServer(t, WithStories(models.StoryRecord{StoryID: "s1", Title: "t", URL: "http://a.b", Username: "bob"}))
	signup(t, srv, "alice")
	signup(t, srv, "bob")

	forged, err := New([]byte("other-key")).IssueToken("alice")
	require.NoError(t, err)
	aliceToken, err := api.IssueToken("alice")
	require.NoError(t, err)

	type tTestCase struct {
		name  string
		token string
		path  string
		code  int
	}
	testCases := []tTestCase{
		{name: "missing_token", token: "", path: "/users/alice/favorites/s1", code: http.StatusUnauthorized},
		{name: "forged_token", token: forged, path: "/users/alice/favorites/s1", code: http.StatusUnauthorized},
		{name: "other_users_favorites", token: aliceToken, path: "/users/bob/favorites/s1", code: http.StatusUnauthorized},
		{name: "unknown_story", token: aliceToken, path: "/users/alice/favorites/nope", code: http.StatusNotFound},
		{name: "positive", token: aliceToken, path: "/users/alice/favorites/s1", code: http.StatusOK},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			resp, err := resty.New().R().
				SetBody(models.TokenRequest{Token: testCase.token}).
				Post(srv.URL + testCase.path)
			require.NoError(t, err)
			assert.Equal(t, testCase.code, resp.StatusCode())
		})
	}

	resp, err := resty.New().R().SetQueryParam("token", "garbage").Get(srv.URL + "/users/alice")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
}

func TestFavoritesAreIdempotent(t *testing.T) {
	srv, _ := setupTestServer(t, WithStories(models.StoryRecord{StoryID: "s1", Title: "t", URL: "http://a.b", Username: "bob"}))
	auth := signup(t, srv, "alice")

	for i := 0; i < 2; i++ {
		resp, err := resty.New().R().
			SetBody(models.TokenRequest{Token: auth.Token}).
			Post(srv.URL + "/users/alice/favorites/s1")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode())
	}

	var profile models.ProfileResponse
	_, err := resty.New().R().SetQueryParam("token", auth.Token).SetResult(&profile).Get(srv.URL + "/users/alice")
	require.NoError(t, err)
	require.Len(t, profile.User.Favorites, 1)

	resp, err := resty.New().R().
		SetBody(models.TokenRequest{Token: auth.Token}).
		Delete(srv.URL + "/users/alice/favorites/s1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	_, err = resty.New().R().SetQueryParam("token", auth.Token).SetResult(&profile).Get(srv.URL + "/users/alice")
	require.NoError(t, err)
	assert.Empty(t, profile.User.Favorites)
}

func TestCreateStoryValidation(t *testing.T) {
	srv, _ := setupTestServer(t)
	auth := signup(t, srv, "alice")

	resp, err := resty.New().R().
		SetBody(models.CreateStoryRequest{
			Token: auth.Token,
			Story: models.NewStory{Title: "Go", Author: "Gopher", URL: "not a url"},
		}).
		Post(srv.URL + "/stories")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())

	resp, err = resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"token":`).
		Post(srv.URL + "/stories")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
}
