// Package mockapi provides a testify-based mock implementation
// of the news API interfaces consumed by the storylist and user packages.
// It is used for unit testing the entities without an HTTP server.
package mockapi

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
)

// APIMock is a testify mock that implements every API method
// used by the entities.
type APIMock struct {
	mock.Mock

	// OnListStories is an optional function field that can be assigned
	// to define custom mock behavior for ListStories in tests.
	//
	// If set, ListStories will delegate to this function instead of
	// using testify's generic mock handler.
	OnListStories func(ctx context.Context) ([]models.StoryRecord, error)
}

// ListStories mocks GET /stories.
func (m *APIMock) ListStories(ctx context.Context) ([]models.StoryRecord, error) {
	if m.OnListStories != nil {
		return m.OnListStories(ctx)
	}

	args := m.Called(ctx)
	records, _ := args.Get(0).([]models.StoryRecord)
	return records, args.Error(1)
}

// CreateStory mocks POST /stories.
func (m *APIMock) CreateStory(ctx context.Context, token string, newStory models.NewStory) (*models.StoryRecord, error) {
	args := m.Called(ctx, token, newStory)
	record, _ := args.Get(0).(*models.StoryRecord)
	return record, args.Error(1)
}

// DeleteStory mocks DELETE /stories/{storyId}.
func (m *APIMock) DeleteStory(ctx context.Context, token, storyID string) error {
	args := m.Called(ctx, token, storyID)
	return args.Error(0)
}

// Signup mocks POST /signup.
func (m *APIMock) Signup(ctx context.Context, username, password, name string) (*models.AuthResponse, error) {
	args := m.Called(ctx, username, password, name)
	resp, _ := args.Get(0).(*models.AuthResponse)
	return resp, args.Error(1)
}

// Login mocks POST /login.
func (m *APIMock) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	args := m.Called(ctx, username, password)
	resp, _ := args.Get(0).(*models.AuthResponse)
	return resp, args.Error(1)
}

// GetProfile mocks GET /users/{username}.
func (m *APIMock) GetProfile(ctx context.Context, token, username string) (*models.UserRecord, error) {
	args := m.Called(ctx, token, username)
	rec, _ := args.Get(0).(*models.UserRecord)
	return rec, args.Error(1)
}

// AddFavorite mocks POST /users/{username}/favorites/{storyId}.
func (m *APIMock) AddFavorite(ctx context.Context, token, username, storyID string) error {
	args := m.Called(ctx, token, username, storyID)
	return args.Error(0)
}

// RemoveFavorite mocks DELETE /users/{username}/favorites/{storyId}.
func (m *APIMock) RemoveFavorite(ctx context.Context, token, username, storyID string) error {
	args := m.Called(ctx, token, username, storyID)
	return args.Error(0)
}
