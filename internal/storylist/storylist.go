// Package storylist mirrors the server's story feed and keeps a user's
// own and favorite stories consistent with story creation and deletion.
package storylist

import (
	"context"
	"errors"
	"fmt"

	"github.com/patric-chuzhbe/hackorsnooze/internal/apiclient"
	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
	"github.com/patric-chuzhbe/hackorsnooze/internal/story"
	"github.com/patric-chuzhbe/hackorsnooze/internal/storyset"
	"github.com/patric-chuzhbe/hackorsnooze/internal/user"
)

// API is the subset of the news API a StoryList talks to.
type API interface {
	ListStories(ctx context.Context) ([]models.StoryRecord, error)
	CreateStory(ctx context.Context, token string, newStory models.NewStory) (*models.StoryRecord, error)
	DeleteStory(ctx context.Context, token, storyID string) error
}

// StoryList is the feed, newest first as the server orders it.
type StoryList struct {
	stories *storyset.Set
	api     API
}

// New wraps already built stories; Get is the usual constructor.
func New(api API, stories ...*story.Story) *StoryList {
	return &StoryList{
		stories: storyset.New(stories...),
		api:     api,
	}
}

// Get fetches the feed. No token is required.
func Get(ctx context.Context, api API) (*StoryList, error) {
	records, err := api.ListStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stories: %w", err)
	}

	return New(api, story.NewList(records)...), nil
}

// Stories returns a copy of the feed in order.
func (l *StoryList) Stories() []*story.Story {
	return l.stories.All()
}

// Len returns the number of stories in the feed.
func (l *StoryList) Len() int {
	return l.stories.Len()
}

// AddStory posts a story as u. Only after the API returns the created
// record is it put at the front of both the feed and u's own stories.
func (l *StoryList) AddStory(ctx context.Context, u *user.User, newStory models.NewStory) (*story.Story, error) {
	rec, err := l.api.CreateStory(ctx, u.LoginToken, newStory)
	if err != nil {
		return nil, fmt.Errorf("add story %q: %w", newStory.Title, err)
	}

	created := story.New(*rec)
	l.stories.Prepend(created)
	u.OwnStories().Prepend(created)

	return created, nil
}

// RemoveStory deletes storyID on the API, then scrubs it from the feed,
// u's own stories and u's favorites. Ids missing locally are ignored. A story
// the API no longer knows counts as already removed when it was still held
// locally; an id unknown to both sides is reported as not found.
func (l *StoryList) RemoveStory(ctx context.Context, u *user.User, storyID string) error {
	apiErr := l.api.DeleteStory(ctx, u.LoginToken, storyID)
	if apiErr != nil && !errors.Is(apiErr, apiclient.ErrNotFound) {
		return fmt.Errorf("remove story %s: %w", storyID, apiErr)
	}

	removedFromList := l.stories.Remove(storyID)
	removedFromOwn := u.OwnStories().Remove(storyID)
	removedFromFavorites := u.Favorites().Remove(storyID)

	if apiErr != nil && !removedFromList && !removedFromOwn && !removedFromFavorites {
		return fmt.Errorf("remove story %s: %w", storyID, apiErr)
	}

	return nil
}
