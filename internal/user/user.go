// Package user defines the authenticated session entity: profile fields,
// the login token and the user's own and favorite stories.
package user

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/hackorsnooze/internal/logger"
	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
	"github.com/patric-chuzhbe/hackorsnooze/internal/story"
	"github.com/patric-chuzhbe/hackorsnooze/internal/storyset"
)

// API is the subset of the news API a User talks to.
type API interface {
	Signup(ctx context.Context, username, password, name string) (*models.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, token, username string) (*models.UserRecord, error)
	AddFavorite(ctx context.Context, token, username, storyID string) error
	RemoveFavorite(ctx context.Context, token, username, storyID string) error
}

type favoriteAction int

const (
	favoriteAdd favoriteAction = iota
	favoriteRemove
)

// User represents a logged-in account. A User without LoginToken is anonymous;
// the token is never checked locally, the API rejects calls made without it.
type User struct {
	Username   string
	Name       string
	CreatedAt  string
	LoginToken string

	favorites  *storyset.Set
	ownStories *storyset.Set
	api        API
}

// FromRecord builds a User from a profile record and a token. Favorites are
// seeded from rec.Favorites and own stories from rec.Stories.
func FromRecord(api API, rec *models.UserRecord, token string) *User {
	return &User{
		Username:   rec.Username,
		Name:       rec.Name,
		CreatedAt:  rec.CreatedAt,
		LoginToken: token,
		favorites:  storyset.New(story.NewList(rec.Favorites)...),
		ownStories: storyset.New(story.NewList(rec.Stories)...),
		api:        api,
	}
}

// Signup registers a new account and returns it logged in.
func Signup(ctx context.Context, api API, username, password, name string) (*User, error) {
	resp, err := api.Signup(ctx, username, password, name)
	if err != nil {
		return nil, fmt.Errorf("signup %q: %w", username, err)
	}

	return FromRecord(api, resp.User, resp.Token), nil
}

// Login authenticates an existing account.
func Login(ctx context.Context, api API, username, password string) (*User, error) {
	resp, err := api.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login %q: %w", username, err)
	}

	return FromRecord(api, resp.User, resp.Token), nil
}

// LoginViaStoredCredentials rebuilds a session from a previously stored token.
// It never returns an error: any failure is logged and reported as nil, so
// callers treat "nothing stored" and "stored session rejected" alike.
func LoginViaStoredCredentials(ctx context.Context, api API, token, username string) *User {
	rec, err := api.GetProfile(ctx, token, username)
	if err != nil {
		logger.Log.Infow("loginViaStoredCredentials failed", "username", username, zap.Error(err))
		return nil
	}

	return FromRecord(api, rec, token)
}

// Favorites returns the user's favorite stories.
func (u *User) Favorites() *storyset.Set {
	return u.favorites
}

// OwnStories returns the stories the user posted.
func (u *User) OwnStories() *storyset.Set {
	return u.ownStories
}

// IsFavorite reports whether s is among the favorites. It makes no API call.
func (u *User) IsFavorite(s *story.Story) bool {
	return u.favorites.Contains(s.StoryID)
}

// AddFavorite marks s as a favorite on the API and, once the API has
// accepted it, appends s to the local favorites. On error the local
// favorites are unchanged.
func (u *User) AddFavorite(ctx context.Context, s *story.Story) error {
	if err := u.toggleFavorite(ctx, favoriteAdd, s); err != nil {
		return err
	}
	u.favorites.Append(s)

	return nil
}

// RemoveFavorite is the inverse of AddFavorite with the same ordering:
// remote first, local only on success.
func (u *User) RemoveFavorite(ctx context.Context, s *story.Story) error {
	if err := u.toggleFavorite(ctx, favoriteRemove, s); err != nil {
		return err
	}
	u.favorites.Remove(s.StoryID)

	return nil
}

func (u *User) toggleFavorite(ctx context.Context, action favoriteAction, s *story.Story) error {
	var err error
	switch action {
	case favoriteAdd:
		err = u.api.AddFavorite(ctx, u.LoginToken, u.Username, s.StoryID)
	case favoriteRemove:
		err = u.api.RemoveFavorite(ctx, u.LoginToken, u.Username, s.StoryID)
	default:
		err = fmt.Errorf("unknown favorite action %d", action)
	}
	if err != nil {
		return fmt.Errorf("favorite %s for %q: %w", s.StoryID, u.Username, err)
	}

	return nil
}
