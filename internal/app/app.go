// Package app wires configuration, logging, the API client and the
// credentials store into the session used by the snooze CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/hackorsnooze/internal/apiclient"
	"github.com/patric-chuzhbe/hackorsnooze/internal/config"
	"github.com/patric-chuzhbe/hackorsnooze/internal/credstore"
	"github.com/patric-chuzhbe/hackorsnooze/internal/logger"
	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
	"github.com/patric-chuzhbe/hackorsnooze/internal/story"
	"github.com/patric-chuzhbe/hackorsnooze/internal/storylist"
	"github.com/patric-chuzhbe/hackorsnooze/internal/user"
)

// ErrNotLoggedIn is returned by operations that need a session when
// no valid stored session exists.
var ErrNotLoggedIn = errors.New("not logged in")

type api interface {
	storylist.API
	user.API
}

type credentialsKeeper interface {
	Save(creds credstore.Credentials) error
	Load() (credstore.Credentials, bool, error)
	Clear() error
}

// App encapsulates the configuration, API client and credentials store.
type App struct {
	cfg   *config.Config
	api   api
	creds credentialsKeeper
}

// New initializes a new instance of App by:
// - initializing logger
// - building the API client for cfg.APIBaseURL
// - opening the credentials store
func New(cfg *config.Config) (*App, error) {
	if err := logger.Init(cfg.LogLevel); err != nil {
		return nil, err
	}

	return NewWithDeps(
		cfg,
		apiclient.New(cfg.APIBaseURL, apiclient.WithTimeout(cfg.RequestTimeout)),
		credstore.New(cfg.CredentialsFile),
	), nil
}

// NewWithDeps builds an App around already constructed dependencies.
func NewWithDeps(cfg *config.Config, client api, creds credentialsKeeper) *App {
	return &App{
		cfg:   cfg,
		api:   client,
		creds: creds,
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Fprintln(os.Stderr, "Logger sync error:", err)
	}
}

// Signup registers an account and remembers its session.
func (a *App) Signup(ctx context.Context, username, password, name string) (*user.User, error) {
	u, err := user.Signup(ctx, a.api, username, password, name)
	if err != nil {
		return nil, err
	}

	return u, a.remember(u)
}

// Login authenticates and remembers the session.
func (a *App) Login(ctx context.Context, username, password string) (*user.User, error) {
	u, err := user.Login(ctx, a.api, username, password)
	if err != nil {
		return nil, err
	}

	return u, a.remember(u)
}

func (a *App) remember(u *user.User) error {
	return a.creds.Save(credstore.Credentials{
		Token:    u.LoginToken,
		Username: u.Username,
	})
}

// Logout forgets the stored session.
func (a *App) Logout() error {
	return a.creds.Clear()
}

// CurrentUser restores the stored session. It returns nil both when nothing
// is stored and when the stored session is rejected.
func (a *App) CurrentUser(ctx context.Context) *user.User {
	creds, found, err := a.creds.Load()
	if err != nil {
		logger.Log.Infow("Error loading stored credentials", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	return user.LoginViaStoredCredentials(ctx, a.api, creds.Token, creds.Username)
}

func (a *App) requireUser(ctx context.Context) (*user.User, error) {
	u := a.CurrentUser(ctx)
	if u == nil {
		return nil, ErrNotLoggedIn
	}

	return u, nil
}

// Stories fetches the feed.
func (a *App) Stories(ctx context.Context) (*storylist.StoryList, error) {
	return storylist.Get(ctx, a.api)
}

// AddStory posts a story as the logged-in user.
func (a *App) AddStory(ctx context.Context, newStory models.NewStory) (*story.Story, error) {
	u, err := a.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	list, err := a.Stories(ctx)
	if err != nil {
		return nil, err
	}

	return list.AddStory(ctx, u, newStory)
}

// RemoveStory deletes one of the logged-in user's stories.
func (a *App) RemoveStory(ctx context.Context, storyID string) error {
	u, err := a.requireUser(ctx)
	if err != nil {
		return err
	}

	return storylist.New(a.api).RemoveStory(ctx, u, storyID)
}

// ToggleFavorite adds or removes storyID from the logged-in user's favorites
// and returns the user with its updated favorites.
func (a *App) ToggleFavorite(ctx context.Context, storyID string, favorite bool) (*user.User, error) {
	u, err := a.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	s, err := a.findStory(ctx, u, storyID)
	if err != nil {
		return nil, err
	}

	if favorite {
		err = u.AddFavorite(ctx, s)
	} else {
		err = u.RemoveFavorite(ctx, s)
	}
	if err != nil {
		return nil, err
	}

	return u, nil
}

func (a *App) findStory(ctx context.Context, u *user.User, storyID string) (*story.Story, error) {
	if s := u.Favorites().Get(storyID); s != nil {
		return s, nil
	}
	if s := u.OwnStories().Get(storyID); s != nil {
		return s, nil
	}

	list, err := a.Stories(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range list.Stories() {
		if s.StoryID == storyID {
			return s, nil
		}
	}

	// unknown locally; the API decides whether it exists
	return &story.Story{StoryID: storyID}, nil
}

// Me returns the logged-in user or ErrNotLoggedIn.
func (a *App) Me(ctx context.Context) (*user.User, error) {
	return a.requireUser(ctx)
}
