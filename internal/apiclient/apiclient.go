// Package apiclient wraps the news API endpoints. Every method performs
// exactly one HTTP round trip through a resty client bound to a base URL,
// converts non-2xx answers into *StatusError and validates response bodies
// against the schemas in package models.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/patric-chuzhbe/hackorsnooze/internal/logger"
	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
)

const (
	storiesPath    = "/stories"
	storyPath      = "/stories/{storyId}"
	signupPath     = "/signup"
	loginPath      = "/login"
	userPath       = "/users/{username}"
	favoritePath   = "/users/{username}/favorites/{storyId}"
	requestIDHdr   = "X-Request-ID"
	defaultTimeout = 30 * time.Second
)

var (
	// ErrBadRequest is matched by 400 and 422 answers.
	ErrBadRequest = errors.New("request rejected by the API")

	// ErrUnauthorized is matched by 401 and 403 answers: bad credentials or a missing/expired token.
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound is matched by 404 answers.
	ErrNotFound = errors.New("not found")

	// ErrConflict is matched by 409 answers, e.g. a username already taken.
	ErrConflict = errors.New("conflict")

	// ErrUnexpectedStatus is matched by every other non-2xx answer.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// StatusError describes a non-2xx API answer.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Unwrap maps the status code to one of the package sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrBadRequest
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}

	return ErrUnexpectedStatus
}

// Client is safe for concurrent use.
type Client struct {
	http *resty.Client
}

// InitOption customizes a Client.
type InitOption func(*initOptions)

type initOptions struct {
	timeout    time.Duration
	httpClient *http.Client
}

// WithTimeout bounds every request. Zero disables the client-side timeout
// and leaves only the caller's context.
func WithTimeout(timeout time.Duration) InitOption {
	return func(options *initOptions) {
		options.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying *http.Client, e.g. with httptest's.
func WithHTTPClient(httpClient *http.Client) InitOption {
	return func(options *initOptions) {
		options.httpClient = httpClient
	}
}

// New returns a Client talking to the API rooted at baseURL.
func New(baseURL string, optionsProto ...InitOption) *Client {
	options := &initOptions{
		timeout: defaultTimeout,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	var rc *resty.Client
	if options.httpClient != nil {
		rc = resty.NewWithClient(options.httpClient)
	} else {
		rc = resty.New()
	}

	rc.SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(options.timeout).
		SetRetryCount(0)

	return &Client{
		http: logger.WithRestyLogging(rc),
	}
}

func (c *Client) newRequest(ctx context.Context) *resty.Request {
	return c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHdr, uuid.New().String())
}

// execute sends req and decodes a 2xx body into result when result is non-nil.
func (c *Client) execute(req *resty.Request, method, path string, result interface{}) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return newStatusError(method, resp)
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, path, models.ErrMalformedPayload, err)
	}

	if err := models.ValidatePayload(result); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	return nil
}

func newStatusError(method string, resp *resty.Response) *StatusError {
	statusErr := &StatusError{
		Method:     method,
		Path:       resp.Request.RawRequest.URL.Path,
		StatusCode: resp.StatusCode(),
		Message:    http.StatusText(resp.StatusCode()),
	}

	var body models.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error.Message != "" {
		statusErr.Message = body.Error.Message
	}

	return statusErr
}

// ListStories fetches the story feed in server order. No token is needed.
func (c *Client) ListStories(ctx context.Context) ([]models.StoryRecord, error) {
	var result models.StoriesResponse
	err := c.execute(c.newRequest(ctx), http.MethodGet, storiesPath, &result)
	if err != nil {
		return nil, err
	}

	return result.Stories, nil
}

// CreateStory posts a new story on behalf of the token owner.
func (c *Client) CreateStory(ctx context.Context, token string, newStory models.NewStory) (*models.StoryRecord, error) {
	req := c.newRequest(ctx).SetBody(models.CreateStoryRequest{
		Token: token,
		Story: newStory,
	})

	var result models.StoryResponse
	if err := c.execute(req, http.MethodPost, storiesPath, &result); err != nil {
		return nil, err
	}

	return result.Story, nil
}

// DeleteStory deletes one of the token owner's stories.
func (c *Client) DeleteStory(ctx context.Context, token, storyID string) error {
	req := c.newRequest(ctx).
		SetPathParam("storyId", storyID).
		SetBody(models.TokenRequest{Token: token})

	return c.execute(req, http.MethodDelete, storyPath, nil)
}

// Signup creates an account and returns its profile and login token.
func (c *Client) Signup(ctx context.Context, username, password, name string) (*models.AuthResponse, error) {
	req := c.newRequest(ctx).SetBody(models.AuthRequest{
		User: models.Credentials{
			Username: username,
			Password: password,
			Name:     name,
		},
	})

	var result models.AuthResponse
	if err := c.execute(req, http.MethodPost, signupPath, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Login exchanges credentials for the profile and a login token.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	req := c.newRequest(ctx).SetBody(models.AuthRequest{
		User: models.Credentials{
			Username: username,
			Password: password,
		},
	})

	var result models.AuthResponse
	if err := c.execute(req, http.MethodPost, loginPath, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetProfile fetches a user profile. The token travels as a query parameter
// and is not renewed by this endpoint.
func (c *Client) GetProfile(ctx context.Context, token, username string) (*models.UserRecord, error) {
	req := c.newRequest(ctx).
		SetPathParam("username", username).
		SetQueryParam("token", token)

	var result models.ProfileResponse
	if err := c.execute(req, http.MethodGet, userPath, &result); err != nil {
		return nil, err
	}

	return result.User, nil
}

// AddFavorite marks storyID as a favorite of username.
func (c *Client) AddFavorite(ctx context.Context, token, username, storyID string) error {
	return c.favorite(ctx, http.MethodPost, token, username, storyID)
}

// RemoveFavorite unmarks storyID as a favorite of username.
func (c *Client) RemoveFavorite(ctx context.Context, token, username, storyID string) error {
	return c.favorite(ctx, http.MethodDelete, token, username, storyID)
}

func (c *Client) favorite(ctx context.Context, method, token, username, storyID string) error {
	req := c.newRequest(ctx).
		SetPathParams(map[string]string{
			"username": username,
			"storyId":  storyID,
		}).
		SetBody(models.TokenRequest{Token: token})

	return c.execute(req, method, favoritePath, nil)
}
