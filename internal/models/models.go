// Package models holds the wire schema of the news API: one record type per
// payload shape, plus validation applied at the deserialization boundary.
package models

import (
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"
)

// ErrMalformedPayload is returned when an API response decodes but lacks
// fields the client relies on.
var ErrMalformedPayload = errors.New("malformed API payload")

// StoryRecord is a story as the API serializes it.
type StoryRecord struct {
	StoryID   string `json:"storyId" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Author    string `json:"author"`
	URL       string `json:"url" validate:"required"`
	Username  string `json:"username" validate:"required"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// UserRecord is a user profile as the API serializes it. Own stories
// are sent under "stories", favorites under "favorites".
type UserRecord struct {
	Username  string        `json:"username" validate:"required"`
	Name      string        `json:"name"`
	CreatedAt string        `json:"createdAt"`
	UpdatedAt string        `json:"updatedAt,omitempty"`
	Favorites []StoryRecord `json:"favorites" validate:"dive"`
	Stories   []StoryRecord `json:"stories" validate:"dive"`
}

// NewStory carries the user-supplied fields of a story to be created.
type NewStory struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	URL    string `json:"url" validate:"required,url"`
}

// Credentials is the "user" object of the signup and login requests.
// Name is only sent on signup.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name,omitempty"`
}

// AuthRequest is the body of POST /signup and POST /login.
type AuthRequest struct {
	User Credentials `json:"user"`
}

// CreateStoryRequest is the body of POST /stories.
type CreateStoryRequest struct {
	Token string   `json:"token" validate:"required"`
	Story NewStory `json:"story"`
}

// TokenRequest is the body of the token-only mutating calls.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// StoriesResponse is returned by GET /stories.
type StoriesResponse struct {
	Stories []StoryRecord `json:"stories" validate:"required,dive"`
}

// StoryResponse is returned by POST /stories.
type StoryResponse struct {
	Story *StoryRecord `json:"story" validate:"required"`
}

// AuthResponse is returned by POST /signup and POST /login.
type AuthResponse struct {
	User  *UserRecord `json:"user" validate:"required"`
	Token string      `json:"token" validate:"required"`
}

// ProfileResponse is returned by GET /users/{username}.
type ProfileResponse struct {
	User *UserRecord `json:"user" validate:"required"`
}

// APIError is the error object the API puts in non-2xx bodies.
type APIError struct {
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ErrorResponse wraps APIError as {"error": {...}}.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

var validate = validator.New()

// ValidatePayload checks a decoded response against its schema tags.
// Any violation is reported as ErrMalformedPayload.
func ValidatePayload(payload interface{}) error {
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return nil
}

// ValidateRequest checks an incoming request body against its schema tags.
func ValidateRequest(request interface{}) error {
	return validate.Struct(request)
}
