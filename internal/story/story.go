// Package story defines the Story value object: one aggregated link as the
// news API reports it.
package story

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
)

// ErrInvalidURL is returned by HostName when the story URL is not an absolute URL.
var ErrInvalidURL = errors.New("story URL is not a valid absolute URL")

// Story is immutable once built; replace the whole value to change it.
type Story struct {
	StoryID   string `json:"storyId"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	URL       string `json:"url"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

// New builds a Story from an API record. Fields are stored verbatim.
func New(rec models.StoryRecord) *Story {
	return &Story{
		StoryID:   rec.StoryID,
		Title:     rec.Title,
		Author:    rec.Author,
		URL:       rec.URL,
		Username:  rec.Username,
		CreatedAt: rec.CreatedAt,
	}
}

// NewList builds one Story per record, keeping order.
func NewList(recs []models.StoryRecord) []*Story {
	stories := make([]*Story, 0, len(recs))
	for _, rec := range recs {
		stories = append(stories, New(rec))
	}

	return stories
}

// HostName returns the network location of the story URL: the host,
// with the port when one is present.
func (s *Story) HostName() (string, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, s.URL)
	}

	return u.Host, nil
}
