// Package storyset provides an ordered collection of stories keyed by storyId.
//
// A Set is the single owner of its slice: it never hands out the backing
// array and it never holds two stories with the same storyId. All methods
// are safe for concurrent use, but a sequence of calls is not atomic, so
// callers that combine a remote call with a local mutation must still
// serialize logically conflicting operations themselves.
package storyset

import (
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/hackorsnooze/internal/story"
)

// Set is an ordered, duplicate-free collection of stories.
type Set struct {
	mu      sync.RWMutex
	stories []*story.Story
}

// New returns a Set seeded with stories, dropping later duplicates.
func New(stories ...*story.Story) *Set {
	s := &Set{stories: make([]*story.Story, 0, len(stories))}
	for _, st := range stories {
		if st == nil || s.indexOf(st.StoryID) >= 0 {
			continue
		}
		s.stories = append(s.stories, st)
	}

	return s
}

func (s *Set) indexOf(storyID string) int {
	for i, st := range s.stories {
		if st.StoryID == storyID {
			return i
		}
	}

	return -1
}

// Prepend inserts st at index 0. It reports false and leaves the
// set unchanged when a story with the same id is already present.
func (s *Set) Prepend(st *story.Story) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(st.StoryID) >= 0 {
		return false
	}
	s.stories = append([]*story.Story{st}, s.stories...)

	return true
}

// Append inserts st at the end with the same duplicate rule as Prepend.
func (s *Set) Append(st *story.Story) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(st.StoryID) >= 0 {
		return false
	}
	s.stories = append(s.stories, st)

	return true
}

// Remove drops the story with the given id. Removing an absent id is a no-op.
func (s *Set) Remove(storyID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := funk.Filter(s.stories, func(st *story.Story) bool {
		return st.StoryID != storyID
	}).([]*story.Story)
	removed := len(kept) != len(s.stories)
	s.stories = kept

	return removed
}

// Contains reports whether a story with the given id is present.
func (s *Set) Contains(storyID string) bool {
	return s.Get(storyID) != nil
}

// Get returns the story with the given id or nil.
func (s *Set) Get(storyID string) *story.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := funk.Find(s.stories, func(st *story.Story) bool {
		return st.StoryID == storyID
	})
	if found == nil {
		return nil
	}

	return found.(*story.Story)
}

// At returns the story at index i or nil when i is out of range.
func (s *Set) At(i int) *story.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.stories) {
		return nil
	}

	return s.stories[i]
}

// All returns a copy of the stories in order.
func (s *Set) All() []*story.Story {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*story.Story, len(s.stories))
	copy(result, s.stories)

	return result
}

// IDs returns the story ids in order.
func (s *Set) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return funk.Map(s.stories, func(st *story.Story) string {
		return st.StoryID
	}).([]string)
}

// Len returns the number of stories.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.stories)
}
