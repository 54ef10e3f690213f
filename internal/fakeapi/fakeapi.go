// Package fakeapi is an in-memory implementation of the news API. It serves
// the same routes and payload shapes as the hosted service and is used by
// tests and by cmd/fakeapi for local development.
package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/thoas/go-funk"
	"golang.org/x/crypto/bcrypt"

	"github.com/patric-chuzhbe/hackorsnooze/internal/gzippedhttp"
	"github.com/patric-chuzhbe/hackorsnooze/internal/logger"
	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

var (
	errInvalidToken = errors.New("invalid token")
	errMissingToken = errors.New("token required")
)

// Claims is the payload of the login tokens issued by the fake API.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

type account struct {
	username     string
	name         string
	createdAt    string
	passwordHash []byte
	favorites    []string
}

// Server holds the fake API state. It is safe for concurrent use.
type Server struct {
	mu         sync.Mutex
	accounts   map[string]*account
	stories    []models.StoryRecord
	signingKey []byte
	now        func() time.Time
}

// InitOption customizes a Server.
type InitOption func(*Server)

// WithStories seeds the feed; records are kept in the given order.
func WithStories(stories ...models.StoryRecord) InitOption {
	return func(s *Server) {
		s.stories = append(s.stories, stories...)
	}
}

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) InitOption {
	return func(s *Server) {
		s.now = now
	}
}

// New returns an empty fake API signing tokens with signingKey.
func New(signingKey []byte, optionsProto ...InitOption) *Server {
	s := &Server{
		accounts:   map[string]*account{},
		stories:    []models.StoryRecord{},
		signingKey: signingKey,
		now:        time.Now,
	}
	for _, protoOption := range optionsProto {
		protoOption(s)
	}

	return s
}

// Router builds the chi router serving the API routes.
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.GzipResponse,
	)

	router.Get(`/stories`, s.getStories)
	router.Post(`/stories`, s.postStory)
	router.Delete(`/stories/{storyId}`, s.deleteStory)
	router.Post(`/signup`, s.postSignup)
	router.Post(`/login`, s.postLogin)
	router.Get(`/users/{username}`, s.getUser)
	router.Post(`/users/{username}/favorites/{storyId}`, s.postFavorite)
	router.Delete(`/users/{username}/favorites/{storyId}`, s.deleteFavorite)

	return router
}

// IssueToken signs a login token for username.
func (s *Server) IssueToken(username string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
		Username: username,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
}

func (s *Server) parseToken(token string) (string, error) {
	if token == "" {
		return "", errMissingToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return "", errInvalidToken
	}

	return claims.Username, nil
}

// authorize resolves token to an existing account. The caller holds s.mu.
func (s *Server) authorize(w http.ResponseWriter, token string) (*account, bool) {
	username, err := s.parseToken(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
		return nil, false
	}

	acc, ok := s.accounts[username]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "token owner does not exist")
		return nil, false
	}

	return acc, true
}

func (s *Server) findStory(storyID string) (int, bool) {
	for i, st := range s.stories {
		if st.StoryID == storyID {
			return i, true
		}
	}

	return -1, false
}

// userRecord renders acc with its own stories and favorites. The caller holds s.mu.
func (s *Server) userRecord(acc *account) models.UserRecord {
	own := funk.Filter(s.stories, func(st models.StoryRecord) bool {
		return st.Username == acc.username
	}).([]models.StoryRecord)

	favorites := make([]models.StoryRecord, 0, len(acc.favorites))
	for _, id := range acc.favorites {
		if i, ok := s.findStory(id); ok {
			favorites = append(favorites, s.stories[i])
		}
	}

	return models.UserRecord{
		Username:  acc.username,
		Name:      acc.name,
		CreatedAt: acc.createdAt,
		Favorites: favorites,
		Stories:   own,
	}
}

func (s *Server) getStories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	stories := make([]models.StoryRecord, len(s.stories))
	copy(stories, s.stories)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.StoriesResponse{Stories: stories})
}

func (s *Server) postStory(w http.ResponseWriter, r *http.Request) {
	var request models.CreateStoryRequest
	if !decodeRequest(w, r, &request) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.authorize(w, request.Token)
	if !ok {
		return
	}

	stamp := s.now().UTC().Format(timestampLayout)
	record := models.StoryRecord{
		StoryID:   uuid.New().String(),
		Title:     request.Story.Title,
		Author:    request.Story.Author,
		URL:       request.Story.URL,
		Username:  acc.username,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
	s.stories = append([]models.StoryRecord{record}, s.stories...)

	writeJSON(w, http.StatusCreated, models.StoryResponse{Story: &record})
}

func (s *Server) deleteStory(w http.ResponseWriter, r *http.Request) {
	var request models.TokenRequest
	if !decodeRequest(w, r, &request) {
		return
	}
	storyID := chi.URLParam(r, "storyId")

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.authorize(w, request.Token)
	if !ok {
		return
	}

	i, found := s.findStory(storyID)
	if !found {
		writeError(w, http.StatusNotFound, "Not Found", "No story with ID "+storyID)
		return
	}
	record := s.stories[i]
	if record.Username != acc.username {
		writeError(w, http.StatusForbidden, "Forbidden", "only the author may delete a story")
		return
	}

	s.stories = append(s.stories[:i:i], s.stories[i+1:]...)
	for _, other := range s.accounts {
		other.favorites = funk.FilterString(other.favorites, func(id string) bool {
			return id != storyID
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Deleted",
		"story":   record,
	})
}

func (s *Server) postSignup(w http.ResponseWriter, r *http.Request) {
	var request models.AuthRequest
	if !decodeRequest(w, r, &request) {
		return
	}
	if request.User.Name == "" {
		writeError(w, http.StatusBadRequest, "Bad Request", "name is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.User.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[request.User.Username]; exists {
		writeError(
			w,
			http.StatusConflict,
			"Conflict",
			fmt.Sprintf("There already exists a user with username '%s'.", request.User.Username),
		)
		return
	}

	acc := &account{
		username:     request.User.Username,
		name:         request.User.Name,
		createdAt:    s.now().UTC().Format(timestampLayout),
		passwordHash: hash,
		favorites:    []string{},
	}
	s.accounts[acc.username] = acc

	s.writeAuth(w, http.StatusCreated, acc)
}

func (s *Server) postLogin(w http.ResponseWriter, r *http.Request) {
	var request models.AuthRequest
	if !decodeRequest(w, r, &request) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, exists := s.accounts[request.User.Username]
	if !exists {
		writeError(w, http.StatusNotFound, "Not Found", "Could not find user with username "+request.User.Username)
		return
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(request.User.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Invalid Password.")
		return
	}

	s.writeAuth(w, http.StatusOK, acc)
}

// writeAuth answers signup and login. The caller holds s.mu.
func (s *Server) writeAuth(w http.ResponseWriter, status int, acc *account) {
	token, err := s.IssueToken(acc.username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
		return
	}

	record := s.userRecord(acc)
	writeJSON(w, status, models.AuthResponse{User: &record, Token: token})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authorize(w, r.URL.Query().Get("token")); !ok {
		return
	}

	acc, exists := s.accounts[username]
	if !exists {
		writeError(w, http.StatusNotFound, "Not Found", "Could not find user with username "+username)
		return
	}

	record := s.userRecord(acc)
	writeJSON(w, http.StatusOK, models.ProfileResponse{User: &record})
}

func (s *Server) postFavorite(w http.ResponseWriter, r *http.Request) {
	s.changeFavorite(w, r, func(acc *account, storyID string) {
		if !funk.ContainsString(acc.favorites, storyID) {
			acc.favorites = append(acc.favorites, storyID)
		}
	}, "Favorite Added Successfully!")
}

func (s *Server) deleteFavorite(w http.ResponseWriter, r *http.Request) {
	s.changeFavorite(w, r, func(acc *account, storyID string) {
		acc.favorites = funk.FilterString(acc.favorites, func(id string) bool {
			return id != storyID
		})
	}, "Favorite Removed Successfully!")
}

func (s *Server) changeFavorite(
	w http.ResponseWriter,
	r *http.Request,
	change func(acc *account, storyID string),
	message string,
) {
	var request models.TokenRequest
	if !decodeRequest(w, r, &request) {
		return
	}
	username := chi.URLParam(r, "username")
	storyID := chi.URLParam(r, "storyId")

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.authorize(w, request.Token)
	if !ok {
		return
	}
	if acc.username != username {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "token does not belong to "+username)
		return
	}
	if _, found := s.findStory(storyID); !found {
		writeError(w, http.StatusNotFound, "Not Found", "No story with ID "+storyID)
		return
	}

	change(acc, storyID)

	record := s.userRecord(acc)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": message,
		"user":    record,
	})
}

func decodeRequest(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request", "malformed JSON body: "+err.Error())
		return false
	}

	if err := models.ValidateRequest(request); err != nil {
		status := http.StatusBadRequest
		if tokenMissing(request) {
			status = http.StatusUnauthorized
		}
		writeError(w, status, http.StatusText(status), err.Error())
		return false
	}

	return true
}

func tokenMissing(request interface{}) bool {
	switch typed := request.(type) {
	case *models.TokenRequest:
		return typed.Token == ""
	case *models.CreateStoryRequest:
		return typed.Token == ""
	}

	return false
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Debugln("Error encoding the fake API response:", err)
	}
}

func writeError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, models.ErrorResponse{
		Error: models.APIError{
			Status:  status,
			Title:   title,
			Message: message,
		},
	})
}
