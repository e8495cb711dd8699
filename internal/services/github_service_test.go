package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alimgiray/teampresence/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	Name     string `json:"name"`
	PushedAt string `json:"pushed_at,omitempty"`
}

type fakeUser struct {
	Name        *string    `json:"name"`
	Followers   int        `json:"followers"`
	PublicRepos int        `json:"public_repos"`
	Bio         *string    `json:"bio"`
	Repos       []fakeRepo `json:"-"`
	ReposStatus int        `json:"-"`
}

// fakeGitHub serves /users/{login} and /users/{login}/repos from memory
type fakeGitHub struct {
	*httptest.Server
	mu       sync.Mutex
	users    map[string]fakeUser
	requests []*http.Request
	delay    time.Duration
}

func newFakeGitHub(t *testing.T, users map[string]fakeUser) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{users: users}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeGitHub) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "users" {
		http.NotFound(w, r)
		return
	}

	login := parts[1]
	user, ok := f.users[login]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case len(parts) == 2:
		payload := map[string]interface{}{
			"login":        login,
			"name":         user.Name,
			"followers":    user.Followers,
			"public_repos": user.PublicRepos,
			"bio":          user.Bio,
		}
		_ = json.NewEncoder(w).Encode(payload)
	case len(parts) == 3 && parts[2] == "repos":
		if user.ReposStatus != 0 {
			w.WriteHeader(user.ReposStatus)
			_, _ = w.Write([]byte(`{"message":"error"}`))
			return
		}
		repos := user.Repos
		if repos == nil {
			repos = []fakeRepo{}
		}
		_ = json.NewEncoder(w).Encode(repos)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGitHub) setDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

func (f *fakeGitHub) recorded() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

func (f *fakeGitHub) config(token string) config.GitHubConfig {
	return config.GitHubConfig{
		Token:          token,
		BaseURL:        f.URL,
		RequestTimeout: 2 * time.Second,
		RepoLimit:      5,
	}
}

func strPtr(s string) *string {
	return &s
}

func TestGitHubServiceGetUser(t *testing.T) {
	server := newFakeGitHub(t, map[string]fakeUser{
		"octocat": {Name: strPtr("The Octocat"), Followers: 42, PublicRepos: 8, Bio: strPtr("meow")},
		"hubot":   {Followers: 1},
	})

	service, err := NewGitHubService(server.config("secret-token"))
	require.NoError(t, err)

	t.Run("Maps profile fields", func(t *testing.T) {
		user, err := service.GetUser(context.Background(), "octocat")
		require.NoError(t, err)

		assert.Equal(t, "octocat", user.Login)
		assert.Equal(t, "The Octocat", user.DisplayName())
		assert.Equal(t, 42, user.Followers)
		assert.Equal(t, 8, user.PublicRepos)
		require.NotNil(t, user.Bio)
		assert.Equal(t, "meow", *user.Bio)
	})

	t.Run("Falls back to login without a name", func(t *testing.T) {
		user, err := service.GetUser(context.Background(), "hubot")
		require.NoError(t, err)

		assert.Equal(t, "hubot", user.DisplayName())
		assert.Nil(t, user.Bio)
	})

	t.Run("Not found is an error", func(t *testing.T) {
		_, err := service.GetUser(context.Background(), "ghost")
		assert.Error(t, err)
	})

	t.Run("Sends bearer token", func(t *testing.T) {
		requests := server.recorded()
		require.NotEmpty(t, requests)
		for _, r := range requests {
			assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		}
	})
}

func TestGitHubServiceGetRecentActivity(t *testing.T) {
	server := newFakeGitHub(t, map[string]fakeUser{
		"octocat": {Repos: []fakeRepo{
			{Name: "newest", PushedAt: "2025-03-10T10:00:00Z"},
			{Name: "older", PushedAt: "2025-01-01T00:00:00Z"},
		}},
		"idle":   {},
		"broken": {ReposStatus: http.StatusInternalServerError},
	})

	service, err := NewGitHubService(server.config(""))
	require.NoError(t, err)

	t.Run("Uses the first repository", func(t *testing.T) {
		activity, err := service.GetRecentActivity(context.Background(), "octocat")
		require.NoError(t, err)

		require.NotNil(t, activity.LastActivityAt)
		assert.Equal(t, time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC), activity.LastActivityAt.UTC())
		require.NotNil(t, activity.LastActivityLabel)
		assert.Equal(t, "newest", *activity.LastActivityLabel)
	})

	t.Run("No repositories means no activity", func(t *testing.T) {
		activity, err := service.GetRecentActivity(context.Background(), "idle")
		require.NoError(t, err)

		assert.Nil(t, activity.LastActivityAt)
		assert.Nil(t, activity.LastActivityLabel)
	})

	t.Run("Server error is an error", func(t *testing.T) {
		_, err := service.GetRecentActivity(context.Background(), "broken")
		assert.Error(t, err)
	})

	t.Run("Requests recent pushes only", func(t *testing.T) {
		var found bool
		for _, r := range server.recorded() {
			if r.URL.Path != "/users/octocat/repos" {
				continue
			}
			found = true
			assert.Equal(t, "5", r.URL.Query().Get("per_page"))
			assert.Equal(t, "pushed", r.URL.Query().Get("sort"))
			assert.Empty(t, r.Header.Get("Authorization"))
		}
		assert.True(t, found)
	})
}

func TestGitHubServiceRequestTimeout(t *testing.T) {
	server := newFakeGitHub(t, map[string]fakeUser{"slow": {}})
	server.setDelay(300 * time.Millisecond)

	cfg := server.config("")
	cfg.RequestTimeout = 20 * time.Millisecond
	service, err := NewGitHubService(cfg)
	require.NoError(t, err)

	start := time.Now()
	_, err = service.GetUser(context.Background(), "slow")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestNewGitHubServiceRejectsBadURL(t *testing.T) {
	_, err := NewGitHubService(config.GitHubConfig{BaseURL: "://nope"})
	assert.Error(t, err)
}
