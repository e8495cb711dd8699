package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alimgiray/teampresence/internal/models"
	"github.com/alimgiray/teampresence/pkg/config"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// UpstreamClient fetches per-user data from the developer activity API
type UpstreamClient interface {
	GetUser(ctx context.Context, username string) (*models.UpstreamUserRecord, error)
	GetRecentActivity(ctx context.Context, username string) (*models.UpstreamActivityRecord, error)
}

type GitHubService struct {
	client         *github.Client
	requestTimeout time.Duration
	repoLimit      int
}

func NewGitHubService(cfg config.GitHubConfig) (*GitHubService, error) {
	client := github.NewClient(createHTTPClient(cfg.Token))

	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
		}
		client.BaseURL = parsed
	}

	repoLimit := cfg.RepoLimit
	if repoLimit <= 0 {
		repoLimit = 5
	}

	return &GitHubService{
		client:         client,
		requestTimeout: cfg.RequestTimeout,
		repoLimit:      repoLimit,
	}, nil
}

// createHTTPClient attaches the shared token to every request
func createHTTPClient(token string) *http.Client {
	if token == "" {
		return &http.Client{}
	}
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return oauth2.NewClient(context.Background(), ts)
}

// GetUser retrieves the public profile of a user
func (s *GitHubService) GetUser(ctx context.Context, username string) (*models.UpstreamUserRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, _, err := s.client.Users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}

	login := user.GetLogin()
	if login == "" {
		login = username
	}

	return &models.UpstreamUserRecord{
		Login:       login,
		Name:        user.Name,
		Followers:   user.GetFollowers(),
		PublicRepos: user.GetPublicRepos(),
		Bio:         user.Bio,
	}, nil
}

// GetRecentActivity returns the most recently pushed repository of a user.
// GitHub sorts the list by push time, so the first entry is used as is.
func (s *GitHubService) GetRecentActivity(ctx context.Context, username string) (*models.UpstreamActivityRecord, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opt := &github.RepositoryListOptions{
		Sort:        "pushed",
		ListOptions: github.ListOptions{PerPage: s.repoLimit},
	}

	repos, _, err := s.client.Repositories.List(ctx, username, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories for %s: %w", username, err)
	}

	activity := &models.UpstreamActivityRecord{}
	if len(repos) == 0 || repos[0] == nil {
		return activity, nil
	}

	latest := repos[0]
	if latest.PushedAt != nil {
		pushedAt := latest.PushedAt.Time
		activity.LastActivityAt = &pushedAt
	}
	if latest.Name != nil {
		name := latest.GetName()
		activity.LastActivityLabel = &name
	}

	return activity, nil
}

func (s *GitHubService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}
