// Package forge provides adapters for the hosted forge API.
// This package implements the domain.ForgeClient interface using the
// GitHub REST API via google/go-github.
package forge

import (
	"context"
	"fmt"

	"github.com/google/go-github/v58/github"
	"golang.org/x/oauth2"

	"github.com/flagops/flagpr/internal/domain"
)

// Logger defines the logging interface for the forge adapter.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}

// GitHubClient implements domain.ForgeClient against the GitHub API.
type GitHubClient struct {
	client *github.Client
	logger Logger
}

// NewGitHubClient creates a client authenticated with the given token.
// Token acquisition is the caller's problem; an empty token must be
// rejected before reaching this constructor.
func NewGitHubClient(ctx context.Context, token string, log Logger) *GitHubClient {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &GitHubClient{
		client: github.NewClient(tc),
		logger: log,
	}
}

// NewGitHubClientFromAPI wraps an existing API client. This is useful for
// testing against a local HTTP server.
func NewGitHubClientFromAPI(client *github.Client, log Logger) *GitHubClient {
	return &GitHubClient{client: client, logger: log}
}

// DefaultBranch fetches the repository metadata and returns its
// designated primary branch.
func (c *GitHubClient) DefaultBranch(ctx context.Context, ref domain.RemoteRepoRef) (string, error) {
	repo, _, err := c.client.Repositories.Get(ctx, ref.Owner, ref.Repo)
	if err != nil {
		return "", fmt.Errorf("failed to fetch repository %s/%s: %w", ref.Owner, ref.Repo, err)
	}

	branch := repo.GetDefaultBranch()
	c.logger.Debug(ctx, "fetched default branch", map[string]interface{}{
		"owner":  ref.Owner,
		"repo":   ref.Repo,
		"branch": branch,
	})
	return branch, nil
}

// CreatePullRequest submits the pull request and returns its web URL and
// number.
func (c *GitHubClient) CreatePullRequest(ctx context.Context, req domain.PullRequestRequest) (*domain.PullRequestResult, error) {
	pr, _, err := c.client.PullRequests.Create(ctx, req.Owner, req.Repo, &github.NewPullRequest{
		Title: github.String(req.Title),
		Head:  github.String(req.Head),
		Base:  github.String(req.Base),
		Body:  github.String(req.Body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request on %s/%s: %w", req.Owner, req.Repo, err)
	}

	c.logger.Debug(ctx, "created pull request", map[string]interface{}{
		"owner":  req.Owner,
		"repo":   req.Repo,
		"number": pr.GetNumber(),
		"url":    pr.GetHTMLURL(),
	})

	return &domain.PullRequestResult{
		URL:    pr.GetHTMLURL(),
		Number: pr.GetNumber(),
	}, nil
}
