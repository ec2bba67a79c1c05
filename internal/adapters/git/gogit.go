// Package git provides adapters for interacting with local Git repositories.
// This package implements the domain.VersionControl interface using go-git/v5.
package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/flagops/flagpr/internal/domain"
)

// Logger defines the logging interface for the git adapter.
// This interface enables dependency injection and testability.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Fallback commit identity when the repository and global git config
// carry no user.name/user.email.
const (
	defaultAuthorName  = "flagpr"
	defaultAuthorEmail = "flagpr@localhost"
)

// GoGitRepository implements domain.VersionControl using go-git/v5.
// The enclosing repository is discovered by walking upward from the
// given path, directory by directory, until a .git marker is found.
type GoGitRepository struct {
	repo   *git.Repository
	root   string
	logger Logger
}

// NewGoGitRepository discovers and opens the repository enclosing path.
// Returns domain.ErrRepositoryNotFound when the filesystem root is
// reached without finding version-control metadata.
func NewGoGitRepository(path string, log Logger) (*GoGitRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRepositoryNotFound, path)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	return &GoGitRepository{
		repo:   repo,
		root:   wt.Filesystem.Root(),
		logger: log,
	}, nil
}

// Root returns the absolute path of the repository's working tree root.
func (r *GoGitRepository) Root() string {
	return r.root
}

// CreateBranch creates the named branch at HEAD and checks it out.
// Uncommitted worktree changes (the freshly patched file) are kept.
// Returns the HEAD SHA the branch was created from.
func (r *GoGitRepository) CreateBranch(ctx context.Context, name string) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}

	err = wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
		Keep:   true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create branch %s: %w", name, err)
	}

	r.logger.Debug(ctx, "created branch", map[string]interface{}{
		"branch": name,
		"from":   head.Hash().String(),
	})

	return head.Hash().String(), nil
}

// Stage stages exactly the one file at the given absolute path.
func (r *GoGitRepository) Stage(ctx context.Context, path string) error {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return fmt.Errorf("file %s is outside repository %s: %w", path, r.root, err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	if _, err := wt.Add(filepath.ToSlash(rel)); err != nil {
		return fmt.Errorf("failed to stage %s: %w", rel, err)
	}

	r.logger.Debug(ctx, "staged file", map[string]interface{}{"path": rel})
	return nil
}

// Commit records the staged changes and returns the new commit SHA.
// The author identity comes from the repository's merged git config,
// with a deterministic fallback when none is set.
func (r *GoGitRepository) Commit(ctx context.Context, message string) (string, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}

	name, email := r.authorIdentity(ctx)
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  name,
			Email: email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	r.logger.Debug(ctx, "created commit", map[string]interface{}{
		"sha":     hash.String(),
		"message": message,
	})

	return hash.String(), nil
}

// Push pushes the named branch to the 'origin' remote under its own
// name. No force, no tracking configuration beyond the default. Transport
// credentials are whatever the ambient environment provides (ssh agent,
// credential helpers); the forge token gates only the API phase.
func (r *GoGitRepository) Push(ctx context.Context, branch string) error {
	refSpec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{refSpec},
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		err = nil
	}
	if errors.Is(err, git.ErrRemoteNotFound) {
		return fmt.Errorf("%w: cannot push branch %s", domain.ErrNoRemoteOrigin, branch)
	}
	if err != nil {
		return fmt.Errorf("failed to push branch %s: %w", branch, err)
	}

	r.logger.Debug(ctx, "pushed branch", map[string]interface{}{"branch": branch})
	return nil
}

// OriginRef parses the 'origin' remote's fetch URL into owner/repo.
// Returns domain.ErrNoRemoteOrigin when no origin remote exists and
// domain.ErrInvalidRemoteURL when the URL shape is not recognized.
func (r *GoGitRepository) OriginRef(ctx context.Context) (domain.RemoteRepoRef, error) {
	remote, err := r.repo.Remote("origin")
	if err != nil {
		return domain.RemoteRepoRef{}, fmt.Errorf("%w: %w", domain.ErrNoRemoteOrigin, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return domain.RemoteRepoRef{}, fmt.Errorf("%w: origin remote has no URLs configured", domain.ErrNoRemoteOrigin)
	}

	ref, err := ParseRemoteRef(urls[0])
	if err != nil {
		return domain.RemoteRepoRef{}, err
	}

	r.logger.Debug(ctx, "resolved origin remote", map[string]interface{}{
		"url":   urls[0],
		"owner": ref.Owner,
		"repo":  ref.Repo,
	})

	return ref, nil
}

// authorIdentity reads user.name/user.email from the merged git config,
// falling back to the default identity.
func (r *GoGitRepository) authorIdentity(ctx context.Context) (string, string) {
	cfg, err := r.repo.ConfigScoped(config.GlobalScope)
	if err != nil || cfg.User.Name == "" || cfg.User.Email == "" {
		r.logger.Warn(ctx, "no git identity configured, using fallback author", map[string]interface{}{
			"name":  defaultAuthorName,
			"email": defaultAuthorEmail,
		})
		return defaultAuthorName, defaultAuthorEmail
	}
	return cfg.User.Name, cfg.User.Email
}

// Regular expressions for parsing Git remote URLs.
var (
	// httpsURLPattern matches HTTPS URLs like:
	// https://github.com/owner/repo.git
	// https://github.com/owner/repo
	httpsURLPattern = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+?)(?:\.git)?$`)

	// sshURLPattern matches SSH URLs like:
	// git@github.com:owner/repo.git
	// git@github.com:owner/repo
	sshURLPattern = regexp.MustCompile(`^git@[^:]+:([^/]+)/([^/]+?)(?:\.git)?$`)
)

// ParseRemoteRef extracts owner and repo from a Git remote URL.
// Supports both HTTPS and SSH formats:
//   - https://github.com/owner/repo.git -> owner/repo
//   - https://github.com/owner/repo -> owner/repo
//   - git@github.com:owner/repo.git -> owner/repo
//   - git@github.com:owner/repo -> owner/repo
func ParseRemoteRef(url string) (domain.RemoteRepoRef, error) {
	url = strings.TrimSpace(url)

	// Try HTTPS pattern first
	if matches := httpsURLPattern.FindStringSubmatch(url); len(matches) == 3 {
		return domain.RemoteRepoRef{Owner: matches[1], Repo: matches[2]}, nil
	}

	// Try SSH pattern
	if matches := sshURLPattern.FindStringSubmatch(url); len(matches) == 3 {
		return domain.RemoteRepoRef{Owner: matches[1], Repo: matches[2]}, nil
	}

	return domain.RemoteRepoRef{}, fmt.Errorf("%w: %s", domain.ErrInvalidRemoteURL, url)
}
