// Package domain defines the core business entities and interfaces for flagpr.
// This package contains no external dependencies and represents the innermost layer
// of the CLEAN architecture.
package domain

import (
	"context"
	"errors"
)

// Domain errors for git, patching, and proposal orchestration.
var (
	// ErrRepositoryNotFound indicates no git repository encloses the project root.
	ErrRepositoryNotFound = errors.New("git repository not found at or above specified path")

	// ErrNoRemoteOrigin indicates no 'origin' remote is configured in the repository.
	ErrNoRemoteOrigin = errors.New("no 'origin' remote configured")

	// ErrInvalidRemoteURL indicates the remote URL could not be parsed to extract owner/repo.
	ErrInvalidRemoteURL = errors.New("could not parse owner/repo from remote URL")

	// ErrFlagNotFound indicates the textual fallback edit found no
	// "<flagName>: <value>" shape to rewrite in an unstructured file.
	ErrFlagNotFound = errors.New("flag not found in file content")

	// ErrEmptyFlagPath indicates a dot path with no segments was given to the mutator.
	ErrEmptyFlagPath = errors.New("flag path has no segments")
)

// UserInteraction is the operator-facing capability surface: prompts and
// notifications. Implementations must never block once the operator has
// declined a prompt; a decline is reported via the ok return, not an error.
type UserInteraction interface {
	// PromptText asks the operator for a free-text line. ok is false when
	// the prompt was declined (empty input or EOF).
	PromptText(ctx context.Context, message string) (answer string, ok bool, err error)

	// PromptSelect asks the operator to pick exactly one of options,
	// returning its index. ok is false when the selection was declined.
	PromptSelect(ctx context.Context, message string, options []string) (index int, ok bool, err error)

	// Info, Warn, and Error surface a notification at the given severity.
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	// ShowPatch presents the before/after content of a mutated file.
	ShowPatch(path string, original, updated []byte)

	// OfferOpen offers to open the given URL externally, e.g. the created
	// pull request in a browser. Declining is not an error.
	OfferOpen(ctx context.Context, url string) error
}

// ConfigLocator scans a project root for candidate configuration files.
type ConfigLocator interface {
	// Locate returns deduplicated absolute paths, ranked so that files
	// whose basename contains "config" sort first. An empty result is
	// not an error; per-pattern enumeration failures are logged and
	// skipped rather than aborting the scan.
	Locate(ctx context.Context, root string) ([]string, error)
}

// DocumentPatcher applies an edit intent to a file on disk, preserving
// the file's format conventions where it can.
type DocumentPatcher interface {
	// Apply mutates exactly one file in place and reports what was
	// written. Read, parse, and write failures propagate to the caller
	// with the file left unmodified.
	Apply(ctx context.Context, path string, intent EditIntent) (*PatchResult, error)
}

// VersionControl is the local repository collaborator. An implementation
// is bound to one repository, discovered by walking upward from a
// working root.
type VersionControl interface {
	// Root returns the absolute path of the repository's working tree root.
	Root() string

	// CreateBranch creates the named branch at HEAD and checks it out,
	// keeping uncommitted worktree changes. Returns the HEAD SHA the
	// branch was created from.
	CreateBranch(ctx context.Context, name string) (string, error)

	// Stage stages exactly the one file at the given absolute path.
	Stage(ctx context.Context, path string) error

	// Commit records the staged changes with the given message and
	// returns the new commit SHA.
	Commit(ctx context.Context, message string) (string, error)

	// Push pushes the named branch to the 'origin' remote under its own
	// name, without force.
	Push(ctx context.Context, branch string) error

	// OriginRef parses the 'origin' remote's fetch URL into owner/repo.
	// Returns ErrNoRemoteOrigin when no origin remote exists and
	// ErrInvalidRemoteURL when the URL shape is not recognized.
	OriginRef(ctx context.Context) (RemoteRepoRef, error)
}

// ForgeClient talks to the hosted forge API.
type ForgeClient interface {
	// DefaultBranch returns the repository's designated primary branch.
	DefaultBranch(ctx context.Context, ref RemoteRepoRef) (string, error)

	// CreatePullRequest submits a pull request and returns at least its
	// web URL.
	CreatePullRequest(ctx context.Context, req PullRequestRequest) (*PullRequestResult, error)
}
