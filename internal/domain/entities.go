// Package domain defines the core business entities and interfaces for flagpr.
package domain

import (
	"fmt"
	"strings"
)

// EditIntent is the structured form of an operator's flag-change sentence.
// It is created once per invocation by the prompt parser and is immutable
// afterwards; the patcher and the commit/PR text generators consume it.
type EditIntent struct {
	// FlagPath is the dot-delimited address of the configuration value,
	// e.g. "a.b.c". It always has at least one segment.
	FlagPath string

	// Value is the coerced target value: bool, float64, or string.
	Value any

	// Environment is the optional environment tag ("" when the clause
	// was absent from the sentence).
	Environment string

	// Region is the optional region tag ("" when absent).
	Region string
}

// FlagName returns the final segment of the flag path. It is the name
// used for branch naming, commit messages, and the textual fallback edit.
func (e EditIntent) FlagName() string {
	segs := strings.Split(e.FlagPath, ".")
	return segs[len(segs)-1]
}

// ValueString returns the textual representation of the target value as
// rendered into commit messages and pull request titles.
func (e EditIntent) ValueString() string {
	return fmt.Sprintf("%v", e.Value)
}

// PatchMode identifies which serialization branch the patcher took.
type PatchMode string

const (
	// PatchModeJSON means the file was parsed and re-serialized as JSON.
	PatchModeJSON PatchMode = "json"

	// PatchModeYAML means the file was parsed and re-serialized as YAML.
	PatchModeYAML PatchMode = "yaml"

	// PatchModeText means structured parsing failed and the flag was
	// rewritten with a best-effort textual substitution.
	PatchModeText PatchMode = "text"
)

// PatchResult describes a completed in-place file mutation.
type PatchResult struct {
	// Path is the absolute path of the mutated file.
	Path string

	// Mode is the serialization branch taken.
	Mode PatchMode

	// Original is the file content before the mutation.
	Original []byte

	// Updated is the file content written to disk.
	Updated []byte
}

// BranchState describes the branch created for a change proposal.
type BranchState struct {
	// Name is the generated branch name,
	// "<prefix>/<flagName>-<epochMillis>".
	Name string

	// CreatedFrom is the commit SHA the branch was created from.
	CreatedFrom string
}

// RemoteRepoRef identifies a repository on the forge, derived from the
// origin remote's fetch URL. Both fields are non-empty or the pair is
// considered unresolved.
type RemoteRepoRef struct {
	Owner string
	Repo  string
}

// PullRequestRequest carries everything needed to open a pull request.
type PullRequestRequest struct {
	Owner string
	Repo  string
	Title string

	// Head is the branch holding the change.
	Head string

	// Base is the target repository's default branch.
	Base string

	Body string
}

// PullRequestResult is the forge's answer to a successful submission.
type PullRequestResult struct {
	// URL is the web URL of the created pull request.
	URL string

	// Number is the pull request number assigned by the forge.
	Number int
}

// ProposalStatus is the terminal state of a change-proposal run. Only
// Completed means the full flow ran through pull request creation; the
// other states are expected, non-fatal outcomes surfaced to the operator.
type ProposalStatus string

const (
	// StatusCompleted means the pull request was created.
	StatusCompleted ProposalStatus = "completed"

	// StatusCancelled means the operator declined an interactive prompt
	// before any mutation occurred.
	StatusCancelled ProposalStatus = "cancelled"

	// StatusParseFailed means the sentence did not match the grammar.
	StatusParseFailed ProposalStatus = "parse_failed"

	// StatusNoCandidates means no plausible config files were found.
	StatusNoCandidates ProposalStatus = "no_candidates"

	// StatusNoRepo means no enclosing git repository was found.
	StatusNoRepo ProposalStatus = "no_repo"

	// StatusNoCredential means the branch was pushed but no forge token
	// was available to create the pull request.
	StatusNoCredential ProposalStatus = "no_credential"

	// StatusNoRemote means no 'origin' remote is configured.
	StatusNoRemote ProposalStatus = "no_remote"

	// StatusUnresolvedRemote means the origin URL could not be parsed
	// into owner/repo.
	StatusUnresolvedRemote ProposalStatus = "unresolved_remote"
)

// ProposalResult is the outcome of one end-to-end run.
type ProposalResult struct {
	Status ProposalStatus

	// File is the absolute path of the mutated file ("" if the flow
	// stopped before selection).
	File string

	// Branch describes the created branch (zero value if the flow
	// stopped before the git phase).
	Branch BranchState

	// PullRequestURL is set only when Status is StatusCompleted.
	PullRequestURL string
}

// DefaultBranchPrefix is the branch name prefix used when none is configured.
const DefaultBranchPrefix = "flag-update"
