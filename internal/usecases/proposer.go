// Package usecases contains the application business logic.
// This package orchestrates domain entities and interfaces to fulfill use cases.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/flagops/flagpr/internal/domain"
	"github.com/flagops/flagpr/internal/intent"
)

// Logger defines the logging interface required by the proposer.
// This abstracts the logger dependency to avoid coupling to a specific implementation.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Collaborators holds the injected dependencies of the ChangeProposer.
type Collaborators struct {
	// UI is the operator interaction surface.
	UI domain.UserInteraction

	// Locator finds candidate config files under the project root.
	Locator domain.ConfigLocator

	// Patcher applies the edit intent to the selected file.
	Patcher domain.DocumentPatcher

	// OpenRepo discovers and opens the repository enclosing the project
	// root. Must return domain.ErrRepositoryNotFound when there is none.
	OpenRepo func(path string) (domain.VersionControl, error)

	// ForgeFactory builds a forge client for the resolved credential.
	ForgeFactory func(ctx context.Context, token string) domain.ForgeClient

	// ResolveToken returns the forge credential ("" when unavailable).
	ResolveToken func() string

	// Now supplies the timestamp for branch naming.
	Now func() time.Time

	Logger Logger
}

// ProposeInput contains the parameters for one change-proposal run.
type ProposeInput struct {
	// ProjectRoot is the directory to scan and the starting point of the
	// repository discovery walk.
	ProjectRoot string

	// Sentence optionally supplies the change sentence up front,
	// skipping the interactive text prompt.
	Sentence string

	// File optionally preselects the target file, skipping the
	// interactive selection.
	File string

	// BranchPrefix overrides the configured branch name prefix
	// ("" uses the default).
	BranchPrefix string
}

// ChangeProposer runs the whole flow: sentence to edit intent, candidate
// file selection, in-place patch, then branch, commit, push, and pull
// request. Missing prerequisites (repository, credential, remote) end the
// flow in a non-fatal terminal status with an actionable operator
// warning; only I/O and network faults surface as errors.
type ChangeProposer struct {
	c Collaborators
}

// NewChangeProposer creates a ChangeProposer with the given collaborators.
func NewChangeProposer(c Collaborators) *ChangeProposer {
	return &ChangeProposer{c: c}
}

// Propose executes one end-to-end run. The returned error is reserved
// for unexpected faults; every expected outcome, including declines and
// missing prerequisites, is reported through ProposalResult.Status after
// the operator has been notified.
func (p *ChangeProposer) Propose(ctx context.Context, input ProposeInput) (*domain.ProposalResult, error) {
	editIntent, sentence, result, err := p.collectIntent(ctx, input)
	if result != nil || err != nil {
		return result, err
	}

	target, result, err := p.selectTarget(ctx, input, *editIntent)
	if result != nil || err != nil {
		return result, err
	}

	patch, err := p.c.Patcher.Apply(ctx, target, *editIntent)
	if err != nil {
		return nil, fmt.Errorf("failed to apply change to %s: %w", target, err)
	}
	p.c.UI.ShowPatch(patch.Path, patch.Original, patch.Updated)

	return p.propose(ctx, input, *editIntent, sentence, patch)
}

// collectIntent obtains the sentence (prompting when not preset) and
// parses it. A non-nil result means the flow already terminated.
func (p *ChangeProposer) collectIntent(
	ctx context.Context,
	input ProposeInput,
) (*domain.EditIntent, string, *domain.ProposalResult, error) {
	sentence := input.Sentence
	if sentence == "" {
		answer, ok, err := p.c.UI.PromptText(ctx,
			"Describe the change: onUPDATE <flagPath> to <value> [for <env> environment] [and <region> region]")
		if err != nil {
			return nil, "", nil, fmt.Errorf("prompt failed: %w", err)
		}
		if !ok {
			p.c.Logger.Info(ctx, "operator declined the sentence prompt", nil)
			return nil, "", &domain.ProposalResult{Status: domain.StatusCancelled}, nil
		}
		sentence = answer
	}

	editIntent, ok := intent.Parse(sentence)
	if !ok {
		p.c.Logger.Warn(ctx, "sentence did not match the grammar", map[string]interface{}{
			"sentence": sentence,
		})
		p.c.UI.Error("Could not understand the sentence. Expected: onUPDATE <flagPath> to <value> [for <env> environment] [and <region> region]")
		return nil, "", &domain.ProposalResult{Status: domain.StatusParseFailed}, nil
	}

	p.c.Logger.Info(ctx, "parsed edit intent", map[string]interface{}{
		"flag_path":   editIntent.FlagPath,
		"value":       editIntent.ValueString(),
		"environment": editIntent.Environment,
		"region":      editIntent.Region,
	})

	return editIntent, sentence, nil, nil
}

// selectTarget locates candidate files and has the operator pick one,
// unless the input preselects a file. A non-nil result means the flow
// already terminated.
func (p *ChangeProposer) selectTarget(
	ctx context.Context,
	input ProposeInput,
	editIntent domain.EditIntent,
) (string, *domain.ProposalResult, error) {
	if input.File != "" {
		abs, err := filepath.Abs(input.File)
		if err != nil {
			return "", nil, fmt.Errorf("invalid file path %s: %w", input.File, err)
		}
		return abs, nil, nil
	}

	candidates, err := p.c.Locator.Locate(ctx, input.ProjectRoot)
	if err != nil {
		return "", nil, fmt.Errorf("failed to scan %s: %w", input.ProjectRoot, err)
	}
	if len(candidates) == 0 {
		p.c.Logger.Warn(ctx, "no candidate config files found", map[string]interface{}{
			"root": input.ProjectRoot,
		})
		p.c.UI.Error("No config files (json/yaml) found under " + input.ProjectRoot)
		return "", &domain.ProposalResult{Status: domain.StatusNoCandidates}, nil
	}

	labels := make([]string, len(candidates))
	for i, path := range candidates {
		if rel, relErr := filepath.Rel(input.ProjectRoot, path); relErr == nil {
			labels[i] = rel
		} else {
			labels[i] = path
		}
	}

	index, ok, err := p.c.UI.PromptSelect(ctx,
		fmt.Sprintf("Select the file to update %s in:", editIntent.FlagPath), labels)
	if err != nil {
		return "", nil, fmt.Errorf("selection failed: %w", err)
	}
	if !ok {
		p.c.Logger.Info(ctx, "operator declined the file selection", nil)
		return "", &domain.ProposalResult{Status: domain.StatusCancelled}, nil
	}

	return candidates[index], nil, nil
}

// propose drives the git and forge phase over the already-patched file:
// repository discovery, branch, commit, push, credential and remote
// resolution, and pull request creation.
func (p *ChangeProposer) propose(
	ctx context.Context,
	input ProposeInput,
	editIntent domain.EditIntent,
	sentence string,
	patch *domain.PatchResult,
) (*domain.ProposalResult, error) {
	repo, err := p.c.OpenRepo(input.ProjectRoot)
	if err != nil {
		if errors.Is(err, domain.ErrRepositoryNotFound) {
			p.c.Logger.Warn(ctx, "no enclosing git repository", map[string]interface{}{
				"root": input.ProjectRoot,
			})
			p.c.UI.Warn("Not a git repository: " + input.ProjectRoot +
				". The file was updated on disk but no change proposal was created.")
			return &domain.ProposalResult{Status: domain.StatusNoRepo, File: patch.Path}, nil
		}
		return nil, err
	}

	prefix := input.BranchPrefix
	if prefix == "" {
		prefix = domain.DefaultBranchPrefix
	}
	branchName := fmt.Sprintf("%s/%s-%d", prefix, editIntent.FlagName(), p.c.Now().UnixMilli())

	from, err := repo.CreateBranch(ctx, branchName)
	if err != nil {
		return nil, fmt.Errorf("failed to create branch: %w", err)
	}
	branch := domain.BranchState{Name: branchName, CreatedFrom: from}

	if err := repo.Stage(ctx, patch.Path); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Update %s to %s", editIntent.FlagName(), editIntent.ValueString())
	sha, err := repo.Commit(ctx, message)
	if err != nil {
		return nil, err
	}
	p.c.Logger.Info(ctx, "committed change", map[string]interface{}{
		"branch":  branchName,
		"sha":     sha,
		"message": message,
	})

	if err := repo.Push(ctx, branchName); err != nil {
		if errors.Is(err, domain.ErrNoRemoteOrigin) {
			p.c.UI.Warn("Branch " + branchName + " was created locally, but there is no 'origin' remote to push to.")
			return &domain.ProposalResult{Status: domain.StatusNoRemote, File: patch.Path, Branch: branch}, nil
		}
		return nil, err
	}

	token := p.c.ResolveToken()
	if token == "" {
		p.c.Logger.Warn(ctx, "no forge credential available", nil)
		p.c.UI.Warn("Branch " + branchName + " was pushed, but no GitHub token is configured. " +
			"Set github_token or GITHUB_TOKEN to open pull requests automatically.")
		return &domain.ProposalResult{Status: domain.StatusNoCredential, File: patch.Path, Branch: branch}, nil
	}

	ref, err := repo.OriginRef(ctx)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoRemoteOrigin):
			p.c.UI.Warn("Branch " + branchName + " was pushed, but no 'origin' remote is configured; cannot open a pull request.")
			return &domain.ProposalResult{Status: domain.StatusNoRemote, File: patch.Path, Branch: branch}, nil
		case errors.Is(err, domain.ErrInvalidRemoteURL):
			p.c.UI.Warn("Branch " + branchName + " was pushed, but the 'origin' URL could not be parsed into owner/repo; cannot open a pull request.")
			return &domain.ProposalResult{Status: domain.StatusUnresolvedRemote, File: patch.Path, Branch: branch}, nil
		}
		return nil, err
	}

	forge := p.c.ForgeFactory(ctx, token)

	base, err := forge.DefaultBranch(ctx, ref)
	if err != nil {
		return nil, err
	}

	pr, err := forge.CreatePullRequest(ctx, domain.PullRequestRequest{
		Owner: ref.Owner,
		Repo:  ref.Repo,
		Title: proposalTitle(editIntent),
		Head:  branchName,
		Base:  base,
		Body:  proposalBody(editIntent, sentence),
	})
	if err != nil {
		return nil, err
	}

	p.c.Logger.Info(ctx, "created pull request", map[string]interface{}{
		"owner":  ref.Owner,
		"repo":   ref.Repo,
		"number": pr.Number,
		"url":    pr.URL,
	})
	p.c.UI.Info("Created pull request: " + pr.URL)

	if err := p.c.UI.OfferOpen(ctx, pr.URL); err != nil {
		p.c.Logger.Warn(ctx, "could not open pull request externally", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return &domain.ProposalResult{
		Status:         domain.StatusCompleted,
		File:           patch.Path,
		Branch:         branch,
		PullRequestURL: pr.URL,
	}, nil
}

// proposalTitle renders the pull request title. Environment and region
// appear as empty strings when absent, not omitted.
func proposalTitle(e domain.EditIntent) string {
	return fmt.Sprintf("Update %s -> %s (%s %s)", e.FlagPath, e.ValueString(), e.Environment, e.Region)
}

// proposalBody renders the pull request body, embedding the original
// sentence verbatim for audit purposes.
func proposalBody(e domain.EditIntent, sentence string) string {
	return fmt.Sprintf(
		"Automated config-flag change.\n\n"+
			"- Flag: `%s`\n- New value: `%s`\n- Environment: %s\n- Region: %s\n\n"+
			"Requested with the prompt:\n\n> %s\n",
		e.FlagPath, e.ValueString(), e.Environment, e.Region, sentence,
	)
}
