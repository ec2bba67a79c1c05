// Package cmd provides the CLI commands for flagpr.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/flagops/flagpr/internal/domain"
	"github.com/flagops/flagpr/internal/usecases"
)

// Logger defines the logging interface used by the command.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, err error, fields map[string]interface{})
}

// Dependencies holds all injectable dependencies for the command.
// This enables testing by allowing mock implementations to be injected.
type Dependencies struct {
	// LoggerFactory creates a logger instance.
	LoggerFactory func(verbose bool) Logger

	// ConfigLoader loads application configuration for the project root.
	ConfigLoader func(projectRoot string) (*AppConfig, error)

	// UIFactory creates the operator interaction surface.
	UIFactory func() domain.UserInteraction

	// LocatorFactory creates the config file scanner.
	LocatorFactory func(log Logger) domain.ConfigLocator

	// PatcherFactory creates the document patcher.
	PatcherFactory func(log Logger) domain.DocumentPatcher

	// RepoOpener opens the git repository enclosing the given path.
	RepoOpener func(path string, log Logger) (domain.VersionControl, error)

	// ForgeFactory creates a forge client for the given credential.
	ForgeFactory func(ctx context.Context, token string, log Logger) domain.ForgeClient

	// TokenResolver resolves the forge credential from the loaded
	// configuration ("" when unavailable).
	TokenResolver func(cfg *AppConfig) string
}

// AppConfig holds application configuration loaded by ConfigLoader.
type AppConfig struct {
	// BranchPrefix is the prefix for generated branch names.
	BranchPrefix string

	// GithubToken is the configured forge credential, if any.
	GithubToken string
}

// Command-line flags.
var (
	promptSentence string
	targetFile     string
	branchPrefix   string
	verbose        bool
)

// defaultDeps holds the production dependencies.
// This is set by the production wiring in main or via SetDefaultDependencies.
var defaultDeps *Dependencies

// SetDefaultDependencies sets the default dependencies for production use.
// This should be called from main() before Execute().
func SetDefaultDependencies(deps *Dependencies) {
	defaultDeps = deps
}

// NewRootCmd creates the root command for flagpr.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithDeps(defaultDeps)
}

// NewRootCmdWithDeps creates the root command with explicit dependencies.
// This is the primary constructor that enables testing via dependency injection.
func NewRootCmdWithDeps(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flagpr [path]",
		Short: "Turn a flag-change sentence into a pull request",
		Long: `flagpr reads a structured change sentence, updates the matching flag
in a config file under the project, and proposes the change as a pull
request on a fresh branch.

The sentence grammar is:

  onUPDATE <flagPath> to <value> [for <env> environment] [and <region> region]

Candidate config files (json/yaml) are discovered under the project root
and offered for selection, configuration-named files first. The selected
file is patched in place, the diff is shown, and the change is committed
to a new branch and pushed to 'origin'. With a GitHub token configured, a
pull request is opened against the repository's default branch.

Examples:
  # Interactive run from the current directory
  flagpr

  # Run against a specific project
  flagpr /path/to/project

  # Non-interactive: sentence and file supplied up front
  flagpr --prompt "onUPDATE volumeQuotaFlag to false for stage environment and delhi region" --file config.json

  # Enable verbose logging
  flagpr -v`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPropose(cmd, args, deps)
		},
	}

	rootCmd.Flags().StringVarP(&promptSentence, "prompt", "p", "",
		"Change sentence to apply, skipping the interactive prompt")
	rootCmd.Flags().StringVarP(&targetFile, "file", "f", "",
		"Config file to update, skipping the interactive selection")
	rootCmd.Flags().StringVarP(&branchPrefix, "branch-prefix", "b", "",
		"Prefix for the generated branch name (default \""+domain.DefaultBranchPrefix+"\")")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose/debug logging")

	return rootCmd
}

// runPropose executes the change-proposal flow with injected dependencies.
func runPropose(cmd *cobra.Command, args []string, deps *Dependencies) error {
	if deps == nil {
		return errors.New("dependencies not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Determine project root
	projectRoot := "."
	if len(args) > 0 {
		projectRoot = args[0]
	}
	projectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}
	info, err := os.Stat(projectRoot)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", projectRoot)
	}

	// Initialize logger
	log := deps.LoggerFactory(verbose)

	log.Info(ctx, "starting flagpr", map[string]interface{}{
		"root":    projectRoot,
		"verbose": verbose,
	})

	// Load configuration
	cfg, err := deps.ConfigLoader(projectRoot)
	if err != nil {
		log.Error(ctx, "failed to load configuration", err, nil)
		return fmt.Errorf("configuration error: %w", err)
	}

	// Flag overrides config, config overrides the built-in default.
	prefix := branchPrefix
	if prefix == "" {
		prefix = cfg.BranchPrefix
	}

	proposer := usecases.NewChangeProposer(usecases.Collaborators{
		UI:      deps.UIFactory(),
		Locator: deps.LocatorFactory(log),
		Patcher: deps.PatcherFactory(log),
		OpenRepo: func(path string) (domain.VersionControl, error) {
			return deps.RepoOpener(path, log)
		},
		ForgeFactory: func(ctx context.Context, token string) domain.ForgeClient {
			return deps.ForgeFactory(ctx, token, log)
		},
		ResolveToken: func() string {
			return deps.TokenResolver(cfg)
		},
		Now:    time.Now,
		Logger: log,
	})

	result, err := proposer.Propose(ctx, usecases.ProposeInput{
		ProjectRoot:  projectRoot,
		Sentence:     promptSentence,
		File:         targetFile,
		BranchPrefix: prefix,
	})
	if err != nil {
		log.Error(ctx, "change proposal failed", err, nil)
		if errors.Is(err, domain.ErrFlagNotFound) {
			return fmt.Errorf("flag not found in the selected file")
		}
		return err
	}

	log.Info(ctx, "change proposal finished", map[string]interface{}{
		"status": string(result.Status),
		"file":   result.File,
		"branch": result.Branch.Name,
		"url":    result.PullRequestURL,
	})

	return nil
}

// Execute runs the root command.
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
