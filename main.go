// Package main is the entry point for the flagpr CLI application.
// flagpr turns a structured flag-change sentence into an in-place config
// edit and a pull request proposing that edit.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/flagops/flagpr/cmd"
	"github.com/flagops/flagpr/internal/adapters/console"
	"github.com/flagops/flagpr/internal/adapters/forge"
	"github.com/flagops/flagpr/internal/adapters/git"
	logadapter "github.com/flagops/flagpr/internal/adapters/logger"
	"github.com/flagops/flagpr/internal/adapters/locator"
	"github.com/flagops/flagpr/internal/domain"
	"github.com/flagops/flagpr/internal/infrastructure/config"
	"github.com/flagops/flagpr/internal/patch"
)

func main() {
	// Best-effort: a local .env may carry GITHUB_TOKEN during development.
	_ = godotenv.Load()

	deps := &cmd.Dependencies{
		LoggerFactory: func(verbose bool) cmd.Logger {
			return newLogger(verbose)
		},

		ConfigLoader: func(projectRoot string) (*cmd.AppConfig, error) {
			settings, err := config.Load(projectRoot)
			if err != nil {
				return nil, err
			}
			return &cmd.AppConfig{
				BranchPrefix: settings.BranchPrefix,
				GithubToken:  settings.GithubToken,
			}, nil
		},

		UIFactory: func() domain.UserInteraction {
			return console.NewConsole()
		},

		LocatorFactory: func(log cmd.Logger) domain.ConfigLocator {
			return locator.NewScanner(log)
		},

		PatcherFactory: func(log cmd.Logger) domain.DocumentPatcher {
			return patch.NewPatcher(log)
		},

		RepoOpener: func(path string, log cmd.Logger) (domain.VersionControl, error) {
			return git.NewGoGitRepository(path, log)
		},

		ForgeFactory: func(ctx context.Context, token string, log cmd.Logger) domain.ForgeClient {
			return forge.NewGitHubClient(ctx, token, log)
		},

		TokenResolver: func(cfg *cmd.AppConfig) string {
			return config.ResolveCredential(&config.Settings{
				BranchPrefix: cfg.BranchPrefix,
				GithubToken:  cfg.GithubToken,
			}, os.Getenv)
		},
	}

	cmd.SetDefaultDependencies(deps)
	cmd.Execute()
}

// newLogger builds the production logger. A construction failure falls
// back to a no-op logger rather than aborting the run.
func newLogger(verbose bool) cmd.Logger {
	log, err := logadapter.New(verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: could not initialize logger:", err)
		return logadapter.NewZapAdapter(zap.NewNop())
	}
	return log
}
