// Package config provides configuration loading for the flagpr
// application. Settings come from an optional .flagpr.yaml file in the
// project root or home directory, overridable through FLAGPR_* environment
// variables, with the forge token additionally falling back to
// GITHUB_TOKEN.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/flagops/flagpr/internal/domain"
)

// Configuration keys.
const (
	// KeyBranchPrefix is the prefix for generated branch names.
	KeyBranchPrefix = "branch_prefix"

	// KeyGithubToken is the credential for the forge API.
	KeyGithubToken = "github_token"
)

// Environment variable names.
const (
	// EnvPrefix namespaces the viper environment overrides,
	// e.g. FLAGPR_BRANCH_PREFIX.
	EnvPrefix = "FLAGPR"

	// EnvGithubToken is the fallback token variable when github_token
	// is unset.
	EnvGithubToken = "GITHUB_TOKEN"
)

// ConfigFileName is the settings file basename (".flagpr.yaml").
const ConfigFileName = ".flagpr"

// Settings holds all application configuration.
type Settings struct {
	// BranchPrefix is the prefix for generated branch names.
	BranchPrefix string

	// GithubToken is the forge API credential ("" when unset; the
	// environment fallback is applied by ResolveCredential, not here).
	GithubToken string
}

// Load reads settings from the project root or home directory. A missing
// settings file is not an error; a malformed one is.
func Load(projectRoot string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	if projectRoot != "" {
		v.AddConfigPath(projectRoot)
	}
	v.AddConfigPath("$HOME")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeyBranchPrefix, domain.DefaultBranchPrefix)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	return &Settings{
		BranchPrefix: v.GetString(KeyBranchPrefix),
		GithubToken:  v.GetString(KeyGithubToken),
	}, nil
}

// ResolveCredential returns the forge token: the configured value when
// present, else the environment fallback, else "". The environment is
// passed as a lookup function so tests never mutate process state.
func ResolveCredential(settings *Settings, getenv func(string) string) string {
	if settings != nil && settings.GithubToken != "" {
		return settings.GithubToken
	}
	return getenv(EnvGithubToken)
}
