// Package locator provides the filesystem scanner that finds candidate
// configuration files under a project root.
package locator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Logger defines the logging interface for the locator.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// patterns are the match passes, evaluated in priority order. The order
// of passes determines pre-sort position of first occurrence.
var patterns = []struct {
	name  string
	match func(path string) bool
}{
	{"config-json", func(p string) bool {
		return strings.Contains(strings.ToLower(p), "config") && strings.HasSuffix(strings.ToLower(p), ".json")
	}},
	{"json", func(p string) bool { return strings.HasSuffix(strings.ToLower(p), ".json") }},
	{"yaml", func(p string) bool { return strings.HasSuffix(strings.ToLower(p), ".yaml") }},
	{"yml", func(p string) bool { return strings.HasSuffix(strings.ToLower(p), ".yml") }},
}

// Scanner implements domain.ConfigLocator by walking the project tree
// once per pattern, excluding dependency directories via gitignore-style
// rules.
type Scanner struct {
	logger Logger
}

// NewScanner creates a Scanner with the given logger.
func NewScanner(log Logger) *Scanner {
	return &Scanner{logger: log}
}

// Locate enumerates candidate config files under root. Results are
// deduplicated by absolute path (first occurrence wins position) and
// stably sorted so that files whose basename contains "config"
// (case-insensitive) precede all others. An empty result is not an
// error; a failed pattern pass is logged and skipped, leaving the other
// passes' results intact.
func (s *Scanner) Locate(ctx context.Context, root string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	excluded := s.exclusionRules(absRoot)

	var merged []string
	seen := map[string]bool{}

	for _, pattern := range patterns {
		found, err := s.scanPattern(ctx, absRoot, pattern.match, excluded)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn(ctx, "pattern pass failed, skipping", map[string]interface{}{
				"pattern": pattern.name,
				"error":   err.Error(),
			})
			continue
		}
		for _, path := range found {
			if !seen[path] {
				seen[path] = true
				merged = append(merged, path)
			}
		}
	}

	// Files named like config come first; everything else keeps its
	// original relative order.
	sort.SliceStable(merged, func(i, j int) bool {
		return isConfigName(merged[i]) && !isConfigName(merged[j])
	})

	s.logger.Debug(ctx, "located candidate config files", map[string]interface{}{
		"root":  absRoot,
		"count": len(merged),
	})

	return merged, nil
}

// scanPattern walks the tree once, collecting files accepted by match.
// Unreadable entries are skipped, not fatal.
func (s *Scanner) scanPattern(
	ctx context.Context,
	root string,
	match func(string) bool,
	excluded *ignore.GitIgnore,
) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			s.logger.Debug(ctx, "skipping unreadable entry", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if rel != "." && excluded.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if excluded.MatchesPath(rel) {
			return nil
		}
		if match(filepath.ToSlash(rel)) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// exclusionRules compiles the dependency-directory convention plus the
// project's own .gitignore when one exists.
func (s *Scanner) exclusionRules(root string) *ignore.GitIgnore {
	lines := []string{"node_modules/"}

	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err == nil {
		lines = append(lines, strings.Split(string(data), "\n")...)
	}

	return ignore.CompileIgnoreLines(lines...)
}

// isConfigName reports whether the file's basename contains "config",
// case-insensitively.
func isConfigName(path string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(path)), "config")
}
