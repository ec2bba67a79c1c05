package patch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/flagops/flagpr/internal/domain"
)

// Logger defines the logging interface for the patcher.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
}

// Patcher implements domain.DocumentPatcher. It detects the file format
// from the extension, parses, mutates the tree via SetPath, and
// re-serializes with stable formatting: 2-space-indented JSON, alias-free
// YAML. Files with unknown extensions are tried as JSON first and edited
// with a textual substitution when that fails.
type Patcher struct {
	logger Logger
}

// NewPatcher creates a Patcher with the given logger.
func NewPatcher(log Logger) *Patcher {
	return &Patcher{logger: log}
}

// Apply mutates exactly one file in place. The original file is left
// unmodified when any read, parse, or write step fails; the error
// propagates to the caller. There is no backup and no transaction: the
// overwrite is at-most-once.
func (p *Patcher) Apply(ctx context.Context, path string, intent domain.EditIntent) (*domain.PatchResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var (
		updated []byte
		mode    domain.PatchMode
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		updated, err = p.patchJSON(original, intent)
		mode = domain.PatchModeJSON
	case ".yaml", ".yml":
		updated, err = p.patchYAML(original, intent)
		mode = domain.PatchModeYAML
	default:
		// Unknown extension: try JSON first, fall back to a textual edit.
		updated, err = p.patchJSON(original, intent)
		mode = domain.PatchModeJSON
		if err != nil {
			p.logger.Debug(ctx, "structured parse failed, taking textual fallback", map[string]interface{}{
				"path":  path,
				"cause": err.Error(),
			})
			updated, err = p.patchText(original, intent)
			mode = domain.PatchModeText
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to patch %s: %w", path, err)
	}

	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}

	p.logger.Debug(ctx, "patched file", map[string]interface{}{
		"path":      path,
		"mode":      string(mode),
		"flag_path": intent.FlagPath,
	})

	return &domain.PatchResult{
		Path:     path,
		Mode:     mode,
		Original: original,
		Updated:  updated,
	}, nil
}

// patchJSON parses content as a JSON object, applies the mutation, and
// re-serializes with 2-space indentation.
func (p *Patcher) patchJSON(content []byte, intent domain.EditIntent) ([]byte, error) {
	var root map[string]any
	if err := json.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	if root == nil {
		root = map[string]any{}
	}

	if err := SetPath(root, intent.FlagPath, intent.Value); err != nil {
		return nil, err
	}

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize JSON: %w", err)
	}
	return append(out, '\n'), nil
}

// patchYAML parses content as a YAML mapping, applies the mutation, and
// re-serializes with 2-space indentation. yaml.v3 emits no anchors or
// aliases when marshaling plain map/slice trees, so shared structures in
// the input come back fully inlined.
func (p *Patcher) patchYAML(content []byte, intent domain.EditIntent) ([]byte, error) {
	var root map[string]any
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("not a YAML mapping: %w", err)
	}
	if root == nil {
		root = map[string]any{}
	}

	if err := SetPath(root, intent.FlagPath, intent.Value); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to serialize YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialize YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// patchText rewrites the first "<flagName>: <value>" shaped occurrence of
// the flag's final path segment, case-insensitively. This is a
// best-effort escape hatch for unstructured files: only the first match
// is rewritten and dotted sub-paths are not resolved (known limitation).
// Returns domain.ErrFlagNotFound when no occurrence matches.
func (p *Patcher) patchText(content []byte, intent domain.EditIntent) ([]byte, error) {
	name := intent.FlagName()
	pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(name) + `\s*:\s*[^\n\r,]+`)
	if err != nil {
		return nil, fmt.Errorf("failed to build substitution pattern for %q: %w", name, err)
	}

	loc := pattern.FindIndex(content)
	if loc == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlagNotFound, name)
	}

	replacement := name + ": " + intent.ValueString()
	out := make([]byte, 0, len(content)+len(replacement))
	out = append(out, content[:loc[0]]...)
	out = append(out, replacement...)
	out = append(out, content[loc[1]:]...)
	return out, nil
}
