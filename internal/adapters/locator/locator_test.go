package locator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})  {}

func buildTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestScannerLocate(t *testing.T) {
	root := buildTree(t, map[string]string{
		"app.json":                 "{}",
		"config/flags.json":        "{}",
		"settings-config.yaml":     "a: 1",
		"deploy/values.yml":        "b: 2",
		"docs/readme.md":           "text",
		"node_modules/pkg.json":    "{}",
		"node_modules/config.json": "{}",
	})

	scanner := NewScanner(&mockLogger{})
	got, err := scanner.Locate(context.Background(), root)
	require.NoError(t, err)

	var rels []string
	for _, p := range got {
		rel, relErr := filepath.Rel(root, p)
		require.NoError(t, relErr)
		rels = append(rels, filepath.ToSlash(rel))
	}

	// node_modules is excluded and non-config formats never appear.
	assert.NotContains(t, rels, "node_modules/pkg.json")
	assert.NotContains(t, rels, "node_modules/config.json")
	assert.NotContains(t, rels, "docs/readme.md")

	// Every candidate appears exactly once and config-named files come first.
	assert.ElementsMatch(t, []string{
		"app.json", "config/flags.json", "settings-config.yaml", "deploy/values.yml",
	}, rels)
	assert.Equal(t, "settings-config.yaml", rels[0])

	configNamed := map[string]bool{"settings-config.yaml": true}
	sawPlain := false
	for _, rel := range rels {
		if configNamed[filepath.Base(rel)] {
			assert.False(t, sawPlain, "config-named file %s sorted after a plain file", rel)
		} else {
			sawPlain = true
		}
	}
}

func TestScannerLocateDeterministic(t *testing.T) {
	root := buildTree(t, map[string]string{
		"a.json":      "{}",
		"b.yaml":      "x: 1",
		"c/d.yml":     "y: 2",
		"config.json": "{}",
	})

	scanner := NewScanner(&mockLogger{})

	first, err := scanner.Locate(context.Background(), root)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Equal(t, "config.json", filepath.Base(first[0]))

	for i := 0; i < 5; i++ {
		again, err := scanner.Locate(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScannerLocateEmptyTree(t *testing.T) {
	scanner := NewScanner(&mockLogger{})
	got, err := scanner.Locate(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScannerLocateRespectsGitignore(t *testing.T) {
	root := buildTree(t, map[string]string{
		".gitignore":       "dist/\n",
		"dist/bundle.json": "{}",
		"app.json":         "{}",
	})

	scanner := NewScanner(&mockLogger{})
	got, err := scanner.Locate(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "app.json", filepath.Base(got[0]))
}

func TestScannerLocateCancelled(t *testing.T) {
	root := buildTree(t, map[string]string{"a.json": "{}"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewScanner(&mockLogger{})
	_, err := scanner.Locate(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
