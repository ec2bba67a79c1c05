package patch

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/flagops/flagpr/internal/domain"
)

// mockLogger implements the Logger interface for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(_ context.Context, _ string, _ map[string]interface{}) {}
func (m *mockLogger) Warn(_ context.Context, _ string, _ map[string]interface{})  {}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPatcherApplyJSON(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})
	path := writeFixture(t, "flags.json", `{"volumeQuotaFlag": true, "other": {"kept": 1}}`)

	result, err := patcher.Apply(context.Background(), path, domain.EditIntent{
		FlagPath: "volumeQuotaFlag",
		Value:    false,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PatchModeJSON, result.Mode)
	assert.Equal(t, path, result.Path)

	// Re-read: the flag resolves to the new value, siblings are unchanged.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, false, doc["volumeQuotaFlag"])
	assert.Equal(t, map[string]any{"kept": float64(1)}, doc["other"])
}

func TestPatcherApplyJSONNestedPath(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})
	path := writeFixture(t, "app.json", `{"limits": {"cpu": 2}}`)

	_, err := patcher.Apply(context.Background(), path, domain.EditIntent{
		FlagPath: "limits.maxConnections",
		Value:    float64(42),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	limits := doc["limits"].(map[string]any)
	assert.Equal(t, float64(42), limits["maxConnections"])
	assert.Equal(t, float64(2), limits["cpu"])
}

func TestPatcherApplyYAML(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})
	path := writeFixture(t, "values.yaml", "service:\n  replicas: 2\nflags:\n  quota: true\n")

	result, err := patcher.Apply(context.Background(), path, domain.EditIntent{
		FlagPath: "flags.quota",
		Value:    false,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PatchModeYAML, result.Mode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	flags := doc["flags"].(map[string]any)
	assert.Equal(t, false, flags["quota"])
	service := doc["service"].(map[string]any)
	assert.Equal(t, 2, service["replicas"])
}

func TestPatcherApplyYAMLInlinesAliases(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})
	path := writeFixture(t, "anchors.yml", "defaults: &d\n  size: 1\nprod:\n  <<: *d\n")

	_, err := patcher.Apply(context.Background(), path, domain.EditIntent{
		FlagPath: "prod.size",
		Value:    float64(3),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "&")
	assert.NotContains(t, string(data), "*")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	prod := doc["prod"].(map[string]any)
	assert.Equal(t, float64(3), prod["size"])
}

func TestPatcherApplyUnknownExtensionValidJSON(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})
	path := writeFixture(t, "flags.conf", `{"volumeQuotaFlag": true}`)

	result, err := patcher.Apply(context.Background(), path, domain.EditIntent{
		FlagPath: "volumeQuotaFlag",
		Value:    false,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PatchModeJSON, result.Mode)
}

func TestPatcherApplyTextFallback(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})
	path := writeFixture(t, "settings.properties",
		"# app settings\nVolumeQuotaFlag: true, other: 1\nvolumeQuotaFlag: old\n")

	result, err := patcher.Apply(context.Background(), path, domain.EditIntent{
		FlagPath: "volumeQuotaFlag",
		Value:    false,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PatchModeText, result.Mode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// Only the first occurrence is rewritten, case-insensitively, and the
	// replacement stops at the comma.
	assert.Equal(t, "# app settings\nvolumeQuotaFlag: false, other: 1\nvolumeQuotaFlag: old\n", string(data))
}

func TestPatcherApplyTextFallbackUsesFinalSegment(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})
	path := writeFixture(t, "app.ini", "quota: on\n")

	_, err := patcher.Apply(context.Background(), path, domain.EditIntent{
		FlagPath: "flags.quota",
		Value:    "off",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "quota: off\n", string(data))
}

func TestPatcherApplyTextFallbackFlagMissing(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})
	path := writeFixture(t, "notes.txt", "nothing relevant here\n")

	_, err := patcher.Apply(context.Background(), path, domain.EditIntent{
		FlagPath: "volumeQuotaFlag",
		Value:    false,
	})
	assert.ErrorIs(t, err, domain.ErrFlagNotFound)

	// The file is left unmodified on failure.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "nothing relevant here\n", string(data))
}

func TestPatcherApplyMalformedKnownFormats(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "malformed json", file: "broken.json", content: `{"a":`},
		{name: "yaml root is a sequence", file: "list.yaml", content: "- a\n- b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tt.file, tt.content)
			_, err := patcher.Apply(context.Background(), path, domain.EditIntent{
				FlagPath: "a",
				Value:    1,
			})
			require.Error(t, err)

			// Error branches leave the file untouched.
			data, readErr := os.ReadFile(path)
			require.NoError(t, readErr)
			assert.Equal(t, tt.content, string(data))
		})
	}
}

func TestPatcherApplyMissingFile(t *testing.T) {
	patcher := NewPatcher(&mockLogger{})
	_, err := patcher.Apply(context.Background(), filepath.Join(t.TempDir(), "absent.json"), domain.EditIntent{
		FlagPath: "a",
		Value:    1,
	})
	assert.Error(t, err)
}
