package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flagops/flagpr/internal/domain"
)

func TestSetPath(t *testing.T) {
	tests := []struct {
		name  string
		root  map[string]any
		path  string
		value any
		want  map[string]any
	}{
		{
			name:  "creates intermediate maps on empty root",
			root:  map[string]any{},
			path:  "a.b.c",
			value: 5,
			want:  map[string]any{"a": map[string]any{"b": map[string]any{"c": 5}}},
		},
		{
			name:  "siblings at each level are untouched",
			root:  map[string]any{"a": map[string]any{"b": map[string]any{"x": 1}}},
			path:  "a.c",
			value: 2,
			want: map[string]any{"a": map[string]any{
				"b": map[string]any{"x": 1},
				"c": 2,
			}},
		},
		{
			name:  "scalar at intermediate segment is replaced with a map",
			root:  map[string]any{"a": map[string]any{"b": 5}},
			path:  "a.b.c",
			value: 7,
			want:  map[string]any{"a": map[string]any{"b": map[string]any{"c": 7}}},
		},
		{
			name:  "final segment overwrites regardless of prior type",
			root:  map[string]any{"a": map[string]any{"b": map[string]any{"x": 1}}},
			path:  "a.b",
			value: 1,
			want:  map[string]any{"a": map[string]any{"b": 1}},
		},
		{
			name:  "nil at intermediate segment is replaced",
			root:  map[string]any{"a": nil},
			path:  "a.b",
			value: true,
			want:  map[string]any{"a": map[string]any{"b": true}},
		},
		{
			name:  "sequence at intermediate segment is replaced",
			root:  map[string]any{"a": []any{1, 2}},
			path:  "a.b",
			value: "x",
			want:  map[string]any{"a": map[string]any{"b": "x"}},
		},
		{
			name:  "single segment sets top-level key",
			root:  map[string]any{"volumeQuotaFlag": true, "other": "kept"},
			path:  "volumeQuotaFlag",
			value: false,
			want:  map[string]any{"volumeQuotaFlag": false, "other": "kept"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, SetPath(tt.root, tt.path, tt.value))
			assert.Equal(t, tt.want, tt.root)
		})
	}
}

func TestSetPathEmptyPath(t *testing.T) {
	err := SetPath(map[string]any{}, "", 1)
	assert.ErrorIs(t, err, domain.ErrEmptyFlagPath)
}
