// Package patch applies edit intents to configuration documents, in
// memory and on disk.
package patch

import (
	"strings"

	"github.com/flagops/flagpr/internal/domain"
)

// SetPath walks the dot-delimited path through root, creating
// intermediate maps as needed, and sets the final segment to value.
//
// The policy is destructive but deterministic: any non-map value found at
// an intermediate segment (missing, scalar, nil, or sequence) is replaced
// with a fresh empty map before descending. The final segment is set
// unconditionally, whatever was there before. Dot-path addressing is
// maps-only; array-index segments are not supported.
func SetPath(root map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	if len(segments) == 0 || path == "" {
		return domain.ErrEmptyFlagPath
	}

	current := root
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[seg] = next
		}
		current = next
	}

	current[segments[len(segments)-1]] = value
	return nil
}
