// Package intent parses operator sentences into structured edit intents.
// The grammar is deliberately rigid: anything that does not match is a
// user-facing parse failure, never an error.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/flagops/flagpr/internal/domain"
)

// sentencePattern matches the fixed grammar:
//
//	onUPDATE <flagPath> to <value> [for <environment> environment] [and <region> region]
//
// Keywords are case-insensitive; <flagPath> and <value> are single
// non-whitespace tokens captured with their original case.
var sentencePattern = regexp.MustCompile(
	`(?i)^onupdate\s+(\S+)\s+to\s+(\S+)(?:\s+for\s+(\S+)\s+environment)?(?:\s+and\s+(\S+)\s+region)?$`,
)

// Parse converts a sentence into an EditIntent. The second return value
// is false when the sentence does not match the grammar; the caller must
// treat that as a parse failure, not a crash. Surrounding whitespace is
// ignored.
func Parse(sentence string) (*domain.EditIntent, bool) {
	matches := sentencePattern.FindStringSubmatch(strings.TrimSpace(sentence))
	if matches == nil {
		return nil, false
	}

	return &domain.EditIntent{
		FlagPath:    matches[1],
		Value:       Coerce(matches[2]),
		Environment: matches[3],
		Region:      matches[4],
	}, true
}

// Coerce decides the runtime type for a raw textual value. First match
// wins: the literals "true"/"false" (case-sensitive) become booleans,
// anything parseable as a real number becomes a float64, and everything
// else stays a string. Leading zeros and locale separators get no
// special handling; they follow strconv.ParseFloat semantics.
func Coerce(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}

	if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return n
	}

	return raw
}
