// Package matcher decides whether a free-text quiz answer is close enough to
// the canonical one.
package matcher

import (
	"regexp"
	"strings"

	"github.com/samber/oops"
)

// DefaultThreshold is the acceptance ratio used when none is configured.
const DefaultThreshold = 0.7

// punctuation is the ASCII punctuation set removed before comparison.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// commentPattern matches annotator commentary: optional leading whitespace
// (Unicode spaces included) followed by a parenthesized or bracketed span.
var commentPattern = regexp.MustCompile(`[\s\p{Zs}]?\(.+\)|[\s\p{Zs}]?\[.+\]`)

type Matcher struct {
	threshold float64
}

func New(threshold float64) (*Matcher, error) {
	if threshold < 0 || threshold > 1 {
		return nil, oops.
			In("matcher").
			With("threshold", threshold).
			Errorf("threshold must be within [0, 1]")
	}

	return &Matcher{threshold: threshold}, nil
}

func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// IsCorrect reports whether submitted matches canonical at or above the
// configured threshold.
func (m *Matcher) IsCorrect(submitted, canonical string) bool {
	return m.Ratio(submitted, canonical) >= m.threshold
}

// Ratio returns the similarity of the normalized strings in [0, 1].
// Commentary is stripped from canonical only.
func (m *Matcher) Ratio(submitted, canonical string) float64 {
	expected := []rune(Normalize(StripComments(canonical)))
	given := []rune(Normalize(submitted))

	if len(given) == 0 && len(expected) > 0 {
		return 0
	}

	return newSequenceMatcher(expected, given).ratio()
}

// StripComments removes every "(...)" and "[...]" span, together with one
// whitespace character in front of it.
func StripComments(s string) string {
	return commentPattern.ReplaceAllString(s, "")
}

// Normalize lower-cases s and drops ASCII punctuation.
func Normalize(s string) string {
	s = strings.ToLower(s)

	var builder strings.Builder
	builder.Grow(len(s))

	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(punctuation, r) {
			continue
		}
		builder.WriteRune(r)
	}

	return builder.String()
}
