package resources

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Word characters for boundary purposes. Marks are included so Devanagari
// vowel signs do not split a word.
const wordClass = `[\p{L}\p{M}\p{N}_]`

// TermSet is an immutable set of lowercase terms with a whole-word matcher
// compiled for each one.
type TermSet struct {
	terms    []string
	matchers []*regexp2.Regexp
}

// NewTermSet compiles a matcher for every distinct non-blank term
func NewTermSet(terms []string) (*TermSet, error) {
	ts := &TermSet{}
	seen := make(map[string]struct{}, len(terms))

	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		pattern := `(?<!` + wordClass + `)` + regexp2.Escape(term) + `(?!` + wordClass + `)`
		re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("term %q: %w", term, err)
		}

		ts.terms = append(ts.terms, term)
		ts.matchers = append(ts.matchers, re)
	}

	return ts, nil
}

// Len returns the number of distinct terms
func (ts *TermSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.terms)
}

// CountHits returns how many distinct terms occur in text as whole words.
// A term that occurs several times still counts once.
func (ts *TermSet) CountHits(text string) int {
	if ts == nil || text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	hits := 0
	for i, re := range ts.matchers {
		// cheap substring prefilter before running the regex engine
		if !strings.Contains(lower, ts.terms[i]) {
			continue
		}
		ok, err := re.MatchString(lower)
		if err == nil && ok {
			hits++
		}
	}
	return hits
}
