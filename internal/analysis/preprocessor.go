package analysis

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
	"github.com/kyokomi/emoji/v2"
)

const variationSelector = "\uFE0F"

var (
	// RE2's \S is ASCII-only, so Unicode spaces end a URL explicitly
	urlPattern        = regexp.MustCompile(`https?://[^\s\p{Z}]+|www\.[^\s\p{Z}]+`)
	hindiPunctPattern = regexp.MustCompile(`[॰ॐ।॥]+`)
	// RE2 has no backreferences, hence regexp2 for the run collapse
	repeatPattern = regexp2.MustCompile(`(.)\1{3,}`, regexp2.None)
)

// Preprocessor normalizes raw social-media text before classification
type Preprocessor struct {
	emoji *strings.Replacer
}

// NewPreprocessor creates a new preprocessor
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{emoji: emojiReplacer()}
}

// Preprocess runs the normalization steps in order: emoji to text tokens,
// URL removal, collapsing character runs, Hindi punctuation removal and
// trimming.
func (p *Preprocessor) Preprocess(text string) string {
	text = p.Demojize(text)
	text = StripURLs(text)
	text = CollapseRepeats(text)
	text = hindiPunctPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Demojize replaces every known emoji glyph with " [short_name] "
func (p *Preprocessor) Demojize(text string) string {
	return p.emoji.Replace(text)
}

// StripURLs removes http(s):// and www. links
func StripURLs(text string) string {
	return urlPattern.ReplaceAllString(text, "")
}

// CollapseRepeats shortens any run of four or more identical characters to
// two. Doubled letters are left alone.
func CollapseRepeats(text string) string {
	out, err := repeatPattern.Replace(text, "$1$1", -1, -1)
	if err != nil {
		return text
	}
	return out
}

var emojiReplacer = sync.OnceValue(func() *strings.Replacer {
	names := make(map[string]string)
	for code, glyph := range emoji.CodeMap() {
		glyph = strings.TrimSpace(glyph)
		name := strings.Trim(code, ":")
		if glyph == "" || name == "" {
			continue
		}
		// prefer the most descriptive alias; ties go to the smaller name
		if cur, ok := names[glyph]; ok && (len(cur) > len(name) || (len(cur) == len(name) && cur < name)) {
			continue
		}
		names[glyph] = name
	}

	tokens := make(map[string]string, len(names)*2)
	for glyph, name := range names {
		tokens[glyph] = " [" + name + "] "
	}
	// accept both the bare and the emoji-presentation form of each glyph
	for glyph, name := range names {
		var alt string
		if strings.HasSuffix(glyph, variationSelector) {
			alt = strings.TrimSuffix(glyph, variationSelector)
		} else {
			alt = glyph + variationSelector
		}
		if _, ok := tokens[alt]; !ok && alt != "" {
			tokens[alt] = " [" + name + "] "
		}
	}

	glyphs := make([]string, 0, len(tokens))
	for glyph := range tokens {
		glyphs = append(glyphs, glyph)
	}
	// strings.Replacer prefers earlier pairs, so longer sequences go first
	sort.Slice(glyphs, func(i, j int) bool {
		if len(glyphs[i]) != len(glyphs[j]) {
			return len(glyphs[i]) > len(glyphs[j])
		}
		return glyphs[i] < glyphs[j]
	})

	pairs := make([]string, 0, len(glyphs)*2)
	for _, glyph := range glyphs {
		pairs = append(pairs, glyph, tokens[glyph])
	}
	return strings.NewReplacer(pairs...)
})
