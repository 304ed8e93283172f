// Package resources loads the static sentiment data the pipeline scores
// against: the emoji map, the bilingual positive/negative lexicon and the
// neutral term list. Everything is loaded once at startup and is read-only
// afterwards, so a *Resources can be shared freely between goroutines.
package resources

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/sentiment-o-meter/internal/errors"
)

const (
	EmojiFile   = "emoji_data.json"
	LexiconFile = "hinglish_lexicon.json"
	NeutralFile = "neutral_lexicon.json"

	variationSelector = "\uFE0F"
)

// Sentiment labels an emoji may map to
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

//go:embed data/*.json
var defaultData embed.FS

// EmojiEntry is one emoji glyph and the sentiment it evidences
type EmojiEntry struct {
	Glyph string
	Label string
}

// Resources is the immutable set of lookup data used by the score adjuster
type Resources struct {
	emoji []EmojiEntry

	Positive *TermSet
	Negative *TermSet
	Neutral  *TermSet
}

type lexiconFile struct {
	Positive []string `json:"positive"`
	Negative []string `json:"negative"`
}

// LoadEmbedded loads the resource files compiled into the binary
func LoadEmbedded() (*Resources, error) {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		return nil, errors.NewResourceLoadError("embedded data", err)
	}
	return Load(sub)
}

// LoadDir loads the resource files from a directory on disk
func LoadDir(dir string) (*Resources, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.NewResourceLoadError(dir, err)
	}
	if !info.IsDir() {
		return nil, errors.NewResourceLoadError(dir, fmt.Errorf("%s is not a directory", dir))
	}
	return Load(os.DirFS(dir))
}

// Load reads the three resource files from fsys. A missing or malformed file
// is returned as a resource load error; callers must treat it as fatal.
func Load(fsys fs.FS) (*Resources, error) {
	var emojiMap map[string]string
	if err := decodeFile(fsys, EmojiFile, &emojiMap); err != nil {
		return nil, err
	}

	var lexicon lexiconFile
	if err := decodeFile(fsys, LexiconFile, &lexicon); err != nil {
		return nil, err
	}
	if lexicon.Positive == nil || lexicon.Negative == nil {
		return nil, errors.NewResourceLoadError(LexiconFile, fmt.Errorf("both \"positive\" and \"negative\" lists are required"))
	}

	var neutral []string
	if err := decodeFile(fsys, NeutralFile, &neutral); err != nil {
		return nil, err
	}
	if neutral == nil {
		return nil, errors.NewResourceLoadError(NeutralFile, fmt.Errorf("expected a JSON array of terms"))
	}

	return New(emojiMap, lexicon.Positive, lexicon.Negative, neutral)
}

// New builds Resources from in-memory data. Terms are trimmed and lowercased;
// blank terms are dropped. Emoji glyphs are stored without the U+FE0F
// variation selector, so "❤️" and "❤" are one entry. An emoji mapped to
// anything but positive, negative or neutral is rejected, as are two spellings
// of one glyph mapped to different sentiments.
func New(emojiMap map[string]string, positive, negative, neutral []string) (*Resources, error) {
	r := &Resources{}

	labels := make(map[string]string, len(emojiMap))
	for glyph, label := range emojiMap {
		glyph = BareGlyph(strings.TrimSpace(glyph))
		label = strings.ToLower(strings.TrimSpace(label))
		if glyph == "" {
			return nil, errors.NewResourceLoadError(EmojiFile, fmt.Errorf("empty emoji key"))
		}
		switch label {
		case LabelPositive, LabelNegative, LabelNeutral:
		default:
			return nil, errors.NewResourceLoadError(EmojiFile, fmt.Errorf("emoji %q has unknown sentiment %q", glyph, label))
		}
		if prev, dup := labels[glyph]; dup {
			if prev != label {
				return nil, errors.NewResourceLoadError(EmojiFile, fmt.Errorf("emoji %q is mapped to both %q and %q", glyph, prev, label))
			}
			continue
		}
		labels[glyph] = label
		r.emoji = append(r.emoji, EmojiEntry{Glyph: glyph, Label: label})
	}
	sort.Slice(r.emoji, func(i, j int) bool { return r.emoji[i].Glyph < r.emoji[j].Glyph })

	var err error
	if r.Positive, err = NewTermSet(positive); err != nil {
		return nil, errors.NewResourceLoadError(LexiconFile, err)
	}
	if r.Negative, err = NewTermSet(negative); err != nil {
		return nil, errors.NewResourceLoadError(LexiconFile, err)
	}
	if r.Neutral, err = NewTermSet(neutral); err != nil {
		return nil, errors.NewResourceLoadError(NeutralFile, err)
	}

	return r, nil
}

// Emoji returns the emoji entries sorted by glyph, without variation
// selectors. The slice must not be modified.
func (r *Resources) Emoji() []EmojiEntry {
	return r.emoji
}

// BareGlyph strips the U+FE0F emoji presentation selector from s
func BareGlyph(s string) string {
	return strings.ReplaceAll(s, variationSelector, "")
}

func decodeFile(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return errors.NewResourceLoadError(name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewResourceLoadError(name, fmt.Errorf("invalid JSON: %w", err))
	}
	return nil
}
