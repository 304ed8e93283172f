package analysis

import (
	"unicode"
	"unicode/utf8"
)

// Texts shorter than this that mix Latin letters with digits are tagged mixed
const mixedMaxLength = 20

func isDevanagari(r rune) bool {
	return r >= 0x0900 && r <= 0x097F
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// DetectLanguage tags text from the scripts it contains. Detection is by
// script only: romanized Hindi reads as english.
func DetectLanguage(text string) Language {
	var devanagari, latin, digit bool
	for _, r := range text {
		switch {
		case isDevanagari(r):
			devanagari = true
		case isLatinLetter(r):
			latin = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case devanagari && latin:
		return Hinglish
	case devanagari:
		return Hindi
	case latin:
		if digit && utf8.RuneCountInString(text) < mixedMaxLength {
			return Mixed
		}
		return English
	default:
		return Unknown
	}
}
