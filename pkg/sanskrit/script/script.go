// Package script holds Devanagari character classes shared by the
// segmenter, tagger and pipeline.
package script

import (
	"unicode"
	"unicode/utf8"
)

// Signs that carry meaning for sandhi analysis.
const (
	Candrabindu = 'ँ'
	Anusvara    = 'ं'
	Visarga     = 'ः'
	Nukta       = '़'
	Virama      = '्'
	Avagraha    = 'ऽ'
	Danda       = '।'
	DoubleDanda = '॥'
	Om          = 'ॐ'
)

const (
	blockStart = 0x0900
	blockEnd   = 0x097F
)

// symbols always count as Sanskrit script for admissibility.
var symbols = map[rune]struct{}{
	Danda:       {},
	DoubleDanda: {},
	Avagraha:    {},
	Om:          {},
	Anusvara:    {},
	Visarga:     {},
}

// asciiPunct is skipped entirely by the admissibility ratio.
const asciiPunct = ".,;:!?'\"-()[]{}"

// IsDevanagari reports whether r lies in the Devanagari block.
func IsDevanagari(r rune) bool {
	return r >= blockStart && r <= blockEnd
}

// IsCombiningMark reports whether r is a dependent Devanagari sign
// (vowel sign, virama, nukta, anusvara, visarga, candrabindu).
func IsCombiningMark(r rune) bool {
	return IsDevanagari(r) && unicode.In(r, unicode.Mn, unicode.Mc)
}

// IsIndependentVowel reports whether r is a full vowel letter (अ..औ, ॠ, ऌ, ॡ).
func IsIndependentVowel(r rune) bool {
	return (r >= 'अ' && r <= 'औ') || r == 'ॠ' || r == 'ॡ'
}

// IsConsonant reports whether r is a Devanagari consonant letter.
func IsConsonant(r rune) bool {
	return (r >= 'क' && r <= 'ह') || (r >= '\u0958' && r <= '\u095F')
}

// IsSymbol reports whether r is one of the script symbols counted as
// Sanskrit regardless of block membership.
func IsSymbol(r rune) bool {
	_, ok := symbols[r]
	return ok
}

// RuneLen returns the number of code points in s. Every length rule in
// the analyzer is expressed in code points.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// AdmissibilityRatio returns the fraction of counted characters that are
// Devanagari or script symbols. Whitespace and ASCII punctuation are not
// counted. A text with nothing to count has ratio 0.
func AdmissibilityRatio(text string) (float64, int) {
	sanskrit, total := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) || isASCIIPunct(r) {
			continue
		}
		total++
		if IsDevanagari(r) || IsSymbol(r) {
			sanskrit++
		}
	}
	if total == 0 {
		return 0, 0
	}
	return float64(sanskrit) / float64(total), total
}

func isASCIIPunct(r rune) bool {
	for _, p := range asciiPunct {
		if r == p {
			return true
		}
	}
	return false
}

// BareAt reports whether the combining mark at runes[i] has nothing to
// attach to. A mark at position 0 is always bare. Vowel signs, virama and
// nukta need a consonant (or nukta) before them; anusvara, visarga and
// candrabindu may also follow a vowel or a vowel sign.
func BareAt(runes []rune, i int) bool {
	if i < 0 || i >= len(runes) || !IsCombiningMark(runes[i]) {
		return false
	}
	if i == 0 {
		return true
	}
	prev := runes[i-1]
	switch runes[i] {
	case Anusvara, Visarga, Candrabindu:
		return !(IsConsonant(prev) || IsIndependentVowel(prev) ||
			(IsCombiningMark(prev) && prev != Virama))
	case Nukta:
		return !IsConsonant(prev)
	}
	return !(IsConsonant(prev) || prev == Nukta)
}

// StartsBare reports whether s begins with a combining mark.
func StartsBare(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && IsCombiningMark(r)
}

// EndsWithVirama reports whether s ends in a dead consonant.
func EndsWithVirama(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r == Virama
}

// HasInternalBare reports whether any combining mark after the first
// position of s is bare.
func HasInternalBare(s string) bool {
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if BareAt(runes, i) {
			return true
		}
	}
	return false
}
