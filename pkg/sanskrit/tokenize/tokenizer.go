// Package tokenize splits Devanagari text into orthographic tokens.
package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/sanskrit/pkg/sanskrit/script"
)

// separators split tokens and are emitted as tokens of their own.
const separators = "।॥.,;:!?-()[]{}"

// punctuation bypasses segmentation and is tagged PUNCT. Hyphens and
// brackets still separate tokens but are not in this set.
var punctuation = map[string]struct{}{
	"।": {}, "॥": {}, "॰": {}, "।।": {},
	".": {}, ",": {}, ";": {}, ":": {}, "!": {}, "?": {},
}

// Tokenizer handles normalization and splitting.
type Tokenizer struct {
	separators map[rune]struct{}
}

// NewTokenizer returns a tokenizer with the standard separator set.
func NewTokenizer() *Tokenizer {
	seps := make(map[rune]struct{}, len(separators))
	for _, r := range separators {
		seps[r] = struct{}{}
	}
	return &Tokenizer{separators: seps}
}

// Normalize applies NFC and collapses runs of whitespace.
func Normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}

// Tokenize normalizes text and splits it on whitespace and separators.
// Separators are kept as single-character tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range Normalize(text) {
		switch {
		case unicode.IsSpace(r):
			flush()
		case t.isSeparator(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

func (t *Tokenizer) isSeparator(r rune) bool {
	_, ok := t.separators[r]
	return ok
}

// IsPunct reports whether token is punctuation.
func IsPunct(token string) bool {
	_, ok := punctuation[token]
	return ok
}

// Properties describes the surface shape of a word.
type Properties struct {
	Length        int    `json:"length"`
	IsDevanagari  bool   `json:"is_devanagari"`
	IsPunctuation bool   `json:"is_punctuation"`
	HasDigits     bool   `json:"has_digits"`
	Prefix2       string `json:"prefix_2"`
	Prefix3       string `json:"prefix_3"`
	Suffix2       string `json:"suffix_2"`
	Suffix3       string `json:"suffix_3"`
	Suffix4       string `json:"suffix_4"`
}

// WordProperties computes Properties for word. Affixes longer than the
// word are left empty.
func WordProperties(word string) Properties {
	runes := []rune(word)
	n := len(runes)
	p := Properties{Length: n, IsPunctuation: n > 0}
	for _, r := range runes {
		if script.IsDevanagari(r) {
			p.IsDevanagari = true
		}
		if unicode.IsDigit(r) {
			p.HasDigits = true
		}
		if !strings.ContainsRune(separators, r) {
			p.IsPunctuation = false
		}
	}
	if n >= 2 {
		p.Prefix2, p.Suffix2 = string(runes[:2]), string(runes[n-2:])
	}
	if n >= 3 {
		p.Prefix3, p.Suffix3 = string(runes[:3]), string(runes[n-3:])
	}
	if n >= 4 {
		p.Suffix4 = string(runes[n-4:])
	}
	return p
}
