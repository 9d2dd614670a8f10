package tagger

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// FeatureKind names one feature extracted from a word or its context.
type FeatureKind string

const (
	FeatWord             FeatureKind = "word"
	FeatWordLower        FeatureKind = "word_lower"
	FeatIsUpper          FeatureKind = "word_isupper"
	FeatIsTitle          FeatureKind = "word_istitle"
	FeatIsDigit          FeatureKind = "word_isdigit"
	FeatSuffix1          FeatureKind = "suffix_1"
	FeatSuffix2          FeatureKind = "suffix_2"
	FeatSuffix3          FeatureKind = "suffix_3"
	FeatSuffix4          FeatureKind = "suffix_4"
	FeatPrefix1          FeatureKind = "prefix_1"
	FeatPrefix2          FeatureKind = "prefix_2"
	FeatPrefix3          FeatureKind = "prefix_3"
	FeatPrefix4          FeatureKind = "prefix_4"
	FeatHasVowel         FeatureKind = "has_vowel"
	FeatHasConsonant     FeatureKind = "has_consonant"
	FeatEndsWithVowel    FeatureKind = "ends_with_vowel"
	FeatEndsWithVisarga  FeatureKind = "ends_with_visarga"
	FeatEndsWithAnusvara FeatureKind = "ends_with_anusvara"
	FeatPrevTag          FeatureKind = "prev_tag"
	FeatPrevPrevTag      FeatureKind = "prev_prev_tag"
	FeatWordLength       FeatureKind = "word_length"
	FeatIsLongWord       FeatureKind = "is_long_word"
)

var (
	suffixKinds = [...]FeatureKind{FeatSuffix1, FeatSuffix2, FeatSuffix3, FeatSuffix4}
	prefixKinds = [...]FeatureKind{FeatPrefix1, FeatPrefix2, FeatPrefix3, FeatPrefix4}

	boolKinds = map[FeatureKind]bool{
		FeatIsUpper: true, FeatIsTitle: true, FeatIsDigit: true,
		FeatHasVowel: true, FeatHasConsonant: true, FeatEndsWithVowel: true,
		FeatEndsWithVisarga: true, FeatEndsWithAnusvara: true, FeatIsLongWord: true,
	}

	knownKinds = func() map[FeatureKind]bool {
		m := map[FeatureKind]bool{
			FeatWord: true, FeatWordLower: true, FeatPrevTag: true,
			FeatPrevPrevTag: true, FeatWordLength: true,
		}
		for k := range boolKinds {
			m[k] = true
		}
		for _, k := range suffixKinds {
			m[k] = true
		}
		for _, k := range prefixKinds {
			m[k] = true
		}
		return m
	}()
)

// StartContext is the synthetic tag before the first word.
const StartContext Tag = "<START>"

// FeatureKey is one feature with its value. Boolean values are spelled
// "True" and "False".
type FeatureKey struct {
	Kind  FeatureKind
	Value string
}

// String renders the key as kind=value.
func (k FeatureKey) String() string {
	return string(k.Kind) + "=" + k.Value
}

// ParseFeatureKey reads a kind=value key.
func ParseFeatureKey(s string) (FeatureKey, error) {
	kind, value, ok := strings.Cut(s, "=")
	if !ok {
		return FeatureKey{}, fmt.Errorf("feature key %q: missing '='", s)
	}
	k := FeatureKind(kind)
	if !knownKinds[k] {
		return FeatureKey{}, fmt.Errorf("feature key %q: unknown kind %q", s, kind)
	}
	if boolKinds[k] {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return FeatureKey{}, fmt.Errorf("feature key %q: %w", s, err)
		}
		value = boolValue(b)
	}
	return FeatureKey{Kind: k, Value: value}, nil
}

func boolValue(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func boolFeature(kind FeatureKind, b bool) FeatureKey {
	return FeatureKey{Kind: kind, Value: boolValue(b)}
}

// Character sets probed by the script features.
const (
	featureVowels     = "अआइईउऊऋॠएऐओऔ"
	featureConsonants = "कखगघचछजझटठडढतथदधनपफबभम"
)

// wordFeatures extracts every feature that depends only on the word.
func wordFeatures(word string) []FeatureKey {
	runes := []rune(word)
	n := len(runes)

	feats := make([]FeatureKey, 0, 20)
	feats = append(feats,
		FeatureKey{Kind: FeatWord, Value: word},
		FeatureKey{Kind: FeatWordLower, Value: strings.ToLower(word)},
		boolFeature(FeatIsUpper, isUpper(runes)),
		boolFeature(FeatIsTitle, isTitle(runes)),
		boolFeature(FeatIsDigit, isDigit(runes)),
	)
	for i := 1; i <= min(4, n); i++ {
		feats = append(feats, FeatureKey{Kind: suffixKinds[i-1], Value: string(runes[n-i:])})
	}
	for i := 1; i <= min(4, n); i++ {
		feats = append(feats, FeatureKey{Kind: prefixKinds[i-1], Value: string(runes[:i])})
	}

	endsWithVowel := n > 0 && strings.ContainsRune(featureVowels, runes[n-1])
	feats = append(feats,
		boolFeature(FeatHasVowel, strings.ContainsAny(word, featureVowels)),
		boolFeature(FeatHasConsonant, strings.ContainsAny(word, featureConsonants)),
		boolFeature(FeatEndsWithVowel, endsWithVowel),
		boolFeature(FeatEndsWithVisarga, strings.HasSuffix(word, "ः")),
		boolFeature(FeatEndsWithAnusvara, strings.HasSuffix(word, "ं")),
		FeatureKey{Kind: FeatWordLength, Value: strconv.Itoa(n)},
		boolFeature(FeatIsLongWord, n > 6),
	)
	return feats
}

// isUpper is true when the word has cased letters and none is lower case.
func isUpper(runes []rune) bool {
	cased := false
	for _, r := range runes {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// isTitle is true when every run of cased letters starts upper case and
// continues lower case.
func isTitle(runes []rune) bool {
	cased, prevCased := false, false
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased, cased = true, true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased, cased = true, true
		default:
			prevCased = false
		}
	}
	return cased
}

func isDigit(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
