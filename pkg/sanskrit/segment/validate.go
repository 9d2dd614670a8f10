package segment

import (
	"strings"
	"unicode/utf8"

	"github.com/cognicore/sanskrit/pkg/sanskrit/script"
)

// MaxStrictParts bounds how many parts a strict candidate may have.
const MaxStrictParts = 6

// singleMorphemes may stand alone as one-character parts.
var singleMorphemes = map[string]struct{}{
	string(script.Avagraha): {},
	string(script.Visarga):  {},
	string(script.Anusvara): {},
}

func isSingleMorpheme(part string) bool {
	_, ok := singleMorphemes[part]
	return ok
}

// ValidStrict is the gate an oracle candidate must pass to be accepted
// outright: 2 to 6 parts, no one-character fragments besides the allowed
// morphemes, and no part that starts with a mark or ends in a virama.
func ValidStrict(parts []string) bool {
	if len(parts) < 2 || len(parts) > MaxStrictParts {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		if isSingleMorpheme(p) {
			continue
		}
		if script.RuneLen(p) < 2 {
			return false
		}
		if script.StartsBare(p) || script.EndsWithVirama(p) {
			return false
		}
	}
	return true
}

// ValidRelaxed accepts any split into at least two non-empty parts.
func ValidRelaxed(parts []string) bool {
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

// ValidRule checks a pattern candidate: non-empty parts, no bare mark
// inside any part, no bare mark leading any part after the first, and no
// virama past the first character of any part.
func ValidRule(parts []string) bool {
	if !ValidRelaxed(parts) {
		return false
	}
	for i, p := range parts {
		if i > 0 && script.StartsBare(p) {
			return false
		}
		if script.HasInternalBare(p) || hasInnerVirama(p) {
			return false
		}
	}
	return true
}

func hasInnerVirama(part string) bool {
	_, size := utf8.DecodeRuneInString(part)
	return strings.ContainsRune(part[size:], script.Virama)
}

// oracleConfidence scores an oracle split. The adjustments are additive
// and the result is clamped to [0, 1].
func oracleConfidence(parts []string) float64 {
	c := 0.7
	if ValidStrict(parts) {
		c += 0.2
	}
	for _, p := range parts {
		if script.RuneLen(p) < 2 && !isSingleMorpheme(p) {
			c -= 0.3
			break
		}
	}
	if len(parts) > 4 {
		c -= 0.2
	}
	inRange := true
	for _, p := range parts {
		if n := script.RuneLen(p); n < 2 || n > 8 {
			inRange = false
			break
		}
	}
	if inRange {
		c += 0.1
	}
	return min(max(c, 0), 1)
}
