package segment

import (
	"regexp"
	"strings"

	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
)

const vowelClass = "[अआइईउऊऋॠएऐओऔ]"

// patternRule matches a whole token and proposes a split from the submatches.
type patternRule struct {
	name  string
	re    *regexp.Regexp
	split func(m []string) []string
}

func keepLeft(suffix string) func(m []string) []string {
	return func(m []string) []string { return []string{m[1] + suffix, m[2]} }
}

func glide(glyph string) func(m []string) []string {
	return func(m []string) []string { return []string{m[1] + m[2], glyph + m[3]} }
}

func geminate(left, right string) func(m []string) []string {
	return func(m []string) []string { return []string{m[1] + left, right + m[2]} }
}

// patternRules are tried in order; the first full-token match that yields
// more than one part wins. Every rule captures the remainder of the token
// so no characters are lost.
var patternRules = []patternRule{
	{"avagraha", regexp.MustCompile(`^(.*?)ऽ(.*)$`), func(m []string) []string { return []string{m[1], "ऽ" + m[2]} }},

	{"visarga-velar", regexp.MustCompile(`^(.*?)ः([कखगघ].*)$`), keepLeft("ः")},
	{"visarga-palatal", regexp.MustCompile(`^(.*?)ः([चछजझ].*)$`), keepLeft("ः")},
	{"visarga-retroflex", regexp.MustCompile(`^(.*?)ः([टठडढ].*)$`), keepLeft("ः")},
	{"visarga-dental", regexp.MustCompile(`^(.*?)ः([तथदधन].*)$`), keepLeft("ः")},
	{"visarga-labial-final", regexp.MustCompile(`^(.*?)ः([पफबभम])$`), keepLeft("ः")},

	{"glide-ya", regexp.MustCompile(`^(.*?)([अआ])य(` + vowelClass + `.*)$`), glide("य")},
	{"glide-va", regexp.MustCompile(`^(.*?)([इई])व(` + vowelClass + `.*)$`), glide("व")},
	{"glide-ra", regexp.MustCompile(`^(.*?)([उऊ])र(` + vowelClass + `.*)$`), glide("र")},

	{"nasal-palatal", regexp.MustCompile(`^(.*?)न्([चछजझ].*)$`), keepLeft("न्")},
	{"labial-aspirate", regexp.MustCompile(`^(.*?)म्([खफछठथ].*)$`), keepLeft("म्")},
	{"dental-voiced", regexp.MustCompile(`^(.*?)त्([जझडढदधबभ].*)$`), keepLeft("त्")},

	{"gemination-tta", regexp.MustCompile(`^(.*?)त्त(.*)$`), geminate("त्", "त")},
	{"gemination-nna", regexp.MustCompile(`^(.*?)न्न(.*)$`), geminate("न्", "न")},
	{"gemination-mma", regexp.MustCompile(`^(.*?)म्म(.*)$`), geminate("म्", "म")},
	{"gemination-gga", regexp.MustCompile(`^(.*?)ग्ग(.*)$`), geminate("ग्", "ग")},
	{"gemination-dda", regexp.MustCompile(`^(.*?)द्द(.*)$`), geminate("द्", "द")},
	{"gemination-vva", regexp.MustCompile(`^(.*?)व्व(.*)$`), geminate("व्", "व")},
}

// PatternSegmenter proposes a single split per token from ordered surface
// patterns, falling back to the rule table's reverse junctions.
type PatternSegmenter struct {
	junctions []rules.Junction
}

// NewPatternSegmenter builds a segmenter over table. A nil table selects
// the built-in one.
func NewPatternSegmenter(table *rules.Table) *PatternSegmenter {
	if table == nil {
		table = rules.Default()
	}
	return &PatternSegmenter{junctions: table.Junctions()}
}

// TrySplit returns at most two parts for token, or false when nothing
// matched. The candidate is not validated.
func (s *PatternSegmenter) TrySplit(token string) ([]string, bool) {
	parts, _, ok := s.match(token)
	return parts, ok
}

// match also reports which rule produced the parts.
func (s *PatternSegmenter) match(token string) ([]string, string, bool) {
	for _, rule := range patternRules {
		m := rule.re.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		if parts := rule.split(m); len(parts) > 1 {
			return parts, rule.name, true
		}
	}
	return s.junctionSplit(token)
}

// junctionSplit cuts at the first occurrence of the first junction found.
// A junction touching either end of the token is not a boundary.
func (s *PatternSegmenter) junctionSplit(token string) ([]string, string, bool) {
	for _, j := range s.junctions {
		idx := strings.Index(token, j.Match)
		if idx < 0 {
			continue
		}
		before := token[:idx]
		after := token[idx+len(j.Match):]
		if before == "" || after == "" {
			return nil, "", false
		}
		m := []rune(j.Match)
		return []string{before + string(m[:j.Cut]), string(m[j.Cut:]) + after}, "junction:" + j.Match, true
	}
	return nil, "", false
}
