package rules

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// PatternType groups surface clusters by the sandhi that produces them.
type PatternType string

const (
	VisargaSandhi   PatternType = "visarga_sandhi"
	ConsonantSandhi PatternType = "consonant_sandhi"
	VowelSandhi     PatternType = "vowel_sandhi"
)

var patternOrder = []PatternType{VisargaSandhi, ConsonantSandhi, VowelSandhi}

// Pattern is one occurrence of a sandhi cluster in a text.
// Position and Length are in code points.
type Pattern struct {
	Type     PatternType `json:"type"`
	Cluster  string      `json:"pattern"`
	Position int         `json:"position"`
	Length   int         `json:"length"`
}

// Detect reports every (possibly overlapping) occurrence of the table's
// sandhi clusters in text, ordered by position.
func (t *Table) Detect(text string) []Pattern {
	var found []Pattern
	for _, typ := range patternOrder {
		for _, cluster := range t.patterns[typ] {
			if cluster == "" {
				continue
			}
			clusterLen := utf8.RuneCountInString(cluster)
			offset := 0
			for {
				idx := strings.Index(text[offset:], cluster)
				if idx < 0 {
					break
				}
				byteIdx := offset + idx
				found = append(found, Pattern{
					Type:     typ,
					Cluster:  cluster,
					Position: utf8.RuneCountInString(text[:byteIdx]),
					Length:   clusterLen,
				})
				_, size := utf8.DecodeRuneInString(text[byteIdx:])
				offset = byteIdx + size
			}
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Position < found[j].Position
	})
	return found
}

// Complexity summarizes how densely a text is packed with sandhi clusters.
type Complexity struct {
	Characters      int                 `json:"total_characters"`
	Tokens          int                 `json:"total_tokens"`
	AvgTokenLength  float64             `json:"avg_token_length"`
	PatternsFound   int                 `json:"sandhi_patterns_found"`
	Density         float64             `json:"sandhi_density"`
	DevanagariShare float64             `json:"devanagari_percentage"`
	PatternTypes    map[PatternType]int `json:"pattern_types"`
}

// Complexity measures text. Tokens are whitespace separated.
func (t *Table) Complexity(text string) Complexity {
	tokens := strings.Fields(text)
	patterns := t.Detect(text)

	c := Complexity{
		Characters:    utf8.RuneCountInString(text),
		Tokens:        len(tokens),
		PatternsFound: len(patterns),
		PatternTypes:  make(map[PatternType]int),
	}
	if len(tokens) > 0 {
		total := 0
		for _, tok := range tokens {
			total += utf8.RuneCountInString(tok)
		}
		c.AvgTokenLength = float64(total) / float64(len(tokens))
	}
	if c.Characters > 0 {
		c.Density = float64(len(patterns)) / float64(c.Characters)
		deva := 0
		for _, r := range text {
			if r >= 0x0900 && r <= 0x097F {
				deva++
			}
		}
		c.DevanagariShare = float64(deva) / float64(c.Characters)
	}
	for _, p := range patterns {
		c.PatternTypes[p.Type]++
	}
	return c
}
