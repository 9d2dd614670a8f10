package pipeline

import (
	"strings"

	"github.com/cognicore/sanskrit/pkg/sanskrit/script"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tokenize"
)

// WordAnalysis lists the surface marks of one word.
type WordAnalysis struct {
	Word        string     `json:"word"`
	Tag         tagger.Tag `json:"pos,omitempty"`
	HasVirama   bool       `json:"has_virama"`
	HasVisarga  bool       `json:"has_visarga"`
	HasAnusvara bool       `json:"has_anusvara"`
	HasAvagraha bool       `json:"has_avagraha"`
	IsCompound  bool       `json:"is_compound"`
	Components  []string   `json:"components,omitempty"`

	tokenize.Properties
}

func analyzeMorphology(tokens []string, tagged []tagger.Tagged, components [][]string) []WordAnalysis {
	var out []WordAnalysis
	for i, tok := range tokens {
		if tokenize.IsPunct(tok) {
			continue
		}
		wa := WordAnalysis{
			Word:        tok,
			HasVirama:   strings.ContainsRune(tok, script.Virama),
			HasVisarga:  strings.HasSuffix(tok, string(script.Visarga)),
			HasAnusvara: strings.ContainsRune(tok, script.Anusvara),
			HasAvagraha: strings.ContainsRune(tok, script.Avagraha),
			Properties:  tokenize.WordProperties(tok),
		}
		if i < len(tagged) {
			wa.Tag = tagged[i].Tag
		}
		if i < len(components) && components[i] != nil {
			wa.IsCompound = true
			wa.Components = append([]string(nil), components[i]...)
		}
		out = append(out, wa)
	}
	return out
}
