// Package oracle provides split-probability oracles for the segmentation
// engine: a lexicon memorized from training pairs and a client for a
// remote model server.
package oracle

import (
	"context"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
)

// Lexicon answers with certainty for tokens it has seen in training pairs
// and with zero everywhere else.
type Lexicon struct {
	boundaries map[string][]int
}

// NewLexicon memorizes the boundaries implied by pairs. When a part was
// changed by sandhi, the boundary falls where the part stops matching the
// combined form.
func NewLexicon(pairs []rules.SplitPair) *Lexicon {
	lex := &Lexicon{boundaries: make(map[string][]int, len(pairs))}
	for _, p := range pairs {
		if b := alignBoundaries(p.Combined, p.Parts); len(b) > 0 {
			lex.boundaries[p.Combined] = b
		}
	}
	return lex
}

// LoadLexicon reads a split dictionary file into a Lexicon.
func LoadLexicon(path string) (*Lexicon, error) {
	pairs, err := rules.LoadSplitDict(path)
	if err != nil {
		return nil, err
	}
	return NewLexicon(pairs), nil
}

// Len returns the number of memorized tokens.
func (l *Lexicon) Len() int {
	return len(l.boundaries)
}

// Predict returns one score per inter-character boundary of token.
func (l *Lexicon) Predict(_ context.Context, token string) ([]float64, error) {
	runes := []rune(token)
	if len(runes) == 0 {
		return nil, internalerr.ErrEmptyToken
	}
	probs := make([]float64, len(runes)-1)
	for _, off := range l.boundaries[token] {
		probs[off-1] = 1
	}
	return probs, nil
}

func alignBoundaries(combined string, parts []string) []int {
	c := []rune(combined)
	var out []int
	offset := 0
	for _, part := range parts[:max(len(parts)-1, 0)] {
		p := []rune(part)
		n := commonPrefix(c[offset:], p)
		if n == 0 {
			n = len(p)
		}
		offset += n
		if offset <= 0 || offset >= len(c) {
			break
		}
		if len(out) > 0 && out[len(out)-1] == offset {
			continue
		}
		out = append(out, offset)
	}
	return out
}

func commonPrefix(a, b []rune) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
