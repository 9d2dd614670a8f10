package segment

import (
	"context"
	"fmt"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
)

// BoundaryThreshold is the probability at or above which an oracle score
// marks a split point. It is independent of the acceptance threshold.
const BoundaryThreshold = 0.5

// Oracle predicts split probabilities for a token. Implementations return
// either one score per character (the first and last are ignored) or one
// score per inter-character boundary.
type Oracle interface {
	Predict(ctx context.Context, token string) ([]float64, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, token string) ([]float64, error)

// Predict calls f.
func (f OracleFunc) Predict(ctx context.Context, token string) ([]float64, error) {
	return f(ctx, token)
}

// SplitAt cuts token at the given rune offsets, which must be increasing
// and strictly inside the token.
func SplitAt(token string, offsets []int) []string {
	runes := []rune(token)
	parts := make([]string, 0, len(offsets)+1)
	prev := 0
	for _, off := range offsets {
		if off <= prev || off >= len(runes) {
			continue
		}
		parts = append(parts, string(runes[prev:off]))
		prev = off
	}
	return append(parts, string(runes[prev:]))
}

// splitPoints converts oracle scores into rune offsets for token.
func splitPoints(runeCount int, probs []float64, threshold float64) ([]int, error) {
	var points []int
	switch len(probs) {
	case runeCount:
		for i := 1; i < runeCount-1; i++ {
			if probs[i] >= threshold {
				points = append(points, i)
			}
		}
	case runeCount - 1:
		for b, p := range probs {
			if p >= threshold {
				points = append(points, b+1)
			}
		}
	default:
		return nil, fmt.Errorf("%w: %d scores for %d characters",
			internalerr.ErrMalformedCandidate, len(probs), runeCount)
	}
	return points, nil
}
