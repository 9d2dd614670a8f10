package tagger

import (
	"math"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
)

// Penalties applied when a word has no emission score for a tag.
const (
	UnknownWordPenalty = -2.0
	UnknownTagPenalty  = -5.0
	MissingTagPenalty  = -1.0
)

// Tagger tags token sequences. It is safe for concurrent use.
type Tagger struct {
	tables   *Tables
	alphabet []Tag
}

// New returns a tagger over tables. With nil tables Tag reports
// ErrModelNotReady and only Guess is usable.
func New(tables *Tables) *Tagger {
	tg := &Tagger{tables: tables}
	if tables != nil {
		tg.alphabet = tables.Alphabet()
	}
	return tg
}

// Ready reports whether score tables are loaded.
func (tg *Tagger) Ready() bool {
	return tg != nil && tg.tables != nil
}

// Tables returns the loaded tables, or nil.
func (tg *Tagger) Tables() *Tables {
	if tg == nil {
		return nil
	}
	return tg.tables
}

// Tag returns the best-scoring tag sequence for tokens.
//
// Only the previous tag is maximized over. The tag two positions back is
// scored as <START> at the second position and as the first tag of the
// alphabet after that.
func (tg *Tagger) Tag(tokens []string) ([]Tagged, error) {
	if !tg.Ready() {
		return nil, internalerr.ErrModelNotReady
	}
	n := len(tokens)
	out := make([]Tagged, n)
	if n == 0 {
		return out, nil
	}

	tags := tg.alphabet
	if len(tags) == 0 {
		for i, w := range tokens {
			out[i] = Tagged{Word: w, Tag: Fallback}
		}
		return out, nil
	}

	k := len(tags)
	score := make([][]float64, n)
	back := make([][]int, n)

	base := tg.baseScores(tokens[0], tags)
	score[0] = make([]float64, k)
	back[0] = make([]int, k)
	for j, tag := range tags {
		score[0][j] = base[j] + tg.contextScore(tag, StartContext, StartContext)
		back[0][j] = -1
	}

	for i := 1; i < n; i++ {
		prevPrev := tags[0]
		if i == 1 {
			prevPrev = StartContext
		}
		base := tg.baseScores(tokens[i], tags)
		score[i] = make([]float64, k)
		back[i] = make([]int, k)
		for j, tag := range tags {
			best, bestPrev := math.Inf(-1), -1
			for p, prev := range tags {
				s := score[i-1][p] + base[j] + tg.contextScore(tag, prev, prevPrev)
				if s > best {
					best, bestPrev = s, p
				}
			}
			score[i][j] = best
			back[i][j] = bestPrev
		}
	}

	// Termination and backtracking. A missing pointer yields Fallback.
	path := make([]Tag, n)
	last, bestIdx := math.Inf(-1), -1
	for j := range tags {
		if score[n-1][j] > last {
			last, bestIdx = score[n-1][j], j
		}
	}
	idx := bestIdx
	for i := n - 1; i >= 0; i-- {
		if idx < 0 {
			path[i] = Fallback
			idx = indexOf(tags, Fallback)
		} else {
			path[i] = tags[idx]
		}
		if i > 0 && idx >= 0 {
			idx = back[i][idx]
		}
	}

	for i, w := range tokens {
		out[i] = Tagged{Word: w, Tag: path[i], Confidence: columnShare(score[i], tags, path[i])}
	}
	return out, nil
}

// Score is the local score of tag for word given the two preceding tags.
func (tg *Tagger) Score(word string, tag, prev, prevPrev Tag) float64 {
	if !tg.Ready() {
		return 0
	}
	return tg.baseScores(word, []Tag{tag})[0] + tg.contextScore(tag, prev, prevPrev)
}

func indexOf(tags []Tag, tag Tag) int {
	for i, t := range tags {
		if t == tag {
			return i
		}
	}
	return -1
}

// baseScores sums emission and word-feature weights per tag. These do not
// depend on the previous tags.
func (tg *Tagger) baseScores(word string, tags []Tag) []float64 {
	t := tg.tables
	feats := wordFeatures(word)
	known := t.IsKnown(word)
	emission := t.Emission[word]

	out := make([]float64, len(tags))
	for j, tag := range tags {
		var s float64
		if e, ok := emission[tag]; ok {
			s += e
		} else if !known {
			if tag == Unknown {
				s += UnknownTagPenalty
			} else {
				s += UnknownWordPenalty
			}
		} else {
			s += MissingTagPenalty
		}
		for _, f := range feats {
			s += t.Features[f][tag]
		}
		out[j] = s
	}
	return out
}

// contextScore adds the transition score and the context feature weights.
func (tg *Tagger) contextScore(tag, prev, prevPrev Tag) float64 {
	t := tg.tables
	s := t.Transition[prev][tag]
	s += t.Features[FeatureKey{Kind: FeatPrevTag, Value: string(prev)}][tag]
	s += t.Features[FeatureKey{Kind: FeatPrevPrevTag, Value: string(prevPrev)}][tag]
	return s
}

// columnShare is the softmax weight of chosen among one Viterbi column.
func columnShare(column []float64, tags []Tag, chosen Tag) float64 {
	maxScore := math.Inf(-1)
	for _, s := range column {
		maxScore = math.Max(maxScore, s)
	}
	if math.IsInf(maxScore, -1) || math.IsNaN(maxScore) {
		return 0
	}
	var sum, mine float64
	for j, s := range column {
		e := math.Exp(s - maxScore)
		sum += e
		if tags[j] == chosen {
			mine = e
		}
	}
	if sum == 0 {
		return 0
	}
	return mine / sum
}
