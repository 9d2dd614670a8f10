// Package pipeline composes admissibility checking, tokenization, sandhi
// segmentation and tagging into one analysis per request.
package pipeline

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/script"
	"github.com/cognicore/sanskrit/pkg/sanskrit/segment"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tokenize"
)

// DefaultMinRatio is the share of Sanskrit-script characters a text needs
// to be analyzed.
const DefaultMinRatio = 0.7

// NeutralConfidence is reported when no stage produced a confidence.
const NeutralConfidence = 0.5

// Step names recorded in Result.Steps.
const (
	StepAdmissibility = "admissibility"
	StepTokenize      = "tokenize"
	StepSplitSandhi   = "split_sandhi"
	StepTagPOS        = "tag_pos"
	StepMorphology    = "analyze_morphology"
)

// Tagging modes recorded in Result.TaggerMode.
const (
	ModeViterbi = "viterbi"
	ModeGuess   = "guess"
)

// Steps selects the optional stages of a run.
type Steps struct {
	SplitSandhi       bool
	TagPOS            bool
	AnalyzeMorphology bool
}

// AllSteps enables every stage.
var AllSteps = Steps{SplitSandhi: true, TagPOS: true, AnalyzeMorphology: true}

// InadmissibleError reports a text with too little Sanskrit script.
type InadmissibleError struct {
	Ratio    float64
	MinRatio float64
}

func (e *InadmissibleError) Error() string {
	return fmt.Sprintf("%v: script ratio %.2f below %.2f", internalerr.ErrInadmissibleInput, e.Ratio, e.MinRatio)
}

// Unwrap lets errors.Is match ErrInadmissibleInput.
func (e *InadmissibleError) Unwrap() error {
	return internalerr.ErrInadmissibleInput
}

// Admissibility is the verdict of the script check.
type Admissibility struct {
	Admissible bool    `json:"admissible"`
	Ratio      float64 `json:"ratio"`
	Counted    int     `json:"counted"`
	Message    string  `json:"message,omitempty"`
}

// Result is the full analysis of one text.
type Result struct {
	ID            string             `json:"id"`
	Text          string             `json:"text"`
	Admissibility Admissibility      `json:"admissibility"`
	Tokens        []string           `json:"tokens,omitempty"`
	SplitTokens   []string           `json:"split_tokens,omitempty"`
	Segments      []segment.Result   `json:"segments,omitempty"`
	Tagged        []tagger.Tagged    `json:"tagged,omitempty"`
	TaggerMode    string             `json:"tagger_mode,omitempty"`
	Distribution  map[tagger.Tag]int `json:"distribution,omitempty"`
	Morphology    []WordAnalysis     `json:"morphology,omitempty"`
	Complexity    *rules.Complexity  `json:"complexity,omitempty"`
	Steps         []string           `json:"steps"`
	Confidence    float64            `json:"confidence"`
}

// Options configures a Pipeline. Only Segmenter is required.
type Options struct {
	Tokenizer *tokenize.Tokenizer
	Segmenter segment.Segmenter
	// Tagger may be nil or lack tables; tagging then uses the classifier.
	Tagger   *tagger.Tagger
	Rules    *rules.Table
	MinRatio float64
	Logger   *zap.Logger
	// IDs generates result identifiers. Defaults to monotonic ULIDs.
	IDs func() string
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	tokenizer *tokenize.Tokenizer
	segmenter segment.Segmenter
	tagger    *tagger.Tagger
	rules     *rules.Table
	minRatio  float64
	logger    *zap.Logger
	ids       func() string
}

// New builds a pipeline from opts.
func New(opts Options) *Pipeline {
	if opts.Tokenizer == nil {
		opts.Tokenizer = tokenize.NewTokenizer()
	}
	if opts.Rules == nil {
		opts.Rules = rules.Default()
	}
	if opts.Segmenter == nil {
		opts.Segmenter = segment.NewEngine(segment.Options{Rules: opts.Rules, Logger: opts.Logger})
	}
	if opts.MinRatio <= 0 {
		opts.MinRatio = DefaultMinRatio
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.IDs == nil {
		opts.IDs = newULIDSource()
	}
	return &Pipeline{
		tokenizer: opts.Tokenizer,
		segmenter: opts.Segmenter,
		tagger:    opts.Tagger,
		rules:     opts.Rules,
		minRatio:  opts.MinRatio,
		logger:    opts.Logger,
		ids:       opts.IDs,
	}
}

func newULIDSource() func() string {
	var mu sync.Mutex
	entropy := ulid.Monotonic(rand.Reader, 0)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return ulid.MustNew(ulid.Now(), entropy).String()
	}
}

// Process runs every stage over text.
func (p *Pipeline) Process(ctx context.Context, text string) (Result, error) {
	return p.ProcessWith(ctx, text, AllSteps)
}

// ProcessWith runs the admissibility check and tokenization, then the
// stages selected by steps. The only error is *InadmissibleError; the
// returned Result still carries the verdict.
func (p *Pipeline) ProcessWith(ctx context.Context, text string, steps Steps) (Result, error) {
	res := Result{ID: p.ids(), Text: text}

	ratio, counted := script.AdmissibilityRatio(text)
	res.Admissibility = Admissibility{Admissible: ratio >= p.minRatio, Ratio: ratio, Counted: counted}
	res.Steps = append(res.Steps, StepAdmissibility)
	if !res.Admissibility.Admissible {
		err := &InadmissibleError{Ratio: ratio, MinRatio: p.minRatio}
		res.Admissibility.Message = err.Error()
		p.logger.Debug("inadmissible input", zap.Float64("ratio", ratio), zap.Int("counted", counted))
		return res, err
	}

	res.Tokens = p.tokenizer.Tokenize(text)
	res.Steps = append(res.Steps, StepTokenize)

	var components [][]string
	if steps.SplitSandhi {
		res.SplitTokens, res.Segments, components = p.split(ctx, res.Tokens)
		res.Steps = append(res.Steps, StepSplitSandhi)
	} else {
		res.SplitTokens = append([]string(nil), res.Tokens...)
		components = make([][]string, len(res.SplitTokens))
	}

	unknown := 0
	if steps.TagPOS {
		res.Tagged, res.TaggerMode, unknown = p.tag(res.SplitTokens)
		res.Distribution = tagger.Distribution(res.Tagged)
		res.Steps = append(res.Steps, StepTagPOS)
	}

	if steps.AnalyzeMorphology {
		res.Morphology = analyzeMorphology(res.SplitTokens, res.Tagged, components)
		c := p.rules.Complexity(text)
		res.Complexity = &c
		res.Steps = append(res.Steps, StepMorphology)
	}

	res.Confidence = overallConfidence(res.Segments, res.Tagged, unknown)

	p.logger.Debug("processed",
		zap.String("id", res.ID),
		zap.Float64("ratio", ratio),
		zap.Int("tokens", len(res.Tokens)),
		zap.Int("split_tokens", len(res.SplitTokens)),
		zap.String("tagger_mode", res.TaggerMode),
		zap.Float64("confidence", res.Confidence))
	return res, nil
}

// split segments every non-punctuation token. components[i] lists the
// parts of the compound the i-th split token came from, or nil.
func (p *Pipeline) split(ctx context.Context, tokens []string) ([]string, []segment.Result, [][]string) {
	var out []string
	var segments []segment.Result
	var components [][]string
	for _, tok := range tokens {
		if tokenize.IsPunct(tok) {
			out = append(out, tok)
			components = append(components, nil)
			continue
		}
		sr := p.segmenter.Segment(ctx, tok)
		segments = append(segments, sr)
		for range sr.Parts {
			if sr.Split() {
				components = append(components, sr.Parts)
			} else {
				components = append(components, nil)
			}
		}
		out = append(out, sr.Parts...)
	}
	return out, segments, components
}

// Tag labels tokens outside a full run and reports the mode used.
func (p *Pipeline) Tag(tokens []string) ([]tagger.Tagged, string) {
	tagged, mode, _ := p.tag(tokens)
	return tagged, mode
}

// Segment runs the segmenter on one token.
func (p *Pipeline) Segment(ctx context.Context, token string) segment.Result {
	return p.segmenter.Segment(ctx, token)
}

// Join applies forward sandhi to two words with the pipeline's rule table.
func (p *Pipeline) Join(w1, w2 string) string {
	return p.rules.Join(w1, w2)
}

// tag labels tokens, keeping punctuation in place as PUNCT. It returns the
// mode used and how many words fell through to the fallback tag.
func (p *Pipeline) tag(tokens []string) ([]tagger.Tagged, string, int) {
	var words []string
	for _, tok := range tokens {
		if !tokenize.IsPunct(tok) {
			words = append(words, tok)
		}
	}

	tagged, mode, unknown := p.tagWords(words)

	out := make([]tagger.Tagged, 0, len(tokens))
	w := 0
	for _, tok := range tokens {
		if tokenize.IsPunct(tok) {
			out = append(out, tagger.Tagged{Word: tok, Tag: tagger.Punctuation, Confidence: 1})
			continue
		}
		out = append(out, tagged[w])
		w++
	}
	return out, mode, unknown
}

func (p *Pipeline) tagWords(words []string) ([]tagger.Tagged, string, int) {
	if p.tagger.Ready() {
		tagged, err := p.tagger.Tag(words)
		if err == nil {
			unknown := 0
			for _, t := range tagged {
				if t.Tag == tagger.Unknown {
					unknown++
				}
			}
			return tagged, ModeViterbi, unknown
		}
		p.logger.Warn("viterbi tagging failed, guessing", zap.Error(err))
	}

	tagged := make([]tagger.Tagged, len(words))
	unknown := 0
	for i, w := range words {
		tag, matched := p.tagger.Guess(w)
		conf := 1.0
		if !matched {
			unknown++
			conf = 0
		}
		tagged[i] = tagger.Tagged{Word: w, Tag: tag, Confidence: conf}
	}
	return tagged, ModeGuess, unknown
}

// overallConfidence averages the mean segmentation confidence and the
// share of words with a real tag, using whichever is available.
func overallConfidence(segments []segment.Result, tagged []tagger.Tagged, unknown int) float64 {
	var parts []float64
	if len(segments) > 0 {
		var sum float64
		for _, s := range segments {
			sum += s.Confidence
		}
		parts = append(parts, sum/float64(len(segments)))
	}
	if len(tagged) > 0 {
		words := 0
		for _, t := range tagged {
			if t.Tag != tagger.Punctuation {
				words++
			}
		}
		parts = append(parts, 1-float64(unknown)/float64(max(words, 1)))
	}
	if len(parts) == 0 {
		return NeutralConfidence
	}
	var sum float64
	for _, v := range parts {
		sum += v
	}
	return sum / float64(len(parts))
}
