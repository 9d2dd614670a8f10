package sanskrit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/sanskrit/pkg/sanskrit/pipeline"
	"github.com/cognicore/sanskrit/pkg/sanskrit/segment"
	"github.com/cognicore/sanskrit/pkg/sanskrit/store"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
)

// Analyzer is the main facade: it runs the pipeline and keeps results.
type Analyzer struct {
	pipeline *pipeline.Pipeline
	store    store.Store
	logger   *zap.Logger
	ready    bool
	warnings []string
}

// Options configures an Analyzer
type Options struct {
	Pipeline *pipeline.Pipeline
	// Store may be nil; results are then not persisted.
	Store  store.Store
	Logger *zap.Logger
	// TaggerReady reports whether score tables were loaded.
	TaggerReady bool
	Warnings    []string
}

// New creates an Analyzer with the given dependencies
func New(opts Options) *Analyzer {
	if opts.Pipeline == nil {
		opts.Pipeline = pipeline.New(pipeline.Options{Logger: opts.Logger})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Analyzer{
		pipeline: opts.Pipeline,
		store:    opts.Store,
		logger:   opts.Logger,
		ready:    opts.TaggerReady,
		warnings: opts.Warnings,
	}
}

// Close cleanly shuts down the analyzer
func (a *Analyzer) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Analyze runs every stage over text and stores the result. An
// inadmissible text returns its verdict with a *pipeline.InadmissibleError
// and is not stored.
func (a *Analyzer) Analyze(ctx context.Context, text string) (pipeline.Result, error) {
	return a.AnalyzeWith(ctx, text, pipeline.AllSteps)
}

// AnalyzeWith is Analyze with a subset of the optional stages.
func (a *Analyzer) AnalyzeWith(ctx context.Context, text string, steps pipeline.Steps) (pipeline.Result, error) {
	res, err := a.pipeline.ProcessWith(ctx, text, steps)
	if err != nil {
		return res, err
	}
	if a.store != nil {
		if err := a.store.SaveAnalysis(ctx, store.Analysis{ID: res.ID, Result: res}); err != nil {
			return res, fmt.Errorf("save analysis %s: %w", res.ID, err)
		}
		a.logger.Debug("analysis stored", zap.String("id", res.ID), zap.Float64("confidence", res.Confidence))
	}
	return res, nil
}

// Segment splits a single token.
func (a *Analyzer) Segment(ctx context.Context, token string) segment.Result {
	return a.pipeline.Segment(ctx, token)
}

// Join combines two words by forward sandhi.
func (a *Analyzer) Join(w1, w2 string) string {
	return a.pipeline.Join(w1, w2)
}

// Tag labels a token sequence and reports the tagger mode used.
func (a *Analyzer) Tag(tokens []string) ([]tagger.Tagged, string) {
	return a.pipeline.Tag(tokens)
}

// ErrNoStore is returned by lookups on an analyzer without a store.
var ErrNoStore = errors.New("analyzer has no store")

// Get returns a stored analysis.
func (a *Analyzer) Get(ctx context.Context, id string) (store.Analysis, error) {
	if a.store == nil {
		return store.Analysis{}, ErrNoStore
	}
	return a.store.GetAnalysis(ctx, id)
}

// Recent lists the newest stored analyses.
func (a *Analyzer) Recent(ctx context.Context, limit int) ([]store.Analysis, error) {
	if a.store == nil {
		return nil, ErrNoStore
	}
	return a.store.RecentAnalyses(ctx, limit)
}

// ByToken lists stored analyses that contain token.
func (a *Analyzer) ByToken(ctx context.Context, token string, limit int) ([]store.Analysis, error) {
	if a.store == nil {
		return nil, ErrNoStore
	}
	return a.store.AnalysesByToken(ctx, token, limit)
}

// TaggerReady reports whether Viterbi tagging is available.
func (a *Analyzer) TaggerReady() bool {
	return a.ready
}

// Warnings lists degradations found while building the analyzer.
func (a *Analyzer) Warnings() []string {
	return append([]string(nil), a.warnings...)
}
