package store

import (
	"context"
	"time"

	"github.com/cognicore/sanskrit/pkg/sanskrit/pipeline"
	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tokenize"
)

// Store persists analyses and the data the analyzer loads at startup.
type Store interface {
	Close() error

	// Analyses
	SaveAnalysis(ctx context.Context, a Analysis) error
	// GetAnalysis returns internalerr.ErrNotFound for an unknown id.
	GetAnalysis(ctx context.Context, id string) (Analysis, error)
	RecentAnalyses(ctx context.Context, limit int) ([]Analysis, error)
	AnalysesByToken(ctx context.Context, token string, limit int) ([]Analysis, error)

	// Score tables. LoadTables returns internalerr.ErrNotFound when none
	// were saved.
	SaveTables(ctx context.Context, t *tagger.Tables) error
	LoadTables(ctx context.Context) (*tagger.Tables, error)

	// Split dictionary backing the lexicon oracle.
	UpsertSplits(ctx context.Context, pairs []rules.SplitPair) error
	Splits(ctx context.Context) ([]rules.SplitPair, error)
}

// Analysis is one stored pipeline result.
type Analysis struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Result    pipeline.Result `json:"result"`
}

// DefaultLimit applies when a listing is given a non-positive limit.
const DefaultLimit = 20

// IndexTokens returns the distinct words of r for the token index.
func IndexTokens(r pipeline.Result) []string {
	src := r.SplitTokens
	if len(src) == 0 {
		src = r.Tokens
	}
	seen := make(map[string]struct{}, len(src))
	var out []string
	for _, tok := range src {
		if tok == "" || tokenize.IsPunct(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}
