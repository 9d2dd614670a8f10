package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
	"github.com/cognicore/sanskrit/pkg/sanskrit/pipeline"
	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/store"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
	"gopkg.in/yaml.v3"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu       sync.RWMutex
	analyses map[string]store.Analysis
	tokens   map[string]map[string]struct{} // token -> analysis ids
	tables   []byte                         // YAML snapshot
	splits   map[string][]string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		analyses: make(map[string]store.Analysis),
		tokens:   make(map[string]map[string]struct{}),
		splits:   make(map[string][]string),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveAnalysis inserts or replaces an analysis keyed by ID.
func (s *Store) SaveAnalysis(ctx context.Context, a store.Analysis) error {
	if a.ID == "" {
		return internalerr.ErrInvalidInput
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := copyResult(a.Result)
	if err != nil {
		return err
	}
	a.Result = res

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ids := range s.tokens {
		delete(ids, a.ID)
	}
	for _, tok := range store.IndexTokens(a.Result) {
		ids, ok := s.tokens[tok]
		if !ok {
			ids = make(map[string]struct{})
			s.tokens[tok] = ids
		}
		ids[a.ID] = struct{}{}
	}
	s.analyses[a.ID] = a
	return nil
}

// GetAnalysis returns an analysis by ID.
func (s *Store) GetAnalysis(ctx context.Context, id string) (store.Analysis, error) {
	s.mu.RLock()
	a, ok := s.analyses[id]
	s.mu.RUnlock()
	if !ok {
		return store.Analysis{}, internalerr.ErrNotFound
	}
	return copyAnalysis(a)
}

// RecentAnalyses returns the newest analyses first.
func (s *Store) RecentAnalyses(ctx context.Context, limit int) ([]store.Analysis, error) {
	s.mu.RLock()
	all := make([]store.Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		all = append(all, a)
	}
	s.mu.RUnlock()
	return newest(all, limit)
}

// AnalysesByToken returns the newest analyses containing token.
func (s *Store) AnalysesByToken(ctx context.Context, token string, limit int) ([]store.Analysis, error) {
	s.mu.RLock()
	var matched []store.Analysis
	for id := range s.tokens[token] {
		matched = append(matched, s.analyses[id])
	}
	s.mu.RUnlock()
	return newest(matched, limit)
}

// SaveTables snapshots t.
func (s *Store) SaveTables(ctx context.Context, t *tagger.Tables) error {
	if t == nil {
		return internalerr.ErrInvalidInput
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tables = data
	s.mu.Unlock()
	return nil
}

// LoadTables rebuilds the last saved tables.
func (s *Store) LoadTables(ctx context.Context) (*tagger.Tables, error) {
	s.mu.RLock()
	data := s.tables
	s.mu.RUnlock()
	if data == nil {
		return nil, internalerr.ErrNotFound
	}
	return tagger.ParseTables(data)
}

// UpsertSplits adds or replaces split pairs keyed by the combined form.
func (s *Store) UpsertSplits(ctx context.Context, pairs []rules.SplitPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pairs {
		if p.Combined == "" || len(p.Parts) == 0 {
			continue
		}
		s.splits[p.Combined] = append([]string(nil), p.Parts...)
	}
	return nil
}

// Splits returns every pair ordered by combined form.
func (s *Store) Splits(ctx context.Context) ([]rules.SplitPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]rules.SplitPair, 0, len(s.splits))
	for combined, parts := range s.splits {
		out = append(out, rules.SplitPair{Combined: combined, Parts: append([]string(nil), parts...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Combined < out[j].Combined })
	return out, nil
}

func newest(list []store.Analysis, limit int) ([]store.Analysis, error) {
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]store.Analysis, 0, len(list))
	for _, a := range list {
		cp, err := copyAnalysis(a)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func copyAnalysis(a store.Analysis) (store.Analysis, error) {
	res, err := copyResult(a.Result)
	if err != nil {
		return store.Analysis{}, err
	}
	a.Result = res
	return a, nil
}

// copyResult deep-copies through the JSON form, the same encoding the
// sqlite store persists.
func copyResult(r pipeline.Result) (pipeline.Result, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return pipeline.Result{}, err
	}
	var out pipeline.Result
	if err := json.Unmarshal(data, &out); err != nil {
		return pipeline.Result{}, err
	}
	return out, nil
}
