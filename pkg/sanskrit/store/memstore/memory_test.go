package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
	"github.com/cognicore/sanskrit/pkg/sanskrit/pipeline"
	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/segment"
	"github.com/cognicore/sanskrit/pkg/sanskrit/store"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
)

func analysis(id string, at time.Time, words ...string) store.Analysis {
	return store.Analysis{
		ID:        id,
		CreatedAt: at,
		Result: pipeline.Result{
			ID:          id,
			Text:        "text " + id,
			SplitTokens: words,
			Segments:    []segment.Result{{Original: words[0], Parts: []string{words[0]}, Method: segment.MethodEdgeCase, Confidence: 1}},
			Confidence:  0.75,
		},
	}
}

func TestAnalysisRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := New()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	if err := st.SaveAnalysis(ctx, analysis("a1", now, "रामः", "गच्छति", "।")); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	got, err := st.GetAnalysis(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got.Result.Text != "text a1" || got.Result.Confidence != 0.75 {
		t.Errorf("result = %+v", got.Result)
	}
	if got.Result.Segments[0].Method != segment.MethodEdgeCase {
		t.Errorf("method = %v", got.Result.Segments[0].Method)
	}

	// Stored copies are isolated from callers
	got.Result.SplitTokens[0] = "changed"
	again, _ := st.GetAnalysis(ctx, "a1")
	if again.Result.SplitTokens[0] != "रामः" {
		t.Error("mutation leaked into the store")
	}

	if _, err := st.GetAnalysis(ctx, "missing"); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("missing analysis err = %v", err)
	}
	if err := st.SaveAnalysis(ctx, store.Analysis{}); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("empty id err = %v", err)
	}
}

func TestRecentAndByToken(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = st.SaveAnalysis(ctx, analysis("a1", base, "रामः", "वनं"))
	_ = st.SaveAnalysis(ctx, analysis("a2", base.Add(time.Minute), "सीता", "वनं"))
	_ = st.SaveAnalysis(ctx, analysis("a3", base.Add(2*time.Minute), "रामः"))

	recent, err := st.RecentAnalyses(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].ID != "a3" || recent[1].ID != "a2" {
		t.Errorf("recent = %v", ids(recent))
	}

	byToken, err := st.AnalysesByToken(ctx, "वनं", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(byToken) != 2 || byToken[0].ID != "a2" {
		t.Errorf("by token = %v", ids(byToken))
	}

	// Re-saving replaces the token index
	_ = st.SaveAnalysis(ctx, analysis("a1", base, "सीता"))
	byToken, _ = st.AnalysesByToken(ctx, "वनं", 0)
	if len(byToken) != 1 {
		t.Errorf("stale index entry: %v", ids(byToken))
	}
	if punct, _ := st.AnalysesByToken(ctx, "।", 0); len(punct) != 0 {
		t.Error("punctuation should not be indexed")
	}
}

func ids(list []store.Analysis) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func TestTablesSnapshot(t *testing.T) {
	ctx := context.Background()
	st := New()

	if _, err := st.LoadTables(ctx); !errors.Is(err, internalerr.ErrNotFound) {
		t.Errorf("empty store err = %v", err)
	}

	tables := tagger.NewTables()
	tables.Tags = []tagger.Tag{tagger.Noun, tagger.Verb}
	tables.AddKnownWord("रामः")
	tables.SetEmission("रामः", tagger.Noun, 2)
	tables.SetTransition(tagger.StartContext, tagger.Noun, 0.5)
	tables.SetFeature(tagger.FeatureKey{Kind: tagger.FeatSuffix2, Value: "ति"}, tagger.Verb, 1)

	if err := st.SaveTables(ctx, tables); err != nil {
		t.Fatalf("SaveTables: %v", err)
	}
	loaded, err := st.LoadTables(ctx)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if !loaded.IsKnown("रामः") || loaded.Emission["रामः"][tagger.Noun] != 2 {
		t.Errorf("emission lost: %+v", loaded.Emission)
	}
	if loaded.Transition[tagger.StartContext][tagger.Noun] != 0.5 {
		t.Errorf("transition lost: %+v", loaded.Transition)
	}
	key := tagger.FeatureKey{Kind: tagger.FeatSuffix2, Value: "ति"}
	if loaded.Features[key][tagger.Verb] != 1 {
		t.Errorf("feature lost: %+v", loaded.Features)
	}
}

func TestSplits(t *testing.T) {
	ctx := context.Background()
	st := New()

	err := st.UpsertSplits(ctx, []rules.SplitPair{
		{Combined: "रामलक्ष्मण", Parts: []string{"राम", "लक्ष्मण"}},
		{Combined: "तथापि", Parts: []string{"तथा", "अपि"}},
		{Combined: "", Parts: []string{"x"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = st.UpsertSplits(ctx, []rules.SplitPair{{Combined: "तथापि", Parts: []string{"तथ", "आपि"}}})

	pairs, err := st.Splits(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %+v", pairs)
	}
	if pairs[0].Combined != "तथापि" || pairs[0].Parts[0] != "तथ" {
		t.Errorf("upsert should replace parts: %+v", pairs[0])
	}
}
