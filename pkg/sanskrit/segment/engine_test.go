package segment

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/script"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// boundaryOracle marks the given rune offsets as split points.
func boundaryOracle(calls *atomic.Int32, offsets ...int) Oracle {
	return OracleFunc(func(_ context.Context, token string) ([]float64, error) {
		if calls != nil {
			calls.Add(1)
		}
		probs := make([]float64, script.RuneLen(token)-1)
		for _, off := range offsets {
			if off-1 >= 0 && off-1 < len(probs) {
				probs[off-1] = 0.9
			}
		}
		return probs, nil
	})
}

func TestSegmentEdgeCase(t *testing.T) {
	var calls atomic.Int32
	e := NewEngine(Options{Oracle: boundaryOracle(&calls, 1)})

	res := e.Segment(context.Background(), "यो")
	if res.Method != MethodEdgeCase || res.Confidence != 1.0 {
		t.Errorf("got %+v, want edge case with confidence 1.0", res)
	}
	if strings.Join(res.Parts, "|") != "यः|उच्यते" {
		t.Errorf("parts = %v", res.Parts)
	}
	if calls.Load() != 0 {
		t.Errorf("oracle called %d times for an edge case", calls.Load())
	}
}

func TestSegmentEdgeCaseNoSplit(t *testing.T) {
	var calls atomic.Int32
	ec := rules.DefaultEdgeCases().Merge(map[string][]string{"रामः": {"रामः"}})
	e := NewEngine(Options{EdgeCases: ec, Oracle: boundaryOracle(&calls, 2)})

	res := e.Segment(context.Background(), "रामः")
	if res.Method != MethodEdgeCase || res.Confidence != 1.0 || len(res.Parts) != 1 || res.Parts[0] != "रामः" {
		t.Errorf("got %+v", res)
	}
	if calls.Load() != 0 {
		t.Error("oracle must not run for an edge case")
	}
}

func TestSegmentEdgeCaseBeatsRules(t *testing.T) {
	ec := rules.NewEdgeCases(map[string][]string{"उत्तम": {"उत्तम"}})
	e := NewEngine(Options{EdgeCases: ec})
	res := e.Segment(context.Background(), "उत्तम")
	if res.Method != MethodEdgeCase || len(res.Parts) != 1 {
		t.Errorf("got %+v, want the edge case to win over the gemination rule", res)
	}
}

func TestSegmentShortTokens(t *testing.T) {
	var calls atomic.Int32
	e := NewEngine(Options{Oracle: boundaryOracle(&calls, 1)})
	for _, token := range []string{"", "क", "च"} {
		res := e.Segment(context.Background(), token)
		if res.Method != MethodNoSplit || res.Confidence != 0 {
			t.Errorf("Segment(%q) = %+v, want NoSplit", token, res)
		}
		if len(res.Parts) != 1 || res.Parts[0] != token {
			t.Errorf("Segment(%q) parts = %v", token, res.Parts)
		}
	}
	if calls.Load() != 0 {
		t.Error("short tokens must bypass every stage")
	}
}

func TestSegmentOracleStrict(t *testing.T) {
	e := NewEngine(Options{Oracle: boundaryOracle(nil, 3)})
	res := e.Segment(context.Background(), "रामलक्ष्मण")
	if res.Method != MethodOracle {
		t.Fatalf("method = %v, want oracle", res.Method)
	}
	if strings.Join(res.Parts, "|") != "राम|लक्ष्मण" {
		t.Errorf("parts = %v", res.Parts)
	}
	if !approx(res.Confidence, 1.0) {
		t.Errorf("confidence = %f, want 1.0", res.Confidence)
	}
}

func TestSegmentOracleBelowThresholdFallsToRelaxed(t *testing.T) {
	e := NewEngine(Options{Oracle: boundaryOracle(nil, 3), AcceptThreshold: 0.95})
	res := e.Segment(context.Background(), "रामलक्ष्मणभरत")
	if res.Method != MethodOracleRelaxed {
		t.Fatalf("method = %v, want oracle_relaxed", res.Method)
	}
	if !approx(res.Confidence, 0.9) {
		t.Errorf("confidence = %f, want 0.9", res.Confidence)
	}
	if e.AcceptThreshold() != 0.95 {
		t.Errorf("AcceptThreshold = %f", e.AcceptThreshold())
	}
}

func TestSegmentRelaxedSurfacesLowConfidence(t *testing.T) {
	e := NewEngine(Options{Oracle: boundaryOracle(nil, 1)})
	res := e.Segment(context.Background(), "रामलक्ष्मण")
	if res.Method != MethodOracleRelaxed {
		t.Fatalf("method = %v, want oracle_relaxed", res.Method)
	}
	if strings.Join(res.Parts, "|") != "र|ामलक्ष्मण" {
		t.Errorf("parts = %v", res.Parts)
	}
	if !approx(res.Confidence, 0.4) {
		t.Errorf("confidence = %f, want 0.4", res.Confidence)
	}
}

func TestSegmentRuleBeforeRelaxedOracle(t *testing.T) {
	// The oracle candidate fails the strict gate, so the visarga rule wins.
	e := NewEngine(Options{Oracle: boundaryOracle(nil, 1)})
	res := e.Segment(context.Background(), "रामःकथा")
	if res.Method != MethodRule || res.Confidence != RuleConfidence {
		t.Fatalf("got %+v, want rule", res)
	}
	if strings.Join(res.Parts, "|") != "रामः|कथा" {
		t.Errorf("parts = %v", res.Parts)
	}
}

func TestSegmentRejectsDeadConsonantRuleSplits(t *testing.T) {
	// Gemination, nasal and junction candidates leave a virama inside a
	// part, so without an oracle these words stay whole.
	e := NewEngine(Options{})
	for _, token := range []string{"उत्तम", "सन्चरति", "कर्म", "भवन्ति", "कर्मणि"} {
		if parts, ok := NewPatternSegmenter(nil).TrySplit(token); !ok || len(parts) != 2 {
			t.Fatalf("TrySplit(%q) = %v, %v; want a candidate", token, parts, ok)
		}
		res := e.Segment(context.Background(), token)
		if res.Method != MethodNoSplit || len(res.Parts) != 1 || res.Parts[0] != token {
			t.Errorf("Segment(%q) = %+v, want NoSplit", token, res)
		}
	}
}

func TestSegmentOracleFailures(t *testing.T) {
	failing := OracleFunc(func(context.Context, string) ([]float64, error) {
		return nil, errors.New("connection refused")
	})
	malformed := OracleFunc(func(context.Context, string) ([]float64, error) {
		return []float64{0.9, 0.9}, nil
	})
	silent := OracleFunc(func(_ context.Context, token string) ([]float64, error) {
		return make([]float64, script.RuneLen(token)), nil
	})

	for name, o := range map[string]Oracle{"error": failing, "malformed": malformed, "no boundary": silent} {
		t.Run(name, func(t *testing.T) {
			e := NewEngine(Options{Oracle: o})
			res := e.Segment(context.Background(), "रामलक्ष्मण")
			if res.Method != MethodNoSplit || len(res.Parts) != 1 {
				t.Errorf("got %+v, want NoSplit", res)
			}
			res = e.Segment(context.Background(), "रामःकथा")
			if res.Method != MethodRule {
				t.Errorf("rules should still run after an oracle failure, got %+v", res)
			}
		})
	}
}

func TestSegmentPerCharacterScores(t *testing.T) {
	// One score per character: the first and last are ignored.
	o := OracleFunc(func(_ context.Context, token string) ([]float64, error) {
		probs := make([]float64, script.RuneLen(token))
		probs[0] = 1
		probs[len(probs)-1] = 1
		probs[3] = 0.5
		return probs, nil
	})
	e := NewEngine(Options{Oracle: o})
	res := e.Segment(context.Background(), "रामलक्ष्मण")
	if res.Method != MethodOracle || strings.Join(res.Parts, "|") != "राम|लक्ष्मण" {
		t.Errorf("got %+v", res)
	}
}

func TestSegmentInvalidRuleCandidate(t *testing.T) {
	// The avagraha rule leaves an empty left part here.
	e := NewEngine(Options{})
	res := e.Segment(context.Background(), "ऽहम्")
	if res.Method != MethodNoSplit {
		t.Errorf("got %+v, want NoSplit", res)
	}
}

func TestNoSplitIsFixedPoint(t *testing.T) {
	e := NewEngine(Options{})
	for _, token := range []string{"रामलक्ष्मण", "गुरुर्", "क", "hello"} {
		first := e.Segment(context.Background(), token)
		if first.Method != MethodNoSplit {
			t.Fatalf("Segment(%q) = %+v, want NoSplit", token, first)
		}
		again := e.Segment(context.Background(), first.Parts[0])
		if again.Method != MethodNoSplit || again.Parts[0] != token {
			t.Errorf("Segment(%q) after NoSplit = %+v", first.Parts[0], again)
		}
	}
}

func TestPartsCoverToken(t *testing.T) {
	e := NewEngine(Options{})
	tokens := []string{"सोऽहम्", "रामःकथा", "उत्तम", "पुनर्जन्म", "रामस्तत्र", "यो", "तथापि", "रामलक्ष्मण"}
	for _, token := range tokens {
		res := e.Segment(context.Background(), token)
		joined := strings.Join(res.Parts, "")
		if script.RuneLen(joined) < script.RuneLen(token) {
			t.Errorf("Segment(%q) = %v loses characters", token, res.Parts)
		}
		if res.Method == MethodRule && joined != token {
			t.Errorf("rule split %v does not reconstruct %q", res.Parts, token)
		}
		for _, p := range res.Parts {
			if p == "" {
				t.Errorf("Segment(%q) produced an empty part", token)
			}
		}
	}
}

func TestOracleConfidence(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  float64
	}{
		{"strict and in range", []string{"राम", "लक्ष्मण"}, 1.0},
		{"strict with long part", []string{"राम", "लक्ष्मणभरत"}, 0.9},
		{"one-letter fragment", []string{"र", "ामलक्ष्मण"}, 0.4},
		{"five parts", []string{"रा", "मा", "सा", "का", "ता"}, 0.8},
		{"seven parts", []string{"रा", "मा", "सा", "का", "ता", "पा", "ना"}, 0.6},
		{"allowed morphemes", []string{"ऽ", "ः"}, 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := oracleConfidence(tt.parts); !approx(got, tt.want) {
				t.Errorf("oracleConfidence(%v) = %f, want %f", tt.parts, got, tt.want)
			}
		})
	}
}

func TestMethodText(t *testing.T) {
	res := Result{Original: "यो", Parts: []string{"यः", "उच्यते"}, Method: MethodEdgeCase, Confidence: 1}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"method":"edge_case"`) {
		t.Errorf("json = %s", data)
	}

	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Method != MethodEdgeCase {
		t.Errorf("method = %v", back.Method)
	}

	var m Method
	if err := m.UnmarshalText([]byte("bilstm")); err == nil {
		t.Error("expected error for unknown method")
	}
	if Method(42).String() != "method(42)" {
		t.Errorf("String = %q", Method(42).String())
	}
}

func TestEngineConcurrentUse(t *testing.T) {
	e := NewEngine(Options{Oracle: boundaryOracle(nil, 3)})
	tokens := []string{"यो", "उत्तम", "रामलक्ष्मण", "क", "पुनर्जन्म"}
	want := make([]Result, len(tokens))
	for i, tok := range tokens {
		want[i] = e.Segment(context.Background(), tok)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, tok := range tokens {
				got := e.Segment(context.Background(), tok)
				if strings.Join(got.Parts, "|") != strings.Join(want[i].Parts, "|") || got.Method != want[i].Method {
					t.Errorf("Segment(%q) = %+v, want %+v", tok, got, want[i])
				}
			}
		}()
	}
	wg.Wait()
}
