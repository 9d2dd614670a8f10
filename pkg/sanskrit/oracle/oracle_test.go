package oracle

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/segment"
)

func TestLexiconPredict(t *testing.T) {
	lex := NewLexicon([]rules.SplitPair{
		{Combined: "रामलक्ष्मण", Parts: []string{"राम", "लक्ष्मण"}},
		{Combined: "तथापि", Parts: []string{"तथा", "अपि"}},
	})
	if lex.Len() != 2 {
		t.Fatalf("Len = %d, want 2", lex.Len())
	}

	probs, err := lex.Predict(context.Background(), "रामलक्ष्मण")
	if err != nil {
		t.Fatal(err)
	}
	if len(probs) != 9 {
		t.Fatalf("got %d scores, want 9", len(probs))
	}
	for i, p := range probs {
		want := 0.0
		if i == 2 {
			want = 1
		}
		if p != want {
			t.Errorf("probs[%d] = %v, want %v", i, p, want)
		}
	}

	// तथा ends where the combined form keeps matching, after three letters.
	probs, _ = lex.Predict(context.Background(), "तथापि")
	if probs[2] != 1 {
		t.Errorf("तथापि scores = %v", probs)
	}

	probs, _ = lex.Predict(context.Background(), "अज्ञात")
	for _, p := range probs {
		if p != 0 {
			t.Errorf("unknown token scored %v", probs)
			break
		}
	}

	if _, err := lex.Predict(context.Background(), ""); !errors.Is(err, internalerr.ErrEmptyToken) {
		t.Errorf("expected ErrEmptyToken, got %v", err)
	}
}

func TestLexiconDrivesEngine(t *testing.T) {
	lex := NewLexicon([]rules.SplitPair{{Combined: "रामलक्ष्मण", Parts: []string{"राम", "लक्ष्मण"}}})
	e := segment.NewEngine(segment.Options{Oracle: lex})
	res := e.Segment(context.Background(), "रामलक्ष्मण")
	if res.Method != segment.MethodOracle {
		t.Fatalf("got %+v, want oracle", res)
	}
	if strings.Join(res.Parts, "|") != "राम|लक्ष्मण" {
		t.Errorf("parts = %v", res.Parts)
	}
}

func TestLoadLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splits.txt")
	if err := os.WriteFile(path, []byte("रामलक्ष्मण => राम + लक्ष्मण\n"), 0644); err != nil {
		t.Fatal(err)
	}
	lex, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	if lex.Len() != 1 {
		t.Errorf("Len = %d", lex.Len())
	}
}

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestHTTPPredict(t *testing.T) {
	client := &HTTP{
		URL:    "https://model.test/predict",
		APIKey: "secret",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				body, _ := io.ReadAll(req.Body)
				if !strings.Contains(string(body), `"token":"रामलक्ष्मण"`) {
					t.Fatalf("unexpected payload: %s", body)
				}
				if req.Header.Get("Authorization") != "Bearer secret" {
					t.Fatalf("missing auth header")
				}
				return jsonResponse(200, `{"probabilities":[0,0,0.9,0,0,0,0,0,0]}`)
			}),
		},
	}

	probs, err := client.Predict(context.Background(), "रामलक्ष्मण")
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(probs) != 9 || probs[2] != 0.9 {
		t.Errorf("probs = %v", probs)
	}
}

func TestHTTPPredictErrors(t *testing.T) {
	tests := map[string]*http.Response{
		"server error":  jsonResponse(500, `{}`),
		"error payload": jsonResponse(200, `{"error":{"message":"model not loaded"}}`),
		"bad json":      jsonResponse(200, `not json`),
		"out of range":  jsonResponse(200, `{"probabilities":[1.5]}`),
	}
	for name, resp := range tests {
		t.Run(name, func(t *testing.T) {
			client := &HTTP{
				URL: "https://model.test/predict",
				HTTPClient: &http.Client{Transport: roundTrip(func(*http.Request) *http.Response {
					return resp
				})},
			}
			if _, err := client.Predict(context.Background(), "राम"); err == nil {
				t.Error("expected error")
			}
		})
	}

	var empty HTTP
	if _, err := empty.Predict(context.Background(), "राम"); !errors.Is(err, internalerr.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}
