package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Segmentation.AcceptThreshold != 0.7 {
		t.Errorf("accept threshold = %v", cfg.Segmentation.AcceptThreshold)
	}
	if cfg.Admissibility.MinRatio != 0.7 {
		t.Errorf("min ratio = %v", cfg.Admissibility.MinRatio)
	}
	if cfg.Oracle.Kind != OracleNone || cfg.Store.Driver != DriverMemory {
		t.Errorf("oracle = %q store = %q", cfg.Oracle.Kind, cfg.Store.Driver)
	}
	if cfg.HTTP.Port != 8080 || cfg.Logging.Level != "info" {
		t.Errorf("http = %+v logging = %+v", cfg.HTTP, cfg.Logging)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "*" {
		t.Errorf("origins = %v", cfg.HTTP.AllowedOrigins)
	}
}

func TestParseExpandsEnv(t *testing.T) {
	t.Setenv("SANSKRIT_ORACLE_URL", "http://model:9000/predict")

	doc := `
oracle:
  kind: http
  url: ${SANSKRIT_ORACLE_URL}
  api_key: ${SANSKRIT_MISSING_KEY:-dev-key}
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Oracle.URL != "http://model:9000/predict" {
		t.Errorf("url = %q", cfg.Oracle.URL)
	}
	if cfg.Oracle.APIKey != "dev-key" {
		t.Errorf("api key = %q, want default", cfg.Oracle.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"threshold above one", "segmentation: {accept_threshold: 1.5}", "accept_threshold"},
		{"ratio above one", "admissibility: {min_ratio: 2}", "min_ratio"},
		{"unknown oracle", "oracle: {kind: neural}", "oracle.kind"},
		{"http without url", "oracle: {kind: http}", "oracle.url"},
		{"lexicon without source", "oracle: {kind: lexicon}", "oracle.path"},
		{"sqlite without path", "store: {driver: sqlite}", "store.path"},
		{"unknown driver", "store: {driver: postgres}", "store.driver"},
		{"bad port", "http: {port: 70000}", "http.port"},
		{"bad level", "logging: {level: trace}", "logging.level"},
		{"bad env", "logging: {env: staging}", "logging.env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig: %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateLexiconFromStore(t *testing.T) {
	doc := `
oracle: {kind: lexicon}
store: {driver: sqlite, path: /tmp/sanskrit.db}
`
	if _, err := Parse([]byte(doc)); err != nil {
		t.Errorf("lexicon backed by sqlite should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
segmentation:
  accept_threshold: 0.8
  cache_size: 1024
tagging:
  tables: data/tables.yaml
store:
  driver: sqlite
  path: data/sanskrit.db
http:
  port: 9090
  allowed_origins: ["https://example.org"]
logging:
  env: dev
  level: debug
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Segmentation.AcceptThreshold != 0.8 || cfg.Segmentation.CacheSize != 1024 {
		t.Errorf("segmentation = %+v", cfg.Segmentation)
	}
	if cfg.Store.Path != "data/sanskrit.db" || cfg.HTTP.Port != 9090 {
		t.Errorf("store = %+v http = %+v", cfg.Store, cfg.HTTP)
	}
	if cfg.Logging.Env != "dev" {
		t.Errorf("logging = %+v", cfg.Logging)
	}

	l := cfg.Loader()
	if l.TablesPath != "data/tables.yaml" || l.OracleKind != OracleNone {
		t.Errorf("loader = %+v", l)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}
