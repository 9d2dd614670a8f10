// Package config loads the YAML configuration and the data files it
// points at.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
)

// Oracle kinds.
const (
	OracleNone    = "none"
	OracleLexicon = "lexicon"
	OracleHTTP    = "http"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config is the top-level configuration document.
type Config struct {
	Segmentation  SegmentationConfig  `yaml:"segmentation"`
	Tagging       TaggingConfig       `yaml:"tagging"`
	Oracle        OracleConfig        `yaml:"oracle"`
	Admissibility AdmissibilityConfig `yaml:"admissibility"`
	Store         StoreConfig         `yaml:"store"`
	HTTP          HTTPConfig          `yaml:"http"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// SegmentationConfig tunes the segmentation engine.
type SegmentationConfig struct {
	AcceptThreshold float64 `yaml:"accept_threshold"`
	CacheSize       int     `yaml:"cache_size"` // 0 disables the cache
	RulesPath       string  `yaml:"rules"`      // empty uses the built-in table
	EdgeCasesPath   string  `yaml:"edge_cases"`
}

// TaggingConfig points at the score tables.
type TaggingConfig struct {
	TablesPath string `yaml:"tables"`
	// FromStore loads tables saved in the store when TablesPath is empty.
	FromStore bool `yaml:"from_store"`
}

// OracleConfig selects the split oracle. A lexicon oracle with no path
// reads its split pairs from the store.
type OracleConfig struct {
	Kind       string `yaml:"kind"` // none, lexicon, http
	Path       string `yaml:"path"` // split dictionary for the lexicon oracle
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// AdmissibilityConfig holds the script ratio gate.
type AdmissibilityConfig struct {
	MinRatio float64 `yaml:"min_ratio"`
}

// StoreConfig selects where analyses are persisted.
type StoreConfig struct {
	Driver string `yaml:"driver"` // memory, sqlite
	Path   string `yaml:"path"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // prod, dev or local
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads, expands, defaults and validates the config at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a config document. ${VAR} and ${VAR:-default} are
// replaced from the environment first.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// Default returns a config with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Segmentation.AcceptThreshold <= 0 {
		c.Segmentation.AcceptThreshold = 0.7
	}
	if c.Segmentation.CacheSize < 0 {
		c.Segmentation.CacheSize = 0
	}
	if c.Oracle.Kind == "" {
		c.Oracle.Kind = OracleNone
	}
	if c.Oracle.TimeoutSec <= 0 {
		c.Oracle.TimeoutSec = 5
	}
	if c.Admissibility.MinRatio <= 0 {
		c.Admissibility.MinRatio = 0.7
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "prod"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if t := c.Segmentation.AcceptThreshold; t > 1 {
		return fmt.Errorf("segmentation.accept_threshold must be in (0, 1], got %v", t)
	}
	if r := c.Admissibility.MinRatio; r > 1 {
		return fmt.Errorf("admissibility.min_ratio must be in (0, 1], got %v", r)
	}
	switch c.Oracle.Kind {
	case OracleNone:
	case OracleLexicon:
		if c.Oracle.Path == "" && c.Store.Driver != DriverSQLite {
			return fmt.Errorf("oracle.path is required for the lexicon oracle without a sqlite store")
		}
	case OracleHTTP:
		if c.Oracle.URL == "" {
			return fmt.Errorf("oracle.url is required for the http oracle")
		}
	default:
		return fmt.Errorf("oracle.kind must be %q, %q or %q, got %q", OracleNone, OracleLexicon, OracleHTTP, c.Oracle.Kind)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverMemory, DriverSQLite, c.Store.Driver)
	}
	if c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Logging.Env {
	case "prod", "dev", "local":
	default:
		return fmt.Errorf("logging.env must be prod, dev or local, got %q", c.Logging.Env)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// Loader returns a Loader for the data files named in c.
func (c *Config) Loader() *Loader {
	return &Loader{
		RulesPath:     c.Segmentation.RulesPath,
		EdgeCasePath:  c.Segmentation.EdgeCasesPath,
		TablesPath:    c.Tagging.TablesPath,
		OracleKind:    c.Oracle.Kind,
		OraclePath:    c.Oracle.Path,
		OracleURL:     c.Oracle.URL,
		OracleAPIKey:  c.Oracle.APIKey,
		OracleTimeout: c.Oracle.TimeoutSec,
	}
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
