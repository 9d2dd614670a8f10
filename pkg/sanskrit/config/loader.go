package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/cognicore/sanskrit/pkg/sanskrit/oracle"
	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/segment"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
)

// Loader loads all data files and constructs components.
type Loader struct {
	RulesPath    string
	EdgeCasePath string
	TablesPath   string

	OracleKind    string
	OraclePath    string
	OracleURL     string
	OracleAPIKey  string
	OracleTimeout int // seconds
}

// Components holds everything the loader built.
type Components struct {
	Rules     *rules.Table
	EdgeCases *rules.EdgeCases
	Tables    *tagger.Tables // nil when no tables are available
	Oracle    segment.Oracle // nil when no oracle is configured
	Warnings  []string
}

// Load reads all configured files and returns initialized components.
// A missing tables file is not an error; Tables is left nil and a warning
// is recorded so tagging falls back to the classifier.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Rule table
	if l.RulesPath != "" {
		table, err := rules.LoadTable(l.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		comp.Rules = table
	} else {
		comp.Rules = rules.Default()
	}

	// Edge cases extend the built-in table
	comp.EdgeCases = rules.DefaultEdgeCases()
	if l.EdgeCasePath != "" {
		entries, err := rules.LoadEdgeCases(l.EdgeCasePath)
		if err != nil {
			return nil, fmt.Errorf("load edge cases: %w", err)
		}
		comp.EdgeCases = comp.EdgeCases.Merge(entries)
	}

	// Score tables
	if l.TablesPath != "" {
		tables, err := tagger.LoadTables(l.TablesPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			comp.Warnings = append(comp.Warnings, fmt.Sprintf("score tables %s not found, tagging by classifier", l.TablesPath))
		case err != nil:
			return nil, fmt.Errorf("load score tables: %w", err)
		default:
			comp.Tables = tables
		}
	}

	// Oracle
	switch l.OracleKind {
	case "", OracleNone:
	case OracleLexicon:
		if l.OraclePath == "" {
			// pairs come from the store
			break
		}
		lex, err := oracle.LoadLexicon(l.OraclePath)
		if err != nil {
			return nil, fmt.Errorf("load oracle lexicon: %w", err)
		}
		comp.Oracle = lex
	case OracleHTTP:
		timeout := oracle.DefaultTimeout
		if l.OracleTimeout > 0 {
			timeout = time.Duration(l.OracleTimeout) * time.Second
		}
		comp.Oracle = &oracle.HTTP{
			URL:        l.OracleURL,
			APIKey:     l.OracleAPIKey,
			HTTPClient: &http.Client{Timeout: timeout},
		}
	default:
		return nil, fmt.Errorf("unknown oracle kind %q", l.OracleKind)
	}

	return comp, nil
}
