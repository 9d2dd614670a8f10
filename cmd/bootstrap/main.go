package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/sanskrit/pkg/sanskrit/rules"
	"github.com/cognicore/sanskrit/pkg/sanskrit/store/sqlite"
	"github.com/cognicore/sanskrit/pkg/sanskrit/tagger"
)

// options holds the resources to import.
type options struct {
	dbPath       string
	tablesPath   string
	splitsPath   string
	edgeCasesOut string
}

// summary reports what was imported.
type summary struct {
	Tags       int
	KnownWords int
	Splits     int
	EdgeCases  int
}

func main() {
	var (
		dbPath       = flag.String("db", "", "SQLite database to populate (required)")
		tablesPath   = flag.String("tables", "", "Tagger score tables (YAML)")
		splitsPath   = flag.String("splits", "", "Split dictionary (combined => part + part)")
		edgeCasesOut = flag.String("edge-cases-out", "", "Also write the split dictionary as an edge case YAML file")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db is required")
	}
	if *tablesPath == "" && *splitsPath == "" {
		log.Fatal("nothing to import: pass --tables and/or --splits")
	}

	sum, err := run(context.Background(), options{
		dbPath:       *dbPath,
		tablesPath:   *tablesPath,
		splitsPath:   *splitsPath,
		edgeCasesOut: *edgeCasesOut,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Imported into %s:\n", *dbPath)
	fmt.Printf("  tags:        %d\n", sum.Tags)
	fmt.Printf("  known words: %d\n", sum.KnownWords)
	fmt.Printf("  splits:      %d\n", sum.Splits)
	if *edgeCasesOut != "" {
		fmt.Printf("  edge cases:  %d -> %s\n", sum.EdgeCases, *edgeCasesOut)
	}
}

func run(ctx context.Context, opts options) (summary, error) {
	var sum summary

	var tables *tagger.Tables
	if opts.tablesPath != "" {
		t, err := tagger.LoadTables(opts.tablesPath)
		if err != nil {
			return sum, fmt.Errorf("load tables: %w", err)
		}
		tables = t
	}

	var pairs []rules.SplitPair
	if opts.splitsPath != "" {
		p, err := rules.LoadSplitDict(opts.splitsPath)
		if err != nil {
			return sum, fmt.Errorf("load split dictionary: %w", err)
		}
		pairs = p
	}

	if dir := filepath.Dir(opts.dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return sum, fmt.Errorf("create db dir: %w", err)
		}
	}

	st, err := sqlite.OpenSQLite(ctx, opts.dbPath)
	if err != nil {
		return sum, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if tables != nil {
		if err := st.SaveTables(ctx, tables); err != nil {
			return sum, fmt.Errorf("save tables: %w", err)
		}
		sum.Tags = len(tables.Tags)
		sum.KnownWords = len(tables.KnownWords)
	}

	if len(pairs) > 0 {
		if err := st.UpsertSplits(ctx, pairs); err != nil {
			return sum, fmt.Errorf("save splits: %w", err)
		}
		sum.Splits = len(pairs)
	}

	if opts.edgeCasesOut != "" {
		entries := rules.PairsToEntries(pairs)
		if err := writeEdgeCases(opts.edgeCasesOut, entries); err != nil {
			return sum, err
		}
		sum.EdgeCases = len(entries)
	}

	return sum, nil
}

// writeEdgeCases writes entries in the format rules.LoadEdgeCases reads.
func writeEdgeCases(path string, entries map[string][]string) error {
	data, err := yaml.Marshal(struct {
		EdgeCases map[string][]string `yaml:"edge_cases"`
	}{entries})
	if err != nil {
		return fmt.Errorf("marshal edge cases: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write edge cases: %w", err)
	}
	return nil
}
