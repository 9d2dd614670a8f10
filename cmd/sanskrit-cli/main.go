package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	logpkg "github.com/cognicore/sanskrit/internal/logger"
	"github.com/cognicore/sanskrit/pkg/sanskrit"
	"github.com/cognicore/sanskrit/pkg/sanskrit/config"
	"github.com/cognicore/sanskrit/pkg/sanskrit/pipeline"
	"github.com/cognicore/sanskrit/pkg/sanskrit/segment"
	"github.com/cognicore/sanskrit/pkg/sanskrit/textsrc"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (optional, built-in defaults otherwise)")
		text       = flag.String("text", "", "One-shot text to analyze (non-interactive mode)")
		htmlPath   = flag.String("html", "", "Analyze the visible text of an HTML file")
		token      = flag.String("segment", "", "Segment a single token and exit")
		pair       = flag.String("join", "", "Join two words by sandhi, given as left+right, and exit")
		asJSON     = flag.Bool("json", false, "Print results as JSON")
		logLevel   = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logpkg.NewLogger(cfg.Logging.Env, *logLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	analyzer, err := sanskrit.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build analyzer", zap.Error(err))
	}
	defer analyzer.Close()

	switch {
	case *pair != "":
		if err := printJoin(os.Stdout, analyzer, *pair); err != nil {
			logger.Fatal("join", zap.Error(err))
		}
		return
	case *token != "":
		printSegment(os.Stdout, analyzer.Segment(ctx, *token), *asJSON)
		return
	case *htmlPath != "":
		f, err := os.Open(*htmlPath)
		if err != nil {
			logger.Fatal("open html", zap.Error(err))
		}
		extracted, err := textsrc.ExtractText(f)
		f.Close()
		if err != nil {
			logger.Fatal("extract html", zap.Error(err))
		}
		if err := analyze(ctx, os.Stdout, analyzer, extracted, *asJSON); err != nil {
			os.Exit(1)
		}
		return
	case *text != "":
		if err := analyze(ctx, os.Stdout, analyzer, *text, *asJSON); err != nil {
			os.Exit(1)
		}
		return
	}

	// Interactive mode
	fmt.Println("===========================================")
	fmt.Println("  Sanskrit Analyzer")
	fmt.Println("  Sandhi splitting and POS tagging")
	fmt.Println("===========================================")
	fmt.Println()
	if !analyzer.TaggerReady() {
		fmt.Println("(no score tables loaded: tagging by suffix rules)")
	}
	fmt.Println("Type Devanagari text (Ctrl+D to exit):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		_ = analyze(ctx, os.Stdout, analyzer, line, *asJSON)
	}

	fmt.Println("\nशुभम्!")
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// analyze runs the analyzer and prints the result. An inadmissible text
// prints its verdict and returns the error.
func analyze(ctx context.Context, w io.Writer, a *sanskrit.Analyzer, text string, asJSON bool) error {
	res, err := a.Analyze(ctx, text)
	var inadmissible *pipeline.InadmissibleError
	switch {
	case errors.As(err, &inadmissible):
		if asJSON {
			writeJSON(w, res.Admissibility)
		} else {
			fmt.Fprintf(w, "Not Sanskrit text: %.0f%% Devanagari (need %.0f%%)\n\n",
				inadmissible.Ratio*100, inadmissible.MinRatio*100)
		}
		return err
	case err != nil:
		fmt.Fprintln(w, "Error:", err)
		return err
	}

	if asJSON {
		writeJSON(w, res)
		return nil
	}
	printResult(w, res)
	return nil
}

func printResult(w io.Writer, res pipeline.Result) {
	fmt.Fprintf(w, "\n--- %s (confidence %.2f) ---\n", res.ID, res.Confidence)

	if len(res.Segments) > 0 {
		fmt.Fprintln(w, "\nSandhi:")
		for _, s := range res.Segments {
			if s.Split() {
				fmt.Fprintf(w, "  %s → %s  [%s %.2f]\n", s.Original, strings.Join(s.Parts, " + "), s.Method, s.Confidence)
			} else {
				fmt.Fprintf(w, "  %s  [%s]\n", s.Original, s.Method)
			}
		}
	}

	if len(res.Tagged) > 0 {
		fmt.Fprintf(w, "\nTags (%s):\n", res.TaggerMode)
		for _, t := range res.Tagged {
			fmt.Fprintf(w, "  %-16s %-6s %.2f\n", t.Word, t.Tag, t.Confidence)
		}
	}

	if res.Complexity != nil {
		fmt.Fprintf(w, "\nComplexity: %d tokens, %d sandhi patterns, density %.2f\n",
			res.Complexity.Tokens, res.Complexity.PatternsFound, res.Complexity.Density)
	}
	fmt.Fprintln(w)
}

func printSegment(w io.Writer, r segment.Result, asJSON bool) {
	if asJSON {
		writeJSON(w, r)
		return
	}
	fmt.Fprintf(w, "%s → %s  [%s %.2f]\n", r.Original, strings.Join(r.Parts, " + "), r.Method, r.Confidence)
}

// printJoin joins the two halves of a "left+right" argument.
func printJoin(w io.Writer, a *sanskrit.Analyzer, pair string) error {
	left, right, ok := strings.Cut(pair, "+")
	left, right = strings.TrimSpace(left), strings.TrimSpace(right)
	if !ok || left == "" || right == "" {
		return fmt.Errorf("join %q: want left+right", pair)
	}
	fmt.Fprintf(w, "%s + %s → %s\n", left, right, a.Join(left, right))
	return nil
}

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
