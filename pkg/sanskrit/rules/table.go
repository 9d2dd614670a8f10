// Package rules holds the static sandhi rule table and the curated
// edge-case overrides. Both are built once and never mutated afterwards,
// so a single value can be shared by every request.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var builtinRules []byte

// Key is an ordered pair of graphemes meeting at a junction.
type Key struct {
	Left  string
	Right string
}

func (k Key) String() string {
	return k.Left + "+" + k.Right
}

// Junction is a surface cluster that marks a likely morpheme boundary.
// Cut is the number of code points of Match that stay on the left part.
type Junction struct {
	Match string `yaml:"match"`
	Cut   int    `yaml:"cut"`
}

// Table is an immutable sandhi rule table.
type Table struct {
	Vowel     map[Key]string
	Consonant map[Key]string
	Visarga   map[Key]string
	Compound  map[Key]string
	All       map[Key]string

	junctions []Junction
	patterns  map[PatternType][]string
}

type tableFile struct {
	Vowel     map[string]string   `yaml:"vowel"`
	Consonant map[string]string   `yaml:"consonant"`
	Visarga   map[string]string   `yaml:"visarga"`
	Compound  map[string]string   `yaml:"compound"`
	Junctions []Junction          `yaml:"junctions"`
	Patterns  map[string][]string `yaml:"patterns"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in rule table. It panics if the embedded data
// is malformed, which can only happen at build time.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(builtinRules)
		if err != nil {
			panic(fmt.Sprintf("rules: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// LoadTable reads a rule table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a table from YAML. The union All is assembled in the order
// vowel, consonant, visarga, compound; later subsets win on a shared key.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	t := &Table{
		All:       make(map[Key]string),
		junctions: make([]Junction, 0, len(f.Junctions)),
		patterns:  make(map[PatternType][]string),
	}

	var err error
	if t.Vowel, err = parseSubset("vowel", f.Vowel); err != nil {
		return nil, err
	}
	if t.Consonant, err = parseSubset("consonant", f.Consonant); err != nil {
		return nil, err
	}
	if t.Visarga, err = parseSubset("visarga", f.Visarga); err != nil {
		return nil, err
	}
	if t.Compound, err = parseSubset("compound", f.Compound); err != nil {
		return nil, err
	}

	for _, subset := range []map[Key]string{t.Vowel, t.Consonant, t.Visarga, t.Compound} {
		for k, v := range subset {
			t.All[k] = v
		}
	}
	for _, j := range f.Junctions {
		n := utf8.RuneCountInString(j.Match)
		if j.Match == "" || j.Cut < 0 || j.Cut > n {
			return nil, fmt.Errorf("junction %q: cut %d out of range", j.Match, j.Cut)
		}
		t.junctions = append(t.junctions, j)
	}

	for name, clusters := range f.Patterns {
		t.patterns[PatternType(name)] = append([]string(nil), clusters...)
	}

	return t, nil
}

func parseSubset(name string, raw map[string]string) (map[Key]string, error) {
	out := make(map[Key]string, len(raw))
	for k, v := range raw {
		left, right, ok := strings.Cut(k, "+")
		if !ok || left == "" || right == "" {
			return nil, fmt.Errorf("%s rule %q: key must be left+right", name, k)
		}
		out[Key{Left: left, Right: right}] = v
	}
	return out, nil
}

// Lookup returns the joined form for an exact left/right pair.
func (t *Table) Lookup(left, right string) (string, bool) {
	v, ok := t.All[Key{Left: left, Right: right}]
	return v, ok
}

// Junctions returns the ordered reverse-junction list.
func (t *Table) Junctions() []Junction {
	out := make([]Junction, len(t.junctions))
	copy(out, t.junctions)
	return out
}

// Len returns the number of distinct rules in the union.
func (t *Table) Len() int {
	return len(t.All)
}

// Join applies forward sandhi to w1 and w2. The last code point of w1 and
// the first of w2 form the lookup key; a matching rule replaces both.
// Without one the words are concatenated.
func (t *Table) Join(w1, w2 string) string {
	if w1 == "" || w2 == "" {
		return w1 + w2
	}
	last, ln := utf8.DecodeLastRuneInString(w1)
	first, fn := utf8.DecodeRuneInString(w2)
	if joined, ok := t.Lookup(string(last), string(first)); ok {
		return w1[:len(w1)-ln] + joined + w2[fn:]
	}
	return w1 + w2
}
