package rules

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// EdgeCases maps an exact token to its authoritative split. A token that
// maps to itself is a do-not-split entry.
type EdgeCases struct {
	entries map[string][]string
}

//go:embed edge_cases.yaml
var builtinEdgeCases []byte

var (
	defaultEdgeOnce    sync.Once
	defaultEdgeEntries map[string][]string
)

// NewEdgeCases copies entries into a new table. Entries with no parts or
// with an empty part are dropped.
func NewEdgeCases(entries map[string][]string) *EdgeCases {
	ec := &EdgeCases{entries: make(map[string][]string, len(entries))}
	for token, parts := range entries {
		ec.set(token, parts)
	}
	return ec
}

// DefaultEdgeCases returns the curated built-in table. It panics if the
// embedded data is malformed.
func DefaultEdgeCases() *EdgeCases {
	defaultEdgeOnce.Do(func() {
		entries, err := ParseEdgeCases(builtinEdgeCases)
		if err != nil {
			panic(fmt.Sprintf("rules: embedded edge cases: %v", err))
		}
		defaultEdgeEntries = entries
	})
	return NewEdgeCases(defaultEdgeEntries)
}

func (ec *EdgeCases) set(token string, parts []string) {
	token = strings.TrimSpace(token)
	if token == "" || len(parts) == 0 {
		return
	}
	cp := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return
		}
		cp = append(cp, p)
	}
	ec.entries[token] = cp
}

// Merge returns a new table where extra overrides the receiver's entries.
func (ec *EdgeCases) Merge(extra map[string][]string) *EdgeCases {
	out := &EdgeCases{entries: make(map[string][]string, len(ec.entries)+len(extra))}
	for token, parts := range ec.entries {
		out.entries[token] = parts
	}
	for token, parts := range extra {
		out.set(token, parts)
	}
	return out
}

// Lookup returns a copy of the split for token.
func (ec *EdgeCases) Lookup(token string) ([]string, bool) {
	if ec == nil {
		return nil, false
	}
	parts, ok := ec.entries[token]
	if !ok {
		return nil, false
	}
	return append([]string(nil), parts...), true
}

// Len returns the number of entries.
func (ec *EdgeCases) Len() int {
	if ec == nil {
		return 0
	}
	return len(ec.entries)
}

// Entries returns a copy of every entry.
func (ec *EdgeCases) Entries() map[string][]string {
	out := make(map[string][]string, ec.Len())
	if ec == nil {
		return out
	}
	for token, parts := range ec.entries {
		out[token] = append([]string(nil), parts...)
	}
	return out
}

// LoadEdgeCases reads overrides from a YAML file:
//
//	edge_cases:
//	  यो: [यः, उच्यते]
//	  रामः: [रामः]
func LoadEdgeCases(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseEdgeCases(data)
}

// ParseEdgeCases reads overrides in the LoadEdgeCases format.
func ParseEdgeCases(data []byte) (map[string][]string, error) {
	var f struct {
		EdgeCases map[string][]string `yaml:"edge_cases"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.EdgeCases == nil {
		f.EdgeCases = map[string][]string{}
	}
	return f.EdgeCases, nil
}

// SplitPair is one line of a split dictionary.
type SplitPair struct {
	Combined string
	Parts    []string
}

// LoadSplitDict reads a split dictionary.
// Format: combined => part1 + part2 [+ ...]; '#' starts a comment line.
// Malformed lines are skipped.
func LoadSplitDict(path string) ([]SplitPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pairs []SplitPair
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		combined, rhs, ok := strings.Cut(line, "=>")
		if !ok {
			continue
		}
		combined = strings.TrimSpace(combined)
		if combined == "" {
			continue
		}
		var parts []string
		valid := true
		for _, p := range strings.Split(rhs, "+") {
			p = strings.TrimSpace(p)
			if p == "" {
				valid = false
				break
			}
			parts = append(parts, p)
		}
		if !valid {
			continue
		}
		pairs = append(pairs, SplitPair{Combined: combined, Parts: parts})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read split dictionary: %w", err)
	}
	return pairs, nil
}

// PairsToEntries converts dictionary pairs into edge-case entries.
func PairsToEntries(pairs []SplitPair) map[string][]string {
	out := make(map[string][]string, len(pairs))
	for _, p := range pairs {
		out[p.Combined] = p.Parts
	}
	return out
}
