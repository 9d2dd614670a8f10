package tagger

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/sanskrit/pkg/sanskrit/internalerr"
)

// Tables holds trained scores. A Tables value is read-only once built.
type Tables struct {
	Emission   map[string]map[Tag]float64
	Transition map[Tag]map[Tag]float64
	Features   map[FeatureKey]map[Tag]float64
	KnownWords map[string]struct{}
	Tags       []Tag
}

// NewTables returns empty tables ready to be filled.
func NewTables() *Tables {
	return &Tables{
		Emission:   make(map[string]map[Tag]float64),
		Transition: make(map[Tag]map[Tag]float64),
		Features:   make(map[FeatureKey]map[Tag]float64),
		KnownWords: make(map[string]struct{}),
	}
}

// SetEmission records the score of tag for word.
func (t *Tables) SetEmission(word string, tag Tag, score float64) {
	if t.Emission[word] == nil {
		t.Emission[word] = make(map[Tag]float64)
	}
	t.Emission[word][tag] = score
}

// SetTransition records the score of tag following prev.
func (t *Tables) SetTransition(prev, tag Tag, score float64) {
	if t.Transition[prev] == nil {
		t.Transition[prev] = make(map[Tag]float64)
	}
	t.Transition[prev][tag] = score
}

// SetFeature records the weight of key for tag.
func (t *Tables) SetFeature(key FeatureKey, tag Tag, score float64) {
	if t.Features[key] == nil {
		t.Features[key] = make(map[Tag]float64)
	}
	t.Features[key][tag] = score
}

// AddKnownWord marks word as seen in training.
func (t *Tables) AddKnownWord(word string) {
	t.KnownWords[word] = struct{}{}
}

// IsKnown reports whether word was seen in training.
func (t *Tables) IsKnown(word string) bool {
	_, ok := t.KnownWords[word]
	return ok
}

// Alphabet returns the sorted, de-duplicated tag set without Unknown.
func (t *Tables) Alphabet() []Tag {
	seen := make(map[Tag]struct{}, len(t.Tags))
	out := make([]Tag, 0, len(t.Tags))
	for _, tag := range t.Tags {
		if tag == Unknown || tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sortTags(out)
	return out
}

// Validate checks that every scored tag belongs to the alphabet.
func (t *Tables) Validate() error {
	alphabet := make(map[Tag]struct{}, len(t.Tags))
	for _, tag := range t.Tags {
		alphabet[tag] = struct{}{}
	}
	check := func(where string, tag Tag) error {
		if _, ok := alphabet[tag]; !ok {
			return fmt.Errorf("%w: %s uses tag %q outside the alphabet", internalerr.ErrInvalidInput, where, tag)
		}
		return nil
	}
	for word, scores := range t.Emission {
		for tag := range scores {
			if err := check("emission for "+word, tag); err != nil {
				return err
			}
		}
	}
	for prev, scores := range t.Transition {
		if prev != StartContext {
			if err := check("transition source", prev); err != nil {
				return err
			}
		}
		for tag := range scores {
			if err := check("transition from "+string(prev), tag); err != nil {
				return err
			}
		}
	}
	for key, scores := range t.Features {
		for tag := range scores {
			if err := check("feature "+key.String(), tag); err != nil {
				return err
			}
		}
	}
	return nil
}

type tablesFile struct {
	Tags       []Tag                      `yaml:"tags"`
	KnownWords []string                   `yaml:"known_words"`
	Emission   map[string]map[Tag]float64 `yaml:"emission"`
	Transition map[Tag]map[Tag]float64    `yaml:"transition"`
	Features   map[string]map[Tag]float64 `yaml:"features"`
}

// LoadTables reads score tables from a YAML file:
//
//	tags: [NOUN, VERB]
//	known_words: [रामः]
//	emission:   {रामः: {NOUN: 2.0}}
//	transition: {NOUN: {VERB: 0.5}}
//	features:   {"suffix_2=ति": {VERB: 1.0}}
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTables(data)
}

// ParseTables builds tables from YAML.
func ParseTables(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	t := NewTables()
	t.Tags = append(t.Tags, f.Tags...)
	for _, w := range f.KnownWords {
		t.AddKnownWord(w)
	}
	for word, scores := range f.Emission {
		for tag, s := range scores {
			t.SetEmission(word, tag, s)
		}
	}
	for prev, scores := range f.Transition {
		for tag, s := range scores {
			t.SetTransition(prev, tag, s)
		}
	}
	for raw, scores := range f.Features {
		key, err := ParseFeatureKey(raw)
		if err != nil {
			return nil, err
		}
		for tag, s := range scores {
			t.SetFeature(key, tag, s)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MarshalYAML writes tables in the same layout LoadTables reads.
func (t *Tables) MarshalYAML() (interface{}, error) {
	f := tablesFile{
		Tags:       t.Tags,
		Emission:   t.Emission,
		Transition: t.Transition,
		Features:   make(map[string]map[Tag]float64, len(t.Features)),
	}
	for w := range t.KnownWords {
		f.KnownWords = append(f.KnownWords, w)
	}
	sort.Strings(f.KnownWords)
	for key, scores := range t.Features {
		f.Features[key.String()] = scores
	}
	return f, nil
}
