// Package tagger assigns part-of-speech tags to a token stream with a
// Viterbi search over emission, transition and feature scores, and offers
// a suffix-based classifier for when no score tables are loaded.
package tagger

import "sort"

// Tag is a part-of-speech label.
type Tag string

const (
	Noun         Tag = "NOUN"
	Verb         Tag = "VERB"
	Adjective    Tag = "ADJ"
	Pronoun      Tag = "PRON"
	Particle     Tag = "PART"
	Conjunction  Tag = "CONJ"
	Adposition   Tag = "ADP"
	Adverb       Tag = "ADV"
	Interjection Tag = "INTJ"
	Symbol       Tag = "SYM"
	Punctuation  Tag = "PUNCT"

	// Unknown may appear in loaded tables but is never emitted.
	Unknown Tag = "UNK"

	// Fallback is assigned when nothing better is known.
	Fallback = Noun
)

// Tagged is a word with its tag and the tagger's confidence in it.
type Tagged struct {
	Word       string  `json:"word"`
	Tag        Tag     `json:"tag"`
	Confidence float64 `json:"confidence"`
}

// Distribution counts how often each tag occurs.
func Distribution(tagged []Tagged) map[Tag]int {
	out := make(map[Tag]int)
	for _, t := range tagged {
		out[t.Tag]++
	}
	return out
}

func sortTags(tags []Tag) {
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
}
