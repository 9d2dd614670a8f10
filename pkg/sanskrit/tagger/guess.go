package tagger

import "strings"

// guessPunctuation is tagged SYM by the classifier.
var guessPunctuation = setOf("।", "॥", "॰", "।।", ".", ",", ";", ":", "!", "?")

// Suffix lists are checked in order; the first list with a match decides.
var (
	verbEndings = []string{
		"ति", "न्ति", "सि", "थ", "मि", "मः", "तु", "न्तु", "यामि", "यसि", "यति", "यन्ति",
		"अनि", "अथ", "धि", "महि", "वहि", "जानीहि", "पश्य", "श्रृ", "गृ", "धृ", "दृ",
		"तव्य", "यितुम्", "तुम्", "य", "याति", "गच्छति", "पश्यति",
	}
	nounEndings = []string{
		"ः", "म्", "अः", "आः", "मः", "न्", "नः", "ना", "नी", "नि",
		"अ", "आ", "इ", "ई", "उ", "ऊ", "ऋ", "ॠ", "ऌ", "ए", "ऐ", "ओ", "औ",
		"ं", "ँ", "कार", "खार", "गार", "घार", "ङार",
		"त्र", "त्री", "त्रम्", "त्राणि", "त्रे", "त्रयः",
	}
	adjectiveEndings = []string{
		"अ", "आ", "इ", "ी", "उ", "ऊ", "ऋ", "ए", "ऐ", "ओ", "औ",
		"अन्", "अनी", "अनि", "अत्", "अती", "अति", "अन्त", "अन्ती", "अन्ति",
		"मान", "माना", "मानी", "मानि", "वत्", "वती", "वति", "वन्त", "वन्ती", "वन्ति",
	}
)

// Closed word classes, checked in this order after the suffix lists.
var closedClasses = []struct {
	tag   Tag
	words map[string]struct{}
}{
	{Pronoun, setOf(
		"अहम्", "त्वम्", "सः", "सा", "तत्", "एषः", "एषा", "एतत्", "अयम्", "अया",
		"सर्व", "सर्वे", "सर्वाः", "सर्वाणि", "अन्य", "अन्ये", "अन्याः", "अन्याणि",
		"कः", "का", "किम्", "के", "कानि", "यः", "या", "यत्", "ये", "याः", "यानि",
		"तस्य", "तस्याः", "ते", "ताः", "तानि", "मम", "मे", "माः", "मानि",
	)},
	{Adverb, setOf(
		"यदा", "तदा", "कदा", "यथा", "तथा", "कथम्", "कुत्र", "यत्र", "तत्र", "इव", "नूनम्",
		"बहु", "अल्प", "शीघ्र", "द्रुतम्", "सदैव", "नित्यम्", "कदाचित्", "सर्वदा",
		"अत्र", "सर्वत्र", "क्वचित्", "क्व", "अन्यत्र",
	)},
	{Particle, setOf(
		"च", "अपि", "हि", "खलु", "नूनम्", "अथ", "वा", "उत", "एव", "इव", "न", "नु",
		"चेत्", "यदि", "यद्यपि", "यावत्", "तथापि", "तत्र", "ततः",
		"अतः", "तत", "तस्मात्", "तस्मादेव", "तेन", "तेनैव", "तैः", "ताभिः",
	)},
	{Conjunction, setOf(
		"च", "वा", "अथवा", "यथा", "तथा", "यदि", "तदि", "किन्तु", "परन्तु", "तु", "हि",
		"अपि", "अथ", "न", "नैव", "यद्यपि", "तथापि",
	)},
	{Adposition, setOf(
		"अधि", "अपि", "अव", "आ", "उप", "उपरि", "अधः", "प्र", "प्रति", "अनु", "अभि",
		"नि", "द्वि", "परि", "सम्", "सह", "वि", "हि",
	)},
	{Interjection, setOf("अह", "अथ", "अरे", "अहो", "वाह", "शाबाश", "किम्", "कुतः", "कथम्")},
}

func setOf(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func hasAnySuffix(word string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(word, s) {
			return true
		}
	}
	return false
}

// Classify tags word from its surface form alone. matched is false when
// no rule applied and the fallback tag was returned.
func Classify(word string) (tag Tag, matched bool) {
	if word == "" {
		return Fallback, false
	}
	if _, ok := guessPunctuation[word]; ok {
		return Symbol, true
	}
	switch {
	case hasAnySuffix(word, verbEndings):
		return Verb, true
	case hasAnySuffix(word, nounEndings):
		return Noun, true
	case hasAnySuffix(word, adjectiveEndings):
		return Adjective, true
	}
	for _, cc := range closedClasses {
		if _, ok := cc.words[word]; ok {
			return cc.tag, true
		}
	}
	return Fallback, false
}

// GuessTag returns the classifier's tag for word.
func GuessTag(word string) Tag {
	tag, _ := Classify(word)
	return tag
}

// Guess tags one word without running Viterbi. Known words take their
// best emission; everything else goes through Classify.
func (tg *Tagger) Guess(word string) (Tag, bool) {
	if tg.Ready() && tg.tables.IsKnown(word) {
		if tag, ok := bestEmission(tg.tables.Emission[word]); ok {
			return tag, true
		}
	}
	return Classify(word)
}

// bestEmission picks the highest-scoring tag, breaking ties by tag name.
func bestEmission(scores map[Tag]float64) (Tag, bool) {
	tags := make([]Tag, 0, len(scores))
	for tag := range scores {
		if tag != Unknown {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return "", false
	}
	sortTags(tags)
	best := tags[0]
	for _, tag := range tags[1:] {
		if scores[tag] > scores[best] {
			best = tag
		}
	}
	return best, true
}
