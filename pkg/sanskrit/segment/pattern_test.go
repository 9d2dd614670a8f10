package segment

import (
	"strings"
	"testing"
)

func TestTrySplit(t *testing.T) {
	s := NewPatternSegmenter(nil)
	tests := []struct {
		name  string
		token string
		want  []string
	}{
		{"avagraha", "सोऽहम्", []string{"सो", "ऽहम्"}},
		{"visarga before velar", "रामःकथा", []string{"रामः", "कथा"}},
		{"visarga before dental keeps remainder", "नमःते", []string{"नमः", "ते"}},
		{"visarga before final labial", "रामःप", []string{"रामः", "प"}},
		{"gemination", "उत्तम", []string{"उत्", "तम"}},
		{"nasal before palatal", "सन्चय", []string{"सन्", "चय"}},
		{"junction keeps cluster", "पुनर्जन्म", []string{"पुनर्", "जन्म"}},
		{"visarga cluster junction", "रामस्तत्र", []string{"रामस्", "तत्र"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.TrySplit(tt.token)
			if !ok {
				t.Fatalf("TrySplit(%q) found nothing", tt.token)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("TrySplit(%q) = %v, want %v", tt.token, got, tt.want)
			}
			if strings.Join(got, "") != tt.token {
				t.Errorf("parts %v do not reconstruct %q", got, tt.token)
			}
		})
	}
}

func TestTrySplitNoMatch(t *testing.T) {
	s := NewPatternSegmenter(nil)
	for _, token := range []string{
		"रामलक्ष्मण",
		"गुरुर्", // junction at the very end
		"र्गुरु", // junction at the very start
		"रामः",   // visarga with nothing after it
	} {
		if parts, ok := s.TrySplit(token); ok {
			t.Errorf("TrySplit(%q) = %v, want no split", token, parts)
		}
	}
}

func TestTrySplitAtMostTwoParts(t *testing.T) {
	s := NewPatternSegmenter(nil)
	for _, token := range []string{"सोऽहम्ऽस्मि", "रामःकथाःगता", "उत्तमत्तम"} {
		parts, ok := s.TrySplit(token)
		if !ok {
			t.Fatalf("TrySplit(%q) found nothing", token)
		}
		if len(parts) != 2 {
			t.Errorf("TrySplit(%q) = %v, want exactly 2 parts", token, parts)
		}
	}
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name                  string
		parts                 []string
		strict, relaxed, rule bool
	}{
		{"clean split", []string{"राम", "लक्ष्मण"}, true, true, true},
		{"single part", []string{"राम"}, false, false, false},
		{"empty part", []string{"राम", ""}, false, false, false},
		{"one-letter fragment", []string{"र", "ामलक्ष्मण"}, false, true, false},
		{"allowed morpheme", []string{"राम", "ः"}, true, true, false},
		{"dead final consonant", []string{"उत्", "तम"}, false, true, false},
		{"conjunct inside part", []string{"राम", "धर्मः"}, true, true, false},
		{"virama fragment", []string{"कर्", "म"}, false, true, false},
		{"leading mark on first part", []string{"ाति", "राम"}, false, true, true},
		{"bare mark inside", []string{"राम", "कािथा"}, true, true, false},
		{"too many parts", []string{"रा", "मा", "सा", "का", "ता", "पा", "ना"}, false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidStrict(tt.parts); got != tt.strict {
				t.Errorf("ValidStrict(%v) = %v, want %v", tt.parts, got, tt.strict)
			}
			if got := ValidRelaxed(tt.parts); got != tt.relaxed {
				t.Errorf("ValidRelaxed(%v) = %v, want %v", tt.parts, got, tt.relaxed)
			}
			if got := ValidRule(tt.parts); got != tt.rule {
				t.Errorf("ValidRule(%v) = %v, want %v", tt.parts, got, tt.rule)
			}
		})
	}
}
