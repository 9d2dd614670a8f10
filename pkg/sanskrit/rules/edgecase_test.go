package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultEdgeCases(t *testing.T) {
	ec := DefaultEdgeCases()

	parts, ok := ec.Lookup("यो")
	if !ok || len(parts) != 2 || parts[0] != "यः" || parts[1] != "उच्यते" {
		t.Errorf("Lookup(यो) = %v, %v", parts, ok)
	}

	parts, ok = ec.Lookup("गच्छति")
	if !ok || len(parts) != 1 || parts[0] != "गच्छति" {
		t.Errorf("Lookup(गच्छति) = %v, %v", parts, ok)
	}

	if _, ok := ec.Lookup("रामः"); ok {
		t.Error("रामः is not a built-in edge case")
	}
}

func TestEdgeCasesLookupReturnsCopy(t *testing.T) {
	ec := DefaultEdgeCases()
	parts, _ := ec.Lookup("यो")
	parts[0] = "x"
	again, _ := ec.Lookup("यो")
	if again[0] != "यः" {
		t.Error("Lookup result must not alias the table")
	}
}

func TestMerge(t *testing.T) {
	base := DefaultEdgeCases()
	merged := base.Merge(map[string][]string{
		"रामः": {"रामः"},
		"यो":   {"य", "उ"},
		"खाली": {"खा", ""},
	})

	if _, ok := base.Lookup("रामः"); ok {
		t.Error("Merge must not modify the receiver")
	}
	if parts, ok := merged.Lookup("रामः"); !ok || parts[0] != "रामः" {
		t.Errorf("merged रामः = %v, %v", parts, ok)
	}
	if parts, _ := merged.Lookup("यो"); len(parts) != 2 || parts[0] != "य" {
		t.Errorf("override not applied: %v", parts)
	}
	if _, ok := merged.Lookup("खाली"); ok {
		t.Error("entries with empty parts should be dropped")
	}
	if merged.Len() != base.Len()+1 {
		t.Errorf("Len = %d, want %d", merged.Len(), base.Len()+1)
	}
}

func TestNilEdgeCases(t *testing.T) {
	var ec *EdgeCases
	if _, ok := ec.Lookup("यो"); ok {
		t.Error("nil table should have no entries")
	}
	if ec.Len() != 0 || len(ec.Entries()) != 0 {
		t.Error("nil table should be empty")
	}
}

func TestLoadEdgeCases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edge.yaml")
	content := `edge_cases:
  रामः: [रामः]
  विष्णुरुच्यते: [विष्णुः, उच्यते]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	entries, err := LoadEdgeCases(path)
	if err != nil {
		t.Fatalf("LoadEdgeCases: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if got := entries["विष्णुरुच्यते"]; len(got) != 2 || got[1] != "उच्यते" {
		t.Errorf("entry = %v", got)
	}
}

func TestLoadSplitDict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "splits.txt")
	content := `# training pairs
तथापि => तथा + अपि
महात्मा => महा + आत्मा

broken line
=> अ + ब
खाली => अ +
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	pairs, err := LoadSplitDict(path)
	if err != nil {
		t.Fatalf("LoadSplitDict: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2: %+v", len(pairs), pairs)
	}
	if pairs[0].Combined != "तथापि" || len(pairs[0].Parts) != 2 || pairs[0].Parts[1] != "अपि" {
		t.Errorf("first pair = %+v", pairs[0])
	}

	entries := PairsToEntries(pairs)
	if got := entries["महात्मा"]; len(got) != 2 || got[0] != "महा" {
		t.Errorf("entries = %v", entries)
	}
}
