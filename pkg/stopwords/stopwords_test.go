package stopwords

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewNormalisesCase(t *testing.T) {
	set := New([]string{"The", " AND ", "", "a"})

	if set.Len() != 3 {
		t.Fatalf("Expected 3 stopwords, got %d", set.Len())
	}

	for _, w := range []string{"the", "and", "a"} {
		if !set.Contains(w) {
			t.Errorf("'%s' should be a stopword", w)
		}
	}

	if set.Contains("The") {
		t.Error("Contains should not normalise case")
	}
}

func TestEnglish(t *testing.T) {
	set := English()

	for _, w := range []string{"the", "and", "now", "you're"} {
		if !set.Contains(w) {
			t.Errorf("'%s' should be an English stopword", w)
		}
	}
	for _, w := range []string{"free", "money", "meeting"} {
		if set.Contains(w) {
			t.Errorf("'%s' should not be an English stopword", w)
		}
	}
}

func TestLoad(t *testing.T) {
	input := "# common words\nthe\n\nOF\n  and  \n"

	set, err := Load(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	all := set.All()
	expected := []string{"and", "of", "the"}
	if len(all) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, all)
	}
	for i := range expected {
		if all[i] != expected[i] {
			t.Errorf("All()[%d] = %s, expected %s", i, all[i], expected[i])
		}
	}
}

func TestLoadFile(t *testing.T) {
	t.Run("empty path selects English", func(t *testing.T) {
		set, err := LoadFile("")
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		if set.Len() != English().Len() {
			t.Errorf("Expected built-in list, got %d words", set.Len())
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stop.txt")
		if err := os.WriteFile(path, []byte("foo\nbar\n"), 0644); err != nil {
			t.Fatal(err)
		}

		set, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile failed: %v", err)
		}
		if !set.Contains("foo") || !set.Contains("bar") || set.Len() != 2 {
			t.Errorf("Unexpected set: %v", set.All())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
			t.Error("Expected error for missing file")
		}
	})
}

func TestNilSet(t *testing.T) {
	var set *Set
	if set.Contains("the") {
		t.Error("nil set should contain nothing")
	}
	if set.Len() != 0 {
		t.Error("nil set should be empty")
	}
}
