package learning

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/zpam/zbayes/pkg/corpus"
	"github.com/zpam/zbayes/pkg/tokenize"
)

// FrequencyModel is the trained vocabulary of one class. A word's frequency is
// its total number of occurrences divided by the class document count, so it
// can exceed 1. The model is immutable once built.
type FrequencyModel struct {
	class     corpus.Class
	frequency map[string]float64
	documents int
}

// NewFrequencyModel wraps precomputed frequencies. The map is copied.
func NewFrequencyModel(class corpus.Class, frequency map[string]float64, documents int) (*FrequencyModel, error) {
	if _, err := corpus.ParseClass(string(class)); err != nil {
		return nil, err
	}
	if documents < 0 {
		return nil, fmt.Errorf("negative document count %d", documents)
	}

	m := &FrequencyModel{
		class:     class,
		frequency: make(map[string]float64, len(frequency)),
		documents: documents,
	}
	for word, f := range frequency {
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid frequency %v for word %q", f, word)
		}
		m.frequency[word] = f
	}
	return m, nil
}

// Class returns the class the model was trained on
func (m *FrequencyModel) Class() corpus.Class { return m.class }

// DocumentCount returns the number of documents ingested, unreadable ones included
func (m *FrequencyModel) DocumentCount() int { return m.documents }

// VocabularySize returns the number of distinct words
func (m *FrequencyModel) VocabularySize() int { return len(m.frequency) }

// Frequency returns the occurrences-per-document of word
func (m *FrequencyModel) Frequency(word string) (float64, bool) {
	f, ok := m.frequency[word]
	return f, ok
}

// Contains reports whether word is in the vocabulary
func (m *FrequencyModel) Contains(word string) bool {
	_, ok := m.frequency[word]
	return ok
}

// Vocabulary returns the words of the model in sorted order
func (m *FrequencyModel) Vocabulary() []string {
	words := make([]string, 0, len(m.frequency))
	for w := range m.frequency {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Skipped records a training document whose content could not be read
type Skipped struct {
	Class corpus.Class
	Name  string
	Err   error
}

func (s Skipped) Error() string {
	return fmt.Sprintf("%s sample %s skipped: %v", s.Class, s.Name, s.Err)
}

func (s Skipped) Unwrap() error { return s.Err }

// Builder turns labelled documents into frequency models
type Builder struct {
	filter *tokenize.Filter
}

// NewBuilder creates a builder using filter for admissibility
func NewBuilder(filter *tokenize.Filter) *Builder {
	return &Builder{filter: filter}
}

// Build counts every document, readable or not, then converts raw counts to
// per-document frequencies. Words are keyed case-sensitively; a word seen before
// is counted without re-checking admissibility. An empty collection gives a
// model with zero documents.
func (b *Builder) Build(class corpus.Class, docs []corpus.Document) (*FrequencyModel, []Skipped) {
	counts := make(map[string]int)
	var skipped []Skipped
	documents := 0

	for _, doc := range docs {
		documents++

		data, err := doc.Read()
		if err != nil {
			skipped = append(skipped, Skipped{Class: class, Name: doc.Name(), Err: err})
			continue
		}

		for _, line := range strings.Split(string(data), "\n") {
			for _, tok := range b.filter.Split(line) {
				if _, seen := counts[tok]; seen {
					counts[tok]++
				} else if b.filter.Admissible(tok) {
					counts[tok] = 1
				}
			}
		}
	}

	m := &FrequencyModel{
		class:     class,
		frequency: make(map[string]float64, len(counts)),
		documents: documents,
	}
	for word, n := range counts {
		m.frequency[word] = float64(n) / float64(documents)
	}

	return m, skipped
}
