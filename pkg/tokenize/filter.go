package tokenize

import (
	"strings"
	"unicode/utf8"

	"github.com/zpam/zbayes/pkg/stopwords"
)

// DefaultMaxTokenLength is the exclusive upper bound on admissible token length.
// Longer tokens are mostly encoded attachments and markup.
const DefaultMaxTokenLength = 10

// Filter splits text into tokens and decides which tokens are vocabulary.
// It does not strip punctuation.
type Filter struct {
	stops     *stopwords.Set
	maxLength int
}

// NewFilter creates a filter. maxLength <= 0 selects DefaultMaxTokenLength.
func NewFilter(stops *stopwords.Set, maxLength int) *Filter {
	if maxLength <= 0 {
		maxLength = DefaultMaxTokenLength
	}
	return &Filter{stops: stops, maxLength: maxLength}
}

// Split splits a line of text on whitespace
func (f *Filter) Split(line string) []string {
	return strings.Fields(line)
}

// Admissible reports whether token is shorter than the maximum length
// and its lower-cased form is not a stopword
func (f *Filter) Admissible(token string) bool {
	if token == "" || utf8.RuneCountInString(token) >= f.maxLength {
		return false
	}
	return !f.stops.Contains(strings.ToLower(token))
}

// Tokens returns the admissible tokens of text in order, duplicates included
func (f *Filter) Tokens(text string) []string {
	var tokens []string
	for _, tok := range f.Split(text) {
		if f.Admissible(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// MaxLength returns the exclusive token length bound
func (f *Filter) MaxLength() int {
	return f.maxLength
}
