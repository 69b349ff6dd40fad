package learning

import (
	"fmt"
	"io"
	"sort"

	"github.com/zpam/zbayes/pkg/corpus"
)

// WordStats contains statistics about a word present in both models
type WordStats struct {
	Word          string  `json:"word"`
	SpamFrequency float64 `json:"spam_frequency"`
	HamFrequency  float64 `json:"ham_frequency"`
	Spamminess    float64 `json:"spamminess"`
}

// ModelInfo contains information about the trained models
type ModelInfo struct {
	Spam           ModelSummary `json:"spam"`
	Ham            ModelSummary `json:"ham"`
	Priors         Priors       `json:"priors"`
	SharedWords    int          `json:"shared_words"`
	VocabularySize int          `json:"vocabulary_size"`
	ZScore         float64      `json:"z_score"`
}

// GetWordStats returns statistics for word, or nil when it is unscored
func (c *Classifier) GetWordStats(word string) *WordStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wordStats(word)
}

func (c *Classifier) wordStats(word string) *WordStats {
	spamminess, ok := c.posterior(corpus.Spam, word)
	if !ok {
		return nil
	}
	fs, _ := c.spam.Frequency(word)
	fh, _ := c.ham.Frequency(word)
	return &WordStats{
		Word:          word,
		SpamFrequency: fs,
		HamFrequency:  fh,
		Spamminess:    spamminess,
	}
}

// sharedWords returns stats for every scoreable word, sorted by word
func (c *Classifier) sharedWords() []*WordStats {
	var words []*WordStats
	for _, word := range c.spam.Vocabulary() {
		if stats := c.wordStats(word); stats != nil {
			words = append(words, stats)
		}
	}
	return words
}

// GetTopSpamWords returns the most spammy words
func (c *Classifier) GetTopSpamWords(limit int) []*WordStats {
	c.mu.RLock()
	words := c.sharedWords()
	c.mu.RUnlock()

	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Spamminess > words[j].Spamminess
	})

	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words
}

// GetTopHamWords returns the most ham words
func (c *Classifier) GetTopHamWords(limit int) []*WordStats {
	c.mu.RLock()
	words := c.sharedWords()
	c.mu.RUnlock()

	sort.SliceStable(words, func(i, j int) bool {
		return words[i].Spamminess < words[j].Spamminess
	})

	if limit > 0 && len(words) > limit {
		words = words[:limit]
	}
	return words
}

// GetModelInfo returns information about the trained models
func (c *Classifier) GetModelInfo() *ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	shared := 0
	vocabSize := c.spam.VocabularySize()
	for _, word := range c.ham.Vocabulary() {
		if c.spam.Contains(word) {
			shared++
		} else {
			vocabSize++
		}
	}

	return &ModelInfo{
		Spam:           summarize(c.spam),
		Ham:            summarize(c.ham),
		Priors:         c.priors,
		SharedWords:    shared,
		VocabularySize: vocabSize,
		ZScore:         c.zScore,
	}
}

// PrintStats prints model statistics
func (c *Classifier) PrintStats(w io.Writer) {
	info := c.GetModelInfo()

	fmt.Fprintf(w, "🧠 Bayesian Word Frequency Model\n")
	fmt.Fprintf(w, "════════════════════════════════════════\n")
	fmt.Fprintf(w, "Training Data:\n")
	fmt.Fprintf(w, "  Spam documents: %d (vocabulary %d)\n", info.Spam.DocumentCount, info.Spam.VocabularySize)
	fmt.Fprintf(w, "  Ham documents: %d (vocabulary %d)\n", info.Ham.DocumentCount, info.Ham.VocabularySize)
	fmt.Fprintf(w, "  Combined vocabulary: %d\n", info.VocabularySize)
	fmt.Fprintf(w, "  Scoreable words: %d\n", info.SharedWords)
	fmt.Fprintf(w, "  Priors: spam %.3f, ham %.3f\n", info.Priors.Spam, info.Priors.Ham)
	fmt.Fprintf(w, "  Confidence z: %.2f\n", info.ZScore)

	fmt.Fprintf(w, "\n📈 Top Spam Words:\n")
	for i, word := range c.GetTopSpamWords(10) {
		fmt.Fprintf(w, "  %2d. %-12s (%.3f spamminess, %.3f/%.3f)\n",
			i+1, word.Word, word.Spamminess, word.SpamFrequency, word.HamFrequency)
	}

	fmt.Fprintf(w, "\n📉 Top Ham Words:\n")
	for i, word := range c.GetTopHamWords(10) {
		fmt.Fprintf(w, "  %2d. %-12s (%.3f spamminess, %.3f/%.3f)\n",
			i+1, word.Word, word.Spamminess, word.SpamFrequency, word.HamFrequency)
	}

	fmt.Fprintf(w, "\n")
}
