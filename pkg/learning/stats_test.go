package learning

import (
	"bytes"
	"strings"
	"testing"
)

func TestTopWords(t *testing.T) {
	c := trainTest(t, overlapSpam, overlapHam)

	spam := c.GetTopSpamWords(10)
	if len(spam) != 2 || spam[0].Word != "free" || spam[1].Word != "meeting" {
		t.Fatalf("Top spam words = %v", words(spam))
	}
	if !approx(spam[0].Spamminess, 0.75) {
		t.Errorf("Spamminess(free) = %v, expected 0.75", spam[0].Spamminess)
	}

	ham := c.GetTopHamWords(1)
	if len(ham) != 1 || ham[0].Word != "meeting" {
		t.Errorf("Top ham words = %v, expected [meeting]", words(ham))
	}
}

func TestGetWordStats(t *testing.T) {
	c := trainTest(t, overlapSpam, overlapHam)

	stats := c.GetWordStats("meeting")
	if stats == nil {
		t.Fatal("Expected stats for a shared word")
	}
	if !approx(stats.SpamFrequency, 1.0/3) || !approx(stats.HamFrequency, 2.0/3) {
		t.Errorf("Frequencies = %v/%v", stats.SpamFrequency, stats.HamFrequency)
	}

	if c.GetWordStats("money") != nil {
		t.Error("Expected nil stats for a spam-only word")
	}
}

func TestModelInfoAndReport(t *testing.T) {
	c := trainTest(t, overlapSpam, overlapHam)

	info := c.GetModelInfo()
	if info.Spam.VocabularySize != 6 || info.Ham.VocabularySize != 5 {
		t.Errorf("Vocabulary sizes = %d/%d, expected 6/5", info.Spam.VocabularySize, info.Ham.VocabularySize)
	}
	if info.SharedWords != 2 || info.VocabularySize != 9 {
		t.Errorf("Shared/combined = %d/%d, expected 2/9", info.SharedWords, info.VocabularySize)
	}

	var buf bytes.Buffer
	c.PrintStats(&buf)
	for _, want := range []string{"Spam documents: 3", "Scoreable words: 2", "free"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Report missing %q:\n%s", want, buf.String())
		}
	}
}

func words(stats []*WordStats) []string {
	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.Word
	}
	return out
}
