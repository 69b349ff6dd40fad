package learning

import (
	"github.com/zpam/zbayes/pkg/corpus"
)

// Aggregate is the message-level score in one direction. P is the product of
// the contributing posteriors and Q the product of their complements.
// Probability is P/(P+Q), or 0.5 when P+Q is zero and the result is Indeterminate.
type Aggregate struct {
	Posteriors    []float64 `json:"posteriors"`
	P             float64   `json:"p"`
	Q             float64   `json:"q"`
	Probability   float64   `json:"probability"`
	Indeterminate bool      `json:"indeterminate"`
}

// Combine renormalises a list of per-word posteriors. An empty list gives P = Q = 1.
func Combine(posteriors []float64) Aggregate {
	a := Aggregate{Posteriors: posteriors, P: 1, Q: 1}
	for _, p := range posteriors {
		a.P *= p
		a.Q *= 1 - p
	}

	if a.P+a.Q == 0 {
		a.Indeterminate = true
		a.Probability = 0.5
		return a
	}
	a.Probability = a.P / (a.P + a.Q)
	return a
}

// UnscoredWord is a message token missing from at least one model
type UnscoredWord struct {
	Word   string `json:"word"`
	InSpam bool   `json:"in_spam"`
	InHam  bool   `json:"in_ham"`
}

// Prediction is the result of classifying one message. ProbabilitySpam and
// ProbabilityHam come from independent word lists and need not sum to 1.
type Prediction struct {
	Message         string         `json:"message"`
	ProbabilitySpam float64        `json:"probability_spam"`
	ProbabilityHam  float64        `json:"probability_ham"`
	IntervalSpam    Interval       `json:"interval_spam"`
	IntervalHam     Interval       `json:"interval_ham"`
	PooledStdDev    float64        `json:"pooled_stddev"`
	Spam            Aggregate      `json:"spam"`
	Ham             Aggregate      `json:"ham"`
	Unscored        []UnscoredWord `json:"unscored,omitempty"`
}

// Label returns the class with the higher message probability. Ties go to ham.
func (p *Prediction) Label() corpus.Class {
	if p.ProbabilitySpam > p.ProbabilityHam {
		return corpus.Spam
	}
	return corpus.Ham
}

// Indeterminate reports whether either direction degenerated
func (p *Prediction) Indeterminate() bool {
	return p.Spam.Indeterminate || p.Ham.Indeterminate
}

// Predict scores message in both directions and attaches confidence intervals.
// It never fails; words that cannot be scored are listed in Unscored.
func (c *Classifier) Predict(message string) *Prediction {
	tokens := c.filter.Tokens(message)

	c.mu.RLock()
	pred := &Prediction{
		Message:  message,
		Spam:     Combine(c.direction(corpus.Spam, tokens)),
		Ham:      Combine(c.direction(corpus.Ham, tokens)),
		Unscored: c.unscored(tokens),
	}
	nSpam, nHam := c.spam.DocumentCount(), c.ham.DocumentCount()
	c.mu.RUnlock()

	pred.ProbabilitySpam = pred.Spam.Probability
	pred.ProbabilityHam = pred.Ham.Probability

	conf, err := Estimate(pred.ProbabilitySpam, pred.ProbabilityHam, nSpam, nHam, c.zScore)
	if err != nil {
		c.log.Error().Err(err).Msg("confidence estimate failed")
	} else {
		pred.PooledStdDev = conf.PooledStdDev
		pred.IntervalSpam = conf.Spam
		pred.IntervalHam = conf.Ham
	}

	for _, w := range pred.Unscored {
		c.reweighter.Reweight(w, pred)
	}

	return pred
}

// direction collects the posteriors toward class for tokens present in that
// class's model. Membership is tested per direction, so the spam and ham lists
// can cover different tokens.
func (c *Classifier) direction(class corpus.Class, tokens []string) []float64 {
	model := c.model(class)
	var posteriors []float64
	for _, tok := range tokens {
		if !model.Contains(tok) {
			continue
		}
		if p, ok := c.posterior(class, tok); ok {
			posteriors = append(posteriors, p)
		}
	}
	return posteriors
}

func (c *Classifier) unscored(tokens []string) []UnscoredWord {
	var result []UnscoredWord
	seen := make(map[string]bool)
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true

		inSpam, inHam := c.spam.Contains(tok), c.ham.Contains(tok)
		if inSpam && inHam {
			continue
		}
		result = append(result, UnscoredWord{Word: tok, InSpam: inSpam, InHam: inHam})
	}
	return result
}
