package learning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zpam/zbayes/pkg/corpus"
	"github.com/zpam/zbayes/pkg/tokenize"
)

var (
	ErrNoSpamDocuments = errors.New("no spam training documents")
	ErrNoHamDocuments  = errors.New("no ham training documents")
)

// Priors holds the class priors. Ham is always 1 - Spam.
type Priors struct {
	Spam float64 `json:"spam"`
	Ham  float64 `json:"ham"`
}

// Of returns the prior of class
func (p Priors) Of(class corpus.Class) float64 {
	if class == corpus.Spam {
		return p.Spam
	}
	return p.Ham
}

// ModelSummary describes one trained model
type ModelSummary struct {
	Class          corpus.Class `json:"class"`
	VocabularySize int          `json:"vocabulary_size"`
	DocumentCount  int          `json:"document_count"`
}

// TrainingResult reports a completed (re)build
type TrainingResult struct {
	Spam     ModelSummary  `json:"spam"`
	Ham      ModelSummary  `json:"ham"`
	Priors   Priors        `json:"priors"`
	Skipped  []Skipped     `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Classifier scores messages against a spam model and a ham model.
// Predictions may run concurrently; Retrain takes exclusive access.
type Classifier struct {
	mu sync.RWMutex

	spam   *FrequencyModel
	ham    *FrequencyModel
	priors Priors

	filter     *tokenize.Filter
	zScore     float64
	reweighter Reweighter
	log        zerolog.Logger
}

// Option configures a Classifier
type Option func(*Classifier)

// WithZScore sets the critical value used for confidence intervals
func WithZScore(z float64) Option {
	return func(c *Classifier) {
		if z > 0 {
			c.zScore = z
		}
	}
}

// WithReweighter attaches a hook called for every unscored word after a prediction
func WithReweighter(r Reweighter) Option {
	return func(c *Classifier) {
		if r != nil {
			c.reweighter = r
		}
	}
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Classifier) {
		c.log = log
	}
}

func newClassifier(filter *tokenize.Filter, opts []Option) *Classifier {
	c := &Classifier{
		filter:     filter,
		zScore:     DefaultZScore,
		reweighter: NopReweighter{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New creates a classifier from already built models. It fails when either
// model has no documents, since the priors would be undefined.
func New(spam, ham *FrequencyModel, filter *tokenize.Filter, opts ...Option) (*Classifier, error) {
	c := newClassifier(filter, opts)
	if err := c.install(spam, ham); err != nil {
		return nil, err
	}
	return c, nil
}

// Train builds both models from src and returns a ready classifier
func Train(ctx context.Context, src corpus.Source, filter *tokenize.Filter, opts ...Option) (*Classifier, *TrainingResult, error) {
	c := newClassifier(filter, opts)
	result, err := c.Retrain(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	return c, result, nil
}

// Retrain rebuilds both models from src and swaps them in together with the
// priors. On error the current models stay in place.
func (c *Classifier) Retrain(ctx context.Context, src corpus.Source) (*TrainingResult, error) {
	start := time.Now()

	var spamDocs, hamDocs []corpus.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := src.Documents(gctx, corpus.Spam)
		spamDocs = docs
		return err
	})
	g.Go(func() error {
		docs, err := src.Documents(gctx, corpus.Ham)
		hamDocs = docs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list training documents: %w", err)
	}

	builder := NewBuilder(c.filter)
	spam, spamSkipped := builder.Build(corpus.Spam, spamDocs)
	ham, hamSkipped := builder.Build(corpus.Ham, hamDocs)

	skipped := append(spamSkipped, hamSkipped...)
	for _, s := range skipped {
		c.log.Debug().Str("class", string(s.Class)).Str("document", s.Name).Err(s.Err).Msg("skipped unreadable sample")
	}

	c.mu.Lock()
	err := c.install(spam, ham)
	priors := c.priors
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := &TrainingResult{
		Spam:     summarize(spam),
		Ham:      summarize(ham),
		Priors:   priors,
		Skipped:  skipped,
		Duration: time.Since(start),
	}

	c.log.Debug().
		Int("spam_documents", spam.DocumentCount()).
		Int("spam_vocabulary", spam.VocabularySize()).
		Int("ham_documents", ham.DocumentCount()).
		Int("ham_vocabulary", ham.VocabularySize()).
		Int("skipped", len(skipped)).
		Msg("models rebuilt")

	return result, nil
}

// install validates and sets both models and the priors. Callers hold the write lock
// or own c exclusively.
func (c *Classifier) install(spam, ham *FrequencyModel) error {
	if spam == nil || spam.DocumentCount() == 0 {
		return ErrNoSpamDocuments
	}
	if ham == nil || ham.DocumentCount() == 0 {
		return ErrNoHamDocuments
	}
	if spam.Class() != corpus.Spam || ham.Class() != corpus.Ham {
		return fmt.Errorf("model classes swapped: got %s and %s", spam.Class(), ham.Class())
	}

	total := float64(spam.DocumentCount() + ham.DocumentCount())
	spamPrior := float64(spam.DocumentCount()) / total

	c.spam = spam
	c.ham = ham
	c.priors = Priors{Spam: spamPrior, Ham: 1 - spamPrior}
	return nil
}

func summarize(m *FrequencyModel) ModelSummary {
	return ModelSummary{
		Class:          m.Class(),
		VocabularySize: m.VocabularySize(),
		DocumentCount:  m.DocumentCount(),
	}
}

// Priors returns the current class priors
func (c *Classifier) Priors() Priors {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.priors
}

// Model returns the current model of class
func (c *Classifier) Model(class corpus.Class) *FrequencyModel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model(class)
}

func (c *Classifier) model(class corpus.Class) *FrequencyModel {
	if class == corpus.Spam {
		return c.spam
	}
	return c.ham
}

// ZScore returns the critical value used for confidence intervals
func (c *Classifier) ZScore() float64 {
	return c.zScore
}

// Posterior returns P(class | word) by two-class Bayes rule over word
// frequencies and class priors. ok is false when the word is unscored, that
// is missing from either model.
func (c *Classifier) Posterior(class corpus.Class, word string) (p float64, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.posterior(class, word)
}

func (c *Classifier) posterior(class corpus.Class, word string) (float64, bool) {
	f, ok := c.model(class).Frequency(word)
	if !ok {
		return 0, false
	}
	fOther, ok := c.model(class.Other()).Frequency(word)
	if !ok {
		return 0, false
	}

	num := f * c.priors.Of(class)
	denom := num + fOther*c.priors.Of(class.Other())
	if denom == 0 {
		return 0, false
	}
	return num / denom, true
}
