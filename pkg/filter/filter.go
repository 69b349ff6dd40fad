// Package filter wires configuration, corpus, stopwords and the classifier together.
package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zpam/zbayes/pkg/config"
	"github.com/zpam/zbayes/pkg/corpus"
	"github.com/zpam/zbayes/pkg/learning"
	"github.com/zpam/zbayes/pkg/stopwords"
	"github.com/zpam/zbayes/pkg/tokenize"
)

// OpenSource returns the training source selected by cfg. The returned close
// function releases backend connections.
func OpenSource(ctx context.Context, cfg *config.Config) (corpus.Source, func() error, error) {
	switch cfg.Training.Backend {
	case "redis":
		src, err := OpenRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil

	case "dir":
		var opts []corpus.DirOption
		if len(cfg.Training.Extensions) > 0 {
			opts = append(opts, corpus.WithExtensions(cfg.Training.Extensions...))
		}
		if cfg.Training.ParseEmail {
			opts = append(opts, corpus.WithEmailParsing())
		}
		src := corpus.NewDirSource(cfg.Training.SpamDir, cfg.Training.HamDir, opts...)
		return src, func() error { return nil }, nil
	}

	return nil, nil, fmt.Errorf("unknown training backend: %s", cfg.Training.Backend)
}

// OpenRedis connects to the Redis corpus described by cfg
func OpenRedis(ctx context.Context, cfg *config.Config) (*corpus.RedisSource, error) {
	return corpus.NewRedisSource(ctx, &corpus.RedisConfig{
		RedisURL:    cfg.Redis.RedisURL,
		KeyPrefix:   cfg.Redis.KeyPrefix,
		DatabaseNum: cfg.Redis.DatabaseNum,
		Timeout:     time.Duration(cfg.Redis.TimeoutMs) * time.Millisecond,
	})
}

// NewFilter builds the token filter from the tokenizer settings
func NewFilter(cfg *config.Config) (*tokenize.Filter, error) {
	stops, err := stopwords.LoadFile(cfg.Tokenizer.StopwordsFile)
	if err != nil {
		return nil, err
	}
	return tokenize.NewFilter(stops, cfg.Tokenizer.MaxTokenLength), nil
}

// Options returns classifier options derived from cfg
func Options(cfg *config.Config, log zerolog.Logger) []learning.Option {
	return []learning.Option{
		learning.WithZScore(cfg.Confidence.ZScore),
		learning.WithLogger(log),
	}
}

// Train builds a classifier from the configured corpus
func Train(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*learning.Classifier, *learning.TrainingResult, error) {
	f, err := NewFilter(cfg)
	if err != nil {
		return nil, nil, err
	}

	src, closeSource, err := OpenSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	defer closeSource()

	classifier, result, err := learning.Train(ctx, src, f, Options(cfg, log)...)
	if err != nil {
		return nil, nil, err
	}

	for _, s := range result.Skipped {
		log.Warn().Str("class", string(s.Class)).Str("document", s.Name).Err(s.Err).Msg("unreadable training sample")
	}
	log.Info().
		Int("spam_documents", result.Spam.DocumentCount).
		Int("spam_vocabulary", result.Spam.VocabularySize).
		Int("ham_documents", result.Ham.DocumentCount).
		Int("ham_vocabulary", result.Ham.VocabularySize).
		Dur("took", result.Duration).
		Msg("classifier trained")

	return classifier, result, nil
}
