package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings of a RedisSource
type RedisConfig struct {
	RedisURL    string
	KeyPrefix   string
	DatabaseNum int
	Timeout     time.Duration
}

// DefaultRedisConfig returns default Redis settings
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		RedisURL:    "redis://localhost:6379",
		KeyPrefix:   "zbayes:corpus",
		DatabaseNum: 0,
		Timeout:     5 * time.Second,
	}
}

// RedisSource keeps training samples in two Redis lists, <prefix>:spam and <prefix>:ham.
// Each list element is one document.
type RedisSource struct {
	client *redis.Client
	config *RedisConfig
}

// NewRedisSource connects to Redis and verifies the connection
func NewRedisSource(ctx context.Context, config *RedisConfig) (*RedisSource, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	opt, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	opt.DB = config.DatabaseNum
	if config.Timeout > 0 {
		opt.DialTimeout = config.Timeout
		opt.ReadTimeout = config.Timeout
		opt.WriteTimeout = config.Timeout
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis connection failed: %w", err)
	}

	return &RedisSource{client: client, config: config}, nil
}

// Key returns the list key holding documents of class
func (s *RedisSource) Key(class Class) string {
	return s.config.KeyPrefix + ":" + string(class)
}

// Add appends documents to the class list
func (s *RedisSource) Add(ctx context.Context, class Class, texts ...string) error {
	if _, err := ParseClass(string(class)); err != nil {
		return err
	}
	if len(texts) == 0 {
		return nil
	}

	values := make([]interface{}, len(texts))
	for i, text := range texts {
		values[i] = text
	}
	if err := s.client.RPush(ctx, s.Key(class), values...).Err(); err != nil {
		return fmt.Errorf("failed to add %s samples: %w", class, err)
	}
	return nil
}

// Documents fetches the whole class list
func (s *RedisSource) Documents(ctx context.Context, class Class) ([]Document, error) {
	if _, err := ParseClass(string(class)); err != nil {
		return nil, err
	}

	key := s.Key(class)
	texts, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s samples: %w", class, err)
	}

	docs := make([]Document, len(texts))
	for i, text := range texts {
		docs[i] = Text(fmt.Sprintf("%s[%d]", key, i), text)
	}
	return docs, nil
}

// Reset deletes both class lists
func (s *RedisSource) Reset(ctx context.Context) error {
	return s.client.Del(ctx, s.Key(Spam), s.Key(Ham)).Err()
}

// Close closes the Redis connection
func (s *RedisSource) Close() error {
	return s.client.Close()
}
