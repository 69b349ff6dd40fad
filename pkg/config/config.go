package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents zbayes configuration
type Config struct {
	// Training corpus settings
	Training TrainingConfig `yaml:"training"`

	// Redis corpus backend
	Redis RedisConfig `yaml:"redis"`

	// Tokenizer settings
	Tokenizer TokenizerConfig `yaml:"tokenizer"`

	// Confidence interval settings
	Confidence ConfidenceConfig `yaml:"confidence"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`

	// Milter server settings
	Milter MilterConfig `yaml:"milter"`
}

// TrainingConfig selects where training samples come from
type TrainingConfig struct {
	// Backend selection: "dir" or "redis"
	Backend string `yaml:"backend"`

	// Directory backend
	SpamDir    string   `yaml:"spam_dir"`
	HamDir     string   `yaml:"ham_dir"`
	Extensions []string `yaml:"extensions"`  // empty = every file
	ParseEmail bool     `yaml:"parse_email"` // strip RFC 5322 headers before tokenizing
}

// RedisConfig contains Redis corpus settings
type RedisConfig struct {
	RedisURL    string `yaml:"redis_url"`
	KeyPrefix   string `yaml:"key_prefix"`
	DatabaseNum int    `yaml:"database_num"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// TokenizerConfig contains word filter settings
type TokenizerConfig struct {
	MaxTokenLength int    `yaml:"max_token_length"` // tokens this long or longer are dropped
	StopwordsFile  string `yaml:"stopwords_file"`   // empty = built-in English list
}

// ConfidenceConfig contains confidence interval settings
type ConfidenceConfig struct {
	ZScore float64 `yaml:"z_score"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// MilterConfig contains milter server settings
type MilterConfig struct {
	// Network and address for milter socket
	Network string `yaml:"network"` // "tcp" or "unix"
	Address string `yaml:"address"` // "127.0.0.1:7358" or "/tmp/zbayes.sock"

	// Connection settings
	ReadTimeoutMs  int `yaml:"read_timeout_ms"`
	WriteTimeoutMs int `yaml:"write_timeout_ms"`

	GracefulShutdownTimeout int `yaml:"graceful_shutdown_timeout_ms"`

	// Header modifications
	AddHeaders   bool   `yaml:"add_headers"`
	HeaderPrefix string `yaml:"header_prefix"`

	// Reject when the lower bound of the spam interval reaches this probability. 0 disables rejection.
	RejectThreshold float64 `yaml:"reject_threshold"`
	RejectMessage   string  `yaml:"reject_message"`
}

// DefaultConfig returns zbayes default configuration
func DefaultConfig() *Config {
	return &Config{
		Training: TrainingConfig{
			Backend: "dir",
			SpamDir: "spams",
			HamDir:  "hams",
		},
		Redis: RedisConfig{
			RedisURL:    "redis://localhost:6379",
			KeyPrefix:   "zbayes:corpus",
			DatabaseNum: 0,
			TimeoutMs:   5000,
		},
		Tokenizer: TokenizerConfig{
			MaxTokenLength: 10,
		},
		Confidence: ConfidenceConfig{
			ZScore: 1.65,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Milter: MilterConfig{
			Network:                 "tcp",
			Address:                 "127.0.0.1:7358",
			ReadTimeoutMs:           10000,
			WriteTimeoutMs:          10000,
			GracefulShutdownTimeout: 30000,
			AddHeaders:              true,
			HeaderPrefix:            "X-Bayes-",
			RejectThreshold:         0,
			RejectMessage:           "5.7.1 Message rejected as spam",
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// If no config file specified, use defaults
	if configPath != "" {
		if err := config.load(configPath); err != nil {
			return nil, err
		}
	}

	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

func (c *Config) load(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Environment variables overriding file values
const (
	EnvRedisURL = "ZBAYES_REDIS_URL"
	EnvLogLevel = "ZBAYES_LOG_LEVEL"
	EnvSpamDir  = "ZBAYES_SPAM_DIR"
	EnvHamDir   = "ZBAYES_HAM_DIR"
)

// ApplyEnv overrides settings from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.Redis.RedisURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvSpamDir); v != "" {
		c.Training.SpamDir = v
	}
	if v := os.Getenv(EnvHamDir); v != "" {
		c.Training.HamDir = v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Training.Backend {
	case "dir":
		if c.Training.SpamDir == "" || c.Training.HamDir == "" {
			return fmt.Errorf("spam_dir and ham_dir are required for the dir backend")
		}
	case "redis":
		if c.Redis.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the redis backend")
		}
		if c.Redis.KeyPrefix == "" {
			return fmt.Errorf("key_prefix cannot be empty")
		}
	default:
		return fmt.Errorf("unknown training backend: %s", c.Training.Backend)
	}

	if c.Tokenizer.MaxTokenLength < 2 {
		return fmt.Errorf("max_token_length must be >= 2")
	}

	if c.Confidence.ZScore <= 0 {
		return fmt.Errorf("z_score must be positive")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	validLevel := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s", c.Logging.Format)
	}

	if c.Milter.Network != "tcp" && c.Milter.Network != "unix" {
		return fmt.Errorf("milter network must be 'tcp' or 'unix'")
	}
	if c.Milter.Address == "" {
		return fmt.Errorf("milter address cannot be empty")
	}
	if c.Milter.RejectThreshold < 0 || c.Milter.RejectThreshold > 1 {
		return fmt.Errorf("milter reject_threshold must be between 0 and 1")
	}

	return nil
}
