package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	AuthSecret     string        `yaml:"auth_secret"` // HS256 secret; empty disables auth
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// SubmitRateLimit caps job submissions per client per minute; 0 disables.
	SubmitRateLimit int `yaml:"submit_rate_limit"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type HistoryConfig struct {
	Backend string `yaml:"backend"` // redis | postgres
	Limit   int    `yaml:"limit"`
}

type TranscriptConfig struct {
	BaseURL     string        `yaml:"base_url"`
	RefererBase string        `yaml:"referer_base"`
	UserAgent   string        `yaml:"user_agent"`
	Timeout     time.Duration `yaml:"timeout"`
}

type AIConfig struct {
	Provider      string `yaml:"provider"` // gemini | openai | noop
	Model         string `yaml:"model"`
	GeminiURL     string `yaml:"gemini_url"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	TokenEncoding string `yaml:"token_encoding"` // tiktoken encoding for prompt estimates; empty disables
}

type GenerationConfig struct {
	Workers         int           `yaml:"workers"`
	DistributedLock bool          `yaml:"distributed_lock"`
	LockTTL         time.Duration `yaml:"lock_ttl"`
}

type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type Config struct {
	Log        LogConfig        `yaml:"log"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	History    HistoryConfig    `yaml:"history"`
	Transcript TranscriptConfig `yaml:"transcript"`
	AI         AIConfig         `yaml:"ai"`
	Generation GenerationConfig `yaml:"generation"`
	Poller     PollerConfig     `yaml:"poller"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	DefaultTranscriptBaseURL = "https://echo360.net.au/api/ui/echoplayer/lessons"
	DefaultRefererBase       = "https://echo360.net.au/lesson"
	DefaultUserAgent         = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"
	DefaultModel             = "gemini-2.5-flash"
	DefaultPollInterval      = 2 * time.Second
)

// LoadConfig reads the YAML file at path and fills defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, dev)
}

// Parse decodes raw YAML, applies defaults and validates.
func Parse(b []byte, dev bool) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 15 * time.Second
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.History.Backend = strings.ToLower(strings.TrimSpace(cfg.History.Backend))
	if cfg.History.Backend == "" {
		cfg.History.Backend = "redis"
	}
	if cfg.History.Limit <= 0 {
		cfg.History.Limit = 50
	}
	if cfg.Transcript.BaseURL == "" {
		cfg.Transcript.BaseURL = DefaultTranscriptBaseURL
	}
	if cfg.Transcript.RefererBase == "" {
		cfg.Transcript.RefererBase = DefaultRefererBase
	}
	if cfg.Transcript.UserAgent == "" {
		cfg.Transcript.UserAgent = DefaultUserAgent
	}
	if cfg.Transcript.Timeout <= 0 {
		cfg.Transcript.Timeout = 30 * time.Second
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.Model == "" {
		switch cfg.AI.Provider {
		case "openai":
			cfg.AI.Model = "gpt-4o-mini"
		case "noop":
			cfg.AI.Model = "noop-model"
		default:
			cfg.AI.Model = DefaultModel
		}
	}
	if cfg.Generation.Workers <= 0 {
		cfg.Generation.Workers = 2
	}
	if cfg.Generation.LockTTL <= 0 {
		cfg.Generation.LockTTL = 10 * time.Minute
	}
	if cfg.Poller.Interval <= 0 {
		cfg.Poller.Interval = DefaultPollInterval
	}
}

func (cfg *Config) validate() error {
	if cfg.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	switch cfg.History.Backend {
	case "redis":
	case "postgres":
		if cfg.Database.URL == "" {
			return errors.New("database.url is required when history.backend is postgres")
		}
	default:
		return fmt.Errorf("history.backend %q not supported (redis|postgres)", cfg.History.Backend)
	}
	switch cfg.AI.Provider {
	case "gemini", "openai":
	case "noop":
		if !cfg.Runtime.Dev {
			return errors.New("ai.provider noop is only allowed with -dev")
		}
	default:
		return fmt.Errorf("ai.provider %q not supported (gemini|openai|noop)", cfg.AI.Provider)
	}
	return nil
}
