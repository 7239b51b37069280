// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
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

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	APIKey      string  `yaml:"api_key"`
	APIBase     string  `yaml:"api_base"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

type MediaConfig struct {
	FFmpegPath        string        `yaml:"ffmpeg_path"`
	WhisperPath       string        `yaml:"whisper_path"`
	WhisperModel      string        `yaml:"whisper_model"`
	WhisperDevice     string        `yaml:"whisper_device"`
	VADFilter         bool          `yaml:"vad_filter"`
	WorkDir           string        `yaml:"work_dir"`
	TimeoutBase       time.Duration `yaml:"timeout_base"`
	TimeoutMultiplier float64       `yaml:"timeout_multiplier"`
}

type TranslateConfig struct {
	TargetLanguage string        `yaml:"target_language"`
	ChunkSize      int           `yaml:"chunk_size"`
	Workers        int           `yaml:"workers"`
	MaxRetries     int           `yaml:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	Summarize      bool          `yaml:"summarize"`
	BurnIn         bool          `yaml:"burn_in"`
}

type BillingConfig struct {
	// Price in cents charged per 100 translated characters.
	UnitPriceCents int64 `yaml:"unit_price_cents"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Media     MediaConfig     `yaml:"media"`
	Translate TranslateConfig `yaml:"translate"`
	Billing   BillingConfig   `yaml:"billing"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.AI.APIBase == "" {
		cfg.AI.APIBase = "https://api.openai.com/v1"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.Media.FFmpegPath == "" {
		cfg.Media.FFmpegPath = "ffmpeg"
	}
	if cfg.Media.WhisperPath == "" {
		cfg.Media.WhisperPath = "whisper"
	}
	if cfg.Media.WhisperModel == "" {
		cfg.Media.WhisperModel = "base"
	}
	if cfg.Media.WhisperDevice == "" {
		cfg.Media.WhisperDevice = "cpu"
	}
	if cfg.Media.WorkDir == "" {
		cfg.Media.WorkDir = "data"
	}
	if cfg.Media.TimeoutBase <= 0 {
		cfg.Media.TimeoutBase = 10 * time.Minute
	}
	if cfg.Media.TimeoutMultiplier <= 0 {
		cfg.Media.TimeoutMultiplier = 3
	}
	if cfg.Translate.TargetLanguage == "" {
		cfg.Translate.TargetLanguage = "English"
	}
	if cfg.Translate.ChunkSize <= 0 {
		cfg.Translate.ChunkSize = 15
	}
	if cfg.Translate.Workers <= 0 {
		cfg.Translate.Workers = 5
	}
	if cfg.Translate.MaxRetries <= 0 {
		cfg.Translate.MaxRetries = 1
	}
	if cfg.Translate.RetryDelay <= 0 {
		cfg.Translate.RetryDelay = time.Second
	}
	if cfg.Billing.UnitPriceCents <= 0 {
		cfg.Billing.UnitPriceCents = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)

	// Minimal validation
	if cfg.AI.APIKey == "" {
		return nil, errors.New("ai.api_key is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
