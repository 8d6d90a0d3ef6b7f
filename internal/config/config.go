package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Polling
	PollIntervalMs int    `json:"pollIntervalMs"`
	FetchLimit     int    `json:"fetchLimit"`
	RedditBaseURL  string `json:"redditBaseUrl"`
	UserAgent      string `json:"userAgent"`

	// Queue
	LeaseTimeoutMs    int `json:"leaseTimeoutMs"`
	RetentionMaxAgeMs int `json:"retentionMaxAgeMs"`
	SweepIntervalMs   int `json:"sweepIntervalMs"`
	MaxAttempts       int `json:"maxAttempts"`

	// Workers
	Workers              int `json:"workers"`
	WorkerPollIntervalMs int `json:"workerPollIntervalMs"`

	Classifier Classifier `json:"classifier"`
}

// Classifier configures the LLM classification endpoint. An empty BaseURL
// disables the in-process worker pool.
type Classifier struct {
	BaseURL   string `json:"baseUrl"`
	APIKey    string `json:"apiKey"`
	Model     string `json:"model"`
	TimeoutMs int    `json:"timeoutMs"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		PollIntervalMs:       5 * 60 * 1000,
		FetchLimit:           25,
		RedditBaseURL:        "https://www.reddit.com",
		UserAgent:            "redscout/1.0 (keyword monitor)",
		LeaseTimeoutMs:       5 * 60 * 1000,
		RetentionMaxAgeMs:    7 * 24 * 60 * 60 * 1000,
		SweepIntervalMs:      60 * 1000,
		MaxAttempts:          5,
		Workers:              2,
		WorkerPollIntervalMs: 5 * 1000,
		Classifier: Classifier{
			Model:     "gpt-4o-mini",
			TimeoutMs: 30 * 1000,
		},
	}
}

// PollInterval returns the Reddit poll interval as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// LeaseTimeout returns the stuck-lease timeout as a duration.
func (c Config) LeaseTimeout() time.Duration {
	return time.Duration(c.LeaseTimeoutMs) * time.Millisecond
}

// RetentionMaxAge returns the completed-item retention window as a duration.
func (c Config) RetentionMaxAge() time.Duration {
	return time.Duration(c.RetentionMaxAgeMs) * time.Millisecond
}

// SweepInterval returns the maintenance sweep cadence as a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMs) * time.Millisecond
}

// WorkerPollInterval returns the worker no-work sleep as a duration.
func (c Config) WorkerPollInterval() time.Duration {
	return time.Duration(c.WorkerPollIntervalMs) * time.Millisecond
}

// Timeout returns the classifier request timeout as a duration.
func (c Classifier) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
