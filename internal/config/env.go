package config

import (
	"os"
	"strconv"
)

// FromEnv overlays REDSCOUT_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setInt("REDSCOUT_POLL_INTERVAL_MS", &cfg.PollIntervalMs)
	setInt("REDSCOUT_FETCH_LIMIT", &cfg.FetchLimit)
	setStr("REDSCOUT_REDDIT_BASE_URL", &cfg.RedditBaseURL)
	setStr("REDSCOUT_USER_AGENT", &cfg.UserAgent)

	setInt("REDSCOUT_LEASE_TIMEOUT_MS", &cfg.LeaseTimeoutMs)
	setInt("REDSCOUT_RETENTION_MAX_AGE_MS", &cfg.RetentionMaxAgeMs)
	setInt("REDSCOUT_SWEEP_INTERVAL_MS", &cfg.SweepIntervalMs)
	setInt("REDSCOUT_MAX_ATTEMPTS", &cfg.MaxAttempts)

	setInt("REDSCOUT_WORKERS", &cfg.Workers)
	setInt("REDSCOUT_WORKER_POLL_INTERVAL_MS", &cfg.WorkerPollIntervalMs)

	setStr("REDSCOUT_CLASSIFIER_BASE_URL", &cfg.Classifier.BaseURL)
	setStr("REDSCOUT_CLASSIFIER_API_KEY", &cfg.Classifier.APIKey)
	setStr("REDSCOUT_CLASSIFIER_MODEL", &cfg.Classifier.Model)
	setInt("REDSCOUT_CLASSIFIER_TIMEOUT_MS", &cfg.Classifier.TimeoutMs)
}
