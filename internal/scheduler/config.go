package scheduler

import (
	"time"

	"github.com/enfinitus/onboarding/internal/config"
)

// Config controls scheduler intervals and thresholds.
type Config struct {
	RunInterval           time.Duration
	StaleThreshold        time.Duration
	SagaRecoveryThreshold time.Duration
	JobTimeout            time.Duration
	EnabledJobs           []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:           time.Minute,
		StaleThreshold:        5 * time.Minute,
		SagaRecoveryThreshold: 10 * time.Minute,
		JobTimeout:            30 * time.Second,
	}
}

// ProvideConfig derives the maintenance schedule from the application config.
func ProvideConfig(cfg config.Config) Config {
	return Config{
		RunInterval:           cfg.Verification.SweepInterval,
		StaleThreshold:        cfg.Verification.StaleThreshold,
		SagaRecoveryThreshold: cfg.SagaRecoveryThreshold,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.StaleThreshold <= 0 {
		c.StaleThreshold = defaults.StaleThreshold
	}
	if c.SagaRecoveryThreshold <= 0 {
		c.SagaRecoveryThreshold = defaults.SagaRecoveryThreshold
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
