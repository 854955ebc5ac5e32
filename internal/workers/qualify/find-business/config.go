package findbusiness

import (
	"fmt"
	"time"

	"pos-onboarding-workers/internal/common/config"
	"pos-onboarding-workers/internal/models"
)

type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	MaxJobsActive  int           `mapstructure:"max_jobs_active"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxCandidates  int           `mapstructure:"max_candidates"`
	MaxSuggestions int           `mapstructure:"max_suggestions"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		MaxJobsActive:  5,
		Timeout:        30 * time.Second,
		MaxCandidates:  4,
		MaxSuggestions: 3,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("max_candidates must be positive")
	}
	if c.MaxSuggestions <= 0 || c.MaxSuggestions > c.MaxCandidates {
		return fmt.Errorf("max_suggestions must be between 1 and max_candidates")
	}
	if c.MaxSuggestions > models.MaxBusinessSuggestions {
		return fmt.Errorf("max_suggestions must be at most %d", models.MaxBusinessSuggestions)
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	workerCfg := config.GetWorkerConfig(appConfig, TaskType)
	cfg.Enabled = workerCfg.Enabled
	if workerCfg.MaxJobsActive > 0 {
		cfg.MaxJobsActive = workerCfg.MaxJobsActive
	}
	if workerCfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(workerCfg.Timeout)
	}
	if appConfig.Places.MaxCandidates > 0 {
		cfg.MaxCandidates = appConfig.Places.MaxCandidates
	}
	if appConfig.Places.MaxSuggestions > 0 {
		cfg.MaxSuggestions = appConfig.Places.MaxSuggestions
	}
	return cfg
}
