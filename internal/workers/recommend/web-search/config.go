package websearch

import (
	"fmt"
	"time"

	"pos-onboarding-workers/internal/common/config"
)

type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxJobsActive   int           `mapstructure:"max_jobs_active"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxResults      int           `mapstructure:"max_results"`
	MinRelevance    float64       `mapstructure:"min_relevance"`
	PreferredDomain string        `mapstructure:"preferred_domain"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       10 * time.Second,
		MaxResults:    5,
		MinRelevance:  1.0,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.MaxResults <= 0 || c.MaxResults > 10 {
		return fmt.Errorf("max_results must be between 1 and 10")
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
	} else if appConfig.WebSearch.Timeout > 0 {
		cfg.Timeout = config.GetDuration(appConfig.WebSearch.Timeout)
	}
	if appConfig.WebSearch.MaxResults > 0 {
		cfg.MaxResults = appConfig.WebSearch.MaxResults
	}
	cfg.PreferredDomain = appConfig.Agent.DomainName
	return cfg
}
