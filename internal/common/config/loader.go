// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultCompanyName = "ACME Corp"
	DefaultDomainName  = "clover.com"

	KnowledgeBackendDiscovery     = "discovery"
	KnowledgeBackendElasticsearch = "elasticsearch"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml over it
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env", "../../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		switch val := v.Get(key).(type) {
		case string:
			if hasPlaceholder(val) {
				v.Set(key, os.ExpandEnv(val))
			}
		case []interface{}:
			out := make([]string, 0, len(val))
			for _, item := range val {
				s := fmt.Sprint(item)
				if hasPlaceholder(s) {
					s = os.ExpandEnv(s)
				}
				if s != "" {
					out = append(out, s)
				}
			}
			v.Set(key, out)
		}
	}
}

func hasPlaceholder(s string) bool {
	return strings.Contains(s, "${") || (strings.HasPrefix(s, "$") && len(s) > 1)
}

func fromEnv(dst *string, names ...string) {
	if *dst != "" {
		return
	}
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			*dst = val
			return
		}
	}
}

// overrideEmptyConfig fills values the assistant historically read straight
// from the environment.
func overrideEmptyConfig(cfg *Config) {
	fromEnv(&cfg.Agent.CompanyName, "AGENT_COMPANY_NAME")
	fromEnv(&cfg.Agent.DomainName, "AGENT_DOMAIN_NAME")

	fromEnv(&cfg.Google.ProjectID, "GOOGLE_CLOUD_PROJECT")
	fromEnv(&cfg.Google.AccessToken, "GOOGLE_ACCESS_TOKEN")

	fromEnv(&cfg.DocumentAI.IDProofingProcessor, "ID_PROOFING_PROCESSOR_FULLPATH")
	fromEnv(&cfg.DocumentAI.DriversLicenseProcessor, "DL_PROCESSOR_FULLPATH")
	fromEnv(&cfg.DocumentAI.BankStatementProcessor, "BANK_STATEMENT_PROCESSOR_FULLPATH")

	fromEnv(&cfg.Places.APIKey, "GOOGLE_PLACES_API_KEY")

	fromEnv(&cfg.Knowledge.Location, "VERTEX_AI_SEARCH_LOCATION")
	fromEnv(&cfg.Knowledge.EngineID, "VERTEX_AI_SEARCH_ENGINE_ID")

	fromEnv(&cfg.GenAI.APIKey, "GOOGLE_API_KEY", "GENAI_API_KEY")

	fromEnv(&cfg.WebSearch.APIKey, "WEB_SEARCH_API_KEY")
	fromEnv(&cfg.WebSearch.EngineID, "WEB_SEARCH_ENGINE_ID")

	fromEnv(&cfg.Integrations.Zoho.APIKey, "ZOHO_CRM_API_KEY")
	fromEnv(&cfg.Integrations.Zoho.AuthToken, "ZOHO_CRM_OAUTH_TOKEN")

	fromEnv(&cfg.Database.Postgres.User, "DB_USER")
	fromEnv(&cfg.Database.Postgres.Password, "DB_PASSWORD")
}

func applyDefaults(cfg *Config) {
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Workers == nil {
		cfg.Workers = map[string]WorkerConfig{}
	}
	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}

	if cfg.Agent.CompanyName == "" {
		cfg.Agent.CompanyName = DefaultCompanyName
	}
	if cfg.Agent.DomainName == "" {
		cfg.Agent.DomainName = DefaultDomainName
	}
	if cfg.Agent.RootModel == "" {
		cfg.Agent.RootModel = "gemini-2.0-flash"
	}
	if cfg.Agent.SubAgentModel == "" {
		cfg.Agent.SubAgentModel = "gemini-2.0-flash"
	}
	if cfg.Agent.ImageEditorModel == "" {
		cfg.Agent.ImageEditorModel = "gemini-2.0-flash-exp"
	}

	if cfg.DocumentAI.Endpoint == "" {
		cfg.DocumentAI.Endpoint = "https://us-documentai.googleapis.com"
	}
	if cfg.DocumentAI.Timeout == 0 {
		cfg.DocumentAI.Timeout = 30000
	}

	if cfg.Places.BaseURL == "" {
		cfg.Places.BaseURL = "https://maps.googleapis.com/maps/api/place"
	}
	if cfg.Places.MaxCandidates == 0 {
		cfg.Places.MaxCandidates = 4
	}
	if cfg.Places.MaxSuggestions == 0 {
		cfg.Places.MaxSuggestions = 3
	}
	if cfg.Places.PhotoMaxWidth == 0 {
		cfg.Places.PhotoMaxWidth = 400
	}
	if cfg.Places.Timeout == 0 {
		cfg.Places.Timeout = 10000
	}

	if cfg.Knowledge.Backend == "" {
		cfg.Knowledge.Backend = KnowledgeBackendDiscovery
	}
	if cfg.Knowledge.BaseURL == "" {
		cfg.Knowledge.BaseURL = "https://discoveryengine.googleapis.com"
	}
	if cfg.Knowledge.Location == "" {
		cfg.Knowledge.Location = "global"
	}
	if cfg.Knowledge.MaxResults == 0 {
		cfg.Knowledge.MaxResults = 3
	}
	if cfg.Knowledge.Index == "" {
		cfg.Knowledge.Index = "product_knowledge"
	}
	if cfg.Knowledge.Timeout == 0 {
		cfg.Knowledge.Timeout = 30000
	}

	if cfg.GenAI.BaseURL == "" {
		cfg.GenAI.BaseURL = "https://generativelanguage.googleapis.com"
	}
	if cfg.GenAI.Timeout == 0 {
		cfg.GenAI.Timeout = 60000
	}
	if cfg.GenAI.MaxRetries == 0 {
		cfg.GenAI.MaxRetries = 3
	}

	if cfg.WebSearch.BaseURL == "" {
		cfg.WebSearch.BaseURL = "https://www.googleapis.com/customsearch/v1"
	}
	if cfg.WebSearch.MaxResults == 0 {
		cfg.WebSearch.MaxResults = 5
	}
	if cfg.WebSearch.Timeout == 0 {
		cfg.WebSearch.Timeout = 10000
	}

	if cfg.Artifacts.KeyPrefix == "" {
		cfg.Artifacts.KeyPrefix = "artifact"
	}
	if cfg.Artifacts.TTL == 0 {
		cfg.Artifacts.TTL = int((24 * time.Hour).Seconds())
	}

	if cfg.Integrations.Zoho.BaseURL == "" {
		cfg.Integrations.Zoho.BaseURL = "https://www.zohoapis.com/crm/v3"
	}
	if cfg.Integrations.AWS.Region == "" {
		cfg.Integrations.AWS.Region = "us-east-1"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "pos-onboarding-workers"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
}

// validateConfig checks infrastructure only. Collaborator identifiers are
// validated by the operation that needs them.
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	switch cfg.Knowledge.Backend {
	case KnowledgeBackendDiscovery:
	case KnowledgeBackendElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required for the elasticsearch knowledge backend")
		}
	default:
		return fmt.Errorf("knowledge.backend must be %q or %q, got %q",
			KnowledgeBackendDiscovery, KnowledgeBackendElasticsearch, cfg.Knowledge.Backend)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// WorkerKey maps a task type to its key under "workers". Viper splits keys on
// dots, so "kyc.license.extract" is configured as "kyc-license-extract".
func WorkerKey(taskType string) string {
	return strings.ToLower(strings.ReplaceAll(taskType, ".", "-"))
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, taskType string) WorkerConfig {
	if worker, exists := cfg.Workers[WorkerKey(taskType)]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled reports whether a worker should be started. Workers absent
// from the config are enabled.
func IsWorkerEnabled(cfg *Config, taskType string) bool {
	if worker, exists := cfg.Workers[WorkerKey(taskType)]; exists {
		return worker.Enabled
	}
	return true
}
