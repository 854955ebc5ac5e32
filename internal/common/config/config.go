// internal/common/config/config.go
package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Agent         AgentConfig             `mapstructure:"agent"`
	Google        GoogleConfig            `mapstructure:"google"`
	DocumentAI    DocumentAIConfig        `mapstructure:"document_ai"`
	Places        PlacesConfig            `mapstructure:"places"`
	Knowledge     KnowledgeConfig         `mapstructure:"knowledge"`
	GenAI         GenAIConfig             `mapstructure:"genai"`
	WebSearch     WebSearchConfig         `mapstructure:"web_search"`
	KYC           KYCConfig               `mapstructure:"kyc"`
	Artifacts     ArtifactsConfig         `mapstructure:"artifacts"`
	Integrations  IntegrationConfig       `mapstructure:"integrations"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Server        ServerConfig            `mapstructure:"server"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// --- Assistant ---

// AgentConfig feeds the agent instructions and the buy-now link.
type AgentConfig struct {
	CompanyName      string `mapstructure:"company_name"`
	DomainName       string `mapstructure:"domain_name"`
	RootModel        string `mapstructure:"root_model"`
	SubAgentModel    string `mapstructure:"sub_agent_model"`
	ImageEditorModel string `mapstructure:"image_editor_model"`
}

// --- Collaborators ---

// GoogleConfig carries credentials shared by the Google Cloud collaborators.
// AccessToken is meant for local runs; otherwise Application Default
// Credentials are used.
type GoogleConfig struct {
	ProjectID   string `mapstructure:"project_id"`
	AccessToken string `mapstructure:"access_token"`
}

type DocumentAIConfig struct {
	Endpoint                string `mapstructure:"endpoint"`
	IDProofingProcessor     string `mapstructure:"id_proofing_processor"`
	DriversLicenseProcessor string `mapstructure:"drivers_license_processor"`
	BankStatementProcessor  string `mapstructure:"bank_statement_processor"`
	Timeout                 int    `mapstructure:"timeout"` // milliseconds
}

type PlacesConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	MaxCandidates  int    `mapstructure:"max_candidates"`
	MaxSuggestions int    `mapstructure:"max_suggestions"`
	PhotoMaxWidth  int    `mapstructure:"photo_max_width"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds
}

// KnowledgeConfig selects the knowledge answer backend: "discovery" or "elasticsearch".
type KnowledgeConfig struct {
	Backend    string `mapstructure:"backend"`
	BaseURL    string `mapstructure:"base_url"`
	Location   string `mapstructure:"location"`
	EngineID   string `mapstructure:"engine_id"`
	MaxResults int    `mapstructure:"max_results"`
	Index      string `mapstructure:"index"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

type GenAIConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
	MaxRetries int    `mapstructure:"max_retries"`
}

type WebSearchConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	EngineID   string `mapstructure:"engine_id"`
	MaxResults int    `mapstructure:"max_results"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

// KYCConfig controls which fraud signals gate a driver's license.
type KYCConfig struct {
	FraudSignals []string `mapstructure:"fraud_signals"`
}

type ArtifactsConfig struct {
	KeyPrefix string `mapstructure:"key_prefix"`
	TTL       int    `mapstructure:"ttl"` // seconds
}

// TTLDuration returns the artifact TTL as a duration.
func (a ArtifactsConfig) TTLDuration() time.Duration {
	return time.Duration(a.TTL) * time.Second
}

// IntegrationConfig holds settings for the CRM and notification channels.
type IntegrationConfig struct {
	Zoho struct {
		BaseURL   string `mapstructure:"base_url"`
		APIKey    string `mapstructure:"api_key"`
		AuthToken string `mapstructure:"oauth_token"`
	} `mapstructure:"zoho"`
	AWS AWSConfig `mapstructure:"aws"`
}

// AWSConfig switches the sales notification channels.
type AWSConfig struct {
	Region string `mapstructure:"region"`
	SES    struct {
		Enabled    bool   `mapstructure:"enabled"`
		FromEmail  string `mapstructure:"from_email"`
		SalesEmail string `mapstructure:"sales_email"`
	} `mapstructure:"ses"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}
