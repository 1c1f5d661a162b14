package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
)

// ModelConfig names one configured chat model endpoint.
type ModelConfig struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
}

// LLMConfig holds the two-model invocation setup. Attempt one always goes to
// Primary; retries go to Fallback.
type LLMConfig struct {
	Primary    ModelConfig `yaml:"primary" koanf:"primary"`
	Fallback   ModelConfig `yaml:"fallback" koanf:"fallback"`
	MaxRetries int         `yaml:"max_retries" koanf:"max_retries"`
}

// EmbeddingConfig selects the embedding provider and model. Queries and
// corpus chunks must always be embedded with the same model.
type EmbeddingConfig struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`
}

// IngestConfig tunes the document ingestion pipeline.
type IngestConfig struct {
	BatchSize   int `yaml:"batch_size" koanf:"batch_size"`
	Concurrency int `yaml:"concurrency" koanf:"concurrency"`
	// EmbedRPM rate-limits embedding requests per minute. 0 disables limiting.
	EmbedRPM int `yaml:"embed_rpm" koanf:"embed_rpm"`
}

// TicketingConfig configures the helpdesk adapter used for ticket creation.
type TicketingConfig struct {
	// Platform is "freshdesk" or "memory" (testing).
	Platform string `yaml:"platform" koanf:"platform"`
	Domain   string `yaml:"domain" koanf:"domain"`
}

// CRMConfig configures the lead-creation client used by agent tools.
type CRMConfig struct {
	// Platform is "zoho" or "memory" (testing).
	Platform string `yaml:"platform" koanf:"platform"`
	BaseURL  string `yaml:"base_url" koanf:"base_url"`
	AuthURL  string `yaml:"auth_url" koanf:"auth_url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// Config is the top-level ragdesk configuration, corresponding to .ragdesk.yml.
type Config struct {
	LLM       LLMConfig       `yaml:"llm" koanf:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding" koanf:"embedding"`
	Ingest    IngestConfig    `yaml:"ingest" koanf:"ingest"`
	Ticketing TicketingConfig `yaml:"ticketing" koanf:"ticketing"`
	CRM       CRMConfig       `yaml:"crm" koanf:"crm"`
	Server    ServerConfig    `yaml:"server" koanf:"server"`
	// DataDir holds the SQLite database and the persisted vector store.
	DataDir string `yaml:"data_dir" koanf:"data_dir"`
}
