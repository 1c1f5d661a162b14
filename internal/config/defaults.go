package config

// DefaultConfig returns a Config with sensible defaults: OpenAI as the
// primary model with an Anthropic fallback, one retry, and embedding with
// text-embedding-3-small.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Primary:    ModelConfig{Provider: ProviderOpenAI, Model: "gpt-4o-mini"},
			Fallback:   ModelConfig{Provider: ProviderAnthropic, Model: "claude-3-5-sonnet-latest"},
			MaxRetries: 1,
		},
		Embedding: EmbeddingConfig{
			Provider: ProviderOpenAI,
			Model:    "text-embedding-3-small",
		},
		Ingest: IngestConfig{
			BatchSize:   20,
			Concurrency: 1,
			EmbedRPM:    0,
		},
		Ticketing: TicketingConfig{
			Platform: "freshdesk",
		},
		CRM: CRMConfig{
			Platform: "zoho",
			BaseURL:  "https://www.zohoapis.com",
			AuthURL:  "https://accounts.zoho.com",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		DataDir: ".ragdesk",
	}
}
