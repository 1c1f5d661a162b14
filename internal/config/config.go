package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (RAGDESK_*). Missing file is not an error;
// defaults apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// RAGDESK_SERVER_PORT -> server.port, RAGDESK_LLM_PRIMARY_MODEL -> llm.primary.model
	if err := k.Load(env.Provider("RAGDESK_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "RAGDESK_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI:    true,
	ProviderAnthropic: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	for _, m := range []struct {
		name string
		mc   ModelConfig
	}{
		{"llm.primary", c.LLM.Primary},
		{"llm.fallback", c.LLM.Fallback},
	} {
		if m.mc.Provider == "" {
			return fmt.Errorf("%s.provider is required", m.name)
		}
		if !validProviders[m.mc.Provider] {
			return fmt.Errorf("invalid %s.provider %q: must be one of openai, anthropic", m.name, m.mc.Provider)
		}
		if m.mc.Model == "" {
			return fmt.Errorf("%s.model is required", m.name)
		}
	}

	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must be non-negative")
	}

	if c.Embedding.Provider != "" && !validProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding.provider %q", c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}

	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("ingest.batch_size must be at least 1")
	}
	if c.Ingest.Concurrency < 1 {
		return fmt.Errorf("ingest.concurrency must be at least 1")
	}
	if c.Ingest.EmbedRPM < 0 {
		return fmt.Errorf("ingest.embed_rpm must be non-negative")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in range 1-65535")
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}
