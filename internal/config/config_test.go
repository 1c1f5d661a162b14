package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.LLM.Primary.Provider == cfg.LLM.Fallback.Provider {
		t.Error("default primary and fallback should use different providers")
	}
	if cfg.Ingest.BatchSize != 20 {
		t.Errorf("expected default batch size 20, got %d", cfg.Ingest.BatchSize)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Primary.Model != "gpt-4o-mini" {
		t.Errorf("expected default primary model, got %q", cfg.LLM.Primary.Model)
	}
}

func TestLoadYAMLAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ragdesk.yml")
	content := `
llm:
  primary:
    provider: openai
    model: gpt-4o
server:
  port: 9000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("RAGDESK_SERVER_PORT", "9001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Primary.Model != "gpt-4o" {
		t.Errorf("expected primary model from file, got %q", cfg.LLM.Primary.Model)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("expected env override port 9001, got %d", cfg.Server.Port)
	}
	// Untouched sections keep their defaults.
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %q", cfg.Embedding.Model)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.LLM.Primary.Provider = "google" }},
		{"empty model", func(c *Config) { c.LLM.Fallback.Model = "" }},
		{"negative retries", func(c *Config) { c.LLM.MaxRetries = -1 }},
		{"zero batch size", func(c *Config) { c.Ingest.BatchSize = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"empty embedding model", func(c *Config) { c.Embedding.Model = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ragdesk.yml")

	cfg := DefaultConfig()
	cfg.Server.Port = 1234
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Server.Port != 1234 {
		t.Errorf("expected port 1234 after round trip, got %d", loaded.Server.Port)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("unexpected env var %q", got)
	}
	if got := APIKeyEnvVar(ProviderAnthropic); got != "ANTHROPIC_API_KEY" {
		t.Errorf("unexpected env var %q", got)
	}
	if got := APIKeyEnvVar("other"); got != "" {
		t.Errorf("expected empty for unknown provider, got %q", got)
	}
}
