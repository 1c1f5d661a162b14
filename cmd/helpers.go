package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ragdesk/ragdesk/internal/config"
	"github.com/ragdesk/ragdesk/internal/crm"
	"github.com/ragdesk/ragdesk/internal/embeddings"
	"github.com/ragdesk/ragdesk/internal/knowledge"
	"github.com/ragdesk/ragdesk/internal/llm"
	"github.com/ragdesk/ragdesk/internal/log"
	"github.com/ragdesk/ragdesk/internal/ticketing"
	"github.com/ragdesk/ragdesk/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `ragdesk init` to create a config file", err)
	}
	return cfg, nil
}

// newLogger builds the process logger honoring the --verbose flag.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level})
}

// buildEmbedder creates the configured embedder, rate limited if requested.
func buildEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for embeddings")
	}
	embedder := embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.Embedding.Model))
	return embeddings.NewRateLimitedEmbedder(embedder, cfg.Ingest.EmbedRPM), nil
}

// buildLLMClient creates the model invocation client with primary and
// fallback providers.
func buildLLMClient(cfg *config.Config, logger *slog.Logger) (*llm.Client, error) {
	primary, err := llm.NewProvider(cfg.LLM.Primary)
	if err != nil {
		return nil, fmt.Errorf("creating primary provider: %w", err)
	}
	fallback, err := llm.NewProvider(cfg.LLM.Fallback)
	if err != nil {
		return nil, fmt.Errorf("creating fallback provider: %w", err)
	}
	return llm.NewClient(primary, fallback, cfg.LLM.MaxRetries, logger), nil
}

// buildTicketing selects the helpdesk adapter from config.
func buildTicketing(cfg *config.Config) (ticketing.Adapter, error) {
	switch cfg.Ticketing.Platform {
	case "freshdesk":
		apiKey := os.Getenv("FRESHDESK_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("FRESHDESK_API_KEY environment variable is required for freshdesk ticketing")
		}
		if cfg.Ticketing.Domain == "" {
			return nil, fmt.Errorf("ticketing.domain is required for freshdesk ticketing")
		}
		return ticketing.NewFreshdeskAdapter(cfg.Ticketing.Domain, apiKey), nil
	case "memory", "":
		return ticketing.NewMemoryAdapter(), nil
	default:
		return nil, fmt.Errorf("unknown ticketing platform %q", cfg.Ticketing.Platform)
	}
}

// buildCRM selects the lead client from config.
func buildCRM(cfg *config.Config) (crm.LeadClient, error) {
	switch cfg.CRM.Platform {
	case "zoho":
		creds := crm.ZohoCredentials{
			ClientID:     os.Getenv("ZOHO_CLIENT_ID"),
			ClientSecret: os.Getenv("ZOHO_CLIENT_SECRET"),
			RefreshToken: os.Getenv("ZOHO_REFRESH_TOKEN"),
		}
		if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
			return nil, fmt.Errorf("ZOHO_CLIENT_ID, ZOHO_CLIENT_SECRET and ZOHO_REFRESH_TOKEN are required for zoho crm")
		}
		return crm.NewZohoClient(cfg.CRM.BaseURL, cfg.CRM.AuthURL, creds), nil
	case "memory", "":
		return crm.NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("unknown crm platform %q", cfg.CRM.Platform)
	}
}

// openDatabase opens the SQLite registry in the data directory.
func openDatabase(cfg *config.Config) (*knowledge.DB, error) {
	return knowledge.Open(filepath.Join(cfg.DataDir, "ragdesk.db"))
}

// vectorDir is where the vector store persists its data.
func vectorDir(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "vectordb")
}

// openVectorStore creates the chromem store and loads persisted data when
// present.
func openVectorStore(cfg *config.Config, embedder embeddings.Embedder, logger *slog.Logger) (vectordb.Store, error) {
	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	dir := vectorDir(cfg)
	if _, statErr := os.Stat(filepath.Join(dir, "chromem.gob.gz")); statErr == nil {
		if err := store.Load(context.Background(), dir); err != nil {
			logger.Warn("could not load vector store", "dir", dir, "error", err)
		}
	}
	return store, nil
}
