package llm

import (
	"fmt"
	"os"

	"github.com/ragdesk/ragdesk/internal/config"
)

// NewProvider creates an LLM provider for the given model endpoint, reading
// the provider's API key from its conventional environment variable.
func NewProvider(mc config.ModelConfig) (Provider, error) {
	switch mc.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, mc.Model), nil

	case config.ProviderAnthropic:
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, mc.Model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", mc.Provider)
	}
}
