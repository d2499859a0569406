package llm

import (
	"fmt"
	"os"

	"github.com/ziadkadry99/askhub/internal/config"
)

// NewProvider creates an LLM provider from the configuration. The API key is
// read from the provider's conventional environment variable; a missing key
// is a fatal configuration error.
func NewProvider(cfg *config.Config) (Provider, error) {
	envVar := config.APIKeyEnvVar(cfg.Provider)
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s environment variable is not set", envVar)
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(apiKey, cfg.Model), nil
	case config.ProviderGroq:
		return NewGroqProvider(apiKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}
}
