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
// environment variable overrides (ASKHUB_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: ASKHUB_PROVIDER -> provider,
	// ASKHUB_CHUNKING.SIZE -> chunking.size, etc.
	if err := k.Load(env.Provider("ASKHUB_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ASKHUB_"))
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
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderGroq:   true,
}

// validWebClients is the set of recognized web search clients.
var validWebClients = map[WebClientType]bool{
	WebClientDuckDuckGo: true,
	WebClientSerpAPI:    true,
}

// Validate checks that the configuration contains valid values.
// Missing API keys for the selected backends are fatal startup errors;
// there is no request-time recovery for them.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, groq", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.EmbeddingModel == "" {
		return fmt.Errorf("embedding_model is required")
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("embedding_dimension must be positive")
	}
	if c.WebClient != "" && !validWebClients[c.WebClient] {
		return fmt.Errorf("invalid web_client %q: must be one of duckduckgo, serpapi", c.WebClient)
	}
	if c.WebClient == WebClientSerpAPI && os.Getenv("SERPAPI_KEY") == "" {
		return fmt.Errorf("SERPAPI_KEY environment variable is required for web_client serpapi")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive")
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, chunking.size)")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}
	if c.Retrieval.TimeoutSeconds <= 0 {
		return fmt.Errorf("retrieval.timeout_seconds must be positive")
	}
	if c.Routing.RuleConfidence < 0 || c.Routing.RuleConfidence > 1 {
		return fmt.Errorf("routing.rule_confidence must be in [0,1]")
	}
	if c.Routing.LLMConfidenceFallback < 0 || c.Routing.LLMConfidenceFallback > 1 {
		return fmt.Errorf("routing.llm_confidence_fallback must be in [0,1]")
	}
	if c.Audit.MaxEntries <= 0 {
		return fmt.Errorf("audit.max_entries must be positive")
	}
	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGroq:
		return "GROQ_API_KEY"
	default:
		return ""
	}
}
