package config

// ProviderType identifies an LLM/embedding provider backend.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGroq   ProviderType = "groq"
)

// WebClientType identifies the live-web search collaborator.
type WebClientType string

const (
	WebClientDuckDuckGo WebClientType = "duckduckgo"
	WebClientSerpAPI    WebClientType = "serpapi"
)

// Config is the top-level askhub configuration, corresponding to .askhub.yml.
type Config struct {
	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`

	EmbeddingModel     string `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingDimension int    `yaml:"embedding_dimension" koanf:"embedding_dimension"`

	WebClient       WebClientType `yaml:"web_client" koanf:"web_client"`
	WebMaxResults   int           `yaml:"web_max_results" koanf:"web_max_results"`
	ArxivMaxResults int           `yaml:"arxiv_max_results" koanf:"arxiv_max_results"`

	DataDir string `yaml:"data_dir" koanf:"data_dir"`
	Port    int    `yaml:"port" koanf:"port"`

	Chunking  ChunkingConfig  `yaml:"chunking" koanf:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval" koanf:"retrieval"`
	Routing   RoutingConfig   `yaml:"routing" koanf:"routing"`
	Audit     AuditConfig     `yaml:"audit" koanf:"audit"`
}

// ChunkingConfig controls how ingested documents are split.
type ChunkingConfig struct {
	Size    int `yaml:"size" koanf:"size"`
	Overlap int `yaml:"overlap" koanf:"overlap"`
}

// RetrievalConfig controls retrieval fan-out and aggregation.
type RetrievalConfig struct {
	TopK              int `yaml:"top_k" koanf:"top_k"`
	PassagesPerSource int `yaml:"passages_per_source" koanf:"passages_per_source"`
	MaxSources        int `yaml:"max_sources" koanf:"max_sources"`
	TimeoutSeconds    int `yaml:"timeout_seconds" koanf:"timeout_seconds"`
}

// RoutingConfig controls the routing decision engine.
type RoutingConfig struct {
	// RuleConfidence is reported for rule-based decisions. It is deliberately
	// lower than typical LLM confidences so downstream metrics can tell the
	// two strategies apart.
	RuleConfidence float64 `yaml:"rule_confidence" koanf:"rule_confidence"`
	// LLMConfidenceFallback is used when the LLM reply omits a parsable
	// CONFIDENCE field.
	LLMConfidenceFallback float64 `yaml:"llm_confidence_fallback" koanf:"llm_confidence_fallback"`
	// UseLLM disables the LLM routing stage entirely when false, leaving only
	// the deterministic rules.
	UseLLM bool `yaml:"use_llm" koanf:"use_llm"`
}

// AuditConfig controls the bounded request log.
type AuditConfig struct {
	MaxEntries int `yaml:"max_entries" koanf:"max_entries"`
}
