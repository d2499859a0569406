package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:           ProviderGroq,
		Model:              "llama-3.3-70b-versatile",
		EmbeddingModel:     "text-embedding-3-small",
		EmbeddingDimension: 1536,
		WebClient:          WebClientDuckDuckGo,
		WebMaxResults:      5,
		ArxivMaxResults:    5,
		DataDir:            "data",
		Port:               8080,
		Chunking: ChunkingConfig{
			Size:    500,
			Overlap: 50,
		},
		Retrieval: RetrievalConfig{
			TopK:              5,
			PassagesPerSource: 3,
			MaxSources:        10,
			TimeoutSeconds:    20,
		},
		Routing: RoutingConfig{
			RuleConfidence:        0.7,
			LLMConfidenceFallback: 0.8,
			UseLLM:                true,
		},
		Audit: AuditConfig{
			MaxEntries: 1000,
		},
	}
}
