package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ziadkadry99/askhub/internal/audit"
	"github.com/ziadkadry99/askhub/internal/capability"
	"github.com/ziadkadry99/askhub/internal/chunker"
	"github.com/ziadkadry99/askhub/internal/config"
	"github.com/ziadkadry99/askhub/internal/db"
	"github.com/ziadkadry99/askhub/internal/embeddings"
	"github.com/ziadkadry99/askhub/internal/ingest"
	"github.com/ziadkadry99/askhub/internal/llm"
	"github.com/ziadkadry99/askhub/internal/orchestrator"
	"github.com/ziadkadry99/askhub/internal/router"
	"github.com/ziadkadry99/askhub/internal/vectordb"
)

// providerRPM caps completion requests per minute, sized for free-tier
// provider limits.
const providerRPM = 60

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `askhub init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// createProviderFromConfig creates the rate-limited completion provider.
func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedProvider(provider, providerRPM), nil
}

// createEmbedderFromConfig creates the embedder. Embeddings always go
// through OpenAI, regardless of the completion provider.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for embeddings")
	}
	return embeddings.NewOpenAIEmbedder(apiKey, cfg.EmbeddingModel, cfg.EmbeddingDimension), nil
}

// createStoreFromConfig creates the vector store and restores any persisted
// index from the data directory.
func createStoreFromConfig(cfg *config.Config, embedder embeddings.Embedder) *vectordb.FlatStore {
	store := vectordb.NewFlatStore(embedder, filepath.Join(cfg.DataDir, "index"))
	if store.Load() && verbose {
		log.Printf("restored index with %d entries", store.Count())
	}
	return store
}

// createCapabilities wires every retrieval capability from config.
func createCapabilities(cfg *config.Config, store vectordb.Store) ([]capability.Capability, error) {
	var webClient capability.WebClient
	switch cfg.WebClient {
	case config.WebClientSerpAPI:
		apiKey := os.Getenv("SERPAPI_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("SERPAPI_KEY environment variable is required for the serpapi web client")
		}
		webClient = capability.NewSerpAPIClient(apiKey)
	default:
		webClient = capability.NewDuckDuckGoClient()
	}

	return []capability.Capability{
		capability.NewDocSearcher(store, cfg.Retrieval.TopK),
		capability.NewWebSearcher(webClient, cfg.WebMaxResults),
		capability.NewPaperSearcher(capability.NewArxivClient(), cfg.ArxivMaxResults),
	}, nil
}

// createPipelineFromConfig creates the ingestion pipeline.
func createPipelineFromConfig(cfg *config.Config, store vectordb.Store) *ingest.Pipeline {
	ch := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	return ingest.NewPipeline([]ingest.Extractor{ingest.NewTextExtractor()}, ch, store)
}

// createOrchestratorFromConfig assembles the full query stack. The returned
// db.DB must be closed by the caller.
func createOrchestratorFromConfig(cfg *config.Config) (*orchestrator.Orchestrator, *ingest.Pipeline, *vectordb.FlatStore, *audit.Store, *db.DB, error) {
	provider, err := createProviderFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	store := createStoreFromConfig(cfg, embedder)
	caps, err := createCapabilities(cfg, store)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}

	database, err := db.Open(filepath.Join(cfg.DataDir, "askhub.db"))
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}
	auditLog := audit.NewStore(database, cfg.Audit.MaxEntries)

	orch := orchestrator.New(
		router.New(provider, cfg.Routing),
		caps,
		provider,
		store,
		auditLog,
		cfg.Retrieval,
	)

	pipeline := createPipelineFromConfig(cfg, store)
	return orch, pipeline, store, auditLog, database, nil
}
