package embeddings

import "context"

// Embedder defines the interface for the text-embedding collaborator.
// The dimension is fixed for the lifetime of an index; the vector store
// rejects vectors whose dimension does not match its configuration.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the name/identifier of the embedding model.
	Name() string
}
