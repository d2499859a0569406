package capability

import "context"

// Capability is one pluggable retrieval strategy: given a query it returns
// ranked passages. Implementations must respect ctx cancellation and
// deadlines; no capability may block indefinitely.
type Capability interface {
	ID() ID
	Search(ctx context.Context, query string) ([]Passage, error)
}
