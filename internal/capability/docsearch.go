package capability

import (
	"context"
	"errors"
	"strconv"

	"github.com/ziadkadry99/askhub/internal/vectordb"
)

// ErrNoDocuments is returned when document search runs against an empty
// index. It is surfaced to the caller as "no documents indexed" rather
// than an internal error.
var ErrNoDocuments = errors.New("no documents indexed")

// DocSearcher retrieves passages from the operator-ingested vector index.
type DocSearcher struct {
	store vectordb.Store
	topK  int
}

// NewDocSearcher creates the document-index search capability.
func NewDocSearcher(store vectordb.Store, topK int) *DocSearcher {
	if topK < 1 {
		topK = 5
	}
	return &DocSearcher{store: store, topK: topK}
}

func (d *DocSearcher) ID() ID { return DocSearch }

func (d *DocSearcher) Search(ctx context.Context, query string) ([]Passage, error) {
	if d.store.Count() == 0 {
		return nil, ErrNoDocuments
	}

	results, err := d.store.Search(ctx, query, d.topK)
	if err != nil {
		return nil, err
	}

	passages := make([]Passage, 0, len(results))
	for _, r := range results {
		source := r.Entry.Metadata["filename"]
		if source == "" {
			source = "unknown"
		}
		page, _ := strconv.Atoi(r.Entry.Metadata["page"])
		passages = append(passages, Passage{
			Content:  r.Entry.Content,
			Source:   source,
			Page:     page,
			Score:    r.Score,
			Metadata: r.Entry.Metadata,
		})
	}
	return passages, nil
}
