package vectordb

import "context"

// Document is a piece of content to be embedded and indexed.
type Document struct {
	Content  string
	Metadata map[string]string
}

// Entry is an indexed document as stored: its content, metadata and ordinal
// position. DocID is stable only within a single index lifetime; rebuilding
// the index reassigns ids.
type Entry struct {
	Content  string
	Metadata map[string]string
	DocID    int
}

// SearchResult pairs an entry with its distance-derived relevance score.
type SearchResult struct {
	Entry    Entry
	Score    float64
	Distance float64
}

// Stats describes the current index state.
type Stats struct {
	Entries   int      `json:"entries"`
	Dimension int      `json:"dimension"`
	Sources   []string `json:"sources"`
}

// Store defines the vector index contract consumed by retrieval and
// ingestion. Implementations must keep the vector index and its parallel
// metadata store equal in length at all times.
type Store interface {
	// Add embeds and indexes documents. The call is atomic: either every
	// document is committed or none is.
	Add(ctx context.Context, docs []Document) error

	// Search returns the k nearest entries to the query, ranked by
	// descending score. An empty index yields an empty result, not an error.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// ReplaceSource swaps all entries whose filename metadata matches
	// source with the given documents in one step. The previous entries
	// survive untouched if embedding the new batch fails.
	ReplaceSource(ctx context.Context, source string, docs []Document) error

	// DeleteBySource removes all entries whose filename metadata matches
	// source. The backing index has no native delete, so this rebuilds the
	// index without the matching entries; callers must treat it as an
	// expensive, blocking operation.
	DeleteBySource(source string) error

	// Clear removes all entries.
	Clear()

	// Save persists the index and its metadata as a pair.
	Save() error

	// Count returns the number of indexed entries.
	Count() int

	// Stats returns aggregate information about the index.
	Stats() Stats
}
