package ingest

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/ziadkadry99/askhub/internal/chunker"
	"github.com/ziadkadry99/askhub/internal/vectordb"
)

// Result reports what a single ingestion produced.
type Result struct {
	Filename   string        `json:"filename"`
	ChunkCount int           `json:"chunk_count"`
	PageCount  int           `json:"page_count"`
	Elapsed    time.Duration `json:"-"`
}

// Pipeline runs extraction, chunking, embedding and persistence for
// document files. A pipeline is safe for concurrent use if its store is.
type Pipeline struct {
	extractors []Extractor
	chunker    *chunker.Chunker
	store      vectordb.Store
}

// NewPipeline creates a Pipeline over the given extractors. Extractors are
// consulted in order; the first that supports a filename wins.
func NewPipeline(extractors []Extractor, ch *chunker.Chunker, store vectordb.Store) *Pipeline {
	return &Pipeline{extractors: extractors, chunker: ch, store: store}
}

// Ingest processes one file end to end: extract pages, chunk each page,
// embed and index every chunk, then persist the index. Re-ingesting a
// filename replaces its previous entries.
func (p *Pipeline) Ingest(ctx context.Context, path string) (*Result, error) {
	extractor := p.extractorFor(path)
	if extractor == nil {
		return nil, fmt.Errorf("no extractor supports %s", path)
	}

	start := time.Now()
	pages, info, err := extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}

	var docs []vectordb.Document
	for _, page := range pages {
		meta := map[string]string{
			"filename": info.Filename,
			"page":     strconv.Itoa(page.Number),
		}
		if info.Title != "" {
			meta["title"] = info.Title
		}
		for _, chunk := range p.chunker.Chunk(page.Text, meta) {
			docs = append(docs, vectordb.Document{Content: chunk.Content, Metadata: chunk.Metadata})
		}
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%s contains no indexable text", info.Filename)
	}

	// Replace, not duplicate, on re-ingestion of the same filename. The swap
	// only happens once the whole batch has embedded, so a failure here
	// leaves the previous entries intact.
	if err := p.store.ReplaceSource(ctx, info.Filename, docs); err != nil {
		return nil, fmt.Errorf("indexing %s: %w", info.Filename, err)
	}
	if err := p.store.Save(); err != nil {
		return nil, fmt.Errorf("persisting index after %s: %w", info.Filename, err)
	}

	result := &Result{
		Filename:   info.Filename,
		ChunkCount: len(docs),
		PageCount:  info.NumPages,
		Elapsed:    time.Since(start),
	}
	log.Printf("ingested %s: %d chunks across %d pages in %s",
		result.Filename, result.ChunkCount, result.PageCount, result.Elapsed.Round(time.Millisecond))
	return result, nil
}

// Remove deletes all indexed entries for a filename and persists the index.
func (p *Pipeline) Remove(filename string) error {
	if err := p.store.DeleteBySource(filename); err != nil {
		return fmt.Errorf("removing %s: %w", filename, err)
	}
	if err := p.store.Save(); err != nil {
		return fmt.Errorf("persisting index after removing %s: %w", filename, err)
	}
	return nil
}

// Supports reports whether any configured extractor handles the filename.
func (p *Pipeline) Supports(filename string) bool {
	return p.extractorFor(filename) != nil
}

func (p *Pipeline) extractorFor(filename string) Extractor {
	for _, e := range p.extractors {
		if e.Supports(filename) {
			return e
		}
	}
	return nil
}
