package vectordb

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ziadkadry99/askhub/internal/embeddings"
)

const (
	vectorFile = "vectors.gob"
	metaFile   = "metadata.gob"
)

// FlatStore is an exact nearest-neighbor index over squared Euclidean
// distance. Vectors and entries are parallel slices: the Nth entry always
// describes the Nth vector. A single RWMutex enforces the single-writer/
// multiple-reader discipline, so a search never observes vectors without
// matching metadata or vice versa.
type FlatStore struct {
	mu       sync.RWMutex
	embedder embeddings.Embedder
	dim      int
	dir      string
	vectors  [][]float32
	entries  []Entry
}

// NewFlatStore creates an empty FlatStore persisting under dir. The index
// dimension is fixed to the embedder's dimension for the store's lifetime.
func NewFlatStore(embedder embeddings.Embedder, dir string) *FlatStore {
	return &FlatStore{
		embedder: embedder,
		dim:      embedder.Dimensions(),
		dir:      dir,
	}
}

func (s *FlatStore) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	vecs, err := s.embedDocs(ctx, docs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range docs {
		s.vectors = append(s.vectors, vecs[i])
		s.entries = append(s.entries, Entry{
			Content:  d.Content,
			Metadata: d.Metadata,
			DocID:    len(s.entries),
		})
	}
	return nil
}

// ReplaceSource drops the entries for source and indexes docs in their place
// under a single write lock. Embedding happens first, so a failed batch
// leaves the previous entries intact.
func (s *FlatStore) ReplaceSource(ctx context.Context, source string, docs []Document) error {
	var vecs [][]float32
	if len(docs) > 0 {
		var err error
		vecs, err = s.embedDocs(ctx, docs)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keptVecs := s.vectors[:0:0]
	keptEntries := s.entries[:0:0]
	for i, e := range s.entries {
		if e.Metadata["filename"] == source {
			continue
		}
		e.DocID = len(keptEntries)
		keptEntries = append(keptEntries, e)
		keptVecs = append(keptVecs, s.vectors[i])
	}
	for i, d := range docs {
		keptVecs = append(keptVecs, vecs[i])
		keptEntries = append(keptEntries, Entry{
			Content:  d.Content,
			Metadata: d.Metadata,
			DocID:    len(keptEntries),
		})
	}

	s.vectors = keptVecs
	s.entries = keptEntries
	return nil
}

// embedDocs embeds the batch and verifies its shape. Nothing is committed
// unless the whole batch embeds successfully.
func (s *FlatStore) embedDocs(ctx context.Context, docs []Document) ([][]float32, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}

	vecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d documents: %w", len(docs), err)
	}
	if len(vecs) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vecs), len(docs))
	}
	for i, v := range vecs {
		if len(v) != s.dim {
			return nil, fmt.Errorf("document %d: embedding dimension %d does not match index dimension %d", i, len(v), s.dim)
		}
	}
	return vecs, nil
}

func (s *FlatStore) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	empty := len(s.entries) == 0
	s.mu.RUnlock()
	if empty {
		return nil, nil
	}

	vecs, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != s.dim {
		return nil, fmt.Errorf("query embedding has wrong shape")
	}
	q := vecs[0]

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	if k > len(s.entries) {
		k = len(s.entries)
	}

	results := make([]SearchResult, len(s.entries))
	for i, v := range s.vectors {
		d := squaredL2(q, v)
		results[i] = SearchResult{
			Entry:    s.entries[i],
			Distance: d,
			Score:    1.0 / (1.0 + d),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	return results[:k], nil
}

func (s *FlatStore) DeleteBySource(source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keptVecs := s.vectors[:0:0]
	keptEntries := s.entries[:0:0]
	for i, e := range s.entries {
		if e.Metadata["filename"] == source {
			continue
		}
		e.DocID = len(keptEntries)
		keptEntries = append(keptEntries, e)
		keptVecs = append(keptVecs, s.vectors[i])
	}

	s.vectors = keptVecs
	s.entries = keptEntries
	return nil
}

func (s *FlatStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.entries = nil
}

func (s *FlatStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *FlatStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var sources []string
	for _, e := range s.entries {
		name := e.Metadata["filename"]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		sources = append(sources, name)
	}
	sort.Strings(sources)

	return Stats{
		Entries:   len(s.entries),
		Dimension: s.dim,
		Sources:   sources,
	}
}

// persistedIndex is the on-disk shape of the vector file.
type persistedIndex struct {
	Dimension int
	Vectors   [][]float32
}

// persistedMeta is the on-disk shape of the metadata file.
type persistedMeta struct {
	Entries []Entry
}

// Save writes the vector index and its metadata store as a file pair. Each
// file is written to a temp file and renamed, so a crash mid-save never
// leaves a torn file observable on the next load.
func (s *FlatStore) Save() error {
	s.mu.RLock()
	idx := persistedIndex{Dimension: s.dim, Vectors: s.vectors}
	meta := persistedMeta{Entries: s.entries}
	s.mu.RUnlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := writeGob(filepath.Join(s.dir, vectorFile), idx); err != nil {
		return fmt.Errorf("writing vector file: %w", err)
	}
	if err := writeGob(filepath.Join(s.dir, metaFile), meta); err != nil {
		return fmt.Errorf("writing metadata file: %w", err)
	}
	return nil
}

// Load restores the index pair from disk. Missing or corrupt files, a
// dimension mismatch, or diverging store lengths all fall back to a fresh
// empty index rather than failing the process. It reports whether a
// persisted index was restored.
func (s *FlatStore) Load() bool {
	var idx persistedIndex
	var meta persistedMeta

	if err := readGob(filepath.Join(s.dir, vectorFile), &idx); err != nil {
		s.Clear()
		return false
	}
	if err := readGob(filepath.Join(s.dir, metaFile), &meta); err != nil {
		s.Clear()
		return false
	}
	if idx.Dimension != s.dim || len(idx.Vectors) != len(meta.Entries) {
		s.Clear()
		return false
	}

	s.mu.Lock()
	s.vectors = idx.Vectors
	s.entries = meta.Entries
	s.mu.Unlock()
	return true
}

func writeGob(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}

func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
