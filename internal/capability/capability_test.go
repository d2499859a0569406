package capability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ziadkadry99/askhub/internal/vectordb"
)

// --- Mock vector store ---

type mockStore struct {
	results []vectordb.SearchResult
	err     error
}

func (m *mockStore) Add(_ context.Context, _ []vectordb.Document) error { return nil }

func (m *mockStore) Search(_ context.Context, _ string, k int) ([]vectordb.SearchResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if k > len(m.results) {
		k = len(m.results)
	}
	return m.results[:k], nil
}

func (m *mockStore) ReplaceSource(_ context.Context, _ string, _ []vectordb.Document) error {
	return nil
}
func (m *mockStore) DeleteBySource(_ string) error { return nil }
func (m *mockStore) Clear()                        {}
func (m *mockStore) Save() error                   { return nil }
func (m *mockStore) Count() int                    { return len(m.results) }
func (m *mockStore) Stats() vectordb.Stats         { return vectordb.Stats{Entries: len(m.results)} }

// --- Mock web client ---

type mockWebClient struct {
	results   []WebResult
	errs      []error // consumed one per call; nil means success
	callCount int
}

func (m *mockWebClient) Search(_ context.Context, _ string, max int) ([]WebResult, error) {
	var err error
	if m.callCount < len(m.errs) {
		err = m.errs[m.callCount]
	}
	m.callCount++
	if err != nil {
		return nil, err
	}
	if max > len(m.results) {
		max = len(m.results)
	}
	return m.results[:max], nil
}

func (m *mockWebClient) Name() string { return "mock" }

func TestDocSearcherEmptyIndex(t *testing.T) {
	d := NewDocSearcher(&mockStore{}, 5)
	_, err := d.Search(context.Background(), "anything")
	if !errors.Is(err, ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestDocSearcherMapsResults(t *testing.T) {
	store := &mockStore{results: []vectordb.SearchResult{
		{
			Entry: vectordb.Entry{
				Content:  "chunk content",
				Metadata: map[string]string{"filename": "report.pdf", "page": "3"},
			},
			Score: 0.9,
		},
	}}

	d := NewDocSearcher(store, 5)
	passages, err := d.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	p := passages[0]
	if p.Source != "report.pdf" || p.Page != 3 || p.Score != 0.9 {
		t.Errorf("passage mapping wrong: %+v", p)
	}
}

func TestWebSearcherRankScores(t *testing.T) {
	client := &mockWebClient{results: []WebResult{
		{Title: "first", Link: "https://a", Snippet: "aa"},
		{Title: "second", Link: "https://b", Snippet: "bb"},
	}}

	w := NewWebSearcher(client, 5)
	passages, err := w.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(passages) != 2 {
		t.Fatalf("expected 2 passages, got %d", len(passages))
	}
	if passages[0].Score <= passages[1].Score {
		t.Errorf("rank scores not descending: %v then %v", passages[0].Score, passages[1].Score)
	}
	if passages[0].Source != "https://a" {
		t.Errorf("source mapping wrong: %q", passages[0].Source)
	}
}

func TestWebSearcherRetriesOnceOnRateLimit(t *testing.T) {
	client := &mockWebClient{
		results: []WebResult{{Title: "ok", Link: "https://x", Snippet: "s"}},
		errs:    []error{RateLimited(errors.New("429"))},
	}

	w := NewWebSearcher(client, 5)
	passages, err := w.Search(context.Background(), "query")
	if err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}
	if client.callCount != 2 {
		t.Errorf("expected exactly 2 calls (1 retry), got %d", client.callCount)
	}
	if len(passages) != 1 {
		t.Errorf("expected 1 passage after retry, got %d", len(passages))
	}
}

func TestWebSearcherNoRetryOnOtherErrors(t *testing.T) {
	client := &mockWebClient{
		errs: []error{errors.New("connection refused")},
	}

	w := NewWebSearcher(client, 5)
	if _, err := w.Search(context.Background(), "query"); err == nil {
		t.Fatal("expected error")
	}
	if client.callCount != 1 {
		t.Errorf("non-rate-limit errors must not retry: %d calls", client.callCount)
	}
}

func TestWebSearcherSingleRetryOnly(t *testing.T) {
	client := &mockWebClient{
		errs: []error{
			RateLimited(errors.New("429")),
			RateLimited(errors.New("429 again")),
		},
	}

	w := NewWebSearcher(client, 5)
	_, err := w.Search(context.Background(), "query")
	if err == nil {
		t.Fatal("expected error after exhausted retry")
	}
	if client.callCount != 2 {
		t.Errorf("expected exactly 2 calls, got %d", client.callCount)
	}
	if KindOf(err) != KindRateLimit {
		t.Errorf("expected rate-limit kind, got %q", KindOf(err))
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrKind
	}{
		{"nil", nil, KindNone},
		{"rate limit", RateLimited(errors.New("x")), KindRateLimit},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"plain", errors.New("boom"), KindOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIDValid(t *testing.T) {
	for _, id := range All {
		if !id.Valid() {
			t.Errorf("%q should be valid", id)
		}
	}
	if ID("controller").Valid() {
		t.Error("unknown id should be invalid")
	}
}

func TestFormatPaperTruncatesAuthors(t *testing.T) {
	p := Paper{
		Title:   "A Paper",
		Authors: []string{"A", "B", "C", "D", "E"},
		Summary: "abstract",
	}
	content := formatPaper(p)
	for _, want := range []string{"A, B, C, et al.", "A Paper", "abstract"} {
		if !strings.Contains(content, want) {
			t.Errorf("paper formatting missing %q:\n%s", want, content)
		}
	}
}
