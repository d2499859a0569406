package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ziadkadry99/askhub/internal/audit"
	"github.com/ziadkadry99/askhub/internal/capability"
	"github.com/ziadkadry99/askhub/internal/chunker"
	"github.com/ziadkadry99/askhub/internal/config"
	"github.com/ziadkadry99/askhub/internal/db"
	"github.com/ziadkadry99/askhub/internal/ingest"
	"github.com/ziadkadry99/askhub/internal/orchestrator"
	"github.com/ziadkadry99/askhub/internal/router"
	"github.com/ziadkadry99/askhub/internal/vectordb"
)

// memStore is an in-memory vectordb.Store that skips embedding entirely.
type memStore struct {
	entries []vectordb.Entry
}

func (m *memStore) Add(_ context.Context, docs []vectordb.Document) error {
	for _, d := range docs {
		m.entries = append(m.entries, vectordb.Entry{
			Content:  d.Content,
			Metadata: d.Metadata,
			DocID:    len(m.entries),
		})
	}
	return nil
}

func (m *memStore) Search(_ context.Context, _ string, k int) ([]vectordb.SearchResult, error) {
	if k > len(m.entries) {
		k = len(m.entries)
	}
	results := make([]vectordb.SearchResult, 0, k)
	for i := 0; i < k; i++ {
		results = append(results, vectordb.SearchResult{Entry: m.entries[i], Score: 1.0})
	}
	return results, nil
}

func (m *memStore) ReplaceSource(ctx context.Context, source string, docs []vectordb.Document) error {
	if err := m.DeleteBySource(source); err != nil {
		return err
	}
	return m.Add(ctx, docs)
}

func (m *memStore) DeleteBySource(source string) error {
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.Metadata["filename"] != source {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	for i := range m.entries {
		m.entries[i].DocID = i
	}
	return nil
}

func (m *memStore) Clear()      { m.entries = nil }
func (m *memStore) Save() error { return nil }
func (m *memStore) Count() int  { return len(m.entries) }

func (m *memStore) Stats() vectordb.Stats {
	seen := make(map[string]bool)
	var sources []string
	for _, e := range m.entries {
		if name := e.Metadata["filename"]; name != "" && !seen[name] {
			seen[name] = true
			sources = append(sources, name)
		}
	}
	return vectordb.Stats{Entries: len(m.entries), Sources: sources}
}

func testServer(t *testing.T) (*Server, *memStore) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store := &memStore{}
	auditLog := audit.NewStore(database, 100)
	pipeline := ingest.NewPipeline([]ingest.Extractor{ingest.NewTextExtractor()}, chunker.New(200, 20), store)

	routingCfg := config.RoutingConfig{RuleConfidence: 0.7, LLMConfidenceFallback: 0.8}
	retrievalCfg := config.RetrievalConfig{TopK: 5, PassagesPerSource: 3, MaxSources: 10, TimeoutSeconds: 5}

	docSearcher := capability.NewDocSearcher(store, 5)
	orch := orchestrator.New(
		router.New(nil, routingCfg),
		[]capability.Capability{docSearcher},
		nil,
		store,
		auditLog,
		retrievalCfg,
	)

	srv := New(Config{Port: 0, DataDir: t.TempDir(), AllowAll: true}, orch, pipeline, store, auditLog)
	return srv, store
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func uploadFile(t *testing.T, srv *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestQueryEmptyRejected(t *testing.T) {
	srv, _ := testServer(t)

	w := doJSON(t, srv, "POST", "/api/query", map[string]string{"query": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Success || body.Error == "" {
		t.Errorf("expected structured error, got %+v", body)
	}
}

func TestQueryInvalidJSON(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUploadQueryDeleteRoundTrip(t *testing.T) {
	srv, store := testServer(t)

	// Upload.
	w := uploadFile(t, srv, "guide.txt", "Go routines are lightweight threads managed by the runtime. They make concurrent programming straightforward.")
	if w.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var up uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &up); err != nil {
		t.Fatalf("unmarshal upload response: %v", err)
	}
	if !up.Success || up.ChunkCount < 1 || up.Filename != "guide.txt" {
		t.Fatalf("upload response: %+v", up)
	}
	if store.Count() != up.ChunkCount {
		t.Errorf("store holds %d entries, upload reported %d", store.Count(), up.ChunkCount)
	}

	// List.
	w = doJSON(t, srv, "GET", "/api/documents", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var list documentsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal list response: %v", err)
	}
	if len(list.Documents) != 1 || list.Documents[0] != "guide.txt" {
		t.Errorf("documents: %v", list.Documents)
	}

	// Query hits the indexed content.
	w = doJSON(t, srv, "POST", "/api/query", map[string]string{"query": "summarize the uploaded document"})
	if w.Code != http.StatusOK {
		t.Fatalf("query: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp orchestrator.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal query response: %v", err)
	}
	if resp.RequestID == "" || resp.Answer == "" {
		t.Errorf("query response incomplete: %+v", resp)
	}

	// Delete.
	req := httptest.NewRequest("DELETE", "/api/documents/guide.txt", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.Count() != 0 {
		t.Errorf("store should be empty after delete, has %d", store.Count())
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	srv, _ := testServer(t)

	w := uploadFile(t, srv, "archive.zip", "binary junk")
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}
}

func TestDeleteUnknownDocument(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest("DELETE", "/api/documents/nope.txt", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestLogsAndStats(t *testing.T) {
	srv, _ := testServer(t)

	// One query to populate the log.
	if w := doJSON(t, srv, "POST", "/api/query", map[string]string{"query": "search the web for anything"}); w.Code != http.StatusOK {
		t.Fatalf("query: expected 200, got %d", w.Code)
	}

	w := doJSON(t, srv, "GET", "/api/logs?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logs: expected 200, got %d", w.Code)
	}
	var logs struct {
		Logs []audit.Entry `json:"logs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &logs); err != nil {
		t.Fatalf("unmarshal logs: %v", err)
	}
	if len(logs.Logs) != 1 {
		t.Errorf("expected 1 log entry, got %d", len(logs.Logs))
	}

	w = doJSON(t, srv, "GET", "/api/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", w.Code)
	}
	var stats statsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.Requests == nil || stats.Requests.TotalRequests != 1 {
		t.Errorf("request stats: %+v", stats.Requests)
	}
}

func TestLogsBadLimit(t *testing.T) {
	srv, _ := testServer(t)

	w := doJSON(t, srv, "GET", "/api/logs?limit=zero", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}
