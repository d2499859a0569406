package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/askhub/internal/audit"
	"github.com/ziadkadry99/askhub/internal/vectordb"
)

// maxUploadSize bounds document uploads at 32 MiB.
const maxUploadSize = 32 << 20

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Success: false, Error: msg})
}

type queryRequest struct {
	Query string `json:"query"`
}

// handleQuery runs a query through the orchestrator.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	resp, err := s.orchestrator.Handle(r.Context(), req.Query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

type uploadResponse struct {
	Success    bool   `json:"success"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
	PageCount  int    `json:"page_count"`
}

// handleUploadDocument accepts a multipart file upload, stores it under the
// data directory, and ingests it into the index.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !s.pipeline.Supports(filename) {
		respondError(w, http.StatusUnsupportedMediaType, "unsupported file type: "+filename)
		return
	}

	uploadDir := filepath.Join(s.cfg.DataDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		respondError(w, http.StatusInternalServerError, "creating upload directory")
		return
	}

	path := filepath.Join(uploadDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "storing upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		respondError(w, http.StatusInternalServerError, "storing upload")
		return
	}
	dst.Close()

	result, err := s.pipeline.Ingest(r.Context(), path)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, uploadResponse{
		Success:    true,
		Filename:   result.Filename,
		ChunkCount: result.ChunkCount,
		PageCount:  result.PageCount,
	})
}

type documentsResponse struct {
	Documents []string       `json:"documents"`
	Index     vectordb.Stats `json:"index"`
}

// handleListDocuments lists the distinct indexed sources.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	stats := s.store.Stats()
	docs := stats.Sources
	if docs == nil {
		docs = []string{}
	}
	respondJSON(w, http.StatusOK, documentsResponse{Documents: docs, Index: stats})
}

// handleDeleteDocument removes a document from the index and deletes its
// stored upload if present.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "name"))
	if name == "" || name == "." {
		respondError(w, http.StatusBadRequest, "missing document name")
		return
	}

	found := false
	for _, src := range s.store.Stats().Sources {
		if src == name {
			found = true
			break
		}
	}
	if !found {
		respondError(w, http.StatusNotFound, "document not indexed: "+name)
		return
	}

	if err := s.pipeline.Remove(name); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	path := filepath.Join(s.cfg.DataDir, "uploads", name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("removing stored upload %s: %v", path, err)
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true, "deleted": name})
}

// handleLogs returns recent audit entries, newest first.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.auditLog.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"logs": entriesOrEmpty(entries)})
}

func entriesOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type statsResponse struct {
	Requests *audit.Stats   `json:"requests"`
	Index    vectordb.Stats `json:"index"`
}

// handleStats aggregates audit and index statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	requestStats, err := s.auditLog.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, statsResponse{
		Requests: requestStats,
		Index:    s.store.Stats(),
	})
}
