package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sorrel/kioku/internal/models"
	"github.com/sorrel/kioku/internal/store"
	"github.com/sorrel/kioku/internal/vector"
	"go.uber.org/zap"
)

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.respondError(w, http.StatusBadRequest, "question is required")
		return
	}
	s.logger.Debug("ask request", zap.String("question", req.Question), zap.Int("k", req.K))
	resp, err := s.assistant.Ask(r.Context(), req.Question, req.K)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.logger.Debug("search request", zap.String("query", req.Query), zap.Int("k", req.K))
	start := time.Now()
	blocks, lexicalOnly, err := s.assistant.Search(r.Context(), req.Query, req.K)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if blocks == nil {
		blocks = []models.ContextBlock{}
	}
	s.respondJSON(w, http.StatusOK, &models.SearchResponse{
		Query:       req.Query,
		Results:     blocks,
		QueryTimeMS: time.Since(start).Milliseconds(),
		LexicalOnly: lexicalOnly,
	})
}

// handleGetNote serves a note and its chunks. Note IDs are vault-relative
// paths and may contain slashes, hence the wildcard route.
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "*")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "note id is required")
		return
	}
	note, err := s.vault.GetNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "note not found")
			return
		}
		s.logger.Error("get note failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunks, err := s.vault.GetChunksByNote(r.Context(), id)
	if err != nil {
		s.logger.Warn("get note chunks failed", zap.String("id", id), zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"note":   note,
		"chunks": chunks,
	})
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	if s.rebuild == nil {
		s.respondError(w, http.StatusNotImplemented, "reindex not enabled")
		return
	}
	s.logger.Debug("reindex request")
	stats, err := s.rebuild(r.Context())
	if err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.pending.Store(0)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"chunks":     stats.Chunks,
		"dimensions": stats.Dimensions,
		"backend":    stats.Backend,
		"elapsed_ms": stats.Elapsed.Milliseconds(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	noteCount, err := s.vault.CountNotes(ctx)
	if err != nil {
		s.logger.Error("status: count notes failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.vault.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	pending := s.pending.Load()
	resp := map[string]interface{}{
		"notes":           noteCount,
		"chunks":          chunkCount,
		"index_stale":     pending > 0,
		"pending_changes": pending,
	}
	if nanos := s.lastChange.Load(); nanos > 0 {
		resp["last_vault_change"] = time.Unix(0, nanos).UTC().Format(time.RFC3339)
	}
	if m, err := vector.ReadManifest(s.cfg.Storage.IndexDir); err == nil {
		resp["index"] = map[string]interface{}{
			"backend":    m.Backend,
			"embedder":   m.Embedder,
			"dimensions": m.Dimensions,
			"vectors":    m.Count,
			"built_at":   m.BuiltAt,
		}
	}
	diskBytes, err := store.DiskUsageBytes(
		s.cfg.Storage.DatabasePath,
		s.cfg.Storage.IndexDir,
		s.cfg.Storage.BleveIndexPath,
	)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = map[string]interface{}{
		"embedding_backend":    s.cfg.Embedding.Backend,
		"embedding_dimensions": s.cfg.Embedding.Dimensions,
		"chunk_size":           s.cfg.Vault.ChunkSize,
		"chunk_overlap":        s.cfg.Vault.ChunkOverlap,
		"top_k":                s.cfg.Retrieval.TopK,
		"char_budget":          s.cfg.Retrieval.CharBudget,
		"lexical_backend":      s.cfg.Retrieval.LexicalBackend,
		"vector_backend":       s.cfg.Retrieval.VectorBackend,
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
