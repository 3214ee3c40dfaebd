// Package server provides the HTTP API for kioku.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sorrel/kioku/internal/config"
	"github.com/sorrel/kioku/internal/indexer"
	"github.com/sorrel/kioku/internal/models"
	"go.uber.org/zap"
)

// Assistant answers questions and runs retrieval-only searches.
type Assistant interface {
	Ask(ctx context.Context, question string, topK int) (*models.AskResponse, error)
	Search(ctx context.Context, query string, topK int) ([]models.ContextBlock, bool, error)
}

// VaultReader reads collected notes and chunks.
type VaultReader interface {
	GetNote(ctx context.Context, id string) (*models.Note, error)
	GetChunksByNote(ctx context.Context, noteID string) ([]models.Chunk, error)
	CountNotes(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)
}

// RebuildFunc recollects the vault and republishes the index.
type RebuildFunc func(ctx context.Context) (*indexer.Stats, error)

// Server is the HTTP server for the kioku API.
type Server struct {
	assistant Assistant
	vault     VaultReader
	cfg       *config.Config
	logger    *zap.Logger
	server    *http.Server
	rebuild   RebuildFunc

	// pending counts vault file changes seen since the last index build.
	pending    atomic.Int64
	lastChange atomic.Int64 // unix nanos
}

// Option configures a Server.
type Option func(*Server)

// WithRebuild enables POST /api/v1/reindex with the given rebuild function.
func WithRebuild(fn RebuildFunc) Option {
	return func(s *Server) { s.rebuild = fn }
}

// NewServer creates a server with the given dependencies.
func NewServer(assistant Assistant, vault VaultReader, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		assistant: assistant,
		vault:     vault,
		cfg:       cfg,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarkStale records a vault file change so /status can report index staleness.
// Safe for concurrent use; typically wired as a watcher callback.
func (s *Server) MarkStale(path string) {
	s.pending.Add(1)
	s.lastChange.Store(time.Now().UnixNano())
	s.logger.Debug("vault change recorded", zap.String("path", path))
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/ask", s.handleAsk)
	r.Post("/api/v1/search", s.handleSearch)
	r.Post("/api/v1/reindex", s.handleReindex)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/notes/*", s.handleGetNote)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requestID tags every request with an X-Request-ID, honoring one supplied by
// the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
