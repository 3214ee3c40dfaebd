// Package indexer builds the retrieval artifacts: the vector index with its
// manifest, published atomically, and the lexical index.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/sorrel/kioku/internal/config"
	"github.com/sorrel/kioku/internal/embedding"
	"github.com/sorrel/kioku/internal/lexical"
	"github.com/sorrel/kioku/internal/models"
	"github.com/sorrel/kioku/internal/vector"
)

// Builder turns a chunk corpus into query-ready indexes.
type Builder struct {
	embedder embedding.Embedder
	scorer   lexical.Scorer
	cfg      *config.Config
	logger   *zap.Logger
}

// Stats summarizes one build.
type Stats struct {
	Chunks     int           `json:"chunks"`
	Dimensions int           `json:"dimensions"`
	Backend    string        `json:"backend"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the build logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// New creates an index builder.
func New(embedder embedding.Embedder, scorer lexical.Scorer, cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{embedder: embedder, scorer: scorer, cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build embeds every chunk and publishes the vector index, then rebuilds the
// lexical index. The vector index directory is replaced atomically: the new
// artifact is staged in a sibling temp directory and renamed into place, so
// readers never observe a half-written index. Zero chunks is an error, not an
// empty index.
func (b *Builder) Build(ctx context.Context, chunks []models.Chunk) (*Stats, error) {
	start := time.Now()
	if len(chunks) == 0 {
		return nil, vector.ErrEmptyCorpus
	}

	ids := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = chunks[i].ChunkID
		texts[i] = chunks[i].PassageText()
	}

	b.logger.Info("embedding chunks",
		zap.Int("chunks", len(chunks)),
		zap.String("embedder", b.embedder.Name()))
	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	idx, err := vector.New(b.cfg.Retrieval.VectorBackend, b.embedder.Dimensions())
	if err != nil {
		return nil, err
	}
	defer idx.Close()
	if err := idx.Add(ctx, ids, vectors); err != nil {
		return nil, fmt.Errorf("failed to add vectors: %w", err)
	}

	if err := b.publish(idx, len(chunks)); err != nil {
		return nil, err
	}

	b.logger.Info("rebuilding lexical index", zap.String("backend", b.scorer.Backend()))
	if err := b.scorer.Index(ctx, chunks); err != nil {
		return nil, fmt.Errorf("failed to build lexical index: %w", err)
	}

	stats := &Stats{
		Chunks:     len(chunks),
		Dimensions: b.embedder.Dimensions(),
		Backend:    idx.Backend(),
		Elapsed:    time.Since(start),
	}
	b.logger.Info("index build complete",
		zap.Int("chunks", stats.Chunks),
		zap.Int("dimensions", stats.Dimensions),
		zap.Duration("elapsed", stats.Elapsed))
	return stats, nil
}

// publish stages the index artifact in a temp directory next to the target
// and swaps it in with renames.
func (b *Builder) publish(idx vector.Index, count int) error {
	dir := b.cfg.Storage.IndexDir
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create index parent directory: %w", err)
	}

	tmpDir, err := os.MkdirTemp(parent, filepath.Base(dir)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := idx.Save(filepath.Join(tmpDir, vector.VectorsFile)); err != nil {
		return fmt.Errorf("failed to save vectors: %w", err)
	}
	manifest := &vector.Manifest{
		Backend:    idx.Backend(),
		Embedder:   b.embedder.Name(),
		Dimensions: b.embedder.Dimensions(),
		Count:      count,
		BuiltAt:    time.Now().UTC(),
	}
	if err := vector.WriteManifest(tmpDir, manifest); err != nil {
		return err
	}

	oldDir := dir + ".old"
	_ = os.RemoveAll(oldDir)
	if _, err := os.Stat(dir); err == nil {
		if err := os.Rename(dir, oldDir); err != nil {
			return fmt.Errorf("failed to move previous index aside: %w", err)
		}
	}
	if err := os.Rename(tmpDir, dir); err != nil {
		// Try to restore the previous index so queries keep working.
		_ = os.Rename(oldDir, dir)
		return fmt.Errorf("failed to publish index: %w", err)
	}
	_ = os.RemoveAll(oldDir)
	return nil
}
