package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sorrel/kioku/internal/config"
	"github.com/sorrel/kioku/internal/extract"
	"github.com/sorrel/kioku/internal/models"
)

// Collector walks a vault directory and produces notes and chunks.
type Collector struct {
	cfg       *config.VaultConfig
	chunker   *Chunker
	extractor *extract.Extractor
	logger    *zap.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the collection logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Collector) { c.logger = logger }
}

// New creates a collector for the configured vault.
func New(cfg *config.VaultConfig, opts ...Option) *Collector {
	c := &Collector{
		cfg:       cfg,
		chunker:   NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		extractor: extract.NewExtractor(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect walks the vault and returns every collected note with its chunks.
// Hidden directories (.obsidian, .git, ...) are skipped. A file that fails
// to parse is logged and skipped; only a broken walk is fatal.
func (c *Collector) Collect() ([]models.Note, []models.Chunk, error) {
	root, err := filepath.Abs(c.cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve vault path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("vault path: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("vault path is not a directory: %s", root)
	}

	var notes []models.Note
	var chunks []models.Chunk
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !c.extensionAllowed(ext) {
			return nil
		}

		note, err := c.collectFile(path, root, ext)
		if err != nil {
			c.logger.Warn("skipping unreadable file", zap.String("path", path), zap.Error(err))
			return nil
		}
		noteChunks := c.chunker.ChunkNote(note)
		c.logger.Debug("collected note",
			zap.String("note_id", note.ID), zap.Int("chunks", len(noteChunks)))
		notes = append(notes, *note)
		chunks = append(chunks, noteChunks...)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("vault walk failed: %w", err)
	}

	c.logger.Info("vault collected",
		zap.String("path", root), zap.Int("notes", len(notes)), zap.Int("chunks", len(chunks)))
	return notes, chunks, nil
}

// collectFile parses markdown directly; other formats go through text
// extraction and become single-section notes.
func (c *Collector) collectFile(path, root, ext string) (*models.Note, error) {
	if ext == ".md" {
		return ParseNote(path, root)
	}

	text, err := c.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	note := &models.Note{
		ID:      filepath.ToSlash(rel),
		Title:   strings.TrimSuffix(base, filepath.Ext(base)),
		Content: text,
	}
	if info, err := os.Stat(path); err == nil {
		note.Modified = info.ModTime().Format(time.RFC3339)
	}
	return note, nil
}

func (c *Collector) extensionAllowed(ext string) bool {
	ext = strings.TrimPrefix(ext, ".")
	if len(c.cfg.Extensions) == 0 {
		return ext == "md"
	}
	for _, a := range c.cfg.Extensions {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return true
		}
	}
	return false
}
