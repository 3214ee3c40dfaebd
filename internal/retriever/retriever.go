package retriever

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sorrel/kioku/internal/config"
	"github.com/sorrel/kioku/internal/embedding"
	"github.com/sorrel/kioku/internal/lexical"
	"github.com/sorrel/kioku/internal/models"
	"github.com/sorrel/kioku/internal/vector"
)

// Retriever fuses vector and lexical rankings into a single chunk ranking.
type Retriever struct {
	embedder embedding.Embedder
	index    vector.Index
	scorer   lexical.Scorer
	cfg      *config.RetrievalConfig
	logger   *zap.Logger
}

// Result is the outcome of one retrieval.
type Result struct {
	Hits []models.FusedHit
	// LexicalOnly is set when the query embedded to the zero vector and the
	// vector branch was skipped.
	LexicalOnly bool
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger used for retrieval diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Retriever) { r.logger = logger }
}

// New creates a retriever over the given signal sources.
func New(embedder embedding.Embedder, index vector.Index, scorer lexical.Scorer, cfg *config.RetrievalConfig, opts ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		index:    index,
		scorer:   scorer,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns the top-k fused hits for the query. Each source ranking is
// over-fetched beyond topK so the diversity cap and fusion have enough
// candidates to fill the final list. topK <= 0 falls back to the configured
// default.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) (*Result, error) {
	if topK <= 0 {
		topK = r.cfg.TopK
	}
	fetchK := topK * r.cfg.OverfetchFactor
	if fetchK < topK {
		fetchK = topK
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}

	var (
		vectorHits  []models.RankedHit
		lexicalHits []models.RankedHit
		lexicalOnly = embedding.IsZero(queryVec)
		errChan     = make(chan error, 2)
		wg          sync.WaitGroup
	)

	if !lexicalOnly {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := r.index.Search(ctx, queryVec, fetchK)
			if err != nil {
				if errors.Is(err, vector.ErrEmptyCorpus) {
					return
				}
				errChan <- fmt.Errorf("vector search failed: %w", err)
				return
			}
			vectorHits = make([]models.RankedHit, len(results))
			for i, res := range results {
				vectorHits[i] = models.RankedHit{ChunkID: res.ChunkID, Score: res.Score, Rank: i + 1}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		hits, err := r.scorer.Rank(ctx, query, fetchK)
		if err != nil {
			errChan <- fmt.Errorf("lexical ranking failed: %w", err)
			return
		}
		lexicalHits = hits
	}()

	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	if lexicalOnly {
		r.logger.Debug("query embedded to zero vector, using lexical ranking only",
			zap.String("query", query))
	}

	fused := FuseRRF(vectorHits, lexicalHits, r.cfg.RRFK)
	hits := capPerNote(fused, topK, r.cfg.MaxChunksPerNote)

	r.logger.Debug("retrieval complete",
		zap.Int("vector_hits", len(vectorHits)),
		zap.Int("lexical_hits", len(lexicalHits)),
		zap.Int("fused", len(fused)),
		zap.Int("selected", len(hits)))

	return &Result{Hits: hits, LexicalOnly: lexicalOnly}, nil
}
