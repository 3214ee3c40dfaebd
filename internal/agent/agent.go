package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sorrel/kioku/internal/config"
	"github.com/sorrel/kioku/internal/llm"
	"github.com/sorrel/kioku/internal/models"
	"github.com/sorrel/kioku/internal/retriever"
)

// NoContextAnswer is returned when retrieval finds nothing for the question.
const NoContextAnswer = "No relevant context found in the vault."

// Searcher produces the fused chunk ranking for a question.
type Searcher interface {
	Retrieve(ctx context.Context, query string, topK int) (*retriever.Result, error)
}

// ChunkGetter resolves chunk IDs to stored chunks.
type ChunkGetter interface {
	GetChunk(ctx context.Context, chunkID string) (*models.Chunk, error)
}

// Agent answers questions: retrieve, assemble a cited context, generate.
type Agent struct {
	searcher Searcher
	chunks   ChunkGetter
	client   llm.Client
	cfg      *config.RetrievalConfig
	logger   *zap.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the logger used for answer diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// New creates an answer agent. client may be nil, in which case every answer
// is extractive.
func New(searcher Searcher, chunks ChunkGetter, client llm.Client, cfg *config.RetrievalConfig, opts ...Option) *Agent {
	a := &Agent{
		searcher: searcher,
		chunks:   chunks,
		client:   client,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers the question from the vault. Generation failures degrade to a
// retrieval-only answer instead of erroring; only retrieval failures return
// an error.
func (a *Agent) Ask(ctx context.Context, question string, topK int) (*models.AskResponse, error) {
	res, err := a.searcher.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	if len(res.Hits) == 0 {
		return &models.AskResponse{Answer: NoContextAnswer, Citations: []models.Citation{}}, nil
	}

	blocks := a.resolveBlocks(ctx, res.Hits)
	if len(blocks) == 0 {
		return &models.AskResponse{Answer: NoContextAnswer, Citations: []models.Citation{}}, nil
	}

	assembly := Assemble(blocks, a.cfg.CharBudget)

	if a.client == nil {
		return &models.AskResponse{
			Answer:         ExtractiveAnswer(question, assembly),
			Citations:      assembly.Citations,
			Degraded:       true,
			DegradedReason: "no completion client configured",
		}, nil
	}

	answer, err := a.client.Generate(ctx, BuildPrompt(question, assembly.Context))
	if err != nil {
		a.logger.Warn("generation failed, falling back to extractive answer",
			zap.String("question", question), zap.Error(err))
		return &models.AskResponse{
			Answer:         ExtractiveAnswer(question, assembly),
			Citations:      assembly.Citations,
			Degraded:       true,
			DegradedReason: err.Error(),
		}, nil
	}

	return &models.AskResponse{
		Answer:    strings.TrimSpace(answer) + SourcesBlock(assembly.Citations),
		Citations: assembly.Citations,
	}, nil
}

// Search runs retrieval only and returns the resolved context blocks.
func (a *Agent) Search(ctx context.Context, query string, topK int) ([]models.ContextBlock, bool, error) {
	res, err := a.searcher.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, false, fmt.Errorf("retrieval failed: %w", err)
	}
	return a.resolveBlocks(ctx, res.Hits), res.LexicalOnly, nil
}

// resolveBlocks maps fused hits to context blocks, dropping hits whose chunk
// is missing from the store. A miss means the index and store are out of
// sync; it is logged and skipped rather than failing the whole answer.
func (a *Agent) resolveBlocks(ctx context.Context, hits []models.FusedHit) []models.ContextBlock {
	blocks := make([]models.ContextBlock, 0, len(hits))
	for _, h := range hits {
		chunk, err := a.chunks.GetChunk(ctx, h.ChunkID)
		if err != nil {
			a.logger.Warn("chunk in index but not in store, skipping",
				zap.String("chunk_id", h.ChunkID), zap.Error(err))
			continue
		}
		blocks = append(blocks, models.ContextBlock{
			NoteID:  chunk.NoteID,
			Title:   chunk.Title,
			Section: chunk.Section,
			Text:    chunk.Text,
			ChunkID: chunk.ChunkID,
			Score:   h.FusedScore,
		})
	}
	return blocks
}

// ExtractiveAnswer renders the retrieval-only fallback: the included passages
// verbatim with their citation markers.
func ExtractiveAnswer(question string, assembly *Assembly) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Question: %s\n\nAnswer (retrieval only):\n\n", strings.TrimSpace(question))
	for _, b := range assembly.Blocks {
		fmt.Fprintf(&sb, "[%d] %s", b.CitationIndex, b.Title)
		if b.Section != "" {
			fmt.Fprintf(&sb, " › %s", b.Section)
		}
		fmt.Fprintf(&sb, " (score=%.3f)\n%s\n\n", b.Score, b.Text)
	}
	return strings.TrimSpace(sb.String()) + SourcesBlock(assembly.Citations)
}
