package eval

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/sorrel/kioku/internal/config"
	"github.com/sorrel/kioku/internal/models"
	"github.com/sorrel/kioku/internal/retriever"
)

// Searcher produces the fused chunk ranking for a query.
type Searcher interface {
	Retrieve(ctx context.Context, query string, topK int) (*retriever.Result, error)
}

// Answerer optionally produces full answers for judged evaluation.
type Answerer interface {
	Ask(ctx context.Context, question string, topK int) (*models.AskResponse, error)
	Search(ctx context.Context, query string, topK int) ([]models.ContextBlock, bool, error)
}

// QueryReport is the per-example breakdown of one evaluated query.
type QueryReport struct {
	Query             string   `json:"query"`
	RelevantChunkIDs  []string `json:"relevant_chunk_ids,omitempty"`
	RelevantNoteIDs   []string `json:"relevant_note_ids,omitempty"`
	RetrievedChunkIDs []string `json:"retrieved_chunk_ids"`
	// ChunkRank and NoteRank are the 1-based rank of the first relevant hit
	// at the largest cutoff, 0 for a miss.
	ChunkRank int         `json:"chunk_rank"`
	NoteRank  int         `json:"note_rank"`
	Answer    string      `json:"answer,omitempty"`
	Judge     *JudgeScore `json:"judge,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Report aggregates retrieval metrics over the validation set.
type Report struct {
	N  int   `json:"n"`
	Ks []int `json:"ks"`
	// Chunk and Note hold Recall@k / MRR@k per cutoff at chunk and note
	// matching level.
	Chunk map[int]Metric `json:"chunk"`
	Note  map[int]Metric `json:"note"`
	// HitRate is the fraction of queries with at least one retrieved chunk.
	HitRate float64       `json:"hit_rate"`
	Queries []QueryReport `json:"queries"`
	Judge   *JudgeSummary `json:"judge,omitempty"`
}

// Evaluator runs the validation set through the retriever.
type Evaluator struct {
	searcher Searcher
	answerer Answerer
	judge    Judge
	cfg      *config.EvalConfig
	logger   *zap.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the evaluation logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) { e.logger = logger }
}

// WithAnswerer enables answer generation per example.
func WithAnswerer(a Answerer) Option {
	return func(e *Evaluator) { e.answerer = a }
}

// WithJudge enables LLM judging of generated answers. Implies nothing
// without an Answerer.
func WithJudge(j Judge) Option {
	return func(e *Evaluator) { e.judge = j }
}

// New creates an evaluator over the given retriever.
func New(searcher Searcher, cfg *config.EvalConfig, opts ...Option) *Evaluator {
	e := &Evaluator{searcher: searcher, cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates every example and aggregates Recall@k and MRR@k at each
// configured cutoff. Per-example failures are recorded as misses and logged,
// not fatal: a flaky completion service must not abort a long evaluation.
func (e *Evaluator) Run(ctx context.Context, examples []models.ValidationExample) (*Report, error) {
	ks := append([]int(nil), e.cfg.KValues...)
	sort.Ints(ks)
	if len(ks) == 0 {
		ks = []int{5}
	}
	maxK := ks[len(ks)-1]

	queries := make([]QueryReport, len(examples))

	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	idxCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				queries[i] = e.evalOne(ctx, &examples[i], maxK)
			}
		}()
	}
	for i := range examples {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	report := &Report{
		N:       len(examples),
		Ks:      ks,
		Chunk:   make(map[int]Metric, len(ks)),
		Note:    make(map[int]Metric, len(ks)),
		Queries: queries,
	}

	chunkRanks := make([]int, len(queries))
	noteRanks := make([]int, len(queries))
	hitCount := 0
	for i := range queries {
		chunkRanks[i] = queries[i].ChunkRank
		noteRanks[i] = queries[i].NoteRank
		if len(queries[i].RetrievedChunkIDs) > 0 {
			hitCount++
		}
	}
	for _, k := range ks {
		report.Chunk[k] = aggregate(chunkRanks, k)
		report.Note[k] = aggregate(noteRanks, k)
	}
	if len(queries) > 0 {
		report.HitRate = float64(hitCount) / float64(len(queries))
	}
	report.Judge = summarizeJudge(queries)
	return report, nil
}

func (e *Evaluator) evalOne(ctx context.Context, ex *models.ValidationExample, maxK int) QueryReport {
	qr := QueryReport{
		Query:            ex.Query,
		RelevantChunkIDs: ex.RelevantChunkIDs,
		RelevantNoteIDs:  ex.NoteIDs(),
	}

	res, err := e.searcher.Retrieve(ctx, ex.Query, maxK)
	if err != nil {
		e.logger.Warn("retrieval failed during evaluation",
			zap.String("query", ex.Query), zap.Error(err))
		qr.Error = err.Error()
		return qr
	}

	gotChunks := make([]string, len(res.Hits))
	gotNotes := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		gotChunks[i] = h.ChunkID
		gotNotes[i], _ = models.SplitChunkID(h.ChunkID)
	}
	qr.RetrievedChunkIDs = gotChunks
	qr.ChunkRank = firstRankMatch(ex.RelevantChunkIDs, gotChunks, maxK)
	qr.NoteRank = firstRankMatch(qr.RelevantNoteIDs, gotNotes, maxK)

	if e.answerer == nil {
		return qr
	}

	resp, err := e.answerer.Ask(ctx, ex.Query, maxK)
	if err != nil {
		e.logger.Warn("answer generation failed during evaluation",
			zap.String("query", ex.Query), zap.Error(err))
		qr.Error = err.Error()
		return qr
	}
	qr.Answer = resp.Answer

	if e.judge != nil {
		blocks, _, err := e.answerer.Search(ctx, ex.Query, maxK)
		if err != nil {
			e.logger.Warn("context resolution failed for judge",
				zap.String("query", ex.Query), zap.Error(err))
			return qr
		}
		score, err := e.judge.Score(ctx, ex.Query, blocks, resp.Answer)
		if err != nil {
			e.logger.Warn("judge scoring failed",
				zap.String("query", ex.Query), zap.Error(err))
			return qr
		}
		qr.Judge = score
	}
	return qr
}
