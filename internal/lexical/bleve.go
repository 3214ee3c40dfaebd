package lexical

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/sorrel/kioku/internal/models"
)

// BleveScorer implements Scorer on a persistent Bleve index. It trades the
// overlap scorer's strict determinism for real tf-idf ranking; ties on score
// are still broken by chunk ID.
type BleveScorer struct {
	path  string
	index bleve.Index
}

// chunkDoc is the shape stored in Bleve. Title and text are analyzed
// separately so both contribute to the match score.
type chunkDoc struct {
	Title   string `json:"title"`
	Section string `json:"section"`
	Text    string `json:"text"`
	Tags    string `json:"tags"`
}

// NewBleveScorer creates or opens a Bleve index at path.
// If the path already exists the index is opened and reused, so a previously
// built corpus survives restarts. Remove the directory to force a rebuild.
func NewBleveScorer(path string) (*BleveScorer, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveScorer{path: path, index: index}, nil
	}
	index, err := bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveScorer{path: path, index: index}, nil
}

// buildMapping uses the standard analyzer (lowercase + tokenize, no stemming)
// so queries like "bayes" match the exact word; the English analyzer stems
// e.g. "Bayesian" -> "bayesi" and "bayes" -> "bay", so they don't match.
func buildMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textFieldMapping)
	docMapping.AddFieldMappingsAt("section", textFieldMapping)
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("tags", textFieldMapping)
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping
	return im
}

// Index rebuilds the Bleve index from scratch with the given chunks.
func (b *BleveScorer) Index(ctx context.Context, chunks []models.Chunk) error {
	if b.index != nil {
		if err := b.index.Close(); err != nil {
			return fmt.Errorf("failed to close Bleve index: %w", err)
		}
	}
	if err := os.RemoveAll(b.path); err != nil {
		return fmt.Errorf("failed to clear Bleve index: %w", err)
	}
	index, err := bleve.New(b.path, buildMapping())
	if err != nil {
		return fmt.Errorf("failed to create Bleve index: %w", err)
	}
	b.index = index

	batch := b.index.NewBatch()
	for i := range chunks {
		c := &chunks[i]
		doc := chunkDoc{
			Title:   c.Title,
			Section: c.Section,
			Text:    c.Text,
		}
		for _, tag := range c.Tags {
			if doc.Tags != "" {
				doc.Tags += " "
			}
			doc.Tags += tag
		}
		if err := batch.Index(c.ChunkID, doc); err != nil {
			return fmt.Errorf("failed to batch chunk %s: %w", c.ChunkID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("Bleve batch index failed: %w", err)
	}
	return nil
}

// Rank runs a match query over all fields and returns the top hits.
func (b *BleveScorer) Rank(ctx context.Context, query string, limit int) ([]models.RankedHit, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}

	hits := make([]models.RankedHit, len(results.Hits))
	for i, hit := range results.Hits {
		hits[i] = models.RankedHit{ChunkID: hit.ID, Score: hit.Score}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	for i := range hits {
		hits[i].Rank = i + 1
	}
	return hits, nil
}

func (b *BleveScorer) Backend() string { return "bleve" }

func (b *BleveScorer) Close() error {
	if b.index == nil {
		return nil
	}
	return b.index.Close()
}
