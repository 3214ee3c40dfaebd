package lexical

import (
	"context"
	"sort"

	"github.com/sorrel/kioku/internal/models"
	"github.com/sorrel/kioku/pkg/utils"
)

// OverlapScorer scores chunks by the fraction of query terms present in the
// chunk passage. It holds the whole corpus in memory and rebuilds from the
// chunk store on startup, so nothing is persisted.
type OverlapScorer struct {
	terms map[string]map[string]struct{} // chunk ID -> term set
	order []string                       // chunk IDs in insertion order
}

func NewOverlapScorer() *OverlapScorer {
	return &OverlapScorer{terms: make(map[string]map[string]struct{})}
}

func (s *OverlapScorer) Index(ctx context.Context, chunks []models.Chunk) error {
	s.terms = make(map[string]map[string]struct{}, len(chunks))
	s.order = make([]string, 0, len(chunks))
	for i := range chunks {
		c := &chunks[i]
		set := make(map[string]struct{})
		for _, t := range utils.SearchTerms(c.PassageText()) {
			set[t] = struct{}{}
		}
		if _, dup := s.terms[c.ChunkID]; !dup {
			s.order = append(s.order, c.ChunkID)
		}
		s.terms[c.ChunkID] = set
	}
	return nil
}

func (s *OverlapScorer) Rank(ctx context.Context, query string, limit int) ([]models.RankedHit, error) {
	queryTerms := utils.SearchTerms(query)
	if len(queryTerms) == 0 {
		return nil, nil
	}

	hits := make([]models.RankedHit, 0, len(s.order))
	for _, id := range s.order {
		set := s.terms[id]
		matched := 0
		for _, t := range queryTerms {
			if _, ok := set[t]; ok {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		hits = append(hits, models.RankedHit{
			ChunkID: id,
			Score:   float64(matched) / float64(len(queryTerms)),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}
	return hits, nil
}

func (s *OverlapScorer) Backend() string { return "overlap" }

func (s *OverlapScorer) Close() error { return nil }
