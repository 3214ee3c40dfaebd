// Package retriever runs hybrid retrieval: vector and lexical rankings fused
// with reciprocal rank fusion, then capped for per-note diversity.
package retriever

import (
	"sort"

	"github.com/sorrel/kioku/internal/models"
)

// DefaultRRFK is the standard reciprocal rank fusion constant.
const DefaultRRFK = 60

// FuseRRF merges the two source rankings with reciprocal rank fusion:
// each chunk scores the sum of 1/(k + rank) over the rankings it appears in.
// A chunk ranked by both sources always outscores the same ranks seen once.
// Ties on fused score are broken by best source rank, then by chunk ID.
func FuseRRF(vectorHits, lexicalHits []models.RankedHit, k int) []models.FusedHit {
	if k <= 0 {
		k = DefaultRRFK
	}

	byChunk := make(map[string]*models.FusedHit, len(vectorHits)+len(lexicalHits))
	for _, h := range vectorHits {
		byChunk[h.ChunkID] = &models.FusedHit{ChunkID: h.ChunkID, VectorRank: h.Rank}
	}
	for _, h := range lexicalHits {
		if f, ok := byChunk[h.ChunkID]; ok {
			f.LexicalRank = h.Rank
		} else {
			byChunk[h.ChunkID] = &models.FusedHit{ChunkID: h.ChunkID, LexicalRank: h.Rank}
		}
	}

	fused := make([]models.FusedHit, 0, len(byChunk))
	for _, f := range byChunk {
		if f.VectorRank > 0 {
			f.FusedScore += 1.0 / float64(k+f.VectorRank)
		}
		if f.LexicalRank > 0 {
			f.FusedScore += 1.0 / float64(k+f.LexicalRank)
		}
		fused = append(fused, *f)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].FusedScore != fused[j].FusedScore {
			return fused[i].FusedScore > fused[j].FusedScore
		}
		bi, bj := fused[i].BestRank(), fused[j].BestRank()
		if bi != bj {
			return bi < bj
		}
		return fused[i].ChunkID < fused[j].ChunkID
	})
	return fused
}

// capPerNote walks the fused ranking and keeps at most maxPerNote chunks from
// any single note, skipping the rest outright, until topK chunks are selected.
// maxPerNote <= 0 disables the cap.
func capPerNote(fused []models.FusedHit, topK, maxPerNote int) []models.FusedHit {
	if topK <= 0 {
		return nil
	}
	selected := make([]models.FusedHit, 0, topK)
	perNote := make(map[string]int)
	for _, f := range fused {
		noteID, _ := models.SplitChunkID(f.ChunkID)
		if maxPerNote > 0 && perNote[noteID] >= maxPerNote {
			continue
		}
		selected = append(selected, f)
		perNote[noteID]++
		if len(selected) == topK {
			break
		}
	}
	return selected
}
