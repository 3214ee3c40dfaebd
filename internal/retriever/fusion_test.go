package retriever

import (
	"math"
	"testing"

	"github.com/sorrel/kioku/internal/models"
)

func ranked(ids ...string) []models.RankedHit {
	hits := make([]models.RankedHit, len(ids))
	for i, id := range ids {
		hits[i] = models.RankedHit{ChunkID: id, Score: 1.0 / float64(i+1), Rank: i + 1}
	}
	return hits
}

func TestFuseRRFBothSourcesOutscoreSingle(t *testing.T) {
	// "both#0" is rank 2 in both rankings; "vec#0" is rank 1 in one only.
	vectorHits := ranked("vec#0", "both#0")
	lexicalHits := ranked("lex#0", "both#0")

	fused := FuseRRF(vectorHits, lexicalHits, 60)
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused hits, got %d", len(fused))
	}
	if fused[0].ChunkID != "both#0" {
		t.Errorf("expected doubly-ranked chunk first, got %s", fused[0].ChunkID)
	}
	want := 1.0/62.0 + 1.0/62.0
	if math.Abs(fused[0].FusedScore-want) > 1e-12 {
		t.Errorf("fused score = %v, want %v", fused[0].FusedScore, want)
	}
	if fused[0].VectorRank != 2 || fused[0].LexicalRank != 2 {
		t.Errorf("source ranks not preserved: vector=%d lexical=%d", fused[0].VectorRank, fused[0].LexicalRank)
	}
}

func TestFuseRRFTieBrokenByBestRankThenChunkID(t *testing.T) {
	// Same fused score for all: each appears once at rank 1 or rank 1/2.
	vectorHits := ranked("b#0", "c#0")
	lexicalHits := ranked("a#0", "d#0")

	fused := FuseRRF(vectorHits, lexicalHits, 60)
	if len(fused) != 4 {
		t.Fatalf("expected 4 fused hits, got %d", len(fused))
	}
	// a#0 and b#0 tie on score (both rank 1) -> chunk ID ascending.
	if fused[0].ChunkID != "a#0" || fused[1].ChunkID != "b#0" {
		t.Errorf("rank-1 tie not broken by chunk ID: %s, %s", fused[0].ChunkID, fused[1].ChunkID)
	}
	if fused[2].ChunkID != "c#0" || fused[3].ChunkID != "d#0" {
		t.Errorf("rank-2 tie not broken by chunk ID: %s, %s", fused[2].ChunkID, fused[3].ChunkID)
	}
}

func TestFuseRRFScoreMonotonicInRank(t *testing.T) {
	vectorHits := ranked("a#0", "b#0", "c#0", "d#0")
	fused := FuseRRF(vectorHits, nil, 60)
	for i := 1; i < len(fused); i++ {
		if fused[i].FusedScore >= fused[i-1].FusedScore {
			t.Errorf("score not strictly decreasing at %d: %v >= %v",
				i, fused[i].FusedScore, fused[i-1].FusedScore)
		}
	}
}

func TestFuseRRFDefaultsK(t *testing.T) {
	fused := FuseRRF(ranked("a#0"), nil, 0)
	want := 1.0 / float64(DefaultRRFK+1)
	if math.Abs(fused[0].FusedScore-want) > 1e-12 {
		t.Errorf("fused score = %v, want %v with default k", fused[0].FusedScore, want)
	}
}

func TestCapPerNoteSkipsExcessChunks(t *testing.T) {
	// Ranking: noteA#0, noteA#1, noteA#2, noteB#0. Cap 2 per note, top 3:
	// the third noteA chunk is skipped outright and noteB fills the slot.
	fused := []models.FusedHit{
		{ChunkID: "noteA#0", FusedScore: 0.4},
		{ChunkID: "noteA#1", FusedScore: 0.3},
		{ChunkID: "noteA#2", FusedScore: 0.2},
		{ChunkID: "noteB#0", FusedScore: 0.1},
	}
	got := capPerNote(fused, 3, 2)
	if len(got) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(got))
	}
	wantIDs := []string{"noteA#0", "noteA#1", "noteB#0"}
	for i, want := range wantIDs {
		if got[i].ChunkID != want {
			t.Errorf("hit %d = %s, want %s", i, got[i].ChunkID, want)
		}
	}
}

func TestCapPerNoteShortResult(t *testing.T) {
	// Only one note and cap 1: result is shorter than topK rather than padded.
	fused := []models.FusedHit{
		{ChunkID: "noteA#0", FusedScore: 0.4},
		{ChunkID: "noteA#1", FusedScore: 0.3},
	}
	got := capPerNote(fused, 5, 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(got))
	}
	if got[0].ChunkID != "noteA#0" {
		t.Errorf("expected best chunk kept, got %s", got[0].ChunkID)
	}
}

func TestCapPerNoteDisabled(t *testing.T) {
	fused := []models.FusedHit{
		{ChunkID: "noteA#0", FusedScore: 0.4},
		{ChunkID: "noteA#1", FusedScore: 0.3},
		{ChunkID: "noteA#2", FusedScore: 0.2},
	}
	got := capPerNote(fused, 3, 0)
	if len(got) != 3 {
		t.Errorf("expected cap disabled with maxPerNote=0, got %d hits", len(got))
	}
}
