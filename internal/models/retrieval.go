package models

// RankedHit is one entry of a single-signal ranking (vector or lexical).
// Transient, produced per query, never persisted.
type RankedHit struct {
	ChunkID string
	Score   float64
	Rank    int // 1-based
}

// FusedHit is the result of reciprocal rank fusion across rankings.
type FusedHit struct {
	ChunkID     string
	FusedScore  float64
	VectorRank  int // 0 when absent from the vector ranking
	LexicalRank int // 0 when absent from the lexical ranking
}

// BestRank returns the lowest (best) source rank the chunk achieved.
func (h *FusedHit) BestRank() int {
	switch {
	case h.VectorRank == 0:
		return h.LexicalRank
	case h.LexicalRank == 0:
		return h.VectorRank
	case h.VectorRank < h.LexicalRank:
		return h.VectorRank
	default:
		return h.LexicalRank
	}
}

// ContextBlock is the unit placed into the assembled context.
type ContextBlock struct {
	NoteID        string  `json:"note_id"`
	Title         string  `json:"title"`
	Section       string  `json:"section"`
	Text          string  `json:"text"`
	ChunkID       string  `json:"chunk_id"`
	Score         float64 `json:"score"`
	CitationIndex int     `json:"citation_index"` // 1-based, assigned by the assembler
}

// Citation points back to the source note of one included context block.
type Citation struct {
	NoteID  string `json:"note_id"`
	Title   string `json:"title"`
	Section string `json:"section"`
	ChunkID string `json:"chunk_id"`
}

// ValidationExample is one ground-truth row of the validation set.
type ValidationExample struct {
	Query            string   `json:"query"`
	RelevantChunkIDs []string `json:"relevant_chunk_ids,omitempty"`
	RelevantNoteIDs  []string `json:"relevant_note_ids,omitempty"`
	Reference        string   `json:"reference_answer,omitempty"`
}

// NoteIDs returns the relevant note IDs, deriving them from chunk IDs when
// only chunk-level labels are present.
func (v *ValidationExample) NoteIDs() []string {
	if len(v.RelevantNoteIDs) > 0 {
		return v.RelevantNoteIDs
	}
	seen := make(map[string]bool)
	var out []string
	for _, cid := range v.RelevantChunkIDs {
		nid, _ := SplitChunkID(cid)
		if nid != "" && !seen[nid] {
			seen[nid] = true
			out = append(out, nid)
		}
	}
	return out
}
