// Package models defines core data structures for notes, chunks, and retrieval results.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Note is one markdown note collected from the vault.
type Note struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Links    []string `json:"links"`
	Content  string   `json:"content"`
	Created  string   `json:"created,omitempty"`
	Modified string   `json:"modified,omitempty"`
}

// Chunk is a contiguous slice of one note's text, the atomic unit of retrieval.
// Chunks are produced by preprocessing and are read-only afterwards.
type Chunk struct {
	ChunkID  string   `json:"chunk_id"`
	NoteID   string   `json:"note_id"`
	Title    string   `json:"title"`
	Section  string   `json:"section"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags"`
	Links    []string `json:"links"`
	Position int      `json:"position"`
}

// ChunkID returns the deterministic chunk ID for a note and chunk ordinal.
func ChunkID(noteID string, position int) string {
	return noteID + "#" + strconv.Itoa(position)
}

// SplitChunkID returns the note ID and position encoded in a chunk ID.
// Position is -1 when the suffix is missing or not numeric.
func SplitChunkID(chunkID string) (noteID string, position int) {
	i := strings.LastIndex(chunkID, "#")
	if i < 0 {
		return chunkID, -1
	}
	pos, err := strconv.Atoi(chunkID[i+1:])
	if err != nil {
		return chunkID[:i], -1
	}
	return chunkID[:i], pos
}

// PassageText returns the text that gets embedded and lexically indexed for
// the chunk. Title, section, tags, and note ID are folded in so metadata
// matches contribute to relevance, mirroring how the index is built.
func (c *Chunk) PassageText() string {
	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteByte('\n')
	b.WriteString(c.Section)
	b.WriteByte('\n')
	for i, t := range c.Tags {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('#')
		b.WriteString(t)
	}
	b.WriteByte('\n')
	b.WriteString(c.NoteID)
	b.WriteByte('\n')
	b.WriteString(c.Text)
	return strings.TrimSpace(b.String())
}

// Validate checks the fields preprocessing is required to fill in.
func (c *Chunk) Validate() error {
	if c.ChunkID == "" {
		return fmt.Errorf("chunk has empty chunk_id")
	}
	if c.NoteID == "" {
		return fmt.Errorf("chunk %s has empty note_id", c.ChunkID)
	}
	return nil
}
