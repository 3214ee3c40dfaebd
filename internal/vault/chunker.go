package vault

import (
	"strings"

	"github.com/sorrel/kioku/internal/models"
)

// Chunker splits note sections into overlapping word-window chunks.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given window and overlap (in words).
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// ChunkNote splits the note into chunks, section by section. Chunk positions
// are 1-based and run across the whole note, so chunk IDs look like
// "notes/go.md#1". Empty sections produce no chunks; a note with no text
// produces none at all.
func (c *Chunker) ChunkNote(note *models.Note) []models.Chunk {
	var chunks []models.Chunk
	position := 0
	for _, sec := range SplitSections(note.Content, note.Title) {
		for _, text := range c.window(sec.Text) {
			position++
			chunks = append(chunks, models.Chunk{
				ChunkID:  models.ChunkID(note.ID, position),
				NoteID:   note.ID,
				Title:    note.Title,
				Section:  sec.Title,
				Text:     text,
				Tags:     note.Tags,
				Links:    note.Links,
				Position: position,
			})
		}
	}
	return chunks
}

// window slides a word window of chunkSize with chunkOverlap words of
// overlap between consecutive chunks.
func (c *Chunker) window(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var out []string
	start := 0
	for start < len(words) {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}
		start = end - c.chunkOverlap
	}
	return out
}
