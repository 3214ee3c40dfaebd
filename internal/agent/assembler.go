// Package agent assembles retrieved chunks into a cited context and produces
// grounded answers through a completion service.
package agent

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sorrel/kioku/internal/models"
)

// Assembly is the result of fitting context blocks into the character budget.
type Assembly struct {
	// Blocks are the included blocks with 1-based citation indexes assigned.
	Blocks []models.ContextBlock
	// Citations parallel Blocks: citation n points at Blocks[n-1].
	Citations []models.Citation
	// Context is the rendered text handed to the completion service.
	Context string
}

// Assemble renders blocks in order into a context bounded by charBudget.
// The first block that would overflow the budget is truncated to fit, so the
// top-ranked blocks always keep at least partial grounding; blocks after it
// are dropped. A block is dropped only when its rendering overhead alone
// exceeds the remaining budget. charBudget <= 0 disables the budget.
func Assemble(blocks []models.ContextBlock, charBudget int) *Assembly {
	a := &Assembly{}
	var sb strings.Builder
	total := 0

	for i := range blocks {
		b := blocks[i]
		b.CitationIndex = len(a.Blocks) + 1
		rendered := renderBlock(&b)

		if charBudget > 0 && total+len(rendered) > charBudget {
			remaining := charBudget - total
			overhead := len(rendered) - len(b.Text)
			keep := remaining - overhead
			if keep < 0 {
				break
			}
			b.Text = truncateToRuneBoundary(b.Text, keep)
			rendered = renderBlock(&b)
			a.appendBlock(&b, rendered, &sb)
			break
		}

		a.appendBlock(&b, rendered, &sb)
		total += len(rendered)
	}

	a.Context = strings.TrimRight(sb.String(), "\n")
	return a
}

func (a *Assembly) appendBlock(b *models.ContextBlock, rendered string, sb *strings.Builder) {
	a.Blocks = append(a.Blocks, *b)
	a.Citations = append(a.Citations, models.Citation{
		NoteID:  b.NoteID,
		Title:   b.Title,
		Section: b.Section,
		ChunkID: b.ChunkID,
	})
	sb.WriteString(rendered)
}

// truncateToRuneBoundary cuts text to at most max bytes, backing the cut off
// so it never lands inside a multi-byte rune.
func truncateToRuneBoundary(text string, max int) string {
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

func renderBlock(b *models.ContextBlock) string {
	return fmt.Sprintf("[%d]\nnote_id: %s\ntitle: %s\nsection: %s\ntext: %s\n\n",
		b.CitationIndex, b.NoteID, b.Title, b.Section, b.Text)
}

// SourcesBlock renders the deterministic source list appended below answers.
func SourcesBlock(citations []models.Citation) string {
	if len(citations) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nSources:\n")
	for i, c := range citations {
		fmt.Fprintf(&sb, "[%d] %s — %s", i+1, c.NoteID, c.Title)
		if c.Section != "" {
			fmt.Fprintf(&sb, " › %s", c.Section)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
