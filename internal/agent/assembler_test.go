package agent

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sorrel/kioku/internal/models"
)

func testBlocks() []models.ContextBlock {
	return []models.ContextBlock{
		{NoteID: "notes/go.md", Title: "Go", Section: "Channels", Text: strings.Repeat("a", 100), ChunkID: "notes/go.md#0", Score: 0.03},
		{NoteID: "notes/py.md", Title: "Python", Section: "", Text: strings.Repeat("b", 100), ChunkID: "notes/py.md#0", Score: 0.02},
		{NoteID: "notes/db.md", Title: "Databases", Section: "B-trees", Text: strings.Repeat("c", 100), ChunkID: "notes/db.md#0", Score: 0.01},
	}
}

func TestAssembleAllBlocksFit(t *testing.T) {
	a := Assemble(testBlocks(), 100000)
	if len(a.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(a.Blocks))
	}
	if len(a.Citations) != len(a.Blocks) {
		t.Fatalf("citations not parallel to blocks: %d vs %d", len(a.Citations), len(a.Blocks))
	}
	for i, b := range a.Blocks {
		if b.CitationIndex != i+1 {
			t.Errorf("block %d has citation index %d", i, b.CitationIndex)
		}
		if a.Citations[i].ChunkID != b.ChunkID {
			t.Errorf("citation %d points at %s, block is %s", i, a.Citations[i].ChunkID, b.ChunkID)
		}
	}
	for _, marker := range []string{"[1]", "[2]", "[3]"} {
		if !strings.Contains(a.Context, marker) {
			t.Errorf("context missing marker %s", marker)
		}
	}
}

func TestAssembleTruncatesFirstOverBudgetBlock(t *testing.T) {
	blocks := testBlocks()
	// First block renders to roughly 170 chars. A budget of 250 fits block
	// one whole, truncates block two, and drops block three.
	first := len(renderBlockAt(blocks[0], 1))
	budget := first + 120

	a := Assemble(blocks, budget)
	if len(a.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(a.Blocks))
	}
	if len(a.Context) > budget {
		t.Errorf("context is %d chars, budget %d", len(a.Context), budget)
	}
	if len(a.Blocks[1].Text) >= 100 {
		t.Errorf("second block not truncated: %d chars", len(a.Blocks[1].Text))
	}
	if strings.Contains(a.Context, "notes/db.md") {
		t.Error("third block should have been dropped")
	}
	if len(a.Citations) != 2 {
		t.Errorf("expected citations only for included blocks, got %d", len(a.Citations))
	}
}

func renderBlockAt(b models.ContextBlock, idx int) string {
	b.CitationIndex = idx
	return renderBlock(&b)
}

func TestAssembleTruncatesTopBlockAtSmallBudget(t *testing.T) {
	blocks := []models.ContextBlock{
		{NoteID: "notes/go.md", Title: "Go", Section: "Channels", Text: strings.Repeat("a", 500), ChunkID: "notes/go.md#1", Score: 0.03},
	}
	empty := blocks[0]
	empty.Text = ""
	overhead := len(renderBlockAt(empty, 1))

	// Even a budget leaving only a few chars of text keeps the top block.
	a := Assemble(blocks, overhead+10)
	if len(a.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(a.Blocks))
	}
	if len(a.Citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(a.Citations))
	}
	if got := len(a.Blocks[0].Text); got != 10 {
		t.Errorf("truncated text is %d chars, want 10", got)
	}
	if len(a.Context) > overhead+10 {
		t.Errorf("context is %d chars, budget %d", len(a.Context), overhead+10)
	}

	// A budget covering only the overhead still includes the block, with
	// empty text.
	a = Assemble(blocks, overhead)
	if len(a.Blocks) != 1 || a.Blocks[0].Text != "" {
		t.Errorf("expected block with empty text, got %d blocks", len(a.Blocks))
	}

	// Only when the overhead alone exceeds the budget is the block dropped.
	a = Assemble(blocks, overhead-1)
	if len(a.Blocks) != 0 {
		t.Errorf("expected 0 blocks, got %d", len(a.Blocks))
	}
}

func TestAssembleTruncationKeepsValidUTF8(t *testing.T) {
	blocks := []models.ContextBlock{
		{NoteID: "notes/fr.md", Title: "Accents", Text: strings.Repeat("é", 200), ChunkID: "notes/fr.md#1"},
	}
	for budget := 50; budget < 130; budget++ {
		a := Assemble(blocks, budget)
		if !utf8.ValidString(a.Context) {
			t.Fatalf("budget %d produced invalid UTF-8 context", budget)
		}
		if len(a.Blocks) == 1 && !utf8.ValidString(a.Blocks[0].Text) {
			t.Fatalf("budget %d produced invalid UTF-8 block text", budget)
		}
		if len(a.Context) > budget {
			t.Fatalf("budget %d overflowed: context is %d chars", budget, len(a.Context))
		}
	}
}

func TestAssembleNoBudget(t *testing.T) {
	a := Assemble(testBlocks(), 0)
	if len(a.Blocks) != 3 {
		t.Errorf("expected no budget to include everything, got %d blocks", len(a.Blocks))
	}
}

func TestAssembleEmpty(t *testing.T) {
	a := Assemble(nil, 1000)
	if len(a.Blocks) != 0 || len(a.Citations) != 0 || a.Context != "" {
		t.Errorf("expected empty assembly, got %+v", a)
	}
}

func TestSourcesBlock(t *testing.T) {
	citations := []models.Citation{
		{NoteID: "notes/go.md", Title: "Go", Section: "Channels", ChunkID: "notes/go.md#0"},
		{NoteID: "notes/py.md", Title: "Python", ChunkID: "notes/py.md#0"},
	}
	s := SourcesBlock(citations)
	if !strings.Contains(s, "[1] notes/go.md — Go › Channels") {
		t.Errorf("unexpected sources block:\n%s", s)
	}
	if !strings.Contains(s, "[2] notes/py.md — Python") {
		t.Errorf("unexpected sources block:\n%s", s)
	}
	if SourcesBlock(nil) != "" {
		t.Error("expected empty sources block for no citations")
	}
}
