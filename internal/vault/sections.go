package vault

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Section is one heading-delimited span of a note body.
type Section struct {
	Title string
	Text  string
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// SplitSections parses the body as markdown and cuts it at headings. Content
// before the first heading gets the section title "Introduction" when later
// headings exist, otherwise the note title. Sections with no text are
// dropped; a note with no usable text yields a single empty section so the
// note is still represented.
func SplitSections(body, noteTitle string) []Section {
	src := []byte(body)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var sections []Section
	current := Section{}
	sawHeading := false
	flush := func(defaultTitle string) {
		current.Text = strings.TrimSpace(current.Text)
		if current.Title == "" {
			current.Title = defaultTitle
		}
		if current.Text != "" {
			sections = append(sections, current)
		}
		current = Section{}
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			if sawHeading || current.Text != "" {
				flush("Introduction")
			} else {
				current = Section{}
			}
			sawHeading = true
			current.Title = headingText(h, src)
			if current.Title == "" {
				current.Title = "Section"
			}
			continue
		}
		t := nodeText(n, src)
		if t == "" {
			continue
		}
		if current.Text != "" {
			current.Text += "\n"
		}
		current.Text += t
	}
	flush(noteTitle)

	if len(sections) == 0 {
		return []Section{{Title: noteTitle}}
	}
	return sections
}

// headingText collects the literal text of a heading node.
func headingText(h *ast.Heading, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(h, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// nodeText extracts the source text of a block node. Leaf blocks carry their
// own line segments; containers (lists, quotes) are walked recursively.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(src))
		}
		return strings.TrimSpace(sb.String())
	}
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := nodeText(c, src); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}
