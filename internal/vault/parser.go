// Package vault collects markdown notes from an Obsidian-style vault and
// splits them into retrieval chunks.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sorrel/kioku/internal/models"
)

var (
	frontmatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*\n?`)
	wikilinkRe    = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	inlineTagRe   = regexp.MustCompile(`(?:\A|[^\w#])#([\p{L}\p{N}_/-]+)`)
)

// frontmatter is the subset of YAML frontmatter keys the collector reads.
type frontmatter struct {
	Title string `yaml:"title"`
	Tags  any    `yaml:"tags"`
}

// ParseNote reads one markdown file into a Note. The note ID is the path
// relative to the vault root with forward slashes, stable across rebuilds.
func ParseNote(path, vaultRoot string) (*models.Note, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read note: %w", err)
	}

	rel, err := filepath.Rel(vaultRoot, path)
	if err != nil {
		return nil, fmt.Errorf("failed to relativize path: %w", err)
	}
	id := filepath.ToSlash(rel)

	fm, body := splitFrontmatter(string(raw))

	note := &models.Note{
		ID:      id,
		Title:   extractTitle(fm, body, path),
		Tags:    extractTags(fm, body),
		Links:   extractLinks(string(raw)),
		Content: body,
	}
	if info, err := os.Stat(path); err == nil {
		note.Modified = info.ModTime().Format(time.RFC3339)
	}
	return note, nil
}

// splitFrontmatter separates YAML frontmatter from the body. Malformed
// frontmatter is left in the body rather than silently dropped.
func splitFrontmatter(text string) (*frontmatter, string) {
	m := frontmatterRe.FindStringSubmatchIndex(text)
	if m == nil {
		return &frontmatter{}, text
	}
	var fm frontmatter
	if err := yaml.Unmarshal([]byte(text[m[2]:m[3]]), &fm); err != nil {
		return &frontmatter{}, text
	}
	return &fm, text[m[1]:]
}

// extractTitle prefers the frontmatter title, then the first heading, then
// the filename without extension.
func extractTitle(fm *frontmatter, body, path string) string {
	if t := strings.TrimSpace(fm.Title); t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "#") {
			if t := strings.TrimSpace(strings.TrimLeft(line, "#")); t != "" {
				return t
			}
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// extractTags merges frontmatter tags (string or list) with inline #tags.
func extractTags(fm *frontmatter, body string) []string {
	seen := make(map[string]struct{})
	var tags []string
	add := func(t string) {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" {
			return
		}
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}

	switch v := fm.Tags.(type) {
	case string:
		add(v)
	case []any:
		for _, t := range v {
			if s, ok := t.(string); ok {
				add(s)
			}
		}
	}
	for _, m := range inlineTagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return tags
}

// extractLinks returns deduplicated [[wikilink]] targets in order of first
// appearance. Display aliases after | are stripped.
func extractLinks(text string) []string {
	seen := make(map[string]struct{})
	var links []string
	for _, m := range wikilinkRe.FindAllStringSubmatch(text, -1) {
		target := strings.TrimSpace(strings.SplitN(m[1], "|", 2)[0])
		if target == "" {
			continue
		}
		if _, dup := seen[target]; !dup {
			seen[target] = struct{}{}
			links = append(links, target)
		}
	}
	return links
}
