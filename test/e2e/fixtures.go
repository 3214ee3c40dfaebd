// Package e2e provides end-to-end tests over a small on-disk vault.
package e2e

import (
	"os"
	"path/filepath"
)

// vaultNote is one fixture note written to the test vault.
type vaultNote struct {
	relPath string
	content string
}

// fixtureVault is a minimal vault with frontmatter, wikilinks, inline tags,
// sections, and a nested folder, covering what the collector must parse.
var fixtureVault = []vaultNote{
	{
		relPath: "go.md",
		content: `---
title: Go
tags: [programming, languages]
---
# Go

Go is a statically typed language from Google.

## Concurrency

Goroutines are lightweight threads multiplexed onto OS threads by the
runtime scheduler. Channels connect goroutines; see [[concurrency-patterns]].

## Tooling

The go command builds, tests, and vets. #tooling
`,
	},
	{
		relPath: "python.md",
		content: `# Python

Python is dynamically typed and interpreted. The GIL serializes bytecode
execution, so CPU-bound parallelism uses processes instead of threads.
`,
	},
	{
		relPath: "projects/concurrency-patterns.md",
		content: `---
title: Concurrency Patterns
---
# Concurrency Patterns

Fan-out distributes work to several goroutines; fan-in merges their
results onto one channel. Pipelines chain stages with channels.
`,
	},
	{
		relPath: ".obsidian/workspace.md",
		content: `editor state, must never be collected`,
	},
}

// writeVault materializes the fixture vault under root.
func writeVault(root string) error {
	for _, n := range fixtureVault {
		path := filepath.Join(root, n.relPath)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(n.content), 0600); err != nil {
			return err
		}
	}
	return nil
}
