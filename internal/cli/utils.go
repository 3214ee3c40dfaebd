// Package cli provides output formatting for the kioku command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sorrel/kioku/internal/eval"
	"github.com/sorrel/kioku/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteSearchResults writes retrieval results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms", len(response.Results), response.QueryTimeMS)
	if response.LexicalOnly {
		fmt.Fprint(w, " (lexical only)")
	}
	fmt.Fprint(w, "\n\n")
	for _, block := range response.Results {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%d] Score: %.4f\n", block.CitationIndex, block.Score)
		fmt.Fprintf(w, "%s — %s › %s\n", block.NoteID, block.Title, block.Section)
		fmt.Fprintf(w, "\n%s\n\n", Truncate(block.Text, 200))
	}
	return nil
}

// WriteAnswer writes an answer with its citations to w in the given format.
func WriteAnswer(w io.Writer, response *models.AskResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	if response.Degraded {
		fmt.Fprintln(w, "(generation unavailable, showing retrieved passages)")
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, response.Answer)
	return nil
}

// WriteEvalReport writes an evaluation report to w in the given format.
func WriteEvalReport(w io.Writer, report *eval.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "\nEvaluated %d queries (hit rate %.2f)\n\n", report.N, report.HitRate)
	ks := append([]int(nil), report.Ks...)
	sort.Ints(ks)
	fmt.Fprintf(w, "%-8s %-12s %-12s %-12s %-12s\n", "k", "recall", "mrr", "note recall", "note mrr")
	for _, k := range ks {
		chunk := report.Chunk[k]
		note := report.Note[k]
		fmt.Fprintf(w, "%-8d %-12.4f %-12.4f %-12.4f %-12.4f\n",
			k, chunk.Recall, chunk.MRR, note.Recall, note.MRR)
	}
	if report.Judge != nil {
		fmt.Fprintf(w, "\nJudge (%d answers): correctness %.2f, groundedness %.2f, hallucination rate %.2f\n",
			report.Judge.Count, report.Judge.MeanCorrectness,
			report.Judge.MeanGroundedness, report.Judge.HallucinationRate)
	}
	misses := 0
	for _, q := range report.Queries {
		if q.ChunkRank == 0 && q.NoteRank == 0 {
			misses++
		}
	}
	if misses > 0 {
		fmt.Fprintf(w, "\n%d queries retrieved nothing relevant\n", misses)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
