// Package eval measures retrieval quality against a hand-labeled validation
// set, with an optional LLM judge for answer quality.
package eval

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/sorrel/kioku/internal/models"
)

// ErrValidationFormat is returned when the validation set cannot be used:
// the file is unreadable or contains no valid rows. Individual malformed
// rows are skipped with a warning, not fatal.
var ErrValidationFormat = errors.New("eval: invalid validation set")

// validationRow accepts both the current field names and the legacy aliases
// found in older validation files.
type validationRow struct {
	Query            string   `json:"query"`
	RelevantChunkIDs []string `json:"relevant_chunk_ids"`
	RelevantNoteIDs  []string `json:"relevant_note_ids"`
	ExpectedChunkID  string   `json:"expected_chunk_id"`
	ExpectedNoteID   string   `json:"expected_note_id"`
	Reference        string   `json:"reference_answer"`
}

// LoadValidation reads a JSONL validation set. Rows that fail to parse, have
// an empty query, or carry no relevance labels are skipped with a warning.
// An empty result wraps ErrValidationFormat.
func LoadValidation(path string, logger *zap.Logger) ([]models.ValidationExample, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFormat, err)
	}
	defer f.Close()

	var examples []models.ValidationExample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row validationRow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			logger.Warn("skipping malformed validation row",
				zap.Int("line", lineNo), zap.Error(err))
			continue
		}
		ex := models.ValidationExample{
			Query:            strings.TrimSpace(row.Query),
			RelevantChunkIDs: row.RelevantChunkIDs,
			RelevantNoteIDs:  row.RelevantNoteIDs,
			Reference:        row.Reference,
		}
		if len(ex.RelevantChunkIDs) == 0 && row.ExpectedChunkID != "" {
			ex.RelevantChunkIDs = []string{row.ExpectedChunkID}
		}
		if len(ex.RelevantNoteIDs) == 0 && row.ExpectedNoteID != "" {
			ex.RelevantNoteIDs = []string{row.ExpectedNoteID}
		}
		if ex.Query == "" {
			logger.Warn("skipping validation row with empty query", zap.Int("line", lineNo))
			continue
		}
		if len(ex.RelevantChunkIDs) == 0 && len(ex.RelevantNoteIDs) == 0 {
			logger.Warn("skipping validation row with no relevance labels",
				zap.Int("line", lineNo), zap.String("query", ex.Query))
			continue
		}
		examples = append(examples, ex)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFormat, err)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: no valid rows in %s", ErrValidationFormat, path)
	}
	return examples, nil
}
