package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sorrel/kioku/internal/eval"
	"github.com/sorrel/kioku/internal/models"
)

func sampleSearchResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query: "goroutines",
		Results: []models.ContextBlock{
			{
				NoteID:        "notes/go.md",
				Title:         "Go",
				Section:       "Concurrency",
				Text:          "Goroutines are lightweight threads managed by the runtime.",
				ChunkID:       "notes/go.md#1",
				Score:         0.0328,
				CitationIndex: 1,
			},
		},
		QueryTimeMS: 12,
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleSearchResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults: %v", err)
	}
	var out models.SearchResponse
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Query != "goroutines" || len(out.Results) != 1 {
		t.Errorf("roundtrip: got %+v", out)
	}
}

func TestWriteSearchResults_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleSearchResponse(), OutputText); err != nil {
		t.Fatalf("WriteSearchResults: %v", err)
	}
	got := buf.String()
	for _, want := range []string{"Found 1 results in 12ms", "notes/go.md", "Go › Concurrency", "Goroutines are lightweight"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestWriteSearchResults_lexicalOnly(t *testing.T) {
	resp := sampleSearchResponse()
	resp.LexicalOnly = true
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "(lexical only)") {
		t.Errorf("output missing lexical-only marker:\n%s", buf.String())
	}
}

func TestWriteSearchResults_unknownFormatTreatedAsText(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleSearchResponse(), OutputFormat("xml")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Found 1 results") {
		t.Errorf("unknown format should fall back to text:\n%s", buf.String())
	}
}

func TestWriteAnswer_text(t *testing.T) {
	resp := &models.AskResponse{
		Answer: "Goroutines are lightweight. [1]\n\nSources:\n[1] notes/go.md — Go › Concurrency",
	}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Goroutines are lightweight. [1]") {
		t.Errorf("got:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "generation unavailable") {
		t.Error("non-degraded answer should not carry the degradation banner")
	}
}

func TestWriteAnswer_degraded(t *testing.T) {
	resp := &models.AskResponse{Answer: "[1] Go › Concurrency (score=0.033)\ntext", Degraded: true}
	var buf bytes.Buffer
	if err := WriteAnswer(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "generation unavailable") {
		t.Errorf("degraded answer missing banner:\n%s", buf.String())
	}
}

func TestWriteEvalReport_text(t *testing.T) {
	report := &eval.Report{
		N:       4,
		Ks:      []int{5, 1},
		Chunk:   map[int]eval.Metric{1: {Recall: 0.25, MRR: 0.25}, 5: {Recall: 0.75, MRR: 0.5}},
		Note:    map[int]eval.Metric{1: {Recall: 0.5, MRR: 0.5}, 5: {Recall: 1, MRR: 0.75}},
		HitRate: 1,
		Queries: []eval.QueryReport{
			{Query: "q1", ChunkRank: 1, NoteRank: 1},
			{Query: "q2", ChunkRank: 0, NoteRank: 0},
		},
	}
	var buf bytes.Buffer
	if err := WriteEvalReport(&buf, report, OutputText); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.Contains(got, "Evaluated 4 queries") {
		t.Errorf("missing header:\n%s", got)
	}
	// k rows come out sorted ascending
	if strings.Index(got, "1        0.2500") > strings.Index(got, "5        0.7500") {
		t.Errorf("k rows not sorted:\n%s", got)
	}
	if !strings.Contains(got, "1 queries retrieved nothing relevant") {
		t.Errorf("missing miss count:\n%s", got)
	}
}

func TestWriteEvalReport_judgeSummary(t *testing.T) {
	report := &eval.Report{
		N:     1,
		Ks:    []int{5},
		Chunk: map[int]eval.Metric{5: {Recall: 1, MRR: 1}},
		Note:  map[int]eval.Metric{5: {Recall: 1, MRR: 1}},
		Judge: &eval.JudgeSummary{Count: 1, MeanCorrectness: 0.9, MeanGroundedness: 0.8, HallucinationRate: 0},
	}
	var buf bytes.Buffer
	if err := WriteEvalReport(&buf, report, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Judge (1 answers): correctness 0.90") {
		t.Errorf("missing judge summary:\n%s", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is too long", 7, "this is..."},
		{"anything", 0, "anything"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("Truncate(%q, %d): got %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		s        string
		maxWords int
		want     string
	}{
		{"one two three", 5, "one two three"},
		{"one two three four five six", 3, "one two three..."},
		{"", 2, ""},
	}
	for _, tt := range tests {
		if got := TruncateWords(tt.s, tt.maxWords); got != tt.want {
			t.Errorf("TruncateWords(%q, %d): got %q, want %q", tt.s, tt.maxWords, got, tt.want)
		}
	}
}
