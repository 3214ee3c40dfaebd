package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sorrel/kioku/internal/llm"
	"github.com/sorrel/kioku/internal/models"
)

// JudgeScore is one LLM judgment of a generated answer.
type JudgeScore struct {
	Correctness   float64 `json:"correctness"`
	Groundedness  float64 `json:"groundedness"`
	UsesContext   bool    `json:"uses_context"`
	Hallucination bool    `json:"hallucination"`
	Reason        string  `json:"short_reason"`
}

// JudgeSummary aggregates judge scores over the evaluated queries.
type JudgeSummary struct {
	Count             int     `json:"count"`
	MeanCorrectness   float64 `json:"mean_correctness"`
	MeanGroundedness  float64 `json:"mean_groundedness"`
	HallucinationRate float64 `json:"hallucination_rate"`
}

// Judge scores an answer against the context it was generated from.
type Judge interface {
	Score(ctx context.Context, question string, blocks []models.ContextBlock, answer string) (*JudgeScore, error)
}

// LLMJudge scores answers with a completion service.
type LLMJudge struct {
	client llm.Client
}

// NewLLMJudge wraps a completion client as a Judge.
func NewLLMJudge(client llm.Client) *LLMJudge {
	return &LLMJudge{client: client}
}

const judgeTemplate = `You are a strict evaluator of answer quality in a retrieval system.
Judge ONLY against the provided context. An answer not supported by the context must lower groundedness and correctness.

Question:
%s

Context (note fragments):
%s

Model answer:
%s

Return ONLY a JSON object, no commentary, of the form:
{
  "correctness": 1-5,
  "groundedness": 1-5,
  "uses_context": true/false,
  "hallucination": true/false,
  "short_reason": "very short (under 20 words)"
}

Rules:
- correctness: how well the answer addresses the question, even when the context is weak.
- groundedness: how much the answer sticks to the context without inventing.
- hallucination=true when the answer states facts absent from the context.
- uses_context=true when the answer clearly draws on the context.`

var jsonObjRe = regexp.MustCompile(`(?s)\{.*\}`)

// Score asks the judge model to grade the answer and parses its JSON verdict.
func (j *LLMJudge) Score(ctx context.Context, question string, blocks []models.ContextBlock, answer string) (*JudgeScore, error) {
	var ctxText strings.Builder
	for _, b := range blocks {
		ctxText.WriteString(b.Text)
		ctxText.WriteString("\n")
	}

	raw, err := j.client.Generate(ctx, fmt.Sprintf(judgeTemplate, question, ctxText.String(), answer))
	if err != nil {
		return nil, err
	}
	return parseJudgeOutput(raw)
}

// parseJudgeOutput extracts the first JSON object from the model output.
// Models often wrap the verdict in prose or code fences.
func parseJudgeOutput(raw string) (*JudgeScore, error) {
	m := jsonObjRe.FindString(raw)
	if m == "" {
		return nil, fmt.Errorf("no JSON object in judge output")
	}
	var score JudgeScore
	if err := json.Unmarshal([]byte(m), &score); err != nil {
		return nil, fmt.Errorf("failed to parse judge output: %w", err)
	}
	return &score, nil
}

func summarizeJudge(queries []QueryReport) *JudgeSummary {
	var s JudgeSummary
	var hallucinated int
	for i := range queries {
		j := queries[i].Judge
		if j == nil {
			continue
		}
		s.Count++
		s.MeanCorrectness += j.Correctness
		s.MeanGroundedness += j.Groundedness
		if j.Hallucination {
			hallucinated++
		}
	}
	if s.Count == 0 {
		return nil
	}
	n := float64(s.Count)
	s.MeanCorrectness /= n
	s.MeanGroundedness /= n
	s.HallucinationRate = float64(hallucinated) / n
	return &s
}
