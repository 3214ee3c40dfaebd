package models

// AskRequest is the request body for POST /ask.
type AskRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// AskResponse is the answer with its source citations.
type AskResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	// Degraded is true when generation failed and the answer is the
	// retrieval-only fallback. DegradedReason carries the failure cause
	// so callers can tell a timeout from an empty completion.
	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

// SearchRequest is the request body for POST /search (retrieval only).
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// SearchResponse lists the retrieved context blocks for a query.
type SearchResponse struct {
	Query       string         `json:"query"`
	Results     []ContextBlock `json:"results"`
	QueryTimeMS int64          `json:"query_time_ms"`
	// LexicalOnly is set when the query embedded to the zero vector and the
	// vector ranking was skipped.
	LexicalOnly bool `json:"lexical_only,omitempty"`
}
