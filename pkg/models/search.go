package models

// SearchRequest is the body of POST /api/search/ai.
type SearchRequest struct {
	Query string `json:"query"`
}

// ParsedQuery is how the backend's model read a natural-language query.
type ParsedQuery struct {
	Keywords   []string `json:"keywords"`
	SourceType *string  `json:"source_type"`
	Category   *string  `json:"category"`
}

// SearchHit is one search result. Ranking fields are empty when the
// backend could not re-rank.
type SearchHit struct {
	ArticleSummary
	RelevanceNote string  `json:"relevance_note,omitempty"`
	AIRankScore   float64 `json:"ai_rank_score,omitempty"`
}

// SearchResult is the response of POST /api/search/ai. Error is set when
// the backend has no model configured; Results is then empty.
type SearchResult struct {
	ParsedQuery *ParsedQuery `json:"parsed_query"`
	Results     []SearchHit  `json:"results"`
	Error       string       `json:"error,omitempty"`
}
