package models

// SourceInfo identifies the document a passage came from.
type SourceInfo struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Path       string `json:"path,omitempty"`
	Ordinal    int    `json:"ordinal"`
}

// SearchResult represents a single ranked passage.
type SearchResult struct {
	// Index is the 1-based corpus position ("Article N").
	Index         int         `json:"index"`
	Text          string      `json:"text"`
	Highlighted   string      `json:"highlighted,omitempty"`
	Score         int         `json:"score"`
	Frequency     int         `json:"frequency"`
	EarlyBoost    int         `json:"early_boost"`
	LengthPenalty float64     `json:"length_penalty"`
	Rank          int         `json:"rank"`
	Source        *SourceInfo `json:"source,omitempty"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []*SearchResult `json:"results"`
	// Total is the number of matching passages before pagination.
	Total     int            `json:"total"`
	Documents []DocumentLink `json:"documents,omitempty"`
	QueryTime int64          `json:"query_time_ms"`
}
