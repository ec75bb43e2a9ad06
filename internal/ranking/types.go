// Package ranking scores and highlights passages of an in-memory corpus against a free-text query.
//
// Everything in this package is a pure function of its arguments and safe for
// concurrent use. Callers own the corpus slice and must not mutate it during a call.
package ranking

// AnalyzedQuery holds the match candidates derived from a raw query.
type AnalyzedQuery struct {
	// Original is the query exactly as supplied.
	Original string
	// Folded is the lower-cased original query.
	Folded string
	// Loose is the query with every non-ASCII-alphanumeric rune removed, lower-cased.
	Loose string
	// Tokens are the whitespace and CamelCase sub-tokens in left-to-right order,
	// with their original casing.
	Tokens []string
	// Candidates is the distinct, lower-cased set of strings to match, in first-seen order.
	// It is never empty.
	Candidates []string
}

// HasCandidate reports whether s (case-folded) is one of the query's candidates.
func (q *AnalyzedQuery) HasCandidate(s string) bool {
	s = foldCase(s)
	for _, c := range q.Candidates {
		if c == s {
			return true
		}
	}
	return false
}

// ScoredResult is one passage that matched a query.
type ScoredResult struct {
	// Index is the 1-based position of the passage in the corpus.
	Index int `json:"index"`
	// Text is the passage with surrounding whitespace trimmed.
	Text string `json:"text"`
	// Score is the additive relevance score; always positive.
	Score int `json:"score"`
	// Frequency is the literal plus loose-normalized occurrence count.
	Frequency int `json:"frequency"`
	// EarlyBoost is 1 when the query appears in the passage summary, else 0.
	EarlyBoost int `json:"early_boost"`
	// LengthPenalty is ln(rune length + 2); lower sorts first on a tie.
	LengthPenalty float64 `json:"length_penalty"`
}

// MatchSpan is a byte range of a passage that matched a candidate.
type MatchSpan struct {
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Candidate string `json:"candidate"`
}
