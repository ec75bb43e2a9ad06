package ranking

import (
	"strings"
)

// QueryAnalyzer turns raw query strings into match candidates.
type QueryAnalyzer struct{}

// NewQueryAnalyzer creates a new QueryAnalyzer.
func NewQueryAnalyzer() *QueryAnalyzer {
	return &QueryAnalyzer{}
}

// Analyze returns the analyzed form of query. It never fails: an empty or
// whitespace-only query yields a single candidate equal to the query itself.
func (qa *QueryAnalyzer) Analyze(query string) *AnalyzedQuery {
	result := &AnalyzedQuery{
		Original: query,
		Folded:   foldCase(query),
		Loose:    LooseNormalize(query),
		Tokens:   qa.tokenize(query),
	}
	result.Candidates = qa.candidates(result)
	return result
}

// Analyze is a convenience wrapper around a zero-value QueryAnalyzer.
func Analyze(query string) *AnalyzedQuery {
	return NewQueryAnalyzer().Analyze(query)
}

// tokenize splits on whitespace and then on CamelCase boundaries. A word with no
// alphanumeric content is kept whole; a query with no words yields [query].
func (qa *QueryAnalyzer) tokenize(query string) []string {
	words := strings.Fields(query)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		parts := SplitCamelCase(word)
		if len(parts) == 0 {
			tokens = append(tokens, word)
			continue
		}
		tokens = append(tokens, parts...)
	}
	if len(tokens) == 0 {
		return []string{query}
	}
	return tokens
}

// candidates collects folded, loose and token forms, dropping duplicates and empty strings.
func (qa *QueryAnalyzer) candidates(q *AnalyzedQuery) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, len(q.Tokens)+2)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	add(q.Folded)
	add(q.Loose)
	for _, tok := range q.Tokens {
		add(foldCase(tok))
	}
	if len(out) == 0 {
		out = append(out, q.Folded)
	}
	return out
}

// LooseNormalize removes every rune that is not an ASCII letter or digit and lower-cases
// the rest, so "Part Source" and "Part-Source" both become "partsource".
func LooseNormalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			b.WriteByte(c + ('a' - 'A'))
		}
	}
	return b.String()
}

func foldCase(s string) string {
	return strings.ToLower(s)
}

// CountOccurrences counts non-overlapping occurrences of term in text, case-insensitively.
// An empty term never occurs.
func CountOccurrences(term, text string) int {
	if term == "" {
		return 0
	}
	return strings.Count(foldCase(text), foldCase(term))
}

// JoinTokens joins tokens[start:start+size] with single spaces and case-folds the result.
func JoinTokens(tokens []string, start, size int) string {
	return foldCase(strings.Join(tokens[start:start+size], " "))
}
