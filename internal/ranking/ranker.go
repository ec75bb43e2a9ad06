package ranking

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Ranker scores corpus passages against a query with a fixed additive policy.
type Ranker struct {
	config   *RankingConfig
	analyzer *QueryAnalyzer
}

// NewRanker creates a new Ranker with the given configuration.
func NewRanker(config *RankingConfig) *Ranker {
	if config == nil {
		config = DefaultRankingConfig()
	}
	config.ApplyDefaults()

	return &Ranker{
		config:   config,
		analyzer: NewQueryAnalyzer(),
	}
}

// Config returns the ranker's configuration.
func (r *Ranker) Config() *RankingConfig {
	return r.config
}

// AnalyzeQuery parses and analyzes a query string.
func (r *Ranker) AnalyzeQuery(query string) *AnalyzedQuery {
	return r.analyzer.Analyze(query)
}

// Rank scores every passage of corpus against query and returns the passages with a
// positive score, best first. Indices in the result are 1-based corpus positions.
func (r *Ranker) Rank(corpus []string, query string) []ScoredResult {
	if len(corpus) == 0 {
		return []ScoredResult{}
	}

	q := r.analyzer.Analyze(query)
	phrases := ngramPhrases(q.Tokens)

	results := make([]ScoredResult, 0)
	for i, passage := range corpus {
		if res, ok := r.score(q, phrases, passage); ok {
			res.Index = i + 1
			results = append(results, res)
		}
	}

	sortResults(results)
	return results
}

// ScorePassage scores a single passage. The returned result has Index 0.
func (r *Ranker) ScorePassage(passage, query string) ScoredResult {
	q := r.analyzer.Analyze(query)
	res, _ := r.score(q, ngramPhrases(q.Tokens), passage)
	return res
}

func (r *Ranker) score(q *AnalyzedQuery, phrases []phrase, passage string) (ScoredResult, bool) {
	folded := foldCase(passage)
	score := 0

	for _, p := range phrases {
		if strings.Contains(folded, p.text) {
			score += p.size * r.config.PhraseWeight
		}
	}

	literal := countNonEmpty(folded, q.Folded)
	score += literal * r.config.LiteralWeight

	loose := countNonEmpty(LooseNormalize(passage), q.Loose)
	score += loose * r.config.LooseWeight

	boost := 0
	if r.inSummary(passage, q.Folded) {
		score += r.config.EarlyBoost
		boost = 1
	}

	if score <= 0 {
		return ScoredResult{}, false
	}

	return ScoredResult{
		Text:          strings.TrimSpace(passage),
		Score:         score,
		Frequency:     literal + loose,
		EarlyBoost:    boost,
		LengthPenalty: math.Log(float64(utf8.RuneCountInString(passage) + 2)),
	}, true
}

// inSummary reports whether needle occurs in one of the first SummaryLines lines.
func (r *Ranker) inSummary(passage, needle string) bool {
	if needle == "" {
		return false
	}
	lines := strings.SplitN(passage, "\n", r.config.SummaryLines+1)
	if len(lines) > r.config.SummaryLines {
		lines = lines[:r.config.SummaryLines]
	}
	for _, line := range lines {
		if strings.Contains(foldCase(line), needle) {
			return true
		}
	}
	return false
}

type phrase struct {
	text string
	size int
}

// ngramPhrases lists every contiguous token run, longest first. Empty phrases are dropped;
// a whitespace-only fallback token is kept and matches literally.
func ngramPhrases(tokens []string) []phrase {
	n := len(tokens)
	out := make([]phrase, 0, n*(n+1)/2)
	for size := n; size >= 1; size-- {
		for start := 0; start+size <= n; start++ {
			text := JoinTokens(tokens, start, size)
			if text == "" {
				continue
			}
			out = append(out, phrase{text: text, size: size})
		}
	}
	return out
}

// countNonEmpty counts non-overlapping occurrences of an already folded needle.
func countNonEmpty(haystack, needle string) int {
	if needle == "" {
		return 0
	}
	return strings.Count(haystack, needle)
}

// sortResults orders by score, frequency and boost descending, then length penalty
// ascending. Equal results keep corpus order.
func sortResults(results []ScoredResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if a.EarlyBoost != b.EarlyBoost {
			return a.EarlyBoost > b.EarlyBoost
		}
		return a.LengthPenalty < b.LengthPenalty
	})
}

var defaultRanker = NewRanker(nil)

// Rank ranks corpus against query using the default weights.
func Rank(corpus []string, query string) []ScoredResult {
	return defaultRanker.Rank(corpus, query)
}
