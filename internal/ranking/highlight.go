package ranking

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// WrapFunc decorates one matched substring of a passage.
type WrapFunc func(match string) string

// Tags returns a WrapFunc that surrounds matches with open and close.
func Tags(open, close string) WrapFunc {
	return func(match string) string {
		return open + match + close
	}
}

// MarkdownBold wraps matches in "**".
var MarkdownBold = Tags("**", "**")

// FindSpans returns the non-overlapping spans of text matched by the query's
// candidates, ordered by start offset. Longer candidates claim text first; ties are
// broken lexically.
func FindSpans(text, query string) []MatchSpan {
	if text == "" {
		return nil
	}
	candidates := orderCandidates(Analyze(query).Candidates)

	// offsets[i] is the byte offset of rune i; the final entry is len(text).
	// lowered[i] is rune i lower-cased the way strings.ToLower does it, so a match here
	// agrees with the ranker even when folding changes the byte length ("İ" -> "i").
	n := utf8.RuneCountInString(text)
	offsets := make([]int, 0, n+1)
	lowered := make([]string, 0, n)
	for i, r := range text {
		offsets = append(offsets, i)
		lowered = append(lowered, string(unicode.ToLower(r)))
	}
	offsets = append(offsets, len(text))

	covered := make([]bool, len(text))
	var spans []MatchSpan

	for _, cand := range candidates {
		if strings.TrimSpace(cand) == "" {
			continue
		}
		for i := 0; i < n; {
			j, ok := matchFolded(lowered, i, cand)
			if !ok || isCovered(covered, offsets[i], offsets[j]) {
				i++
				continue
			}
			start, end := offsets[i], offsets[j]
			for b := start; b < end; b++ {
				covered[b] = true
			}
			spans = append(spans, MatchSpan{Start: start, End: end, Candidate: cand})
			i = j
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}

// matchFolded reports whether the lower-cased runes starting at i spell cand exactly,
// and the rune index just past the match.
func matchFolded(lowered []string, i int, cand string) (int, bool) {
	pos := 0
	for j := i; j < len(lowered); j++ {
		if pos == len(cand) {
			return j, true
		}
		if !strings.HasPrefix(cand[pos:], lowered[j]) {
			return 0, false
		}
		pos += len(lowered[j])
	}
	return len(lowered), pos == len(cand)
}

// Highlight wraps every candidate match of query in text with wrap. A nil wrap uses
// MarkdownBold. Text outside the matches is copied unchanged, and a match is never
// wrapped twice.
func Highlight(text, query string, wrap WrapFunc) string {
	if wrap == nil {
		wrap = MarkdownBold
	}
	spans := FindSpans(text, query)
	if len(spans) == 0 {
		return text
	}
	return ApplySpans(text, spans, wrap)
}

// ApplySpans builds the decorated text for spans previously returned by FindSpans.
func ApplySpans(text string, spans []MatchSpan, wrap WrapFunc) string {
	var b strings.Builder
	b.Grow(len(text) + len(spans)*8)
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.Start])
		b.WriteString(wrap(text[s.Start:s.End]))
		last = s.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func orderCandidates(candidates []string) []string {
	out := make([]string, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(out[i]), utf8.RuneCountInString(out[j])
		if li != lj {
			return li > lj
		}
		return out[i] < out[j]
	})
	return out
}

func isCovered(covered []bool, start, end int) bool {
	for b := start; b < end; b++ {
		if covered[b] {
			return true
		}
	}
	return false
}
