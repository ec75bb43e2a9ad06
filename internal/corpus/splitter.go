// Package corpus cuts extracted document text into passages, the units the ranker scores.
package corpus

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/kiji/internal/models"
)

// Mode selects how text is cut into passages.
type Mode string

const (
	// ModeBlock splits on blank lines.
	ModeBlock Mode = "block"
	// ModeLine makes every non-blank line a passage.
	ModeLine Mode = "line"
	// ModeDelimiter splits on a custom separator line such as "---".
	ModeDelimiter Mode = "delimiter"
	// ModeDocument keeps the whole text as one passage.
	ModeDocument Mode = "document"
)

// ParseMode validates a mode name. The empty string selects ModeBlock.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeBlock, nil
	case ModeBlock, ModeLine, ModeDelimiter, ModeDocument:
		return m, nil
	default:
		return "", fmt.Errorf("unknown split mode %q", s)
	}
}

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

// Splitter splits text into passages.
type Splitter struct {
	mode      Mode
	delimiter string
}

// NewSplitter creates a splitter. delimiter is only used by ModeDelimiter and
// defaults to "---".
func NewSplitter(mode Mode, delimiter string) *Splitter {
	if mode == "" {
		mode = ModeBlock
	}
	if delimiter == "" {
		delimiter = "---"
	}
	return &Splitter{mode: mode, delimiter: delimiter}
}

// Mode returns the splitter's mode.
func (s *Splitter) Mode() Mode {
	return s.mode
}

// SplitText returns the trimmed, non-empty passages of text in order. Line breaks
// inside a passage are kept.
func (s *Splitter) SplitText(text string) []string {
	text = Clean(text)
	var parts []string
	switch s.mode {
	case ModeLine:
		parts = strings.Split(text, "\n")
	case ModeDelimiter:
		parts = splitOnDelimiterLines(text, s.delimiter)
	case ModeDocument:
		parts = []string{text}
	default:
		parts = blankLines.Split(text, -1)
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Split turns text into Passages owned by docID, numbered from 0.
func (s *Splitter) Split(docID, text string) []*models.Passage {
	texts := s.SplitText(text)
	if len(texts) == 0 {
		return nil
	}
	passages := make([]*models.Passage, len(texts))
	for i, t := range texts {
		passages[i] = &models.Passage{
			ID:         PassageID(docID, i),
			DocumentID: docID,
			Ordinal:    i,
			Content:    t,
		}
	}
	return passages
}

// PassageID is the stable ID of the ordinal-th passage of a document.
func PassageID(docID string, ordinal int) string {
	return fmt.Sprintf("%s_%04d", docID, ordinal)
}

// splitOnDelimiterLines splits on lines whose trimmed content equals delim.
func splitOnDelimiterLines(text, delim string) []string {
	var parts []string
	var cur strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == delim {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	return append(parts, cur.String())
}
