// Package cli formats kiji results for the terminal and talks to a running kiji server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hyperjump/kiji/internal/models"
	"github.com/hyperjump/kiji/internal/ranking"
	"github.com/hyperjump/kiji/pkg/utils"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText prints one "Article N" block per result (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact prints one line per result.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// TextOptions controls the text and compact formats.
type TextOptions struct {
	// Highlight marks query matches in each passage.
	Highlight bool
	// MaxCompactWidth bounds the passage preview in compact output; 0 means 80 runes.
	MaxCompactWidth int
}

// WriteSearchResults writes search results to w in the given format.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat, opts TextOptions) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		writeCompact(w, response, opts)
		return nil
	default:
		writeText(w, response, opts)
		return nil
	}
}

func writeText(w io.Writer, response *models.SearchResponse, opts TextOptions) {
	if len(response.Results) == 0 {
		fmt.Fprintf(w, "No articles match %q.\n", response.Query)
	} else {
		fmt.Fprintf(w, "Found %d matching articles in %dms (showing %d)\n\n",
			response.Total, response.QueryTime, len(response.Results))
	}

	wrap := terminalWrap(w)
	for _, r := range response.Results {
		fmt.Fprintf(w, "Article %d  (score %d)\n", r.Index, r.Score)
		if r.Source != nil && (r.Source.Title != "" || r.Source.Path != "") {
			fmt.Fprintf(w, "From: %s\n", sourceLabel(r.Source))
		}
		text := r.Text
		if opts.Highlight {
			text = ranking.Highlight(r.Text, response.Query, wrap)
		}
		fmt.Fprintf(w, "%s\n\n", text)
	}

	if len(response.Documents) > 0 {
		fmt.Fprintln(w, "Documents:")
		for _, d := range response.Documents {
			if d.Path != "" {
				fmt.Fprintf(w, "  %s  %s\n", d.Title, d.Path)
			} else {
				fmt.Fprintf(w, "  %s\n", d.Title)
			}
		}
	}
}

func writeCompact(w io.Writer, response *models.SearchResponse, opts TextOptions) {
	width := opts.MaxCompactWidth
	if width <= 0 {
		width = 80
	}
	for _, r := range response.Results {
		preview := utils.Truncate(strings.Join(strings.Fields(r.Text), " "), width)
		if opts.Highlight {
			preview = ranking.Highlight(preview, response.Query, ranking.MarkdownBold)
		}
		fmt.Fprintf(w, "%d\t%d\t%s\n", r.Index, r.Score, preview)
	}
}

func sourceLabel(s *models.SourceInfo) string {
	name := s.Title
	if name == "" {
		name = s.Path
	}
	return fmt.Sprintf("%s (passage %d)", name, s.Ordinal+1)
}

// terminalWrap styles matches with lipgloss when w is a color terminal and falls back
// to Markdown bold otherwise, so piped output still shows the matches.
func terminalWrap(w io.Writer) ranking.WrapFunc {
	style := lipgloss.NewRenderer(w).NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	if style.Render("x") == "x" {
		return ranking.MarkdownBold
	}
	return func(match string) string { return style.Render(match) }
}
