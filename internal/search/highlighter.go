package search

import (
	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/ranking"
)

// WrapFor returns the wrap function for the configured highlight markers.
// Nil config or empty markers fall back to Markdown bold.
func WrapFor(cfg *config.HighlightConfig) ranking.WrapFunc {
	if cfg == nil || (cfg.Open == "" && cfg.Close == "") {
		return ranking.MarkdownBold
	}
	return ranking.Tags(cfg.Open, cfg.Close)
}
