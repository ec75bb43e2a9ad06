package search

import (
	"github.com/hyperjump/kiji/internal/config"
	"github.com/hyperjump/kiji/internal/models"
)

// ProcessQuery validates and applies the configured limits to the search query.
func ProcessQuery(query *models.SearchQuery, cfg *config.SearchConfig) error {
	if cfg == nil {
		return query.Validate()
	}
	return query.ValidateWithLimits(cfg.DefaultLimit, cfg.MaxLimit)
}
